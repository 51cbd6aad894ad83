package main

import "naco/internal/cli"

func main() {
	cli.Execute()
}
