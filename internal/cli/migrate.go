package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	intconfig "naco/internal/config"
	intdb "naco/internal/db"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing MySQL tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := intconfig.LoadEnv()
			if dsn != "" {
				env.DBDSN = dsn
			}
			db, err := intconfig.ConnectDB(env.DBDSN)
			if err != nil {
				return fmt.Errorf("connect mysql: %w", err)
			}
			defer intconfig.CloseDB()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := intdb.EnsureSchema(ctx, db); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
			log.Println("schema up to date")
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "MySQL DSN (overrides DB_DSN)")
	return cmd
}
