package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "naco/internal/config"
	intdb "naco/internal/db"
	"naco/internal/events"
	router "naco/internal/http"
	"naco/internal/http/handlers"
	"naco/internal/jobs"
	"naco/internal/metrics"
	"naco/internal/repositories"
	"naco/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr, storage string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := intconfig.LoadEnv()
			if addr != "" {
				env.AppAddr = addr
			}
			if storage != "" {
				env.Storage = storage
			}
			return serve(env)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides APP_ADDR)")
	cmd.Flags().StringVar(&storage, "storage", "", "mysql or memory (overrides STORAGE)")
	return cmd
}

// openStore returns the configured backend and, for MySQL, a ping func.
func openStore(env intconfig.Env) (services.Store, func(context.Context) error, error) {
	switch env.Storage {
	case "memory":
		log.Println("using in-memory storage")
		return repositories.NewMemoryStore(), nil, nil
	case "mysql", "":
		db, err := intconfig.ConnectDB(env.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mysql: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := intdb.EnsureSchema(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repositories.NewMySQLStore(db), intconfig.PingDB, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE %q", env.Storage)
	}
}

func serve(env intconfig.Env) error {
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	loc := env.Location()

	store, ping, err := openStore(env)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()

	pub := events.NewAsync(events.Connect(env.RabbitURL, env.RabbitExchange), events.AsyncConfig{
		Buffer:  env.NotifyBuffer,
		Timeout: env.StoreTimeout,
	})

	var dispatcher *services.Dispatcher
	m := metrics.New(func() float64 {
		if dispatcher == nil {
			return 0
		}
		return float64(dispatcher.Len())
	})
	dispatcher = services.NewDispatcher(store, pub, m, services.DispatcherConfig{
		Buffer:  env.NotifyBuffer,
		Workers: env.NotifyWorkers,
		Timeout: env.StoreTimeout,
	})

	lifecycle := &services.Lifecycle{
		Bookings:      store,
		Directory:     store,
		Reviews:       store,
		Notifier:      dispatcher,
		Events:        pub,
		Metrics:       m,
		PlatformFee:   env.PlatformFee,
		RequireFuture: env.RequireFutureSchedule,
		Location:      loc,
		StoreTimeout:  env.StoreTimeout,
	}
	api := &handlers.API{
		Lifecycle:     lifecycle,
		Auth:          services.AuthService{Directory: store, Secret: []byte(env.JWTSecret)},
		Directory:     services.DirectoryService{Directory: store},
		Notifications: services.NotificationService{Store: store},
		Receipts:      services.ReceiptService{Bookings: store, Directory: store, PlatformFee: env.PlatformFee},
	}

	scheduler := cron.New(cron.WithLocation(loc))
	reminders := jobs.Reminders{Bookings: store, Notifier: dispatcher, Location: loc, Timeout: env.StoreTimeout}
	if _, err := reminders.Schedule(scheduler, env.ReminderSchedule); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	scheduler.Start()
	log.Printf("reminder job scheduled (%s)", env.ReminderSchedule)

	r := router.NewRouter(env, router.Options{API: api, Metrics: m, Ping: ping})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		scheduler.Stop()
		_ = dispatcher.Close(context.Background())
		_ = pub.Close()
		return fmt.Errorf("server failed: %w", err)
	}

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.Printf("notification drain incomplete: %v", err)
	}
	if err := pub.Shutdown(ctx); err != nil {
		log.Printf("event drain incomplete: %v", err)
	}

	log.Println("server stopped cleanly.")
	return nil
}
