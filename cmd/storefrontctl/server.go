package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/cipher"
	"github.com/doodlesbykumbi/storefront-admin/pkg/config"
	"github.com/doodlesbykumbi/storefront-admin/pkg/db"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/endpoints"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
	sessiongorm "github.com/doodlesbykumbi/storefront-admin/pkg/session/gorm"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session/memory"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			return port
		}
	}
	return "8000"
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the storefront admin server",
	Long: `Run the storefront admin server

The server requires STOREFRONT_DATA_KEY. With session_store set to postgres it
also requires DATABASE_URL, and database migrations are run on startup unless
--no-migrate is given.

The configuration file is watched for changes; SIGHUP forces a reload.`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")

		if err := runServer(host, port, noMigrate); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(host, port string, noMigrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dataKey, ok := os.LookupEnv("STOREFRONT_DATA_KEY")
	if !ok {
		return errors.New("STOREFRONT_DATA_KEY environment variable is required")
	}
	sealer, err := cipher.FromBase64(dataKey)
	if err != nil {
		return fmt.Errorf("bad STOREFRONT_DATA_KEY: %w", err)
	}

	var (
		store  session.Store
		health server.HealthChecker
	)
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		if db.URL() == "" {
			return errors.New("DATABASE_URL environment variable is required for the postgres session store")
		}
		if !noMigrate {
			logger.Info("running database migrations")
			if err := runMigrations(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
		}
		conn, err := db.Connect(db.Config{})
		if err != nil {
			return err
		}
		gormStore := sessiongorm.New(conn, sealer)
		store, health = gormStore, gormStore
	default:
		store = memory.New()
	}

	client := catalog.NewClient(catalog.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout(),
		RateLimit: cfg.APIRateLimit,
	})
	codec := session.NewCookieCodec(sealer.Derive(session.SigningPurpose), cfg.SecureCookies)
	sessions := session.NewManager(store, codec, client,
		session.WithTTL(cfg.SessionTTL()),
		session.WithLogger(logger.Named("session")),
	)

	s, err := server.NewServer(cfg, sessions, client, logger, host, port)
	if err != nil {
		return err
	}
	s.Health = health
	endpoints.RegisterAll(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := config.Watch(ctx, s.SetConfig, func(err error) {
			logger.Error("configuration reload failed", zap.Error(err))
		})
		if err != nil {
			logger.Warn("configuration file is not watched", zap.Error(err))
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	errs := make(chan error, 1)
	go func() {
		logger.Info("running server", zap.String("url", fmt.Sprintf("http://%s:%s", host, port)))
		errs <- s.Start()
	}()

	for {
		select {
		case err := <-errs:
			return err
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				next, err := config.Reload()
				if err != nil {
					logger.Error("configuration reload failed", zap.Error(err))
					continue
				}
				s.SetConfig(next)
				continue
			}

			logger.Info("shutting down", zap.String("signal", sig.String()))
			shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
			err := s.Shutdown(shutdownCtx)
			done()
			return err
		}
	}
}
