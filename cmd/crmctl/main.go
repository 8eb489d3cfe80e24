// Package main provides crmctl, the operator CLI for the business CRM:
// schema migrations and the one-shot import of the legacy JSON exports.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"business-crm-go/internal/database"
	"business-crm-go/internal/seed"
	"business-crm-go/pkg/config"
	"business-crm-go/pkg/logger"
)

const (
	Version = "0.1.0"
	appName = "crmctl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Business CRM operator tool",
		Long: `crmctl manages the business CRM database.

It provides:
- migrate: apply pending schema migrations
- import: load rubros.json, paises.json and negocios.json

Connection settings come from the same environment (or .env) as the API server.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(migrateCmd(&logLevel))
	cmd.AddCommand(importCmd(&logLevel))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (schema %d)\n", appName, Version, database.SchemaVersion())
		},
	})

	return cmd
}

func migrateCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(*logLevel, func(ctx context.Context, db *sqlx.DB, log *slog.Logger) error {
				applied, err := database.Migrate(ctx, db, log)
				if err != nil {
					return err
				}
				fmt.Printf("applied %d migration(s), schema at version %d\n", applied, database.SchemaVersion())
				return nil
			})
		},
	}
}

func importCmd(logLevel *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the legacy JSON exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(*logLevel, func(ctx context.Context, db *sqlx.DB, log *slog.Logger) error {
				if _, err := database.Migrate(ctx, db, log); err != nil {
					return err
				}
				result, err := seed.NewImporter(db, log).Run(ctx, dir)
				if err != nil {
					return err
				}
				out, _ := json.MarshalIndent(result, "", "  ")
				fmt.Println(string(out))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory holding rubros.json, paises.json and negocios.json")

	return cmd
}

// withDatabase runs fn with a connected pool and a context cancelled on SIGINT/SIGTERM
func withDatabase(logLevel string, fn func(ctx context.Context, db *sqlx.DB, log *slog.Logger) error) error {
	cfg := config.LoadConfig()
	log := logger.New(logLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db, log)
}
