package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/backend/supabase"
	"inquiry-dashboard/internal/config"
	"inquiry-dashboard/internal/database"
	"inquiry-dashboard/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("config error: %v", err)
		}
		gin.SetMode(cfg.GinMode)

		roster, err := config.LoadRoster(cfg.RosterFile)
		if err != nil {
			return err
		}

		factory, err := newFactory(cfg)
		if err != nil {
			return err
		}

		r, err := server.NewRouter(server.Deps{
			Factory:        factory,
			Roster:         roster,
			SessionSecret:  cfg.SessionSecret,
			TrustedProxies: cfg.TrustedProxies,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, fmt.Sprintf(":%s", cfg.ServerPort), r)
	},
}

func tokenConfig(cfg *config.Config) database.TokenConfig {
	tc := database.DefaultTokenConfig(cfg.SessionSecret)
	tc.Expiry = cfg.TokenTTL
	return tc
}

func newFactory(cfg *config.Config) (backend.Factory, error) {
	switch cfg.Backend {
	case config.BackendSupabase:
		return supabase.NewFactory(cfg.SupabaseURL, cfg.SupabaseKey, cfg.BackendTimeout), nil
	case config.BackendPostgres:
		database.Init(cfg.DBDSN)
		if err := database.Migrate(database.DB); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		database.SeedDefaultAdmin(database.DB, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminAgent)
		return database.NewFactory(database.DB, tokenConfig(cfg)), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// postgresOnly загружает конфиг и подключается к БД для служебных команд.
func postgresOnly() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Backend != config.BackendPostgres {
		return fmt.Errorf("this command needs BACKEND=postgres")
	}
	database.Init(cfg.DBDSN)
	return nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the postgres backend schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := postgresOnly(); err != nil {
			return err
		}
		if err := database.Migrate(database.DB); err != nil {
			return err
		}
		log.Println("schema is up to date")
		return nil
	},
}

var (
	seedEmail    string
	seedPassword string
	seedAgent    string
)

var seedStaffCmd = &cobra.Command{
	Use:   "seed-staff",
	Short: "Create a staff account for the postgres backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := postgresOnly(); err != nil {
			return err
		}
		if err := database.Migrate(database.DB); err != nil {
			return err
		}
		created, err := database.SeedStaff(database.DB, seedEmail, seedPassword, seedAgent)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created staff user %s\n", seedEmail)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "staff user %s already exists\n", seedEmail)
		}
		return nil
	},
}

func init() {
	seedStaffCmd.Flags().StringVar(&seedEmail, "email", "", "staff email (required)")
	seedStaffCmd.Flags().StringVar(&seedPassword, "password", "", "staff password (required)")
	seedStaffCmd.Flags().StringVar(&seedAgent, "agent", "", "agent name from the roster")
	_ = seedStaffCmd.MarkFlagRequired("email")
	_ = seedStaffCmd.MarkFlagRequired("password")
}
