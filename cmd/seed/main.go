// Command seed wipes the database and loads the demo sellers and products.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"Homemade/pkg/config"
	"Homemade/pkg/database"
	"Homemade/pkg/logger"
	"Homemade/pkg/seed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	driver   string
	dsn      string
	password string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database to the demo marketplace",
	Long: `seed deletes every message, product and user, then creates four demo
sellers (Alice_Baker, Bob_Gardener, Carol_Knits, Dave_Chef) with one product
each. All accounts share the password given by --password.

Database settings default to DB_DRIVER and DB_DSN.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&driver, "driver", "", "Database driver, sqlite or mysql (default DB_DRIVER)")
	rootCmd.Flags().StringVar(&dsn, "dsn", "", "Database DSN (default DB_DSN)")
	rootCmd.Flags().StringVar(&password, "password", seed.DefaultPassword, "Password for every seeded account")
	rootCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if driver == "" {
		driver = config.DBDriver
	}
	if dsn == "" {
		dsn = config.DBDSN
	}

	log, err := logger.New(config.LogLevel, config.LogJSON)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(driver, dsn, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	users, err := seed.Run(ctx, db, password, log.Named("seed"))
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Info("seeded successfully", zap.Int("sellers", len(users)), zap.String("driver", driver))
	return nil
}
