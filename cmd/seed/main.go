// Command seed wipes the store and loads the demo dataset.
//
//	go run ./cmd/seed --db data/whiskerbook.db --file data/cats.seed.yaml
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/whiskerbook/internal/config"
	sqliteRepo "github.com/sakif/whiskerbook/internal/repository/sqlite"
	"github.com/sakif/whiskerbook/internal/seed"
	"github.com/sakif/whiskerbook/internal/service"
)

var (
	dbPath   string
	seedFile string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Wipe the WhiskerBook store and load demo cats, meows and purrs",
	Long: `seed deletes every cat, meow and purr, then creates the cats listed in
the seed file, one meow per cat and a purr on each of the first 8 meows.
Records go through the same validation as the API.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&dbPath, "db", envOr("DB_PATH", config.DefaultDBPath), "path to the SQLite database")
	rootCmd.Flags().StringVar(&seedFile, "file", "data/cats.seed.yaml", "YAML or JSON list of cats")
	rootCmd.Flags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", config.DefaultLogLevel), "debug, info, warn or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	level, err := config.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cats, err := seed.LoadFile(seedFile)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return err
	}

	s := seed.New(db,
		service.NewCatService(db, logger),
		service.NewMeowService(db, db, logger),
		service.NewPurrService(db, db, logger),
		logger,
	)

	sum, err := s.Run(ctx, cats)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seed complete: %d cats, %d meows, %d purrs\n", sum.Cats, sum.Meows, sum.Purrs)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
