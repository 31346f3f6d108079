package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"emoney-wallet/config"
	"emoney-wallet/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var migrationsPath string
	var down bool

	flag.StringVar(&migrationsPath, "migrations-path", "./migrations", "path to migration files")
	flag.BoolVar(&down, "down", false, "roll back one migration instead of applying")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	m, err := migrate.New("file://"+migrationsPath, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise migrator")
	}
	defer m.Close()

	if down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("No migrations to apply")
			return
		}
		log.Fatal().Err(err).Msg("Migration failed")
	}

	log.Info().Msg("Migrations applied successfully")
}
