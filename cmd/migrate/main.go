// migrate aplica o revierte las migraciones SQL embebidas.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate steps -1
//	go run ./cmd/migrate version
//
// La base se toma de DATABASE_URL o de DB_HOST/DB_PORT/... (igual que la API).
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Named("migrate"))
	if err != nil {
		log.Fatal().Err(err).Msg("crear migrador")
	}
	defer mg.Close()

	switch os.Args[1] {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "steps":
		if len(os.Args) < 3 {
			usage()
		}
		n, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			usage()
		}
		err = mg.Steps(n)
	case "version":
		v, dirty, verr := mg.Version()
		if verr != nil {
			err = verr
			break
		}
		fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
	default:
		usage()
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", os.Args[1]).Msg("migración fallida")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "uso: migrate up | down | steps <n> | version")
	os.Exit(2)
}
