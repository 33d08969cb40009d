// Package server parses odds server flags and starts the HTTP service.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/louisbranch/conquest-engine/internal/combat/odds"
	"github.com/louisbranch/conquest-engine/internal/combat/table"
	entrypoint "github.com/louisbranch/conquest-engine/internal/platform/cmd"
	"github.com/louisbranch/conquest-engine/internal/random"
	"github.com/louisbranch/conquest-engine/internal/services/odds/app"
	"github.com/louisbranch/conquest-engine/internal/storage"
	boltstore "github.com/louisbranch/conquest-engine/internal/storage/bbolt"
)

// Config holds odds server command configuration.
type Config struct {
	Port              int    `env:"CONQUEST_ENGINE_ODDS_PORT" envDefault:"8084"`
	Addr              string `env:"CONQUEST_ENGINE_ODDS_ADDR"`
	TablePath         string `env:"CONQUEST_ENGINE_TABLE_PATH" envDefault:"conquest.db"`
	MaxAttackerArmies int    `env:"CONQUEST_ENGINE_TABLE_MAX_ATTACKERS" envDefault:"100"`
	MaxDefenderArmies int    `env:"CONQUEST_ENGINE_TABLE_MAX_DEFENDERS" envDefault:"100"`
	Workers           int    `env:"CONQUEST_ENGINE_BUILD_WORKERS" envDefault:"0"`
	MaxCells          int    `env:"CONQUEST_ENGINE_TABLE_MAX_CELLS" envDefault:"4000000"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The odds server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The odds server listen address (overrides -port)")
	fs.StringVar(&cfg.TablePath, "table-path", cfg.TablePath, "Path to the table database file")
	fs.IntVar(&cfg.MaxAttackerArmies, "max-attackers", cfg.MaxAttackerArmies, "Table bound used when no stored table exists")
	fs.IntVar(&cfg.MaxDefenderArmies, "max-defenders", cfg.MaxDefenderArmies, "Table bound used when no stored table exists")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Build worker count (0 uses all CPUs)")
	fs.IntVar(&cfg.MaxCells, "max-cells", cfg.MaxCells, "Refuse builds larger than this many cells (0 disables)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the odds API service, loading the stored table or building
// a fresh one when none exists.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceOdds, func(ctx context.Context) error {
		store, err := boltstore.Open(cfg.TablePath)
		if err != nil {
			return err
		}
		defer store.Close()

		startup, err := loadOrBuildTable(ctx, store, cfg)
		if err != nil {
			return err
		}

		addr := cfg.Addr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Port)
		}
		return app.Run(ctx, app.Config{
			Addr:          addr,
			Service:       odds.New(startup),
			Store:         store,
			SeedFunc:      random.NewSeed,
			BuildWorkers:  cfg.Workers,
			MaxTableCells: cfg.MaxCells,
		})
	})
}

func loadOrBuildTable(ctx context.Context, store storage.TableStore, cfg Config) (*table.Table, error) {
	encoded, err := store.Get(ctx, storage.DefaultTableName)
	switch {
	case err == nil:
		loaded, err := table.Decode(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode stored table: %w", err)
		}
		log.Printf("loaded %dx%d table from %s", loaded.MaxAttack(), loaded.MaxDefend(), cfg.TablePath)
		return loaded, nil
	case errors.Is(err, storage.ErrNotFound):
		// First boot with an empty database builds the default table
		// and persists it for the next start.
		built, err := table.Build(ctx, table.BuildRequest{
			MaxAttackerArmies: cfg.MaxAttackerArmies,
			MaxDefenderArmies: cfg.MaxDefenderArmies,
			Workers:           cfg.Workers,
			MaxCells:          cfg.MaxCells,
		})
		if err != nil {
			return nil, err
		}
		payload, err := table.Encode(built)
		if err != nil {
			return nil, err
		}
		if err := store.Put(ctx, storage.DefaultTableName, payload); err != nil {
			return nil, err
		}
		log.Printf("built %dx%d table and stored it at %s", built.MaxAttack(), built.MaxDefend(), cfg.TablePath)
		return built, nil
	default:
		return nil, err
	}
}
