// Package precompute parses precompute command flags and builds the
// conquest probability table offline.
package precompute

import (
	"context"
	"flag"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/conquest-engine/internal/combat/table"
	entrypoint "github.com/louisbranch/conquest-engine/internal/platform/cmd"
	"github.com/louisbranch/conquest-engine/internal/storage"
	boltstore "github.com/louisbranch/conquest-engine/internal/storage/bbolt"
)

// Config holds precompute command configuration.
type Config struct {
	MaxAttackerArmies int    `env:"CONQUEST_ENGINE_TABLE_MAX_ATTACKERS" envDefault:"100"`
	MaxDefenderArmies int    `env:"CONQUEST_ENGINE_TABLE_MAX_DEFENDERS" envDefault:"100"`
	TablePath         string `env:"CONQUEST_ENGINE_TABLE_PATH" envDefault:"conquest.db"`
	Workers           int    `env:"CONQUEST_ENGINE_BUILD_WORKERS" envDefault:"0"`
	MaxCells          int    `env:"CONQUEST_ENGINE_TABLE_MAX_CELLS" envDefault:"4000000"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.MaxAttackerArmies, "max-attackers", cfg.MaxAttackerArmies, "Largest attacking army count covered by the table")
	fs.IntVar(&cfg.MaxDefenderArmies, "max-defenders", cfg.MaxDefenderArmies, "Largest defending army count covered by the table")
	fs.StringVar(&cfg.TablePath, "table-path", cfg.TablePath, "Path to the table database file")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Build worker count (0 uses all CPUs)")
	fs.IntVar(&cfg.MaxCells, "max-cells", cfg.MaxCells, "Refuse builds larger than this many cells (0 disables)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the table and persists it at cfg.TablePath.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePrecompute, func(ctx context.Context) error {
		ctx, span := otel.Tracer("conquest-engine/precompute").Start(ctx, "table.precompute")
		defer span.End()
		span.SetAttributes(
			attribute.Int("table.max_attacker_armies", cfg.MaxAttackerArmies),
			attribute.Int("table.max_defender_armies", cfg.MaxDefenderArmies),
		)

		start := time.Now()
		built, err := table.Build(ctx, table.BuildRequest{
			MaxAttackerArmies: cfg.MaxAttackerArmies,
			MaxDefenderArmies: cfg.MaxDefenderArmies,
			Workers:           cfg.Workers,
			MaxCells:          cfg.MaxCells,
		})
		if err != nil {
			return err
		}

		encoded, err := table.Encode(built)
		if err != nil {
			return err
		}

		store, err := boltstore.Open(cfg.TablePath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Put(ctx, storage.DefaultTableName, encoded); err != nil {
			return err
		}

		cells := (built.MaxAttack() + 1) * (built.MaxDefend() + 1)
		log.Printf("precomputed %dx%d table (%d cells, %d bytes) in %s",
			built.MaxAttack(), built.MaxDefend(), cells, len(encoded), time.Since(start).Round(time.Millisecond))
		return nil
	})
}
