package precompute

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/louisbranch/conquest-engine/internal/combat/table"
	"github.com/louisbranch/conquest-engine/internal/storage"
	boltstore "github.com/louisbranch/conquest-engine/internal/storage/bbolt"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("precompute", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.MaxAttackerArmies != 100 || cfg.MaxDefenderArmies != 100 {
		t.Fatalf("expected default 100x100 bounds, got %dx%d", cfg.MaxAttackerArmies, cfg.MaxDefenderArmies)
	}
	if cfg.TablePath != "conquest.db" {
		t.Fatalf("expected default table path, got %q", cfg.TablePath)
	}
	if cfg.MaxCells != 4000000 {
		t.Fatalf("expected default cell limit, got %d", cfg.MaxCells)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("precompute", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-max-attackers", "50", "-max-defenders", "40", "-table-path", "/tmp/t.db", "-workers", "2"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.MaxAttackerArmies != 50 || cfg.MaxDefenderArmies != 40 {
		t.Fatalf("expected 50x40 bounds, got %dx%d", cfg.MaxAttackerArmies, cfg.MaxDefenderArmies)
	}
	if cfg.TablePath != "/tmp/t.db" {
		t.Fatalf("expected table path override, got %q", cfg.TablePath)
	}
	if cfg.Workers != 2 {
		t.Fatalf("expected 2 workers, got %d", cfg.Workers)
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("CONQUEST_ENGINE_TABLE_MAX_ATTACKERS", "25")
	fs := flag.NewFlagSet("precompute", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.MaxAttackerArmies != 25 {
		t.Fatalf("expected env bound 25, got %d", cfg.MaxAttackerArmies)
	}
}

func TestRunPersistsDecodableTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conquest.db")
	cfg := Config{
		MaxAttackerArmies: 12,
		MaxDefenderArmies: 9,
		TablePath:         path,
		Workers:           2,
		MaxCells:          1000,
	}

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("run precompute: %v", err)
	}

	store, err := boltstore.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	encoded, err := store.Get(context.Background(), storage.DefaultTableName)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	decoded, err := table.Decode(encoded)
	if err != nil {
		t.Fatalf("decode table: %v", err)
	}
	if decoded.MaxAttack() != 12 || decoded.MaxDefend() != 9 {
		t.Fatalf("decoded bounds %dx%d, want 12x9", decoded.MaxAttack(), decoded.MaxDefend())
	}
}

func TestRunRejectsOversizedTable(t *testing.T) {
	cfg := Config{
		MaxAttackerArmies: 100,
		MaxDefenderArmies: 100,
		TablePath:         filepath.Join(t.TempDir(), "conquest.db"),
		MaxCells:          100,
	}

	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected error for oversized table")
	}
}
