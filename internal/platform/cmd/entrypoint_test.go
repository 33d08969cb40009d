package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Address string `env:"CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8080"`
	Mode    string `env:"CMD_TEST_MODE" envDefault:"server"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("CMD_TEST_MODE", "env-mode")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.Address, "address", cfg.Address, "address")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "mode")

	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if cfg.Address != "flag:9001" {
		t.Fatalf("expected flag override, got %q", cfg.Address)
	}
	if cfg.Mode != "env-mode" {
		t.Fatalf("expected env value, got %q", cfg.Mode)
	}
}

func TestParseConfigRequiresTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected error for nil config target")
	}
}

func TestParseArgsRequiresFlagSet(t *testing.T) {
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected error for nil flag set")
	}
}

func TestRunWithTelemetryRequiresService(t *testing.T) {
	err := RunWithTelemetry(context.Background(), "  ", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for empty service name")
	}
}

func TestRunWithTelemetryRequiresRun(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), ServiceOdds, nil); err == nil {
		t.Fatal("expected error for nil run function")
	}
}

func TestRunWithTelemetryPropagatesRunError(t *testing.T) {
	t.Setenv("CONQUEST_ENGINE_OTEL_ENDPOINT", "")

	wantErr := errors.New("run failed")
	err := RunWithTelemetry(context.Background(), ServicePrecompute, func(context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}
