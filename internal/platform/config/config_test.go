package config

import (
	"os"
	"os/exec"
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"CONQUEST_ENGINE_TEST_PORT" envDefault:"321"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 321 {
		t.Fatalf("expected default port 321, got %d", cfg.Port)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("CONQUEST_ENGINE_TEST_PORT", "9000")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("CONQUEST_ENGINE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

// TestExitfExitsWithCode1 verifies that Exitf writes to stderr and exits
// with code 1. It uses the subprocess test pattern because os.Exit cannot
// be intercepted in-process.
func TestExitfExitsWithCode1(t *testing.T) {
	if os.Getenv("TEST_EXITF_SUBPROCESS") == "1" {
		Exitf("fatal: %s", "something broke")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitfExitsWithCode1$")
	cmd.Env = append(os.Environ(), "TEST_EXITF_SUBPROCESS=1")

	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "fatal: something broke") {
		t.Fatalf("expected stderr to contain %q, got %q", "fatal: something broke", string(out))
	}
}
