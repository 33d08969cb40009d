package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	precomputecmd "github.com/louisbranch/conquest-engine/internal/cmd/precompute"
	"github.com/louisbranch/conquest-engine/internal/platform/config"
)

func main() {
	cfg, err := precomputecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[PRECOMPUTE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := precomputecmd.Run(ctx, cfg); err != nil {
		config.Exitf("precompute table: %v", err)
	}
}
