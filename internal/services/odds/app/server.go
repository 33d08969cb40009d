// Package app hosts the HTTP surface for conquest odds queries, live
// round resolution, and table administration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/louisbranch/conquest-engine/internal/combat/odds"
	"github.com/louisbranch/conquest-engine/internal/platform/httpx"
	"github.com/louisbranch/conquest-engine/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Config defines startup inputs for the odds service.
type Config struct {
	Addr    string
	Service *odds.Service
	// Store persists rebuilt tables; nil disables persistence on
	// rebuild.
	Store storage.TableStore
	// SeedFunc mints seeds for live rounds when the caller supplies
	// none.
	SeedFunc func() (int64, error)
	// BuildWorkers and MaxTableCells bound administrative rebuilds.
	BuildWorkers  int
	MaxTableCells int
	Logger        *log.Logger
}

// NewHandler builds the root handler with the service middleware chain.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Service == nil {
		return nil, errors.New("probability service is required")
	}
	if cfg.SeedFunc == nil {
		return nil, errors.New("seed generator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	h := &handlers{cfg: cfg}

	mux := http.NewServeMux()
	mux.Handle("/healthz", httpx.RequireMethod(http.MethodGet)(http.HandlerFunc(h.health)))
	mux.Handle("/v1/conquest/odds", httpx.RequireMethod(http.MethodGet)(http.HandlerFunc(h.conquestOdds)))
	mux.Handle("/v1/combat/rounds", httpx.RequireMethod(http.MethodPost)(http.HandlerFunc(h.resolveRound)))
	mux.Handle("/v1/admin/table/rebuild", httpx.RequireMethod(http.MethodPost)(http.HandlerFunc(h.rebuildTable)))

	return httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		httpx.RequestLogger(logger),
	), nil
}

// Run serves the odds API until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, cfg Config) error {
	handler, err := NewHandler(cfg)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	server := &http.Server{Handler: handler}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()
	log.Printf("odds service listening on %s", listener.Addr())

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown odds service: %w", err)
		}
		return nil
	}
}
