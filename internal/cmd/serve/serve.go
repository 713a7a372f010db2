// Package serve implements the serve subcommand: it exposes the
// leaderboard store over HTTP.
package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clp-research/clembench-go/internal/leaderboard"
	"github.com/clp-research/clembench-go/internal/leaderboard/storage/sqlite"
	platformcmd "github.com/clp-research/clembench-go/internal/platform/cmd"
)

const shutdownTimeout = 10 * time.Second

// Config holds serve command configuration.
type Config struct {
	Addr      string `env:"CLEM_HTTP_ADDR" envDefault:":8080"`
	StorePath string `env:"CLEM_STORE_PATH" envDefault:"leaderboard.db"`
}

// ParseConfig parses env defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "leaderboard database path")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the serve command until the context is canceled.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           leaderboard.NewServer(store).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	fmt.Fprintf(out, "leaderboard listening on %s\n", cfg.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
