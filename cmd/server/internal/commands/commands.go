package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/tenant-auth-server/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

// DatabaseFlags locate the Postgres credential store for the maintenance commands
type DatabaseFlags struct {
	DatabaseURL string `help:"PostgreSQL connection string" env:"DATABASE_URL" required:""`
	MaxConns    int32  `help:"maximum number of connections in pool" default:"4"`
}

func (d *DatabaseFlags) open(ctx context.Context, migrate bool) (*postgres.Stores, error) {
	pool, err := postgres.NewPool(ctx, &postgres.PoolConfig{
		ConnString: d.DatabaseURL,
		MaxConns:   d.MaxConns,
		MinConns:   1,
	})
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return postgres.NewStores(pool), nil
}
