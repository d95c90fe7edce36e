// Package db provides the PostgreSQL connection pool shared by the
// services.
package db

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/cncf/clotributor/go/config"
	"github.com/cncf/clotributor/go/skerr"
)

// NewPool returns a connection pool for the given database configuration.
func NewPool(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, skerr.Wrapf(err, "invalid database configuration")
	}
	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return nil, skerr.Wrapf(err, "error connecting to the database")
	}
	return pool, nil
}
