// Package common has shared setup for the clotributor binaries.
package common

import (
	"context"
	"os"

	"github.com/cncf/clotributor/go/config"
	"github.com/cncf/clotributor/go/skerr"
	"github.com/cncf/clotributor/go/sklog/sklogimpl"
	"github.com/cncf/clotributor/go/sklog/stdlogging"
	"github.com/cncf/clotributor/go/sklog/structuredlogging"
)

// InitLogging sets up sklog according to the given configuration. Logs go to
// stderr, either as human readable lines or as JSON entries when cfg.Format
// is "json".
func InitLogging(ctx context.Context, cfg config.Logging) error {
	switch cfg.Format {
	case "json":
		logger, err := structuredlogging.New(ctx, os.Stderr)
		if err != nil {
			return skerr.Wrapf(err, "error setting up structured logging")
		}
		sklogimpl.SetLogger(logger)
	case "", "pretty":
		sklogimpl.SetLogger(stdlogging.New(os.Stderr))
	default:
		return skerr.Fmt("invalid log format: %s", cfg.Format)
	}
	return nil
}
