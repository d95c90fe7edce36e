// clotributor-tracker keeps the issues of the registered repositories in sync
// with GitHub. It is meant to be run periodically, e.g. as a cron job.
package main

import (
	"context"
	"flag"

	"github.com/cncf/clotributor/go/common"
	"github.com/cncf/clotributor/go/config"
	"github.com/cncf/clotributor/go/db"
	"github.com/cncf/clotributor/go/github"
	"github.com/cncf/clotributor/go/sklog"
	"github.com/cncf/clotributor/go/tracker"
	"github.com/cncf/clotributor/go/tracker/sqlrepostore"
)

func main() {
	configFile := flag.String("config", "", "Path to the JSON5 configuration file.")
	flag.Parse()

	var cfg config.TrackerConfig
	if err := config.LoadFromJSON5(&cfg, *configFile); err != nil {
		sklog.Fatalf("Failed to load config: %s", err)
	}

	ctx := context.Background()
	if err := common.InitLogging(ctx, cfg.Log); err != nil {
		sklog.Fatalf("Failed to set up logging: %s", err)
	}

	pool, err := db.NewPool(ctx, cfg.DB)
	if err != nil {
		sklog.Fatalf("Failed to connect to the database: %s", err)
	}
	defer pool.Close()

	t := tracker.New(&cfg, sqlrepostore.New(pool), github.NewGHGraphQL())
	if err := t.Run(ctx); err != nil {
		sklog.Fatalf("tracker finished with errors: %s", err)
	}
	sklog.Flush()
}
