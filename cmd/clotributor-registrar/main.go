// clotributor-registrar synchronizes the projects registered in the database
// with the data files published by each foundation. It is meant to be run
// periodically, e.g. as a cron job.
package main

import (
	"context"
	"flag"

	"github.com/cncf/clotributor/go/common"
	"github.com/cncf/clotributor/go/config"
	"github.com/cncf/clotributor/go/db"
	"github.com/cncf/clotributor/go/registrar"
	"github.com/cncf/clotributor/go/registrar/sqlprojectstore"
	"github.com/cncf/clotributor/go/sklog"
)

func main() {
	configFile := flag.String("config", "", "Path to the JSON5 configuration file.")
	flag.Parse()

	var cfg config.RegistrarConfig
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

	r := registrar.New(&cfg, sqlprojectstore.New(pool))
	if err := r.Run(ctx); err != nil {
		sklog.Fatalf("registrar finished with errors: %s", err)
	}
	sklog.Flush()
}
