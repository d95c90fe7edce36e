// clotributor-apiserver serves the search API and the static files of the web
// application.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cncf/clotributor/go/common"
	"github.com/cncf/clotributor/go/config"
	"github.com/cncf/clotributor/go/db"
	"github.com/cncf/clotributor/go/search/sqlsearchstore"
	"github.com/cncf/clotributor/go/sklog"
	"github.com/cncf/clotributor/go/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "", "Path to the JSON5 configuration file.")
	flag.Parse()

	var cfg config.APIServerConfig
	if err := config.LoadFromJSON5(&cfg, *configFile); err != nil {
		sklog.Fatalf("Failed to load config: %s", err)
	}
	if cfg.APIServer.Addr == "" {
		cfg.APIServer.Addr = config.DefaultAPIServerAddr
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

	handlers := web.New(sqlsearchstore.New(pool), cfg.APIServer.StaticPath)
	router := handlers.Router()
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    cfg.APIServer.Addr,
		Handler: router,
	}

	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		sklog.Info("apiserver stopped")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			sklog.Errorf("Error shutting down server: %s", err)
		}
		close(done)
	}()

	sklog.Infof("apiserver started, listening on %s", cfg.APIServer.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sklog.Fatalf("Server error: %s", err)
	}
	<-done
	sklog.Flush()
}
