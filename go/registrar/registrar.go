// Package registrar reconciles the projects registered in the catalogue
// against the data files published by the foundations.
package registrar

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/cncf/clotributor/go/config"
	"github.com/cncf/clotributor/go/httputils"
	"github.com/cncf/clotributor/go/skerr"
	"github.com/cncf/clotributor/go/sklog"
	"github.com/cncf/clotributor/go/util"
)

// foundationTimeout is the maximum time processing a foundation data file
// can take.
const foundationTimeout = 300 * time.Second

// serviceName is the tag repositories use to exclude themselves from this
// service.
const serviceName = "clotributor"

var (
	projectsRegisteredCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clotributor_registrar_projects_registered_total",
		Help: "Number of projects registered or updated.",
	})
	projectsUnregisteredCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clotributor_registrar_projects_unregistered_total",
		Help: "Number of projects unregistered.",
	})
)

// Registrar is the engine behind a registrar run.
type Registrar struct {
	cfg    *config.RegistrarConfig
	db     DB
	client *http.Client
}

// New returns a Registrar ready to run.
func New(cfg *config.RegistrarConfig, db DB) *Registrar {
	return &Registrar{
		cfg:    cfg,
		db:     db,
		client: httputils.DefaultClientConfig().WithoutRetries().Client(),
	}
}

// Run processes all foundations once. Failures processing one foundation do
// not abort the others; the aggregated error names every foundation that
// failed.
func (r *Registrar) Run(ctx context.Context) error {
	sklog.Info("registrar started")

	foundations, err := r.db.Foundations(ctx)
	if err != nil {
		return skerr.Wrap(err)
	}

	var (
		mtx  sync.Mutex
		merr *multierror.Error
	)
	eg := errgroup.Group{}
	eg.SetLimit(r.cfg.Registrar.Concurrency)
	for _, foundation := range foundations {
		foundation := foundation
		eg.Go(func() error {
			processCtx, cancel := context.WithTimeout(ctx, foundationTimeout)
			defer cancel()
			if err := r.processFoundation(processCtx, foundation); err != nil {
				mtx.Lock()
				merr = multierror.Append(merr, skerr.Wrapf(err, "error processing foundation %s data file", foundation.FoundationID))
				mtx.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	sklog.Info("registrar finished")
	return merr.ErrorOrNil()
}

// processFoundation fetches and parses the foundation's data file, then
// reconciles the catalogue with it. Registration errors of individual
// projects are logged and swallowed so sibling projects proceed; fetch and
// parse failures abort the whole foundation.
func (r *Registrar) processFoundation(ctx context.Context, foundation *Foundation) error {
	start := time.Now()
	sklog.Debugf("%s: started", foundation.FoundationID)

	// Fetch foundation data file.
	resp, err := httputils.GetWithContext(ctx, r.client, foundation.DataURL)
	if err != nil {
		return skerr.Wrap(err)
	}
	defer util.Close(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return skerr.Fmt("unexpected status code getting data file: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return skerr.Wrap(err)
	}

	// Get projects available in the data file.
	var projects []*Project
	if err := yaml.Unmarshal(data, &projects); err != nil {
		return skerr.Wrap(err)
	}
	projectsAvailable := make(map[string]*Project, len(projects))
	for _, project := range projects {
		// Do not include repositories that have been excluded for this
		// service.
		project.RemoveExcludedRepositories(serviceName)
		project.UpdateDigest()
		projectsAvailable[project.Name] = project
	}

	// Get projects registered in the database.
	projectsRegistered, err := r.db.FoundationProjects(ctx, foundation.FoundationID)
	if err != nil {
		return skerr.Wrap(err)
	}

	// Register or update available projects as needed.
	for name, project := range projectsAvailable {
		if registeredDigest, ok := projectsRegistered[name]; ok {
			if registeredDigest != nil && *registeredDigest == *project.Digest {
				continue
			}
		}
		sklog.Debugf("%s: registering project %s", foundation.FoundationID, name)
		if err := r.db.RegisterProject(ctx, foundation.FoundationID, project); err != nil {
			sklog.Errorf("%s: error registering project %s: %s", foundation.FoundationID, name, err)
		} else {
			projectsRegisteredCounter.Inc()
		}
	}

	// Unregister projects no longer available in the data file. A data file
	// that parsed into zero projects must not cascade into a full deletion.
	if len(projectsAvailable) > 0 {
		for name := range projectsRegistered {
			if _, ok := projectsAvailable[name]; !ok {
				sklog.Debugf("%s: unregistering project %s", foundation.FoundationID, name)
				if err := r.db.UnregisterProject(ctx, foundation.FoundationID, name); err != nil {
					sklog.Errorf("%s: error unregistering project %s: %s", foundation.FoundationID, name, err)
				} else {
					projectsUnregisteredCounter.Inc()
				}
			}
		}
	}

	sklog.Debugf("%s: completed in %ds", foundation.FoundationID, int(time.Since(start).Seconds()))
	return nil
}
