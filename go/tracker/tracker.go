// Package tracker synchronises the repositories stored in the catalogue
// with the source host: it refreshes repository metadata and keeps the set
// of stored issues in sync with the issues currently open upstream.
package tracker

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/cncf/clotributor/go/config"
	"github.com/cncf/clotributor/go/github"
	"github.com/cncf/clotributor/go/httputils"
	"github.com/cncf/clotributor/go/skerr"
	"github.com/cncf/clotributor/go/sklog"
)

// repositoryTrackTimeout is the maximum time tracking a single repository
// can take.
const repositoryTrackTimeout = 300 * time.Second

var (
	repositoriesTracked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clotributor_tracker_repositories_tracked_total",
		Help: "Number of repositories tracked successfully.",
	})
	issuesRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clotributor_tracker_issues_registered_total",
		Help: "Number of issues registered or updated.",
	})
	issuesUnregistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clotributor_tracker_issues_unregistered_total",
		Help: "Number of issues unregistered.",
	})
)

// Tracker is the engine behind a tracker run.
type Tracker struct {
	cfg *config.TrackerConfig
	db  DB
	gh  github.GH

	// ReportRateLimits controls the post-run rate limit report. Defaults to
	// true; tests disable it.
	ReportRateLimits bool
}

// New returns a Tracker ready to run.
func New(cfg *config.TrackerConfig, db DB, gh github.GH) *Tracker {
	return &Tracker{
		cfg:              cfg,
		db:               db,
		gh:               gh,
		ReportRateLimits: true,
	}
}

// Run tracks all due repositories once. Failures tracking one repository do
// not abort the others; the aggregated error names every repository that
// failed.
func (t *Tracker) Run(ctx context.Context) error {
	// Setup GitHub tokens pool.
	tokens := t.cfg.Creds.GitHubTokens
	pool, err := NewTokenPool(tokens)
	if err != nil {
		return err
	}

	// Get repositories to track.
	sklog.Debug("getting repositories to track")
	repositories, err := t.db.GetRepositoriesToTrack(ctx)
	if err != nil {
		return skerr.Wrap(err)
	}
	if len(repositories) == 0 {
		sklog.Info("no repositories to track")
		sklog.Info("tracker finished")
		return nil
	}

	// Track repositories.
	sklog.Info("tracking repositories")
	var (
		mtx  sync.Mutex
		merr *multierror.Error
	)
	eg := errgroup.Group{}
	eg.SetLimit(t.cfg.Tracker.Concurrency)
	for _, repository := range repositories {
		repository := repository
		eg.Go(func() error {
			token, err := pool.Acquire(ctx)
			if err == nil {
				defer pool.Release(token)
				trackCtx, cancel := context.WithTimeout(ctx, repositoryTrackTimeout)
				defer cancel()
				err = t.trackRepository(trackCtx, token, repository)
			}
			if err != nil {
				mtx.Lock()
				merr = multierror.Append(merr, skerr.Wrapf(err, "error tracking repository %s", repository.URL))
				mtx.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	// Check GitHub API rate limit status for each token.
	if t.ReportRateLimits {
		logRateLimits(ctx, tokens)
	}

	sklog.Info("tracker finished")
	return merr.ErrorOrNil()
}

// trackRepository refreshes the given repository's metadata and issues.
func (t *Tracker) trackRepository(ctx context.Context, token string, repo *Repository) error {
	start := time.Now()
	sklog.Debugf("%s: started", repo.URL)

	// Fetch repository data from GitHub.
	ghRepo, err := t.gh.Repository(ctx, token, repo.URL, repo.IssuesFilterLabel)
	if err != nil {
		return err
	}

	// Update repository's GitHub data in db if needed.
	if repo.UpdateGHData(ghRepo) {
		if err := t.db.UpdateRepositoryGHData(ctx, repo); err != nil {
			return skerr.Wrap(err)
		}
		sklog.Debugf("%s: github data updated in database", repo.URL)
	}

	// Sync issues in GitHub with database.
	issuesInGH := issuesFromGH(ghRepo)
	issuesInDB, err := t.db.GetRepositoryIssues(ctx, repo.RepositoryID)
	if err != nil {
		return skerr.Wrap(err)
	}

	// Register/update new or outdated issues.
	for _, issue := range issuesInGH {
		stored := findIssue(issue.IssueID, issuesInDB)
		if stored == nil || stored.Digest == nil || *stored.Digest != *issue.Digest {
			if err := t.db.RegisterIssue(ctx, repo, issue); err != nil {
				return skerr.Wrap(err)
			}
			issuesRegistered.Inc()
			sklog.Debugf("%s: registering issue #%d", repo.URL, issue.Number)
		}
	}

	// Unregister issues no longer available in GitHub.
	for _, issue := range issuesInDB {
		if findIssue(issue.IssueID, issuesInGH) == nil {
			if err := t.db.UnregisterIssue(ctx, issue.IssueID); err != nil {
				return skerr.Wrap(err)
			}
			issuesUnregistered.Inc()
			sklog.Debugf("%s: unregistering issue #%d", repo.URL, issue.Number)
		}
	}

	// Update repository's last track timestamp in db.
	if err := t.db.UpdateRepositoryLastTrackTs(ctx, repo.RepositoryID); err != nil {
		return skerr.Wrap(err)
	}

	repositoriesTracked.Inc()
	sklog.Debugf("%s: completed in %dms", repo.URL, time.Since(start).Milliseconds())
	return nil
}

// issuesFromGH translates the issue nodes of a repository snapshot into
// Issues, dropping nodes that lack the required fields.
func issuesFromGH(ghRepo *github.Repository) []*Issue {
	issues := []*Issue{}
	for _, node := range ghRepo.Issues.Nodes {
		if node == nil || node.DatabaseID == nil || node.PublishedAt == nil {
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, *node.PublishedAt)
		if err != nil {
			sklog.Warningf("dropping issue %q with invalid published_at %q: %s", node.Title, *node.PublishedAt, err)
			continue
		}
		issue := &Issue{
			IssueID:      *node.DatabaseID,
			Title:        node.Title,
			URL:          node.URL,
			Number:       node.Number,
			Labels:       node.LabelNames(),
			PublishedAt:  publishedAt,
			HasLinkedPRs: node.HasLinkedPRs(),
		}
		issue.PopulateFromLabels()
		issue.UpdateDigest()
		issues = append(issues, issue)
	}
	return issues
}

// findIssue returns the issue with the given id, or nil when not present.
func findIssue(issueID int64, issues []*Issue) *Issue {
	for _, issue := range issues {
		if issue.IssueID == issueID {
			return issue
		}
	}
	return nil
}

// logRateLimits reports, at debug level, the rate limit status of each
// token. Failures only affect the report, never the run result.
func logRateLimits(ctx context.Context, tokens []string) {
	for i, token := range tokens {
		client := github.Client(token)
		resp, err := httputils.GetWithContext(ctx, client, github.RateLimitURL)
		if err != nil {
			sklog.Debugf("token [%d] error getting rate limit info: %s", i, err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		httputils.ReadAndClose(resp.Body)
		if err != nil {
			sklog.Debugf("token [%d] error reading rate limit info: %s", i, err)
			continue
		}
		var status struct {
			Rate      json.RawMessage `json:"rate"`
			Resources struct {
				GraphQL json.RawMessage `json:"graphql"`
			} `json:"resources"`
		}
		if err := json.Unmarshal(body, &status); err != nil {
			sklog.Debugf("token [%d] error parsing rate limit info: %s", i, err)
			continue
		}
		sklog.Debugf("token [%d] github rate limit info: [rate: %s] [graphql: %s]", i, status.Rate, status.Resources.GraphQL)
	}
}
