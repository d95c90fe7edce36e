// Package github talks to the GitHub GraphQL API to fetch the information
// tracked for a repository: its metadata plus the recent open issues.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/oauth2"

	"github.com/cncf/clotributor/go/httputils"
	"github.com/cncf/clotributor/go/now"
	"github.com/cncf/clotributor/go/skerr"
)

// GraphQLAPIURL is the endpoint all queries are posted to.
const GraphQLAPIURL = "https://api.github.com/graphql"

// RateLimitURL reports the current rate limit status of a token.
const RateLimitURL = "https://api.github.com/rate_limit"

// userAgent identifies this service to the GitHub API.
const userAgent = "clotributor"

// issuesSincePeriod bounds how far back issues are requested.
const issuesSincePeriod = 365 * 24 * time.Hour

var repoURLRegex = regexp.MustCompile(`^https://github.com/(?P<owner>[^/]+)/(?P<repo>[^/]+)/?$`)

// repoViewQuery is the single GraphQL query used by the tracker. The labels
// variable is nullable; when null the issues are not filtered by label.
const repoViewQuery = `
query RepoView($owner: String!, $repo: String!, $issuesSince: DateTime!, $labels: [String!]) {
  repository(owner: $owner, name: $repo) {
    description
    homepageUrl
    stargazerCount
    repositoryTopics(first: 100) {
      nodes {
        topic {
          name
        }
      }
    }
    languages(first: 100) {
      nodes {
        name
      }
    }
    issues(first: 100, states: OPEN, filterBy: {since: $issuesSince, labels: $labels}, orderBy: {field: CREATED_AT, direction: DESC}) {
      nodes {
        databaseId
        title
        url
        number
        publishedAt
        labels(first: 30) {
          nodes {
            name
          }
        }
        closedByPullRequestsReferences(first: 1) {
          nodes {
            number
          }
        }
      }
    }
  }
}`

// GH abstracts the source host so the tracker can be tested against a mock.
type GH interface {
	// Repository returns the repository snapshot for the given URL, using
	// the given token to authenticate. When issuesFilterLabel is non-nil
	// only issues carrying that label are returned.
	Repository(ctx context.Context, token, url string, issuesFilterLabel *string) (*Repository, error)
}

// Repository mirrors the repository field of the GraphQL response.
type Repository struct {
	Description      *string             `json:"description"`
	HomepageURL      *string             `json:"homepageUrl"`
	StargazerCount   int32               `json:"stargazerCount"`
	RepositoryTopics TopicConnection     `json:"repositoryTopics"`
	Languages        *LanguageConnection `json:"languages"`
	Issues           IssueConnection     `json:"issues"`
}

// TopicConnection is the repositoryTopics field of the response.
type TopicConnection struct {
	Nodes []TopicNode `json:"nodes"`
}

// TopicNode wraps a single repository topic.
type TopicNode struct {
	Topic Topic `json:"topic"`
}

// Topic is a repository topic.
type Topic struct {
	Name string `json:"name"`
}

// LanguageConnection is the languages field of the response.
type LanguageConnection struct {
	Nodes []Language `json:"nodes"`
}

// Language is a programming language used in a repository.
type Language struct {
	Name string `json:"name"`
}

// IssueConnection is the issues field of the response.
type IssueConnection struct {
	Nodes []*IssueNode `json:"nodes"`
}

// IssueNode is a single issue in the response. DatabaseID and PublishedAt
// are pointers because the API can return partial nodes; callers must drop
// nodes where either is missing.
type IssueNode struct {
	DatabaseID                     *int64                 `json:"databaseId"`
	Title                          string                 `json:"title"`
	URL                            string                 `json:"url"`
	Number                         int32                  `json:"number"`
	PublishedAt                    *string                `json:"publishedAt"`
	Labels                         *LabelConnection       `json:"labels"`
	ClosedByPullRequestsReferences *PullRequestConnection `json:"closedByPullRequestsReferences"`
}

// LabelConnection is the labels field of an issue node.
type LabelConnection struct {
	Nodes []*Label `json:"nodes"`
}

// Label is an issue label.
type Label struct {
	Name string `json:"name"`
}

// PullRequestConnection is the closedByPullRequestsReferences field of an
// issue node.
type PullRequestConnection struct {
	Nodes []PullRequestRef `json:"nodes"`
}

// PullRequestRef is a reference to a pull request that would close an issue.
type PullRequestRef struct {
	Number int32 `json:"number"`
}

// TopicNames returns the names of the repository topics, or nil when the
// topics were not present in the response.
func (r *Repository) TopicNames() *[]string {
	if r.RepositoryTopics.Nodes == nil {
		return nil
	}
	names := make([]string, 0, len(r.RepositoryTopics.Nodes))
	for _, node := range r.RepositoryTopics.Nodes {
		names = append(names, node.Topic.Name)
	}
	return &names
}

// LanguageNames returns the names of the repository languages, or nil when
// the languages were not present in the response.
func (r *Repository) LanguageNames() *[]string {
	if r.Languages == nil || r.Languages.Nodes == nil {
		return nil
	}
	names := make([]string, 0, len(r.Languages.Nodes))
	for _, node := range r.Languages.Nodes {
		names = append(names, node.Name)
	}
	return &names
}

// LabelNames returns the names of the issue labels, flattening null nodes.
func (n *IssueNode) LabelNames() []string {
	names := []string{}
	if n.Labels == nil {
		return names
	}
	for _, node := range n.Labels.Nodes {
		if node == nil {
			continue
		}
		names = append(names, node.Name)
	}
	return names
}

// HasLinkedPRs returns true when at least one pull request that would close
// the issue was found.
func (n *IssueNode) HasLinkedPRs() bool {
	return n.ClosedByPullRequestsReferences != nil && len(n.ClosedByPullRequestsReferences.Nodes) > 0
}

// graphQLRequest is the body posted to the GraphQL endpoint.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// graphQLResponse is the body returned by the GraphQL endpoint.
type graphQLResponse struct {
	Data *struct {
		Repository *Repository `json:"repository"`
	} `json:"data"`
}

// GHGraphQL is the GH implementation backed by the GitHub GraphQL API.
type GHGraphQL struct {
	// apiURL is overridden in tests.
	apiURL string
}

// NewGHGraphQL returns a GHGraphQL that queries GraphQLAPIURL.
func NewGHGraphQL() *GHGraphQL {
	return &GHGraphQL{
		apiURL: GraphQLAPIURL,
	}
}

// Repository implements GH.
func (g *GHGraphQL) Repository(ctx context.Context, token, url string, issuesFilterLabel *string) (*Repository, error) {
	owner, repo, err := ParseRepositoryURL(url)
	if err != nil {
		return nil, err
	}

	// Build the query request body.
	issuesSince := now.Now(ctx).UTC().Add(-issuesSincePeriod).Format(time.RFC3339)
	vars := map[string]interface{}{
		"owner":       owner,
		"repo":        repo,
		"issuesSince": issuesSince,
		"labels":      nil,
	}
	if issuesFilterLabel != nil {
		vars["labels"] = []string{*issuesFilterLabel}
	}
	reqBody, err := json.Marshal(graphQLRequest{
		Query:     repoViewQuery,
		Variables: vars,
	})
	if err != nil {
		return nil, skerr.Wrap(err)
	}

	// Do request to GraphQL API.
	client := Client(token)
	resp, err := httputils.PostWithContext(ctx, client, g.apiURL, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, skerr.Wrapf(err, "error querying graphql api")
	}
	defer httputils.ReadAndClose(resp.Body)
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, skerr.Fmt("unexpected status code querying graphql api: %d - %s", resp.StatusCode, respBody)
	}

	// Parse response body and extract repository data.
	var parsed graphQLResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, skerr.Wrapf(err, "error deserializing query response: %s", respBody)
	}
	if parsed.Data == nil {
		return nil, skerr.Fmt("data field not found: %s", respBody)
	}
	if parsed.Data.Repository == nil {
		return nil, skerr.Fmt("repository field not found: %s", respBody)
	}
	return parsed.Data.Repository, nil
}

// Client returns an http.Client authenticated with the given token and
// identified with this service's user agent.
func Client(token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := httputils.DefaultClientConfig().WithoutRetries().WithTokenSource(ts).Client()
	client.Transport = userAgentTransport{client.Transport}
	return client
}

type userAgentTransport struct {
	wrapped http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.wrapped.RoundTrip(req)
}

// ParseRepositoryURL extracts the owner and repository from a canonical
// repository URL.
func ParseRepositoryURL(url string) (string, string, error) {
	m := repoURLRegex.FindStringSubmatch(url)
	if m == nil {
		return "", "", skerr.Fmt("invalid repository url")
	}
	return m[1], m[2], nil
}
