// Package sqlsearchstore implements search.API on a PostgreSQL database.
// Both operations delegate to stored functions; filtering, ranking and
// pagination all happen in the database.
package sqlsearchstore

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/cncf/clotributor/go/search"
	"github.com/cncf/clotributor/go/skerr"
)

const (
	getIssuesFilters = `SELECT get_issues_filters()::text`

	searchIssues = `SELECT total_count, issues::text FROM search_issues($1::jsonb)`
)

// SQLSearchStore implements search.API.
type SQLSearchStore struct {
	pool *pgxpool.Pool
}

// New returns an SQLSearchStore using the given connection pool.
func New(pool *pgxpool.Pool) *SQLSearchStore {
	return &SQLSearchStore{
		pool: pool,
	}
}

// GetIssuesFilters implements search.API.
func (s *SQLSearchStore) GetIssuesFilters(ctx context.Context) (string, error) {
	var filters string
	if err := s.pool.QueryRow(ctx, getIssuesFilters).Scan(&filters); err != nil {
		return "", skerr.Wrap(err)
	}
	return filters, nil
}

// SearchIssues implements search.API.
func (s *SQLSearchStore) SearchIssues(ctx context.Context, input *search.SearchIssuesInput) (int64, string, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return 0, "", skerr.Wrap(err)
	}
	var count int64
	var issues string
	if err := s.pool.QueryRow(ctx, searchIssues, inputJSON).Scan(&count, &issues); err != nil {
		return 0, "", skerr.Wrap(err)
	}
	return count, issues, nil
}
