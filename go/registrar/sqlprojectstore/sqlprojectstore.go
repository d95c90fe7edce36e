// Package sqlprojectstore implements registrar.DB on a PostgreSQL database.
// Project registration is delegated to stored functions so the database can
// keep the project and its repositories consistent in one transaction.
package sqlprojectstore

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/cncf/clotributor/go/registrar"
	"github.com/cncf/clotributor/go/skerr"
)

const (
	getFoundations = `SELECT foundation_id, data_url FROM foundation`

	getFoundationProjects = `SELECT name, digest FROM project WHERE foundation_id = $1`

	registerProject = `SELECT register_project($1::text, $2::jsonb)`

	unregisterProject = `SELECT unregister_project($1::text, $2::text)`
)

// SQLProjectStore implements registrar.DB.
type SQLProjectStore struct {
	pool *pgxpool.Pool
}

// New returns an SQLProjectStore using the given connection pool.
func New(pool *pgxpool.Pool) *SQLProjectStore {
	return &SQLProjectStore{
		pool: pool,
	}
}

// Foundations implements registrar.DB.
func (s *SQLProjectStore) Foundations(ctx context.Context) ([]*registrar.Foundation, error) {
	rows, err := s.pool.Query(ctx, getFoundations)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	defer rows.Close()

	foundations := []*registrar.Foundation{}
	for rows.Next() {
		var foundation registrar.Foundation
		if err := rows.Scan(&foundation.FoundationID, &foundation.DataURL); err != nil {
			return nil, skerr.Wrap(err)
		}
		foundations = append(foundations, &foundation)
	}
	if err := rows.Err(); err != nil {
		return nil, skerr.Wrap(err)
	}
	return foundations, nil
}

// FoundationProjects implements registrar.DB.
func (s *SQLProjectStore) FoundationProjects(ctx context.Context, foundationID string) (map[string]*string, error) {
	rows, err := s.pool.Query(ctx, getFoundationProjects, foundationID)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	defer rows.Close()

	projects := map[string]*string{}
	for rows.Next() {
		var name string
		var digest *string
		if err := rows.Scan(&name, &digest); err != nil {
			return nil, skerr.Wrap(err)
		}
		projects[name] = digest
	}
	if err := rows.Err(); err != nil {
		return nil, skerr.Wrap(err)
	}
	return projects, nil
}

// RegisterProject implements registrar.DB.
func (s *SQLProjectStore) RegisterProject(ctx context.Context, foundationID string, project *registrar.Project) error {
	projectJSON, err := json.Marshal(project)
	if err != nil {
		return skerr.Wrap(err)
	}
	_, err = s.pool.Exec(ctx, registerProject, foundationID, projectJSON)
	return skerr.Wrap(err)
}

// UnregisterProject implements registrar.DB.
func (s *SQLProjectStore) UnregisterProject(ctx context.Context, foundationID, projectName string) error {
	_, err := s.pool.Exec(ctx, unregisterProject, foundationID, projectName)
	return skerr.Wrap(err)
}
