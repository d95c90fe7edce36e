package tracker

import (
	"context"

	"github.com/google/uuid"
)

// DB defines the operations the tracker needs on the catalogue.
type DB interface {
	// GetRepositoriesToTrack returns the repositories that are due for
	// tracking, ordered by URL.
	GetRepositoriesToTrack(ctx context.Context) ([]*Repository, error)

	// GetRepositoryIssues returns the issues currently stored for the given
	// repository.
	GetRepositoryIssues(ctx context.Context, repositoryID uuid.UUID) ([]*Issue, error)

	// RegisterIssue upserts the given issue.
	RegisterIssue(ctx context.Context, repository *Repository, issue *Issue) error

	// UnregisterIssue deletes the given issue.
	UnregisterIssue(ctx context.Context, issueID int64) error

	// UpdateRepositoryGHData stores the repository fields refreshed from the
	// source host, including the recomputed digest.
	UpdateRepositoryGHData(ctx context.Context, repository *Repository) error

	// UpdateRepositoryLastTrackTs advances the repository's tracked_at
	// timestamp to the current time.
	UpdateRepositoryLastTrackTs(ctx context.Context, repositoryID uuid.UUID) error
}
