// Package sqlrepostore implements tracker.DB on a PostgreSQL database.
package sqlrepostore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/cncf/clotributor/go/skerr"
	"github.com/cncf/clotributor/go/tracker"
)

// statements in use.
const (
	getRepositoriesToTrack = `
		SELECT
			r.repository_id,
			r.name,
			r.description,
			r.url,
			r.homepage_url,
			r.topics,
			r.languages,
			r.stars,
			r.digest,
			r.issues_filter_label,
			p.name AS project_name,
			p.foundation_id
		FROM repository r
		JOIN project p USING (project_id)
		WHERE r.tracked_at IS NULL
		OR r.tracked_at < current_timestamp - '30 minutes'::interval
		ORDER BY r.url ASC`

	getRepositoryIssues = `
		SELECT
			issue_id,
			title,
			url,
			number,
			labels,
			published_at,
			has_linked_prs,
			digest,
			area,
			kind,
			difficulty,
			mentor_available,
			mentor,
			good_first_issue
		FROM issue
		WHERE repository_id = $1`

	registerIssue = `
		INSERT INTO issue (
			issue_id,
			title,
			url,
			number,
			labels,
			digest,
			area,
			kind,
			difficulty,
			mentor_available,
			mentor,
			good_first_issue,
			has_linked_prs,
			published_at,
			repository_id,
			tsdoc
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			setweight(to_tsvector($16), 'A') ||
			setweight(to_tsvector($17), 'B') ||
			setweight(to_tsvector($18), 'C')
		) ON CONFLICT (issue_id) DO UPDATE
		SET
			title = excluded.title,
			url = excluded.url,
			labels = excluded.labels,
			digest = excluded.digest,
			area = excluded.area,
			kind = excluded.kind,
			difficulty = excluded.difficulty,
			mentor_available = excluded.mentor_available,
			mentor = excluded.mentor,
			good_first_issue = excluded.good_first_issue,
			has_linked_prs = excluded.has_linked_prs,
			published_at = excluded.published_at,
			tsdoc = excluded.tsdoc`

	unregisterIssue = `DELETE FROM issue WHERE issue_id = $1`

	updateRepositoryGHData = `
		UPDATE repository SET
			description = $2,
			homepage_url = $3,
			languages = $4,
			stars = $5,
			topics = $6,
			digest = $7,
			updated_at = current_timestamp
		WHERE repository_id = $1`

	updateRepositoryLastTrackTs = `
		UPDATE repository SET tracked_at = current_timestamp WHERE repository_id = $1`
)

// SQLRepoStore implements tracker.DB.
type SQLRepoStore struct {
	pool *pgxpool.Pool
}

// New returns an SQLRepoStore using the given connection pool.
func New(pool *pgxpool.Pool) *SQLRepoStore {
	return &SQLRepoStore{
		pool: pool,
	}
}

// GetRepositoriesToTrack implements tracker.DB.
func (s *SQLRepoStore) GetRepositoriesToTrack(ctx context.Context) ([]*tracker.Repository, error) {
	rows, err := s.pool.Query(ctx, getRepositoriesToTrack)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	defer rows.Close()

	repositories := []*tracker.Repository{}
	for rows.Next() {
		var (
			repo         tracker.Repository
			repositoryID pgtype.UUID
			topics       pgtype.TextArray
			languages    pgtype.TextArray
		)
		if err := rows.Scan(&repositoryID, &repo.Name, &repo.Description, &repo.URL,
			&repo.HomepageURL, &topics, &languages, &repo.Stars, &repo.Digest,
			&repo.IssuesFilterLabel, &repo.ProjectName, &repo.FoundationID); err != nil {
			return nil, skerr.Wrap(err)
		}
		repo.RepositoryID = uuid.UUID(repositoryID.Bytes)
		repo.Topics = textArrayPtr(topics)
		repo.Languages = textArrayPtr(languages)
		repositories = append(repositories, &repo)
	}
	if err := rows.Err(); err != nil {
		return nil, skerr.Wrap(err)
	}
	return repositories, nil
}

// GetRepositoryIssues implements tracker.DB.
func (s *SQLRepoStore) GetRepositoryIssues(ctx context.Context, repositoryID uuid.UUID) ([]*tracker.Issue, error) {
	rows, err := s.pool.Query(ctx, getRepositoryIssues, uuidParam(repositoryID))
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	defer rows.Close()

	issues := []*tracker.Issue{}
	for rows.Next() {
		var (
			issue      tracker.Issue
			labels     pgtype.TextArray
			area       *string
			kind       *string
			difficulty *string
		)
		if err := rows.Scan(&issue.IssueID, &issue.Title, &issue.URL, &issue.Number,
			&labels, &issue.PublishedAt, &issue.HasLinkedPRs, &issue.Digest, &area,
			&kind, &difficulty, &issue.MentorAvailable, &issue.Mentor,
			&issue.GoodFirstIssue); err != nil {
			return nil, skerr.Wrap(err)
		}
		if ss := textArrayPtr(labels); ss != nil {
			issue.Labels = *ss
		} else {
			issue.Labels = []string{}
		}
		if area != nil {
			a := tracker.IssueArea(*area)
			issue.Area = &a
		}
		if kind != nil {
			k := tracker.IssueKind(*kind)
			issue.Kind = &k
		}
		if difficulty != nil {
			d := tracker.IssueDifficulty(*difficulty)
			issue.Difficulty = &d
		}
		issues = append(issues, &issue)
	}
	if err := rows.Err(); err != nil {
		return nil, skerr.Wrap(err)
	}
	return issues, nil
}

// RegisterIssue implements tracker.DB.
func (s *SQLRepoStore) RegisterIssue(ctx context.Context, repository *tracker.Repository, issue *tracker.Issue) error {
	tsTexts := issue.PrepareTsTexts(repository)
	_, err := s.pool.Exec(ctx, registerIssue,
		issue.IssueID,
		issue.Title,
		issue.URL,
		issue.Number,
		issue.Labels,
		issue.Digest,
		areaParam(issue.Area),
		kindParam(issue.Kind),
		difficultyParam(issue.Difficulty),
		issue.MentorAvailable,
		issue.Mentor,
		issue.GoodFirstIssue,
		issue.HasLinkedPRs,
		issue.PublishedAt,
		uuidParam(repository.RepositoryID),
		tsTexts.WeightA,
		tsTexts.WeightB,
		tsTexts.WeightC,
	)
	return skerr.Wrap(err)
}

// UnregisterIssue implements tracker.DB.
func (s *SQLRepoStore) UnregisterIssue(ctx context.Context, issueID int64) error {
	_, err := s.pool.Exec(ctx, unregisterIssue, issueID)
	return skerr.Wrap(err)
}

// UpdateRepositoryGHData implements tracker.DB.
func (s *SQLRepoStore) UpdateRepositoryGHData(ctx context.Context, repository *tracker.Repository) error {
	_, err := s.pool.Exec(ctx, updateRepositoryGHData,
		uuidParam(repository.RepositoryID),
		repository.Description,
		repository.HomepageURL,
		toTextArray(repository.Languages),
		repository.Stars,
		toTextArray(repository.Topics),
		repository.Digest,
	)
	return skerr.Wrap(err)
}

// UpdateRepositoryLastTrackTs implements tracker.DB.
func (s *SQLRepoStore) UpdateRepositoryLastTrackTs(ctx context.Context, repositoryID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, updateRepositoryLastTrackTs, uuidParam(repositoryID))
	return skerr.Wrap(err)
}

// textArrayPtr converts a possibly null text[] value into a string slice
// pointer, nil when the value was null.
func textArrayPtr(a pgtype.TextArray) *[]string {
	if a.Status != pgtype.Present {
		return nil
	}
	ss := make([]string, 0, len(a.Elements))
	for _, e := range a.Elements {
		if e.Status == pgtype.Present {
			ss = append(ss, e.String)
		}
	}
	return &ss
}

// toTextArray converts a string slice pointer into a text[] value, null when
// the pointer is nil.
func toTextArray(ss *[]string) pgtype.TextArray {
	var a pgtype.TextArray
	if ss == nil {
		_ = a.Set(nil)
	} else {
		_ = a.Set(*ss)
	}
	return a
}

// uuidParam converts a uuid.UUID into a pgtype.UUID query parameter.
func uuidParam(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{
		Bytes:  [16]byte(id),
		Status: pgtype.Present,
	}
}

func areaParam(a *tracker.IssueArea) *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}

func kindParam(k *tracker.IssueKind) *string {
	if k == nil {
		return nil
	}
	s := string(*k)
	return &s
}

func difficultyParam(d *tracker.IssueDifficulty) *string {
	if d == nil {
		return nil
	}
	s := string(*d)
	return &s
}
