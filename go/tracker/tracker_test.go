package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cncf/clotributor/go/config"
	"github.com/cncf/clotributor/go/github"
	ghmocks "github.com/cncf/clotributor/go/github/mocks"
	"github.com/cncf/clotributor/go/tracker"
	"github.com/cncf/clotributor/go/tracker/mocks"
)

const (
	token1        = "0001"
	repositoryURL = "https://github.com/org1/repo1"
)

var repositoryID = uuid.MustParse("00000000-0001-0000-0000-000000000000")

func newTracker(cfg *config.TrackerConfig, db tracker.DB, gh github.GH) *tracker.Tracker {
	t := tracker.New(cfg, db, gh)
	t.ReportRateLimits = false
	return t
}

func testConfig() *config.TrackerConfig {
	return &config.TrackerConfig{
		Creds: config.Creds{
			GitHubTokens: []string{token1},
		},
		Tracker: config.Tracker{
			Concurrency: 1,
		},
	}
}

func TestRun_EmptyListOfGitHubTokens_Error(t *testing.T) {

	cfg := testConfig()
	cfg.Creds.GitHubTokens = nil
	db := &mocks.DB{}
	gh := &ghmocks.GH{}

	err := newTracker(cfg, db, gh).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GitHub tokens not found in config file (creds.githubTokens)")
}

func TestRun_ErrorGettingRepositoriesToTrack(t *testing.T) {

	db := &mocks.DB{}
	gh := &ghmocks.GH{}
	db.On("GetRepositoriesToTrack", mock.Anything).Return(nil, errors.New("fake error")).Once()

	err := newTracker(testConfig(), db, gh).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake error")
	db.AssertExpectations(t)
}

func TestRun_NoRepositoriesFound(t *testing.T) {

	db := &mocks.DB{}
	gh := &ghmocks.GH{}
	db.On("GetRepositoriesToTrack", mock.Anything).Return([]*tracker.Repository{}, nil).Once()

	require.NoError(t, newTracker(testConfig(), db, gh).Run(context.Background()))
	db.AssertExpectations(t)
	gh.AssertExpectations(t)
}

func TestRun_ErrorGettingRepositoryDataFromGH(t *testing.T) {

	db := &mocks.DB{}
	gh := &ghmocks.GH{}
	db.On("GetRepositoriesToTrack", mock.Anything).Return([]*tracker.Repository{
		{
			RepositoryID: repositoryID,
			URL:          repositoryURL,
		},
	}, nil).Once()
	gh.On("Repository", mock.Anything, token1, repositoryURL, (*string)(nil)).
		Return(nil, errors.New("fake error")).Once()

	err := newTracker(testConfig(), db, gh).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error tracking repository "+repositoryURL+": fake error")
	db.AssertExpectations(t)
	gh.AssertExpectations(t)
}

func TestRun_AggregatesErrorsAcrossRepositories(t *testing.T) {

	db := &mocks.DB{}
	gh := &ghmocks.GH{}
	db.On("GetRepositoriesToTrack", mock.Anything).Return([]*tracker.Repository{
		{RepositoryID: repositoryID, URL: "https://github.com/org1/repo1"},
		{RepositoryID: repositoryID, URL: "https://github.com/org1/repo2"},
	}, nil).Once()
	gh.On("Repository", mock.Anything, token1, "https://github.com/org1/repo1", (*string)(nil)).
		Return(nil, errors.New("error one")).Once()
	gh.On("Repository", mock.Anything, token1, "https://github.com/org1/repo2", (*string)(nil)).
		Return(nil, errors.New("error two")).Once()

	err := newTracker(testConfig(), db, gh).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error tracking repository https://github.com/org1/repo1: error one")
	assert.Contains(t, err.Error(), "error tracking repository https://github.com/org1/repo2: error two")
}

func TestRun_RegisterOneIssueAndUnregisterAnother(t *testing.T) {

	db := &mocks.DB{}
	gh := &ghmocks.GH{}

	db.On("GetRepositoriesToTrack", mock.Anything).Return([]*tracker.Repository{
		{
			RepositoryID: repositoryID,
			URL:          repositoryURL,
		},
	}, nil).Once()

	issueID := int64(1)
	publishedAt := "1985-04-12T23:20:50.52Z"
	description := "description"
	gh.On("Repository", mock.Anything, token1, repositoryURL, (*string)(nil)).Return(&github.Repository{
		Description: &description,
		Issues: github.IssueConnection{
			Nodes: []*github.IssueNode{
				{
					DatabaseID:  &issueID,
					Title:       "issue1",
					URL:         "issue1_url",
					Number:      1,
					PublishedAt: &publishedAt,
					Labels: &github.LabelConnection{
						Nodes: []*github.Label{
							{Name: "good first issue"},
							{Name: "bug"},
							{Name: "difficulty/easy"},
						},
					},
				},
			},
		},
	}, nil).Once()

	db.On("UpdateRepositoryGHData", mock.Anything, mock.MatchedBy(func(repo *tracker.Repository) bool {
		return repo.RepositoryID == repositoryID &&
			repo.Description != nil && *repo.Description == "description" &&
			repo.Stars != nil && *repo.Stars == 0 &&
			repo.Digest != nil && *repo.Digest == "16139cdd47898d43806d0fd1fb6b2596dbf618362f6b9c22a5a2ec1ec0b882f9"
	})).Return(nil).Once()

	db.On("GetRepositoryIssues", mock.Anything, repositoryID).Return([]*tracker.Issue{
		{
			IssueID:     2,
			Title:       "issue2",
			URL:         "issue2_url",
			Number:      2,
			Labels:      []string{},
			PublishedAt: time.Now().UTC(),
		},
	}, nil).Once()

	kindBug := tracker.KindBug
	difficultyEasy := tracker.DifficultyEasy
	goodFirstIssue := true
	expectedDigest := "f03756c20d37d8d544eaa69b415bfb4329fd898295b6e0a234decdbb12cae831"
	db.On("RegisterIssue", mock.Anything, mock.Anything, &tracker.Issue{
		IssueID:        1,
		Title:          "issue1",
		URL:            "issue1_url",
		Number:         1,
		Labels:         []string{"good first issue", "bug", "difficulty/easy"},
		PublishedAt:    time.Date(1985, time.April, 12, 23, 20, 50, 520000000, time.UTC),
		Digest:         &expectedDigest,
		Kind:           &kindBug,
		Difficulty:     &difficultyEasy,
		GoodFirstIssue: &goodFirstIssue,
	}).Return(nil).Once()
	db.On("UnregisterIssue", mock.Anything, int64(2)).Return(nil).Once()
	db.On("UpdateRepositoryLastTrackTs", mock.Anything, repositoryID).Return(nil).Once()

	require.NoError(t, newTracker(testConfig(), db, gh).Run(context.Background()))
	db.AssertExpectations(t)
	gh.AssertExpectations(t)
}

func TestRun_MatchingDigest_NoRegisterIssued(t *testing.T) {

	db := &mocks.DB{}
	gh := &ghmocks.GH{}

	repoDigest := "16139cdd47898d43806d0fd1fb6b2596dbf618362f6b9c22a5a2ec1ec0b882f9"
	db.On("GetRepositoriesToTrack", mock.Anything).Return([]*tracker.Repository{
		{
			RepositoryID: repositoryID,
			URL:          repositoryURL,
			Digest:       &repoDigest,
		},
	}, nil).Once()

	issueID := int64(1)
	publishedAt := "1985-04-12T23:20:50.52Z"
	description := "description"
	gh.On("Repository", mock.Anything, token1, repositoryURL, (*string)(nil)).Return(&github.Repository{
		Description: &description,
		Issues: github.IssueConnection{
			Nodes: []*github.IssueNode{
				{
					DatabaseID:  &issueID,
					Title:       "issue1",
					URL:         "issue1_url",
					Number:      1,
					PublishedAt: &publishedAt,
					Labels: &github.LabelConnection{
						Nodes: []*github.Label{{Name: "label1"}},
					},
				},
			},
		},
	}, nil).Once()

	// The stored issue digest matches the fresh one, so no register call is
	// expected, and neither is an unregister.
	storedDigest := "bfd1f875bce09b3edc4adc1553431e887ae70f429d549cbd746adc722243aafd"
	db.On("GetRepositoryIssues", mock.Anything, repositoryID).Return([]*tracker.Issue{
		{
			IssueID: 1,
			Title:   "issue1",
			Labels:  []string{"label1"},
			Digest:  &storedDigest,
		},
	}, nil).Once()
	db.On("UpdateRepositoryLastTrackTs", mock.Anything, repositoryID).Return(nil).Once()

	require.NoError(t, newTracker(testConfig(), db, gh).Run(context.Background()))
	db.AssertExpectations(t)
	db.AssertNotCalled(t, "RegisterIssue", mock.Anything, mock.Anything, mock.Anything)
	db.AssertNotCalled(t, "UnregisterIssue", mock.Anything, mock.Anything)
}
