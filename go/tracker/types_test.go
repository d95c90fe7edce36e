package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cncf/clotributor/go/github"
)

func strPtr(s string) *string {
	return &s
}

func TestRepository_UpdateDigest(t *testing.T) {

	stars := int32(0)
	repo := Repository{
		URL:   "https://repo1.url",
		Stars: &stars,
	}
	repo.UpdateDigest()
	require.NotNil(t, repo.Digest)
	assert.Equal(t, "cdb032de4c6cb506da0606e0934e69ad1ae64773ffaa76f9d6e28192067c43cf", *repo.Digest)
}

func TestRepository_UpdateGHData_NoChanges(t *testing.T) {

	stars := int32(0)
	repo := Repository{
		URL:    "https://repo1.url",
		Stars:  &stars,
		Digest: strPtr("ac07f8e8751d1696c492c15d0b812feeb05c783b7584385986770192a058a85b"),
	}
	ghRepo := &github.Repository{
		HomepageURL: strPtr("https://repo1.url"),
	}

	assert.False(t, repo.UpdateGHData(ghRepo))
}

func TestRepository_UpdateGHData_DescriptionChanged(t *testing.T) {

	stars := int32(0)
	repo := Repository{
		URL:    "https://repo1.url",
		Stars:  &stars,
		Digest: strPtr("ac07f8e8751d1696c492c15d0b812feeb05c783b7584385986770192a058a85b"),
	}
	ghRepo := &github.Repository{
		Description: strPtr("description"),
		HomepageURL: strPtr("https://repo1.url"),
	}

	assert.True(t, repo.UpdateGHData(ghRepo))
	require.NotNil(t, repo.Digest)
	assert.Equal(t, "5a31ae9579be1f97427de912fdd1943a9b0ef07cefe07b23a614b8d02384b7ea", *repo.Digest)
}

func TestIssue_UpdateDigest(t *testing.T) {

	issue := Issue{
		IssueID:     1,
		Title:       "issue1",
		URL:         "issue1_url",
		Number:      1,
		Labels:      []string{"label1"},
		PublishedAt: time.Date(1985, time.April, 12, 23, 20, 50, 0, time.UTC),
	}
	issue.UpdateDigest()
	require.NotNil(t, issue.Digest)
	assert.Equal(t, "bfd1f875bce09b3edc4adc1553431e887ae70f429d549cbd746adc722243aafd", *issue.Digest)
}

func TestIssue_UpdateDigest_OtherFieldsDoNotAffectIt(t *testing.T) {

	issue := Issue{
		Title:  "issue1",
		Labels: []string{"label1"},
	}
	issue.UpdateDigest()
	before := *issue.Digest

	issue.URL = "other_url"
	issue.Number = 99
	issue.PublishedAt = time.Now()
	issue.UpdateDigest()
	assert.Equal(t, before, *issue.Digest)

	issue.HasLinkedPRs = true
	issue.UpdateDigest()
	assert.NotEqual(t, before, *issue.Digest)
}

func TestIssue_PrepareTsTexts(t *testing.T) {

	topics := []string{"topic1", "topic2"}
	languages := []string{"language1"}
	repo := Repository{
		Name:         "repo",
		Description:  strPtr("description"),
		URL:          "https://repo1.url",
		Topics:       &topics,
		Languages:    &languages,
		ProjectName:  "project",
		FoundationID: "foundation",
	}
	issue := Issue{
		IssueID: 1,
		Title:   "issue1",
		Labels:  []string{"label1", "label2"},
	}

	assert.Equal(t, TsTexts{
		WeightA: "project",
		WeightB: "foundation repo description topic1 topic2 language1",
		WeightC: "issue1 label1 label2",
	}, issue.PrepareTsTexts(&repo))
}

func TestIssue_PrepareTsTexts_MissingOptionalFields(t *testing.T) {

	repo := Repository{
		Name:         "repo",
		URL:          "https://repo1.url",
		ProjectName:  "project",
		FoundationID: "foundation",
	}
	issue := Issue{
		Title:  "issue1",
		Labels: []string{},
	}

	tsTexts := issue.PrepareTsTexts(&repo)
	assert.Equal(t, "foundation repo", tsTexts.WeightB)
	assert.Equal(t, "issue1 ", tsTexts.WeightC)
}

func TestIssue_PopulateFromLabels(t *testing.T) {

	issue := Issue{
		IssueID: 1,
		Title:   "issue1",
		Labels: []string{
			"documentation",
			"bug",
			"difficulty/medium",
			"mentor available",
			"good first issue",
		},
	}

	issue.PopulateFromLabels()
	require.NotNil(t, issue.Area)
	assert.Equal(t, AreaDocs, *issue.Area)
	require.NotNil(t, issue.Kind)
	assert.Equal(t, KindBug, *issue.Kind)
	require.NotNil(t, issue.Difficulty)
	assert.Equal(t, DifficultyMedium, *issue.Difficulty)
	require.NotNil(t, issue.MentorAvailable)
	assert.True(t, *issue.MentorAvailable)
	require.NotNil(t, issue.GoodFirstIssue)
	assert.True(t, *issue.GoodFirstIssue)
	assert.Nil(t, issue.Mentor)
}

func TestIssue_PopulateFromLabels_FirstMatchWins(t *testing.T) {

	issue := Issue{
		Labels: []string{"level/easy", "difficulty/hard", "feature", "bug"},
	}
	issue.PopulateFromLabels()
	require.NotNil(t, issue.Difficulty)
	assert.Equal(t, DifficultyEasy, *issue.Difficulty)
	require.NotNil(t, issue.Kind)
	assert.Equal(t, KindFeature, *issue.Kind)
}

func TestIssue_PopulateFromLabels_Mentorship(t *testing.T) {

	issue := Issue{
		Labels: []string{"mentorship"},
	}
	issue.PopulateFromLabels()
	require.NotNil(t, issue.MentorAvailable)
	assert.True(t, *issue.MentorAvailable)
}

func TestIssue_PopulateFromLabels_Idempotent(t *testing.T) {

	issue := Issue{
		Labels: []string{"docs", "enhancement"},
	}
	issue.PopulateFromLabels()
	first := issue
	issue.PopulateFromLabels()
	assert.Equal(t, first, issue)
}

func TestIssuesFromGH(t *testing.T) {

	id1 := int64(1)
	id2 := int64(2)
	publishedAt := "1985-04-12T23:20:50.52Z"
	ghRepo := &github.Repository{
		Issues: github.IssueConnection{
			Nodes: []*github.IssueNode{
				nil,
				{
					// No database id, dropped.
					Title:       "no-id",
					PublishedAt: &publishedAt,
				},
				{
					// No published_at, dropped.
					DatabaseID: &id2,
					Title:      "no-published-at",
				},
				{
					DatabaseID:  &id2,
					Title:       "bad-date",
					PublishedAt: strPtr("not-a-date"),
				},
				{
					DatabaseID:  &id1,
					Title:       "issue1",
					URL:         "issue1_url",
					Number:      1,
					PublishedAt: &publishedAt,
					Labels: &github.LabelConnection{
						Nodes: []*github.Label{{Name: "bug"}, nil, {Name: "good first issue"}},
					},
					ClosedByPullRequestsReferences: &github.PullRequestConnection{
						Nodes: []github.PullRequestRef{{Number: 7}},
					},
				},
			},
		},
	}

	issues := issuesFromGH(ghRepo)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, int64(1), issue.IssueID)
	assert.Equal(t, "issue1", issue.Title)
	assert.Equal(t, "issue1_url", issue.URL)
	assert.Equal(t, int32(1), issue.Number)
	assert.Equal(t, []string{"bug", "good first issue"}, issue.Labels)
	assert.True(t, issue.HasLinkedPRs)
	require.NotNil(t, issue.Kind)
	assert.Equal(t, KindBug, *issue.Kind)
	require.NotNil(t, issue.GoodFirstIssue)
	assert.True(t, *issue.GoodFirstIssue)
	require.NotNil(t, issue.Digest)
	expected := time.Date(1985, time.April, 12, 23, 20, 50, 520000000, time.UTC)
	assert.True(t, issue.PublishedAt.Equal(expected))
}
