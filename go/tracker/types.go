package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cncf/clotributor/go/digest"
	"github.com/cncf/clotributor/go/github"
	"github.com/cncf/clotributor/go/util"
)

// IssueArea classifies what part of a project an issue relates to.
type IssueArea string

// IssueKind classifies the nature of an issue.
type IssueKind string

// IssueDifficulty classifies how hard an issue is expected to be.
type IssueDifficulty string

const (
	AreaDocs IssueArea = "docs"

	KindBug         IssueKind = "bug"
	KindFeature     IssueKind = "feature"
	KindEnhancement IssueKind = "enhancement"

	DifficultyEasy   IssueDifficulty = "easy"
	DifficultyMedium IssueDifficulty = "medium"
	DifficultyHard   IssueDifficulty = "hard"
)

// Repository is a tracked repository as stored in the catalogue, together
// with the project and foundation it belongs to.
type Repository struct {
	RepositoryID      uuid.UUID
	Name              string
	Description       *string
	URL               string
	HomepageURL       *string
	Topics            *[]string
	Languages         *[]string
	Stars             *int32
	Digest            *string
	IssuesFilterLabel *string
	ProjectName       string
	FoundationID      string
}

// UpdateGHData applies the given snapshot onto the repository and recomputes
// its digest. Returns true when the digest changed.
func (r *Repository) UpdateGHData(ghRepo *github.Repository) bool {
	r.Description = ghRepo.Description
	r.HomepageURL = ghRepo.HomepageURL
	r.Languages = ghRepo.LanguageNames()
	stars := ghRepo.StargazerCount
	r.Stars = &stars
	r.Topics = ghRepo.TopicNames()

	prevDigest := r.Digest
	r.UpdateDigest()
	return prevDigest == nil || *r.Digest != *prevDigest
}

// UpdateDigest recomputes the repository's digest from the fields that are
// refreshed from the source host.
func (r *Repository) UpdateDigest() {
	var e digest.Encoder
	e.OptString(r.Description)
	e.OptString(r.HomepageURL)
	e.OptStringSlice(r.Languages)
	e.OptStringSlice(r.Topics)
	e.OptInt32(r.Stars)
	d := e.Sum()
	r.Digest = &d
}

// Issue is a contributor-friendly issue as stored in the catalogue.
type Issue struct {
	IssueID         int64
	Title           string
	URL             string
	Number          int32
	Labels          []string
	PublishedAt     time.Time
	HasLinkedPRs    bool
	Digest          *string
	Area            *IssueArea
	Kind            *IssueKind
	Difficulty      *IssueDifficulty
	MentorAvailable *bool
	Mentor          *string
	GoodFirstIssue  *bool
}

// UpdateDigest recomputes the issue's digest from the fields whose change
// requires re-registering the issue.
func (i *Issue) UpdateDigest() {
	var e digest.Encoder
	e.String(i.Title)
	e.StringSlice(i.Labels)
	e.Bool(i.HasLinkedPRs)
	d := e.Sum()
	i.Digest = &d
}

// PopulateFromLabels extracts the issue's area, kind, difficulty, mentor and
// good first issue flags from its labels. The first label that matches a
// slot wins.
func (i *Issue) PopulateFromLabels() {
	easyLabels := []string{"difficulty/easy", "level/easy"}
	mediumLabels := []string{"difficulty/medium", "level/medium"}
	hardLabels := []string{"difficulty/hard", "level/hard"}

	for _, label := range i.Labels {
		// Area
		if strings.Contains(label, "docs") || strings.Contains(label, "documentation") {
			if i.Area == nil {
				area := AreaDocs
				i.Area = &area
			}
			continue
		}

		// Kind
		var kind IssueKind
		if strings.Contains(label, "enhancement") || strings.Contains(label, "improvement") {
			kind = KindEnhancement
		} else if strings.Contains(label, "feature") {
			kind = KindFeature
		} else if strings.Contains(label, "bug") {
			kind = KindBug
		}
		if kind != "" {
			if i.Kind == nil {
				k := kind
				i.Kind = &k
			}
			continue
		}

		// Difficulty
		var difficulty IssueDifficulty
		if util.In(label, easyLabels) {
			difficulty = DifficultyEasy
		} else if util.In(label, mediumLabels) {
			difficulty = DifficultyMedium
		} else if util.In(label, hardLabels) {
			difficulty = DifficultyHard
		}
		if difficulty != "" {
			if i.Difficulty == nil {
				d := difficulty
				i.Difficulty = &d
			}
			continue
		}

		// Mentor available
		if label == "mentor available" || label == "mentorship" {
			if i.MentorAvailable == nil {
				t := true
				i.MentorAvailable = &t
			}
			continue
		}

		// Good first issue
		if label == "good first issue" {
			if i.GoodFirstIssue == nil {
				t := true
				i.GoodFirstIssue = &t
			}
			continue
		}
	}
}

// TsTexts are the texts used to build the issue's text search document.
type TsTexts struct {
	WeightA string
	WeightB string
	WeightC string
}

// PrepareTsTexts builds the weighted text streams fed to the catalogue's
// full text search document for this issue.
func (i *Issue) PrepareTsTexts(repo *Repository) TsTexts {
	joinOpt := func(ss *[]string) string {
		if ss == nil {
			return ""
		}
		return strings.Join(*ss, " ")
	}
	description := ""
	if repo.Description != nil {
		description = *repo.Description
	}

	weightB := strings.TrimSpace(fmt.Sprintf("%s %s %s %s %s",
		repo.FoundationID, repo.Name, description, joinOpt(repo.Topics), joinOpt(repo.Languages)))

	return TsTexts{
		WeightA: repo.ProjectName,
		WeightB: weightB,
		WeightC: fmt.Sprintf("%s %s", i.Title, strings.Join(i.Labels, " ")),
	}
}
