// Package search holds the typed search request accepted by the issues
// search endpoint and the catalogue operations that serve it.
package search

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/cncf/clotributor/go/skerr"
)

// SearchIssuesInput is the filter the search endpoint accepts. It is
// serialised as JSON and handed verbatim to the catalogue's search_issues
// function, so the json tags are part of the contract with the database.
type SearchIssuesInput struct {
	Limit           *int     `json:"limit,omitempty"`
	Offset          *int     `json:"offset,omitempty"`
	SortBy          *string  `json:"sort_by,omitempty"`
	Foundation      []string `json:"foundation,omitempty"`
	Maturity        []string `json:"maturity,omitempty"`
	Project         []string `json:"project,omitempty"`
	Area            []string `json:"area,omitempty"`
	Kind            []string `json:"kind,omitempty"`
	Difficulty      []string `json:"difficulty,omitempty"`
	Language        []string `json:"language,omitempty"`
	MentorAvailable *bool    `json:"mentor_available,omitempty"`
	GoodFirstIssue  *bool    `json:"good_first_issue,omitempty"`
	NoLinkedPRs     *bool    `json:"no_linked_prs,omitempty"`
	TsQueryWeb      *string  `json:"ts_query_web,omitempty"`
}

// API defines the operations the search endpoints need on the catalogue.
type API interface {
	// GetIssuesFilters returns a JSON document with the facet values that
	// can be used to filter issues.
	GetIssuesFilters(ctx context.Context) (string, error)

	// SearchIssues returns the total number of issues matching the input
	// and one page of them as a JSON document.
	SearchIssues(ctx context.Context, input *SearchIssuesInput) (int64, string, error)
}

// arrayKeyRegex matches query string keys of the form name[index].
var arrayKeyRegex = regexp.MustCompile(`^([a-z_]+)\[([0-9]+)\]$`)

// ParseSearchIssuesInput builds a SearchIssuesInput from a query string.
// Array values are encoded as name[index]=value pairs. Unknown keys are
// ignored; values that fail to parse as the expected type are an error.
func ParseSearchIssuesInput(query url.Values) (*SearchIssuesInput, error) {
	input := &SearchIssuesInput{}
	arrays := map[string]map[int]string{}
	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		value := values[0]

		if m := arrayKeyRegex.FindStringSubmatch(key); m != nil {
			index, err := strconv.Atoi(m[2])
			if err != nil {
				return nil, skerr.Wrapf(err, "invalid index in %q", key)
			}
			if arrays[m[1]] == nil {
				arrays[m[1]] = map[int]string{}
			}
			arrays[m[1]][index] = value
			continue
		}

		switch key {
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, skerr.Wrapf(err, "invalid limit %q", value)
			}
			input.Limit = &n
		case "offset":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, skerr.Wrapf(err, "invalid offset %q", value)
			}
			input.Offset = &n
		case "sort_by":
			v := value
			input.SortBy = &v
		case "ts_query_web":
			v := value
			input.TsQueryWeb = &v
		case "mentor_available", "good_first_issue", "no_linked_prs":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, skerr.Wrapf(err, "invalid %s %q", key, value)
			}
			switch key {
			case "mentor_available":
				input.MentorAvailable = &b
			case "good_first_issue":
				input.GoodFirstIssue = &b
			case "no_linked_prs":
				input.NoLinkedPRs = &b
			}
		}
	}

	for name, byIndex := range arrays {
		indices := make([]int, 0, len(byIndex))
		for index := range byIndex {
			indices = append(indices, index)
		}
		sort.Ints(indices)
		values := make([]string, 0, len(indices))
		for _, index := range indices {
			values = append(values, byIndex[index])
		}
		switch name {
		case "foundation":
			input.Foundation = values
		case "maturity":
			input.Maturity = values
		case "project":
			input.Project = values
		case "area":
			input.Area = values
		case "kind":
			input.Kind = values
		case "difficulty":
			input.Difficulty = values
		case "language":
			input.Language = values
		}
	}

	return input, nil
}
