package registrar

import (
	"github.com/cncf/clotributor/go/digest"
	"github.com/cncf/clotributor/go/util"
)

// Foundation is an organisation whose data file lists the projects to keep
// registered in the catalogue.
type Foundation struct {
	FoundationID string
	DataURL      string
}

// Project is a single entry of a foundation data file.
type Project struct {
	Name              string             `yaml:"name" json:"name"`
	DisplayName       *string            `yaml:"display_name" json:"display_name,omitempty"`
	Description       string             `yaml:"description" json:"description"`
	LogoURL           *string            `yaml:"logo_url" json:"logo_url,omitempty"`
	LogoDarkURL       *string            `yaml:"logo_dark_url" json:"logo_dark_url,omitempty"`
	DevStatsURL       *string            `yaml:"devstats_url" json:"devstats_url,omitempty"`
	AcceptedAt        *string            `yaml:"accepted_at" json:"accepted_at,omitempty"`
	Maturity          *string            `yaml:"maturity" json:"maturity,omitempty"`
	MaintainersWanted *MaintainersWanted `yaml:"maintainers_wanted" json:"maintainers_wanted,omitempty"`
	Digest            *string            `yaml:"-" json:"digest,omitempty"`
	Repositories      []Repository       `yaml:"repositories" json:"repositories"`
}

// Repository is a project's repository as listed in a foundation data file.
type Repository struct {
	Name              string   `yaml:"name" json:"name"`
	URL               string   `yaml:"url" json:"url"`
	Exclude           []string `yaml:"exclude" json:"exclude,omitempty"`
	IssuesFilterLabel *string  `yaml:"issues_filter_label" json:"issues_filter_label,omitempty"`
}

// MaintainersWanted indicates the project is looking for maintainers, with
// some optional reference and contact information.
type MaintainersWanted struct {
	Enabled  bool      `yaml:"enabled" json:"enabled"`
	Links    []Link    `yaml:"links" json:"links,omitempty"`
	Contacts []Contact `yaml:"contacts" json:"contacts,omitempty"`
}

// Link is a reference related to a project's maintainers search.
type Link struct {
	Title *string `yaml:"title" json:"title"`
	URL   string  `yaml:"url" json:"url"`
}

// Contact is a person to reach out to about maintaining a project.
type Contact struct {
	GitHubHandle string `yaml:"github_handle" json:"github_handle"`
}

// RemoveExcludedRepositories drops the repositories whose exclusion list
// names the given service. Must be called before UpdateDigest so excluded
// repositories never influence the project's fingerprint.
func (p *Project) RemoveExcludedRepositories(service string) {
	kept := p.Repositories[:0]
	for _, repo := range p.Repositories {
		if util.In(service, repo.Exclude) {
			continue
		}
		kept = append(kept, repo)
	}
	p.Repositories = kept
}

// UpdateDigest recomputes the project's digest over all fields except the
// digest itself.
func (p *Project) UpdateDigest() {
	var e digest.Encoder
	e.String(p.Name)
	e.OptString(p.DisplayName)
	e.String(p.Description)
	e.OptString(p.LogoURL)
	e.OptString(p.LogoDarkURL)
	e.OptString(p.DevStatsURL)
	e.OptString(p.AcceptedAt)
	e.OptString(p.Maturity)
	if p.MaintainersWanted == nil {
		e.None()
	} else {
		e.Some()
		e.Bool(p.MaintainersWanted.Enabled)
		if p.MaintainersWanted.Links == nil {
			e.None()
		} else {
			e.Some()
			e.Len(len(p.MaintainersWanted.Links))
			for _, link := range p.MaintainersWanted.Links {
				e.OptString(link.Title)
				e.String(link.URL)
			}
		}
		if p.MaintainersWanted.Contacts == nil {
			e.None()
		} else {
			e.Some()
			e.Len(len(p.MaintainersWanted.Contacts))
			for _, contact := range p.MaintainersWanted.Contacts {
				e.String(contact.GitHubHandle)
			}
		}
	}
	e.Len(len(p.Repositories))
	for _, repo := range p.Repositories {
		e.String(repo.Name)
		e.String(repo.URL)
		if repo.Exclude == nil {
			e.None()
		} else {
			e.Some()
			e.StringSlice(repo.Exclude)
		}
		e.OptString(repo.IssuesFilterLabel)
	}
	d := e.Sum()
	p.Digest = &d
}
