package registrar

import (
	"context"
)

// DB defines the operations the registrar needs on the catalogue.
type DB interface {
	// Foundations returns all registered foundations.
	Foundations(ctx context.Context) ([]*Foundation, error)

	// FoundationProjects returns the name and stored digest of every project
	// registered for the given foundation.
	FoundationProjects(ctx context.Context, foundationID string) (map[string]*string, error)

	// RegisterProject registers or updates the given project.
	RegisterProject(ctx context.Context, foundationID string, project *Project) error

	// UnregisterProject removes the given project and everything that hangs
	// from it.
	UnregisterProject(ctx context.Context, foundationID, projectName string) error
}
