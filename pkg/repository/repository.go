// Package repository defines the persistence boundary of the transfer engine.
//
// [Repository] is the read side an import session resolves references
// against: reference catalogs addressed by natural key, templates, users and
// projects. [Store] adds persistence of whole project versions. Lookups of a
// single entity return (nil, nil) when nothing matches; a non-nil error
// always means the backend itself failed.
//
// Implementations:
//   - [github.com/matzehuels/blueprint/pkg/repository/memory]: in-process,
//     used by tests, the CLI default and catalog files
//   - [github.com/matzehuels/blueprint/pkg/repository/mongo]: MongoDB
package repository

import (
	"context"

	"github.com/matzehuels/blueprint/pkg/model"
)

// Repository is the read-only view of persisted reference data.
type Repository interface {
	CFProviders(ctx context.Context) ([]*model.CFProvider, error)
	DeviceCategories(ctx context.Context) ([]*model.DeviceCategory, error)
	DeviceClasses(ctx context.Context) ([]*model.DeviceClass, error)
	DeviceTypes(ctx context.Context) ([]*model.DeviceType, error)
	ProtocolAdapters(ctx context.Context) ([]*model.ProtocolAdapter, error)
	ServiceDefinitions(ctx context.Context) ([]*model.ServiceDefinition, error)

	// TemplatesByName returns every template device item named name.
	TemplatesByName(ctx context.Context, name string) ([]*model.DeviceItem, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	CompanyGroupByName(ctx context.Context, name string) (*model.CompanyGroup, error)
	ProjectByName(ctx context.Context, name string, groupID int) (*model.Project, error)

	// DeviceItem and Project fetch by primary key.
	DeviceItem(ctx context.Context, id int) (*model.DeviceItem, error)
	Project(ctx context.Context, id int) (*model.Project, error)
}

// Store persists imported project versions.
type Store interface {
	Repository

	// SaveProjectVersion persists pv and every entity it owns, assigning
	// IDs to entities that have none. It returns the version's ID.
	SaveProjectVersion(ctx context.Context, pv *model.ProjectVersion) (int, error)

	// LoadProjectVersion returns the version with the given ID together
	// with its zones, devices, rule-graph nodes and service instances, or
	// (nil, nil) if there is none.
	LoadProjectVersion(ctx context.Context, id int) (*model.ProjectVersion, error)

	Close() error
}
