// Package memory provides an in-process [repository.Store].
//
// All entities live in memory behind a single RWMutex and IDs come from one
// sequence shared by every kind. Entities are returned by pointer; callers
// must not mutate reference data they get back.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/repository"
)

var _ repository.Store = (*Store)(nil)

// Store is a thread-safe in-memory repository.
type Store struct {
	mu     sync.RWMutex
	nextID int

	providers   []*model.CFProvider
	categories  []*model.DeviceCategory
	classes     []*model.DeviceClass
	types       []*model.DeviceType
	adapters    []*model.ProtocolAdapter
	definitions []*model.ServiceDefinition
	users       []*model.User
	groups      []*model.CompanyGroup
	projects    []*model.Project

	devices  map[int]*model.DeviceItem
	versions map[int]*model.ProjectVersion
}

// New returns an empty store.
func New() *Store {
	return &Store{
		devices:  make(map[int]*model.DeviceItem),
		versions: make(map[int]*model.ProjectVersion),
	}
}

// assignID gives id a fresh value if it is unset. Callers hold s.mu.
func (s *Store) assignID(id *int) {
	if *id > 0 {
		if *id > s.nextID {
			s.nextID = *id
		}
		return
	}
	s.nextID++
	*id = s.nextID
}

// AddCFProvider adds a provider. Entities with a zero ID get one assigned.
func (s *Store) AddCFProvider(p *model.CFProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&p.ID)
	s.providers = append(s.providers, p)
}

// AddDeviceCategory adds a device category.
func (s *Store) AddDeviceCategory(c *model.DeviceCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&c.ID)
	s.categories = append(s.categories, c)
}

// AddDeviceClass adds a device class.
func (s *Store) AddDeviceClass(c *model.DeviceClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&c.ID)
	s.classes = append(s.classes, c)
}

// AddDeviceType adds a device type.
func (s *Store) AddDeviceType(t *model.DeviceType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&t.ID)
	s.types = append(s.types, t)
}

// AddProtocolAdapter adds a protocol adapter.
func (s *Store) AddProtocolAdapter(a *model.ProtocolAdapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&a.ID)
	s.adapters = append(s.adapters, a)
}

// AddServiceDefinition adds a service definition.
func (s *Store) AddServiceDefinition(d *model.ServiceDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&d.ID)
	s.definitions = append(s.definitions, d)
}

// AddUser adds a user.
func (s *Store) AddUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&u.ID)
	s.users = append(s.users, u)
}

// AddCompanyGroup adds a company group.
func (s *Store) AddCompanyGroup(g *model.CompanyGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&g.ID)
	s.groups = append(s.groups, g)
}

// AddProject adds a project.
func (s *Store) AddProject(p *model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&p.ID)
	s.projects = append(s.projects, p)
}

// AddDeviceItem adds a device item, typically a template.
func (s *Store) AddDeviceItem(d *model.DeviceItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignID(&d.ID)
	s.devices[d.ID] = d
}

func (s *Store) CFProviders(context.Context) ([]*model.CFProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.providers), nil
}

func (s *Store) DeviceCategories(context.Context) ([]*model.DeviceCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories), nil
}

func (s *Store) DeviceClasses(context.Context) ([]*model.DeviceClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.classes), nil
}

func (s *Store) DeviceTypes(context.Context) ([]*model.DeviceType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.types), nil
}

func (s *Store) ProtocolAdapters(context.Context) ([]*model.ProtocolAdapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.adapters), nil
}

func (s *Store) ServiceDefinitions(context.Context) ([]*model.ServiceDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.definitions), nil
}

func (s *Store) TemplatesByName(_ context.Context, name string) ([]*model.DeviceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.DeviceItem
	for _, d := range s.devices {
		if d.Template && d.Name == name {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b *model.DeviceItem) int { return a.ID - b.ID })
	return out, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *Store) CompanyGroupByName(_ context.Context, name string) (*model.CompanyGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, nil
}

func (s *Store) ProjectByName(_ context.Context, name string, groupID int) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.Name == name && p.Group != nil && p.Group.ID == groupID {
			return p, nil
		}
	}
	return nil, nil
}

func (s *Store) DeviceItem(_ context.Context, id int) (*model.DeviceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.devices[id], nil
}

func (s *Store) Project(_ context.Context, id int) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

// SaveProjectVersion stores pv and assigns IDs to it and every owned entity
// that has none. Saved devices become visible to [Store.DeviceItem] and, if
// they are templates, to [Store.TemplatesByName].
func (s *Store) SaveProjectVersion(_ context.Context, pv *model.ProjectVersion) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignID(&pv.ID)
	for _, z := range pv.Zones {
		s.assignID(&z.ID)
	}
	for _, d := range pv.Devices {
		s.assignID(&d.ID)
		s.devices[d.ID] = d
	}
	for _, n := range pv.CFNodes {
		s.assignID(&n.ID)
	}
	for _, si := range pv.Services {
		s.assignID(&si.ID)
	}
	s.versions[pv.ID] = pv
	return pv.ID, nil
}

func (s *Store) LoadProjectVersion(_ context.Context, id int) (*model.ProjectVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[id], nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
