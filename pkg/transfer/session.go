package transfer

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/repository"
)

// keySeparator joins the fields of a composite natural key.
const keySeparator = "$$$"

func lookupKey(parts ...string) string {
	return strings.Join(parts, keySeparator)
}

// Session holds the state of a single import: natural-key indexes of the
// reference data, the entities materialized so far keyed by document ID, and
// the set of recoverable errors.
//
// A Session is created per import and must not be shared between
// goroutines. It holds no locks.
type Session struct {
	repo repository.Repository

	version *model.ProjectVersion

	zones    *arena[model.Zone]
	devices  *arena[model.DeviceItem]
	cfnodes  *arena[model.CFNode]
	services *arena[model.ServiceInstance]

	providers   map[string]*model.CFProvider
	categories  map[string]*model.DeviceCategory
	classes     map[string]*model.DeviceClass
	deviceTypes map[string]*model.DeviceType
	adapters    map[string]*model.ProtocolAdapter
	definitions map[string]*model.ServiceDefinition
	users       map[string]*model.User

	errors map[string]struct{}
}

// NewSession loads and indexes the reference data of repo.
//
// Duplicate natural keys are recorded as "not unique" errors and the entity
// listed later wins. Only a failing repository makes NewSession fail.
func NewSession(ctx context.Context, repo repository.Repository) (*Session, error) {
	s := &Session{
		repo:     repo,
		zones:    newArena[model.Zone]("Zone"),
		devices:  newArena[model.DeviceItem]("DeviceItem"),
		cfnodes:  newArena[model.CFNode]("CFNode"),
		services: newArena[model.ServiceInstance]("ServiceInstance"),
		users:    make(map[string]*model.User),
		errors:   make(map[string]struct{}),
	}

	providers, err := repo.CFProviders(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load cf providers")
	}
	s.providers = index(s, providers,
		func(p *model.CFProvider) string { return lookupKey(p.Name, string(p.Type)) },
		func(p *model.CFProvider) string {
			return fmt.Sprintf(`CFProvider not unique [name="%s", typeName="%s"]`, p.Name, p.Type)
		})

	categories, err := repo.DeviceCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load device categories")
	}
	s.categories = index(s, categories,
		func(c *model.DeviceCategory) string { return c.Name },
		func(c *model.DeviceCategory) string {
			return fmt.Sprintf(`DeviceCategory not unique [name="%s"]`, c.Name)
		})

	classes, err := repo.DeviceClasses(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load device classes")
	}
	s.classes = index(s, classes,
		func(c *model.DeviceClass) string { return c.Name },
		func(c *model.DeviceClass) string {
			return fmt.Sprintf(`DeviceClass not unique [name="%s"]`, c.Name)
		})

	types, err := repo.DeviceTypes(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load device types")
	}
	s.deviceTypes = index(s, types,
		func(t *model.DeviceType) string { return lookupKey(t.Name, t.CategoryName()) },
		func(t *model.DeviceType) string {
			return fmt.Sprintf(`DeviceType not unique [deviceTypeName="%s", categoryName="%s"]`, t.Name, t.CategoryName())
		})

	adapters, err := repo.ProtocolAdapters(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load protocol adapters")
	}
	s.adapters = index(s, adapters,
		func(a *model.ProtocolAdapter) string { return lookupKey(a.Name, a.Version) },
		func(a *model.ProtocolAdapter) string {
			return fmt.Sprintf(`ProtocolAdapter not unique [name="%s", version="%s"]`, a.Name, a.Version)
		})

	definitions, err := repo.ServiceDefinitions(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load service definitions")
	}
	s.definitions = index(s, definitions,
		func(d *model.ServiceDefinition) string { return lookupKey(d.UID, d.Vendor, d.Version) },
		func(d *model.ServiceDefinition) string {
			return fmt.Sprintf(`ServiceDefinition not unique [uid="%s", vendor="%s", version="%s"]`, d.UID, d.Vendor, d.Version)
		})

	return s, nil
}

// index builds a natural-key map over items. A key seen twice records the
// message built by notUnique and the later item replaces the earlier one.
func index[T any](s *Session, items []*T, key func(*T) string, notUnique func(*T) string) map[string]*T {
	m := make(map[string]*T, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		k := key(item)
		if _, dup := m[k]; dup {
			s.AddError(notUnique(item))
		}
		m[k] = item
	}
	return m
}

// AddError records a recoverable error. Repeated messages are kept once.
func (s *Session) AddError(msg string) {
	s.errors[msg] = struct{}{}
}

func (s *Session) addErrorf(format string, args ...any) {
	s.AddError(fmt.Sprintf(format, args...))
}

// Errors returns the recorded errors in lexicographic order.
func (s *Session) Errors() []string {
	out := make([]string, 0, len(s.errors))
	for msg := range s.errors {
		out = append(out, msg)
	}
	slices.Sort(out)
	return out
}

// Version returns the project version imported so far, or nil.
func (s *Session) Version() *model.ProjectVersion {
	return s.version
}

// LookupCFProvider resolves a provider by name and type name.
//
// All Lookup methods share one contract: an empty key returns nil without
// error, and a key without a match records a "not found" error and
// returns nil.
func (s *Session) LookupCFProvider(name, typeName string) *model.CFProvider {
	if name == "" {
		return nil
	}
	p := s.providers[lookupKey(name, typeName)]
	if p == nil {
		s.addErrorf(`CFProvider not found [name="%s", typeName="%s"]`, name, typeName)
	}
	return p
}

// LookupDeviceCategory resolves a device category by name.
func (s *Session) LookupDeviceCategory(name string) *model.DeviceCategory {
	if name == "" {
		return nil
	}
	c := s.categories[name]
	if c == nil {
		s.addErrorf(`DeviceCategory not found [name="%s"]`, name)
	}
	return c
}

// LookupDeviceClass resolves a device class by name.
func (s *Session) LookupDeviceClass(name string) *model.DeviceClass {
	if name == "" {
		return nil
	}
	c := s.classes[name]
	if c == nil {
		s.addErrorf(`DeviceClass not found [name="%s"]`, name)
	}
	return c
}

// LookupDeviceType resolves a device type by its name and its category's
// name. Both are required.
func (s *Session) LookupDeviceType(name, category string) *model.DeviceType {
	if name == "" || category == "" {
		return nil
	}
	t := s.deviceTypes[lookupKey(name, category)]
	if t == nil {
		s.addErrorf(`DeviceType not found [deviceTypeName="%s", categoryName="%s"]`, name, category)
	}
	return t
}

// LookupProtocolAdapter resolves a protocol adapter by name and version.
// Both are required.
func (s *Session) LookupProtocolAdapter(name, version string) *model.ProtocolAdapter {
	if name == "" || version == "" {
		return nil
	}
	a := s.adapters[lookupKey(name, version)]
	if a == nil {
		s.addErrorf(`ProtocolAdapter not found [name="%s", version="%s"]`, name, version)
	}
	return a
}

// LookupServiceDefinition resolves a service definition by uid, vendor and
// version. The name only appears in the error message.
func (s *Session) LookupServiceDefinition(name, uid, vendor, version string) *model.ServiceDefinition {
	if uid == "" {
		return nil
	}
	d := s.definitions[lookupKey(uid, vendor, version)]
	if d == nil {
		s.addErrorf(`ServiceDefinition not found [name="%s", uid="%s", vendor="%s", version="%s"]`, name, uid, vendor, version)
	}
	return d
}

// LookupProject resolves a project by its name and the name of the company
// group that owns it.
func (s *Session) LookupProject(ctx context.Context, projectName, companyName string) *model.Project {
	if projectName == "" {
		return nil
	}
	group, err := s.repo.CompanyGroupByName(ctx, companyName)
	if err != nil {
		s.addErrorf(`CompanyGroup lookup failed [name="%s"]: %v`, companyName, err)
		return nil
	}
	var project *model.Project
	if group != nil {
		project, err = s.repo.ProjectByName(ctx, projectName, group.ID)
		if err != nil {
			s.addErrorf(`Project lookup failed [projectName="%s", companyName="%s"]: %v`, projectName, companyName, err)
			return nil
		}
	}
	if project == nil {
		s.addErrorf(`Project not found [projectName="%s", companyName="%s"]`, projectName, companyName)
	}
	return project
}

// LookupUser resolves a user by email. Hits are cached for the rest of the
// session; misses are not.
func (s *Session) LookupUser(ctx context.Context, email string) *model.User {
	if email == "" {
		return nil
	}
	if u, ok := s.users[email]; ok {
		return u
	}
	u, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		s.addErrorf(`User lookup failed [email="%s"]: %v`, email, err)
		return nil
	}
	if u == nil {
		s.addErrorf(`User not found [email="%s"]`, email)
		return nil
	}
	s.users[email] = u
	return u
}

// LookupTemplate resolves a template device by name, vendor, model number
// and version. Candidates are fetched by name and must match the other
// three fields exactly, unset matching only unset. When several templates
// match, an error is recorded and the first one is returned.
func (s *Session) LookupTemplate(ctx context.Context, name, vendor, modelNumber, version string) *model.DeviceItem {
	if name == "" {
		return nil
	}
	templates, err := s.repo.TemplatesByName(ctx, name)
	if err != nil {
		s.addErrorf(`Template lookup failed [name="%s"]: %v`, name, err)
		return nil
	}
	var matches []*model.DeviceItem
	for _, t := range templates {
		if t.Vendor == vendor && t.ModelNumber == modelNumber && t.Version == version {
			matches = append(matches, t)
		}
	}
	switch {
	case len(matches) == 0:
		s.addErrorf(`Template not found [name="%s", vendor="%s", modelNumber="%s", version="%s"]`, name, vendor, modelNumber, version)
		return nil
	case len(matches) > 1:
		s.addErrorf(`Template not unique [name="%s", vendor="%s", modelNumber="%s", version="%s"]`, name, vendor, modelNumber, version)
	}
	return matches[0]
}

// FindDeviceItem fetches a persisted device item by primary key.
func (s *Session) FindDeviceItem(ctx context.Context, id int) *model.DeviceItem {
	return findEntity(ctx, s, "DeviceItem", id, s.repo.DeviceItem)
}

// FindProject fetches a persisted project by primary key.
func (s *Session) FindProject(ctx context.Context, id int) *model.Project {
	return findEntity(ctx, s, "Project", id, s.repo.Project)
}

func findEntity[T any](ctx context.Context, s *Session, class string, id int, fetch func(context.Context, int) (*T, error)) *T {
	entity, err := fetch(ctx, id)
	if err != nil {
		s.addErrorf(`%s lookup failed [entityId=%d]: %v`, class, id, err)
		return nil
	}
	if entity == nil {
		s.addErrorf(`Entity not found [entityClass="%s", entityId=%d]`, class, id)
	}
	return entity
}

// arena holds the entities of one kind materialized during an import,
// keyed by document ID.
type arena[T any] struct {
	kind  string
	byID  map[int]*T
	order []*T
}

func newArena[T any](kind string) *arena[T] {
	return &arena[T]{kind: kind, byID: make(map[int]*T)}
}

func (a *arena[T]) reset() {
	clear(a.byID)
	a.order = a.order[:0]
}

// resolve returns the entity with document ID text, recording a "not found"
// error if there is none.
func (a *arena[T]) resolve(s *Session, text string) *T {
	if id, err := strconv.Atoi(text); err == nil {
		if v, ok := a.byID[id]; ok {
			return v
		}
	}
	s.addErrorf(`%s not found [id=%s]`, a.kind, text)
	return nil
}

// materialize runs the first import phase for one kind. Every record whose
// document ID is not yet in the arena is decoded by build and stored.
// Records that are not objects or lack an integer id are skipped with an
// error.
func materialize[T any](s *Session, a *arena[T], records *document.Array, build func(document.Object) *T) {
	for i := range records.Len() {
		rec, ok := records.Object(i)
		if !ok {
			s.addErrorf(`%s record invalid [index=%d]`, a.kind, i)
			continue
		}
		id, ok := rec.Int(KeyID)
		if !ok {
			s.addErrorf(`%s record invalid [index=%d]`, a.kind, i)
			continue
		}
		if _, seen := a.byID[id]; seen {
			continue
		}
		v := build(rec)
		a.byID[id] = v
		a.order = append(a.order, v)
	}
}

// link runs the second import phase for one kind, applying each
// [parent, child] tuple of edges through setParent. Dangling endpoints and
// second parents are recorded as errors; a repeated edge is a no-op.
func link[T any](s *Session, a *arena[T], edges *document.Array, setParent func(child, parent *T) bool) {
	applied := make(map[[2]int]bool)
	for i := range edges.Len() {
		pair := edges.Array(i)
		if pair.Len() != 2 {
			s.addErrorf(`%s edge invalid [index=%d]`, a.kind, i)
			continue
		}
		parentID, ok1 := pair.Int(0)
		childID, ok2 := pair.Int(1)
		if !ok1 || !ok2 || parentID == childID {
			s.addErrorf(`%s edge invalid [index=%d]`, a.kind, i)
			continue
		}
		if applied[[2]int{parentID, childID}] {
			continue
		}
		parent, child := a.byID[parentID], a.byID[childID]
		if parent == nil {
			s.addErrorf(`%s not found [id=%d]`, a.kind, parentID)
		}
		if child == nil {
			s.addErrorf(`%s not found [id=%d]`, a.kind, childID)
		}
		if parent == nil || child == nil {
			continue
		}
		if !setParent(child, parent) {
			s.addErrorf(`%s parent already set [child=%d]`, a.kind, childID)
			continue
		}
		applied[[2]int{parentID, childID}] = true
	}
}
