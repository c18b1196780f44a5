// Package mongo provides a MongoDB-backed [repository.Store].
//
// Every entity lives in its own collection with an integer _id drawn from a
// per-collection sequence in the counters collection. References between
// entities are stored as IDs and resolved when a project version is loaded.
// Template device items share the devices collection with the devices of
// persisted versions and are told apart by the template flag.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/repository"
)

var _ repository.Store = (*Store)(nil)

// Collection names.
const (
	colProviders   = "cf_providers"
	colCategories  = "device_categories"
	colClasses     = "device_classes"
	colTypes       = "device_types"
	colAdapters    = "protocol_adapters"
	colDefinitions = "service_definitions"
	colUsers       = "users"
	colGroups      = "company_groups"
	colProjects    = "projects"
	colDevices     = "device_items"
	colVersions    = "project_versions"
	colZones       = "zones"
	colCFNodes     = "cfnodes"
	colServices    = "service_instances"
	colCounters    = "counters"
)

// ConnectTimeout bounds [Connect] when ctx has no deadline.
const ConnectTimeout = 10 * time.Second

// Store is a MongoDB repository.
type Store struct {
	client *driver.Client
	db     *driver.Database
}

// Connect opens a client for uri, verifies it with a ping and ensures the
// indexes lookups rely on.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ConnectTimeout)
		defer cancel()
	}

	client, err := driver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	asc := func(keys ...string) bson.D {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return d
	}
	indexes := map[string][]driver.IndexModel{
		colUsers:    {{Keys: asc("email"), Options: options.Index().SetUnique(true)}},
		colGroups:   {{Keys: asc("name")}},
		colProjects: {{Keys: asc("name", "group_id")}},
		colDevices:  {{Keys: asc("name", "template")}, {Keys: asc("version_id")}},
		colZones:    {{Keys: asc("version_id")}},
		colCFNodes:  {{Keys: asc("version_id")}},
		colServices: {{Keys: asc("version_id")}},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect from mongodb: %w", err)
	}
	return nil
}

var byIDAsc = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

func findAll[R any](ctx context.Context, coll *driver.Collection, filter any) ([]R, error) {
	cursor, err := coll.Find(ctx, filter, byIDAsc)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var out []R
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

// findOne returns nil, nil when nothing matches.
func findOne[R any](ctx context.Context, coll *driver.Collection, filter any) (*R, error) {
	var r R
	err := coll.FindOne(ctx, filter).Decode(&r)
	if errors.Is(err, driver.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	return &r, nil
}

func convert[R, T any](recs []R, fn func(R) *T) []*T {
	out := make([]*T, 0, len(recs))
	for _, r := range recs {
		out = append(out, fn(r))
	}
	return out
}

func (s *Store) CFProviders(ctx context.Context) ([]*model.CFProvider, error) {
	recs, err := findAll[providerRecord](ctx, s.db.Collection(colProviders), bson.M{})
	if err != nil {
		return nil, err
	}
	return convert(recs, func(r providerRecord) *model.CFProvider {
		return &model.CFProvider{ID: r.ID, Name: r.Name, Type: model.ProviderType(r.Type)}
	}), nil
}

func (s *Store) DeviceCategories(ctx context.Context) ([]*model.DeviceCategory, error) {
	recs, err := findAll[namedRecord](ctx, s.db.Collection(colCategories), bson.M{})
	if err != nil {
		return nil, err
	}
	return convert(recs, func(r namedRecord) *model.DeviceCategory {
		return &model.DeviceCategory{ID: r.ID, Name: r.Name}
	}), nil
}

func (s *Store) DeviceClasses(ctx context.Context) ([]*model.DeviceClass, error) {
	recs, err := findAll[namedRecord](ctx, s.db.Collection(colClasses), bson.M{})
	if err != nil {
		return nil, err
	}
	return convert(recs, func(r namedRecord) *model.DeviceClass {
		return &model.DeviceClass{ID: r.ID, Name: r.Name}
	}), nil
}

// DeviceTypes returns every type with its category attached.
func (s *Store) DeviceTypes(ctx context.Context) ([]*model.DeviceType, error) {
	categories, err := s.DeviceCategories(ctx)
	if err != nil {
		return nil, err
	}
	byID := indexByID(categories, func(c *model.DeviceCategory) int { return c.ID })

	recs, err := findAll[deviceTypeRecord](ctx, s.db.Collection(colTypes), bson.M{})
	if err != nil {
		return nil, err
	}
	return convert(recs, func(r deviceTypeRecord) *model.DeviceType {
		return &model.DeviceType{ID: r.ID, Name: r.Name, Category: byID[r.CategoryID]}
	}), nil
}

func (s *Store) ProtocolAdapters(ctx context.Context) ([]*model.ProtocolAdapter, error) {
	recs, err := findAll[adapterRecord](ctx, s.db.Collection(colAdapters), bson.M{})
	if err != nil {
		return nil, err
	}
	return convert(recs, func(r adapterRecord) *model.ProtocolAdapter {
		return &model.ProtocolAdapter{ID: r.ID, Name: r.Name, Version: r.Version}
	}), nil
}

func (s *Store) ServiceDefinitions(ctx context.Context) ([]*model.ServiceDefinition, error) {
	recs, err := findAll[definitionRecord](ctx, s.db.Collection(colDefinitions), bson.M{})
	if err != nil {
		return nil, err
	}
	return convert(recs, decodeDefinition), nil
}

func decodeDefinition(r definitionRecord) *model.ServiceDefinition {
	return &model.ServiceDefinition{ID: r.ID, Name: r.Name, UID: r.UID, Vendor: r.Vendor, Version: r.Version}
}

// TemplatesByName returns templates named name in ID order. Templates are
// returned without their references.
func (s *Store) TemplatesByName(ctx context.Context, name string) ([]*model.DeviceItem, error) {
	recs, err := findAll[deviceRecord](ctx, s.db.Collection(colDevices), bson.M{"name": name, "template": true})
	if err != nil {
		return nil, err
	}
	return convert(recs, func(r deviceRecord) *model.DeviceItem {
		return decodeDevice(r, references{})
	}), nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	r, err := findOne[userRecord](ctx, s.db.Collection(colUsers), bson.M{"email": email})
	if err != nil || r == nil {
		return nil, err
	}
	return &model.User{ID: r.ID, Email: r.Email, Name: r.Name}, nil
}

func (s *Store) CompanyGroupByName(ctx context.Context, name string) (*model.CompanyGroup, error) {
	r, err := findOne[namedRecord](ctx, s.db.Collection(colGroups), bson.M{"name": name})
	if err != nil || r == nil {
		return nil, err
	}
	return &model.CompanyGroup{ID: r.ID, Name: r.Name}, nil
}

func (s *Store) ProjectByName(ctx context.Context, name string, groupID int) (*model.Project, error) {
	r, err := findOne[projectRecord](ctx, s.db.Collection(colProjects), bson.M{"name": name, "group_id": groupID})
	if err != nil || r == nil {
		return nil, err
	}
	return s.decodeProject(ctx, r)
}

func (s *Store) Project(ctx context.Context, id int) (*model.Project, error) {
	r, err := findOne[projectRecord](ctx, s.db.Collection(colProjects), bson.M{"_id": id})
	if err != nil || r == nil {
		return nil, err
	}
	return s.decodeProject(ctx, r)
}

func (s *Store) decodeProject(ctx context.Context, r *projectRecord) (*model.Project, error) {
	p := &model.Project{ID: r.ID, Name: r.Name}
	if r.GroupID == 0 {
		return p, nil
	}
	g, err := findOne[namedRecord](ctx, s.db.Collection(colGroups), bson.M{"_id": r.GroupID})
	if err != nil {
		return nil, err
	}
	if g != nil {
		p.Group = &model.CompanyGroup{ID: g.ID, Name: g.Name}
	}
	return p, nil
}

// DeviceItem returns a device item by ID without its references.
func (s *Store) DeviceItem(ctx context.Context, id int) (*model.DeviceItem, error) {
	r, err := findOne[deviceRecord](ctx, s.db.Collection(colDevices), bson.M{"_id": id})
	if err != nil || r == nil {
		return nil, err
	}
	return decodeDevice(*r, references{}), nil
}

func indexByID[T any](items []*T, id func(*T) int) map[int]*T {
	m := make(map[int]*T, len(items))
	for _, it := range items {
		m[id(it)] = it
	}
	return m
}
