package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/blueprint/pkg/model"
)

type counter struct {
	Seq int `bson:"seq"`
}

// nextID increments and returns the sequence of coll.
func (s *Store) nextID(ctx context.Context, coll string) (int, error) {
	var c counter
	err := s.db.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": coll},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", coll, err)
	}
	return c.Seq, nil
}

func (s *Store) assign(ctx context.Context, coll string, id *int) error {
	if *id > 0 {
		return nil
	}
	n, err := s.nextID(ctx, coll)
	if err != nil {
		return err
	}
	*id = n
	return nil
}

func (s *Store) assignIDs(ctx context.Context, pv *model.ProjectVersion) error {
	if err := s.assign(ctx, colVersions, &pv.ID); err != nil {
		return err
	}
	for _, z := range pv.Zones {
		if err := s.assign(ctx, colZones, &z.ID); err != nil {
			return err
		}
	}
	for _, d := range pv.Devices {
		if err := s.assign(ctx, colDevices, &d.ID); err != nil {
			return err
		}
	}
	for _, n := range pv.CFNodes {
		if err := s.assign(ctx, colCFNodes, &n.ID); err != nil {
			return err
		}
	}
	for _, si := range pv.Services {
		if err := s.assign(ctx, colServices, &si.ID); err != nil {
			return err
		}
	}
	return nil
}

// SaveProjectVersion upserts pv and every entity it owns. Records of the
// version that pv no longer holds are deleted.
func (s *Store) SaveProjectVersion(ctx context.Context, pv *model.ProjectVersion) (int, error) {
	if err := s.assignIDs(ctx, pv); err != nil {
		return 0, err
	}
	recs := encodeVersion(pv)

	_, err := s.db.Collection(colVersions).ReplaceOne(ctx,
		bson.M{"_id": pv.ID}, recs.version, options.Replace().SetUpsert(true))
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", colVersions, err)
	}

	if err := replaceOwned(ctx, s.db.Collection(colZones), pv.ID, recs.zones, func(r zoneRecord) int { return r.ID }); err != nil {
		return 0, err
	}
	if err := replaceOwned(ctx, s.db.Collection(colDevices), pv.ID, recs.devices, func(r deviceRecord) int { return r.ID }); err != nil {
		return 0, err
	}
	if err := replaceOwned(ctx, s.db.Collection(colCFNodes), pv.ID, recs.cfnodes, func(r cfnodeRecord) int { return r.ID }); err != nil {
		return 0, err
	}
	if err := replaceOwned(ctx, s.db.Collection(colServices), pv.ID, recs.services, func(r serviceRecord) int { return r.ID }); err != nil {
		return 0, err
	}
	return pv.ID, nil
}

// replaceOwned upserts recs and deletes the version's other records in coll.
func replaceOwned[R any](ctx context.Context, coll *driver.Collection, versionID int, recs []R, id func(R) int) error {
	ids := make([]int, 0, len(recs))
	models := make([]driver.WriteModel, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, id(r))
		models = append(models, driver.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id(r)}).
			SetReplacement(r).
			SetUpsert(true))
	}

	if len(models) > 0 {
		if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("save %s: %w", coll.Name(), err)
		}
	}
	_, err := coll.DeleteMany(ctx, bson.M{"version_id": versionID, "_id": bson.M{"$nin": ids}})
	if err != nil {
		return fmt.Errorf("prune %s: %w", coll.Name(), err)
	}
	return nil
}

// LoadProjectVersion reads the version and its owned records, then resolves
// references against the reference collections.
func (s *Store) LoadProjectVersion(ctx context.Context, id int) (*model.ProjectVersion, error) {
	v, err := findOne[versionRecord](ctx, s.db.Collection(colVersions), bson.M{"_id": id})
	if err != nil || v == nil {
		return nil, err
	}

	recs := versionRecords{version: *v}
	owned := bson.M{"version_id": id}
	if recs.zones, err = findAll[zoneRecord](ctx, s.db.Collection(colZones), owned); err != nil {
		return nil, err
	}
	if recs.devices, err = findAll[deviceRecord](ctx, s.db.Collection(colDevices), owned); err != nil {
		return nil, err
	}
	if recs.cfnodes, err = findAll[cfnodeRecord](ctx, s.db.Collection(colCFNodes), owned); err != nil {
		return nil, err
	}
	if recs.services, err = findAll[serviceRecord](ctx, s.db.Collection(colServices), owned); err != nil {
		return nil, err
	}

	refs, err := s.references(ctx, recs)
	if err != nil {
		return nil, err
	}
	return decodeVersion(recs, refs), nil
}

func (s *Store) references(ctx context.Context, recs versionRecords) (references, error) {
	var refs references

	providers, err := s.CFProviders(ctx)
	if err != nil {
		return refs, err
	}
	refs.providers = indexByID(providers, func(p *model.CFProvider) int { return p.ID })

	types, err := s.DeviceTypes(ctx)
	if err != nil {
		return refs, err
	}
	refs.types = indexByID(types, func(t *model.DeviceType) int { return t.ID })

	classes, err := s.DeviceClasses(ctx)
	if err != nil {
		return refs, err
	}
	refs.classes = indexByID(classes, func(c *model.DeviceClass) int { return c.ID })

	adapters, err := s.ProtocolAdapters(ctx)
	if err != nil {
		return refs, err
	}
	refs.adapters = indexByID(adapters, func(a *model.ProtocolAdapter) int { return a.ID })

	definitions, err := s.ServiceDefinitions(ctx)
	if err != nil {
		return refs, err
	}
	refs.definitions = indexByID(definitions, func(d *model.ServiceDefinition) int { return d.ID })

	userIDs, templateIDs := referencedIDs(recs)

	users, err := findAll[userRecord](ctx, s.db.Collection(colUsers), bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return refs, err
	}
	refs.users = indexByID(convert(users, func(r userRecord) *model.User {
		return &model.User{ID: r.ID, Email: r.Email, Name: r.Name}
	}), func(u *model.User) int { return u.ID })

	templates, err := findAll[deviceRecord](ctx, s.db.Collection(colDevices), bson.M{"_id": bson.M{"$in": templateIDs}})
	if err != nil {
		return refs, err
	}
	refs.templates = indexByID(convert(templates, func(r deviceRecord) *model.DeviceItem {
		return decodeDevice(r, references{})
	}), func(d *model.DeviceItem) int { return d.ID })

	refs.projects = map[int]*model.Project{}
	if pid := recs.version.ProjectID; pid != 0 {
		p, err := s.Project(ctx, pid)
		if err != nil {
			return refs, err
		}
		if p != nil {
			refs.projects[pid] = p
		}
	}
	return refs, nil
}

// referencedIDs collects the user and template IDs recs point at.
func referencedIDs(recs versionRecords) (users, templates []int) {
	users, templates = []int{}, []int{}
	seenUser := map[int]bool{0: true}
	seenTemplate := map[int]bool{0: true}
	addUser := func(id int) {
		if !seenUser[id] {
			seenUser[id] = true
			users = append(users, id)
		}
	}

	addUser(recs.version.LastUpdateUserID)
	for _, z := range recs.zones {
		addUser(z.LastUpdateUserID)
	}
	for _, d := range recs.devices {
		addUser(d.LastUpdateUserID)
		if !seenTemplate[d.MasterTemplateID] {
			seenTemplate[d.MasterTemplateID] = true
			templates = append(templates, d.MasterTemplateID)
		}
	}
	return users, templates
}
