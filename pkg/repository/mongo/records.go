package mongo

import (
	"time"

	"github.com/matzehuels/blueprint/pkg/model"
)

// Reference records. References between records are stored as IDs; zero
// means unset.

type providerRecord struct {
	ID   int    `bson:"_id"`
	Name string `bson:"name"`
	Type string `bson:"type"`
}

type namedRecord struct {
	ID   int    `bson:"_id"`
	Name string `bson:"name"`
}

type deviceTypeRecord struct {
	ID         int    `bson:"_id"`
	Name       string `bson:"name"`
	CategoryID int    `bson:"category_id,omitempty"`
}

type adapterRecord struct {
	ID      int    `bson:"_id"`
	Name    string `bson:"name"`
	Version string `bson:"version"`
}

type definitionRecord struct {
	ID      int    `bson:"_id"`
	Name    string `bson:"name"`
	UID     string `bson:"uid"`
	Vendor  string `bson:"vendor"`
	Version string `bson:"version"`
}

type userRecord struct {
	ID    int    `bson:"_id"`
	Email string `bson:"email"`
	Name  string `bson:"name,omitempty"`
}

type projectRecord struct {
	ID      int    `bson:"_id"`
	Name    string `bson:"name"`
	GroupID int    `bson:"group_id,omitempty"`
}

// Project version records.

type versionRecord struct {
	ID               int       `bson:"_id"`
	Name             string    `bson:"name"`
	Notes            string    `bson:"notes,omitempty"`
	UID              string    `bson:"uid,omitempty"`
	Locked           bool      `bson:"locked"`
	LastUpdate       time.Time `bson:"last_update,omitempty"`
	LastUpdateUserID int       `bson:"last_update_user_id,omitempty"`
	ProjectID        int       `bson:"project_id,omitempty"`
}

type zoneRecord struct {
	ID               int    `bson:"_id"`
	VersionID        int    `bson:"version_id"`
	Name             string `bson:"name"`
	Notes            string `bson:"notes,omitempty"`
	UID              string `bson:"uid,omitempty"`
	LastUpdateUserID int    `bson:"last_update_user_id,omitempty"`
	ParentID         int    `bson:"parent_id,omitempty"`
}

type deviceRecord struct {
	ID                int               `bson:"_id"`
	VersionID         int               `bson:"version_id,omitempty"`
	Name              string            `bson:"name"`
	Notes             string            `bson:"notes,omitempty"`
	UID               string            `bson:"uid,omitempty"`
	Vendor            string            `bson:"vendor,omitempty"`
	Version           string            `bson:"version,omitempty"`
	ModelNumber       string            `bson:"model_number,omitempty"`
	Troubleshooting   string            `bson:"troubleshooting,omitempty"`
	ProtocolVerRange  string            `bson:"protocol_ver_range,omitempty"`
	Props             map[string]string `bson:"props,omitempty"`
	Template          bool              `bson:"template"`
	Hidden            bool              `bson:"hidden"`
	Equipment         bool              `bson:"equipment"`
	Certified         bool              `bson:"certified"`
	LastUpdate        time.Time         `bson:"last_update,omitempty"`
	LastUpdateUserID  int               `bson:"last_update_user_id,omitempty"`
	MasterTemplateID  int               `bson:"master_template_id,omitempty"`
	ZoneID            int               `bson:"zone_id,omitempty"`
	DeviceTypeIDs     []int             `bson:"device_type_ids,omitempty"`
	DeviceClassIDs    []int             `bson:"device_class_ids,omitempty"`
	ProtocolAdapterID int               `bson:"protocol_adapter_id,omitempty"`
	ParentID          int               `bson:"parent_id,omitempty"`
}

type propertyRecord struct {
	Key   string `bson:"key"`
	Type  string `bson:"type"`
	Value string `bson:"value"`
}

type cfnodeRecord struct {
	ID         int              `bson:"_id"`
	VersionID  int              `bson:"version_id"`
	Name       string           `bson:"name,omitempty"`
	Notes      string           `bson:"notes,omitempty"`
	UID        string           `bson:"uid,omitempty"`
	ProviderID int              `bson:"provider_id,omitempty"`
	ParentID   int              `bson:"parent_id,omitempty"`
	Properties []propertyRecord `bson:"properties,omitempty"`
}

type serviceRecord struct {
	ID           int               `bson:"_id"`
	VersionID    int               `bson:"version_id"`
	Name         string            `bson:"name"`
	Notes        string            `bson:"notes,omitempty"`
	UID          string            `bson:"uid,omitempty"`
	Enabled      bool              `bson:"enabled"`
	Config       map[string]string `bson:"config,omitempty"`
	DefinitionID int               `bson:"definition_id,omitempty"`
	DeviceIDs    []int             `bson:"device_ids,omitempty"`
}

// versionRecords is a project version flattened into its collections.
type versionRecords struct {
	version  versionRecord
	zones    []zoneRecord
	devices  []deviceRecord
	cfnodes  []cfnodeRecord
	services []serviceRecord
}

func userID(u *model.User) int {
	if u == nil {
		return 0
	}
	return u.ID
}

func zoneID(z *model.Zone) int {
	if z == nil {
		return 0
	}
	return z.ID
}

func deviceID(d *model.DeviceItem) int {
	if d == nil {
		return 0
	}
	return d.ID
}

func cfnodeID(n *model.CFNode) int {
	if n == nil {
		return 0
	}
	return n.ID
}

func providerID(p *model.CFProvider) int {
	if p == nil {
		return 0
	}
	return p.ID
}

func adapterID(a *model.ProtocolAdapter) int {
	if a == nil {
		return 0
	}
	return a.ID
}

func projectID(p *model.Project) int {
	if p == nil {
		return 0
	}
	return p.ID
}

func definitionID(d *model.ServiceDefinition) int {
	if d == nil {
		return 0
	}
	return d.ID
}

// encodeVersion flattens pv. Every entity must already have an ID.
func encodeVersion(pv *model.ProjectVersion) versionRecords {
	recs := versionRecords{
		version: versionRecord{
			ID:               pv.ID,
			Name:             pv.Name,
			Notes:            pv.Notes,
			UID:              pv.UID,
			Locked:           pv.Locked,
			LastUpdate:       pv.LastUpdate,
			LastUpdateUserID: userID(pv.LastUpdateUser),
			ProjectID:        projectID(pv.Project),
		},
	}

	for _, z := range pv.Zones {
		recs.zones = append(recs.zones, zoneRecord{
			ID:               z.ID,
			VersionID:        pv.ID,
			Name:             z.Name,
			Notes:            z.Notes,
			UID:              z.UID,
			LastUpdateUserID: userID(z.LastUpdateUser),
			ParentID:         zoneID(z.Parent),
		})
	}

	for _, d := range pv.Devices {
		rec := encodeDevice(d)
		rec.VersionID = pv.ID
		recs.devices = append(recs.devices, rec)
	}

	for _, n := range pv.CFNodes {
		rec := cfnodeRecord{
			ID:         n.ID,
			VersionID:  pv.ID,
			Name:       n.Name,
			Notes:      n.Notes,
			UID:        n.UID,
			ProviderID: providerID(n.Provider),
			ParentID:   cfnodeID(n.Parent),
		}
		for _, k := range n.Properties.Keys() {
			v := n.Properties[k]
			rec.Properties = append(rec.Properties, propertyRecord{Key: k, Type: string(v.Type()), Value: v.String()})
		}
		recs.cfnodes = append(recs.cfnodes, rec)
	}

	for _, si := range pv.Services {
		rec := serviceRecord{
			ID:           si.ID,
			VersionID:    pv.ID,
			Name:         si.Name,
			Notes:        si.Notes,
			UID:          si.UID,
			Enabled:      si.Enabled,
			Config:       si.Config,
			DefinitionID: definitionID(si.Definition),
		}
		for _, d := range si.Devices {
			rec.DeviceIDs = append(rec.DeviceIDs, d.ID)
		}
		recs.services = append(recs.services, rec)
	}
	return recs
}

func encodeDevice(d *model.DeviceItem) deviceRecord {
	rec := deviceRecord{
		ID:                d.ID,
		Name:              d.Name,
		Notes:             d.Notes,
		UID:               d.UID,
		Vendor:            d.Vendor,
		Version:           d.Version,
		ModelNumber:       d.ModelNumber,
		Troubleshooting:   d.Troubleshooting,
		ProtocolVerRange:  d.ProtocolVerRange,
		Props:             d.Props,
		Template:          d.Template,
		Hidden:            d.Hidden,
		Equipment:         d.Equipment,
		Certified:         d.Certified,
		LastUpdate:        d.LastUpdate,
		LastUpdateUserID:  userID(d.LastUpdateUser),
		MasterTemplateID:  deviceID(d.MasterTemplate),
		ZoneID:            zoneID(d.Zone),
		ProtocolAdapterID: adapterID(d.ProtocolAdapter),
		ParentID:          deviceID(d.Parent),
	}
	for _, t := range d.DeviceTypes {
		rec.DeviceTypeIDs = append(rec.DeviceTypeIDs, t.ID)
	}
	for _, c := range d.DeviceClasses {
		rec.DeviceClassIDs = append(rec.DeviceClassIDs, c.ID)
	}
	return rec
}

// references resolves reference IDs while a version is decoded. Missing
// entries decode as nil.
type references struct {
	users       map[int]*model.User
	projects    map[int]*model.Project
	providers   map[int]*model.CFProvider
	types       map[int]*model.DeviceType
	classes     map[int]*model.DeviceClass
	adapters    map[int]*model.ProtocolAdapter
	definitions map[int]*model.ServiceDefinition
	templates   map[int]*model.DeviceItem
}

// decodeVersion rebuilds a project version in two passes: entities first,
// then parent links and cross references. Links to records that are not
// part of recs are dropped.
func decodeVersion(recs versionRecords, refs references) *model.ProjectVersion {
	v := recs.version
	pv := &model.ProjectVersion{
		ID:             v.ID,
		Name:           v.Name,
		Notes:          v.Notes,
		UID:            v.UID,
		Locked:         v.Locked,
		LastUpdate:     v.LastUpdate.UTC(),
		LastUpdateUser: refs.users[v.LastUpdateUserID],
		Project:        refs.projects[v.ProjectID],
	}

	zones := make(map[int]*model.Zone, len(recs.zones))
	for _, r := range recs.zones {
		z := &model.Zone{
			ID:             r.ID,
			Name:           r.Name,
			Notes:          r.Notes,
			UID:            r.UID,
			LastUpdateUser: refs.users[r.LastUpdateUserID],
			ProjectVersion: pv,
		}
		zones[r.ID] = z
		pv.Zones = append(pv.Zones, z)
	}

	devices := make(map[int]*model.DeviceItem, len(recs.devices))
	for _, r := range recs.devices {
		d := decodeDevice(r, refs)
		d.ProjectVersion = pv
		d.Zone = zones[r.ZoneID]
		devices[r.ID] = d
		pv.Devices = append(pv.Devices, d)
	}

	cfnodes := make(map[int]*model.CFNode, len(recs.cfnodes))
	for _, r := range recs.cfnodes {
		n := model.NewCFNode()
		n.ID = r.ID
		n.Name = r.Name
		n.Notes = r.Notes
		n.UID = r.UID
		n.Provider = refs.providers[r.ProviderID]
		n.ProjectVersion = pv
		for _, p := range r.Properties {
			if val, err := model.ParseValue(model.ValueType(p.Type), p.Value); err == nil {
				n.Properties[p.Key] = val
			}
		}
		cfnodes[r.ID] = n
		pv.CFNodes = append(pv.CFNodes, n)
	}

	for _, r := range recs.services {
		si := &model.ServiceInstance{
			ID:             r.ID,
			Name:           r.Name,
			Notes:          r.Notes,
			UID:            r.UID,
			Enabled:        r.Enabled,
			Config:         r.Config,
			Definition:     refs.definitions[r.DefinitionID],
			ProjectVersion: pv,
		}
		for _, id := range r.DeviceIDs {
			if d := devices[id]; d != nil {
				si.Devices = append(si.Devices, d)
			}
		}
		pv.Services = append(pv.Services, si)
	}

	for _, r := range recs.zones {
		if p := zones[r.ParentID]; p != nil {
			zones[r.ID].SetParent(p)
		}
	}
	for _, r := range recs.devices {
		if p := devices[r.ParentID]; p != nil {
			devices[r.ID].SetParent(p)
		}
	}
	for _, r := range recs.cfnodes {
		if p := cfnodes[r.ParentID]; p != nil {
			cfnodes[r.ID].SetParent(p)
		}
	}
	return pv
}

// decodeDevice converts a device record without its version-scoped links.
func decodeDevice(r deviceRecord, refs references) *model.DeviceItem {
	d := &model.DeviceItem{
		ID:               r.ID,
		Name:             r.Name,
		Notes:            r.Notes,
		UID:              r.UID,
		Vendor:           r.Vendor,
		Version:          r.Version,
		ModelNumber:      r.ModelNumber,
		Troubleshooting:  r.Troubleshooting,
		ProtocolVerRange: r.ProtocolVerRange,
		Props:            r.Props,
		Template:         r.Template,
		Hidden:           r.Hidden,
		Equipment:        r.Equipment,
		Certified:        r.Certified,
		LastUpdateUser:   refs.users[r.LastUpdateUserID],
		MasterTemplate:   refs.templates[r.MasterTemplateID],
		ProtocolAdapter:  refs.adapters[r.ProtocolAdapterID],
		LastUpdate:       r.LastUpdate.UTC(),
	}
	for _, id := range r.DeviceTypeIDs {
		if t := refs.types[id]; t != nil {
			d.DeviceTypes = append(d.DeviceTypes, t)
		}
	}
	for _, id := range r.DeviceClassIDs {
		if c := refs.classes[id]; c != nil {
			d.DeviceClasses = append(d.DeviceClasses, c)
		}
	}
	return d
}
