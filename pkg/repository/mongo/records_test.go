package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/blueprint/pkg/model"
)

type sample struct {
	user     *model.User
	project  *model.Project
	provider *model.CFProvider
	dimmer   *model.DeviceType
	dimmable *model.DeviceClass
	zwave    *model.ProtocolAdapter
	weather  *model.ServiceDefinition
	template *model.DeviceItem
	pv       *model.ProjectVersion
}

func newSample() *sample {
	s := &sample{
		user:     &model.User{ID: 1, Email: "ops@example.com"},
		project:  &model.Project{ID: 2, Name: "HQ", Group: &model.CompanyGroup{ID: 3, Name: "Acme"}},
		provider: &model.CFProvider{ID: 4, Name: "scene", Type: "SCENE"},
		dimmer:   &model.DeviceType{ID: 5, Name: "Dimmer", Category: &model.DeviceCategory{ID: 6, Name: "Lighting"}},
		dimmable: &model.DeviceClass{ID: 7, Name: "dimmable"},
		zwave:    &model.ProtocolAdapter{ID: 8, Name: "zwave", Version: "2.0"},
		weather:  &model.ServiceDefinition{ID: 9, Name: "Weather", UID: "wx", Vendor: "Acme", Version: "1"},
		template: &model.DeviceItem{ID: 10, Name: "Dimmer", Template: true},
	}

	pv := &model.ProjectVersion{
		ID:             100,
		Name:           "v1",
		Locked:         true,
		LastUpdate:     time.UnixMilli(1700000000000).UTC(),
		LastUpdateUser: s.user,
		Project:        s.project,
	}
	building := &model.Zone{ID: 20, Name: "Building", LastUpdateUser: s.user, ProjectVersion: pv}
	floor := &model.Zone{ID: 21, Name: "Floor", ProjectVersion: pv}
	floor.SetParent(building)

	gw := &model.DeviceItem{ID: 30, Name: "Gateway", ProtocolAdapter: s.zwave, Zone: floor, ProjectVersion: pv}
	lamp := &model.DeviceItem{
		ID:             31,
		Name:           "Lamp",
		Props:          map[string]string{"watts": "40"},
		MasterTemplate: s.template,
		DeviceTypes:    []*model.DeviceType{s.dimmer},
		DeviceClasses:  []*model.DeviceClass{s.dimmable},
		ProjectVersion: pv,
	}
	lamp.SetParent(gw)

	root := model.NewCFNode()
	root.ID, root.Name, root.Provider, root.ProjectVersion = 40, "root", s.provider, pv
	root.Properties["level"] = model.Int(3)
	root.Properties["tags"] = model.TextArray{"a", "b"}
	leaf := model.NewCFNode()
	leaf.ID, leaf.ProjectVersion = 41, pv
	leaf.SetParent(root)

	svc := &model.ServiceInstance{
		ID:             50,
		Name:           "Forecast",
		Enabled:        true,
		Config:         map[string]string{"city": "Berlin"},
		Definition:     s.weather,
		Devices:        []*model.DeviceItem{gw, lamp},
		ProjectVersion: pv,
	}

	pv.Zones = []*model.Zone{building, floor}
	pv.Devices = []*model.DeviceItem{gw, lamp}
	pv.CFNodes = []*model.CFNode{root, leaf}
	pv.Services = []*model.ServiceInstance{svc}
	s.pv = pv
	return s
}

func (s *sample) references() references {
	return references{
		users:       map[int]*model.User{1: s.user},
		projects:    map[int]*model.Project{2: s.project},
		providers:   map[int]*model.CFProvider{4: s.provider},
		types:       map[int]*model.DeviceType{5: s.dimmer},
		classes:     map[int]*model.DeviceClass{7: s.dimmable},
		adapters:    map[int]*model.ProtocolAdapter{8: s.zwave},
		definitions: map[int]*model.ServiceDefinition{9: s.weather},
		templates:   map[int]*model.DeviceItem{10: s.template},
	}
}

func TestEncodeVersion(t *testing.T) {
	s := newSample()
	recs := encodeVersion(s.pv)

	assert.Equal(t, versionRecord{
		ID:               100,
		Name:             "v1",
		Locked:           true,
		LastUpdate:       s.pv.LastUpdate,
		LastUpdateUserID: 1,
		ProjectID:        2,
	}, recs.version)

	require.Len(t, recs.zones, 2)
	assert.Zero(t, recs.zones[0].ParentID)
	assert.Equal(t, 20, recs.zones[1].ParentID)
	assert.Equal(t, 100, recs.zones[1].VersionID)

	require.Len(t, recs.devices, 2)
	assert.Equal(t, 21, recs.devices[0].ZoneID)
	assert.Equal(t, 8, recs.devices[0].ProtocolAdapterID)
	assert.Equal(t, 30, recs.devices[1].ParentID)
	assert.Equal(t, 10, recs.devices[1].MasterTemplateID)
	assert.Equal(t, []int{5}, recs.devices[1].DeviceTypeIDs)
	assert.Equal(t, []int{7}, recs.devices[1].DeviceClassIDs)

	require.Len(t, recs.cfnodes, 2)
	assert.Equal(t, 4, recs.cfnodes[0].ProviderID)
	assert.Equal(t, []propertyRecord{
		{Key: "level", Type: "int", Value: "3"},
		{Key: "tags", Type: "string[]", Value: `["a","b"]`},
	}, recs.cfnodes[0].Properties)
	assert.Equal(t, 40, recs.cfnodes[1].ParentID)

	require.Len(t, recs.services, 1)
	assert.Equal(t, 9, recs.services[0].DefinitionID)
	assert.Equal(t, []int{30, 31}, recs.services[0].DeviceIDs)
}

func TestDecodeVersion(t *testing.T) {
	s := newSample()
	pv := decodeVersion(encodeVersion(s.pv), s.references())

	assert.Equal(t, "v1", pv.Name)
	assert.True(t, pv.Locked)
	assert.True(t, pv.LastUpdate.Equal(s.pv.LastUpdate))
	assert.Same(t, s.user, pv.LastUpdateUser)
	assert.Same(t, s.project, pv.Project)

	require.Len(t, pv.Zones, 2)
	assert.Same(t, pv.Zones[0], pv.Zones[1].Parent)
	assert.Equal(t, []*model.Zone{pv.Zones[1]}, pv.Zones[0].Children)
	assert.Same(t, pv, pv.Zones[0].ProjectVersion)

	require.Len(t, pv.Devices, 2)
	gw, lamp := pv.Devices[0], pv.Devices[1]
	assert.Same(t, pv.Zones[1], gw.Zone)
	assert.Same(t, s.zwave, gw.ProtocolAdapter)
	assert.Same(t, gw, lamp.Parent)
	assert.Same(t, s.template, lamp.MasterTemplate)
	assert.Equal(t, []*model.DeviceType{s.dimmer}, lamp.DeviceTypes)
	assert.Equal(t, []*model.DeviceClass{s.dimmable}, lamp.DeviceClasses)
	assert.Equal(t, map[string]string{"watts": "40"}, lamp.Props)

	require.Len(t, pv.CFNodes, 2)
	root := pv.CFNodes[0]
	assert.Same(t, s.provider, root.Provider)
	assert.Equal(t, model.Properties{"level": model.Int(3), "tags": model.TextArray{"a", "b"}}, root.Properties)
	assert.Same(t, root, pv.CFNodes[1].Parent)
	assert.NotNil(t, pv.CFNodes[1].Properties)

	require.Len(t, pv.Services, 1)
	svc := pv.Services[0]
	assert.Same(t, s.weather, svc.Definition)
	assert.Equal(t, []*model.DeviceItem{gw, lamp}, svc.Devices)
	assert.Equal(t, map[string]string{"city": "Berlin"}, svc.Config)
}

func TestDecodeVersionDropsMissingReferences(t *testing.T) {
	s := newSample()
	recs := encodeVersion(s.pv)
	recs.devices[1].ParentID = 999
	recs.devices[1].DeviceTypeIDs = []int{5, 404}
	recs.services[0].DeviceIDs = []int{31, 77}
	recs.cfnodes[0].Properties = append(recs.cfnodes[0].Properties, propertyRecord{Key: "bad", Type: "int", Value: "x"})

	pv := decodeVersion(recs, references{types: map[int]*model.DeviceType{5: s.dimmer}})

	lamp := pv.Devices[1]
	assert.Nil(t, lamp.Parent)
	assert.Nil(t, lamp.MasterTemplate)
	assert.Equal(t, []*model.DeviceType{s.dimmer}, lamp.DeviceTypes)
	assert.Nil(t, pv.LastUpdateUser)
	assert.Nil(t, pv.Devices[0].ProtocolAdapter)
	assert.Equal(t, []*model.DeviceItem{lamp}, pv.Services[0].Devices)
	assert.NotContains(t, pv.CFNodes[0].Properties, "bad")
}

func TestReferencedIDs(t *testing.T) {
	recs := encodeVersion(newSample().pv)
	users, templates := referencedIDs(recs)
	assert.Equal(t, []int{1}, users)
	assert.Equal(t, []int{10}, templates)

	users, templates = referencedIDs(versionRecords{})
	assert.NotNil(t, users)
	assert.Empty(t, users)
	assert.Empty(t, templates)
}
