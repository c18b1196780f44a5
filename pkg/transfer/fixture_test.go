package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/repository/memory"
)

// fixture is a small reference catalog shared by the transfer tests.
type fixture struct {
	store *memory.Store

	scene    *model.CFProvider
	driver   *model.CFProvider
	lighting *model.DeviceCategory
	dimmable *model.DeviceClass
	dimmer   *model.DeviceType
	zwave    *model.ProtocolAdapter
	weather  *model.ServiceDefinition
	ops      *model.User
	acme     *model.CompanyGroup
	hq       *model.Project
	template *model.DeviceItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{store: memory.New()}
	f.scene = &model.CFProvider{Name: "scene", Type: "SCENE"}
	f.driver = &model.CFProvider{Name: "dimmer", Type: "DRIVER"}
	f.lighting = &model.DeviceCategory{Name: "Lighting"}
	f.dimmable = &model.DeviceClass{Name: "dimmable"}
	f.dimmer = &model.DeviceType{Name: "Dimmer", Category: f.lighting}
	f.zwave = &model.ProtocolAdapter{Name: "zwave", Version: "2.0"}
	f.weather = &model.ServiceDefinition{Name: "Weather", UID: "wx", Vendor: "Acme", Version: "1"}
	f.ops = &model.User{Email: "ops@example.com", Name: "Ops"}
	f.acme = &model.CompanyGroup{Name: "Acme"}
	f.hq = &model.Project{Name: "HQ", Group: f.acme}
	f.template = &model.DeviceItem{Name: "Dimmer", Vendor: "Acme", ModelNumber: "D-1", Version: "1.0", Template: true}

	f.store.AddCFProvider(f.scene)
	f.store.AddCFProvider(f.driver)
	f.store.AddDeviceCategory(f.lighting)
	f.store.AddDeviceClass(f.dimmable)
	f.store.AddDeviceType(f.dimmer)
	f.store.AddProtocolAdapter(f.zwave)
	f.store.AddServiceDefinition(f.weather)
	f.store.AddUser(f.ops)
	f.store.AddCompanyGroup(f.acme)
	f.store.AddProject(f.hq)
	f.store.AddDeviceItem(f.template)
	return f
}

// countingRepo counts user lookups that reach the repository.
type countingRepo struct {
	*memory.Store
	userCalls int
}

func (r *countingRepo) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.userCalls++
	return r.Store.UserByEmail(ctx, email)
}

// failingRepo fails every call that lists reference data or fetches users.
type failingRepo struct {
	*memory.Store
	failList bool
}

var errBackend = errors.New("connection refused")

func (r *failingRepo) CFProviders(ctx context.Context) ([]*model.CFProvider, error) {
	if r.failList {
		return nil, errBackend
	}
	return r.Store.CFProviders(ctx)
}

func (r *failingRepo) UserByEmail(context.Context, string) (*model.User, error) {
	return nil, errBackend
}
