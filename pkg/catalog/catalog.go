// Package catalog loads reference data from a TOML file.
//
// A catalog seeds the in-memory repository with everything an import
// resolves against: providers, device categories, classes and types,
// protocol adapters, service definitions, templates, users, company groups
// and projects. References inside the catalog are by name:
//
//	[[categories]]
//	name = "Lighting"
//
//	[[device_types]]
//	name = "Dimmer"
//	category = "Lighting"
//
//	[[templates]]
//	name = "Dimmer"
//	vendor = "Acme"
//	model_number = "D-1"
//	version = "1.0"
//	device_types = [{ name = "Dimmer", category = "Lighting" }]
//	adapter = { name = "zwave", version = "2.0" }
package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/repository/memory"
	"github.com/matzehuels/blueprint/pkg/transfer"
)

// Catalog is the decoded catalog file.
type Catalog struct {
	Providers   []Provider   `toml:"providers"`
	Categories  []Named      `toml:"categories"`
	Classes     []Named      `toml:"classes"`
	DeviceTypes []DeviceType `toml:"device_types"`
	Adapters    []Adapter    `toml:"adapters"`
	Services    []Service    `toml:"services"`
	Templates   []Template   `toml:"templates"`
	Users       []User       `toml:"users"`
	Groups      []Named      `toml:"groups"`
	Projects    []Project    `toml:"projects"`
}

type Named struct {
	Name string `toml:"name"`
}

type Provider struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type DeviceType struct {
	Name     string `toml:"name"`
	Category string `toml:"category"`
}

type Adapter struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type Service struct {
	Name    string `toml:"name"`
	UID     string `toml:"uid"`
	Vendor  string `toml:"vendor"`
	Version string `toml:"version"`
}

type User struct {
	Email string `toml:"email"`
	Name  string `toml:"name"`
}

type Project struct {
	Name    string `toml:"name"`
	Company string `toml:"company"`
}

// Template is a template device item.
type Template struct {
	Name        string            `toml:"name"`
	Vendor      string            `toml:"vendor"`
	ModelNumber string            `toml:"model_number"`
	Version     string            `toml:"version"`
	Notes       string            `toml:"notes"`
	Props       map[string]string `toml:"props"`
	DeviceTypes []DeviceType      `toml:"device_types"`
	Classes     []string          `toml:"classes"`
	Adapter     *Adapter          `toml:"adapter"`
}

// Parse decodes a catalog. Unknown keys are an error.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse catalog")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "catalog: unknown key %q", undecoded[0].String())
	}
	return &c, nil
}

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read catalog %s", path)
	}
	return Parse(data)
}

// Apply adds the catalog's entities to store. References that name no
// catalog entity are left unset and returned as problems. When a name is
// defined twice, references bind to the later definition, matching how an
// import session indexes reference data.
func (c *Catalog) Apply(store *memory.Store) []string {
	var problems []string
	problem := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, p := range c.Providers {
		store.AddCFProvider(&model.CFProvider{Name: p.Name, Type: model.ProviderType(p.Type)})
	}

	categories := make(map[string]*model.DeviceCategory)
	for _, n := range c.Categories {
		cat := &model.DeviceCategory{Name: n.Name}
		store.AddDeviceCategory(cat)
		categories[n.Name] = cat
	}

	classes := make(map[string]*model.DeviceClass)
	for _, n := range c.Classes {
		cl := &model.DeviceClass{Name: n.Name}
		store.AddDeviceClass(cl)
		classes[n.Name] = cl
	}

	types := make(map[DeviceType]*model.DeviceType)
	for _, t := range c.DeviceTypes {
		dt := &model.DeviceType{Name: t.Name, Category: categories[t.Category]}
		if dt.Category == nil {
			problem("device type %q: unknown category %q", t.Name, t.Category)
		}
		store.AddDeviceType(dt)
		types[t] = dt
	}

	adapters := make(map[Adapter]*model.ProtocolAdapter)
	for _, a := range c.Adapters {
		pa := &model.ProtocolAdapter{Name: a.Name, Version: a.Version}
		store.AddProtocolAdapter(pa)
		adapters[a] = pa
	}

	for _, s := range c.Services {
		store.AddServiceDefinition(&model.ServiceDefinition{Name: s.Name, UID: s.UID, Vendor: s.Vendor, Version: s.Version})
	}

	for _, u := range c.Users {
		store.AddUser(&model.User{Email: u.Email, Name: u.Name})
	}

	groups := make(map[string]*model.CompanyGroup)
	for _, n := range c.Groups {
		g := &model.CompanyGroup{Name: n.Name}
		store.AddCompanyGroup(g)
		groups[n.Name] = g
	}

	for _, p := range c.Projects {
		proj := &model.Project{Name: p.Name, Group: groups[p.Company]}
		if proj.Group == nil {
			problem("project %q: unknown company %q", p.Name, p.Company)
		}
		store.AddProject(proj)
	}

	for _, t := range c.Templates {
		d := &model.DeviceItem{
			Name:        t.Name,
			Vendor:      t.Vendor,
			ModelNumber: t.ModelNumber,
			Version:     t.Version,
			Notes:       t.Notes,
			Props:       t.Props,
			Template:    true,
		}
		for _, ref := range t.DeviceTypes {
			if dt := types[ref]; dt != nil {
				d.DeviceTypes = append(d.DeviceTypes, dt)
			} else {
				problem("template %q: unknown device type %q in category %q", t.Name, ref.Name, ref.Category)
			}
		}
		for _, name := range t.Classes {
			if cl := classes[name]; cl != nil {
				d.DeviceClasses = append(d.DeviceClasses, cl)
			} else {
				problem("template %q: unknown class %q", t.Name, name)
			}
		}
		if t.Adapter != nil {
			if d.ProtocolAdapter = adapters[*t.Adapter]; d.ProtocolAdapter == nil {
				problem("template %q: unknown adapter %q version %q", t.Name, t.Adapter.Name, t.Adapter.Version)
			}
		}
		store.AddDeviceItem(d)
	}
	return problems
}

// Store returns a memory store seeded with the catalog.
func (c *Catalog) Store() (*memory.Store, []string) {
	store := memory.New()
	return store, c.Apply(store)
}

// Check reports the problems an import against this catalog would run
// into: dangling references inside the catalog and natural keys that are
// not unique.
func (c *Catalog) Check(ctx context.Context) ([]string, error) {
	store, problems := c.Store()
	s, err := transfer.NewSession(ctx, store)
	if err != nil {
		return nil, err
	}
	return append(problems, s.Errors()...), nil
}
