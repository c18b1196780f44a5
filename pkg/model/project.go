package model

import "time"

// ProjectVersion is the root of an exchanged document.
type ProjectVersion struct {
	ID             int
	Name           string
	Notes          string
	UID            string
	Locked         bool
	LastUpdate     time.Time
	LastUpdateUser *User
	Project        *Project

	Zones    []*Zone
	Devices  []*DeviceItem
	CFNodes  []*CFNode
	Services []*ServiceInstance
}

// Zone is a physical area of a project. Zones nest.
type Zone struct {
	ID             int
	Name           string
	Notes          string
	UID            string
	LastUpdateUser *User
	ProjectVersion *ProjectVersion

	Parent   *Zone
	Children []*Zone
}

// SetParent links z below parent. It reports false, and changes nothing,
// if z already has a parent.
func (z *Zone) SetParent(parent *Zone) bool {
	if z.Parent != nil {
		return false
	}
	z.Parent = parent
	parent.Children = append(parent.Children, z)
	return true
}

// DeviceItem is a device installed in a project, or a template when
// Template is set. Templates are matched by Name, Vendor, ModelNumber and
// Version.
type DeviceItem struct {
	ID               int
	Name             string
	Notes            string
	UID              string
	Vendor           string
	Version          string
	ModelNumber      string
	Troubleshooting  string
	ProtocolVerRange string
	Props            map[string]string
	Template         bool
	Hidden           bool
	Equipment        bool
	Certified        bool
	LastUpdate       time.Time

	LastUpdateUser  *User
	MasterTemplate  *DeviceItem
	Zone            *Zone
	DeviceTypes     []*DeviceType
	DeviceClasses   []*DeviceClass
	ProtocolAdapter *ProtocolAdapter
	ProjectVersion  *ProjectVersion

	Parent   *DeviceItem
	Children []*DeviceItem
}

// SetParent links d below parent. It reports false, and changes nothing,
// if d already has a parent.
func (d *DeviceItem) SetParent(parent *DeviceItem) bool {
	if d.Parent != nil {
		return false
	}
	d.Parent = parent
	parent.Children = append(parent.Children, d)
	return true
}

// ServiceInstance is a configured instance of a service definition.
type ServiceInstance struct {
	ID             int
	Name           string
	Notes          string
	UID            string
	Enabled        bool
	Config         map[string]string
	Definition     *ServiceDefinition
	Devices        []*DeviceItem
	ProjectVersion *ProjectVersion
}
