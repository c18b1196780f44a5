package model

// ProviderType classifies a rule-graph provider (for example "DRIVER" or
// "SCENE"). It travels on the wire by name.
type ProviderType string

// CFProvider supplies the implementation behind a rule-graph node.
// Natural key: Name + Type.
type CFProvider struct {
	ID   int
	Name string
	Type ProviderType
}

// DeviceCategory groups device types. Natural key: Name.
type DeviceCategory struct {
	ID   int
	Name string
}

// DeviceClass tags devices by capability. Natural key: Name.
type DeviceClass struct {
	ID   int
	Name string
}

// DeviceType is a named type within a category.
// Natural key: Name + Category.Name.
type DeviceType struct {
	ID       int
	Name     string
	Category *DeviceCategory
}

// CategoryName returns the name of the type's category, or "" if unset.
func (t *DeviceType) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// ProtocolAdapter talks to devices over a wire protocol.
// Natural key: Name + Version.
type ProtocolAdapter struct {
	ID      int
	Name    string
	Version string
}

// ServiceDefinition describes a service that can be instantiated in a
// project. Natural key: UID + Vendor + Version.
type ServiceDefinition struct {
	ID      int
	Name    string
	UID     string
	Vendor  string
	Version string
}

// User is an account referenced by last-update stamps. Natural key: Email.
type User struct {
	ID    int
	Email string
	Name  string
}

// CompanyGroup owns projects. Natural key: Name.
type CompanyGroup struct {
	ID   int
	Name string
}

// Project groups project versions. Natural key: Name + Group.Name.
type Project struct {
	ID    int
	Name  string
	Group *CompanyGroup
}

// CompanyName returns the name of the owning group, or "" if unset.
func (p *Project) CompanyName() string {
	if p.Group == nil {
		return ""
	}
	return p.Group.Name
}
