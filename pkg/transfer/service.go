package transfer

import (
	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/model"
)

func exportServiceInstances(x *exporter, services []*model.ServiceInstance) {
	records := x.doc.EnsureArray(KeyServiceInstances)

	x.services.reserve(services, func(si *model.ServiceInstance) int { return si.ID })
	for _, si := range services {
		if si == nil {
			continue
		}
		rec := document.Object{}
		rec.PutInt(KeyID, x.serviceID(si))
		rec.PutString(KeyName, si.Name)
		rec.PutString(KeyNotes, si.Notes)
		rec.PutString(KeyUID, si.UID)
		rec.PutBool(KeyEnabled, si.Enabled)
		rec.PutStringMap(KeyConfig, si.Config)

		if d := si.Definition; d != nil {
			rec.PutString(KeyServiceDefinitionName, d.Name)
			rec.PutString(KeyServiceDefinitionUID, d.UID)
			rec.PutString(KeyServiceDefinitionVendor, d.Vendor)
			rec.PutString(KeyServiceDefinitionVersion, d.Version)
		}

		ids := rec.EnsureArray(KeyDeviceIDs)
		for _, d := range si.Devices {
			if d != nil {
				ids.Append(x.deviceID(d))
			}
		}
		records.Append(rec)
	}
}

// importServiceInstances materializes the service instances of doc. Device
// references are document IDs, so devices must have been imported first.
func importServiceInstances(s *Session, doc document.Object) {
	s.services.reset()
	materialize(s, s.services, doc.Array(KeyServiceInstances), func(rec document.Object) *model.ServiceInstance {
		si := &model.ServiceInstance{
			Name:    rec.String(KeyName),
			Notes:   rec.String(KeyNotes),
			UID:     rec.String(KeyUID),
			Enabled: rec.Bool(KeyEnabled),
			Config:  rec.StringMap(KeyConfig),
			Definition: s.LookupServiceDefinition(
				rec.String(KeyServiceDefinitionName),
				rec.String(KeyServiceDefinitionUID),
				rec.String(KeyServiceDefinitionVendor),
				rec.String(KeyServiceDefinitionVersion)),
			ProjectVersion: s.version,
		}

		ids := rec.Array(KeyDeviceIDs)
		for i := range ids.Len() {
			if d := s.devices.resolve(s, document.Text(ids.At(i))); d != nil {
				si.Devices = append(si.Devices, d)
			}
		}
		return si
	})
}
