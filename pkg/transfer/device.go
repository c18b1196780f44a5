package transfer

import (
	"context"

	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/model"
)

// exportDeviceItems writes devices to the devices array and one
// device_device tuple per parent/child pair. Devices are supplied flat by
// the caller, so children are not visited.
func exportDeviceItems(x *exporter, devices []*model.DeviceItem) {
	records := x.doc.EnsureArray(KeyDevices)
	edges := x.doc.EnsureArray(KeyDeviceDevice)

	x.devices.reserve(devices, func(d *model.DeviceItem) int { return d.ID })
	for _, d := range devices {
		if d == nil {
			continue
		}
		rec := document.Object{}
		rec.PutInt(KeyID, x.deviceID(d))
		rec.PutString(KeyName, d.Name)
		rec.PutString(KeyNotes, d.Notes)
		rec.PutString(KeyUID, d.UID)
		rec.PutTimestamp(KeyLastUpdate, d.LastUpdate)
		rec.PutString(KeyVendor, d.Vendor)
		rec.PutString(KeyVersion, d.Version)
		rec.PutString(KeyModelNumber, d.ModelNumber)
		rec.PutString(KeyTroubleshooting, d.Troubleshooting)
		rec.PutStringMap(KeyDeviceItemsProps, d.Props)
		rec.PutString(KeyProtocolVerRange, d.ProtocolVerRange)
		rec.PutBool(KeyTemplate, d.Template)
		rec.PutBool(KeyHidden, d.Hidden)
		rec.PutBool(KeyEquipment, d.Equipment)
		rec.PutBool(KeyCertified, d.Certified)

		exportDeviceLookup(x, d, rec)
		records.Append(rec)

		for _, child := range d.Children {
			edges.Append(edge(x.deviceID(d), x.deviceID(child)))
		}
	}
}

func exportDeviceLookup(x *exporter, d *model.DeviceItem, rec document.Object) {
	if t := d.MasterTemplate; t != nil {
		rec.PutString(KeyMasterTemplateName, t.Name)
		rec.PutString(KeyMasterTemplateVendor, t.Vendor)
		rec.PutString(KeyMasterTemplateModelNumber, t.ModelNumber)
		rec.PutString(KeyMasterTemplateVersion, t.Version)
	}
	if d.LastUpdateUser != nil {
		rec.PutString(KeyLastUpdateUserEmail, d.LastUpdateUser.Email)
	}
	if d.Zone != nil {
		rec.PutInt(KeyZoneID, x.zoneID(d.Zone))
	}

	types := rec.EnsureArray(KeyDeviceTypes)
	for _, t := range d.DeviceTypes {
		if t == nil {
			continue
		}
		ref := document.Object{}
		ref.PutString(KeyDeviceTypeName, t.Name)
		ref.PutString(KeyDeviceCategoryName, t.CategoryName())
		types.Append(ref)
	}

	if a := d.ProtocolAdapter; a != nil {
		rec.PutString(KeyProtocolAdapterName, a.Name)
		rec.PutString(KeyProtocolAdapterVersion, a.Version)
	}

	classes := rec.EnsureArray(KeyDeviceClasses)
	for _, c := range d.DeviceClasses {
		if c != nil {
			classes.Append(c.Name)
		}
	}
}

// importDeviceItems materializes the devices of doc and links them through
// device_device. Zones must have been imported first.
func importDeviceItems(ctx context.Context, s *Session, doc document.Object) {
	s.devices.reset()
	materialize(s, s.devices, doc.Array(KeyDevices), func(rec document.Object) *model.DeviceItem {
		d := &model.DeviceItem{
			Name:             rec.String(KeyName),
			Notes:            rec.String(KeyNotes),
			UID:              rec.String(KeyUID),
			LastUpdate:       rec.Timestamp(KeyLastUpdate),
			Vendor:           rec.String(KeyVendor),
			Version:          rec.String(KeyVersion),
			ModelNumber:      rec.String(KeyModelNumber),
			Troubleshooting:  rec.String(KeyTroubleshooting),
			Props:            rec.StringMap(KeyDeviceItemsProps),
			ProtocolVerRange: rec.String(KeyProtocolVerRange),
			Template:         rec.Bool(KeyTemplate),
			Hidden:           rec.Bool(KeyHidden),
			Equipment:        rec.Bool(KeyEquipment),
			Certified:        rec.Bool(KeyCertified),
		}
		importDeviceLookup(ctx, s, d, rec)
		d.ProjectVersion = s.version
		return d
	})
	link(s, s.devices, doc.Array(KeyDeviceDevice), func(child, parent *model.DeviceItem) bool {
		return child.SetParent(parent)
	})
}

// importDeviceLookup resolves the lookup block of a device record. A direct
// template reference in _importTemplateId_ takes precedence over the
// template's natural key.
func importDeviceLookup(ctx context.Context, s *Session, d *model.DeviceItem, rec document.Object) {
	if id, ok := rec.Int(KeyImportTemplateID); ok {
		d.MasterTemplate = s.FindDeviceItem(ctx, id)
	} else if rec.Has(KeyMasterTemplateName) {
		d.MasterTemplate = s.LookupTemplate(ctx,
			rec.String(KeyMasterTemplateName),
			rec.String(KeyMasterTemplateVendor),
			rec.String(KeyMasterTemplateModelNumber),
			rec.String(KeyMasterTemplateVersion))
	}

	if rec.Has(KeyZoneID) {
		d.Zone = s.zones.resolve(s, rec.Text(KeyZoneID))
	}
	d.LastUpdateUser = s.LookupUser(ctx, rec.String(KeyLastUpdateUserEmail))

	types := rec.Array(KeyDeviceTypes)
	for i := range types.Len() {
		ref, ok := types.Object(i)
		if !ok {
			continue
		}
		if t := s.LookupDeviceType(ref.String(KeyDeviceTypeName), ref.String(KeyDeviceCategoryName)); t != nil {
			d.DeviceTypes = append(d.DeviceTypes, t)
		}
	}

	d.ProtocolAdapter = s.LookupProtocolAdapter(rec.String(KeyProtocolAdapterName), rec.String(KeyProtocolAdapterVersion))

	classes := rec.Array(KeyDeviceClasses)
	for i := range classes.Len() {
		if c := s.LookupDeviceClass(classes.String(i)); c != nil {
			d.DeviceClasses = append(d.DeviceClasses, c)
		}
	}
}
