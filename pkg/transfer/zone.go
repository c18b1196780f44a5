package transfer

import (
	"context"

	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/model"
)

// exportZones writes zones to the zones array and their parent/child pairs
// to zone_zone. Zones are supplied flat, so children are not visited.
func exportZones(x *exporter, zones []*model.Zone) {
	records := x.doc.EnsureArray(KeyZones)
	edges := x.doc.EnsureArray(KeyZoneZone)

	x.zones.reserve(zones, func(z *model.Zone) int { return z.ID })
	for _, z := range zones {
		if z == nil {
			continue
		}
		rec := document.Object{}
		rec.PutInt(KeyID, x.zoneID(z))
		rec.PutString(KeyName, z.Name)
		rec.PutString(KeyNotes, z.Notes)
		rec.PutString(KeyUID, z.UID)
		if z.LastUpdateUser != nil {
			rec.PutString(KeyLastUpdateUserEmail, z.LastUpdateUser.Email)
		}
		records.Append(rec)

		for _, child := range z.Children {
			edges.Append(edge(x.zoneID(z), x.zoneID(child)))
		}
	}
}

// importZones materializes the zones of doc and links them through
// zone_zone.
func importZones(ctx context.Context, s *Session, doc document.Object) {
	s.zones.reset()
	materialize(s, s.zones, doc.Array(KeyZones), func(rec document.Object) *model.Zone {
		return &model.Zone{
			Name:           rec.String(KeyName),
			Notes:          rec.String(KeyNotes),
			UID:            rec.String(KeyUID),
			LastUpdateUser: s.LookupUser(ctx, rec.String(KeyLastUpdateUserEmail)),
		}
	})
	link(s, s.zones, doc.Array(KeyZoneZone), func(child, parent *model.Zone) bool {
		return child.SetParent(parent)
	})
}
