package transfer

import (
	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/model"
)

// exporter carries the document being written and the document IDs handed
// out so far, one table per kind.
type exporter struct {
	doc      document.Object
	zones    *idTable[model.Zone]
	devices  *idTable[model.DeviceItem]
	cfnodes  *idTable[model.CFNode]
	services *idTable[model.ServiceInstance]
}

func newExporter() *exporter {
	return &exporter{
		doc:      document.Object{},
		zones:    newIDTable[model.Zone](),
		devices:  newIDTable[model.DeviceItem](),
		cfnodes:  newIDTable[model.CFNode](),
		services: newIDTable[model.ServiceInstance](),
	}
}

// idTable assigns document IDs. An entity keeps its persisted ID unless
// another entity already took it; entities without one are numbered after
// the highest ID in use.
type idTable[T any] struct {
	ids  map[*T]int
	used map[int]bool
	max  int
}

func newIDTable[T any]() *idTable[T] {
	return &idTable[T]{ids: make(map[*T]int), used: make(map[int]bool)}
}

// reserve claims persisted IDs before any fresh ones are handed out, so a
// fresh ID never collides with a persisted one that appears later.
func (t *idTable[T]) reserve(items []*T, persisted func(*T) int) {
	for _, item := range items {
		if item == nil {
			continue
		}
		if id := persisted(item); id > 0 && !t.used[id] {
			t.claim(item, id)
		}
	}
}

// id returns the document ID of item, assigning one on first use.
func (t *idTable[T]) id(item *T, persisted int) int {
	if id, ok := t.ids[item]; ok {
		return id
	}
	id := persisted
	if id <= 0 || t.used[id] {
		id = t.max + 1
	}
	t.claim(item, id)
	return id
}

func (t *idTable[T]) claim(item *T, id int) {
	t.ids[item] = id
	t.used[id] = true
	if id > t.max {
		t.max = id
	}
}

func (x *exporter) zoneID(z *model.Zone) int {
	return x.zones.id(z, z.ID)
}

func (x *exporter) deviceID(d *model.DeviceItem) int {
	return x.devices.id(d, d.ID)
}

func (x *exporter) cfnodeID(n *model.CFNode) int {
	return x.cfnodes.id(n, n.ID)
}

func (x *exporter) serviceID(si *model.ServiceInstance) int {
	return x.services.id(si, si.ID)
}

func edge(parent, child int) *document.Array {
	return document.NewArray(parent, child)
}
