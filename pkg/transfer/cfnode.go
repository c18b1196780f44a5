package transfer

import (
	"context"

	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/model"
)

// exportCFNodes writes the rule-graph nodes reachable from nodes to the
// cfnodes array and their parent/child pairs to cfnode_cfnode. Each node is
// written once however many times it is reachable.
func exportCFNodes(x *exporter, nodes []*model.CFNode) {
	x.doc.EnsureArray(KeyCFNodes)
	x.doc.EnsureArray(KeyCFNodeCFNode)

	var all []*model.CFNode
	for _, n := range nodes {
		if n != nil {
			n.Walk(func(c *model.CFNode) { all = append(all, c) })
		}
	}
	x.cfnodes.reserve(all, func(n *model.CFNode) int { return n.ID })

	exported := make(map[*model.CFNode]bool)
	for _, n := range nodes {
		if n != nil {
			exportCFNode(x, exported, n)
		}
	}
}

func exportCFNode(x *exporter, exported map[*model.CFNode]bool, n *model.CFNode) {
	if exported[n] {
		return
	}
	exported[n] = true

	rec := document.Object{}
	rec.PutInt(KeyID, x.cfnodeID(n))
	rec.PutString(KeyName, n.Name)
	rec.PutString(KeyNotes, n.Notes)
	rec.PutString(KeyUID, n.UID)
	rec.Put(KeyProperties, exportProperties(n.Properties))

	if p := n.Provider; p != nil {
		rec.PutString(KeyProviderName, p.Name)
		rec.PutString(KeyProviderTypeName, string(p.Type))
	}
	if n.ProjectVersion != nil {
		rec.PutInt(KeyProjectVersionID, n.ProjectVersion.ID)
	}
	x.doc.EnsureArray(KeyCFNodes).Append(rec)

	edges := x.doc.EnsureArray(KeyCFNodeCFNode)
	for _, child := range n.Children {
		edges.Append(edge(x.cfnodeID(n), x.cfnodeID(child)))
		exportCFNode(x, exported, child)
	}
}

// importCFNodes materializes the rule-graph nodes of doc and links them
// through cfnode_cfnode. The project version must have been imported first.
func importCFNodes(ctx context.Context, s *Session, doc document.Object) {
	s.cfnodes.reset()
	materialize(s, s.cfnodes, doc.Array(KeyCFNodes), func(rec document.Object) *model.CFNode {
		n := model.NewCFNode()
		n.Name = rec.String(KeyName)
		n.Notes = rec.String(KeyNotes)
		n.UID = rec.String(KeyUID)
		if rec.Has(KeyProjectVersionID) {
			n.ProjectVersion = s.version
		}
		if rec.Has(KeyProviderName) {
			n.Provider = s.LookupCFProvider(rec.String(KeyProviderName), rec.String(KeyProviderTypeName))
		}
		importProperties(s, n.Properties, rec.Array(KeyProperties))
		return n
	})
	link(s, s.cfnodes, doc.Array(KeyCFNodeCFNode), func(child, parent *model.CFNode) bool {
		return child.SetParent(parent)
	})
}
