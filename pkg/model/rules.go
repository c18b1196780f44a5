package model

// CFNode is a node of a project's rule graph.
type CFNode struct {
	ID             int
	Name           string
	Notes          string
	UID            string
	Properties     Properties
	Provider       *CFProvider
	ProjectVersion *ProjectVersion

	Parent   *CFNode
	Children []*CFNode
}

// NewCFNode returns a node with an empty property bag.
func NewCFNode() *CFNode {
	return &CFNode{Properties: Properties{}}
}

// SetParent links n below parent. It reports false, and changes nothing,
// if n already has a parent.
func (n *CFNode) SetParent(parent *CFNode) bool {
	if n.Parent != nil {
		return false
	}
	n.Parent = parent
	parent.Children = append(parent.Children, n)
	return true
}

// Walk calls fn for n and every node below it, parents before children.
// Nodes reachable more than once are visited once.
func (n *CFNode) Walk(fn func(*CFNode)) {
	seen := make(map[*CFNode]bool)
	var visit func(*CFNode)
	visit = func(c *CFNode) {
		if seen[c] {
			return
		}
		seen[c] = true
		fn(c)
		for _, child := range c.Children {
			visit(child)
		}
	}
	visit(n)
}
