// Package nodelink renders the trees of an exchange document as node-link
// diagrams.
//
// # Overview
//
// An exchange document holds up to four kinds of records: zones, devices,
// rule-graph nodes and service instances. Zones, devices and rule-graph
// nodes form forests through their edge lists. This package draws each
// kind as a Graphviz cluster with one box per record and one arrow per
// parent/child edge. Cross references (a device's zone, a service's
// devices) can be drawn as dashed arrows.
//
// The renderer works on the raw [document.Object], not on an imported
// project version, so it needs no repository and shows exactly what a file
// contains. Edges whose endpoints are missing from the document are skipped.
//
// # Usage
//
//	doc, err := document.Parse(data)
//	dot := nodelink.ToDOT(doc, nodelink.Options{References: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
