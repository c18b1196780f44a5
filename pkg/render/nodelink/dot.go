package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/transfer"
)

// Record kinds, as accepted by [Options.Kinds].
const (
	KindZones    = "zones"
	KindDevices  = "devices"
	KindCFNodes  = "cfnodes"
	KindServices = "services"
)

// AllKinds lists every kind in drawing order.
var AllKinds = []string{KindZones, KindDevices, KindCFNodes, KindServices}

// Options configures node-link diagram rendering.
type Options struct {
	// Kinds restricts the diagram to the named kinds. Empty means all.
	Kinds []string

	// Detailed adds the uid and type information to node labels.
	Detailed bool

	// References draws device→zone and service→device references as
	// dashed arrows.
	References bool
}

func (o Options) has(kind string) bool {
	return len(o.Kinds) == 0 || slices.Contains(o.Kinds, kind)
}

// ValidKind reports whether kind is one of [AllKinds].
func ValidKind(kind string) bool {
	return slices.Contains(AllKinds, kind)
}

type section struct {
	kind    string
	label   string
	prefix  string
	records string
	edges   string
	color   string
}

var sections = []section{
	{KindZones, "Zones", "z", transfer.KeyZones, transfer.KeyZoneZone, "lightyellow"},
	{KindDevices, "Devices", "d", transfer.KeyDevices, transfer.KeyDeviceDevice, "lightblue"},
	{KindCFNodes, "Rules", "c", transfer.KeyCFNodes, transfer.KeyCFNodeCFNode, "honeydew"},
	{KindServices, "Services", "s", transfer.KeyServiceInstances, "", "mistyrose"},
}

// ToDOT converts the trees of doc to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(doc document.Object, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	nodes := make(map[string]bool)
	for _, sec := range sections {
		if !opts.has(sec.kind) {
			continue
		}
		records := doc.Array(sec.records)
		if records.Len() == 0 {
			continue
		}

		fmt.Fprintf(&buf, "\n  subgraph cluster_%s {\n", sec.kind)
		fmt.Fprintf(&buf, "    label=%q;\n", sec.label)
		fmt.Fprintf(&buf, "    node [fillcolor=%s];\n", sec.color)
		for i := range records.Len() {
			rec, ok := records.Object(i)
			if !ok {
				continue
			}
			id, ok := rec.Int(transfer.KeyID)
			if !ok {
				continue
			}
			name := nodeName(sec.prefix, id)
			if nodes[name] {
				continue
			}
			nodes[name] = true
			fmt.Fprintf(&buf, "    %q [label=%q];\n", name, fmtLabel(sec.kind, id, rec, opts.Detailed))
		}
		buf.WriteString("  }\n")

		if sec.edges != "" {
			writeEdges(&buf, doc.Array(sec.edges), sec.prefix, nodes)
		}
	}

	if opts.References {
		writeReferences(&buf, doc, nodes)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(prefix string, id int) string {
	return prefix + strconv.Itoa(id)
}

func writeEdges(buf *bytes.Buffer, edges *document.Array, prefix string, nodes map[string]bool) {
	for i := range edges.Len() {
		pair := edges.Array(i)
		if pair.Len() != 2 {
			continue
		}
		p, okP := pair.Int(0)
		c, okC := pair.Int(1)
		if !okP || !okC {
			continue
		}
		from, to := nodeName(prefix, p), nodeName(prefix, c)
		if nodes[from] && nodes[to] {
			fmt.Fprintf(buf, "  %q -> %q;\n", from, to)
		}
	}
}

func writeReferences(buf *bytes.Buffer, doc document.Object, nodes map[string]bool) {
	ref := func(from, to string) {
		if nodes[from] && nodes[to] {
			fmt.Fprintf(buf, "  %q -> %q [style=dashed, arrowhead=open, color=grey40];\n", from, to)
		}
	}

	devices := doc.Array(transfer.KeyDevices)
	for i := range devices.Len() {
		rec, ok := devices.Object(i)
		if !ok {
			continue
		}
		id, okID := rec.Int(transfer.KeyID)
		zone, okZone := rec.Int(transfer.KeyZoneID)
		if okID && okZone {
			ref(nodeName("d", id), nodeName("z", zone))
		}
	}

	services := doc.Array(transfer.KeyServiceInstances)
	for i := range services.Len() {
		rec, ok := services.Object(i)
		if !ok {
			continue
		}
		id, ok := rec.Int(transfer.KeyID)
		if !ok {
			continue
		}
		ids := rec.Array(transfer.KeyDeviceIDs)
		for j := range ids.Len() {
			if d, ok := ids.Int(j); ok {
				ref(nodeName("s", id), nodeName("d", d))
			}
		}
	}
}

func fmtLabel(kind string, id int, rec document.Object, detailed bool) string {
	label := rec.String(transfer.KeyName)
	if label == "" {
		label = "#" + strconv.Itoa(id)
	}
	if !detailed {
		return label
	}

	var parts []string
	if uid := rec.String(transfer.KeyUID); uid != "" {
		parts = append(parts, "uid: "+uid)
	}
	switch kind {
	case KindDevices:
		if rec.Bool(transfer.KeyTemplate) {
			parts = append(parts, "template")
		}
		if v := rec.String(transfer.KeyVendor); v != "" {
			parts = append(parts, "vendor: "+v)
		}
		if a := rec.String(transfer.KeyProtocolAdapterName); a != "" {
			parts = append(parts, "adapter: "+a)
		}
	case KindCFNodes:
		if p := rec.String(transfer.KeyProviderName); p != "" {
			parts = append(parts, "provider: "+p)
		}
		if n := rec.Array(transfer.KeyProperties).Len(); n > 0 {
			parts = append(parts, fmt.Sprintf("properties: %d", n))
		}
	case KindServices:
		if d := rec.String(transfer.KeyServiceDefinitionName); d != "" {
			parts = append(parts, "definition: "+d)
		}
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with a unitless one
// so the diagram scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
