package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/model"
)

// Options configures diagram generation.
type Options struct {
	// Detailed lists each variable's states under its name.
	Detailed bool
}

// Node is one drawn variable.
type Node struct {
	Name   string
	States []string
	Class  bool
}

// NodesOf returns the drawable nodes of a network in index order.
func NodesOf(n *model.Network) []Node {
	out := make([]Node, n.Size())
	for i, nd := range n.Nodes() {
		out[i] = Node{Name: nd.Name, States: nd.States, Class: nd.Class}
	}
	return out
}

// ToDOT converts a structure over nodes to Graphviz DOT. Node i of s is
// drawn as nodes[i].
func ToDOT(nodes []Node, s *graph.Structure, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	var classes []string
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		if n.Class {
			classes = append(classes, strconv.Quote(n.Name))
		}
	}
	if len(classes) > 0 {
		fmt.Fprintf(&buf, "  { rank=min; %s; }\n", strings.Join(classes, "; "))
	}

	buf.WriteString("\n")
	for i := 0; i < s.Size(); i++ {
		for _, j := range s.Children(i) {
			attrs := ""
			if s.HasEdge(j, i) {
				attrs = " [color=\"#8a3ffc\"]"
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", nodes[i].Name, nodes[j].Name, attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n Node, detailed bool) []string {
	label := n.Name
	if detailed {
		label += "\n" + strings.Join(n.States, " | ")
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Class {
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=\"#dbe8f6\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [ToPDF] or [ToPNG].
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

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// size matches its viewBox, so the image scales in browsers.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}
