package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mio "github.com/matzehuels/mctbnc/pkg/io"
	"github.com/matzehuels/mctbnc/pkg/render"
)

const (
	networkFeatures = "features"
	networkClasses  = "classes"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path; defaults to the model path with the format's extension
	format   string // svg, pdf, png or dot
	network  string // features or classes
	detailed bool   // list variable states in node labels
}

// renderCommand creates the render command for drawing learned structures.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: render.FormatSVG, network: networkFeatures}

	cmd := &cobra.Command{
		Use:   "render [model]",
		Short: "Render a learned structure to SVG, PDF, PNG or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: model path with the format's extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, pdf, png, dot")
	cmd.Flags().StringVar(&opts.network, "network", opts.network, "network to draw: features, classes")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list variable states in node labels")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(renderFormats...))
	_ = cmd.RegisterFlagCompletionFunc("network", fixedCompletion(networkFeatures, networkClasses))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	doc, err := mio.ImportModel(path)
	if err != nil {
		return err
	}
	dot, err := documentDOT(doc, opts)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	data, err := render.Convert(ctx, dot, opts.format)
	if err != nil {
		return err
	}
	prog.done("Rendered " + opts.network + " network")

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "." + opts.format
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess("Rendered %s", path)
	printFile(out)
	return nil
}

// documentDOT draws the selected network of doc.
func documentDOT(doc *mio.Document, opts renderOpts) (string, error) {
	var net *mio.Network
	switch opts.network {
	case networkFeatures:
		net = doc.Features
		if net == nil {
			// Static-only documents have a single network.
			net = doc.Classes
		}
	case networkClasses:
		net = doc.Classes
	default:
		return "", fmt.Errorf("unknown network %q (want %s or %s)", opts.network, networkFeatures, networkClasses)
	}
	if net == nil {
		return "", fmt.Errorf("model has no %s network", opts.network)
	}

	s, err := net.Graph()
	if err != nil {
		return "", err
	}
	nodes := make([]render.Node, len(net.Nodes))
	for i, name := range net.Nodes {
		v, ok := doc.Variable(name)
		if !ok {
			return "", fmt.Errorf("network node %q is not a declared variable", name)
		}
		nodes[i] = render.Node{Name: v.Name, States: v.States, Class: v.Class}
	}
	return render.ToDOT(nodes, s, render.Options{Detailed: opts.detailed}), nil
}
