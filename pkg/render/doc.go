// Package render draws learned network structures.
//
// Structures are converted to Graphviz DOT with [ToDOT] and rendered
// in-process to SVG with [RenderSVG]. Class variables are drawn as shaded
// ellipses on the top rank; feature variables as rounded boxes below them.
//
//	dot := render.ToDOT(render.NodesOf(&clf.Features.Network), clf.Features.Structure(), render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// PDF and PNG output go through SVG with [ToPDF] and [ToPNG], which shell
// out to rsvg-convert from librsvg.
package render
