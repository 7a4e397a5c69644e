package viz

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// WriteDOT writes the graph in Graphviz's DOT language: one filled ellipse per vertex,
// colored by volume, and one arrow per parent->child edge.
func WriteDOT(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintf(bw, "digraph %q {\n", g.Name)
	_, _ = fmt.Fprintf(bw, " label=\"%s (volume %g to %g)\";\n", dotEscaper.Replace(g.Name), g.MinVolume, g.MaxVolume)
	_, _ = fmt.Fprintln(bw, ` node [shape=ellipse, style=filled, fontsize=8, fontcolor="black"];`)
	for _, v := range g.Vertices {
		_, _ = fmt.Fprintf(bw, " n%d [label=\"%s\", fillcolor=%q];\n", v.ID, dotEscaper.Replace(v.Label), v.Color.Hex())
	}
	_, _ = fmt.Fprintln(bw)
	for _, e := range g.Edges {
		_, _ = fmt.Fprintf(bw, " n%d -> n%d;\n", e.From, e.To)
	}
	_, _ = fmt.Fprintln(bw, "}")
	return errors.Wrapf(bw.Flush(), "failed to write DOT graph %q", g.Name)
}

// DotBinary is the Graphviz program used to render DOT files into images.
var DotBinary = "dot"

// RenderDOT converts the DOT file into an image of the given format ("png", "svg", ...),
// using Graphviz. It returns the path of the image, dotPath with the extension replaced.
func RenderDOT(ctx context.Context, dotPath, format string) (string, error) {
	binary, err := exec.LookPath(DotBinary)
	if err != nil {
		return "", errors.Wrapf(err, "Graphviz %q is needed to render %s images, install it or use -format=dot", DotBinary, format)
	}
	imagePath := strings.TrimSuffix(dotPath, ".dot") + "." + format
	cmd := exec.CommandContext(ctx, binary, "-T"+format, "-o", imagePath, dotPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", errors.Wrapf(err, "%s failed rendering %q: %s", DotBinary, dotPath, strings.TrimSpace(string(output)))
	}
	return imagePath, nil
}
