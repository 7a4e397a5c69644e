package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/janpfeifer/mctslog/internal/ui/cli"
)

// RenderTree draws the graph as an indented tree for the terminal, one line per vertex.
// If color is true each vertex is printed in its colormap color.
func RenderTree(g *Graph, color bool) string {
	root := &g.Vertices[0]
	t := tree.Root(treeLabel(root, color)).
		Enumerator(tree.RoundedEnumerator)
	if color {
		t = t.EnumeratorStyle(cli.DimStyle)
	}
	addChildren(g, t, root.ID, color)
	return t.String()
}

func addChildren(g *Graph, t *tree.Tree, id int, color bool) {
	for _, child := range g.Children(id) {
		if len(child.Node.ChildIDs) == 0 {
			t.Child(treeLabel(child, color))
			continue
		}
		subtree := tree.Root(treeLabel(child, color))
		addChildren(g, subtree, child.ID, color)
		t.Child(subtree)
	}
}

func treeLabel(v *Vertex, color bool) string {
	label := ShortLabel(v.Node)
	if !color {
		return label
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(v.Color.Hex())).Render(label)
}
