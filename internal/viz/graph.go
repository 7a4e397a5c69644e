// Package viz draws the search tree of a snapshot: a node-link diagram where every node is
// labeled with its statistics and colored by its volume.
package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/janpfeifer/mctslog/internal/searchtree"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Vertex is one node of the diagram.
type Vertex struct {
	ID     int
	Label  string
	Volume float64
	Color  colorful.Color
	Node   *searchtree.Node
}

// Edge links a parent to a child vertex, by id.
type Edge struct {
	From, To int
}

// Graph is the node-link diagram of one snapshot.
type Graph struct {
	Name     string
	Vertices []Vertex
	Edges    []Edge

	MinVolume, MaxVolume float64

	byID map[int]int // Vertex id to index in Vertices.
}

// Label returns the multi-line label of a node: its statistics, id and rotation.
func Label(n *searchtree.Node) string {
	rotation := make([]string, len(n.Rotation))
	for ii, r := range n.Rotation {
		rotation[ii] = strconv.FormatFloat(r, 'g', -1, 64)
	}
	return fmt.Sprintf("volume=%g\nvisits=%d\neval=%g\nrolloutDepth=%d\nrollout%%=%g\nid=%d\nrotation=(%s)",
		n.Volume, n.Visits, n.Eval, n.BestRolloutDepth, n.BestRolloutExtractedPercentage, n.ID,
		strings.Join(rotation, ", "))
}

// ShortLabel returns a one-line label of a node.
func ShortLabel(n *searchtree.Node) string {
	return fmt.Sprintf("#%d volume=%g visits=%d eval=%.4g rollout=%d/%g",
		n.ID, n.Volume, n.Visits, n.Eval, n.BestRolloutDepth, n.BestRolloutExtractedPercentage)
}

// NewGraph builds the diagram of the parsed nodes of one line. nodes must be non-empty and every
// parent id must refer to a node in the list.
//
// Colors follow the Cool colormap, with volumes normalized to the range found in nodes.
func NewGraph(name string, nodes []searchtree.Node) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, errors.Errorf("graph %q has no nodes", name)
	}
	g := &Graph{
		Name:      name,
		Vertices:  make([]Vertex, 0, len(nodes)),
		MinVolume: nodes[0].Volume,
		MaxVolume: nodes[0].Volume,
		byID:      make(map[int]int, len(nodes)),
	}
	for ii := range nodes {
		node := &nodes[ii]
		if _, found := g.byID[node.ID]; found {
			return nil, errors.Errorf("graph %q: duplicate node id %d", name, node.ID)
		}
		g.byID[node.ID] = ii
		g.MinVolume = min(g.MinVolume, node.Volume)
		g.MaxVolume = max(g.MaxVolume, node.Volume)
		g.Vertices = append(g.Vertices, Vertex{ID: node.ID, Label: Label(node), Volume: node.Volume, Node: node})
	}
	for ii := range nodes {
		node := &nodes[ii]
		if node.IsRoot() {
			continue
		}
		if _, found := g.byID[node.ParentID]; !found {
			return nil, errors.Errorf("graph %q: node %d has unknown parent %d", name, node.ID, node.ParentID)
		}
		g.Edges = append(g.Edges, Edge{From: node.ParentID, To: node.ID})
	}
	for ii := range g.Vertices {
		g.Vertices[ii].Color = Cool(Normalize(g.Vertices[ii].Volume, g.MinVolume, g.MaxVolume))
	}
	return g, nil
}

// Vertex returns the vertex with the given id, or nil.
func (g *Graph) Vertex(id int) *Vertex {
	idx, found := g.byID[id]
	if !found {
		return nil
	}
	return &g.Vertices[idx]
}

// Children returns the vertices of the children of id, in order.
func (g *Graph) Children(id int) []*Vertex {
	v := g.Vertex(id)
	if v == nil {
		return nil
	}
	children := make([]*Vertex, 0, len(v.Node.ChildIDs))
	for _, childID := range v.Node.ChildIDs {
		if child := g.Vertex(childID); child != nil {
			children = append(children, child)
		}
	}
	return children
}
