package searchtree

import (
	"strconv"
	"strings"
)

// Literal is a node with its children nested, the shape the search process serializes.
// Format writes it in the snapshot grammar.
type Literal struct {
	Fields
	Children []*Literal
}

// Format the literal, and recursively its children, in the snapshot line grammar.
func Format(l *Literal) string {
	var sb strings.Builder
	writeLiteral(&sb, l)
	return sb.String()
}

func (l *Literal) String() string {
	return Format(l)
}

// Size returns the number of nodes in the literal's subtree, including itself.
func (l *Literal) Size() int {
	size := 1
	for _, child := range l.Children {
		size += child.Size()
	}
	return size
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeLiteral(sb *strings.Builder, l *Literal) {
	sb.WriteString("volume=")
	sb.WriteString(formatFloat(l.Volume))
	sb.WriteString(",rotation=(")
	for ii, r := range l.Rotation {
		if ii > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(formatFloat(r))
	}
	sb.WriteString("),depth=")
	sb.WriteString(strconv.Itoa(l.Depth))
	sb.WriteString(",visits=")
	sb.WriteString(strconv.Itoa(l.Visits))
	sb.WriteString(",eval=")
	sb.WriteString(formatFloat(l.Eval))
	sb.WriteString(",bestRolloutDepth=")
	sb.WriteString(strconv.Itoa(l.BestRolloutDepth))
	sb.WriteString(",bestRolloutExtractedPercentage=")
	sb.WriteString(formatFloat(l.BestRolloutExtractedPercentage))
	sb.WriteString(",children=[")
	for _, child := range l.Children {
		writeLiteral(sb, child)
		sb.WriteByte(',')
	}
	sb.WriteByte(']')
}
