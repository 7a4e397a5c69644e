package searchtree

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedNode is returned (wrapped with the offending literal) when a node literal
	// doesn't follow the grammar.
	ErrMalformedNode = errors.New("malformed node literal")

	// ErrEmptyLine is returned by ParseLine for a blank snapshot line.
	ErrEmptyLine = errors.New("empty snapshot line")
)

const numberPattern = `([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)`

var reNode = regexp.MustCompile(`(?s)^` +
	`volume=` + numberPattern +
	`,rotation=\(` + numberPattern + `,` + numberPattern + `,` + numberPattern + `\)` +
	`,depth=` + numberPattern +
	`,visits=` + numberPattern +
	`,eval=` + numberPattern +
	`,bestRolloutDepth=` + numberPattern +
	`,bestRolloutExtractedPercentage=` + numberPattern +
	`,children=\[(.*)\]$`)

// maxQuotedLen limits how much of an offending literal is included in error messages.
const maxQuotedLen = 120

func quoteLiteral(literal string) string {
	if len(literal) > maxQuotedLen {
		return strconv.Quote(literal[:maxQuotedLen]) + "..."
	}
	return strconv.Quote(literal)
}

func malformed(literal, format string, args ...any) error {
	return errors.Wrapf(ErrMalformedNode, "%s in %s", fmt.Sprintf(format, args...), quoteLiteral(literal))
}

// ParseFields matches one node literal against the fixed-field pattern, and returns its scalar
// fields and the raw (unparsed) contents of its children list.
//
// It doesn't recurse into the children, so it is what one wants when only the root's own
// fields of a snapshot line are needed.
func ParseFields(literal string) (fields Fields, rawChildren string, err error) {
	literal = strings.TrimSpace(literal)
	matches := reNode.FindStringSubmatch(literal)
	if matches == nil {
		err = malformed(literal, "fields don't match the node pattern")
		return
	}
	floats := make([]float64, 9)
	for ii := range floats {
		floats[ii], err = strconv.ParseFloat(matches[ii+1], 64)
		if err != nil {
			err = malformed(literal, "invalid number %q", matches[ii+1])
			return
		}
	}
	fields.Volume = floats[0]
	copy(fields.Rotation[:], floats[1:4])
	fields.Eval = floats[6]
	fields.BestRolloutExtractedPercentage = floats[8]
	for _, intField := range []struct {
		name  string
		value float64
		to    *int
	}{
		{"depth", floats[4], &fields.Depth},
		{"visits", floats[5], &fields.Visits},
		{"bestRolloutDepth", floats[7], &fields.BestRolloutDepth},
	} {
		if intField.value != math.Trunc(intField.value) || math.Abs(intField.value) > math.MaxInt32 {
			err = malformed(literal, "%s=%g is not an integer", intField.name, intField.value)
			return
		}
		*intField.to = int(intField.value)
	}
	if fields.Volume < 0 {
		err = malformed(literal, "negative volume %g", fields.Volume)
		return
	}
	if fields.Depth < 0 || fields.Visits < 0 {
		err = malformed(literal, "negative depth (%d) or visits (%d)", fields.Depth, fields.Visits)
		return
	}
	rawChildren = matches[10]
	return
}

// SplitChildren splits the raw contents of a children list into the literals of each child.
//
// It tracks the bracket depth: a comma separates two siblings only if it follows a "]" and
// no bracket remains open. Commas inside rotation tuples or inside the children's own
// children lists are kept. A final child missing its trailing comma is also returned.
func SplitChildren(rawChildren string) ([]string, error) {
	var (
		children []string
		depth    int
		start    int
		prev     byte
	)
	for ii := 0; ii < len(rawChildren); ii++ {
		c := rawChildren[ii]
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, malformed(rawChildren, "unbalanced \"]\" at position %d", ii)
			}
		case ',':
			if prev == ']' && depth == 0 {
				children = append(children, rawChildren[start:ii])
				start = ii + 1
			}
		}
		prev = c
	}
	if depth != 0 {
		return nil, malformed(rawChildren, "%d unclosed \"[\"", depth)
	}
	if rest := rawChildren[start:]; strings.TrimSpace(rest) != "" {
		children = append(children, rest)
	}
	return children, nil
}

// Parse the node literal and, recursively, its children, appending the records to nodes
// in pre-order. The returned slice must be used in place of nodes.
//
// The node gets its id from ids, and parentID as its parent. A blank literal yields no node.
// Any malformed literal in the subtree fails the whole parse.
func Parse(literal string, parentID int, ids *IDCounter, nodes []Node) ([]Node, error) {
	if strings.TrimSpace(literal) == "" {
		return nodes, nil
	}
	fields, rawChildren, err := ParseFields(literal)
	if err != nil {
		return nil, err
	}
	children, err := SplitChildren(rawChildren)
	if err != nil {
		return nil, err
	}

	nodeIdx := len(nodes)
	id := ids.Next()
	nodes = append(nodes, Node{ID: id, ParentID: parentID, Fields: fields})
	if len(children) > 0 {
		nodes[nodeIdx].ChildIDs = make([]int, 0, len(children))
	}
	for _, child := range children {
		childIdx := len(nodes)
		nodes, err = Parse(child, id, ids, nodes)
		if err != nil {
			return nil, err
		}
		if len(nodes) > childIdx {
			nodes[nodeIdx].ChildIDs = append(nodes[nodeIdx].ChildIDs, nodes[childIdx].ID)
		}
	}
	return nodes, nil
}

// ParseLine parses one snapshot line into its flat list of nodes, in pre-order, with the
// root first. Ids start at 1 for every line.
func ParseLine(line string) ([]Node, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyLine
	}
	var ids IDCounter
	return Parse(line, NoParent, &ids, nil)
}
