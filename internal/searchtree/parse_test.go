package searchtree

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lit creates a literal with the given volume and depth and some arbitrary other fields.
func lit(volume float64, depth int, children ...*Literal) *Literal {
	return &Literal{
		Fields: Fields{
			Volume:                         volume,
			Rotation:                       [3]float64{0, 90, -45.5},
			Depth:                          depth,
			Visits:                         10 - depth,
			Eval:                           0.25 * float64(depth),
			BestRolloutDepth:               depth + 3,
			BestRolloutExtractedPercentage: 0.5,
		},
		Children: children,
	}
}

// sampleTree has 8 nodes, with ids in pre-order:
//
//	1 ─┬─ 2 ─┬─ 3
//	   │     └─ 4
//	   ├─ 5
//	   └─ 6 ─── 7 ─── 8
func sampleTree() *Literal {
	return lit(100, 0,
		lit(50, 1, lit(20, 2), lit(10, 2)),
		lit(30, 1),
		lit(20, 1, lit(5, 2, lit(1e-7, 3))))
}

func TestParseLine_Leaf(t *testing.T) {
	line := "volume=10,rotation=(0,90,0),depth=0,visits=5,eval=0.5,bestRolloutDepth=3,bestRolloutExtractedPercentage=0.75,children=[]"
	nodes, err := ParseLine(line)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	root := nodes[0]
	assert.Equal(t, 1, root.ID)
	assert.True(t, root.IsRoot())
	assert.Empty(t, root.ChildIDs)
	assert.Equal(t, 10.0, root.Volume)
	assert.Equal(t, [3]float64{0, 90, 0}, root.Rotation)
	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, 5, root.Visits)
	assert.Equal(t, 0.5, root.Eval)
	assert.Equal(t, 3, root.BestRolloutDepth)
	assert.Equal(t, 0.75, root.BestRolloutExtractedPercentage)
}

func TestParseLine_SampleTree(t *testing.T) {
	// Lines read from files come with their end-of-line.
	nodes, err := ParseLine(Format(sampleTree()) + "\r\n")
	require.NoError(t, err)
	require.Len(t, nodes, 8)

	var ids, parents, depths []int
	for _, node := range nodes {
		ids = append(ids, node.ID)
		parents = append(parents, node.ParentID)
		depths = append(depths, node.Depth)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, ids)
	assert.Equal(t, []int{NoParent, 1, 2, 2, 1, 1, 6, 7}, parents)
	assert.Equal(t, []int{0, 1, 2, 2, 1, 1, 2, 3}, depths)
	assert.Equal(t, []int{2, 5, 6}, nodes[0].ChildIDs)
	assert.Equal(t, []int{3, 4}, nodes[1].ChildIDs)
	assert.Equal(t, []int{8}, nodes[6].ChildIDs)
	assert.Empty(t, nodes[7].ChildIDs)
	assert.Equal(t, 1e-7, nodes[7].Volume)
}

func TestSplitChildren(t *testing.T) {
	a := Format(lit(1, 1))
	b := Format(lit(2, 1, lit(3, 2), lit(4, 2, lit(5, 3))))
	c := Format(lit(6, 1, lit(7, 2)))

	children, err := SplitChildren(a + "," + b + "," + c + ",")
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c}, children)

	// Missing trailing comma on the last child.
	children, err = SplitChildren(a + "," + b)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, children)

	// Empty children list.
	children, err = SplitChildren("")
	require.NoError(t, err)
	assert.Empty(t, children)

	// Unbalanced brackets.
	_, err = SplitChildren(a + "],")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedNode))
	_, err = SplitChildren(strings.TrimSuffix(b, "]") + ",")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedNode))
}

func TestParse_EmptyChildren(t *testing.T) {
	var ids IDCounter
	nodes, err := Parse(Format(lit(3, 0)), NoParent, &ids, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Nil(t, nodes[0].ChildIDs)
	assert.Equal(t, 1, ids.Issued())

	// A blank literal yields no node and uses no id.
	nodes, err = Parse("  ", 1, &ids, nodes)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Equal(t, 1, ids.Issued())
}

func TestParse_SharedCounter(t *testing.T) {
	// Parsing two subtrees with the same counter keeps ids unique.
	var ids IDCounter
	nodes, err := Parse(Format(lit(1, 0, lit(2, 1))), NoParent, &ids, nil)
	require.NoError(t, err)
	nodes, err = Parse(Format(lit(3, 0, lit(4, 1))), NoParent, &ids, nodes)
	require.NoError(t, err)
	require.Len(t, nodes, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, []int{nodes[0].ID, nodes[1].ID, nodes[2].ID, nodes[3].ID})
	assert.Equal(t, 3, nodes[3].ParentID)
}

func TestParseLine_Errors(t *testing.T) {
	_, err := ParseLine("   \n")
	assert.True(t, errors.Is(err, ErrEmptyLine))

	_, err = ParseLine("volume=abc,rotation=(0,0,0),depth=0,visits=1,eval=0,bestRolloutDepth=0,bestRolloutExtractedPercentage=0,children=[]")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedNode))

	// Non-integer depth.
	_, err = ParseLine("volume=1,rotation=(0,0,0),depth=2.5,visits=1,eval=0,bestRolloutDepth=0,bestRolloutExtractedPercentage=0,children=[]")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedNode))
	assert.Contains(t, err.Error(), "depth=2.5")

	// Integral values rendered as floats are fine.
	nodes, err := ParseLine("volume=1,rotation=(0,0,0),depth=2.0,visits=1,eval=-1.5,bestRolloutDepth=4,bestRolloutExtractedPercentage=99.5,children=[]")
	require.NoError(t, err)
	assert.Equal(t, 2, nodes[0].Depth)
	assert.Equal(t, -1.5, nodes[0].Eval)

	// A single bad node deep in the tree invalidates the whole line.
	good := Format(lit(1, 0, lit(2, 1, lit(3, 2))))
	bad := strings.Replace(good, "volume=3,", "volume=x3,", 1)
	require.NotEqual(t, good, bad)
	nodes, err = ParseLine(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedNode))
	assert.Nil(t, nodes)
}

// randomTree generates a random literal of the given maximum depth.
func randomTree(rng *rand.Rand, depth, maxDepth int) *Literal {
	l := lit(rng.Float64()*100, depth)
	l.Rotation = [3]float64{float64(rng.IntN(4) * 90), float64(rng.IntN(4) * 90), float64(rng.IntN(4) * 90)}
	l.Eval = rng.NormFloat64()
	l.BestRolloutExtractedPercentage = rng.Float64()
	if depth < maxDepth {
		numChildren := rng.IntN(4)
		for range numChildren {
			l.Children = append(l.Children, randomTree(rng, depth+1, maxDepth))
		}
	}
	return l
}

// preOrder lists the literals of the tree in pre-order, along with the pre-order index
// of their parents (-1 for the root).
func preOrder(l *Literal, parentIdx int, literals []*Literal, parents []int) ([]*Literal, []int) {
	myIdx := len(literals)
	literals = append(literals, l)
	parents = append(parents, parentIdx)
	for _, child := range l.Children {
		literals, parents = preOrder(child, myIdx, literals, parents)
	}
	return literals, parents
}

func TestParseLine_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for range 50 {
		tree := randomTree(rng, 0, 5)
		nodes, err := ParseLine(Format(tree))
		require.NoError(t, err)
		require.Len(t, nodes, tree.Size())

		literals, parents := preOrder(tree, -1, nil, nil)
		idToIdx := make(map[int]int, len(nodes))
		for idx, node := range nodes {
			_, duplicate := idToIdx[node.ID]
			require.False(t, duplicate, "duplicate id %d", node.ID)
			idToIdx[node.ID] = idx
		}
		for idx, node := range nodes {
			assert.Equal(t, literals[idx].Fields, node.Fields)
			if idx == 0 {
				assert.True(t, node.IsRoot())
				continue
			}
			parentIdx, found := idToIdx[node.ParentID]
			require.True(t, found, "parent %d of node %d not in the output", node.ParentID, node.ID)
			assert.Equal(t, parents[idx], parentIdx)
			assert.Len(t, node.ChildIDs, len(literals[idx].Children))
		}
	}
}
