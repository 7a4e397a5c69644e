package ranking

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janpfeifer/mctslog/internal/runlog"
	"github.com/janpfeifer/mctslog/internal/searchtree"
	"github.com/janpfeifer/mctslog/internal/ui/cli"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	entries := []Entry{
		{File: "a", BestRolloutDepth: 5, BestRolloutExtractedPercentage: 0.9},
		{File: "b", BestRolloutDepth: 5, BestRolloutExtractedPercentage: 0.95},
		{File: "c", BestRolloutDepth: 3, BestRolloutExtractedPercentage: 0.99},
	}
	Rank(entries)
	assert.Equal(t, []Entry{
		{File: "b", BestRolloutDepth: 5, BestRolloutExtractedPercentage: 0.95},
		{File: "a", BestRolloutDepth: 5, BestRolloutExtractedPercentage: 0.9},
		{File: "c", BestRolloutDepth: 3, BestRolloutExtractedPercentage: 0.99},
	}, entries)

	// Full ties keep the original order.
	entries = []Entry{
		{File: "x", BestRolloutDepth: 1, BestRolloutExtractedPercentage: 0.5},
		{File: "y", BestRolloutDepth: 2, BestRolloutExtractedPercentage: 0.1},
		{File: "z", BestRolloutDepth: 1, BestRolloutExtractedPercentage: 0.5},
	}
	Rank(entries)
	assert.Equal(t, []string{"y", "x", "z"}, []string{entries[0].File, entries[1].File, entries[2].File})
}

func TestTop(t *testing.T) {
	entries := make([]Entry, 3)
	assert.Len(t, Top(entries, DefaultTop), 3)
	assert.Len(t, Top(entries, 2), 2)
	assert.Len(t, Top(entries, 0), 0)
	assert.Len(t, Top(entries, -1), 0)
	assert.Len(t, Top(nil, DefaultTop), 0)
}

func snapshotLine(depth int, percentage float64) string {
	child := &searchtree.Literal{Fields: searchtree.Fields{Volume: 1, Depth: 1, Visits: 1, BestRolloutDepth: depth}}
	return searchtree.Format(&searchtree.Literal{
		Fields: searchtree.Fields{
			Volume:                         10,
			Visits:                         3,
			BestRolloutDepth:               depth,
			BestRolloutExtractedPercentage: percentage,
		},
		Children: []*searchtree.Literal{child, child},
	})
}

func writeRun(t *testing.T, dir string, index int, header string, lines ...string) {
	t.Helper()
	contents := header + "\n" + strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, runlog.FileName(index)), []byte(contents), 0o644))
}

// countingProgress implements Progress.
type countingProgress int

func (c *countingProgress) Add(num int) error {
	*c += countingProgress(num)
	return nil
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir, 1, "c=1", snapshotLine(3, 0.5))
	writeRun(t, dir, 2, "c=2", snapshotLine(3, 0.7), snapshotLine(6, 0.1), snapshotLine(8, 0.2))
	writeRun(t, dir, 3, "c=3", snapshotLine(4, 0.1), "volume=garbage", snapshotLine(8, 0.9))
	// Run 4 is missing.

	var progress countingProgress
	selection := runlog.Selection{1, 2, 3, 25}
	buckets, report, err := Collect(context.Background(), runlog.Range(dir, 1, 4), selection, &progress)
	require.NoError(t, err)
	assert.Equal(t, countingProgress(4), progress)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 6, report.Entries)
	require.Len(t, report.Missing, 1)
	assert.Equal(t, 4, report.Missing[0].Index)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 2, report.Failed[0].Snapshot)
	assert.Equal(t, 3, report.Failed[0].Ref.Index)
	assert.True(t, errors.Is(report.Failed[0].Err, searchtree.ErrMalformedNode))

	files := func(snapshot int) (names []string) {
		for _, entry := range buckets.Get(snapshot).Entries {
			names = append(names, entry.File)
		}
		return
	}
	assert.Equal(t, []string{"3.txt", "2.txt", "1.txt"}, files(1))
	assert.Equal(t, []string{"2.txt"}, files(2))
	assert.Equal(t, []string{"3.txt", "2.txt"}, files(3))
	assert.Empty(t, files(25))
	assert.Nil(t, buckets.Get(7))
	assert.Equal(t, "c=3", buckets.Get(3).Entries[0].Header)

	// Interrupted.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	buckets, _, err = Collect(ctx, runlog.Range(dir, 1, 4), selection, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, buckets.All(), 4)
}

func TestPrinter_Plain(t *testing.T) {
	buckets := NewBuckets(runlog.Selection{25, 50})
	for ii := range 12 {
		buckets.Add(25, Entry{File: runlog.FileName(ii), Index: ii, BestRolloutDepth: ii % 3, BestRolloutExtractedPercentage: 0.5,
			Header: "c=1.5,width=" + strings.Repeat("9", ii%2+1)})
	}
	assert.False(t, buckets.Add(1000, Entry{}))
	buckets.Rank()

	var buf bytes.Buffer
	printer := &Printer{UI: cli.New(&buf, false), Top: DefaultTop, Params: []string{"width", "missing"}}
	printer.Print(buckets)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1+DefaultTop+2)
	assert.Equal(t, "Best after 25", lines[0])
	assert.Equal(t, `("2.txt", 2, 0.5) width=9 missing=-`, lines[1])
	assert.Equal(t, `("5.txt", 2, 0.5) width=99 missing=-`, lines[2])
	assert.Equal(t, "Best after 50", lines[11])
	assert.Equal(t, "(no run reached this snapshot)", lines[12])
}
