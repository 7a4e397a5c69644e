// Package ranking compares the runs of a hyperparameter sweep: for every selected snapshot
// (a "bucket") it collects the root statistics of each run and ranks the runs by the quality
// of their best rollout.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/janpfeifer/mctslog/internal/runlog"
	"github.com/janpfeifer/mctslog/internal/searchtree"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultTop is the number of entries printed per bucket.
const DefaultTop = 10

// Entry holds the root statistics of one run at one snapshot.
type Entry struct {
	File  string
	Index int

	BestRolloutDepth               int
	BestRolloutExtractedPercentage float64

	// Header of the run, used to print its hyperparameters.
	Header string
}

// String prints the entry as a tuple, e.g. ("4.txt", 12, 0.93).
func (e Entry) String() string {
	return fmt.Sprintf("(%q, %d, %g)", e.File, e.BestRolloutDepth, e.BestRolloutExtractedPercentage)
}

// Compare returns a negative number if a ranks better than b, positive if b ranks better, and 0 on ties:
// deeper best rollout first, and for the same depth, larger extracted percentage first.
func Compare(a, b Entry) int {
	if c := cmp.Compare(b.BestRolloutDepth, a.BestRolloutDepth); c != 0 {
		return c
	}
	return cmp.Compare(b.BestRolloutExtractedPercentage, a.BestRolloutExtractedPercentage)
}

// Rank sorts the entries in place, best first. Ties keep their relative order.
func Rank(entries []Entry) {
	slices.SortStableFunc(entries, Compare)
}

// Top returns the first n entries, or all of them if there are fewer than n.
func Top(entries []Entry, n int) []Entry {
	return entries[:min(max(n, 0), len(entries))]
}

// Bucket holds the entries of all runs for one snapshot.
type Bucket struct {
	Snapshot int
	Entries  []Entry
}

// Title of the bucket when printed.
func (b *Bucket) Title() string {
	return fmt.Sprintf("Best after %d", b.Snapshot)
}

// Buckets holds one Bucket per selected snapshot, in the order of the selection.
type Buckets struct {
	buckets    []*Bucket
	bySnapshot map[int]*Bucket
}

// NewBuckets creates empty buckets for the selection.
func NewBuckets(selection runlog.Selection) *Buckets {
	b := &Buckets{bySnapshot: make(map[int]*Bucket, len(selection))}
	for _, snapshot := range selection {
		if _, found := b.bySnapshot[snapshot]; found {
			continue
		}
		bucket := &Bucket{Snapshot: snapshot}
		b.buckets = append(b.buckets, bucket)
		b.bySnapshot[snapshot] = bucket
	}
	return b
}

// Add entry to the bucket of the snapshot. It returns false if the snapshot is not selected.
func (b *Buckets) Add(snapshot int, entry Entry) bool {
	bucket, found := b.bySnapshot[snapshot]
	if !found {
		return false
	}
	bucket.Entries = append(bucket.Entries, entry)
	return true
}

// Get returns the bucket of the snapshot, or nil if it is not selected.
func (b *Buckets) Get(snapshot int) *Bucket {
	return b.bySnapshot[snapshot]
}

// All returns the buckets in the order of the selection.
func (b *Buckets) All() []*Bucket {
	return b.buckets
}

// Rank every bucket.
func (b *Buckets) Rank() {
	for _, bucket := range b.buckets {
		Rank(bucket.Entries)
	}
}

// Failure of one snapshot line, or of a whole run if Snapshot is 0, skipped from the ranking.
type Failure struct {
	Ref      runlog.Ref
	Snapshot int
	Err      error
}

// Report of a collection: what was read and what was skipped.
type Report struct {
	Files   int   // Files read.
	Bytes   int64 // Total size of files read.
	Entries int   // Entries added to buckets.
	Missing []runlog.Ref
	Failed  []Failure
}

// Progress is notified once per run processed, e.g. a progress bar.
type Progress interface {
	Add(num int) error
}

// EntryFromLine extracts the root statistics of a snapshot line. The children are not parsed.
func EntryFromLine(ref runlog.Ref, header, line string) (Entry, error) {
	fields, _, err := searchtree.ParseFields(line)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		File:                           ref.Name(),
		Index:                          ref.Index,
		BestRolloutDepth:               fields.BestRolloutDepth,
		BestRolloutExtractedPercentage: fields.BestRolloutExtractedPercentage,
		Header:                         header,
	}, nil
}

// Collect reads the runs and adds the entries of their selected snapshots to the buckets, then ranks them.
//
// Missing files, unreadable files and malformed lines are skipped and listed in the report.
// If ctx is cancelled, it stops and returns the buckets collected so far along with the context error.
// progress may be nil.
func Collect(ctx context.Context, refs []runlog.Ref, selection runlog.Selection, progress Progress) (*Buckets, *Report, error) {
	buckets := NewBuckets(selection)
	report := &Report{}
	defer buckets.Rank()
	for _, ref := range refs {
		if ctx.Err() != nil {
			return buckets, report, errors.Wrapf(ctx.Err(), "interrupted before reading %q", ref.Path)
		}
		if progress != nil {
			_ = progress.Add(1)
		}
		run, err := runlog.Load(ref)
		if err != nil {
			if errors.Is(err, runlog.ErrFileNotFound) {
				klog.V(2).Infof("Skipping missing run %s", ref)
				report.Missing = append(report.Missing, ref)
				continue
			}
			klog.Errorf("Skipping run %s: %v", ref, err)
			report.Failed = append(report.Failed, Failure{Ref: ref, Err: err})
			continue
		}
		report.Files++
		report.Bytes += run.Size
		klog.V(1).Infof("Run %s: %d snapshots", ref, run.NumSnapshots())
		for _, snapshot := range selection {
			line, found := run.Snapshot(snapshot)
			if !found {
				continue
			}
			entry, err := EntryFromLine(ref, run.Header(), line)
			if err != nil {
				klog.Warningf("Skipping snapshot %d of %s: %v", snapshot, ref, err)
				report.Failed = append(report.Failed, Failure{Ref: ref, Snapshot: snapshot, Err: err})
				continue
			}
			if buckets.Add(snapshot, entry) {
				report.Entries++
			}
		}
	}
	return buckets, report, nil
}
