// Package extract collects the hyperparameters of the runs of a sweep, read from the header
// of each run file, into one structured file.
package extract

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/janpfeifer/mctslog/internal/generics"
	"github.com/janpfeifer/mctslog/internal/parameters"
	"github.com/janpfeifer/mctslog/internal/runlog"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Record is the hyperparameters of one run.
type Record struct {
	Ref             runlog.Ref
	Hyperparameters *parameters.Hyperparameters
}

// Failure of a run whose header couldn't be extracted.
type Failure struct {
	Ref runlog.Ref
	Err error
}

// Result of an extraction.
type Result struct {
	// Records of the runs extracted, in the order the runs were given.
	Records []Record

	Missing []runlog.Ref
	Failed  []Failure
}

// Hyperparameters returns the hyperparameters of all records, in order.
func (r *Result) Hyperparameters() []*parameters.Hyperparameters {
	all := make([]*parameters.Hyperparameters, 0, len(r.Records))
	for _, record := range r.Records {
		all = append(all, record.Hyperparameters)
	}
	return all
}

// Keys returns the sorted union of the hyperparameter names of all records.
// Runs of a sweep usually share the same keys, but not necessarily.
func (r *Result) Keys() []string {
	keys := generics.MakeSet[string]()
	for _, record := range r.Records {
		keys.Insert(record.Hyperparameters.Keys()...)
	}
	return slices.Collect(generics.SortedKeys(keys))
}

// Progress is notified once per run processed, e.g. a progress bar.
type Progress interface {
	Add(num int) error
}

// Extractor reads the headers of run files.
type Extractor struct {
	// Out, if not nil, receives one line per run: its hyperparameters, or why it was skipped.
	Out io.Writer

	// Strict makes a malformed header fail the whole extraction. Otherwise, it is reported and skipped.
	Strict bool

	// Progress, if not nil, is notified after each run.
	Progress Progress
}

func (e *Extractor) printf(format string, args ...any) {
	if e.Out != nil {
		_, _ = fmt.Fprintf(e.Out, format, args...)
	}
}

// Extract the hyperparameters of each run in refs. Runs that don't exist are skipped and
// listed in Result.Missing.
//
// It returns an error if ctx is cancelled, or if e.Strict and a header is malformed. The
// partial result is returned in either case.
func (e *Extractor) Extract(ctx context.Context, refs []runlog.Ref) (*Result, error) {
	result := &Result{}
	for _, ref := range refs {
		if ctx.Err() != nil {
			return result, errors.Wrapf(ctx.Err(), "interrupted before reading %q", ref.Path)
		}
		if e.Progress != nil {
			_ = e.Progress.Add(1)
		}
		h, err := ExtractRun(ref)
		if err != nil {
			if errors.Is(err, runlog.ErrFileNotFound) {
				e.printf("File not found: %s\n", ref)
				result.Missing = append(result.Missing, ref)
				continue
			}
			if e.Strict {
				return result, err
			}
			klog.Errorf("Skipping %s: %v", ref, err)
			e.printf("File skipped: %s, %v\n", ref, err)
			result.Failed = append(result.Failed, Failure{Ref: ref, Err: err})
			continue
		}
		e.printf("File: %s, Hyperparameters: %s\n", ref, h)
		result.Records = append(result.Records, Record{Ref: ref, Hyperparameters: h})
	}
	return result, nil
}

// ExtractRun reads the header of the run and parses its hyperparameters.
func ExtractRun(ref runlog.Ref) (*parameters.Hyperparameters, error) {
	header, err := runlog.ReadHeader(ref)
	if err != nil {
		return nil, err
	}
	h, err := parameters.ParseHeader(header)
	if err != nil {
		return nil, errors.WithMessagef(err, "header of %q", ref.Path)
	}
	return h, nil
}
