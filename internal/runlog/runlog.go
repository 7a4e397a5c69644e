// Package runlog reads the run files written by the search process: one file per
// hyperparameter set, named "<index>.txt".
//
// Line 0 of a run file is the header ("key=value,key=value,...") and line i, for i >= 1,
// is the snapshot of the search tree after i iterations.
package runlog

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrFileNotFound is returned (wrapped) when a run file doesn't exist.
var ErrFileNotFound = errors.New("run file not found")

// Ref identifies one run file.
type Ref struct {
	Index int
	Path  string
}

// FileName of the run with the given index.
func FileName(index int) string {
	return fmt.Sprintf("%d.txt", index)
}

// RefAt returns the reference to run index in dir.
func RefAt(dir string, index int) Ref {
	return Ref{Index: index, Path: filepath.Join(dir, FileName(index))}
}

// Name is the base name of the file, used to label the run.
func (r Ref) Name() string {
	return filepath.Base(r.Path)
}

func (r Ref) String() string {
	return r.Path
}

// Range returns the references of the runs first to last (inclusive) in dir, whether they exist or not.
func Range(dir string, first, last int) []Ref {
	if last < first {
		return nil
	}
	refs := make([]Ref, 0, last-first+1)
	for index := first; index <= last; index++ {
		refs = append(refs, RefAt(dir, index))
	}
	return refs
}

var reRunFileName = regexp.MustCompile(`^(\d+)\.txt$`)

// Discover lists the run files in dir, sorted by index.
func Discover(dir string) ([]Ref, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list run files in %q", dir)
	}
	var refs []Ref
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := reRunFileName.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}
		index, err := strconv.Atoi(matches[1])
		if err != nil {
			klog.Warningf("Ignoring %q: %v", entry.Name(), err)
			continue
		}
		refs = append(refs, Ref{Index: index, Path: filepath.Join(dir, entry.Name())})
	}
	slices.SortFunc(refs, func(a, b Ref) int { return a.Index - b.Index })
	return refs, nil
}

// Run is the contents of one run file.
type Run struct {
	Ref

	// Lines of the file, without the end-of-line. Lines[0] is the header.
	Lines []string

	// Size of the file in bytes.
	Size int64
}

func wrapOpenError(err error, ref Ref) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(ErrFileNotFound, "%q", ref.Path)
	}
	return errors.Wrapf(err, "failed to read run file %q", ref.Path)
}

// Load reads the whole run file.
func Load(ref Ref) (*Run, error) {
	contents, err := os.ReadFile(ref.Path)
	if err != nil {
		return nil, wrapOpenError(err, ref)
	}
	run := &Run{Ref: ref, Size: int64(len(contents))}
	run.Lines = SplitLines(string(contents))
	return run, nil
}

// SplitLines splits text into lines, dropping the end-of-lines ("\n" or "\r\n").
// A final end-of-line doesn't start a new line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for ii, line := range lines {
		lines[ii] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Header returns the header line, or "" if the file is empty.
func (r *Run) Header() string {
	if len(r.Lines) == 0 {
		return ""
	}
	return r.Lines[0]
}

// NumSnapshots returns the number of snapshot lines (all lines but the header).
func (r *Run) NumSnapshots() int {
	return max(len(r.Lines)-1, 0)
}

// Snapshot returns the snapshot line after the given number of iterations, that is, line index
// of the file. It returns false if the run doesn't have that line.
func (r *Run) Snapshot(index int) (line string, found bool) {
	if index < 1 || index >= len(r.Lines) {
		return "", false
	}
	return r.Lines[index], true
}

// ReadHeader reads only the header (first line) of a run file.
// Snapshot lines can be very long, so it doesn't read past the first end-of-line.
func ReadHeader(ref Ref) (string, error) {
	f, err := os.Open(ref.Path)
	if err != nil {
		return "", wrapOpenError(err, ref)
	}
	defer func() { _ = f.Close() }()
	header, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrapf(err, "failed to read header of %q", ref.Path)
	}
	return strings.TrimRight(header, "\r\n"), nil
}
