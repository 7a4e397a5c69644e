package runlog

import (
	"slices"
	"strconv"
	"strings"

	"github.com/janpfeifer/mctslog/internal/generics"
	"github.com/pkg/errors"
)

// Selection of snapshot indices (iteration counts) to analyze. It implements flag.Value.
type Selection []int

// DefaultSelection are the snapshots the search process is expected to have: after 25, 50, 100, 500 and 1000
// iterations.
var DefaultSelection = Selection{25, 50, 100, 500, 1000}

// ParseSelection parses a comma-separated list of positive snapshot indices.
// Repeated indices are dropped, otherwise the order given is kept.
func ParseSelection(s string) (Selection, error) {
	var selection Selection
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		index, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid snapshot index %q", part)
		}
		if index < 1 {
			return nil, errors.Errorf("invalid snapshot index %d: snapshots are numbered from 1, line 0 is the header", index)
		}
		selection = append(selection, index)
	}
	if len(selection) == 0 {
		return nil, errors.Errorf("no snapshot selected in %q", s)
	}
	return generics.Dedup(selection), nil
}

// String implements flag.Value.
func (s *Selection) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(generics.SliceMap(*s, strconv.Itoa), ",")
}

// Set implements flag.Value.
func (s *Selection) Set(value string) error {
	parsed, err := ParseSelection(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Contains returns whether index is selected.
func (s Selection) Contains(index int) bool {
	return slices.Contains(s, index)
}
