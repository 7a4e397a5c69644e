package viz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/mctslog/internal/runlog"
	"github.com/janpfeifer/mctslog/internal/searchtree"
	"github.com/janpfeifer/mctslog/internal/ui/cli"
	"github.com/janpfeifer/mctslog/internal/ui/spinning"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Format of the diagrams produced by the Visualizer.
type Format int

const (
	FormatDOT Format = iota
	FormatPNG
	FormatSVG
	FormatText
)

var formatNames = []string{"dot", "png", "svg", "text"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// ParseFormat parses one of "dot", "png", "svg" or "text".
func ParseFormat(name string) (Format, error) {
	for ii, formatName := range formatNames {
		if strings.EqualFold(name, formatName) {
			return Format(ii), nil
		}
	}
	return 0, errors.Errorf("unknown diagram format %q, valid values are %s", name, strings.Join(formatNames, ", "))
}

// Visualizer draws the selected snapshots of a run.
type Visualizer struct {
	UI     *cli.UI
	Format Format

	// OutDir is where diagram files are written. Not used by FormatText.
	OutDir string

	// Spin shows a spinner while Graphviz renders images.
	Spin bool
}

// SnapshotName returns the name of a snapshot diagram, e.g. "4_25" for snapshot 25 of "4.txt".
func SnapshotName(ref runlog.Ref, index int) string {
	return fmt.Sprintf("%s_%d", strings.TrimSuffix(ref.Name(), filepath.Ext(ref.Name())), index)
}

// VisualizeRun draws each selected snapshot of the run. Snapshots the run doesn't have are skipped.
// A malformed snapshot line is an error.
//
// It returns the paths of the files written (none for FormatText).
func (v *Visualizer) VisualizeRun(ctx context.Context, run *runlog.Run, selection runlog.Selection) ([]string, error) {
	var artifacts []string
	for _, index := range selection {
		if ctx.Err() != nil {
			return artifacts, ctx.Err()
		}
		line, found := run.Snapshot(index)
		if !found {
			klog.V(1).Infof("Run %s has no snapshot %d (%d snapshots), skipping", run.Ref, index, run.NumSnapshots())
			continue
		}
		nodes, err := searchtree.ParseLine(line)
		if err != nil {
			return artifacts, errors.WithMessagef(err, "snapshot %d of %s", index, run.Ref)
		}
		g, err := NewGraph(SnapshotName(run.Ref, index), nodes)
		if err != nil {
			return artifacts, err
		}
		klog.V(1).Infof("Snapshot %d of %s: %s nodes, volume in [%g, %g]",
			index, run.Ref, humanize.Comma(int64(len(nodes))), g.MinVolume, g.MaxVolume)
		paths, err := v.Draw(ctx, g)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, paths...)
	}
	return artifacts, nil
}

// Draw the graph in the configured format, returning the files written.
func (v *Visualizer) Draw(ctx context.Context, g *Graph) ([]string, error) {
	if v.Format == FormatText {
		v.UI.PrintTitle(g.Name)
		v.UI.Println(RenderTree(g, v.UI.Color()))
		return nil, nil
	}

	if err := os.MkdirAll(v.OutDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %q", v.OutDir)
	}
	dotPath := filepath.Join(v.OutDir, g.Name+".dot")
	f, err := os.Create(dotPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %q", dotPath)
	}
	err = WriteDOT(f, g)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errors.Wrapf(closeErr, "failed to close %q", dotPath)
	}
	if err != nil {
		return nil, err
	}
	paths := []string{dotPath}

	switch v.Format {
	case FormatDOT:
		// Done.
	case FormatPNG, FormatSVG:
		var s *spinning.Spinning
		if v.Spin {
			s = spinning.New(ctx, v.UI.Writer(), "rendering "+g.Name)
		}
		imagePath, err := RenderDOT(ctx, dotPath, v.Format.String())
		s.Done()
		if err != nil {
			return paths, err
		}
		paths = append(paths, imagePath)
	default:
		exceptions.Panicf("viz: unsupported format %s", v.Format)
	}
	return paths, nil
}
