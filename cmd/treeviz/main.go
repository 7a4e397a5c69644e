// treeviz draws the search trees of selected snapshots of one run file.
//
// Each snapshot line is parsed into its nodes, and drawn as a node-link diagram where nodes
// are labeled with their statistics and colored by volume (cyan for the smallest, magenta for
// the largest). Diagrams are written as Graphviz DOT files, optionally rendered to PNG or SVG
// (requires Graphviz's "dot"), or printed as a tree in the terminal.
//
// See -help for flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/mctslog/internal/runlog"
	"github.com/janpfeifer/mctslog/internal/ui/cli"
	"github.com/janpfeifer/mctslog/internal/ui/spinning"
	"github.com/janpfeifer/mctslog/internal/viz"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

// Flags
var (
	flagDir    = flag.String("dir", ".", "Directory with the run files, named <index>.txt.")
	flagRun    = flag.Int("run", 4, "Index of the run file to draw, e.g. 4 for \"4.txt\".")
	flagFormat = flag.String("format", "dot", "Output format: \"dot\", \"png\", \"svg\" (both need Graphviz) or \"text\".")
	flagOutDir = flag.String("out_dir", "diagrams", "Directory where to write the diagrams. Not used with -format=text.")

	flagSnapshots = append(runlog.Selection(nil), runlog.DefaultSelection...)
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled when the program is about to exit either by
	// an interrupt (ctrl+C) or by reaching the end.
	globalCtx = context.Background()
)

func init() {
	flag.Var(&flagSnapshots, "snapshots", "Comma-separated list of snapshots (number of iterations) to draw.")
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	format, err := viz.ParseFormat(*flagFormat)
	if err != nil {
		klog.Exitf("Invalid -format: %v", err)
	}

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 5*time.Second)
	defer globalCancel()

	// The visualizer targets one specific run: a missing file or a malformed line is fatal.
	ui := cli.NewStdout()
	run := must.M1(runlog.Load(runlog.RefAt(*flagDir, *flagRun)))
	ui.PrintTitle(run.Ref.Name())
	ui.PrintCentered(fmt.Sprintf("%s\n%d snapshots, %s", run.Header(), run.NumSnapshots(), humanize.Bytes(uint64(run.Size))))

	v := &viz.Visualizer{
		UI:     ui,
		Format: format,
		OutDir: *flagOutDir,
		Spin:   ui.Color(),
	}
	artifacts := must.M1(v.VisualizeRun(globalCtx, run, flagSnapshots))
	for _, path := range artifacts {
		fmt.Printf("- %s\n", path)
	}
	if len(artifacts) == 0 && format != viz.FormatText {
		klog.Warningf("None of the snapshots %s is in %s", flagSnapshots.String(), run.Ref)
	}
}
