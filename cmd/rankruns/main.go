// rankruns ranks the runs of a hyperparameter sweep.
//
// For each selected snapshot (number of iterations) it reads the root statistics of every run
// and prints the runs with the deepest best rollout, ties broken by the largest extracted
// percentage.
//
// See -help for flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/mctslog/internal/profilers"
	"github.com/janpfeifer/mctslog/internal/ranking"
	"github.com/janpfeifer/mctslog/internal/runlog"
	"github.com/janpfeifer/mctslog/internal/ui/cli"
	"github.com/janpfeifer/mctslog/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

// Flags
var (
	flagDir      = flag.String("dir", ".", "Directory with the run files, named <index>.txt.")
	flagFirst    = flag.Int("first", 1, "Index of the first run file.")
	flagLast     = flag.Int("last", 334, "Index of the last run file (inclusive).")
	flagDiscover = flag.Bool("discover", false, "Read every <index>.txt file in -dir, instead of the -first to -last range.")
	flagTop      = flag.Int("top", ranking.DefaultTop, "Number of runs listed per snapshot.")
	flagPlain    = flag.Bool("plain", false, "Print one tuple per line, even on a terminal.")
	flagParams   = flag.String("params", "", "Comma-separated list of hyperparameters, read from the runs' headers, "+
		"to list along with the ranked runs. E.g.: \"c,rollout_size\"")

	flagSnapshots = append(runlog.Selection(nil), runlog.DefaultSelection...)
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled when the program is about to exit either by
	// an interrupt (ctrl+C) or by reaching the end.
	globalCtx = context.Background()
)

func init() {
	flag.Var(&flagSnapshots, "snapshots", "Comma-separated list of snapshots (number of iterations) to rank.")
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagTop <= 0 {
		klog.Exitf("Invalid -top=%d, it must be > 0", *flagTop)
	}

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 5*time.Second)
	defer globalCancel()

	// Profilers: HTTP profiler server, CPU and heap profiles.
	must.M(profilers.Setup(globalCtx))
	defer profilers.OnQuit()

	refs := runRefs()
	progress := cli.NewProgress(len(refs), "reading runs")
	buckets, report, err := ranking.Collect(globalCtx, refs, flagSnapshots, progress)
	cli.FinishProgress(progress)
	if err != nil {
		// Interrupted: print what was collected so far.
		klog.Errorf("%v", err)
	}

	ui := cli.NewStdout()
	if *flagPlain {
		ui = cli.New(ui.Writer(), false)
	}
	printer := &ranking.Printer{UI: ui, Top: *flagTop, Params: paramKeys()}
	printer.Print(buckets)

	fmt.Printf("\n%s runs read (%s), %s entries ranked, %d missing, %d skipped.\n",
		humanize.Comma(int64(report.Files)), humanize.Bytes(uint64(report.Bytes)),
		humanize.Comma(int64(report.Entries)), len(report.Missing), len(report.Failed))
	for _, failure := range report.Failed {
		klog.V(1).Infof("Skipped %s (snapshot %d): %v", failure.Ref, failure.Snapshot, failure.Err)
	}
}

// runRefs returns the run files to read, from -discover or the -first/-last range.
func runRefs() []runlog.Ref {
	if *flagDiscover {
		refs := must.M1(runlog.Discover(*flagDir))
		klog.V(1).Infof("Discovered %d run files in %q", len(refs), *flagDir)
		return refs
	}
	if *flagFirst > *flagLast {
		klog.Exitf("Invalid range -first=%d > -last=%d", *flagFirst, *flagLast)
	}
	return runlog.Range(*flagDir, *flagFirst, *flagLast)
}

func paramKeys() []string {
	var keys []string
	for _, key := range strings.Split(*flagParams, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
