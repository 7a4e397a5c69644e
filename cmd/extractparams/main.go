// extractparams collects the hyperparameters of the runs of a sweep into one file.
//
// The first line of each run file holds its hyperparameters, e.g. "c=1.4,rollout_size=25".
// They are written, in run order, as a JSON array of objects (or YAML, if -output ends in
// ".yaml" or ".yml"), to be loaded by analysis notebooks.
//
// See -help for flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/mctslog/internal/extract"
	"github.com/janpfeifer/mctslog/internal/profilers"
	"github.com/janpfeifer/mctslog/internal/runlog"
	"github.com/janpfeifer/mctslog/internal/ui/cli"
	"github.com/janpfeifer/mctslog/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

// Flags
var (
	flagDir      = flag.String("dir", ".", "Directory with the run files, named <index>.txt.")
	flagFirst    = flag.Int("first", 0, "Index of the first run file.")
	flagLast     = flag.Int("last", 65, "Index of the last run file (inclusive).")
	flagDiscover = flag.Bool("discover", false, "Read every <index>.txt file in -dir, instead of the -first to -last range.")
	flagOutput   = flag.String("output", extract.DefaultOutput, "File where to write the hyperparameters. "+
		"It is written as YAML if it ends in \".yaml\" or \".yml\", JSON otherwise. A previous file is kept with a \"~\" suffix.")
	flagStrict = flag.Bool("strict", false, "Abort on the first run with a malformed header, instead of skipping it.")
	flagQuiet  = flag.Bool("quiet", false, "Don't print the hyperparameters of each run, show a progress bar instead.")
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled when the program is about to exit either by
	// an interrupt (ctrl+C) or by reaching the end.
	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 5*time.Second)
	defer globalCancel()

	// Profilers: HTTP profiler server, CPU and heap profiles.
	must.M(profilers.Setup(globalCtx))
	defer profilers.OnQuit()

	refs := runRefs()
	extractor := &extract.Extractor{Strict: *flagStrict}
	var progress cli.Progress
	if *flagQuiet {
		progress = cli.NewProgress(len(refs), "reading headers")
		extractor.Progress = progress
	} else {
		extractor.Out = os.Stdout
	}
	result, err := extractor.Extract(globalCtx, refs)
	cli.FinishProgress(progress)
	must.M(err)

	all := result.Hyperparameters()
	must.M(extract.Write(*flagOutput, all))
	fmt.Printf("Hyperparameters of %s runs written to %q (%s missing, %d skipped)\n",
		humanize.Comma(int64(len(all))), *flagOutput, humanize.Comma(int64(len(result.Missing))), len(result.Failed))
	if keys := result.Keys(); len(keys) > 0 {
		fmt.Printf("Hyperparameters: %s\n", strings.Join(keys, ", "))
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
