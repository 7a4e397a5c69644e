// Package profilers sets up profiling for the analysis tools, to investigate sweeps with many
// or very large run files.
//
// If linked, it will install the profiler flags.
package profilers

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagProfiler   = flag.Int("prof", -1, "If set, serves the HTTP profiler at the given port and keeps the program alive at the end.")
	flagCPUProfile = flag.String("cpu_profile", "", "Write CPU profile to `file`.")
	flagMemProfile = flag.String("mem_profile", "", "Write heap profile to `file` at the end of the program.")
	profilerAddr   string

	// globalCtx is set on the call to Setup.
	globalCtx = context.Background()
)

// Setup starts the HTTP (flag -prof) and CPU profilers (flag -cpu_profile), if they were configured.
// You should follow with a deferred call to OnQuit.
func Setup(ctx context.Context) error {
	globalCtx = ctx
	if *flagProfiler >= 0 {
		setupHTTPProfiler()
	}
	if *flagCPUProfile != "" {
		return startCPUProfile(*flagCPUProfile)
	}
	return nil
}

// OnQuit should be called before the exit of the main() function, typically this is set up as a deferred call
// just after Setup.
func OnQuit() {
	if *flagCPUProfile != "" {
		pprof.StopCPUProfile()
	}
	if *flagMemProfile != "" {
		if err := writeHeapProfile(*flagMemProfile); err != nil {
			klog.Errorf("Heap profile: %+v", err)
		}
	}
	if *flagProfiler >= 0 {
		httpProfilerOnQuit()
	}
}

func startCPUProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create CPU profile %q", path)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "could not start CPU profile %q", path)
	}
	return nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create heap profile %q", path)
	}
	runtime.GC() // Up-to-date statistics.
	err = pprof.WriteHeapProfile(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return errors.Wrapf(err, "could not write heap profile %q", path)
}

func setupHTTPProfiler() {
	profilerAddr = fmt.Sprintf("localhost:%d", *flagProfiler)
	fmt.Printf("Starting profiler on %s/debug/pprof\n", profilerAddr)
	fmt.Printf("- You can access it with: $ go tool pprof %s/debug/pprof/heap\n", profilerAddr)
	fmt.Printf("- Program will be kept alive on end, you will have to interrupt it (Ctrl+C) to exit\n")
	go func() {
		klog.Fatal(http.ListenAndServe(profilerAddr, nil))
	}()
}

// httpProfilerOnQuit keeps the program alive, with the profiler serving, until interrupted.
func httpProfilerOnQuit() {
	if globalCtx.Err() != nil {
		// Already interrupted.
		return
	}
	fmt.Printf("- Program finished: kept alive with profiler opened at %s/debug/pprof\n", profilerAddr)
	fmt.Printf("- Interrupt (Ctrl+C) to exit\n")
	<-globalCtx.Done()
	fmt.Printf("... exiting ...\n")
}
