// Package spinning provides a friendly spinning symbol to use while the program waits on
// something slow, like an external renderer, and the handling of interrupts (Ctrl+C).
package spinning

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"k8s.io/klog/v2"
)

// Spinning displays a spinning symbol until Done is called.
type Spinning struct {
	wg     sync.WaitGroup
	cancel func()
}

var (
	ThemeAscii = []rune("|/-\\")

	// Theme defaults to ThemeAscii, but it can be set to anything else.
	Theme = ThemeAscii

	// Period between updates of the symbol.
	Period = 250 * time.Millisecond
)

// SafeInterrupt will capture SigInt (Ctrl+C) and SigTerm and call the provided onInterrupt.
// If the program haven't exited after gracePeriod, it will call Reset to reset the terminal
// and exit.
func SafeInterrupt(onInterrupt func(), gracePeriod time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		fmt.Println()
		klog.Errorf("Got interrupted (signal %q), shutting down... (%s)", s, gracePeriod)
		if onInterrupt != nil {
			go onInterrupt()
		}

		// Wait for gracePeriod before exiting.
		time.Sleep(gracePeriod)
		Reset()
		klog.Fatalf("Graceful shutting down %s period expired, exiting.", gracePeriod)
	}()
}

// Reset terminal: make cursor visible, restore default terminal colors.
func Reset() {
	fmt.Print("\033[?25h\033[39;49;0m\n") // Restore cursor and colors.
}

// New starts a spinning display, written to w after the label, that runs on a separate goroutine.
// It stops when Spinning.Done is called or ctx is cancelled, and erases itself.
func New(ctx context.Context, w io.Writer, label string) *Spinning {
	s := &Spinning{}
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(Period)
		defer ticker.Stop()
		// Hide the cursor while spinning.
		_, _ = fmt.Fprint(w, "\033[?25l")
		defer func() { _, _ = fmt.Fprint(w, "\033[?25h") }()

		for idx := 0; ; idx = (idx + 1) % len(Theme) {
			_, _ = fmt.Fprintf(w, "\r%s %c\033[0K", label, Theme[idx])
			select {
			case <-ctx.Done():
				_, _ = fmt.Fprint(w, "\r\033[0K")
				return
			case <-ticker.C:
				// continue
			}
		}
	}()
	return s
}

// Done stops the spinning display and waits for it to be erased. It is a no-op on a nil Spinning.
func (s *Spinning) Done() {
	if s == nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}
