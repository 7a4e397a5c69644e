package cli

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Progress is a progress bar over a known number of steps.
type Progress interface {
	Add(num int) error
	Finish() error
}

// NewProgress returns a progress bar on the standard error with total steps, or nil if the
// standard error is not a terminal.
func NewProgress(total int, description string) Progress {
	if !IsTerminal(os.Stderr) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

// FinishProgress finishes p, if not nil.
func FinishProgress(p Progress) {
	if p != nil {
		_ = p.Finish()
	}
}
