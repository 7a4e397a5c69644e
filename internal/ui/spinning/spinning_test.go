package spinning

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinning(t *testing.T) {
	var buf bytes.Buffer
	s := New(context.Background(), &buf, "rendering")
	s.Done()
	s.Done() // Idempotent.
	assert.Contains(t, buf.String(), "\rrendering |")
	assert.Contains(t, buf.String(), "\033[?25h") // Cursor restored.

	var nilSpinning *Spinning
	nilSpinning.Done()
}
