package viz

import "github.com/lucasb-eyer/go-colorful"

var (
	// CoolLow and CoolHigh are the ends of the Cool colormap: cyan to magenta.
	CoolLow  = colorful.Color{R: 0, G: 1, B: 1}
	CoolHigh = colorful.Color{R: 1, G: 0, B: 1}
)

// Cool maps t in [0, 1] to a color linearly interpolated (in RGB) from cyan to magenta.
// Values outside the range are clamped.
func Cool(t float64) colorful.Color {
	return CoolLow.BlendRgb(CoolHigh, min(max(t, 0), 1))
}

// Normalize v in the range [lo, hi] to [0, 1]. An empty range maps to 0.
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}
