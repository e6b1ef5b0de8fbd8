package render

import "image/color"

// Color is the pixel type used throughout the renderer.
type Color = color.RGBA

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// RGBA creates a color with alpha.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// TintColor scales a color channel-wise by a linear RGB factor,
// used to apply light color and material base color factors.
func TintColor(c Color, rgb [3]float64) Color {
	clamp := func(v float64) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
	return Color{
		R: clamp(float64(c.R) * rgb[0]),
		G: clamp(float64(c.G) * rgb[1]),
		B: clamp(float64(c.B) * rgb[2]),
		A: c.A,
	}
}
