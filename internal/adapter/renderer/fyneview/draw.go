package fyneview

import (
	"image"
	"image/color"
	"math"
	"strconv"
)

// drawKit provides the raster drawing primitives the view renders with.
type drawKit struct{}

// fill floods the image with a solid color.
func (drawKit) fill(img *image.RGBA, col color.Color) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.Set(x, y, col)
		}
	}
}

// line draws a straight segment with the given thickness in pixels.
func (drawKit) line(img *image.RGBA, x1, y1, x2, y2 float64, thickness int, col color.RGBA) {
	bounds := img.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return
	}

	perpX := -dy / length
	perpY := dx / length
	steps := int(length) + 1

	for t := -thickness / 2; t <= thickness/2; t++ {
		offsetX := float64(t) * perpX
		offsetY := float64(t) * perpY

		for i := 0; i <= steps; i++ {
			progress := float64(i) / float64(steps)
			px := int(x1 + dx*progress + offsetX)
			py := int(y1 + dy*progress + offsetY)

			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, col)
			}
		}
	}
}

// circle draws a circle outline.
func (drawKit) circle(img *image.RGBA, cx, cy float64, radius float64, col color.RGBA) {
	bounds := img.Bounds()

	steps := int(2 * math.Pi * radius)
	if steps < 36 {
		steps = 36
	}

	for i := 0; i < steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		px := int(cx + math.Cos(angle)*radius)
		py := int(cy + math.Sin(angle)*radius)

		if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
			img.Set(px, py, col)
		}
	}
}

// parseHexColor parses a "#rrggbb" or "#rgb" string. Malformed values fall
// back to white so a bad setting never blanks the drawing.
func parseHexColor(s string) color.RGBA {
	fallback := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	if len(s) == 0 || s[0] != '#' {
		return fallback
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return fallback
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}
