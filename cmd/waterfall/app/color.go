package app

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	hueStart = 236.0
	hueEnd   = 0.0
)

var noDataColor = color.Black

// dbToColor maps a dB value in [minDb, maxDb] to a blue-to-red color by
// sweeping the HSV hue from 236 down to 0 degrees.
func dbToColor(db, minDb, maxDb float64) color.Color {
	span := maxDb - minDb
	if span <= 0 {
		return noDataColor
	}

	normalized := (db - minDb) / span
	normalized = math.Min(math.Max(normalized, 0), 1)

	hue := hueStart - normalized*(hueStart-hueEnd)
	return colorful.Hsv(hue, 1, 0.90)
}

// CreateColorMap precomputes size colors spanning [minDb, maxDb] so each
// pixel is a lookup instead of a fresh HSV conversion.
func CreateColorMap(size int, minDb, maxDb float64) []color.Color {
	colorMap := make([]color.Color, size)
	for i := 0; i < size; i++ {
		frac := float64(i) / float64(size-1)
		colorMap[i] = dbToColor(minDb+frac*(maxDb-minDb), minDb, maxDb)
	}
	return colorMap
}
