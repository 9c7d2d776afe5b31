package charlie

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// alphaStep spreads the nine levels over the alpha channel the same way
// tinygo's microbitmatrix reads them back (255/9 per level).
const alphaStep = 255 / NumLevels

// LevelColor returns the warm white used to show level l. Brighter levels
// are more opaque.
func LevelColor(l uint8) color.RGBA {
	if l > MaxLevel {
		l = MaxLevel
	}
	if l == 0 {
		return color.RGBA{}
	}
	return color.RGBA{R: 255, G: 180, B: 90, A: 255 - alphaStep*(MaxLevel-l)}
}

// ColorLevel is the inverse of LevelColor.
func ColorLevel(c color.RGBA) uint8 {
	if c.R == 0 && c.G == 0 && c.B == 0 {
		return 0
	}
	l := MaxLevel - int(255-c.A)/alphaStep
	if l < 1 {
		return 1
	}
	return uint8(l)
}

// Draw paints levels as a row of NumLEDs pixels starting at (0,0) and
// flushes the display. Pixels past the display edge are skipped.
func Draw(d drivers.Displayer, levels Levels) error {
	w, h := d.Size()
	if h < 1 {
		return nil
	}
	for i, l := range levels {
		if int16(i) >= w {
			break
		}
		d.SetPixel(int16(i), 0, LevelColor(l))
	}
	return d.Display()
}
