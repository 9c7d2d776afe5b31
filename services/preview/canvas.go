package preview

import (
	"image/color"
	"sync"

	"tinygo.org/x/drivers"

	"pendant-go/charlie"
)

var _ drivers.Displayer = (*Canvas)(nil)

// Canvas is an in-memory one-row display, one cell per LED.
// It satisfies tinygo's drivers.Displayer.
type Canvas struct {
	mu      sync.RWMutex
	back    [charlie.NumLEDs]color.RGBA
	front   [charlie.NumLEDs]color.RGBA
	flushes uint64
}

func (c *Canvas) Size() (x, y int16) { return charlie.NumLEDs, 1 }

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	if x < 0 || x >= charlie.NumLEDs || y != 0 {
		return
	}
	c.mu.Lock()
	c.back[x] = col
	c.mu.Unlock()
}

// Display publishes the pixels set since the last call.
func (c *Canvas) Display() error {
	c.mu.Lock()
	c.front = c.back
	c.flushes++
	c.mu.Unlock()
	return nil
}

// Cells returns the displayed colors.
func (c *Canvas) Cells() [charlie.NumLEDs]color.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.front
}

// Flushes counts Display calls.
func (c *Canvas) Flushes() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flushes
}
