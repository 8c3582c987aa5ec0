// Package hostwindow backs the pixel-window builtins
// (open_window/draw_pixel/present/...) supplemented from
// original_source's PixelWindow. It is a headless simulation: no
// actual window is opened (this interpreter has no display
// dependency in its stack), so the drawing calls maintain an
// in-memory framebuffer and event state that a script can still
// observe through key_down/window_is_open, keeping programs written
// against the real PixelWindow API runnable in a terminal or test.
package hostwindow

import (
	"fmt"

	"github.com/liam13141/epp/internal/object"
)

const WindowType object.Type = "WINDOW"

type Window struct {
	Title  string
	Width  int
	Height int
	open   bool
	pixels map[[2]int]string
}

func (w *Window) Type() object.Type { return WindowType }
func (w *Window) Inspect() string {
	return fmt.Sprintf("<window %q %dx%d>", w.Title, w.Width, w.Height)
}

func Open(title string, width, height int) *Window {
	return &Window{Title: title, Width: width, Height: height, open: true, pixels: map[[2]int]string{}}
}

func (w *Window) Close()           { w.open = false }
func (w *Window) IsOpen() bool     { return w.open }
func (w *Window) SetTitle(t string) { w.Title = t }

// Poll is the per-frame pump; headlessly it always reports no
// pending quit request.
func (w *Window) Poll() bool { return w.open }

func (w *Window) Clear() { w.pixels = map[[2]int]string{} }

func (w *Window) DrawPixel(x, y int, color string) {
	w.pixels[[2]int{x, y}] = color
}

func (w *Window) DrawRect(x, y, width, height int, color string) {
	for dx := 0; dx < width; dx++ {
		for dy := 0; dy < height; dy++ {
			w.DrawPixel(x+dx, y+dy, color)
		}
	}
}

// DrawText records the text at (x, y) in the framebuffer as
// "text:<text>"; no glyphs are rendered and color is not stored.
func (w *Window) DrawText(x, y int, text, color string) {
	w.pixels[[2]int{x, y}] = "text:" + text
}

func (w *Window) Present() {}

// KeyDown always reports false headlessly: there is no real keyboard
// to poll. Scripts calling it get a well-defined, non-crashing answer
// rather than a host error.
func (w *Window) KeyDown(key string) bool { return false }
