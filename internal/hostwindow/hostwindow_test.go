package hostwindow

import "testing"

func TestOpenCloseTracksIsOpen(t *testing.T) {
	w := Open("Demo", 10, 10)
	if !w.IsOpen() {
		t.Fatal("expected a freshly opened window to report open")
	}
	w.Close()
	if w.IsOpen() {
		t.Error("expected IsOpen to report false after Close")
	}
}

func TestDrawRectFillsEveryPixel(t *testing.T) {
	w := Open("Demo", 10, 10)
	w.DrawRect(0, 0, 2, 2, "red")
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			if w.pixels[[2]int{x, y}] != "red" {
				t.Errorf("pixel (%d,%d): got %q, want red", x, y, w.pixels[[2]int{x, y}])
			}
		}
	}
}

func TestKeyDownIsAlwaysFalseHeadlessly(t *testing.T) {
	w := Open("Demo", 10, 10)
	if w.KeyDown("space") {
		t.Error("expected headless KeyDown to always report false")
	}
}

func TestClearResetsPixels(t *testing.T) {
	w := Open("Demo", 10, 10)
	w.DrawPixel(1, 1, "blue")
	w.Clear()
	if len(w.pixels) != 0 {
		t.Errorf("got %d pixels after Clear, want 0", len(w.pixels))
	}
}
