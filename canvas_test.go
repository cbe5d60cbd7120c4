package lvdisplay

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/BeatGlow/lvdisplay/draw"
	"github.com/BeatGlow/lvdisplay/pixel"
)

var (
	testRed   = pixel.RGB565(0xff, 0, 0)
	testGreen = pixel.RGB565(0, 0xff, 0)
)

func TestCanvas(t *testing.T) {
	var (
		d    = new(Display)
		area = image.Rect(2, 2, 6, 4)
		buf  = make([]Color, 10)
		c    = d.canvas(area, buf)
	)
	if diff := cmp.Diff(area, c.Bounds()); diff != "" {
		t.Fatalf("bounds mismatch (-want +got):\n%s", diff)
	}
	if c.ColorModel() != pixel.CRGB16Model {
		t.Errorf("expected color model %v, got %v", pixel.CRGB16Model, c.ColorModel())
	}

	c.Set(3, 3, color.RGBA{R: 0xff, A: 0xff})
	if buf[5] != testRed {
		t.Errorf("expected pixel 5 to be red, got %#04x", buf[5].V)
	}
	if v := c.At(3, 3); v != testRed {
		t.Errorf("expected red at (3,3), got %v", v)
	}

	// Outside of the area.
	c.Set(0, 0, color.White)
	c.Set(6, 3, color.White)
	if v := c.At(0, 0); v != color.Transparent {
		t.Errorf("expected transparent outside of the canvas, got %v", v)
	}
	if buf[8] != (Color{}) || buf[9] != (Color{}) {
		t.Error("expected pixels beyond the area to be untouched")
	}
}

func TestCanvasSetOpa(t *testing.T) {
	var (
		d   = new(Display)
		buf = make([]Color, 4)
		c   = d.canvas(image.Rect(0, 0, 2, 2), buf)
	)
	c.Set(0, 0, testGreen)
	c.SetOpa(0, 0, testRed, OpacityTransparent)
	if buf[0] != testGreen {
		t.Errorf("expected transparent write to keep the pixel, got %#04x", buf[0].V)
	}

	c.SetOpa(0, 0, testRed, 0x80)
	if want := pixel.Mix(testRed, testGreen, 0x80); buf[0] != want {
		t.Errorf("expected mixed pixel %#04x, got %#04x", want.V, buf[0].V)
	}
}

func TestCanvasFillRect(t *testing.T) {
	var (
		d   = new(Display)
		buf = make([]Color, 16)
		c   = d.canvas(image.Rect(4, 4, 8, 8), buf)
	)
	c.FillRect(image.Rect(0, 0, 6, 5), testRed)

	for i, v := range buf {
		x, y := 4+i%4, 4+i/4
		if in := x < 6 && y < 5; (v == testRed) != in {
			t.Errorf("pixel (%d,%d) is %#04x, filled %t", x, y, v.V, in)
		}
	}

	// draw.Box uses FillRect.
	draw.Box(c, image.Rect(6, 6, 100, 100), testGreen)
	if buf[15] != testGreen || buf[10] != testGreen {
		t.Error("expected box to be filled")
	}
}

func TestCanvasBlendRow(t *testing.T) {
	var (
		d   = new(Display)
		buf = make([]Color, 8)
		c   = d.canvas(image.Rect(0, 0, 4, 2), buf)
		src = []Color{testRed, testRed, testRed, testRed, testRed, testRed}
	)
	c.BlendRow(-2, 1, src, OpacityCover)
	want := []Color{{}, {}, {}, {}, testRed, testRed, testRed, testRed}
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Errorf("buffer mismatch (-want +got):\n%s", diff)
	}

	// Out of the canvas.
	c.BlendRow(0, 2, src, OpacityCover)
	c.BlendRow(4, 0, src, OpacityCover)
	c.BlendRow(-6, 0, src, OpacityCover)
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Errorf("buffer mismatch (-want +got):\n%s", diff)
	}
}

type pixelCall struct {
	BufWidth, X, Y int
	C              Color
	Opa            Opacity
}

func TestCanvasPixelWrite(t *testing.T) {
	var (
		calls []pixelCall
		d     = &Display{dd: DisplayDriver{
			SetPixel: func(buf []byte, bufWidth, x, y int, c Color, opa Opacity) {
				if len(buf) != 20 {
					t.Errorf("expected the raw buffer of 20 bytes, got %d", len(buf))
				}
				calls = append(calls, pixelCall{bufWidth, x, y, c, opa})
			},
		}}
		c = d.canvas(image.Rect(10, 20, 15, 22), make([]Color, 10))
	)

	c.Set(11, 21, testRed)
	c.SetOpa(14, 20, testGreen, 0x40)
	c.SetOpa(14, 20, testGreen, OpacityTransparent)
	c.Set(15, 20, testRed)

	want := []pixelCall{
		{5, 1, 1, testRed, OpacityCover},
		{5, 4, 0, testGreen, 0x40},
	}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("pixel writes mismatch (-want +got):\n%s", diff)
	}
	if v := c.At(11, 21); v != color.Transparent {
		t.Errorf("expected packed pixels to read as transparent, got %v", v)
	}
}
