package framebuffer

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/BeatGlow/lvdisplay"
	"github.com/BeatGlow/lvdisplay/pixel"
)

func TestPixelFormatColorModel(t *testing.T) {
	tests := []struct {
		Name   string
		Format pixelFormat
		Want   color.Model
	}{
		{"rgb555", pixelFormat{15, bitField{Offset: 10, Length: 5}, bitField{Offset: 5, Length: 5}, bitField{Length: 5}, bitField{}}, pixel.CRGB15Model},
		{"rgb565", pixelFormat{16, bitField{Offset: 11, Length: 5}, bitField{Offset: 5, Length: 6}, bitField{Length: 5}, bitField{}}, pixel.CRGB16Model},
		{"bgr565", pixelFormat{16, bitField{Length: 5}, bitField{Offset: 5, Length: 6}, bitField{Offset: 11, Length: 5}, bitField{}}, pixel.CBGR16Model},
		{"rgba8888", pixelFormat{32, bitField{Length: 8}, bitField{Offset: 8, Length: 8}, bitField{Offset: 16, Length: 8}, bitField{Offset: 24, Length: 8}}, color.RGBAModel},
		{"xrgb8888", pixelFormat{32, bitField{Offset: 16, Length: 8}, bitField{Offset: 8, Length: 8}, bitField{Length: 8}, bitField{}}, bgraModel},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			m, err := test.Format.colorModel()
			if err != nil {
				it.Fatal(err)
			}
			if m != test.Want {
				it.Errorf("expected color model %v, got %v", test.Want, m)
			}
		})
	}

	t.Run("unsupported", func(it *testing.T) {
		_, err := pixelFormat{BitsPerPixel: 8}.colorModel()
		if !errors.Is(err, ErrColorModel) {
			it.Errorf("expected %v, got %v", ErrColorModel, err)
		}
	})
}

func testFrameBuffer(t *testing.T, model color.Model, bpp int) *FrameBuffer {
	t.Helper()
	const w, h = 8, 4
	var (
		stride = w*bpp + 4 // padded lines
		mem    = make([]byte, stride*h)
	)
	return &FrameBuffer{
		Base: lvdisplay.NewBase(&lvdisplay.Config{MaxWidth: w, MaxHeight: h, DefaultBufferSize: w * h}, nil, nil),
		name: "test",
		img:  newImage(model, mem, image.Rect(0, 0, w, h), stride),
	}
}

func TestFlush(t *testing.T) {
	red := pixel.RGB565(0xff, 0, 0)
	area := image.Rect(2, 1, 5, 3)
	pix := make([]lvdisplay.Color, area.Dx()*area.Dy())
	for i := range pix {
		pix[i] = red
	}

	for _, test := range []struct {
		Name  string
		Model color.Model
		BPP   int
	}{
		{"rgb565", pixel.CRGB16Model, 2},
		{"bgr565", pixel.CBGR16Model, 2},
		{"rgba8888", color.RGBAModel, 4},
		{"xrgb8888", bgraModel, 4},
	} {
		t.Run(test.Name, func(it *testing.T) {
			fb := testFrameBuffer(it, test.Model, test.BPP)
			if err := fb.Flush(area, pix); err != nil {
				it.Fatal(err)
			}

			img := fb.Image()
			for y := 0; y < 4; y++ {
				for x := 0; x < 8; x++ {
					r, _, _, _ := img.At(x, y).RGBA()
					if want := (image.Point{X: x, Y: y}).In(area); (r == 0xffff) != want {
						it.Fatalf("pixel (%d,%d) has red %#04x, flushed is %t", x, y, r, want)
					}
				}
			}
		})
	}
}

func TestFlushNativeOrder(t *testing.T) {
	fb := testFrameBuffer(t, pixel.CRGB16Model, 2)
	c := pixel.CRGB16{V: 0x1234}
	if err := fb.Flush(image.Rect(1, 0, 2, 1), []lvdisplay.Color{c}); err != nil {
		t.Fatal(err)
	}
	img := fb.Image().(*pixel.CRGB16Image)
	if v := binary.NativeEndian.Uint16(img.Pix[2:]); v != c.V {
		t.Errorf("expected %#04x in native byte order, got %#04x", c.V, v)
	}
}

func TestFlushBounds(t *testing.T) {
	fb := testFrameBuffer(t, pixel.CRGB16Model, 2)
	pix := make([]lvdisplay.Color, 4)
	for _, area := range []image.Rectangle{
		image.Rect(6, 0, 10, 1), // off screen
		image.Rect(0, 0, 4, 2),  // buffer too short
	} {
		if err := fb.Flush(area, pix); !errors.Is(err, lvdisplay.ErrBounds) {
			t.Errorf("flush %s: expected %v, got %v", area, lvdisplay.ErrBounds, err)
		}
	}
	if err := fb.Flush(image.Rectangle{}, nil); err != nil {
		t.Errorf("expected empty flush to succeed, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	fb := testFrameBuffer(t, pixel.CRGB16Model, 2)
	d := lvdisplay.Register(fb)
	if diff := cmp.Diff(image.Rect(0, 0, 8, 4), d.Bounds()); diff != "" {
		t.Fatalf("bounds mismatch (-want +got):\n%s", diff)
	}

	blue := pixel.RGB565(0, 0, 0xff)
	d.Invalidate(d.Bounds())
	if err := d.Refresh(func(c *lvdisplay.Canvas) {
		c.FillRect(c.Bounds(), blue)
	}); err != nil {
		t.Fatal(err)
	}
	if v := fb.Image().At(7, 3); v != blue {
		t.Errorf("expected %v at (7,3), got %v", blue, v)
	}
	if err := fb.Close(); err != nil {
		t.Error(err)
	}
}
