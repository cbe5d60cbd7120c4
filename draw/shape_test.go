package draw

import (
	"image"
	"image/color"
	"testing"
)

type fillRecorder struct {
	*image.Gray
	fills []image.Rectangle
}

func (f *fillRecorder) FillRect(r image.Rectangle, c color.Color) {
	f.fills = append(f.fills, r)
}

func TestRectangle(t *testing.T) {
	dst := image.NewGray(image.Rect(0, 0, 8, 8))
	Rectangle(dst, image.Rect(1, 1, 5, 4), color.White)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var (
				inside = x >= 1 && x < 5 && y >= 1 && y < 4
				edge   = inside && (x == 1 || x == 4 || y == 1 || y == 3)
				want   = uint8(0)
			)
			if edge {
				want = 0xff
			}
			if v := dst.GrayAt(x, y).Y; v != want {
				t.Errorf("pixel (%d,%d) is %#02x, expected %#02x", x, y, v, want)
			}
		}
	}
}

func TestBox(t *testing.T) {
	t.Run("set", func(it *testing.T) {
		dst := image.NewGray(image.Rect(0, 0, 4, 4))
		Box(dst, image.Rect(2, 2, 10, 10), color.White)
		var count int
		for _, v := range dst.Pix {
			if v != 0 {
				count++
			}
		}
		if count != 4 {
			it.Errorf("expected 4 pixels set after clipping, got %d", count)
		}
	})

	t.Run("filler", func(it *testing.T) {
		dst := &fillRecorder{Gray: image.NewGray(image.Rect(0, 0, 4, 4))}
		Box(dst, image.Rect(-1, 1, 3, 2), color.White)
		if len(dst.fills) != 1 || dst.fills[0] != image.Rect(0, 1, 3, 2) {
			it.Errorf("expected one clipped fill, got %v", dst.fills)
		}
	})
}

func TestDraw(t *testing.T) {
	tests := []struct {
		Name  string
		Src   image.Image
		Op    Op
		Fills int
	}{
		{"uniform-src", image.NewUniform(color.Gray{Y: 0x80}), Src, 1},
		{"opaque-over", image.NewUniform(color.White), Over, 1},
		{"translucent-over", image.NewUniform(color.Alpha{A: 0x80}), Over, 0},
		{"image", image.NewGray(image.Rect(0, 0, 4, 4)), Src, 0},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			dst := &fillRecorder{Gray: image.NewGray(image.Rect(0, 0, 4, 4))}
			Draw(dst, image.Rect(1, 1, 8, 8), test.Src, image.Point{}, test.Op)
			if len(dst.fills) != test.Fills {
				it.Fatalf("expected %d fills, got %v", test.Fills, dst.fills)
			}
			if test.Fills > 0 && dst.fills[0] != image.Rect(1, 1, 4, 4) {
				it.Errorf("expected a clipped fill, got %v", dst.fills[0])
			}
		})
	}
}
