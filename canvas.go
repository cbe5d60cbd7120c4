package lvdisplay

import (
	"image"
	"image/color"

	"github.com/BeatGlow/lvdisplay/draw"
	"github.com/BeatGlow/lvdisplay/pixel"
)

// Canvas is the part of the screen being rendered, backed by the active draw buffer.
//
// Coordinates are screen coordinates. Pixels are stored through the driver pixel-write hook when
// it has one, and as [Color] values otherwise.
type Canvas struct {
	area     image.Rectangle
	pix      []Color
	raw      []byte
	setPixel func(buf []byte, bufWidth, x, y int, c Color, opa Opacity)
	gpuBlend func(dst, src []Color, opa Opacity)
	gpuFill  func(dst []Color, dstWidth int, area image.Rectangle, c Color)
}

func (d *Display) canvas(area image.Rectangle, buf []Color) *Canvas {
	c := &Canvas{
		area:     area,
		pix:      buf[:area.Dx()*area.Dy()],
		setPixel: d.dd.SetPixel,
		gpuBlend: d.dd.GPUBlend,
		gpuFill:  d.dd.GPUFill,
	}
	if c.setPixel != nil {
		c.raw = Bytes(buf)
	}
	return c
}

// Bounds is the area being rendered.
func (c *Canvas) Bounds() image.Rectangle {
	return c.area
}

func (c *Canvas) ColorModel() color.Model {
	return pixel.CRGB16Model
}

// At returns the pixel at (x, y). Pixels written by a pixel-write hook can't be read back and
// are reported as transparent.
func (c *Canvas) At(x, y int) color.Color {
	if c.setPixel != nil || !(image.Point{X: x, Y: y}).In(c.area) {
		return color.Transparent
	}
	return c.pix[c.offset(x, y)]
}

// Set the pixel at (x, y) to an opaque color.
func (c *Canvas) Set(x, y int, v color.Color) {
	c.SetOpa(x, y, pixel.CRGB16Model.Convert(v).(Color), OpacityCover)
}

// SetOpa mixes v with the given opacity into the pixel at (x, y).
func (c *Canvas) SetOpa(x, y int, v Color, opa Opacity) {
	if opa == OpacityTransparent || !(image.Point{X: x, Y: y}).In(c.area) {
		return
	}
	if c.setPixel != nil {
		c.setPixel(c.raw, c.area.Dx(), x-c.area.Min.X, y-c.area.Min.Y, v, opa)
		return
	}
	i := c.offset(x, y)
	c.pix[i] = pixel.Mix(v, c.pix[i], uint8(opa))
}

// FillRect fills r with an opaque color, using the GPU fill hook when available.
func (c *Canvas) FillRect(r image.Rectangle, v color.Color) {
	var (
		fill = pixel.CRGB16Model.Convert(v).(Color)
		area = r.Intersect(c.area)
	)
	if area.Empty() {
		return
	}
	if c.gpuFill != nil && c.setPixel == nil {
		c.gpuFill(c.pix, c.area.Dx(), area.Sub(c.area.Min), fill)
		return
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			c.SetOpa(x, y, fill, OpacityCover)
		}
	}
}

// BlendRow mixes src into the row starting at (x, y), using the GPU blend hook when available.
// Pixels outside of the canvas are skipped.
func (c *Canvas) BlendRow(x, y int, src []Color, opa Opacity) {
	if y < c.area.Min.Y || y >= c.area.Max.Y {
		return
	}
	if x < c.area.Min.X {
		if skip := c.area.Min.X - x; skip < len(src) {
			src, x = src[skip:], c.area.Min.X
		} else {
			return
		}
	}
	if n := c.area.Max.X - x; n < len(src) {
		if n <= 0 {
			return
		}
		src = src[:n]
	}

	if c.gpuBlend != nil && c.setPixel == nil {
		i := c.offset(x, y)
		c.gpuBlend(c.pix[i:i+len(src)], src, opa)
		return
	}
	for i, v := range src {
		c.SetOpa(x+i, y, v, opa)
	}
}

func (c *Canvas) offset(x, y int) int {
	return (y-c.area.Min.Y)*c.area.Dx() + x - c.area.Min.X
}

// Interface checks.
var (
	_ draw.Image  = (*Canvas)(nil)
	_ draw.Filler = (*Canvas)(nil)
)
