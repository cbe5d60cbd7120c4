// Package framebuffer provides a display driver on top of the operating system's native framebuffer
//
// This requires framebuffer device support in the operating system. The framebuffer
// can be opened with the [Open] call, and will otherwise function like a regular
// panel: register it with [lvdisplay.Register] and every flushed area is copied to
// the mapped framebuffer memory.
//
// Note that framebuffers don't implement all panel methods, such as turning the
// display off or setting the contrast. These calls are a no-op.
package framebuffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/BeatGlow/lvdisplay"
	"github.com/BeatGlow/lvdisplay/draw"
	"github.com/BeatGlow/lvdisplay/pixel"
)

// Errors
var (
	ErrNotSupported = errors.New("framebuffer: not supported")
	ErrColorModel   = errors.New("framebuffer: unsupported color model")
)

// FrameBuffer is a framebuffer device driver.
type FrameBuffer struct {
	*lvdisplay.Base
	name string
	f    *os.File
	mem  []byte
	img  draw.Image
}

func (fb *FrameBuffer) String() string {
	w, h := fb.Resolution()
	return fmt.Sprintf("framebuffer %s %dx%d", fb.name, w, h)
}

// Image is the mapped framebuffer memory in the device color model.
func (fb *FrameBuffer) Image() draw.Image {
	return fb.img
}

// Flush copies the area pixels to the framebuffer.
func (fb *FrameBuffer) Flush(area image.Rectangle, pix []lvdisplay.Color) error {
	if area.Empty() {
		return nil
	}
	if !area.In(fb.img.Bounds()) {
		return fmt.Errorf("%w: area %s", lvdisplay.ErrBounds, area)
	}
	if n := area.Dx() * area.Dy(); len(pix) < n {
		return fmt.Errorf("%w: area %s needs %d pixels, buffer has %d", lvdisplay.ErrBounds, area, n, len(pix))
	}
	copyArea(fb.img, area, pix)
	return nil
}

// Show is a no-op.
func (fb *FrameBuffer) Show(_ bool) error {
	return nil
}

// SetContrast is a no-op.
func (fb *FrameBuffer) SetContrast(_ uint8) error {
	return nil
}

// Close unmaps the framebuffer memory, closes the device and releases the draw buffers.
func (fb *FrameBuffer) Close() error {
	var err error
	if fb.mem != nil {
		err = unmap(fb.mem)
		fb.mem = nil
	}
	if fb.f != nil {
		err = errors.Join(err, fb.f.Close())
	}
	return errors.Join(err, fb.Base.Close())
}

// copyArea writes the area rows of pix to dst.
func copyArea(dst draw.Image, area image.Rectangle, pix []lvdisplay.Color) {
	if img, ok := dst.(*pixel.CRGB16Image); ok {
		// Same color model, skip the conversion.
		i := 0
		for y := area.Min.Y; y < area.Max.Y; y++ {
			o := (area.Min.X-img.Rect.Min.X)*2 + (y-img.Rect.Min.Y)*img.Stride
			for _, c := range pix[i : i+area.Dx()] {
				img.Order.PutUint16(img.Pix[o:], c.V)
				o += 2
			}
			i += area.Dx()
		}
		return
	}

	i := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			dst.Set(x, y, pix[i])
			i++
		}
	}
}

// bitField describes the position of a color channel in a pixel.
type bitField struct {
	Offset   uint32 // Beginning of bitfield
	Length   uint32 // Length of bitfield
	MsbRight uint32 // != 0 : Most significant bit is right
}

func (f bitField) is(offset, length uint32) bool {
	return f.Offset == offset && f.Length == length && f.MsbRight == 0
}

// pixelFormat is the layout of a pixel in framebuffer memory.
type pixelFormat struct {
	BitsPerPixel            uint32
	Red, Green, Blue, Alpha bitField
}

// colorModel returns the color model of the format.
func (f pixelFormat) colorModel() (color.Model, error) {
	switch f.BitsPerPixel {
	case 15, 16:
		switch {
		case f.Red.is(10, 5) && f.Green.is(5, 5) && f.Blue.is(0, 5):
			return pixel.CRGB15Model, nil
		case f.Red.is(11, 5) && f.Green.is(5, 6) && f.Blue.is(0, 5):
			return pixel.CRGB16Model, nil
		case f.Red.is(0, 5) && f.Green.is(5, 6) && f.Blue.is(11, 5):
			return pixel.CBGR16Model, nil
		}

	case 32:
		switch {
		case f.Red.is(0, 8) && f.Green.is(8, 8) && f.Blue.is(16, 8):
			return color.RGBAModel, nil
		case f.Red.is(16, 8) && f.Green.is(8, 8) && f.Blue.is(0, 8):
			return bgraModel, nil
		}
	}
	return nil, fmt.Errorf("%w: %d bits per pixel, red %d:%d, green %d:%d, blue %d:%d", ErrColorModel,
		f.BitsPerPixel,
		f.Red.Offset, f.Red.Length,
		f.Green.Offset, f.Green.Length,
		f.Blue.Offset, f.Blue.Length)
}

// newImage wraps framebuffer memory in an image of the given color model. Pixel values are stored
// in the native byte order.
func newImage(model color.Model, pix []byte, r image.Rectangle, stride int) draw.Image {
	order := binary.NativeEndian
	switch model {
	case pixel.CRGB15Model:
		return pixel.WrapCRGB15Image(pix, r, stride, order)
	case pixel.CRGB16Model:
		return pixel.WrapCRGB16Image(pix, r, stride, order)
	case pixel.CBGR16Model:
		return pixel.WrapCBGR16Image(pix, r, stride, order)
	case bgraModel:
		return &bgraImage{RGBA: image.RGBA{Pix: pix, Stride: stride, Rect: r}}
	default:
		return &image.RGBA{Pix: pix, Stride: stride, Rect: r}
	}
}

// bgraImage is a 32-bit XRGB image, stored as blue, green, red and an unused byte.
type bgraImage struct {
	image.RGBA
}

var bgraModel = color.ModelFunc(func(c color.Color) color.Color {
	return color.RGBAModel.Convert(c)
})

func (p *bgraImage) ColorModel() color.Model {
	return bgraModel
}

func (p *bgraImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	return color.RGBA{R: p.Pix[i+2], G: p.Pix[i+1], B: p.Pix[i], A: 0xff}
}

func (p *bgraImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	i := p.PixOffset(x, y)
	r, g, b, _ := c.RGBA()
	p.Pix[i+0] = uint8(b >> 8)
	p.Pix[i+1] = uint8(g >> 8)
	p.Pix[i+2] = uint8(r >> 8)
	p.Pix[i+3] = 0xff
}

// Interface checks.
var (
	_ lvdisplay.Panel = (*FrameBuffer)(nil)
	_ draw.Image      = (*bgraImage)(nil)
)
