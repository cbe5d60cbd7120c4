package lvdisplay

import (
	"image"
	"unsafe"

	"github.com/BeatGlow/lvdisplay/pixel"
)

// monoPanel is the common part of the SSD1306 and SH1106 OLED drivers. Both controllers store
// 8 row pages of vertical bytes, so areas are rounded to whole pages and pixels are packed
// 1 bit per pixel in the draw buffer.
type monoPanel struct {
	panel
	packed *pixel.MonoVerticalLSBImage
}

// command sends command bytes. Over SPI the arguments of these controllers are commands too.
func (p *monoPanel) command(command ...byte) error {
	if _, ok := p.c.(SPI); ok {
		for _, b := range command {
			if err := p.c.Command(b); err != nil {
				return err
			}
		}
		return nil
	}
	return p.c.Command(command[0], command[1:]...)
}

func (p *monoPanel) HasRounder() bool {
	return true
}

// RoundArea extends area to whole pages.
func (p *monoPanel) RoundArea(area *image.Rectangle) {
	area.Min.Y &^= 7
	area.Max.Y = (area.Max.Y + 7) &^ 7
}

func (p *monoPanel) HasPixelWriteFunction() bool {
	return true
}

// SetPixel packs the pixel into its page byte. Writes below half opacity are dropped.
func (p *monoPanel) SetPixel(buf []byte, bufWidth, x, y int, c Color, opa Opacity) {
	if opa < OpacityCover/2 || bufWidth <= 0 {
		return
	}
	if img := p.wrap(buf, bufWidth); img != nil {
		img.Set(x, y, c)
	}
}

// wrap returns the page image over buf, reused while the refresh cycle renders into the same buffer.
func (p *monoPanel) wrap(buf []byte, bufWidth int) *pixel.MonoVerticalLSBImage {
	if len(buf) == 0 {
		return nil
	}
	if img := p.packed; img != nil && img.Stride == bufWidth && unsafe.SliceData(img.Pix) == unsafe.SliceData(buf) {
		return img
	}
	rows := len(buf) / bufWidth * 8
	p.packed = pixel.WrapMonoVerticalLSBImage(buf, bufWidth, rows)
	return p.packed
}

// pages returns the first and last page covered by area.
func (p *monoPanel) pages(area image.Rectangle) (first, last int) {
	return area.Min.Y >> 3, (area.Max.Y - 1) >> 3
}

func (p *monoPanel) Show(show bool) error {
	if show {
		return p.command(ssd1xxxSetDisplayOn)
	}
	return p.command(ssd1xxxSetDisplayOff)
}

func (p *monoPanel) SetContrast(level uint8) error {
	return p.command(ssd1xxxSetContrast, level)
}

func (p *monoPanel) Close() error {
	return p.close(p.Show)
}
