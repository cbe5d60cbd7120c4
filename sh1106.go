package lvdisplay

import (
	"fmt"
	"image"
)

const (
	sh1106DefaultWidth  = 128
	sh1106DefaultHeight = 64
	sh1106BufferRows    = 16

	// sh1106ColumnOffset centers 128 columns in the 132 column RAM.
	sh1106ColumnOffset = 2
)

type sh1106 struct {
	monoPanel
}

// SH1106 is a driver for the Sino Wealth SH1106 OLED display.
func SH1106(conn Conn, config *PanelConfig) (Panel, error) {
	if config == nil {
		config = new(PanelConfig)
	}
	if config.Width == 0 {
		config.Width = sh1106DefaultWidth
	}
	if config.Height == 0 {
		config.Height = sh1106DefaultHeight
	}

	d := &sh1106{
		monoPanel: monoPanel{
			panel: panel{c: conn},
		},
	}
	if err := d.init(config); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *sh1106) String() string {
	w, h := d.Resolution()
	return fmt.Sprintf("SH1106 %dx%d", w, h)
}

func (d *sh1106) init(config *PanelConfig) (err error) {
	var displayOffset byte
	switch {
	case config.Width == 128 && config.Height == 32:
		displayOffset = 0x0f
	case config.Width == 128 && config.Height == 64:
		displayOffset = 0x00
	case config.Width == 128 && config.Height == 128:
		displayOffset = 0x02
	default:
		return fmt.Errorf("%w: SH1106 %dx%d", ErrUnsupportedSize, config.Width, config.Height)
	}

	// init buffers
	if err = d.panel.init(config, sh1106BufferRows); err != nil {
		return
	}

	// init display
	if err = d.command(
		ssd1xxxSetDisplayOff,
		ssd1xxxSetDisplayClockDiv, 0xF0,
		ssd1xxxSetMultiplexRatio, byte(config.Height-1),
		ssd1xxxSetDisplayOffset, displayOffset,
		ssd1xxxSetStartLine,
		ssd1xxxSetChargePump, 0x14,
		ssd1xxxSetSegmentRemap,
		ssd1xxxSetComScanDec,
		ssd1xxxSetComPins, 0x12,
		ssd1xxxSetPrecharge, 0x22,
		ssd1xxxSetVComDetect, 0x20,
		ssd1xxxSetDisplayAllOnResume,
		ssd1xxxSetNormalDisplay,
	); err != nil {
		return
	}

	if err = d.SetContrast(0x7F); err != nil {
		return
	}
	return d.Show(true)
}

// Flush writes area page by page, the SH1106 has no horizontal addressing mode.
func (d *sh1106) Flush(area image.Rectangle, pix []Color) error {
	if area.Empty() {
		return nil
	}

	var (
		buf         = Bytes(pix)
		width       = area.Dx()
		first, last = d.pages(area)
		column      = area.Min.X + sh1106ColumnOffset
	)
	if err := d.checkFlush(area, buf, width*(last-first+1)); err != nil {
		return err
	}

	for page := first; page <= last; page++ {
		if err := d.command(
			ssd1xxxSetPageStart|byte(page&0x7),
			ssd1xxxSetLowColumn|byte(column&0xf),
			ssd1xxxSetHighColumn|byte(column>>4),
		); err != nil {
			return err
		}
		off := (page - first) * width
		if err := d.data(buf[off : off+width]...); err != nil {
			return err
		}
	}
	return nil
}
