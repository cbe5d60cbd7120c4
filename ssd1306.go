package lvdisplay

import (
	"fmt"
	"image"
)

const (
	ssd1306DefaultWidth  = 128
	ssd1306DefaultHeight = 64

	// ssd1306BufferRows is the default draw buffer height, two pages.
	ssd1306BufferRows = 16
)

type ssd1306 struct {
	monoPanel
	colStart byte
}

// SSD1306 is a driver for the Solomon Systech SSD1306 monochrome OLED display.
func SSD1306(conn Conn, config *PanelConfig) (Panel, error) {
	if config == nil {
		config = new(PanelConfig)
	}
	if config.Width == 0 {
		config.Width = ssd1306DefaultWidth
	}
	if config.Height == 0 {
		config.Height = ssd1306DefaultHeight
	}

	d := &ssd1306{
		monoPanel: monoPanel{
			panel: panel{c: conn},
		},
	}
	if err := d.init(config); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ssd1306) String() string {
	w, h := d.Resolution()
	return fmt.Sprintf("SSD1306 OLED %dx%d", w, h)
}

func (d *ssd1306) init(config *PanelConfig) (err error) {
	var (
		displayClockDiv byte
		comPins         byte
		colStart        byte
	)
	switch {
	case config.Width == 64 && config.Height == 32:
		displayClockDiv, comPins, colStart = 0x80, 0x12, 32
	case config.Width == 64 && config.Height == 48:
		displayClockDiv, comPins, colStart = 0x80, 0x12, 32
	case config.Width == 96 && config.Height == 16:
		displayClockDiv, comPins, colStart = 0x60, 0x02, 0
	case config.Width == 128 && config.Height == 32:
		displayClockDiv, comPins, colStart = 0x80, 0x02, 0
	case config.Width == 128 && config.Height == 64:
		displayClockDiv, comPins, colStart = 0x80, 0x12, 0
	default:
		return fmt.Errorf("%w: SSD1306 %dx%d", ErrUnsupportedSize, config.Width, config.Height)
	}
	d.colStart = colStart

	// init buffers
	if err = d.panel.init(config, ssd1306BufferRows); err != nil {
		return
	}

	// init display
	if err = d.command(
		ssd1xxxSetDisplayOff,
		ssd1xxxSetDisplayClockDiv, displayClockDiv,
		ssd1xxxSetMultiplexRatio, byte(config.Height-1),
		ssd1xxxSetDisplayOffset, 0x00,
		ssd1xxxSetStartLine,
		ssd1xxxSetChargePump, 0x14,
		ssd1xxxSetMemoryMode, 0x00, // horizontal addressing
		ssd1xxxSetSegmentRemap,
		ssd1xxxSetComScanDec,
		ssd1xxxSetComPins, comPins,
		ssd1xxxSetPrecharge, 0xF1,
		ssd1xxxSetVComDetect, 0x40,
		ssd1xxxSetDisplayAllOnResume,
		ssd1xxxSetNormalDisplay,
	); err != nil {
		return
	}

	if err = d.SetContrast(0xCF); err != nil {
		return
	}
	return d.Show(true)
}

// Flush writes the packed pages of area. The column and page window makes the controller
// advance through the area in horizontal addressing mode.
func (d *ssd1306) Flush(area image.Rectangle, pix []Color) error {
	if area.Empty() {
		return nil
	}

	var (
		buf         = Bytes(pix)
		width       = area.Dx()
		first, last = d.pages(area)
		size        = width * (last - first + 1)
	)
	if err := d.checkFlush(area, buf, size); err != nil {
		return err
	}

	if err := d.command(
		ssd1xxxSetColumnAddr, d.colStart+byte(area.Min.X), d.colStart+byte(area.Max.X-1),
		ssd1xxxSetPageAddr, byte(first), byte(last),
	); err != nil {
		return err
	}
	return d.data(buf[:size]...)
}
