package lvdisplay

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/BeatGlow/lvdisplay/pixel"
)

const (
	ssd1322DefaultWidth  = 256
	ssd1322DefaultHeight = 64
	ssd1322BufferRows    = 16

	// ssd1322Columns is the width of the display RAM; each column address covers 4 pixels.
	ssd1322Columns = 480
)

const (
	ssd1322SetColumnAddress       = 0x15
	ssd1322WriteRAM               = 0x5C
	ssd1322SetRowAddress          = 0x75
	ssd1322SetRemap               = 0xA0
	ssd1322SetDisplayStartLine    = 0xA1
	ssd1322SetDisplayOffset       = 0xA2
	ssd1322SetDisplayNormal       = 0xA4
	ssd1322SetDisplayAllOff       = 0xA6
	ssd1322SetExitPartialDisplay  = 0xA9
	ssd1322SetFunction            = 0xAB
	ssd1322SetDisplaySleep        = 0xAE
	ssd1322SetDisplayOn           = 0xAF
	ssd1322SetPhaseLength         = 0xB1
	ssd1322SetFrontClockDiv       = 0xB3
	ssd1322SetDisplayEnhancementA = 0xB4
	ssd1322SetGPIO                = 0xB5
	ssd1322SetSecondPrecharge     = 0xB6
	ssd1322SetDefaultGrayscale    = 0xB9
	ssd1322SetPrechargeVoltage    = 0xBB
	ssd1322SetVCOMHVoltage        = 0xBE
	ssd1322SetContrast            = 0xC1
	ssd1322SetMasterCurrent       = 0xC7
	ssd1322SetMultiplexRatio      = 0xCA
	ssd1322SetDisplayEnhancementB = 0xD1
	ssd1322SetCommandLock         = 0xFD
)

var ssd1322SupportedSizes = []image.Point{
	image.Pt(256, 64),
	image.Pt(256, 48),
	image.Pt(256, 32),
	image.Pt(128, 64),
	image.Pt(128, 48),
	image.Pt(128, 32),
	image.Pt(64, 64),
	image.Pt(64, 48),
	image.Pt(64, 32),
}

type ssd1322 struct {
	panel
	columnOffset int
	packed       *pixel.Gray4Image
}

// SSD1322 is a driver for Solomon Systech SSD1322 4-bit grayscale OLED display.
func SSD1322(conn Conn, config *PanelConfig) (Panel, error) {
	if config == nil {
		config = new(PanelConfig)
	}
	if config.Width == 0 {
		config.Width = ssd1322DefaultWidth
	}
	if config.Height == 0 {
		config.Height = ssd1322DefaultHeight
	}

	d := &ssd1322{
		panel: panel{c: conn},
	}
	if err := d.init(config); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ssd1322) String() string {
	w, h := d.Resolution()
	return fmt.Sprintf("SSD1322 %dx%d", w, h)
}

func (d *ssd1322) init(config *PanelConfig) (err error) {
	var supported bool
	for _, size := range ssd1322SupportedSizes {
		if supported = size.X == config.Width && size.Y == config.Height; supported {
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: SSD1322 %dx%d", ErrUnsupportedSize, config.Width, config.Height)
	}

	// init buffers
	if err = d.panel.init(config, ssd1322BufferRows); err != nil {
		return
	}
	d.columnOffset = (ssd1322Columns - config.Width) >> 1

	// init display
	if err = d.commands(
		[]byte{ssd1322SetCommandLock, 0x12},                       // Unlock IC
		[]byte{ssd1322SetDisplaySleep},                            // Sleep while configuring
		[]byte{ssd1322SetFrontClockDiv, 0xF2},                     // Display divide clockratio/freq
		[]byte{ssd1322SetMultiplexRatio, byte(config.Height - 1)}, // Set MUX ratio
		[]byte{ssd1322SetDisplayOffset, 0x00},                     // Display offset
		[]byte{ssd1322SetDisplayStartLine, 0x00},                  // Display start Line
		[]byte{ssd1322SetRemap, 0x14, 0x11},                       // Set remap & dual COM Line
		[]byte{ssd1322SetGPIO, 0x00},                              // Set GPIO (disabled)
		[]byte{ssd1322SetFunction, 0x01},                          // Function select (internal Vdd)
		[]byte{ssd1322SetDisplayEnhancementA, 0xA0, 0xFD},         // Display enhancement A (External VSL)
		[]byte{ssd1322SetMasterCurrent, 0x0F},                     // Master contrast (reset)
		[]byte{ssd1322SetDefaultGrayscale},                        // Set default greyscale table
		[]byte{ssd1322SetPhaseLength, 0xF0},                       // Phase length
		[]byte{ssd1322SetDisplayEnhancementB, 0x82, 0x20},         // Display enhancement B (reset)
		[]byte{ssd1322SetPrechargeVoltage, 0x0D},                  // Pre-charge voltage
		[]byte{ssd1322SetSecondPrecharge, 0x08},                   // 2nd precharge period
		[]byte{ssd1322SetVCOMHVoltage, 0x00},                      // Set VcomH
		[]byte{ssd1322SetDisplayNormal},                           // Display normal
		[]byte{ssd1322SetExitPartialDisplay},                      // Exit partial display
	); err != nil {
		return
	}

	if err = d.SetContrast(0x7F); err != nil {
		return
	}
	return d.Show(true)
}

func (d *ssd1322) Show(show bool) error {
	if show {
		return d.command(ssd1322SetDisplayOn)
	}
	return d.command(ssd1322SetDisplaySleep)
}

func (d *ssd1322) SetContrast(level uint8) error {
	return d.command(ssd1322SetContrast, level)
}

func (d *ssd1322) Close() error {
	return d.close(d.Show)
}

func (d *ssd1322) HasRounder() bool {
	return true
}

// RoundArea extends area to whole column addresses of 4 pixels.
func (d *ssd1322) RoundArea(area *image.Rectangle) {
	area.Min.X &^= 3
	area.Max.X = (area.Max.X + 3) &^ 3
}

func (d *ssd1322) HasPixelWriteFunction() bool {
	return true
}

// SetPixel packs the pixel as a 4-bit gray level, transparent writes are dropped.
func (d *ssd1322) SetPixel(buf []byte, bufWidth, x, y int, c Color, opa Opacity) {
	if opa == OpacityTransparent || bufWidth <= 0 || len(buf) == 0 {
		return
	}
	img := d.packed
	if img == nil || img.Rect.Dx() != bufWidth || unsafe.SliceData(img.Pix) != unsafe.SliceData(buf) {
		stride := (bufWidth + 1) / 2
		img = pixel.WrapGray4Image(buf, bufWidth, len(buf)/stride)
		d.packed = img
	}
	if opa < OpacityCover {
		// Scale the gray level, the background can't be read back.
		g := pixel.Gray4Model.Convert(c).(pixel.Gray4)
		g.Y = uint8((uint(g.Y)*uint(opa) + 0x7f) / 0xff)
		img.Set(x, y, g)
		return
	}
	img.Set(x, y, c)
}

// SetWindow selects the display RAM window of r for writing.
func (d *ssd1322) SetWindow(r image.Rectangle) error {
	if !r.In(d.bounds()) {
		return ErrBounds
	}

	var (
		columnStart = (d.columnOffset + r.Min.X) >> 2
		columnEnd   = (d.columnOffset+r.Max.X)>>2 - 1
	)
	return d.commands(
		[]byte{ssd1322SetColumnAddress, byte(columnStart), byte(columnEnd)}, // Set column address
		[]byte{ssd1322SetRowAddress, byte(r.Min.Y), byte(r.Max.Y - 1)},      // Set row address
		[]byte{ssd1322WriteRAM}, // Enable MCU to write data into RAM
	)
}

// Flush writes the packed gray levels of area.
func (d *ssd1322) Flush(area image.Rectangle, pix []Color) error {
	if area.Empty() {
		return nil
	}

	var (
		buf  = Bytes(pix)
		size = (area.Dx() + 1) / 2 * area.Dy()
	)
	if err := d.checkFlush(area, buf, size); err != nil {
		return err
	}
	if err := d.SetWindow(area); err != nil {
		return err
	}
	return d.data(buf[:size]...)
}
