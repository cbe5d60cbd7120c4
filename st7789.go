package lvdisplay

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/lvdisplay/conn"
)

const (
	st7789DefaultWidth  = 240
	st7789DefaultHeight = 240
	st7789BufferRows    = 40

	// st7789BatchSize is the number of bytes sent per data transfer.
	st7789BatchSize = 4096

	// st7789RAMHeight is the number of rows of the controller RAM.
	st7789RAMHeight = 320
)

// Registers (from st7789.pdf).
const (
	st7789SWRESET   = 0x01 // Software Reset
	st7789SLPOUT    = 0x11 // Sleep Out
	st7789INVON     = 0x21 // Display Inversion On
	st7789DISPOFF   = 0x28 // Display Off
	st7789DISPON    = 0x29 // Display On
	st7789CASET     = 0x2A // Column Address Set
	st7789RASET     = 0x2B // Row Address Set
	st7789RAMWR     = 0x2C // Memory Write
	st7789MADCTL    = 0x36 // Memory Data Access Control
	st7789COLMOD    = 0x3A // Interface Pixel Format
	st7789WRDISBV   = 0x51 // Write Display Brightness
	st7789PORCTRL   = 0xB2 // Porch Setting
	st7789GCTRL     = 0xB7 // Gate Control
	st7789VCOMS     = 0xBB // VCOM Setting
	st7789LCMCTRL   = 0xC0 // LCM Control
	st7789VDVVRHEN  = 0xC2 // VDV and VRH Command Enable
	st7789VRHS      = 0xC3 // VRH Set
	st7789VDVSET    = 0xC4 // VDV Set
	st7789VCMOFSET  = 0xC5 // VCOM Offset Set
	st7789FRCTR2    = 0xC6 // Frame Rate Control in Normal Mode
	st7789PWCTRL1   = 0xD0 // Power Control 1
	st7789PVGAMCTRL = 0xE0 // Positive Voltage Gamma Control
	st7789NVGAMCTRL = 0xE1 // Negative Voltage Gamma Control
)

// Memory Data Access Control (MADCTL) bit fields.
const (
	_                           byte = 1 << iota // D0: reserved
	_                                            // D1: reserved
	st7789DisplayDataLatchOrder                  // D2: MH
	st7789RGBOrder                               // D3: RGB
	st7789LineAddressOrder                       // D4: ML
	st7789PageColumnOrder                        // D5: MV
	st7789ColumnAddressOrder                     // D6: MX
	st7789PageAddressOrder                       // D7: MY
)

type st7789 struct {
	panel
	colOffset int
	rowOffset int
	scratch   []byte
}

// ST7789 is a driver for the Sitronix ST7789 16-bit color TFT display.
func ST7789(c Conn, config *PanelConfig) (Panel, error) {
	if config == nil {
		config = new(PanelConfig)
	}

	// Update mode and speed
	if spi, ok := c.(SPI); ok {
		spi.SetDataLow(false)
		if err := spi.SetMode(conn.SPIMode3); err != nil {
			return nil, err
		}
		if err := spi.SetMaxSpeed(40 * physic.MegaHertz); err != nil {
			return nil, err
		}
	}

	d := &st7789{
		panel: panel{c: c},
	}
	if err := d.init(config); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *st7789) Close() error {
	return d.close(d.Show)
}

func (d *st7789) String() string {
	w, h := d.Resolution()
	return fmt.Sprintf("ST7789 %dx%d", w, h)
}

func (d *st7789) init(config *PanelConfig) (err error) {
	if config.Width == 0 {
		config.Width = st7789DefaultWidth
	}
	if config.Height == 0 {
		config.Height = st7789DefaultHeight
	}

	switch config.Rotation & 3 {
	case NoRotation, Rotate180:
		if config.Width > 240 || config.Height > 320 {
			return fmt.Errorf("%w: ST7789 %dx%d, maximum size is 240x320 at %s rotation", ErrUnsupportedSize, config.Width, config.Height, config.Rotation)
		}
	default:
		if config.Width > 320 || config.Height > 240 {
			return fmt.Errorf("%w: ST7789 %dx%d, maximum size is 320x240 at %s rotation", ErrUnsupportedSize, config.Width, config.Height, config.Rotation)
		}
	}

	// init buffers
	if err = d.panel.init(config, st7789BufferRows); err != nil {
		return
	}
	d.scratch = make([]byte, st7789BatchSize)

	// reset the device.
	if err = d.hardReset(); err != nil {
		return
	}
	if err = d.command(st7789SWRESET); err != nil {
		return
	}
	sleep(150 * time.Millisecond)
	if err = d.command(st7789SLPOUT); err != nil { // Sleep Out
		return
	}
	sleep(150 * time.Millisecond)

	if err = d.commands(
		[]byte{st7789COLMOD, 0x05},        // Interface Pixel Format: 8-bit data bus for 16-bit/pixel (RGB 5-6-5-bit input)
		[]byte{st7789PORCTRL, 0x0C, 0x0C}, // Porch Setting: default
		[]byte{st7789GCTRL, 0x35},         // Gate Control: 13.26V / -10.43V (default)
		[]byte{st7789VCOMS, 0x1A},         // VCOM Setting: 0.75V (default is 0x20 / 0.9V)
		[]byte{st7789LCMCTRL, 0x2C},       // LCM Control: default
		[]byte{st7789VDVVRHEN, 0x01},      // VDV and VRH Command Enable: default
		[]byte{st7789VRHS, 0x0B},          // VRH Set: default (4.1V+( vcom+vcom offset+vdv))
		[]byte{st7789VDVSET, 0x20},        // VDV Set: default (0V)
		[]byte{st7789VCMOFSET, 0x20},      // VCOM Offset Set: default (0V)
		[]byte{st7789FRCTR2, 0x0F},        // Frame Rate Control in Normal Mode: 60Hz (default)
		[]byte{st7789PWCTRL1, 0xA4, 0xA1}, // Power Control 1: default
		[]byte{st7789INVON},               // Display Inversion On
		[]byte{st7789PVGAMCTRL, 0x00, 0x19, 0x1E, 0x0A, 0x09, 0x15, 0x3D, 0x44, 0x51, 0x12, 0x03, 0x00, 0x3F, 0x3F}, // Positive Voltage Gamma Control: default
		[]byte{st7789NVGAMCTRL, 0x00, 0x18, 0x1E, 0x0A, 0x09, 0x25, 0x3F, 0x43, 0x52, 0x33, 0x03, 0x00, 0x3F, 0x3F}, // Negative Voltage Gamma Control: default
	); err != nil {
		return
	}

	if err = d.SetRotation(config.Rotation); err != nil {
		return
	}
	return d.Show(true)
}

func (d *st7789) Show(show bool) error {
	var command = byte(st7789DISPOFF)
	if show {
		command = byte(st7789DISPON)
	}
	return d.command(command)
}

// SetContrast sets the display brightness, it needs a panel with brightness control.
func (d *st7789) SetContrast(level uint8) error {
	return d.command(st7789WRDISBV, level)
}

// SetRotation programs the scan direction and the RAM offsets of a panel smaller than the controller.
func (d *st7789) SetRotation(rotation Rotation) error {
	rotation &= 3

	var (
		w, h   = d.Resolution()
		madctl byte
	)
	d.colOffset, d.rowOffset = 0, 0
	switch rotation {
	case NoRotation:
		madctl = 0
	case Rotate90:
		madctl = st7789ColumnAddressOrder | st7789PageColumnOrder
	case Rotate180:
		madctl = st7789ColumnAddressOrder | st7789PageAddressOrder
		d.rowOffset = st7789RAMHeight - h
	case Rotate270:
		madctl = st7789PageAddressOrder | st7789PageColumnOrder
		d.colOffset = st7789RAMHeight - w
	}

	d.rotation = rotation
	return d.command(st7789MADCTL, madctl)
}

// SetWindow selects the inclusive RAM window (x0, y0) - (x1, y1) and starts a memory write.
func (d *st7789) SetWindow(x0, y0, x1, y1 int) error {
	x0 += d.colOffset
	x1 += d.colOffset
	y0 += d.rowOffset
	y1 += d.rowOffset
	return d.commands(
		[]byte{st7789CASET, byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}, // Column address
		[]byte{st7789RASET, byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}, // Row address
		[]byte{st7789RAMWR}, // Write to RAM
	)
}

// Flush streams the area pixels big endian in batches.
func (d *st7789) Flush(area image.Rectangle, pix []Color) error {
	if area.Empty() {
		return nil
	}

	n := area.Dx() * area.Dy()
	if err := d.checkFlush(area, Bytes(pix), n*2); err != nil {
		return err
	}
	if err := d.SetWindow(area.Min.X, area.Min.Y, area.Max.X-1, area.Max.Y-1); err != nil {
		return err
	}

	var (
		batch = d.scratch[:0]
		limit = len(d.scratch)
	)
	for _, c := range pix[:n] {
		batch = append(batch, byte(c.V>>8), byte(c.V))
		if len(batch) == limit {
			if err := d.data(batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		return d.data(batch...)
	}
	return nil
}
