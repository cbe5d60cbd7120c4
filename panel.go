package lvdisplay

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Panel is a driver for a hardware display panel.
type Panel interface {
	Driver
	io.Closer
	fmt.Stringer

	// Show toggles the display on or off.
	Show(bool) error

	// SetContrast adjusts the contrast level.
	SetContrast(level uint8) error
}

// PanelConfig is the panel configuration.
type PanelConfig struct {
	// Width of the display in pixels, 0 uses the panel default.
	Width int

	// Height of the display in pixels, 0 uses the panel default.
	Height int

	// Rotation of the display.
	Rotation Rotation

	// Buffer configures the draw buffers. The maximum resolution defaults to the panel size and
	// the allocated buffer to a panel specific number of rows.
	Buffer *Config

	// Primary is an optional caller managed draw buffer.
	Primary []Color

	// Secondary is an optional second draw buffer of the same size as Primary.
	Secondary []Color
}

// sleep waits for the panel controller, replaced in tests.
var sleep = time.Sleep

type panel struct {
	*Base
	c        Conn
	rotation Rotation
	halted   bool
}

// init sets up the draw buffers for the configured panel size. The default buffer holds rows
// lines of the display.
func (p *panel) init(config *PanelConfig, rows int) error {
	var buffer Config
	if config.Buffer != nil {
		buffer = *config.Buffer
	} else {
		buffer.MonitorFlush = DefaultConfig.MonitorFlush
	}
	if buffer.MaxWidth == 0 {
		buffer.MaxWidth = config.Width
	}
	if buffer.MaxHeight == 0 {
		buffer.MaxHeight = config.Height
	}
	if buffer.DefaultBufferSize == 0 {
		buffer.DefaultBufferSize = config.Width * min(rows, config.Height)
	}
	if config.Width > buffer.MaxWidth || config.Height > buffer.MaxHeight {
		return fmt.Errorf("%w: %dx%d, maximum is %dx%d", ErrResolution, config.Width, config.Height, buffer.MaxWidth, buffer.MaxHeight)
	}
	if len(config.Secondary) > 0 && len(config.Secondary) != len(config.Primary) {
		return fmt.Errorf("%w: primary has %d pixels, secondary has %d", ErrBufferMismatch, len(config.Primary), len(config.Secondary))
	}

	p.Base = NewBase(&buffer, config.Primary, config.Secondary)
	p.Base.SetResolution(config.Width, config.Height)
	p.rotation = config.Rotation
	return nil
}

func (p *panel) bounds() image.Rectangle {
	w, h := p.Resolution()
	return image.Rect(0, 0, w, h)
}

// checkFlush validates that area is on screen and that the buffer holds size bytes.
func (p *panel) checkFlush(area image.Rectangle, buf []byte, size int) error {
	if !area.In(p.bounds()) {
		return fmt.Errorf("%w: area %s", ErrBounds, area)
	}
	if len(buf) < size {
		return fmt.Errorf("%w: area %s needs %d bytes, buffer has %d", ErrBounds, area, size, len(buf))
	}
	return nil
}

func (p *panel) data(data ...byte) error {
	return p.c.Data(data...)
}

func (p *panel) command(command byte, data ...byte) error {
	return p.c.Command(command, data...)
}

func (p *panel) commands(commands ...[]byte) (err error) {
	for _, command := range commands {
		if err = p.c.Command(command[0], command[1:]...); err != nil {
			return
		}
	}
	return
}

// hardReset toggles the reset line.
func (p *panel) hardReset() (err error) {
	for _, step := range []struct {
		high  bool
		delay time.Duration
	}{
		{true, 100 * time.Millisecond},
		{false, 100 * time.Millisecond},
		{true, 10 * time.Millisecond},
	} {
		if err = p.c.Reset(gpio.Level(step.high)); err != nil {
			return
		}
		sleep(step.delay)
	}
	return
}

// close turns the display off, closes the connection and releases the draw buffers.
func (p *panel) close(show func(bool) error) error {
	var err error
	if !p.halted {
		err = show(false)
		p.halted = true
	}
	return errors.Join(err, p.c.Close(), p.Base.Close())
}
