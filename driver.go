package lvdisplay

import (
	"fmt"
	"image"
	"time"
)

// Driver is the hook surface called by the refresh cycle.
//
// Implementations embed [*Base] for the buffer bookkeeping and default hooks, and implement Flush.
type Driver interface {
	// Flush transfers pix to area on the display.
	//
	// The transfer may use DMA or other hardware acceleration, but Flush must not return before the
	// transfer completed: the buffer is reused as soon as Flush returns.
	Flush(area image.Rectangle, pix []Color) error

	// HasRounder reports if RoundArea adjusts areas.
	HasRounder() bool

	// RoundArea extends an invalidated area to the boundaries the display can address, for example
	// whole 8 row pages on a monochrome display.
	RoundArea(area *image.Rectangle)

	// HasPixelWriteFunction reports if SetPixel packs pixels.
	HasPixelWriteFunction() bool

	// SetPixel writes a pixel into buf in the display native format. The buffer is bufWidth pixels
	// wide and x, y are relative to the area being rendered.
	SetPixel(buf []byte, bufWidth, x, y int, c Color, opa Opacity)

	// Monitor is called after every refresh cycle with the time spent and number of pixels flushed.
	Monitor(elapsed time.Duration, px uint32)

	// Resolution is the display size in pixels.
	Resolution() (width, height int)

	// BufferDescriptor describes the draw buffers.
	BufferDescriptor() *BufferDescriptor

	// SetDisplayHandle is called once on registration.
	SetDisplayHandle(*Display)

	// DisplayHandle is the display this driver is registered as, nil before registration.
	DisplayHandle() *Display
}

// Base implements the buffer bookkeeping and default hooks of a Driver.
//
// The default hooks do not round areas, do not pack pixels and only log in Monitor.
type Base struct {
	config    Config
	primary   Buffer
	secondary Buffer
	width     int
	height    int
	desc      BufferDescriptor
	handle    *Display
}

// NewBase sets up the driver buffers.
//
// Without a primary buffer, one of [Config.DefaultBufferSize] pixels is allocated and released on
// Close. A supplied primary buffer is borrowed and never released. The optional secondary buffer
// enables double buffering and must have the same length as the primary buffer.
//
// NewBase panics with [ErrBufferMismatch] if the buffer lengths differ.
func NewBase(config *Config, primary, secondary []Color) *Base {
	b := &Base{
		config: config.withDefaults(),
	}
	b.width = b.config.MaxWidth
	b.height = b.config.MaxHeight

	if len(primary) == 0 {
		b.primary = allocate(b.config.Allocator, b.config.DefaultBufferSize)
	} else {
		b.primary = Borrow(primary)
	}

	if len(secondary) > 0 {
		if n := b.primary.Len(); len(secondary) != n {
			b.primary.release()
			panic(fmt.Errorf("%w: primary has %d pixels, secondary has %d", ErrBufferMismatch, n, len(secondary)))
		}
		b.secondary = Borrow(secondary)
	}

	b.initBufferDescriptor()
	return b
}

func (b *Base) initBufferDescriptor() {
	var buf2 []Color
	if b.secondary != nil {
		buf2 = b.secondary.Pix()
	}
	b.desc.init(b.primary.Pix(), buf2, b.primary.Len())
}

// Close releases the primary buffer if it was allocated by NewBase.
func (b *Base) Close() error {
	b.primary.release()
	return nil
}

// Primary is the primary buffer.
func (b *Base) Primary() Buffer {
	return b.primary
}

// Secondary is the secondary buffer, nil when single buffered.
func (b *Base) Secondary() Buffer {
	return b.secondary
}

// SetResolution sets the display resolution, it must be called before registration.
//
// SetResolution panics with [ErrResolution] if a dimension exceeds the configured maximum and with
// [ErrRegistered] once the driver is registered. The resolution is not checked against the buffer
// size.
func (b *Base) SetResolution(width, height int) {
	if width < 0 || width > b.config.MaxWidth || height < 0 || height > b.config.MaxHeight {
		panic(fmt.Errorf("%w: %dx%d, maximum is %dx%d", ErrResolution, width, height, b.config.MaxWidth, b.config.MaxHeight))
	}
	if b.handle != nil {
		panic(fmt.Errorf("%w: can't change the resolution", ErrRegistered))
	}
	b.width = width
	b.height = height
}

// Resolution is the display resolution.
func (b *Base) Resolution() (width, height int) {
	return b.width, b.height
}

func (b *Base) HasRounder() bool {
	return false
}

func (b *Base) RoundArea(_ *image.Rectangle) {}

func (b *Base) HasPixelWriteFunction() bool {
	return false
}

func (b *Base) SetPixel(_ []byte, _, _, _ int, _ Color, _ Opacity) {}

// Monitor logs the refresh statistics if [Config.MonitorFlush] is enabled.
func (b *Base) Monitor(elapsed time.Duration, px uint32) {
	if b.config.MonitorFlush {
		Logger().Info("lvdisplay: px refreshed", "px", px, "elapsed", elapsed)
	}
}

func (b *Base) BufferDescriptor() *BufferDescriptor {
	return &b.desc
}

// SetDisplayHandle panics with [ErrRegistered] if a handle was already set.
func (b *Base) SetDisplayHandle(d *Display) {
	if b.handle != nil {
		panic(ErrRegistered)
	}
	b.handle = d
}

func (b *Base) DisplayHandle() *Display {
	return b.handle
}
