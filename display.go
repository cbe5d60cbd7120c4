// Package lvdisplay adapts hardware displays to the driver interface of an embedded graphics library.
//
// A panel driver embeds [Base], which owns (or borrows) the pixel buffers handed to the library and
// keeps the display resolution, and implements the [Driver] hooks the library calls during its
// refresh cycle. [Register] wires a driver into the library and [Display.Refresh] runs one refresh
// cycle over the invalidated areas.
package lvdisplay

import (
	"errors"
	"os"
)

var debug = os.Getenv("DISPLAY_DEBUG") != ""

// Errors
var (
	ErrBounds          = errors.New("lvdisplay: out of display bounds")
	ErrBufferMismatch  = errors.New("lvdisplay: primary and secondary buffer sizes differ")
	ErrResolution      = errors.New("lvdisplay: resolution exceeds the configured maximum")
	ErrRegistered      = errors.New("lvdisplay: driver is already registered")
	ErrBufferTooSmall  = errors.New("lvdisplay: buffer can not hold a single line")
	ErrUnsupportedSize = errors.New("lvdisplay: unsupported panel size")
)

// Rotation defines pixel rotation.
type Rotation uint8

// Supported rotations.
const (
	NoRotation Rotation = iota
	Rotate90            // Rotate 90° clock wise
	Rotate180           // Rotate 180°
	Rotate270           // Rotate 270° clock wise
)

func (r Rotation) String() string {
	switch r % 4 {
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return "0°"
	}
}

// Config is the driver buffer configuration.
type Config struct {
	// MaxWidth is the largest horizontal resolution accepted by SetResolution.
	MaxWidth int

	// MaxHeight is the largest vertical resolution accepted by SetResolution.
	MaxHeight int

	// DefaultBufferSize is the size in pixels of the primary buffer allocated when none is supplied.
	DefaultBufferSize int

	// MonitorFlush logs the refreshed pixel count and duration after every refresh cycle.
	MonitorFlush bool

	// Allocator provides owned buffers, defaults to the heap.
	Allocator Allocator
}

// DefaultConfig are the default configuration values.
var DefaultConfig = Config{
	MaxWidth:          480,
	MaxHeight:         320,
	DefaultBufferSize: 480 * 320 / 10,
	MonitorFlush:      debug,
	Allocator:         HeapAllocator{},
}

// withDefaults returns a copy of config with the zero fields taken from DefaultConfig.
func (config *Config) withDefaults() Config {
	if config == nil {
		return DefaultConfig
	}
	c := *config
	if c.MaxWidth == 0 {
		c.MaxWidth = DefaultConfig.MaxWidth
	}
	if c.MaxHeight == 0 {
		c.MaxHeight = DefaultConfig.MaxHeight
	}
	if c.DefaultBufferSize == 0 {
		c.DefaultBufferSize = c.MaxWidth * c.MaxHeight / 10
	}
	if c.Allocator == nil {
		c.Allocator = DefaultConfig.Allocator
	}
	return c
}
