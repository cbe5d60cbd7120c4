package lvdisplay

import (
	"unsafe"

	"github.com/BeatGlow/lvdisplay/pixel"
)

// Color is a single pixel in the library color depth (16-bit 5-6-5 RGB).
type Color = pixel.CRGB16

// Opacity of a pixel write, from OpacityTransparent to OpacityCover.
type Opacity uint8

// Opacity bounds.
const (
	OpacityTransparent Opacity = 0x00
	OpacityCover       Opacity = 0xff
)

// Bytes returns the raw memory of pix, for drivers that pack pixels in their own format.
func Bytes(pix []Color) []byte {
	if len(pix) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(pix))), len(pix)*int(unsafe.Sizeof(Color{})))
}

// Allocator provides the memory for buffers owned by a driver.
type Allocator interface {
	Alloc(n int) []Color
	Free([]Color)
}

// HeapAllocator allocates from the Go heap and leaves freeing to the garbage collector.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(n int) []Color { return make([]Color, n) }

func (HeapAllocator) Free([]Color) {}

// Buffer is a pixel buffer that is either owned by the driver or borrowed from the caller.
type Buffer interface {
	// Pix are the buffer pixels, nil once an owned buffer is released.
	Pix() []Color

	// Len is the number of pixels.
	Len() int

	// Owned reports if the buffer is released by the driver.
	Owned() bool

	release()
}

// Borrow wraps a caller managed buffer, it is never released by the driver.
func Borrow(pix []Color) Buffer {
	return borrowedBuffer(pix)
}

type borrowedBuffer []Color

func (b borrowedBuffer) Pix() []Color { return b }
func (b borrowedBuffer) Len() int     { return len(b) }
func (b borrowedBuffer) Owned() bool  { return false }
func (b borrowedBuffer) release()     {}

type ownedBuffer struct {
	pix   []Color
	alloc Allocator
}

func allocate(alloc Allocator, n int) *ownedBuffer {
	Logger().Debug("lvdisplay: allocate buffer", "pixels", n)
	return &ownedBuffer{pix: alloc.Alloc(n), alloc: alloc}
}

func (b *ownedBuffer) Pix() []Color { return b.pix }
func (b *ownedBuffer) Len() int     { return len(b.pix) }
func (b *ownedBuffer) Owned() bool  { return true }

func (b *ownedBuffer) release() {
	if b.pix == nil {
		return
	}
	Logger().Debug("lvdisplay: free buffer", "pixels", len(b.pix))
	b.alloc.Free(b.pix)
	b.pix = nil
}

// BufferDescriptor describes the draw buffers to the refresh cycle.
type BufferDescriptor struct {
	// Buf1 is the primary buffer.
	Buf1 []Color

	// Buf2 is the secondary buffer, nil when single buffered.
	Buf2 []Color

	// Size of each buffer in pixels.
	Size int

	active   int
	flushing bool
}

func (desc *BufferDescriptor) init(buf1, buf2 []Color, size int) {
	*desc = BufferDescriptor{
		Buf1: buf1,
		Buf2: buf2,
		Size: size,
	}
}

// DoubleBuffered reports if a secondary buffer is in use.
func (desc *BufferDescriptor) DoubleBuffered() bool {
	return len(desc.Buf2) > 0
}

// Active is the buffer that is currently rendered into.
func (desc *BufferDescriptor) Active() []Color {
	if desc.active == 1 {
		return desc.Buf2
	}
	return desc.Buf1
}

// Swap makes the other buffer active, it does nothing when single buffered.
func (desc *BufferDescriptor) Swap() {
	if desc.DoubleBuffered() {
		desc.active ^= 1
	}
}

// Flushing reports if a flush of the active buffer is in progress.
func (desc *BufferDescriptor) Flushing() bool {
	return desc.flushing
}
