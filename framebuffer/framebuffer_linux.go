package framebuffer

import (
	"fmt"
	"image"
	"os"
	"syscall"

	"github.com/BeatGlow/lvdisplay"
	"github.com/BeatGlow/lvdisplay/internal/ioctl"
)

// From <linux/fb.h>
const (
	fbioGetVScreenInfo ioctl.Command = 0x4600
	fbioGetFScreenInfo ioctl.Command = 0x4602
)

// Open a Linux FrameBuffer device (fbdev) by name, typically /dev/fb[0..x].
//
// The display resolution is the visible resolution of the device, the maximum resolution in config
// defaults to it. Draw buffers are set up from config as for any other driver.
func Open(name string, config *lvdisplay.Config) (*FrameBuffer, error) {
	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}

	var (
		fixed  fixScreenInfo
		screen varScreenInfo
	)
	if err = ioctl.Do(f.Fd(), fbioGetFScreenInfo, &fixed); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer: %s: %w", name, err)
	}

	// Request variable screen info.
	if err = ioctl.Do(f.Fd(), fbioGetVScreenInfo, &screen); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer: %s: %w", name, err)
	}
	model, err := screen.pixelFormat().colorModel()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	var (
		width, height = int(screen.Xres), int(screen.Yres)
		buffer        lvdisplay.Config
	)
	if config != nil {
		buffer = *config
	} else {
		buffer.MonitorFlush = lvdisplay.DefaultConfig.MonitorFlush
	}
	if buffer.MaxWidth == 0 {
		buffer.MaxWidth = width
	}
	if buffer.MaxHeight == 0 {
		buffer.MaxHeight = height
	}
	if width > buffer.MaxWidth || height > buffer.MaxHeight {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %dx%d, maximum is %dx%d", lvdisplay.ErrResolution, width, height, buffer.MaxWidth, buffer.MaxHeight)
	}

	// Map pixel buffer.
	mem, err := syscall.Mmap(int(f.Fd()), 0, int(fixed.SmemLen), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer: %s: mmap: %w", name, err)
	}

	var (
		stride = int(fixed.LineLength)
		offset = int(screen.Yoffset)*stride + int(screen.Xoffset)*int(screen.BitsPerPixel+7)/8
	)
	if need := offset + stride*(height-1) + width*int(screen.BitsPerPixel+7)/8; need > len(mem) {
		_ = syscall.Munmap(mem)
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer: %s: %dx%d screen needs %d bytes, mapped %d", name, width, height, need, len(mem))
	}

	fb := &FrameBuffer{
		Base: lvdisplay.NewBase(&buffer, nil, nil),
		name: name,
		f:    f,
		mem:  mem,
		img:  newImage(model, mem[offset:], image.Rect(0, 0, width, height), stride),
	}
	fb.SetResolution(width, height)

	lvdisplay.Logger().Debug("framebuffer: opened",
		"device", name,
		"id", fixed.id(),
		"width", width,
		"height", height,
		"bpp", screen.BitsPerPixel)
	return fb, nil
}

func unmap(mem []byte) error {
	return syscall.Munmap(mem)
}

type fixScreenInfo struct {
	ID         [16]byte  // Identification string eg "TT Builtin"
	SmemStart  uintptr   // Start of frame buffer mem
	SmemLen    uint32    // Length of frame buffer mem
	Type       uint32    // FB_TYPE_
	TypeAux    uint32    // Interleave for interleaved Planes
	Visual     uint32    // FB_VISUAL_
	Xpanstep   uint16    // Zero if no hardware panning
	Ypanstep   uint16    // Zero if no hardware panning
	Ywrapstep  uint16    // Zero if no hardware ywrap
	LineLength uint32    // Length of a line in bytes
	MmioStart  uintptr   // Start of Memory Mapped I/O (physical address)
	MmioLen    uint32    // Length of Memory Mapped I/O
	Accel      uint32    // Type of acceleration available
	Reserved   [3]uint16 // Reserved for future compatibility
}

func (info *fixScreenInfo) id() string {
	for i, b := range info.ID {
		if b == 0 {
			return string(info.ID[:i])
		}
	}
	return string(info.ID[:])
}

// varScreenInfo contains device independent changeable information about a frame buffer device and a specific video mode.
type varScreenInfo struct {
	Xres                    uint32
	Yres                    uint32
	XresVirtual             uint32
	YresVirtual             uint32
	Xoffset                 uint32
	Yoffset                 uint32
	BitsPerPixel            uint32
	Grayscale               uint32
	Red, Green, Blue, Alpha bitField
	Nonstd                  uint32
	Activate                uint32
	Height                  uint32
	Width                   uint32
	AccelFlags              uint32
	Pixclock                uint32
	LeftMargin              uint32
	RightMargin             uint32
	UpperMargin             uint32
	LowerMargin             uint32
	HsyncLen                uint32
	VsyncLen                uint32
	Sync                    uint32
	Vmode                   uint32
	Rotate                  uint32
	Colorspace              uint32
	Reserved                [4]uint32
}

func (info *varScreenInfo) pixelFormat() pixelFormat {
	return pixelFormat{
		BitsPerPixel: info.BitsPerPixel,
		Red:          info.Red,
		Green:        info.Green,
		Blue:         info.Blue,
		Alpha:        info.Alpha,
	}
}
