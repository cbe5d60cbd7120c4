package conn

import (
	"fmt"
	"os"

	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/lvdisplay/internal/ioctl"
)

// SPIMode is the clock polarity (CPOL) and phase (CPHA) of a SPI bus.
type SPIMode uint8

// Definitions from <spi/spidev.h>
const (
	spiCPHA SPIMode = 0x01
	spiCPOL SPIMode = 0x02

	// spiModeMask covers the mode bits controlled through SetMode.
	spiModeMask SPIMode = 0x0f
)

const (
	SPIMode0 SPIMode = 0
	SPIMode1         = spiCPHA
	SPIMode2         = spiCPOL
	SPIMode3         = spiCPOL | spiCPHA
)

func (mode SPIMode) String() string {
	return fmt.Sprintf("mode %d (CPOL=%d CPHA=%d)", mode&(spiCPOL|spiCPHA), mode&spiCPOL>>1, mode&spiCPHA)
}

// spidev ioctl numbers, magic 'k'.
const (
	spiIOCMode        = 0x6b01
	spiIOCBitsPerWord = 0x6b03
	spiIOCMaxSpeedHz  = 0x6b04
)

// spiDevPath is the prefix of the spidev character devices, followed by "<bus>.<device>".
const spiDevPath = "/dev/spidev"

// SPI is a spidev character device. Writes are half duplex transfers.
type SPI struct {
	f           *os.File
	fd          uintptr
	mode        SPIMode
	bitsPerWord uint8
	maxSpeedHz  uint32
}

// OpenSPI opens spidev<bus>.<device> and reads its current settings. The device often
// corresponds to the CS pin for that bus.
func OpenSPI(bus, device int) (*SPI, error) {
	name := fmt.Sprintf("%s%d.%d", spiDevPath, bus, device)
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	c := &SPI{f: f, fd: f.Fd()}
	if err = c.readSettings(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("conn: %s: %w", name, err)
	}
	return c, nil
}

func (c *SPI) read(command uintptr, value any) error {
	return ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, value, command), value)
}

func (c *SPI) write(command uintptr, value any) error {
	return ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, value, command), value)
}

func (c *SPI) readSettings() error {
	if err := c.read(spiIOCMode, &c.mode); err != nil {
		return err
	}
	if err := c.read(spiIOCBitsPerWord, &c.bitsPerWord); err != nil {
		return err
	}
	return c.read(spiIOCMaxSpeedHz, &c.maxSpeedHz)
}

func (c *SPI) Close() error {
	return c.f.Close()
}

func (c *SPI) String() string {
	return fmt.Sprintf("%s %s, %d bits per word, max %s", c.f.Name(), c.mode, c.bitsPerWord, c.MaxSpeed())
}

func (c *SPI) Mode() SPIMode {
	return c.mode
}

// SetMode programs the mode and reads it back, drivers may refuse modes they don't support.
func (c *SPI) SetMode(mode SPIMode) error {
	mode &= spiModeMask
	if err := c.write(spiIOCMode, &mode); err != nil {
		return err
	}

	var current SPIMode
	if err := c.read(spiIOCMode, &current); err != nil {
		return err
	}
	if current != mode {
		return fmt.Errorf("conn: SPI %s requested, but %s is in use", mode, current)
	}
	c.mode = mode
	return nil
}

func (c *SPI) BitsPerWord() uint8 {
	return c.bitsPerWord
}

func (c *SPI) SetBitsPerWord(bits uint8) error {
	if bits < 8 || bits > 32 {
		return fmt.Errorf("conn: SPI bits per word need to be 8 or more and 32 or less, got %d", bits)
	}
	if c.bitsPerWord == bits {
		return nil
	}
	if err := c.write(spiIOCBitsPerWord, &bits); err != nil {
		return err
	}
	c.bitsPerWord = bits
	return nil
}

func (c *SPI) MaxSpeed() physic.Frequency {
	return physic.Frequency(c.maxSpeedHz) * physic.Hertz
}

// SetMaxSpeed sets the maximum clock, rounded down to whole Hertz. Zero or negative keeps the current speed.
func (c *SPI) SetMaxSpeed(f physic.Frequency) error {
	if f < physic.Hertz {
		return nil
	}

	hz := uint32(f / physic.Hertz)
	if c.maxSpeedHz == hz {
		return nil
	}
	if err := c.write(spiIOCMaxSpeedHz, &hz); err != nil {
		return err
	}
	c.maxSpeedHz = hz
	return nil
}

func (c *SPI) Read(b []byte) (n int, err error) {
	return c.f.Read(b)
}

func (c *SPI) Write(b []byte) (n int, err error) {
	return c.f.Write(b)
}
