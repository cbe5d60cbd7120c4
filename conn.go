package lvdisplay

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/lvdisplay/conn"
)

// Conn errors.
var (
	ErrResetPin = errors.New("lvdisplay: reset GPIO pin is invalid")
	ErrDCPin    = errors.New("lvdisplay: data/command (DC) GPIO pin is invalid")
)

// Conn is the connection interface for communicating with hardware.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Reset sets the reset pin to the provided level.
	Reset(gpio.Level) error

	// Command sends a command byte with optional arguments.
	Command(byte, ...byte) error

	// Data sends data bytes.
	Data(...byte) error
}

type SPI interface {
	Conn

	// SetDataLow changes the data/command direction behaviour.
	SetDataLow(bool)

	// SetMode requests a SPI mode.
	SetMode(mode conn.SPIMode) error

	// SetMaxSpeed requests a SPI speed.
	SetMaxSpeed(f physic.Frequency) error
}

// I2CConfig describes the I²C bus configuration.
type I2CConfig struct {
	// Device is the I²C device, use -1 to use the first available device.
	Device int

	// Addr is the I²C address.
	Addr uint8

	// Reset pin, optional.
	Reset gpio.PinOut
}

var DefaultI2CConfig = I2CConfig{
	Device: -1,
	Addr:   0x3c,
}

type i2cConn struct {
	*conn.I2C
	reset gpio.PinOut
}

func OpenI2C(config *I2CConfig) (Conn, error) {
	if config == nil {
		config = new(I2CConfig)
		*config = DefaultI2CConfig
	}

	c, err := conn.OpenI2C(config.Device, config.Addr)
	if err != nil {
		return nil, err
	}

	return &i2cConn{
		I2C:   c,
		reset: config.Reset,
	}, nil
}

// NewI2C uses an opened I²C bus, reset may be nil.
func NewI2C(bus i2c.Bus, addr uint8, reset gpio.PinOut) Conn {
	return &i2cConn{
		I2C:   conn.NewI2C(bus, addr),
		reset: reset,
	}
}

func (c *i2cConn) Command(cmnd byte, args ...byte) (err error) {
	_, err = c.I2C.Write(append([]byte{0x00, cmnd}, args...))
	return
}

func (c *i2cConn) Data(data ...byte) (err error) {
	_, err = c.I2C.Write(append([]byte{0x40}, data...))
	return
}

func (c *i2cConn) Reset(level gpio.Level) error {
	if c.reset == nil || c.reset == gpio.INVALID {
		return nil
	}
	return c.reset.Out(level)
}

// SPIConfig describes the SPI bus configuration.
type SPIConfig struct {
	Bus    int
	Device int

	// Mode is the clock polarity and phase, see [conn.SPIMode0] to [conn.SPIMode3].
	Mode conn.SPIMode

	// Speed is the maximum bus clock, zero selects the default.
	Speed physic.Frequency

	DataLow   bool
	BatchSize uint
	Reset     gpio.PinOut
	DC        gpio.PinOut
	CE        gpio.PinOut
}

// DefaultSPIConfig are the default configuration values.
var DefaultSPIConfig = SPIConfig{
	Bus:       0,
	Device:    0,
	Mode:      conn.SPIMode0,
	Speed:     8 * physic.MegaHertz,
	BatchSize: 4096,
	Reset:     gpioreg.ByName("GPIO25"),
	DC:        gpioreg.ByName("GPIO24"),
}

// ValidSPISpeeds are common valid SPI bus speeds.
var ValidSPISpeeds = []physic.Frequency{
	500 * physic.KiloHertz,
	1 * physic.MegaHertz,
	2 * physic.MegaHertz,
	4 * physic.MegaHertz,
	8 * physic.MegaHertz,
	16 * physic.MegaHertz,
	20 * physic.MegaHertz,
	24 * physic.MegaHertz,
	28 * physic.MegaHertz,
	32 * physic.MegaHertz,
	36 * physic.MegaHertz,
	40 * physic.MegaHertz,
	48 * physic.MegaHertz,
	50 * physic.MegaHertz,
	52 * physic.MegaHertz,
}

// spiBus is the part of [conn.SPI] used by spiConn.
type spiBus interface {
	io.Writer
	Close() error
	String() string
	SetMode(conn.SPIMode) error
	SetMaxSpeed(physic.Frequency) error
}

type spiConn struct {
	bus       spiBus
	reset     gpio.PinOut
	dc        gpio.PinOut
	dcLevel   gpio.Level
	dcSet     bool
	cs        gpio.PinOut
	dataLow   bool
	batchSize uint
}

func OpenSPI(config *SPIConfig) (Conn, error) {
	if config == nil {
		config = new(SPIConfig)
		*config = DefaultSPIConfig
	}

	if config.Speed > 0 && !validSPISpeed(config.Speed) {
		return nil, fmt.Errorf("lvdisplay: invalid SPI speed %s", config.Speed)
	}

	c, err := conn.OpenSPI(config.Bus, config.Device)
	if err != nil {
		return nil, err
	}

	s, err := newSPIConn(c, config)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return s, nil
}

func validSPISpeed(f physic.Frequency) bool {
	for _, speed := range ValidSPISpeeds {
		if speed == f {
			return true
		}
	}
	return false
}

func newSPIConn(bus spiBus, config *SPIConfig) (*spiConn, error) {
	if config.Reset == nil || config.Reset == gpio.INVALID {
		return nil, ErrResetPin
	}
	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}

	if err := bus.SetMode(config.Mode); err != nil {
		return nil, err
	}
	speed := config.Speed
	if speed == 0 {
		speed = DefaultSPIConfig.Speed
	}
	if err := bus.SetMaxSpeed(speed); err != nil {
		return nil, err
	}

	batchSize := config.BatchSize
	if batchSize == 0 {
		batchSize = DefaultSPIConfig.BatchSize
	}

	return &spiConn{
		bus:       bus,
		batchSize: batchSize,
		dataLow:   config.DataLow,
		reset:     config.Reset,
		dc:        config.DC,
		cs:        config.CE,
	}, nil
}

func (c *spiConn) String() string {
	return fmt.Sprintf("SPI bus %s", c.bus)
}

func (c *spiConn) Close() error {
	return c.bus.Close()
}

func (c *spiConn) Reset(level gpio.Level) error {
	return c.reset.Out(level)
}

func (c *spiConn) updateDC(level gpio.Level) error {
	if !c.dcSet || c.dcLevel != level {
		if err := c.dc.Out(level); err != nil {
			return err
		}
		c.dcLevel = level
		c.dcSet = true
	}
	return nil
}

func (c *spiConn) updateCS(level gpio.Level) error {
	if c.cs == nil || c.cs == gpio.INVALID {
		return nil
	}
	return c.cs.Out(level)
}

// Command sends cmnd with the DC pin in command mode, followed by its arguments in data mode.
func (c *spiConn) Command(cmnd byte, data ...byte) (err error) {
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	defer func() { err = errors.Join(err, c.updateCS(gpio.High)) }()

	if err = c.updateDC(gpio.Level(c.dataLow)); err != nil {
		return
	}
	if _, err = c.bus.Write([]byte{cmnd}); err != nil {
		return
	}
	if len(data) > 0 {
		if err = c.updateDC(gpio.Level(!c.dataLow)); err != nil {
			return
		}
		err = c.writeChunked(data)
	}
	return
}

func (c *spiConn) Data(data ...byte) (err error) {
	if len(data) == 0 {
		return
	}
	if err = c.updateDC(gpio.Level(!c.dataLow)); err != nil {
		return
	}
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	defer func() { err = errors.Join(err, c.updateCS(gpio.High)) }()

	return c.writeChunked(data)
}

func (c *spiConn) writeChunked(data []byte) (err error) {
	size := int(c.batchSize)
	if len(data) <= size {
		_, err = c.bus.Write(data)
		return
	}

	Logger().Debug("lvdisplay: chunked SPI write", "bytes", len(data), "chunks", (len(data)+size-1)/size)
	for len(data) > 0 {
		n := min(size, len(data))
		if _, err = c.bus.Write(data[:n]); err != nil {
			Logger().Warn("lvdisplay: SPI write failed", "error", err)
			return
		}
		data = data[n:]
	}
	return
}

func (c *spiConn) SetDataLow(v bool) {
	c.dataLow = v
}

func (c *spiConn) SetMode(mode conn.SPIMode) error {
	return c.bus.SetMode(mode)
}

func (c *spiConn) SetMaxSpeed(f physic.Frequency) error {
	return c.bus.SetMaxSpeed(f)
}

// Interface checks.
var (
	_ SPI = (*spiConn)(nil)
)
