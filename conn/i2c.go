package conn

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

type I2C struct {
	bus  i2c.Bus
	conn conn.Conn
}

// OpenI2C opens the numbered I²C bus, use a negative device to open the first available bus.
func OpenI2C(device int, addr uint8) (*I2C, error) {
	var (
		bus i2c.BusCloser
		err error
	)
	if device < 0 {
		bus, err = i2creg.Open("")
	} else {
		bus, err = i2creg.Open(strconv.FormatInt(int64(device), 10))
	}
	if err != nil {
		return nil, err
	}
	return NewI2C(bus, addr), nil
}

// NewI2C talks to addr on an already opened bus. Close closes the bus if it is an [i2c.BusCloser].
func NewI2C(bus i2c.Bus, addr uint8) *I2C {
	return &I2C{
		bus:  bus,
		conn: &i2c.Dev{Bus: bus, Addr: uint16(addr)},
	}
}

func (c *I2C) String() string {
	return fmt.Sprintf("I²C bus %s", c.bus)
}

func (c *I2C) Close() error {
	if closer, ok := c.bus.(i2c.BusCloser); ok {
		return closer.Close()
	}
	return nil
}

func (c *I2C) Read(p []byte) (int, error) {
	return len(p), c.conn.Tx(nil, p)
}

func (c *I2C) Write(p []byte) (int, error) {
	return len(p), c.conn.Tx(p, nil)
}
