package pixel

import (
	"image/color"
	"testing"
)

func TestMono(t *testing.T) {
	for y := 0; y < 2; y++ {
		t.Run("", func(it *testing.T) {
			c := Off
			if y > 0 {
				c = On
			}
			r, g, b, _ := c.RGBA()
			y := y * 0xF
			want := uint32(y | y<<4 | y<<8 | y<<12)
			if r != want {
				it.Errorf("expected red to be %#04x, got %#04x", want, r)
			}
			if g != want {
				it.Errorf("expected green to be %#04x, got %#04x", want, g)
			}
			if b != want {
				it.Errorf("expected blue to be %#04x, got %#04x", want, b)
			}
		})
	}
}

func TestGray4(t *testing.T) {
	for y := 0; y < 16; y++ {
		t.Run("", func(it *testing.T) {
			c := Gray4{Y: uint8(y)}
			r, g, b, _ := c.RGBA()
			want := uint32(y | y<<4 | y<<8 | y<<12)
			if r != want {
				it.Errorf("expected red to be %#04x, got %#04x", want, r)
			}
			if g != want {
				it.Errorf("expected green to be %#04x, got %#04x", want, g)
			}
			if b != want {
				it.Errorf("expected blue to be %#04x, got %#04x", want, b)
			}
			if v := Gray4Model.Convert(c); v != c {
				it.Errorf("expected %v to convert to itself, got %v", c, v)
			}
		})
	}
}

func TestRGB565(t *testing.T) {
	tests := []struct {
		Name    string
		R, G, B uint8
		Want    uint16
	}{
		{"black", 0x00, 0x00, 0x00, 0x0000},
		{"white", 0xff, 0xff, 0xff, 0xffff},
		{"red", 0xff, 0x00, 0x00, 0xf800},
		{"green", 0x00, 0xff, 0x00, 0x07e0},
		{"blue", 0x00, 0x00, 0xff, 0x001f},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			c := RGB565(test.R, test.G, test.B)
			if c.V != test.Want {
				it.Errorf("expected %#04x, got %#04x", test.Want, c.V)
			}
			if v := CRGB16Model.Convert(color.RGBA{R: test.R, G: test.G, B: test.B, A: 0xff}); v != c {
				it.Errorf("expected model to convert to %#04x, got %v", test.Want, v)
			}
		})
	}
}

func TestCBGR16(t *testing.T) {
	c := CBGR16Model.Convert(color.RGBA{R: 0xff, A: 0xff}).(CBGR16)
	if c.V != 0x001f {
		t.Errorf("expected red in the low bits, got %#04x", c.V)
	}
	r, g, b, _ := c.RGBA()
	if r != 0xffff || g != 0 || b != 0 {
		t.Errorf("expected pure red, got %#04x %#04x %#04x", r, g, b)
	}
}

func TestMix(t *testing.T) {
	var (
		white = RGB565(0xff, 0xff, 0xff)
		black = RGB565(0x00, 0x00, 0x00)
	)
	tests := []struct {
		Name string
		Opa  uint8
		Want CRGB16
	}{
		{"transparent", 0x00, black},
		{"cover", 0xff, white},
		{"half", 0x80, CRGB16{0x10<<11 | 0x20<<5 | 0x10}},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			if v := Mix(white, black, test.Opa); v != test.Want {
				it.Errorf("expected %#04x, got %#04x", test.Want.V, v.V)
			}
		})
	}
}
