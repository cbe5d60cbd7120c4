package pixel

import "image/color"

// Models for the standard color types.
var (
	MonoModel   color.Model = color.ModelFunc(monoModel)
	Gray4Model  color.Model = color.ModelFunc(gray4Model)
	CRGB15Model color.Model = color.ModelFunc(crgb15Model)
	CRGB16Model color.Model = color.ModelFunc(crgb16Model)
	CBGR16Model color.Model = color.ModelFunc(cbgr16Model)
)

var (
	Off = Mono{false}
	On  = Mono{true}
)

// Mono represents a 1-bit monochrome color.
type Mono struct {
	On bool
}

func (c Mono) RGBA() (r, g, b, a uint32) {
	if c.On {
		return 0xffff, 0xffff, 0xffff, 0xffff
	}
	return 0, 0, 0, 0xffff
}

func monoModel(c color.Color) color.Color {
	if _, ok := c.(Mono); ok {
		return c
	}
	r, g, b, _ := c.RGBA()

	// Same luma weights as the JFIF specification; 19595 + 38470 + 7471 equals 65536.
	// The 31 is 16 + 15: 16 bits of weight and 15 bits of the 16-bit component.
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 31

	return Mono{On: y != 0}
}

// Gray4 represents a 4-bit grayscale color.
type Gray4 struct {
	Y uint8
}

func (c Gray4) RGBA() (r, g, b, a uint32) {
	y := uint32(c.Y & 0xf)
	y |= y << 4
	y |= y << 8
	return y, y, y, 0xffff
}

func gray4Model(c color.Color) color.Color {
	if _, ok := c.(Gray4); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Gray4{Y: uint8(y>>12) & 0xf}
}

// CRGB15 represents a 15-bit 5-5-5 RGB color.
type CRGB15 struct {
	// CIgnore, 1, CRed, 5, CGreen, 5, CBlue, 5
	V uint16
}

func (c CRGB15) RGBA() (r, g, b, a uint32) {
	return expand5(c.V >> 10), expand5(c.V >> 5), expand5(c.V), 0xffff
}

func crgb15Model(c color.Color) color.Color {
	if _, ok := c.(CRGB15); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	r = (r & 0xF800) >> 1
	g = (g & 0xF800) >> 6
	b = (b & 0xF800) >> 11
	return CRGB15{uint16(r | g | b)}
}

// CRGB16 represents a 16-bit 5-6-5 RGB color.
type CRGB16 struct {
	// CRed, 5, CGreen, 6, CBlue, 5
	V uint16
}

// RGB565 packs 8-bit components into a 5-6-5 color.
func RGB565(r, g, b uint8) CRGB16 {
	return CRGB16{uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3}
}

func (c CRGB16) RGBA() (r, g, b, a uint32) {
	return expand5(c.V >> 11), expand6(c.V >> 5), expand5(c.V), 0xffff
}

func crgb16Model(c color.Color) color.Color {
	switch c := c.(type) {
	case Mono:
		if c.On {
			return CRGB16{0xffff}
		}
		return CRGB16{}
	case CRGB16:
		return c
	default:
		r, g, b, _ := c.RGBA()
		r = (r & 0xF800)
		g = (g & 0xFC00) >> 5
		b = (b & 0xF800) >> 11
		return CRGB16{uint16(r | g | b)}
	}
}

// CBGR16 represents a 16-bit 5-6-5 BGR color.
type CBGR16 struct {
	// CBlue, 5, CGreen, 6, CRed, 5
	V uint16
}

func (c CBGR16) RGBA() (r, g, b, a uint32) {
	return expand5(c.V), expand6(c.V >> 5), expand5(c.V >> 11), 0xffff
}

func cbgr16Model(c color.Color) color.Color {
	if _, ok := c.(CBGR16); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	b = (b & 0xF800)
	g = (g & 0xFC00) >> 5
	r = (r & 0xF800) >> 11
	return CBGR16{uint16(r | g | b)}
}

// Mix blends fg over bg with the given 8-bit opacity, 0 keeps bg and 255 yields fg.
func Mix(fg, bg CRGB16, opa uint8) CRGB16 {
	switch opa {
	case 0:
		return bg
	case 0xff:
		return fg
	}
	var (
		a   = uint32(opa)
		na  = 0xff - a
		mix = func(f, b uint16) uint16 {
			return uint16((uint32(f)*a + uint32(b)*na + 0x80) / 0xff)
		}
	)
	r := mix(fg.V>>11, bg.V>>11) & 0x1f
	g := mix(fg.V>>5&0x3f, bg.V>>5&0x3f) & 0x3f
	b := mix(fg.V&0x1f, bg.V&0x1f) & 0x1f
	return CRGB16{r<<11 | g<<5 | b}
}

// expand5 scales the low 5 bits of v to a 16-bit component.
func expand5(v uint16) uint32 {
	c := uint32(v & 0x1f)
	c = c<<3 | c>>2
	return c | c<<8
}

// expand6 scales the low 6 bits of v to a 16-bit component.
func expand6(v uint16) uint32 {
	c := uint32(v & 0x3f)
	c = c<<2 | c>>4
	return c | c<<8
}
