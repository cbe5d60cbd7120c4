package pixel

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/BeatGlow/lvdisplay/draw"
)

type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Buffer holds the pixel values and is a container that is used by most image formats in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

func (p *Buffer) fill(value byte) {
	for i := range p.Pix {
		p.Pix[i] = value
	}
}

func makeBuffer(w, h, stride, size int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, size),
		Stride: stride,
	}
}

// MonoVerticalLSBImage is a 1-bit per pixel monochrome image.
//
// Every byte holds a column of 8 vertically adjacent pixels, least significant bit on top. This is the
// page layout of SSD1306 and SH1106 OLED controllers.
type MonoVerticalLSBImage struct {
	Buffer
}

func NewMonoVerticalLSBImage(w, h int) *MonoVerticalLSBImage {
	bands := ((h + 7) & ^7) / 8 // round up to whole bytes
	return &MonoVerticalLSBImage{
		Buffer: makeBuffer(w, h, w, bands*w),
	}
}

// MonoVerticalLSBSize is the number of bytes needed for a w by h vertical LSB image.
func MonoVerticalLSBSize(w, h int) int {
	return w * ((h + 7) / 8)
}

// WrapMonoVerticalLSBImage uses pix as the backing store of a w by h image. It returns nil if pix is too short.
func WrapMonoVerticalLSBImage(pix []byte, w, h int) *MonoVerticalLSBImage {
	size := MonoVerticalLSBSize(w, h)
	if len(pix) < size {
		return nil
	}
	return &MonoVerticalLSBImage{
		Buffer: Buffer{Rect: image.Rect(0, 0, w, h), Pix: pix[:size], Stride: w},
	}
}

func (p *MonoVerticalLSBImage) ColorModel() color.Model {
	return MonoModel
}

func (p *MonoVerticalLSBImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	var (
		pos = y/8*p.Stride + x
		bit = byte(1) << uint(y&7)
	)
	return Mono{
		On: p.Pix[pos]&bit != 0,
	}
}

func (p *MonoVerticalLSBImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	var (
		pos = y/8*p.Stride + x
		bit = byte(1) << uint(y&7)
	)
	if monoModel(c).(Mono).On {
		p.Pix[pos] |= bit
	} else {
		p.Pix[pos] &^= bit
	}
}

func (p *MonoVerticalLSBImage) Fill(c color.Color) {
	var value byte
	if monoModel(c).(Mono).On {
		value = 0xff
	}
	p.fill(value)
}

// Gray4Image is a 4-bits per pixel gray scale image, the left pixel of a pair is in the high nibble.
type Gray4Image struct {
	Buffer
}

func NewGray4Image(w, h int) *Gray4Image {
	return &Gray4Image{
		Buffer: makeBuffer(w, h, (w+1)/2, h*((w+1)/2)),
	}
}

// WrapGray4Image uses pix as the backing store of a w by h image. It returns nil if pix is too short.
func WrapGray4Image(pix []byte, w, h int) *Gray4Image {
	stride := (w + 1) / 2
	if len(pix) < stride*h {
		return nil
	}
	return &Gray4Image{
		Buffer: Buffer{Rect: image.Rect(0, 0, w, h), Pix: pix[:stride*h], Stride: stride},
	}
}

func (p *Gray4Image) ColorModel() color.Model {
	return Gray4Model
}

func (p *Gray4Image) At(x, y int) color.Color {
	if !(image.Point{x, y}).In(p.Rect) {
		return color.Transparent
	}

	index := y*p.Stride + x>>1
	if x%2 == 0 {
		return Gray4{Y: p.Pix[index] >> 4}
	}
	return Gray4{Y: p.Pix[index] & 0xf}
}

func (p *Gray4Image) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}).In(p.Rect) {
		return
	}

	index := y*p.Stride + x>>1
	color := gray4Model(c).(Gray4).Y & 0xf
	if x%2 == 0 {
		p.Pix[index] = (p.Pix[index] & 0x0f) | color<<4
	} else {
		p.Pix[index] = (p.Pix[index] & 0xf0) | color
	}
}

func (p *Gray4Image) Fill(c color.Color) {
	value := gray4Model(c).(Gray4).Y & 0xf
	p.fill(value | value<<4)
}

// word16 is the storage shared by the 16-bit per pixel images.
type word16 struct {
	Buffer
	Order binary.ByteOrder
}

func makeWord16(w, h int) word16 {
	return word16{
		Buffer: makeBuffer(w, h, w*2, w*2*h),
		Order:  binary.BigEndian,
	}
}

func (p *word16) offset(x, y int) int {
	return (x-p.Rect.Min.X)*2 + (y-p.Rect.Min.Y)*p.Stride
}

func (p *word16) get(x, y int) (uint16, bool) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return 0, false
	}
	return p.Order.Uint16(p.Pix[p.offset(x, y):]), true
}

func (p *word16) put(x, y int, v uint16) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.Order.PutUint16(p.Pix[p.offset(x, y):], v)
}

func (p *word16) fill16(v uint16) {
	bytes := make([]byte, 2)
	p.Order.PutUint16(bytes, v)
	for i, l := 0, len(p.Pix)&^1; i < l; i += 2 {
		copy(p.Pix[i:], bytes)
	}
}

// CRGB15Image is a 15-bits per pixel 5-5-5-bit RGB image.
type CRGB15Image struct {
	word16
}

func NewCRGB15Image(w, h int) *CRGB15Image {
	return &CRGB15Image{makeWord16(w, h)}
}

// WrapCRGB15Image uses a device buffer with the given bounds, stride and byte order.
func WrapCRGB15Image(pix []byte, r image.Rectangle, stride int, order binary.ByteOrder) *CRGB15Image {
	return &CRGB15Image{word16{Buffer: Buffer{Rect: r, Pix: pix, Stride: stride}, Order: order}}
}

func (p *CRGB15Image) ColorModel() color.Model {
	return CRGB15Model
}

func (p *CRGB15Image) At(x, y int) color.Color {
	if v, ok := p.get(x, y); ok {
		return CRGB15{v & 0x7fff}
	}
	return color.Transparent
}

func (p *CRGB15Image) Set(x, y int, c color.Color) {
	p.put(x, y, crgb15Model(c).(CRGB15).V)
}

func (p *CRGB15Image) Fill(c color.Color) {
	p.fill16(crgb15Model(c).(CRGB15).V)
}

// CRGB16Image is a 16-bits per pixel 5-6-5-bit RGB image.
type CRGB16Image struct {
	word16
}

func NewCRGB16Image(w, h int) *CRGB16Image {
	return &CRGB16Image{makeWord16(w, h)}
}

// WrapCRGB16Image uses a device buffer with the given bounds, stride and byte order.
func WrapCRGB16Image(pix []byte, r image.Rectangle, stride int, order binary.ByteOrder) *CRGB16Image {
	return &CRGB16Image{word16{Buffer: Buffer{Rect: r, Pix: pix, Stride: stride}, Order: order}}
}

func (p *CRGB16Image) ColorModel() color.Model {
	return CRGB16Model
}

func (p *CRGB16Image) At(x, y int) color.Color {
	if v, ok := p.get(x, y); ok {
		return CRGB16{v}
	}
	return color.Transparent
}

func (p *CRGB16Image) Set(x, y int, c color.Color) {
	p.put(x, y, crgb16Model(c).(CRGB16).V)
}

func (p *CRGB16Image) Fill(c color.Color) {
	p.fill16(crgb16Model(c).(CRGB16).V)
}

// CBGR16Image is a 16-bits per pixel 5-6-5-bit BGR image.
type CBGR16Image struct {
	word16
}

func NewCBGR16Image(w, h int) *CBGR16Image {
	return &CBGR16Image{makeWord16(w, h)}
}

// WrapCBGR16Image uses a device buffer with the given bounds, stride and byte order.
func WrapCBGR16Image(pix []byte, r image.Rectangle, stride int, order binary.ByteOrder) *CBGR16Image {
	return &CBGR16Image{word16{Buffer: Buffer{Rect: r, Pix: pix, Stride: stride}, Order: order}}
}

func (p *CBGR16Image) ColorModel() color.Model {
	return CBGR16Model
}

func (p *CBGR16Image) At(x, y int) color.Color {
	if v, ok := p.get(x, y); ok {
		return CBGR16{v}
	}
	return color.Transparent
}

func (p *CBGR16Image) Set(x, y int, c color.Color) {
	p.put(x, y, cbgr16Model(c).(CBGR16).V)
}

func (p *CBGR16Image) Fill(c color.Color) {
	p.fill16(cbgr16Model(c).(CBGR16).V)
}

// Interface checks.
var (
	_ Image = (*MonoVerticalLSBImage)(nil)
	_ Image = (*Gray4Image)(nil)
	_ Image = (*CRGB15Image)(nil)
	_ Image = (*CRGB16Image)(nil)
	_ Image = (*CBGR16Image)(nil)
)
