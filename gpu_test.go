//go:build lvgpu

package lvdisplay

import (
	"image"
	"testing"

	"github.com/BeatGlow/lvdisplay/pixel"
)

// gpuDriver counts accelerated operations and implements them in software.
type gpuDriver struct {
	testDriver
	blends, fills int
}

func (d *gpuDriver) HasGPU() bool {
	return true
}

func (d *gpuDriver) GPUBlend(dst, src []Color, opa Opacity) {
	d.blends++
	for i := range dst {
		dst[i] = pixel.Mix(src[i], dst[i], uint8(opa))
	}
}

func (d *gpuDriver) GPUFill(dst []Color, dstWidth int, area image.Rectangle, c Color) {
	d.fills++
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			dst[y*dstWidth+x] = c
		}
	}
}

func TestRegisterGPU(t *testing.T) {
	t.Run("base", func(it *testing.T) {
		d := Register(newTestDriver(10, 10, 100, 0))
		if dd := d.DisplayDriver(); dd.GPUBlend != nil || dd.GPUFill != nil {
			it.Error("expected no GPU hooks")
		}
	})

	t.Run("accelerated", func(it *testing.T) {
		drv := &gpuDriver{testDriver: *newTestDriver(4, 4, 16, 0)}
		d := Register(drv)
		if dd := d.DisplayDriver(); dd.GPUBlend == nil || dd.GPUFill == nil {
			it.Fatal("expected GPU hooks")
		}

		d.Invalidate(image.Rect(0, 2, 4, 4))
		if err := d.Refresh(func(c *Canvas) {
			c.FillRect(image.Rect(1, 0, 3, 3), testRed)
			c.BlendRow(0, 3, []Color{testGreen, testGreen}, OpacityCover)
		}); err != nil {
			it.Fatal(err)
		}
		if drv.fills != 1 || drv.blends != 1 {
			it.Fatalf("expected 1 fill and 1 blend, got %d and %d", drv.fills, drv.blends)
		}

		pix := drv.flushes[0].Pix
		want := []Color{
			{}, testRed, testRed, {},
			testGreen, testGreen, {}, {},
		}
		for i := range want {
			if pix[i] != want[i] {
				it.Errorf("pixel %d is %#04x, expected %#04x", i, pix[i].V, want[i].V)
			}
		}
	})
}
