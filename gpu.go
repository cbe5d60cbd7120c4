//go:build lvgpu

package lvdisplay

import "image"

// GPU is implemented by drivers with hardware accelerated blending and filling.
type GPU interface {
	// HasGPU reports if GPUBlend and GPUFill are accelerated.
	HasGPU() bool

	// GPUBlend mixes src over dst with the given opacity.
	GPUBlend(dst, src []Color, opa Opacity)

	// GPUFill fills area of dst, which is dstWidth pixels wide, with c.
	GPUFill(dst []Color, dstWidth int, area image.Rectangle, c Color)
}

func (b *Base) HasGPU() bool {
	return false
}

func (b *Base) GPUBlend(_, _ []Color, _ Opacity) {}

func (b *Base) GPUFill(_ []Color, _ int, _ image.Rectangle, _ Color) {}

func registerGPU(drv Driver, dd *DisplayDriver) {
	if gpu, ok := drv.(GPU); ok && gpu.HasGPU() {
		dd.GPUBlend = gpu.GPUBlend
		dd.GPUFill = gpu.GPUFill
	}
}
