//go:build !lvgpu

package lvdisplay

func registerGPU(Driver, *DisplayDriver) {}
