//go:build !linux

package framebuffer

import "github.com/BeatGlow/lvdisplay"

// Open is not supported on this platform.
func Open(_ string, _ *lvdisplay.Config) (*FrameBuffer, error) {
	return nil, ErrNotSupported
}

func unmap(_ []byte) error {
	return nil
}
