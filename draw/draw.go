// Package draw has the drawing primitives used on display canvases. It aliases [image/draw]
// so callers need a single import.
package draw

import (
	"image"
	"image/draw"
)

type (
	Drawer = draw.Drawer
	Image  = draw.Image
	Op     = draw.Op
)

const (
	// Over specifies ``(src in mask) over dst''.
	Over = draw.Over

	// Src specifies ``src in mask''.
	Src = draw.Src
)

// Draw calls [DrawMask] with a nil mask.
func Draw(dst Image, r image.Rectangle, src image.Image, sp image.Point, op Op) {
	DrawMask(dst, r, src, sp, nil, image.Point{}, op)
}

// DrawMask composes src through mask into r of dst. Unmasked uniform sources that replace the
// destination go to [Filler.FillRect] when dst implements it.
func DrawMask(dst Image, r image.Rectangle, src image.Image, sp image.Point, mask image.Image, mp image.Point, op Op) {
	if u, ok := src.(*image.Uniform); ok && mask == nil {
		if f, ok := dst.(Filler); ok && (op == Src || opaque(u)) {
			if r = r.Intersect(dst.Bounds()); !r.Empty() {
				f.FillRect(r, u.C)
			}
			return
		}
	}
	draw.DrawMask(dst, r, src, sp, mask, mp, op)
}

func opaque(u *image.Uniform) bool {
	_, _, _, a := u.C.RGBA()
	return a == 0xffff
}
