package lvdisplay

import (
	"fmt"
	"image"
	"time"
)

// maxDirtyAreas is the number of invalidated areas kept before the whole screen is refreshed.
const maxDirtyAreas = 32

// DisplayDriver is the registration record of a driver: its buffers, resolution and the hooks the
// refresh cycle calls. Optional hooks are nil when the driver does not provide them.
type DisplayDriver struct {
	Width  int
	Height int
	Buffer *BufferDescriptor

	Flush    func(area image.Rectangle, pix []Color) error
	Rounder  func(area *image.Rectangle)
	SetPixel func(buf []byte, bufWidth, x, y int, c Color, opa Opacity)
	Monitor  func(elapsed time.Duration, px uint32)
	GPUBlend func(dst, src []Color, opa Opacity)
	GPUFill  func(dst []Color, dstWidth int, area image.Rectangle, c Color)
}

// Display is a registered display.
type Display struct {
	drv   Driver
	dd    DisplayDriver
	dirty []image.Rectangle
}

// RenderFunc paints a part of the screen onto a canvas.
type RenderFunc func(c *Canvas)

// Register wires drv into a new Display and hands it the display handle.
//
// Register panics with [ErrRegistered] if drv already has a display.
func Register(drv Driver) *Display {
	if drv.DisplayHandle() != nil {
		panic(ErrRegistered)
	}

	w, h := drv.Resolution()
	d := &Display{
		drv: drv,
		dd: DisplayDriver{
			Width:   w,
			Height:  h,
			Buffer:  drv.BufferDescriptor(),
			Flush:   drv.Flush,
			Monitor: drv.Monitor,
		},
	}
	if drv.HasRounder() {
		d.dd.Rounder = drv.RoundArea
	}
	if drv.HasPixelWriteFunction() {
		d.dd.SetPixel = drv.SetPixel
	}
	registerGPU(drv, &d.dd)

	drv.SetDisplayHandle(d)
	Logger().Debug("lvdisplay: registered display",
		"width", w,
		"height", h,
		"buffer", d.dd.Buffer.Size,
		"double", d.dd.Buffer.DoubleBuffered(),
		"rounder", d.dd.Rounder != nil,
		"pixel", d.dd.SetPixel != nil)
	return d
}

// Driver is the registered driver.
func (d *Display) Driver() Driver {
	return d.drv
}

// DisplayDriver is the registration record.
func (d *Display) DisplayDriver() *DisplayDriver {
	return &d.dd
}

// Resolution of the display.
func (d *Display) Resolution() (width, height int) {
	return d.dd.Width, d.dd.Height
}

// Bounds of the display.
func (d *Display) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.dd.Width, d.dd.Height)
}

// Invalidate marks r for redrawing in the next Refresh.
func (d *Display) Invalidate(r image.Rectangle) {
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return
	}
	for _, a := range d.dirty {
		if r.In(a) {
			return
		}
	}
	if len(d.dirty) == maxDirtyAreas {
		d.dirty = append(d.dirty[:0], d.Bounds())
		return
	}
	d.dirty = append(d.dirty, r)
}

// Dirty are the areas pending redraw.
func (d *Display) Dirty() []image.Rectangle {
	return d.dirty
}

// Refresh redraws the invalidated areas.
//
// Every area is rounded by the driver, split into stripes that fit the draw buffer, painted by
// render and flushed. Monitor is called once all areas are flushed. Refresh returns the first flush
// error, the remaining areas stay invalidated.
func (d *Display) Refresh(render RenderFunc) error {
	if len(d.dirty) == 0 {
		return nil
	}

	var (
		start = time.Now()
		areas = joinAreas(d.dirty)
		px    uint32
	)
	for i, area := range areas {
		n, err := d.refreshArea(area, render)
		px += n
		if err != nil {
			d.dirty = append(d.dirty[:0], areas[i:]...)
			return err
		}
	}
	d.dirty = d.dirty[:0]

	if d.dd.Monitor != nil {
		d.dd.Monitor(time.Since(start), px)
	}
	return nil
}

func (d *Display) refreshArea(area image.Rectangle, render RenderFunc) (px uint32, err error) {
	var (
		bounds = d.Bounds()
		desc   = d.dd.Buffer
	)
	if d.dd.Rounder != nil {
		d.dd.Rounder(&area)
		area = area.Intersect(bounds)
	}

	w := area.Dx()
	if w == 0 {
		return 0, nil
	}
	rows := desc.Size / w
	if rows == 0 {
		return 0, fmt.Errorf("%w: %d pixels for a %d pixel wide area", ErrBufferTooSmall, desc.Size, w)
	}

	for y := area.Min.Y; y < area.Max.Y; {
		stripe, ok := d.stripe(area, y, rows)
		if !ok {
			return px, fmt.Errorf("%w: rounded %d pixel wide area does not fit", ErrBufferTooSmall, w)
		}

		var (
			buf    = desc.Active()
			n      = stripe.Dx() * stripe.Dy()
			canvas = d.canvas(stripe, buf)
		)
		if render != nil {
			render(canvas)
		}

		Logger().Debug("lvdisplay: flush", "area", stripe, "pixels", n)
		desc.flushing = true
		err = d.dd.Flush(stripe, buf[:n])
		desc.flushing = false
		if err != nil {
			return px, fmt.Errorf("lvdisplay: flush %s: %w", stripe, err)
		}
		desc.Swap()

		px += uint32(n)
		y = stripe.Max.Y
	}
	return px, nil
}

// stripe returns the next part of area starting at row y that fits the buffer after rounding.
func (d *Display) stripe(area image.Rectangle, y, rows int) (image.Rectangle, bool) {
	size := d.dd.Buffer.Size
	for h := rows; h > 0; h-- {
		stripe := image.Rect(area.Min.X, y, area.Max.X, min(y+h, area.Max.Y))
		if d.dd.Rounder != nil {
			d.dd.Rounder(&stripe)
			stripe = stripe.Intersect(area)
		}
		if stripe.Min.Y == y && !stripe.Empty() && stripe.Dx()*stripe.Dy() <= size {
			return stripe, true
		}
	}
	return image.Rectangle{}, false
}

// joinAreas merges overlapping areas when their union is smaller than the two areas apart.
func joinAreas(areas []image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(areas))
	for _, a := range areas {
		out = append(out, a)
		for joined := true; joined; {
			joined = false
			last := len(out) - 1
			for i := 0; i < last; i++ {
				if !out[i].Overlaps(out[last]) {
					continue
				}
				u := out[i].Union(out[last])
				if pixels(u) < pixels(out[i])+pixels(out[last]) {
					// keep the union last, it may overlap other areas now
					out[i] = out[last-1]
					out[last-1] = u
					out = out[:last]
					joined = true
					break
				}
			}
		}
	}
	return out
}

func pixels(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
