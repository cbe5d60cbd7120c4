package lvdisplay

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// countingAllocator counts allocations and releases.
type countingAllocator struct {
	allocs int
	frees  int
}

func (a *countingAllocator) Alloc(n int) []Color {
	a.allocs++
	return make([]Color, n)
}

func (a *countingAllocator) Free([]Color) {
	a.frees++
}

// expectPanic runs f and checks that it panics with an error matching target.
func expectPanic(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		v := recover()
		if v == nil {
			t.Fatalf("expected panic with %v", target)
		}
		err, ok := v.(error)
		if !ok {
			t.Fatalf("expected panic with an error, got %#v", v)
		}
		if !errors.Is(err, target) {
			t.Fatalf("expected panic with %v, got %v", target, err)
		}
	}()
	f()
}

func TestNewBaseOwned(t *testing.T) {
	alloc := new(countingAllocator)
	b := NewBase(&Config{MaxWidth: 10, MaxHeight: 10, DefaultBufferSize: 50, Allocator: alloc}, nil, nil)

	if !b.Primary().Owned() {
		t.Error("expected an owned primary buffer")
	}
	if v := b.Primary().Len(); v != 50 {
		t.Errorf("expected primary buffer of 50 pixels, got %d", v)
	}
	if b.Secondary() != nil {
		t.Error("expected no secondary buffer")
	}

	desc := b.BufferDescriptor()
	if desc.Size != 50 || len(desc.Buf1) != 50 || desc.Buf2 != nil || desc.DoubleBuffered() {
		t.Errorf("unexpected buffer descriptor: size %d, buf1 %d, buf2 %d", desc.Size, len(desc.Buf1), len(desc.Buf2))
	}

	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if alloc.allocs != 1 || alloc.frees != 1 {
		t.Errorf("expected 1 allocation and 1 release, got %d and %d", alloc.allocs, alloc.frees)
	}
	if b.Primary().Pix() != nil {
		t.Error("expected released buffer to have no pixels")
	}
}

func TestNewBaseDefaultConfig(t *testing.T) {
	b := NewBase(nil, nil, nil)
	if v, want := b.Primary().Len(), DefaultConfig.DefaultBufferSize; v != want {
		t.Errorf("expected primary buffer of %d pixels, got %d", want, v)
	}
	if w, h := b.Resolution(); w != DefaultConfig.MaxWidth || h != DefaultConfig.MaxHeight {
		t.Errorf("expected resolution %dx%d, got %dx%d", DefaultConfig.MaxWidth, DefaultConfig.MaxHeight, w, h)
	}

	b = NewBase(&Config{MaxWidth: 100, MaxHeight: 20}, nil, nil)
	if v := b.Primary().Len(); v != 200 {
		t.Errorf("expected a tenth of the screen (200 pixels), got %d", v)
	}
}

func TestNewBaseBorrowed(t *testing.T) {
	var (
		alloc = new(countingAllocator)
		pix   = make([]Color, 30)
		b     = NewBase(&Config{MaxWidth: 10, MaxHeight: 10, Allocator: alloc}, pix, nil)
	)
	if b.Primary().Owned() {
		t.Error("expected a borrowed primary buffer")
	}
	if v := b.BufferDescriptor().Size; v != 30 {
		t.Errorf("expected buffer size 30, got %d", v)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if alloc.allocs != 0 || alloc.frees != 0 {
		t.Errorf("expected no allocations, got %d allocations and %d releases", alloc.allocs, alloc.frees)
	}
	if v := len(b.Primary().Pix()); v != 30 {
		t.Errorf("expected borrowed buffer to be kept, got %d pixels", v)
	}
}

func TestNewBaseDoubleBuffered(t *testing.T) {
	var (
		buf1 = make([]Color, 20)
		buf2 = make([]Color, 20)
		b    = NewBase(&Config{MaxWidth: 10, MaxHeight: 10}, buf1, buf2)
		desc = b.BufferDescriptor()
	)
	if !desc.DoubleBuffered() {
		t.Fatal("expected double buffering")
	}
	if b.Secondary().Owned() {
		t.Error("expected a borrowed secondary buffer")
	}
	if &desc.Active()[0] != &buf1[0] {
		t.Error("expected primary buffer to be active")
	}
	desc.Swap()
	if &desc.Active()[0] != &buf2[0] {
		t.Error("expected secondary buffer to be active after swap")
	}
	desc.Swap()
	if &desc.Active()[0] != &buf1[0] {
		t.Error("expected primary buffer to be active after two swaps")
	}
}

func TestNewBaseMismatch(t *testing.T) {
	tests := []struct {
		Name      string
		Primary   []Color
		Secondary []Color
		Frees     int
	}{
		{"borrowed", make([]Color, 20), make([]Color, 10), 0},
		{"borrowed-larger", make([]Color, 20), make([]Color, 21), 0},
		{"allocated", nil, make([]Color, 10), 1},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			alloc := new(countingAllocator)
			expectPanic(it, ErrBufferMismatch, func() {
				NewBase(&Config{MaxWidth: 10, MaxHeight: 10, DefaultBufferSize: 50, Allocator: alloc}, test.Primary, test.Secondary)
			})
			if alloc.frees != test.Frees {
				it.Errorf("expected %d releases, got %d", test.Frees, alloc.frees)
			}
		})
	}
}

func TestSetResolution(t *testing.T) {
	tests := []struct {
		Name          string
		Width, Height int
		Panics        bool
	}{
		{"max", 320, 240, false},
		{"smaller", 128, 64, false},
		{"zero", 0, 0, false},
		{"wide", 321, 240, true},
		{"tall", 320, 241, true},
		{"negative", -1, 10, true},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			b := NewBase(&Config{MaxWidth: 320, MaxHeight: 240}, make([]Color, 10), nil)
			if test.Panics {
				expectPanic(it, ErrResolution, func() {
					b.SetResolution(test.Width, test.Height)
				})
				return
			}
			b.SetResolution(test.Width, test.Height)
			if w, h := b.Resolution(); w != test.Width || h != test.Height {
				it.Errorf("expected resolution %dx%d, got %dx%d", test.Width, test.Height, w, h)
			}
		})
	}
}

func TestDefaultHooks(t *testing.T) {
	b := NewBase(&Config{MaxWidth: 10, MaxHeight: 10}, make([]Color, 10), nil)

	if b.HasRounder() {
		t.Error("expected no rounder")
	}
	area := image.Rect(1, 2, 3, 4)
	b.RoundArea(&area)
	if diff := cmp.Diff(image.Rect(1, 2, 3, 4), area); diff != "" {
		t.Errorf("expected area to be unchanged (-want +got):\n%s", diff)
	}

	if b.HasPixelWriteFunction() {
		t.Error("expected no pixel write function")
	}
	buf := []byte{1, 2, 3, 4}
	b.SetPixel(buf, 2, 1, 1, Color{V: 0xffff}, OpacityCover)
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, buf); diff != "" {
		t.Errorf("expected buffer to be unchanged (-want +got):\n%s", diff)
	}
}

func TestSetDisplayHandle(t *testing.T) {
	b := NewBase(&Config{MaxWidth: 10, MaxHeight: 10}, make([]Color, 10), nil)
	if b.DisplayHandle() != nil {
		t.Fatal("expected no display handle")
	}

	d := new(Display)
	b.SetDisplayHandle(d)
	if b.DisplayHandle() != d {
		t.Fatal("expected display handle to be set")
	}
	expectPanic(t, ErrRegistered, func() {
		b.SetDisplayHandle(new(Display))
	})
	expectPanic(t, ErrRegistered, func() {
		b.SetResolution(5, 5)
	})
}

func TestMonitor(t *testing.T) {
	var out bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&out, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	b := NewBase(&Config{MaxWidth: 10, MaxHeight: 10}, make([]Color, 10), nil)
	b.Monitor(3*time.Millisecond, 12)
	if out.Len() != 0 {
		t.Errorf("expected no output without MonitorFlush, got %q", out.String())
	}

	b = NewBase(&Config{MaxWidth: 10, MaxHeight: 10, MonitorFlush: true}, make([]Color, 10), nil)
	b.Monitor(3*time.Millisecond, 12)
	for _, want := range []string{`msg="lvdisplay: px refreshed"`, "px=12", "elapsed=3ms"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in the log, got %q", want, out.String())
		}
	}
}

func TestConfigWithDefaults(t *testing.T) {
	alloc := new(countingAllocator)
	c := (&Config{MaxWidth: 64, DefaultBufferSize: 100, Allocator: alloc}).withDefaults()
	if c.MaxWidth != 64 || c.MaxHeight != DefaultConfig.MaxHeight || c.DefaultBufferSize != 100 || c.Allocator != alloc {
		t.Errorf("unexpected config %+v", c)
	}
}
