package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/lvdisplay"
	spi "github.com/BeatGlow/lvdisplay/conn"
	"github.com/BeatGlow/lvdisplay/draw"
	"github.com/BeatGlow/lvdisplay/framebuffer"
	"github.com/BeatGlow/lvdisplay/pixel"
)

func main() {
	widthFlag := flag.Int("width", 0, "Display width")
	heightFlag := flag.Int("height", 0, "Display height")
	i2cDeviceFlag := flag.Int("i2c-dev", lvdisplay.DefaultI2CConfig.Device, "I²C device number (default: use first available)")
	i2cAddrFlag := flag.Uint("i2c-addr", uint(lvdisplay.DefaultI2CConfig.Addr), "I²C device address")
	spiBusFlag := flag.Int("spi-bus", 0, "SPI bus")
	spiDeviceFlag := flag.Int("spi-dev", 0, "SPI device")
	spiSpeed := lvdisplay.DefaultSPIConfig.Speed
	flag.Var(&spiSpeed, "spi-speed", "SPI bus speed (e.g. 8MHz)")
	spiModeFlag := flag.Uint("spi-mode", 0, "SPI mode (0-3)")
	resetPinFlag := flag.String("reset", "GPIO25", "Reset GPIO pin")
	dcPinFlag := flag.String("dc", "GPIO24", "Data/Command GPIO pin (DC)")
	cePinFlag := flag.String("ce", "GPIO8", "Chip enable GPIO pin")
	rotateFlag := flag.String("rotate", "", "Display rotation")
	bufferFlag := flag.Int("buffer", 0, "Draw buffer size in pixels (default: driver specific)")
	doubleFlag := flag.Bool("double", false, "Use two draw buffers of -buffer pixels")
	monitorFlag := flag.Bool("monitor", false, "Log refresh statistics")
	textFlag := flag.String("text", "lvdisplay", "Text label")
	probeFlag := flag.Bool("probe", false, "Only open the bus and print it")
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <i2c|spi> <driver>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s fb [<device>]\n", os.Args[0])
		os.Exit(1)
	}

	var rotation lvdisplay.Rotation
	switch *rotateFlag {
	case "", "no", "0":
		rotation = lvdisplay.NoRotation
	case "90", "right", "cw":
		rotation = lvdisplay.Rotate90
	case "180", "flip":
		rotation = lvdisplay.Rotate180
	case "270", "left", "ccw":
		rotation = lvdisplay.Rotate270
	default:
		fatal(fmt.Errorf("invalid rotation %q specified", *rotateFlag))
	}
	fmt.Printf("using rotation: %s\n", rotation)

	if *monitorFlag {
		lvdisplay.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	if _, err := host.Init(); err != nil {
		fatal(err)
	}

	var (
		buffer = &lvdisplay.Config{
			DefaultBufferSize: *bufferFlag,
			MonitorFlush:      *monitorFlag,
		}
		config = &lvdisplay.PanelConfig{
			Width:    *widthFlag,
			Height:   *heightFlag,
			Rotation: rotation,
			Buffer:   buffer,
		}
		output lvdisplay.Panel
		conn   lvdisplay.Conn
		err    error
	)
	if *doubleFlag {
		if *bufferFlag <= 0 {
			fatal(fmt.Errorf("-double needs a -buffer size"))
		}
		config.Primary = make([]lvdisplay.Color, *bufferFlag)
		config.Secondary = make([]lvdisplay.Color, *bufferFlag)
	}

	switch busType := flag.Arg(0); busType {
	case "i2c":
		conn, err = lvdisplay.OpenI2C(&lvdisplay.I2CConfig{
			Device: *i2cDeviceFlag,
			Addr:   uint8(*i2cAddrFlag),
			Reset:  gpioreg.ByName(*resetPinFlag),
		})
	case "spi":
		conn, err = lvdisplay.OpenSPI(&lvdisplay.SPIConfig{
			Bus:    *spiBusFlag,
			Device: *spiDeviceFlag,
			Mode:   spi.SPIMode(*spiModeFlag),
			Speed:  spiSpeed,
			Reset:  gpioreg.ByName(*resetPinFlag),
			DC:     gpioreg.ByName(*dcPinFlag),
			CE:     gpioreg.ByName(*cePinFlag),
		})
	case "fb":
		name := "/dev/fb0"
		if flag.NArg() == 2 {
			name = flag.Arg(1)
		}
		if *probeFlag {
			fmt.Printf("framebuffer device: %s\n", name)
			return
		}
		output, err = framebuffer.Open(name, buffer)
	default:
		err = fmt.Errorf("unsupported bus type %q", busType)
	}
	if err != nil {
		fatal(err)
	}

	if conn != nil {
		fmt.Printf("using connection: %s\n", conn)
		if *probeFlag {
			_ = conn.Close()
			return
		}
		if flag.NArg() != 2 {
			_ = conn.Close()
			fatal(fmt.Errorf("no driver specified"))
		}
		if output, err = openPanel(conn, strings.ToLower(flag.Arg(1)), config); err != nil {
			_ = conn.Close()
			fatal(err)
		}
	}
	defer output.Close()

	fmt.Printf("using driver: %s\n", output)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err = run(ctx, lvdisplay.Register(output), *textFlag); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
	}
}

func openPanel(conn lvdisplay.Conn, driver string, config *lvdisplay.PanelConfig) (lvdisplay.Panel, error) {
	switch driver {
	case "sh1106":
		return lvdisplay.SH1106(conn, config)
	case "ssd1306":
		return lvdisplay.SSD1306(conn, config)
	case "ssd1322":
		return lvdisplay.SSD1322(conn, config)
	case "st7789":
		return lvdisplay.ST7789(conn, config)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// run animates a gradient with a frame and a text label until ctx is done.
func run(ctx context.Context, display *lvdisplay.Display, text string) error {
	var (
		r       = display.Bounds()
		scene   = pixel.NewCRGB16Image(r.Dx(), r.Dy())
		caption = newLabel(scene, text)
		offset  int
		ticker  = time.NewTicker(50 * time.Millisecond)
	)
	defer ticker.Stop()

	render := func(c *lvdisplay.Canvas) {
		draw.Draw(c, c.Bounds(), scene, c.Bounds().Min, draw.Src)
	}

	fmt.Println("hit control-c to stop...")
	for {
		paint(scene, offset)
		caption.draw()

		display.Invalidate(r)
		if err := display.Refresh(render); err != nil {
			return err
		}

		offset++
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// paint draws the frame and the gradient inside it.
func paint(scene *pixel.CRGB16Image, offset int) {
	r := scene.Bounds()
	for y := 1; y < r.Max.Y-1; y++ {
		for x := 1; x < r.Max.X-1; x++ {
			scene.Set(x, y, color.RGBA{
				R: uint8(x + y + offset),
				G: uint8(x - y + offset),
				B: uint8(x + y - offset),
				A: 0xff,
			})
		}
	}
	draw.Rectangle(scene, r, color.White)
}

type label struct {
	dst    draw.Image
	drawer *font.Drawer
	text   string
	box    image.Rectangle
}

// newLabel centers text on dst in the Go regular font, sized to a third of the display height.
func newLabel(dst draw.Image, text string) *label {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		fatal(err)
	}

	var (
		r    = dst.Bounds()
		size = max(float64(r.Dy())/3, 8)
		face = truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		drawer = &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(color.White),
			Face: face,
		}
		width   = drawer.MeasureString(text).Ceil()
		metrics = face.Metrics()
		height  = (metrics.Ascent + metrics.Descent).Ceil()
		x       = (r.Dx() - width) / 2
		y       = (r.Dy()-height)/2 + metrics.Ascent.Ceil()
	)
	drawer.Dot = fixed.P(x, y)

	return &label{
		dst:    dst,
		drawer: drawer,
		text:   text,
		box:    image.Rect(x-2, y-metrics.Ascent.Ceil()-2, x+width+2, y+metrics.Descent.Ceil()+2),
	}
}

func (l *label) draw() {
	dot := l.drawer.Dot
	draw.RoundedRectangle(l.dst, l.box, 3, color.White)
	l.drawer.DrawString(l.text)
	l.drawer.Dot = dot
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
