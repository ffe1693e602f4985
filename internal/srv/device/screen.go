package device

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/jypelle/horlogo/internal/srv/render"
	"github.com/sirupsen/logrus"
)

// Simulation surface dimensions, matching the common HDMI panel the real
// device drives.
const (
	simWidth  = 1920
	simHeight = 1200
)

// Screen owns the display surface: either a memory-mapped fbdev node in
// RGB565 layout, or an in-memory buffer with the same layout in simulation
// mode. The mapping is acquired once in Start and released in Stop on every
// exit path; a write failure after startup is unrecoverable and reported to
// the caller, which must treat it as fatal.
type Screen struct {
	lock sync.Mutex

	simulationMode bool
	devicePath     string

	width  int
	height int
	stride int // bytes per device row, may exceed width*2
	fb     []byte
	file   *os.File
}

func NewScreen(devicePath string, simulationMode bool) *Screen {
	device := Screen{
		simulationMode: simulationMode,
		devicePath:     devicePath,
	}
	return &device
}

func (d *Screen) Start() {
	logrus.Infof("Start screen device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.simulationMode {
		d.width = simWidth
		d.height = simHeight
		d.stride = d.width * 2
		d.fb = make([]byte, d.stride*d.height)
		logrus.Infof("Simulated framebuffer: %dx%d", d.width, d.height)
	} else {
		if err := d.openDevice(); err != nil {
			logrus.Fatalf("Unable to initialize framebuffer %s: %v", d.devicePath, err)
		}
		logrus.Infof("Framebuffer %s: %dx%d, stride %d bytes, 16 bpp", d.devicePath, d.width, d.height, d.stride)
	}

	// One full clear so no stale boot splash survives startup.
	if err := d.clear(); err != nil {
		logrus.Fatalf("Unable to clear framebuffer: %v", err)
	}
}

func (d *Screen) Stop() {
	logrus.Infof("Stop screen device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.simulationMode {
		d.fb = nil
		return
	}
	if err := d.closeDevice(); err != nil {
		logrus.Warnf("Error releasing framebuffer: %v", err)
	}
}

func (d *Screen) Width() int  { return d.width }
func (d *Screen) Height() int { return d.height }

// Clear blacks out the logical display area. Row padding beyond the logical
// width is left untouched.
func (d *Screen) Clear() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.clear()
}

func (d *Screen) clear() error {
	if d.fb == nil {
		return fmt.Errorf("framebuffer not mapped")
	}
	rowBytes := d.width * 2
	for y := 0; y < d.height; y++ {
		row := d.fb[y*d.stride : y*d.stride+rowBytes]
		for i := range row {
			row[i] = 0
		}
	}
	return nil
}

// WriteFull copies the whole canvas into the device, row by row to honor the
// device stride.
func (d *Screen) WriteFull(c *render.Canvas) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.fb == nil {
		return fmt.Errorf("framebuffer not mapped")
	}
	if c.Width() != d.width || c.Height() != d.height {
		return fmt.Errorf("canvas %dx%d does not match display %dx%d", c.Width(), c.Height(), d.width, d.height)
	}

	rowBytes := d.width * 2
	pix := c.Pix()
	for y := 0; y < d.height; y++ {
		copied := copy(d.fb[y*d.stride:y*d.stride+rowBytes], pix[y*rowBytes:(y+1)*rowBytes])
		if copied != rowBytes {
			return fmt.Errorf("short framebuffer write on row %d: %d of %d bytes", y, copied, rowBytes)
		}
	}
	return nil
}

// WriteRegion copies only the given rectangle of the canvas into the device.
func (d *Screen) WriteRegion(c *render.Canvas, r image.Rectangle) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.fb == nil {
		return fmt.Errorf("framebuffer not mapped")
	}
	if c.Width() != d.width || c.Height() != d.height {
		return fmt.Errorf("canvas %dx%d does not match display %dx%d", c.Width(), c.Height(), d.width, d.height)
	}

	r = r.Intersect(image.Rect(0, 0, d.width, d.height))
	if r.Empty() {
		return nil
	}

	canvasRow := d.width * 2
	rowBytes := r.Dx() * 2
	pix := c.Pix()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := pix[y*canvasRow+r.Min.X*2 : y*canvasRow+r.Min.X*2+rowBytes]
		dst := d.fb[y*d.stride+r.Min.X*2 : y*d.stride+r.Min.X*2+rowBytes]
		if copied := copy(dst, src); copied != rowBytes {
			return fmt.Errorf("short framebuffer write on row %d: %d of %d bytes", y, copied, rowBytes)
		}
	}
	return nil
}
