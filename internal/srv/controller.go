package srv

import (
	"fmt"
	"image"
	"math/rand"
	"runtime/debug"
	"time"

	"github.com/jypelle/horlogo/apimodel"
	"github.com/jypelle/horlogo/internal/srv/config"
	"github.com/jypelle/horlogo/internal/srv/event"
	"github.com/jypelle/horlogo/internal/srv/render"
	"github.com/sirupsen/logrus"
)

const defaultColor = "#00FF00"

// frameWriter is the part of the screen device the controller drives.
type frameWriter interface {
	WriteFull(c *render.Canvas) error
	WriteRegion(c *render.Canvas, r image.Rectangle) error
	Clear() error
}

// renderController decides, once per tick, what the display should show:
// screensaver blanking, night dimming and pixel shift are resolved here, then
// at most one compose-and-write pass runs. Ticks whose resolved frame state is
// unchanged cost nothing.
type renderController struct {
	param      *config.ServerParam
	compositor *render.Compositor
	writer     frameWriter

	state DisplayState

	blanked   bool
	wroteOnce bool
	forceFull bool

	lastComposed render.FrameState
	hasComposed  bool

	rng              *rand.Rand
	pendingShiftX    int
	pendingShiftY    int
	pendingShiftSet  bool
	lastShiftCompute time.Time

	framesRendered uint64
	lastTick       time.Time

	windowRenderTime  time.Duration
	windowRenderCount int
	lastTimingSummary time.Time
}

// timingSummaryInterval spaces out the aggregated render-cost log lines.
const timingSummaryInterval = 10 * time.Second

func newRenderController(param *config.ServerParam, compositor *render.Compositor, writer frameWriter) *renderController {
	col, err := render.ParseHexColor(param.DisplayParam.Color)
	if err != nil {
		logrus.Warnf("Invalid configured color %q, falling back to %s", param.DisplayParam.Color, defaultColor)
		col, _ = render.ParseHexColor(defaultColor)
	}

	return &renderController{
		param:      param,
		compositor: compositor,
		writer:     writer,
		state: DisplayState{
			Color:      col,
			Brightness: 1.0,
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Tick advances the controller to the given instant. A nil return means the
// display matches the state; a non-nil return is a device failure the caller
// must treat as fatal.
func (c *renderController) Tick(now time.Time) error {
	c.lastTick = now
	hour := now.Hour()

	if c.param.ScreensaverParam.Enabled && c.param.ScreensaverParam.Window.Contains(hour) {
		if !c.blanked {
			logrus.Infof("Entering screensaver window %s", c.param.ScreensaverParam.Window.String())
			if err := c.writer.Clear(); err != nil {
				return fmt.Errorf("unable to blank display: %w", err)
			}
			c.blanked = true
		}
		return nil
	}
	if c.blanked {
		logrus.Infof("Leaving screensaver window")
		c.blanked = false
		c.compositor.Reset()
		c.forceFull = true
	}

	brightness := c.state.Brightness
	if c.param.NightParam.Enabled && c.param.NightParam.Window.Contains(hour) {
		brightness = c.param.NightParam.Brightness
	}

	c.updatePixelShift(now, hour)

	fs := render.FrameState{
		TimeText:   c.state.TimeText,
		DateText:   c.state.DateText,
		StatusText: c.state.StatusText,
		Color:      c.state.Color,
		Brightness: brightness,
		ShiftX:     c.state.ShiftX,
		ShiftY:     c.state.ShiftY,
	}
	if c.hasComposed && !c.forceFull && fs == c.lastComposed {
		return nil
	}

	start := time.Now()
	dirty, err := c.compose(fs)
	if err != nil {
		logrus.Warnf("Frame skipped: %v", err)
		return nil
	}
	c.lastComposed = fs
	c.hasComposed = true

	if !c.wroteOnce || c.forceFull {
		if err := c.writer.WriteFull(c.compositor.Canvas()); err != nil {
			return fmt.Errorf("unable to write frame: %w", err)
		}
		c.wroteOnce = true
		c.forceFull = false
	} else {
		for _, r := range dirty {
			if err := c.writer.WriteRegion(c.compositor.Canvas(), r); err != nil {
				return fmt.Errorf("unable to write frame region: %w", err)
			}
		}
	}
	c.framesRendered++
	elapsed := time.Since(start)
	logrus.Debugf("Frame %d rendered in %s, %d dirty regions", c.framesRendered, elapsed, len(dirty))

	c.windowRenderTime += elapsed
	c.windowRenderCount++
	if c.lastTimingSummary.IsZero() {
		c.lastTimingSummary = now
	} else if now.Sub(c.lastTimingSummary) >= timingSummaryInterval {
		logrus.Debugf("Rendered %d frames in the last %s, avg %s per frame",
			c.windowRenderCount,
			now.Sub(c.lastTimingSummary).Round(time.Second),
			c.windowRenderTime/time.Duration(c.windowRenderCount))
		c.windowRenderTime = 0
		c.windowRenderCount = 0
		c.lastTimingSummary = now
	}
	return nil
}

// compose isolates the compositing pass behind a recover so unexpected input
// skips one frame instead of killing the renderer.
func (c *renderController) compose(fs render.FrameState) (dirty []image.Rectangle, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
			err = fmt.Errorf("compose pass panicked: %v", rec)
		}
	}()
	return c.compositor.ComposeFrame(fs)
}

// updatePixelShift recomputes the pending offset on its interval but applies
// it only when a minute starts, so content never jumps mid-minute. Inside the
// disable window the current offset is left as is.
func (c *renderController) updatePixelShift(now time.Time, hour int) {
	p := &c.param.PixelShiftParam
	if !p.Enabled || p.MaxOffset <= 0 {
		return
	}
	if p.DisableWindow.Contains(hour) {
		return
	}

	interval := time.Duration(p.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if c.lastShiftCompute.IsZero() || now.Sub(c.lastShiftCompute) >= interval {
		c.pendingShiftX = c.rng.Intn(2*p.MaxOffset+1) - p.MaxOffset
		c.pendingShiftY = c.rng.Intn(2*p.MaxOffset+1) - p.MaxOffset
		c.pendingShiftSet = true
		c.lastShiftCompute = now
	}
	if c.pendingShiftSet && now.Second() == 0 {
		logrus.Debugf("Applying pixel shift (%d,%d)", c.pendingShiftX, c.pendingShiftY)
		c.state.ShiftX = c.pendingShiftX
		c.state.ShiftY = c.pendingShiftY
		c.pendingShiftSet = false
	}
}

// ApplyCommand folds one console command into the display state. The returned
// flag reports QUIT. The display itself catches up on the next tick.
func (c *renderController) ApplyCommand(data interface{}) (quit bool) {
	switch data := data.(type) {
	case event.CommandEventTimeData:
		c.state.TimeText = data.Text
	case event.CommandEventDateData:
		c.state.DateText = data.Text
	case event.CommandEventStatusData:
		c.state.StatusText = data.Text
	case event.CommandEventBrightData:
		value := data.Value
		if value < 0 {
			value = 0
		}
		if value > 1 {
			value = 1
		}
		c.state.Brightness = value
	case event.CommandEventColorData:
		c.state.Color = render.RGB{R: data.R, G: data.G, B: data.B}
	case event.CommandEventShiftData:
		max := c.param.PixelShiftParam.MaxOffset
		c.state.ShiftX = clampOffset(data.X, max)
		c.state.ShiftY = clampOffset(data.Y, max)
		// A manual offset replaces whatever automatic shift was pending.
		c.pendingShiftSet = false
	case event.CommandEventQuitData:
		return true
	}
	return false
}

func clampOffset(v, max int) int {
	if max <= 0 {
		return v
	}
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}

func (c *renderController) LastTick() time.Time {
	return c.lastTick
}

// Status snapshots the controller for the /api/status endpoint.
func (c *renderController) Status() apimodel.DisplayStatus {
	lastTick := ""
	if !c.lastTick.IsZero() {
		lastTick = c.lastTick.Format(time.RFC3339)
	}
	return apimodel.DisplayStatus{
		TimeText:       c.state.TimeText,
		DateText:       c.state.DateText,
		StatusText:     c.state.StatusText,
		Brightness:     c.state.Brightness,
		Color:          c.state.Color.String(),
		ShiftX:         c.state.ShiftX,
		ShiftY:         c.state.ShiftY,
		Blanked:        c.blanked,
		FramesRendered: c.framesRendered,
		LastTick:       lastTick,
	}
}
