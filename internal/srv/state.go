package srv

import (
	"github.com/jypelle/horlogo/internal/srv/render"
)

// DisplayState holds the command-controlled part of what gets rendered. It is
// owned by the render controller and mutated only from the event loop; the
// compositor reads a snapshot of it each frame.
//
// Brightness is the day value set by BRIGHT. The effective frame brightness
// may be lower when the night window is active.
type DisplayState struct {
	TimeText   string
	DateText   string
	StatusText string

	Color      render.RGB
	Brightness float64

	ShiftX int
	ShiftY int
}
