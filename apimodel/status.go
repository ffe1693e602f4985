package apimodel

// DisplayStatus is the snapshot of the renderer state answered by the
// /api/status endpoint.
type DisplayStatus struct {
	TimeText       string  `json:"time_text"`
	DateText       string  `json:"date_text"`
	StatusText     string  `json:"status_text"`
	Brightness     float64 `json:"brightness"`
	Color          string  `json:"color"`
	ShiftX         int     `json:"shift_x"`
	ShiftY         int     `json:"shift_y"`
	Blanked        bool    `json:"blanked"`
	FramesRendered uint64  `json:"frames_rendered"`
	LastTick       string  `json:"last_tick"`
}
