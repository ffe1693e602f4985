package config

import "fmt"

// TimingWindow is a recurring daily interval expressed in whole hours.
// A window whose end hour is numerically smaller than its start hour spans
// midnight (e.g. 22 -> 6 covers 22:00-23:59 and 00:00-05:59).
type TimingWindow struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// Contains reports whether the given hour falls inside the window. The start
// hour is inclusive, the end hour exclusive. A window with StartHour ==
// EndHour is empty.
func (w TimingWindow) Contains(hour int) bool {
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour < w.EndHour
	}
	return hour >= w.StartHour || hour < w.EndHour
}

func (w TimingWindow) String() string {
	return fmt.Sprintf("%02dh->%02dh", w.StartHour, w.EndHour)
}
