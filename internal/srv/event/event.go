package event

import (
	"time"

	"github.com/jypelle/horlogo/apimodel"
)

// Ticker
type TickerEvent struct {
	Data interface{}
}

type TickerEventTickData struct {
	Now time.Time
}

// Console commands. One data type per protocol keyword, produced by the
// console parser and matched exhaustively by the event loop.
type CommandEvent struct {
	Data interface{}
}

type CommandEventTimeData struct {
	Text string
}

type CommandEventDateData struct {
	Text string
}

type CommandEventStatusData struct {
	Text string
}

type CommandEventBrightData struct {
	Value float64
}

type CommandEventColorData struct {
	R, G, B uint8
}

type CommandEventShiftData struct {
	X, Y int
}

type CommandEventQuitData struct{}

// Api
type ApiEvent struct {
	Result chan interface{}
	Data   interface{}
}

type ApiEventStatusData struct{}

type ApiEventIsAliveData struct{}

// ApiStatusResult is the payload answered to ApiEventStatusData.
type ApiStatusResult struct {
	Status apimodel.DisplayStatus
}
