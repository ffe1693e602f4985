package device

import (
	"sync"
	"time"

	"github.com/jypelle/horlogo/internal/srv/event"
	"github.com/sirupsen/logrus"
)

// Clock emits one tick per wall-clock second, aligned to second boundaries:
// each sleep targets the start of the next second rather than lasting a fixed
// duration, so displayed time stays synchronized with real seconds whatever
// the render duration was.
type Clock struct {
	lock         sync.RWMutex
	eventChannel chan event.TickerEvent

	boundaryTimer *time.Timer

	askDone chan bool
	done    chan bool
}

func NewClock() *Clock {
	ticker := Clock{
		eventChannel: make(chan event.TickerEvent),
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
	return &ticker
}

func nextSecondBoundary(now time.Time) time.Duration {
	return time.Until(now.Truncate(time.Second).Add(time.Second))
}

func (d *Clock) Start() {
	logrus.Infof("Start ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.boundaryTimer = time.NewTimer(nextSecondBoundary(time.Now()))

	go func() {
		for loop := true; loop; {
			select {
			case <-d.boundaryTimer.C:
				now := time.Now()
				d.eventChannel <- event.TickerEvent{Data: event.TickerEventTickData{Now: now}}
				d.boundaryTimer.Reset(nextSecondBoundary(time.Now()))

			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Clock) StopSendingEvent() {
	logrus.Infof("Stop ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.boundaryTimer.Stop()
	d.askDone <- true
	<-d.done
}

func (d *Clock) EventChannel() chan event.TickerEvent {
	return d.eventChannel
}
