package srv

import (
	"syscall"
	"time"

	"github.com/jypelle/horlogo/internal/srv/event"
	"github.com/sirupsen/logrus"
)

func (s *ServerApp) eventLoop() {
	for loop := true; loop; {
		select {
		case ev := <-s.clockDevice.EventChannel():
			switch data := ev.Data.(type) {
			case event.TickerEventTickData:
				logrus.Debugf("Receive ticker tick event")
				if err := s.controller.Tick(data.Now); err != nil {
					logrus.Fatalf("Display failure: %v", err)
				}
			}
		case ev := <-s.consoleDevice.EventChannel():
			logrus.Debugf("Receive console command event")
			if s.controller.ApplyCommand(ev.Data) {
				logrus.Infof("Quit requested")
				syscall.Kill(syscall.Getpid(), syscall.SIGUSR1)
				break
			}
			// Catch up right away instead of waiting for the next tick.
			if err := s.controller.Tick(time.Now()); err != nil {
				logrus.Fatalf("Display failure: %v", err)
			}
		case ev := <-s.apiEventChannel:
			switch ev.Data.(type) {
			case event.ApiEventIsAliveData:
				ev.Result <- s.controller.LastTick()
			case event.ApiEventStatusData:
				ev.Result <- event.ApiStatusResult{Status: s.controller.Status()}
			}
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}
