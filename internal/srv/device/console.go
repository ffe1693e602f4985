package device

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jypelle/horlogo/internal/srv/event"
	"github.com/jypelle/horlogo/internal/srv/render"
	"github.com/sirupsen/logrus"
)

// Console reads the line-oriented command protocol from an input stream
// (normally stdin) and turns each valid line into a typed command event.
// End of input is equivalent to an explicit QUIT.
type Console struct {
	eventChannel chan event.CommandEvent
	input        io.Reader

	askDone chan bool
}

func NewConsole(input io.Reader) *Console {
	device := Console{
		eventChannel: make(chan event.CommandEvent),
		input:        input,
		askDone:      make(chan bool),
	}
	return &device
}

func (d *Console) Start() {
	logrus.Infof("Start console device")

	go func() {
		scanner := bufio.NewScanner(d.input)
		for scanner.Scan() {
			data, err := ParseCommand(scanner.Text())
			if err != nil {
				logrus.Warnf("Ignoring command line: %v", err)
				continue
			}
			if data == nil {
				continue
			}
			select {
			case d.eventChannel <- event.CommandEvent{Data: data}:
			case <-d.askDone:
				return
			}
			if _, quit := data.(event.CommandEventQuitData); quit {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logrus.Warnf("Command stream read error: %v", err)
		}
		logrus.Infof("Command stream closed")
		select {
		case d.eventChannel <- event.CommandEvent{Data: event.CommandEventQuitData{}}:
		case <-d.askDone:
		}
	}()
}

// StopSendingEvent releases the reader goroutine. It does not join it: the
// goroutine may be parked in a read on stdin that only ends with the process.
func (d *Console) StopSendingEvent() {
	logrus.Infof("Stop console device")
	close(d.askDone)
}

func (d *Console) EventChannel() chan event.CommandEvent {
	return d.eventChannel
}

// ParseCommand interprets one protocol line. It returns the typed payload for
// the command, nil for blank and unknown lines (unknown keywords are logged,
// never fatal: future peers may speak a newer protocol), or an error for a
// recognized command with a malformed argument.
func ParseCommand(line string) (interface{}, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	keyword := trimmed
	rest := ""
	if idx := strings.IndexByte(trimmed, ' '); idx >= 0 {
		keyword = trimmed[:idx]
		rest = strings.TrimSpace(trimmed[idx+1:])
	}

	switch keyword {
	case "TIME":
		return event.CommandEventTimeData{Text: rest}, nil
	case "DATE":
		return event.CommandEventDateData{Text: rest}, nil
	case "STATUS":
		return event.CommandEventStatusData{Text: rest}, nil
	case "BRIGHT":
		value, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return nil, fmt.Errorf("BRIGHT wants a number, got %q", rest)
		}
		return event.CommandEventBrightData{Value: value}, nil
	case "COLOR":
		col, err := render.ParseHexColor(rest)
		if err != nil {
			return nil, err
		}
		return event.CommandEventColorData{R: col.R, G: col.G, B: col.B}, nil
	case "SHIFT":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return nil, fmt.Errorf("SHIFT wants two integers, got %q", rest)
		}
		x, errX := strconv.Atoi(fields[0])
		y, errY := strconv.Atoi(fields[1])
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("SHIFT wants two integers, got %q", rest)
		}
		return event.CommandEventShiftData{X: x, Y: y}, nil
	case "QUIT":
		return event.CommandEventQuitData{}, nil
	default:
		logrus.Warnf("Unknown command %q ignored", keyword)
		return nil, nil
	}
}
