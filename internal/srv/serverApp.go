package srv

import (
	"os"
	"time"

	"github.com/jypelle/horlogo/internal/srv/config"
	"github.com/jypelle/horlogo/internal/srv/device"
	"github.com/jypelle/horlogo/internal/srv/event"
	"github.com/jypelle/horlogo/internal/srv/render"
	"github.com/jypelle/horlogo/internal/version"
	"github.com/sirupsen/logrus"
)

type ServerApp struct {
	*config.ServerConfig

	screenDevice  *device.Screen
	clockDevice   *device.Clock
	consoleDevice *device.Console
	apiDevice     *device.Api

	glyphCache *render.GlyphCache
	compositor *render.Compositor
	controller *renderController

	// nil when the api device is disabled, which parks its select arm.
	apiEventChannel chan event.ApiEvent

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

func NewServerApp(configDir string, debugMode bool, simulationMode bool) *ServerApp {

	logrus.Debugf("Creation of horlogo server %s ...", version.AppVersion.String())

	app := &ServerApp{
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
		ServerConfig:     config.NewServerConfig(configDir, debugMode, simulationMode),
	}

	app.screenDevice = device.NewScreen(app.DisplayParam.FbDevice, app.SimulationMode)
	app.clockDevice = device.NewClock()
	app.consoleDevice = device.NewConsole(os.Stdin)
	if app.ApiParam.Enabled {
		app.apiDevice = device.NewApi(app.ServerConfig)
		app.apiEventChannel = app.apiDevice.EventChannel()
	}

	logrus.Debugln("Server created")

	return app
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting horlogo server ...")

	logrus.Printf("Starting devices ...")

	// Start screen device: display geometry is only known once it is mapped
	s.screenDevice.Start()

	// Load font and build glyph caches
	glyphCache, err := render.NewGlyphCache(
		s.DisplayParam.FontPath,
		s.DisplayParam.TimeFontSize,
		s.DisplayParam.DateFontSize)
	if err != nil {
		logrus.Fatalf("Unable to load font %s: %v", s.DisplayParam.FontPath, err)
	}
	s.glyphCache = glyphCache

	canvas := render.NewCanvas(s.screenDevice.Width(), s.screenDevice.Height())
	s.compositor = render.NewCompositor(s.glyphCache, canvas, s.DisplayParam.StatusBarEnabled)
	s.controller = newRenderController(s.ServerParam, s.compositor, s.screenDevice)

	// First frame before any command arrives
	if err := s.controller.Tick(time.Now()); err != nil {
		logrus.Fatalf("Display failure: %v", err)
	}

	// Start event loop
	go s.eventLoop()

	// Start clock device
	s.clockDevice.Start()

	// Start console device
	s.consoleDevice.Start()

	// Start api device
	if s.apiDevice != nil {
		s.apiDevice.Start()
	}
}

func (s *ServerApp) Stop() {
	logrus.Printf("Stopping horlogo server ...")

	// Stop api
	if s.apiDevice != nil {
		s.apiDevice.StopSendingEvent()
	}

	// Stop console device
	s.consoleDevice.StopSendingEvent()

	// Stop clock device
	s.clockDevice.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Leave a black display behind
	if err := s.screenDevice.Clear(); err != nil {
		logrus.Warnf("Unable to clear display on shutdown: %v", err)
	}

	// Stop screen device
	s.screenDevice.Stop()

	logrus.Printf("Server stopped")

	os.Exit(0)
}
