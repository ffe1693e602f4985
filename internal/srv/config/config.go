package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const paramFilename = "param.yaml"

type ServerConfig struct {
	ConfigDir      string
	DebugMode      bool
	SimulationMode bool

	*ServerParam
}

func NewServerConfig(configDir string, debugMode bool, simulationMode bool) *ServerConfig {
	serverConfig := &ServerConfig{
		ConfigDir:      configDir,
		DebugMode:      debugMode,
		SimulationMode: simulationMode,
	}

	// Check configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Printf("Creation of config folder: %s", configDir)
			err = os.MkdirAll(configDir, 0770)
			if err != nil {
				logrus.Fatalf("Unable to create config folder: %v\n", err)
			}
		} else {
			logrus.Fatalf("Unable to access config folder: %s", configDir)
		}
	}

	// Open param file
	rawConfig, err := ioutil.ReadFile(serverConfig.GetCompleteParamFilename())
	if err == nil {
		// Interpret param file
		serverConfig.ServerParam = &ServerParam{}
		err = yaml.Unmarshal(rawConfig, serverConfig.ServerParam)
		if err != nil {
			logrus.Fatalf("Unable to interpret config file: %v\n", err)
		}
	} else {
		// Create default param file
		logrus.Infof("Create default param file")
		serverConfig.ServerParam = &ServerParam{}

		err = yaml.Unmarshal(ParamDefaultFile, serverConfig.ServerParam)
		if err != nil {
			logrus.Fatalf("Unable to interpret config file: %v\n", err)
		}

		serverConfig.SaveParam()
	}

	serverConfig.applyEnvOverrides()

	return serverConfig
}

// applyEnvOverrides lets a supervisor adjust the rendering essentials without
// touching the param file.
func (sc *ServerConfig) applyEnvOverrides() {
	if fbDevice := os.Getenv("FB_DEVICE"); fbDevice != "" {
		logrus.Infof("Framebuffer device overridden by environment: %s", fbDevice)
		sc.DisplayParam.FbDevice = fbDevice
	}
	if fontPath := os.Getenv("FONT_PATH"); fontPath != "" {
		logrus.Infof("Font path overridden by environment: %s", fontPath)
		sc.DisplayParam.FontPath = fontPath
	}
	if rawSize := os.Getenv("TIME_FONT_SIZE"); rawSize != "" {
		size, err := strconv.ParseFloat(rawSize, 64)
		if err != nil || size <= 0 {
			logrus.Warnf("Ignoring invalid TIME_FONT_SIZE: %s", rawSize)
		} else {
			sc.DisplayParam.TimeFontSize = size
		}
	}
	if rawSize := os.Getenv("DATE_FONT_SIZE"); rawSize != "" {
		size, err := strconv.ParseFloat(rawSize, 64)
		if err != nil || size <= 0 {
			logrus.Warnf("Ignoring invalid DATE_FONT_SIZE: %s", rawSize)
		} else {
			sc.DisplayParam.DateFontSize = size
		}
	}
	if color := os.Getenv("COLOR"); color != "" {
		sc.DisplayParam.Color = color
	}
}

func (sc *ServerConfig) GetCompleteParamFilename() string {
	return filepath.Join(sc.ConfigDir, paramFilename)
}

func (sc *ServerConfig) SaveParam() {
	logrus.Debugf("Save param file: %s", sc.GetCompleteParamFilename())
	rawConfig, err := yaml.Marshal(*sc.ServerParam)
	if err != nil {
		logrus.Fatalf("Unable to serialize param file: %v\n", err)
	}
	err = ioutil.WriteFile(sc.GetCompleteParamFilename(), rawConfig, 0660)
	if err != nil {
		logrus.Fatalf("Unable to save param file: %v\n", err)
	}
}
