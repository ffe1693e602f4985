package config

import (
	_ "embed"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	DisplayParam     DisplayParam     `yaml:"display"`
	NightParam       NightParam       `yaml:"night"`
	ScreensaverParam ScreensaverParam `yaml:"screensaver"`
	PixelShiftParam  PixelShiftParam  `yaml:"pixel_shift"`
	ApiParam         ApiParam         `yaml:"api"`
}

type DisplayParam struct {
	FbDevice         string  `yaml:"fb_device"`
	FontPath         string  `yaml:"font_path"`
	TimeFontSize     float64 `yaml:"time_font_size"`
	DateFontSize     float64 `yaml:"date_font_size"`
	Color            string  `yaml:"color"`
	StatusBarEnabled bool    `yaml:"status_bar_enabled"`
}

type NightParam struct {
	Enabled    bool         `yaml:"enabled"`
	Window     TimingWindow `yaml:",inline"`
	Brightness float64      `yaml:"brightness"`
}

type ScreensaverParam struct {
	Enabled bool         `yaml:"enabled"`
	Window  TimingWindow `yaml:",inline"`
}

type PixelShiftParam struct {
	Enabled         bool         `yaml:"enabled"`
	IntervalSeconds int64        `yaml:"interval_seconds"`
	MaxOffset       int          `yaml:"max_offset"`
	DisableWindow   TimingWindow `yaml:"disable_window"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	SslPort int64  `yaml:"ssl_port"`
	ApiKey  string `yaml:"api_key"`
}
