//go:build !linux
// +build !linux

package device

import "fmt"

func (d *Screen) openDevice() error {
	return fmt.Errorf("direct framebuffer access requires linux; use simulation mode")
}

func (d *Screen) closeDevice() error {
	return nil
}
