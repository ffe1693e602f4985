package device

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// fbFixScreenInfo mirrors the kernel's fb_fix_screeninfo.
type fbFixScreenInfo struct {
	Id         [16]byte
	Smem       uintptr
	SmemLen    uint32
	Type       uint32
	TypeAux    uint32
	Visual     uint32
	XPanstep   uint16
	YPanstep   uint16
	YWrapstep  uint16
	LineLength uint32
	Mmio       uintptr
	MmioLen    uint32
	Accel      uint32
	Reserved   [3]uint16
}

// fbVarScreenInfo mirrors the leading fields of the kernel's
// fb_var_screeninfo; the tail is never read here.
type fbVarScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	_            [32]uint32
}

func (d *Screen) openDevice() error {
	file, err := os.OpenFile(d.devicePath, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("unable to open device: %w", err)
	}

	var varInfo fbVarScreenInfo
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, file.Fd(), fbioGetVScreenInfo, uintptr(unsafe.Pointer(&varInfo))); errno != 0 {
		file.Close()
		return fmt.Errorf("unable to read variable screen info: %v", errno)
	}

	var fixInfo fbFixScreenInfo
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, file.Fd(), fbioGetFScreenInfo, uintptr(unsafe.Pointer(&fixInfo))); errno != 0 {
		file.Close()
		return fmt.Errorf("unable to read fixed screen info: %v", errno)
	}

	if varInfo.BitsPerPixel != 16 {
		file.Close()
		return fmt.Errorf("display is %d bpp, only 16 bpp RGB565 is supported", varInfo.BitsPerPixel)
	}

	width := int(varInfo.XRes)
	height := int(varInfo.YRes)
	stride := int(fixInfo.LineLength)
	if stride == 0 {
		stride = width * 2
	}

	mapLen := int(fixInfo.SmemLen)
	if mapLen < stride*height {
		file.Close()
		return fmt.Errorf("device memory too small: %d bytes for %d rows of %d", mapLen, height, stride)
	}

	fb, err := syscall.Mmap(int(file.Fd()), 0, mapLen, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		file.Close()
		return fmt.Errorf("unable to mmap device memory: %w", err)
	}

	d.width = width
	d.height = height
	d.stride = stride
	d.fb = fb
	d.file = file
	return nil
}

func (d *Screen) closeDevice() error {
	var firstErr error
	if d.fb != nil {
		if err := syscall.Munmap(d.fb); err != nil {
			firstErr = fmt.Errorf("munmap failed: %w", err)
		}
		d.fb = nil
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("device close failed: %w", err)
		}
		d.file = nil
	}
	return firstErr
}
