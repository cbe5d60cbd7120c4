// Package ioctl encodes and issues Linux ioctl requests for the spidev and fbdev devices.
package ioctl

import (
	"fmt"
	"reflect"
	"syscall"
)

// Mode is the IOCTL mode.
type Mode uint8

// Modes
const (
	None Mode = iota
	Write
	Read
)

func (m Mode) String() string {
	switch m & (Read | Write) {
	case Write:
		return "write"
	case Read:
		return "read"
	case Read | Write:
		return "read/write"
	default:
		return "none"
	}
}

// Command to be sent over ioctl.
type Command uintptr

// Mode of the command.
func (c Command) Mode() Mode {
	return Mode(c >> 30 & 0x03)
}

// Size of the argument in bytes.
func (c Command) Size() uint16 {
	return uint16(c >> 16 & 0x3fff)
}

func (c Command) String() string {
	return fmt.Sprintf("ioctl %s (%d bytes) 0x%04x", c.Mode(), c.Size(), uintptr(c&0xffff))
}

// Do executes the ioctl call with ptr as the argument, ptr must be a pointer or nil.
func Do(fd uintptr, command Command, ptr interface{}) error {
	var p uintptr

	if ptr != nil {
		v := reflect.ValueOf(ptr)
		p = v.Pointer()
	}

	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, uintptr(command), p)
	if errno != 0 {
		return fmt.Errorf("%s failed: %w", command, errno)
	}
	return nil
}

// Call does a plain ioctl system call.
func Call(fd, command, arg uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, command, arg)
	if errno != 0 {
		return fmt.Errorf("%s failed: %w", Command(command), errno)
	}
	return nil
}

// Encode an ioctl command.
func Encode(mode Mode, size uint16, cmd uintptr) Command {
	return Command(mode)<<30 | Command(size&0x3fff)<<16 | Command(cmd&0xffff)
}

// Pointer encodes a command with the size of the value ref points to.
func Pointer(mode Mode, ref interface{}, cmd uintptr) Command {
	size := uint16(reflect.TypeOf(ref).Elem().Size())
	return Encode(mode, size, cmd)
}
