//go:build linux

package proctitle

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Set renames the calling thread group leader via PR_SET_NAME.
func Set(title string) error {
	name := Truncate(title)
	if name == "" {
		return errors.New("empty process title")
	}
	b, err := unix.BytePtrFromString(name)
	if err != nil {
		return err
	}
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(b)), 0, 0, 0)
}
