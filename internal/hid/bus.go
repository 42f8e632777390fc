// Package hid enumerates kernel devices through sysfs and drives lighting
// effects by writing their vendor attribute files.
package hid

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DefaultRoot is where sysfs is mounted
const DefaultRoot = "/sys"

// BusUnavailableError reports a device tree that cannot be opened or walked
type BusUnavailableError struct {
	Path string
	Err  error
}

func (e *BusUnavailableError) Error() string {
	return fmt.Sprintf("device bus unavailable at %s: %v", e.Path, e.Err)
}

func (e *BusUnavailableError) Unwrap() error { return e.Err }

// Bus enumerates devices below a sysfs root
type Bus struct {
	root string
}

// NewBus creates a bus rooted at root, or DefaultRoot when empty
func NewBus(root string) *Bus {
	if root == "" {
		root = DefaultRoot
	}
	return &Bus{root: root}
}

// Enumerate starts a pass over every device attached to subsystem. Marker
// filtering is left to the caller.
func (b *Bus) Enumerate(subsystem string) (*Enumeration, error) {
	dir := filepath.Join(b.root, "bus", subsystem, "devices")

	f, err := os.Open(dir)
	if err != nil {
		return nil, &BusUnavailableError{Path: dir, Err: err}
	}

	log.Debug().Str("subsystem", subsystem).Str("path", dir).Msg("Enumerating devices")
	return &Enumeration{dir: dir, f: f}, nil
}

// Enumeration is a lazy, single-use sequence of devices. Iterate with Next
// and Device, then check Err.
type Enumeration struct {
	dir string
	f   *os.File
	cur *Device
	err error
}

// Next advances to the next device. It returns false when the pass is
// finished or a device could not be read; the latter aborts the pass.
func (e *Enumeration) Next() bool {
	if e.f == nil {
		return false
	}

	entries, err := e.f.ReadDir(1)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			e.err = &BusUnavailableError{Path: e.dir, Err: err}
		}
		e.Close()
		return false
	}

	link := filepath.Join(e.dir, entries[0].Name())
	dev, err := openDevice(link)
	if err != nil {
		e.err = &BusUnavailableError{Path: link, Err: err}
		e.Close()
		return false
	}

	e.cur = dev
	return true
}

// Device returns the current device
func (e *Enumeration) Device() *Device {
	return e.cur
}

// Err returns the error that ended the pass, if any
func (e *Enumeration) Err() error {
	return e.err
}

// Close ends the pass early. Safe to call more than once.
func (e *Enumeration) Close() {
	if e.f != nil {
		_ = e.f.Close()
		e.f = nil
	}
	e.cur = nil
}
