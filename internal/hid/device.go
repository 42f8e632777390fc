package hid

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Device is a handle on one device for the duration of an enumeration pass
type Device struct {
	sysPath string
	name    string
}

// openDevice resolves a bus entry (usually a symlink into /sys/devices)
func openDevice(link string) (*Device, error) {
	sysPath, err := filepath.EvalSymlinks(link)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(sysPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a device directory", sysPath)
	}

	return &Device{sysPath: sysPath, name: filepath.Base(link)}, nil
}

// SysPath returns the resolved device directory
func (d *Device) SysPath() string {
	return d.sysPath
}

// Name returns the kernel device name, e.g. "0003:1532:0084.0003"
func (d *Device) Name() string {
	return d.name
}

// Driver returns the name of the bound driver, or "" if unbound
func (d *Device) Driver() string {
	target, err := os.Readlink(filepath.Join(d.sysPath, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(target)
}

// HasAttribute reports whether the device exposes the attribute file, readable or not.
// Failing to stat the file for any reason other than absence is a BusUnavailableError.
func (d *Device) HasAttribute(name string) (bool, error) {
	path := filepath.Join(d.sysPath, name)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, &BusUnavailableError{Path: path, Err: err}
	}
	return info.Mode().IsRegular(), nil
}

// Attribute reads one attribute value with the trailing newline removed
func (d *Device) Attribute(name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(d.sysPath, name))
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(data), "\n"), true
}

// Attributes lists the device directory and yields its readable attributes in
// name order. A directory that cannot be listed is a BusUnavailableError;
// attributes whose value cannot be read, such as write-only effect
// attributes, are skipped.
func (d *Device) Attributes() (iter.Seq2[string, string], error) {
	entries, err := os.ReadDir(d.sysPath)
	if err != nil {
		return nil, &BusUnavailableError{Path: d.sysPath, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return func(yield func(string, string) bool) {
		for _, name := range names {
			value, ok := d.Attribute(name)
			if !ok {
				continue
			}
			if !yield(name, value) {
				return
			}
		}
	}
}
