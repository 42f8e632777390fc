package hid

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// StaticEffectAttribute is the attribute that sets a fixed logo color
const StaticEffectAttribute = "logo_matrix_effect_static"

// IoError reports an attribute file that could not be opened or fully written
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// TriggerStaticEffect writes the 3-byte static effect command in a single
// unbuffered write. The bytes are passed to the driver as-is.
func TriggerStaticEffect(dev *Device, payload [3]byte) error {
	path := filepath.Join(dev.SysPath(), StaticEffectAttribute)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return &IoError{Path: path, Err: err}
	}

	n, err := f.Write(payload[:])
	cerr := f.Close()
	switch {
	case err != nil:
		return &IoError{Path: path, Err: err}
	case n != len(payload):
		return &IoError{Path: path, Err: io.ErrShortWrite}
	case cerr != nil:
		return &IoError{Path: path, Err: cerr}
	}

	log.Debug().Str("device", dev.Name()).Hex("payload", payload[:]).Msg("Static effect written")
	return nil
}

// EffectResult records the outcome of one device write in a pass
type EffectResult struct {
	Device  string
	SysPath string
	Type    string
	Payload [3]byte
	Err     error
}

// OK reports whether the write landed
func (r EffectResult) OK() bool {
	return r.Err == nil
}
