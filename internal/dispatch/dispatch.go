// Package dispatch maps lightctl commands onto the bridge and hardware backends
// and renders their results.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/angristan/lightctl/internal/api"
	"github.com/angristan/lightctl/internal/hid"
	"github.com/angristan/lightctl/internal/models"
	"github.com/angristan/lightctl/internal/render"
)

// DefaultPattern is the static effect written when no color is given
var DefaultPattern = [3]byte{0x00, 0xFF, 0x00}

var ErrNoBridge = errors.New("no bridge configured")

// Options wires a Dispatcher to its backends. Only the backend used by a
// command needs to be set.
type Options struct {
	Bridge api.BridgeClient
	Bus    *hid.Bus
	Out    io.Writer

	// Subsystem to enumerate and the attribute a device must expose
	Subsystem string
	Marker    string

	// Discover defaults to api.DiscoverAll
	Discover api.Discoverer
}

// Dispatcher runs one command per invocation
type Dispatcher struct {
	bridge    api.BridgeClient
	bus       *hid.Bus
	out       io.Writer
	subsystem string
	marker    string
	discover  api.Discoverer
}

// New creates a Dispatcher
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		bridge:    opts.Bridge,
		bus:       opts.Bus,
		out:       opts.Out,
		subsystem: opts.Subsystem,
		marker:    opts.Marker,
		discover:  opts.Discover,
	}
	if d.out == nil {
		d.out = os.Stdout
	}
	if d.bus == nil {
		d.bus = hid.NewBus("")
	}
	if d.subsystem == "" {
		d.subsystem = "hid"
	}
	if d.marker == "" {
		d.marker = "device_type"
	}
	if d.discover == nil {
		d.discover = api.DiscoverAll
	}
	return d
}

// HueList fetches the group catalog and renders every group
func (d *Dispatcher) HueList(ctx context.Context, asJSON bool) error {
	if d.bridge == nil {
		return ErrNoBridge
	}

	groups, err := d.bridge.FetchGroups(ctx)
	if err != nil {
		return err
	}
	log.Debug().Int("groups", len(groups)).Msg("Fetched group catalog")

	if asJSON {
		return render.GroupsJSON(d.out, groups)
	}
	return render.Groups(d.out, groups)
}

// HueOn turns a group on. A color is parsed and reported but not applied.
func (d *Dispatcher) HueOn(ctx context.Context, groupID string, color string) error {
	if d.bridge == nil {
		return ErrNoBridge
	}

	if color != "" {
		rgb, err := models.ParseColor(color)
		if err != nil {
			return fmt.Errorf("--color: %w", err)
		}
		if err := render.Unsupported(d.out, "Setting a color", "parsed "+rgb.HexString()+", turning the group on only"); err != nil {
			return err
		}
	}

	return d.setPower(ctx, groupID, true)
}

// HueOff turns a group off
func (d *Dispatcher) HueOff(ctx context.Context, groupID string) error {
	if d.bridge == nil {
		return ErrNoBridge
	}
	return d.setPower(ctx, groupID, false)
}

func (d *Dispatcher) setPower(ctx context.Context, groupID string, on bool) error {
	if err := d.bridge.SetGroupPower(ctx, groupID, on); err != nil {
		return err
	}

	state := "off"
	if on {
		state = "on"
	}
	log.Info().Str("group", groupID).Str("host", d.bridge.Host()).Bool("on", on).Msg("Group power set")
	return render.Success(d.out, "Group %s turned %s", groupID, state)
}

// HueUnsupported reports a bridge subcommand that is accepted but does nothing
func (d *Dispatcher) HueUnsupported(name string) error {
	log.Debug().Str("command", name).Msg("Unimplemented hue subcommand")
	return render.Notice(d.out, "hue %s is not implemented", name)
}

// HueDiscover looks for bridges on the network and in the cloud registry
func (d *Dispatcher) HueDiscover(ctx context.Context, timeout time.Duration) error {
	bridges, err := d.discover(ctx, timeout)
	if err != nil {
		return err
	}
	return render.Bridges(d.out, bridges)
}

// StaticEffect writes payload to every device on the subsystem that exposes
// the marker attribute. Devices are handled one after another and a failed
// write does not stop the pass; the returned error joins every IoError.
// A bus or device read failure ends the pass immediately.
func (d *Dispatcher) StaticEffect(ctx context.Context, payload [3]byte) ([]hid.EffectResult, error) {
	e, err := d.bus.Enumerate(d.subsystem)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	var (
		results []hid.EffectResult
		errs    []error
		aborted error
	)

	for e.Next() {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		dev := e.Device()
		result, ok, err := d.effectTarget(dev)
		if err != nil {
			aborted = err
			break
		}
		if !ok {
			continue
		}
		result.Payload = payload

		if err := hid.TriggerStaticEffect(dev, payload); err != nil {
			log.Warn().Err(err).Str("device", dev.Name()).Msg("Static effect failed")
			result.Err = err
			errs = append(errs, err)
		}
		results = append(results, result)
	}

	if aborted == nil {
		aborted = e.Err()
	}
	if aborted != nil {
		// The aborted pass is reported ahead of any write failures
		errs = append([]error{aborted}, errs...)
	}

	if err := render.EffectResults(d.out, results); err != nil {
		errs = append(errs, err)
	}

	return results, errors.Join(errs...)
}

// effectTarget reads the device's attribute table and reports whether it
// carries the marker
func (d *Dispatcher) effectTarget(dev *hid.Device) (hid.EffectResult, bool, error) {
	hasMarker, err := dev.HasAttribute(d.marker)
	if err != nil {
		return hid.EffectResult{}, false, err
	}
	if !hasMarker {
		log.Debug().Str("device", dev.Name()).Str("marker", d.marker).Msg("Skipping device without marker")
		return hid.EffectResult{}, false, nil
	}

	attrs, err := dev.Attributes()
	if err != nil {
		return hid.EffectResult{}, false, err
	}

	result := hid.EffectResult{Device: dev.Name(), SysPath: dev.SysPath()}
	event := log.Debug().Str("device", dev.Name()).Str("driver", dev.Driver())
	for name, value := range attrs {
		if name == d.marker {
			result.Type = value
		}
		event = event.Str(name, value)
	}
	event.Msg("Matched device")

	return result, true, nil
}
