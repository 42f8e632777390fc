package api

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/angristan/lightctl/internal/models"
)

// DemoBridge implements BridgeClient for demo mode without a real Hue bridge.
// All state changes are maintained in memory.
type DemoBridge struct {
	groups models.Groups
	mu     sync.RWMutex
}

// NewDemoBridge creates a demo bridge with sample data
func NewDemoBridge() *DemoBridge {
	return NewDemoBridgeWith(demoGroups())
}

// NewDemoBridgeWith creates a demo bridge serving the given catalog
func NewDemoBridgeWith(groups models.Groups) *DemoBridge {
	d := &DemoBridge{groups: make(models.Groups, len(groups))}
	for id, g := range groups {
		d.groups[id] = cloneGroup(g)
	}
	return d
}

// Host returns the demo bridge host
func (d *DemoBridge) Host() string {
	return "demo-bridge.local"
}

// FetchGroups returns a copy of the demo catalog
func (d *DemoBridge) FetchGroups(ctx context.Context) (models.Groups, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	// Return copies to avoid external modification
	groups := make(models.Groups, len(d.groups))
	for id, g := range d.groups {
		groups[id] = cloneGroup(g)
	}
	return groups, nil
}

// SetGroupPower turns a demo group on or off
func (d *DemoBridge) SetGroupPower(ctx context.Context, groupID string, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[groupID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	g.SetOn(on)
	d.groups[groupID] = g
	return nil
}

func cloneGroup(g models.Group) models.Group {
	g.Lights = slices.Clone(g.Lights)
	g.Sensors = slices.Clone(g.Sensors)
	g.Action.XY = slices.Clone(g.Action.XY)
	return g
}

// demoGroups builds the sample catalog
func demoGroups() models.Groups {
	return models.Groups{
		"1": {
			Name:    "Living Room",
			Lights:  []string{"1", "2", "3", "4"},
			Sensors: []string{},
			Kind:    "Room",
			Class:   "Living room",
			State:   models.GroupState{AllOn: false, AnyOn: true},
			Action: models.GroupAction{
				On: true, Bri: 200, Hue: 8418, Sat: 140, Effect: "none",
				XY: []float64{0.4573, 0.41}, CT: 366, Alert: "none", ColorMode: "ct",
			},
		},
		"2": {
			Name:    "Bedroom",
			Lights:  []string{"5", "6", "7"},
			Sensors: []string{},
			Kind:    "Room",
			Class:   "Bedroom",
			Action: models.GroupAction{
				Bri: 120, Hue: 47104, Sat: 254, Effect: "none",
				XY: []float64{0.1532, 0.0475}, CT: 153, Alert: "none", ColorMode: "xy",
			},
		},
		"3": {
			Name:    "Kitchen",
			Lights:  []string{"8", "9"},
			Sensors: []string{},
			Kind:    "Room",
			Class:   "Kitchen",
			State:   models.GroupState{AllOn: true, AnyOn: true},
			Action:  models.GroupAction{On: true, Bri: 254, Alert: "none"},
		},
		"4": {
			Name:    "Office",
			Lights:  []string{"10", "11", "12"},
			Sensors: []string{},
			Kind:    "Zone",
			Class:   "Office",
			Action: models.GroupAction{
				Bri: 180, CT: 233, Effect: "none", Alert: "none", ColorMode: "ct",
			},
		},
	}
}
