package models

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
)

// ErrMissingName is returned when a group payload has no name
var ErrMissingName = errors.New("group is missing required field \"name\"")

// GroupState is the aggregate power state the bridge derives from member lights
type GroupState struct {
	// Every member light is on
	AllOn bool `json:"all_on"`
	// At least one member light is on
	AnyOn bool `json:"any_on"`
}

// Normalize enforces AllOn implies AnyOn
func (s *GroupState) Normalize() {
	if s.AllOn {
		s.AnyOn = true
	}
}

// GroupAction is the control vector the bridge applies to every light in a group.
// Groups without color capability still carry the full structure with placeholder
// values, so zero values are valid.
type GroupAction struct {
	On bool `json:"on"`
	// Brightness: 0-255
	Bri uint8 `json:"bri"`
	// Hue: 0-65535
	Hue uint16 `json:"hue"`
	// Saturation: 0-255
	Sat    uint8  `json:"sat"`
	Effect string `json:"effect"`
	// CIE 1931 xy pair, empty when the group is not color capable
	XY []float64 `json:"xy"`
	// Color temperature in mired
	CT        uint16 `json:"ct"`
	Alert     string `json:"alert"`
	ColorMode string `json:"colormode"`
}

// Group represents a light group as reported by the v1 groups endpoint
type Group struct {
	Name    string      `json:"name"`
	Lights  []string    `json:"lights"`
	Sensors []string    `json:"sensors"`
	Kind    string      `json:"type"`
	State   GroupState  `json:"state"`
	Recycle bool        `json:"recycle"`
	Class   string      `json:"class"`
	Action  GroupAction `json:"action"`
}

// UnmarshalJSON decodes a group and rejects payloads without a name
func (g *Group) UnmarshalJSON(data []byte) error {
	type plain Group
	var raw struct {
		plain
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Name == nil {
		return ErrMissingName
	}

	*g = Group(raw.plain)
	g.Name = *raw.Name
	g.State.Normalize()
	return nil
}

// SetOn applies a power change the way the bridge reflects it back
func (g *Group) SetOn(on bool) {
	g.Action.On = on
	g.State.AllOn = on && len(g.Lights) > 0
	g.State.AnyOn = on && len(g.Lights) > 0
}

// Groups maps bridge group IDs to groups
type Groups map[string]Group

// IDs returns the group IDs in numeric order, falling back to lexical order
// for IDs that are not numbers
func (gs Groups) IDs() []string {
	ids := make([]string, 0, len(gs))
	for id := range gs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aErr := strconv.Atoi(ids[i])
		b, bErr := strconv.Atoi(ids[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}
