package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

const livingRoomJSON = `{
	"name": "Living room",
	"lights": ["1", "2", "5"],
	"sensors": [],
	"type": "Room",
	"state": {"all_on": false, "any_on": true},
	"recycle": false,
	"class": "Living room",
	"action": {
		"on": true,
		"bri": 200,
		"hue": 8418,
		"sat": 140,
		"effect": "none",
		"xy": [0.4573, 0.41],
		"ct": 366,
		"alert": "select",
		"colormode": "ct"
	}
}`

func TestGroupRoundTrip(t *testing.T) {
	var g Group
	if err := json.Unmarshal([]byte(livingRoomJSON), &g); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if g.Name != "Living room" || g.Kind != "Room" || g.Action.CT != 366 {
		t.Fatalf("decoded group = %+v", g)
	}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var again Group
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("Unmarshal of re-encoded group returned error: %v", err)
	}
	if !reflect.DeepEqual(g, again) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", again, g)
	}

	// Wire keys must survive the round trip unchanged
	var original, encoded map[string]any
	_ = json.Unmarshal([]byte(livingRoomJSON), &original)
	_ = json.Unmarshal(data, &encoded)
	if !reflect.DeepEqual(original, encoded) {
		t.Errorf("wire form changed:\n got  %v\n want %v", encoded, original)
	}
}

func TestGroupMissingName(t *testing.T) {
	payload := `{"lights": ["1"], "type": "Room", "action": {"on": false}}`

	var g Group
	err := json.Unmarshal([]byte(payload), &g)
	if !errors.Is(err, ErrMissingName) {
		t.Errorf("Unmarshal error = %v, want ErrMissingName", err)
	}
}

func TestGroupPlaceholderFields(t *testing.T) {
	// A dimmable-only group: no color fields at all
	payload := `{"name": "Hallway", "lights": ["3"], "type": "LightGroup", "action": {"on": false, "bri": 1}}`

	var g Group
	if err := json.Unmarshal([]byte(payload), &g); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if len(g.Action.XY) != 0 || g.Action.ColorMode != "" {
		t.Errorf("expected empty color fields, got %+v", g.Action)
	}
}

func TestGroupStateNormalize(t *testing.T) {
	var g Group
	payload := `{"name": "Office", "state": {"all_on": true, "any_on": false}}`
	if err := json.Unmarshal([]byte(payload), &g); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !g.State.AnyOn {
		t.Error("expected all_on to imply any_on")
	}
}

func TestGroupSetOn(t *testing.T) {
	g := Group{Name: "Kitchen", Lights: []string{"4"}}

	g.SetOn(true)
	if !g.Action.On || !g.State.AllOn || !g.State.AnyOn {
		t.Errorf("after SetOn(true): action=%+v state=%+v", g.Action, g.State)
	}

	g.SetOn(false)
	if g.Action.On || g.State.AnyOn {
		t.Errorf("after SetOn(false): action=%+v state=%+v", g.Action, g.State)
	}
}

func TestGroupsIDs(t *testing.T) {
	gs := Groups{
		"10": {Name: "ten"},
		"2":  {Name: "two"},
		"1":  {Name: "one"},
		"b":  {Name: "bee"},
		"a":  {Name: "ay"},
	}

	got := gs.IDs()
	want := []string{"1", "2", "10", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}
