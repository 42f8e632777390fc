package api

import (
	"context"
	"errors"
	"testing"
)

func TestDemoBridgeData(t *testing.T) {
	d := NewDemoBridge()
	groups, err := d.FetchGroups(context.Background())
	if err != nil {
		t.Fatalf("FetchGroups returned error: %v", err)
	}

	t.Logf("Groups: %d", len(groups))

	if len(groups) == 0 {
		t.Error("No groups returned")
	}

	for id, g := range groups {
		if g.Name == "" {
			t.Errorf("Group %s has no name", id)
		}
		if len(g.Lights) == 0 {
			t.Errorf("Group %s has no lights", g.Name)
		}
		if g.State.AllOn && !g.State.AnyOn {
			t.Errorf("Group %s has all_on without any_on", g.Name)
		}
	}
}

func TestDemoBridgeSetGroupPower(t *testing.T) {
	ctx := context.Background()
	d := NewDemoBridge()

	if err := d.SetGroupPower(ctx, "2", true); err != nil {
		t.Fatalf("SetGroupPower returned error: %v", err)
	}

	groups, _ := d.FetchGroups(ctx)
	if !groups["2"].Action.On || !groups["2"].State.AnyOn {
		t.Errorf("group 2 after on: action=%+v state=%+v", groups["2"].Action, groups["2"].State)
	}

	if err := d.SetGroupPower(ctx, "99", true); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("SetGroupPower(99) error = %v, want ErrGroupNotFound", err)
	}
}

func TestDemoBridgeReturnsCopies(t *testing.T) {
	ctx := context.Background()
	d := NewDemoBridge()

	groups, _ := d.FetchGroups(ctx)
	g := groups["1"]
	g.Lights[0] = "mutated"
	g.Name = "mutated"
	groups["1"] = g

	again, _ := d.FetchGroups(ctx)
	if again["1"].Name == "mutated" || again["1"].Lights[0] == "mutated" {
		t.Error("FetchGroups exposed internal state")
	}
}
