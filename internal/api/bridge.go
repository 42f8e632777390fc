package api

import (
	"context"

	"github.com/angristan/lightctl/internal/models"
)

// BridgeClient defines the interface for interacting with a Hue bridge.
// This abstraction allows for both real bridge connections and demo mode.
type BridgeClient interface {
	// FetchGroups retrieves the full group catalog
	FetchGroups(ctx context.Context) (models.Groups, error)

	// SetGroupPower turns all lights in a group on or off
	SetGroupPower(ctx context.Context, groupID string, on bool) error

	// Metadata
	Host() string
}

// Compile-time checks
var (
	_ BridgeClient = (*HueBridge)(nil)
	_ BridgeClient = (*DemoBridge)(nil)
)
