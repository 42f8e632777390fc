package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

const hueService = "_hue._tcp"

// CloudDiscoveryURL is the Hue cloud (N-UPnP) discovery endpoint
var CloudDiscoveryURL = "https://discovery.meethue.com"

// DiscoveredBridge represents a Hue bridge found during discovery
type DiscoveredBridge struct {
	// IP address of the bridge
	Host string `json:"host"`
	// Unique bridge identifier
	BridgeID string `json:"bridge_id,omitempty"`
	// Model ID (e.g., "BSB002")
	ModelID string `json:"model_id,omitempty"`
	// Name from mDNS
	Name string `json:"name,omitempty"`
	// "mDNS" or "cloud"
	Source string `json:"source"`
}

// Key identifies a bridge across discovery sources
func (b DiscoveredBridge) Key() string {
	if b.BridgeID != "" {
		return strings.ToLower(b.BridgeID)
	}
	return b.Host
}

// bridgeFromEntry converts an mDNS answer, reading bridgeid/modelid TXT records
func bridgeFromEntry(entry *mdns.ServiceEntry) (DiscoveredBridge, bool) {
	if entry.AddrV4 == nil {
		return DiscoveredBridge{}, false
	}

	bridge := DiscoveredBridge{
		Host:   entry.AddrV4.String(),
		Name:   entry.Name,
		Source: "mDNS",
	}
	for _, txt := range entry.InfoFields {
		if v, ok := strings.CutPrefix(txt, "bridgeid="); ok {
			bridge.BridgeID = v
		}
		if v, ok := strings.CutPrefix(txt, "modelid="); ok {
			bridge.ModelID = v
		}
	}
	if bridge.Name == "" && entry.Host != "" {
		bridge.Name = strings.TrimSuffix(entry.Host, ".")
	}
	return bridge, true
}

// DiscoverMDNS discovers Hue bridges on the local network using mDNS
func DiscoverMDNS(ctx context.Context, timeout time.Duration) ([]DiscoveredBridge, error) {
	var (
		bridges []DiscoveredBridge
		wg      sync.WaitGroup
	)

	entriesCh := make(chan *mdns.ServiceEntry, 10)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entriesCh {
			if bridge, ok := bridgeFromEntry(entry); ok {
				bridges = append(bridges, bridge)
			}
		}
	}()

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	params := mdns.DefaultParams(hueService)
	params.Entries = entriesCh
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entriesCh)
	wg.Wait()

	if err != nil {
		return bridges, fmt.Errorf("mDNS query failed: %w", err)
	}

	log.Debug().Int("bridges", len(bridges)).Msg("mDNS discovery finished")
	return bridges, nil
}

// nupnpResponse represents the response from Hue cloud discovery
type nupnpResponse struct {
	ID                string `json:"id"`
	InternalIPAddress string `json:"internalipaddress"`
	Port              int    `json:"port"`
}

// DiscoverCloud discovers Hue bridges using the Philips Hue cloud service (NUPNP)
func DiscoverCloud(ctx context.Context, timeout time.Duration) (bridges []DiscoveredBridge, err error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, CloudDiscoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud discovery request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloud discovery returned status %d", resp.StatusCode)
	}

	var results []nupnpResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	bridges = make([]DiscoveredBridge, 0, len(results))
	for _, r := range results {
		host := r.InternalIPAddress
		if r.Port != 0 && r.Port != 443 {
			host = fmt.Sprintf("%s:%d", host, r.Port)
		}
		bridges = append(bridges, DiscoveredBridge{
			Host:     host,
			BridgeID: r.ID,
			Source:   "cloud",
		})
	}

	log.Debug().Int("bridges", len(bridges)).Msg("Cloud discovery finished")
	return bridges, nil
}

// Discoverer finds bridges for one discovery source
type Discoverer func(ctx context.Context, timeout time.Duration) ([]DiscoveredBridge, error)

// DiscoverAll runs mDNS and cloud discovery concurrently and merges the results
func DiscoverAll(ctx context.Context, timeout time.Duration) ([]DiscoveredBridge, error) {
	return discoverWith(ctx, timeout, DiscoverMDNS, DiscoverCloud)
}

func discoverWith(ctx context.Context, timeout time.Duration, sources ...Discoverer) ([]DiscoveredBridge, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		bridges []DiscoveredBridge
		err     error
	}

	results := make(chan result, len(sources))
	for _, discover := range sources {
		go func() {
			bridges, err := discover(ctx, timeout)
			results <- result{bridges: bridges, err: err}
		}()
	}

	var (
		all     []DiscoveredBridge
		lastErr error
	)
	seen := make(map[string]bool)

	for received := 0; received < len(sources); received++ {
		select {
		case r := <-results:
			if r.err != nil {
				log.Debug().Err(r.err).Msg("Discovery source failed")
				lastErr = r.err
			}
			for _, b := range r.bridges {
				if !seen[b.Key()] {
					seen[b.Key()] = true
					all = append(all, b)
				}
			}
		case <-ctx.Done():
			if len(all) > 0 {
				return all, nil
			}
			return nil, ctx.Err()
		}
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}

	return all, nil
}
