package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/angristan/lightctl/internal/models"
)

const defaultTimeout = 10 * time.Second

// Options configures a bridge connection. Values are fixed for the lifetime of the client.
type Options struct {
	// IP address or hostname of the bridge
	Host string
	// Whitelisted v1 username
	Token string
	// Per-request timeout, defaults to 10s
	Timeout time.Duration
	// Skip TLS certificate validation. Hue bridges present a self-signed
	// certificate, so this trades server authentication for reachability on
	// a trusted LAN. Never enabled implicitly.
	TrustAnyCertificate bool
	// Re-read the catalog after every write and fail if the change is not visible
	ConfirmWrites bool
}

// HueBridge is a v1 API client for the groups endpoints of a Hue bridge
type HueBridge struct {
	host    string
	token   string
	confirm bool
	client  *http.Client
}

// NewHueBridge creates a new bridge client
func NewHueBridge(opts Options) *HueBridge {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.TrustAnyCertificate {
		log.Warn().Str("host", opts.Host).Msg("TLS certificate validation disabled for bridge")
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &HueBridge{
		host:    opts.Host,
		token:   opts.Token,
		confirm: opts.ConfirmWrites,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Host returns the bridge host
func (b *HueBridge) Host() string {
	return b.host
}

// Close releases idle connections
func (b *HueBridge) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

func (b *HueBridge) url(path string) string {
	return fmt.Sprintf("https://%s/api/%s%s", b.host, b.token, path)
}

// doRequest performs an authenticated v1 API request
func (b *HueBridge) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.url(path), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return b.client.Do(req)
}

// FetchGroups retrieves the full group catalog
func (b *HueBridge) FetchGroups(ctx context.Context) (groups models.Groups, err error) {
	const op = "fetch groups"

	resp, err := b.doRequest(ctx, http.MethodGet, "/groups", nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = &TransportError{Op: op, Err: fmt.Errorf("failed to close response body: %w", cerr)}
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	groups, err = decodeGroups(data)
	if err != nil {
		return nil, &DecodeError{Op: "groups", Err: err}
	}

	log.Debug().Int("groups", len(groups)).Str("host", b.host).Msg("Fetched groups")
	return groups, nil
}

// decodeGroups parses a groups payload. The v1 API answers errors (bad
// username, link button) with an array instead of an object.
func decodeGroups(data []byte) (models.Groups, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []v1Response
		if err := json.Unmarshal(trimmed, &results); err == nil {
			for _, r := range results {
				if r.Error != nil {
					return nil, r.Error
				}
			}
		}
		return nil, fmt.Errorf("expected a group object, got an array")
	}

	var groups models.Groups
	if err := json.Unmarshal(trimmed, &groups); err != nil {
		return nil, err
	}
	if groups == nil {
		return nil, fmt.Errorf("expected a group object, got %q", string(trimmed))
	}
	return groups, nil
}

// SetGroupPower turns every light in a group on or off. Only the "on" field is
// sent; all other action fields keep their bridge-side values.
func (b *HueBridge) SetGroupPower(ctx context.Context, groupID string, on bool) error {
	if err := b.putAction(ctx, groupID, groupPowerPatch{On: on}); err != nil {
		return err
	}

	log.Debug().Str("group", groupID).Bool("on", on).Msg("Set group power")

	if b.confirm {
		return b.confirmPower(ctx, groupID, on)
	}
	return nil
}

type groupPowerPatch struct {
	On bool `json:"on"`
}

// putAction sends a partial action patch. The response body is not inspected.
func (b *HueBridge) putAction(ctx context.Context, groupID string, patch any) (err error) {
	const op = "set group action"

	body, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/groups/%s/action", url.PathEscape(groupID))
	resp, err := b.doRequest(ctx, http.MethodPut, path, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = &TransportError{Op: op, Err: fmt.Errorf("failed to close response body: %w", cerr)}
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	return nil
}

// confirmPower re-reads the catalog and checks the group reflects the requested power state
func (b *HueBridge) confirmPower(ctx context.Context, groupID string, on bool) error {
	groups, err := b.FetchGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm group %s: %w", groupID, err)
	}

	group, ok := groups[groupID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	if group.Action.On != on {
		return fmt.Errorf("%w: group %s reports on=%t", ErrNotConfirmed, groupID, group.Action.On)
	}
	return nil
}
