package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrLinkButtonNotPressed = errors.New("link button not pressed")
	ErrPairingTimeout       = errors.New("pairing timeout - link button was not pressed")
)

// linkButtonNotPressed is the v1 error type returned until the button is pressed
const linkButtonNotPressed = 101

// PairOptions configures link-button pairing
type PairOptions struct {
	Host string
	// Application identifier registered on the bridge, e.g. "lightctl#laptop"
	DeviceType string
	// How long to wait for the link button
	Timeout time.Duration
	// Delay between attempts, defaults to 1s
	RetryInterval time.Duration
	// See Options.TrustAnyCertificate
	TrustAnyCertificate bool
}

func pairingClient(trustAny bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if trustAny {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{Timeout: 10 * time.Second, Transport: transport}
}

// pairingRequest is the body sent to create an app key
type pairingRequest struct {
	DeviceType string `json:"devicetype"`
}

// CreateAppKey attempts to create a whitelisted username on the bridge.
// The user must press the link button on the bridge within the timeout.
func CreateAppKey(ctx context.Context, opts PairOptions) (string, error) {
	client := pairingClient(opts.TrustAnyCertificate)
	url := fmt.Sprintf("https://%s/api", opts.Host)

	bodyBytes, err := json.Marshal(pairingRequest{DeviceType: opts.DeviceType})
	if err != nil {
		return "", err
	}

	retryInterval := opts.RetryInterval
	if retryInterval == 0 {
		retryInterval = time.Second
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		key, err := requestAppKey(ctx, client, url, bodyBytes)
		switch {
		case err == nil:
			log.Info().Str("host", opts.Host).Msg("Paired with bridge")
			return key, nil
		case errors.Is(err, ErrLinkButtonNotPressed):
			log.Debug().Msg("Waiting for link button")
		case ctx.Err() != nil:
		default:
			var bridgeErr *BridgeError
			if errors.As(err, &bridgeErr) {
				return "", fmt.Errorf("pairing error: %w", err)
			}
			// Network error, wait and retry
			log.Debug().Err(err).Msg("Pairing attempt failed")
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", ErrPairingTimeout
			}
			return "", ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// requestAppKey performs one pairing attempt
func requestAppKey(ctx context.Context, client *http.Client, url string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "pair", Err: err}
	}
	defer resp.Body.Close()

	var responses []v1Response
	if err := json.NewDecoder(resp.Body).Decode(&responses); err != nil {
		return "", &DecodeError{Op: "pairing", Err: err}
	}
	if len(responses) == 0 {
		return "", &DecodeError{Op: "pairing", Err: errors.New("empty response")}
	}

	response := responses[0]
	if response.Error != nil {
		if response.Error.Type == linkButtonNotPressed {
			return "", ErrLinkButtonNotPressed
		}
		return "", response.Error
	}
	if username, ok := response.Success["username"].(string); ok && username != "" {
		return username, nil
	}
	return "", &DecodeError{Op: "pairing", Err: errors.New("response has no username")}
}

// GetBridgeID retrieves the bridge ID from the unauthenticated config endpoint
func GetBridgeID(ctx context.Context, host string, trustAny bool) (string, error) {
	client := pairingClient(trustAny)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("https://%s/api/0/config", host), nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "get bridge config", Err: err}
	}
	defer resp.Body.Close()

	var config struct {
		BridgeID string `json:"bridgeid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&config); err != nil {
		return "", &DecodeError{Op: "bridge config", Err: err}
	}

	return config.BridgeID, nil
}
