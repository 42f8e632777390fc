package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestCreateAppKeyAfterButtonPress(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api" {
			http.NotFound(w, r)
			return
		}
		if attempts.Add(1) < 3 {
			_, _ = io.WriteString(w, `[{"error":{"type":101,"address":"","description":"link button not pressed"}}]`)
			return
		}
		_, _ = io.WriteString(w, `[{"success":{"username":"new-app-key"}}]`)
	}))
	defer srv.Close()

	key, err := CreateAppKey(context.Background(), PairOptions{
		Host:                strings.TrimPrefix(srv.URL, "https://"),
		DeviceType:          "lightctl#test",
		Timeout:             5 * time.Second,
		RetryInterval:       10 * time.Millisecond,
		TrustAnyCertificate: true,
	})
	if err != nil {
		t.Fatalf("CreateAppKey returned error: %v", err)
	}
	if key != "new-app-key" {
		t.Errorf("CreateAppKey() = %q, want new-app-key", key)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestCreateAppKeyTimeout(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"error":{"type":101,"address":"","description":"link button not pressed"}}]`)
	}))
	defer srv.Close()

	_, err := CreateAppKey(context.Background(), PairOptions{
		Host:                strings.TrimPrefix(srv.URL, "https://"),
		Timeout:             100 * time.Millisecond,
		RetryInterval:       10 * time.Millisecond,
		TrustAnyCertificate: true,
	})
	if !errors.Is(err, ErrPairingTimeout) {
		t.Errorf("CreateAppKey() error = %v, want ErrPairingTimeout", err)
	}
}

func TestCreateAppKeyBridgeError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"error":{"type":7,"address":"/devicetype","description":"invalid value"}}]`)
	}))
	defer srv.Close()

	_, err := CreateAppKey(context.Background(), PairOptions{
		Host:                strings.TrimPrefix(srv.URL, "https://"),
		Timeout:             time.Second,
		RetryInterval:       10 * time.Millisecond,
		TrustAnyCertificate: true,
	})
	var bridgeErr *BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Type != 7 {
		t.Errorf("CreateAppKey() error = %v, want BridgeError type 7", err)
	}
}

func TestGetBridgeID(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/0/config" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"name":"Philips hue","bridgeid":"ECB5FAFFFE1A2B3C"}`)
	}))
	defer srv.Close()

	id, err := GetBridgeID(context.Background(), strings.TrimPrefix(srv.URL, "https://"), true)
	if err != nil {
		t.Fatalf("GetBridgeID returned error: %v", err)
	}
	if id != "ECB5FAFFFE1A2B3C" {
		t.Errorf("GetBridgeID() = %s, want ECB5FAFFFE1A2B3C", id)
	}
}
