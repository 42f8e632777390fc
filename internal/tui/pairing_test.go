package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/angristan/lightctl/internal/api"
)

func stubDiscover(bridges ...api.DiscoveredBridge) api.Discoverer {
	return func(ctx context.Context, timeout time.Duration) ([]api.DiscoveredBridge, error) {
		return bridges, nil
	}
}

func stubPair(t *testing.T, wantHost string) PairFunc {
	return func(ctx context.Context, host string) (PairResult, error) {
		if host != wantHost {
			t.Errorf("pair host = %s, want %s", host, wantHost)
		}
		return PairResult{Host: host, BridgeID: "001788fffe123456", AppKey: "new-app-key"}, nil
	}
}

// step feeds msg to the model
func step(t *testing.T, m PairModel, msg tea.Msg) (PairModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(PairModel), cmd
}

func TestPairingWithHost(t *testing.T) {
	m := NewPairModel(PairConfig{Host: "192.168.1.2", Pair: stubPair(t, "192.168.1.2")})
	if m.state != StatePairing {
		t.Fatalf("state = %d, want StatePairing", m.state)
	}
	if !strings.Contains(m.View(), "Press the link button") {
		t.Errorf("View() = %q", m.View())
	}

	msg := m.pairCmd()()
	success, ok := msg.(PairingSuccessMsg)
	if !ok {
		t.Fatalf("pairCmd returned %T, want PairingSuccessMsg", msg)
	}

	m, cmd := step(t, m, success)
	if m.state != StateSuccess {
		t.Errorf("state = %d, want StateSuccess", m.state)
	}
	if cmd == nil {
		t.Fatal("expected quit command after success")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg after success")
	}

	result, err := m.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if result.AppKey != "new-app-key" || result.BridgeID != "001788fffe123456" || result.Host != "192.168.1.2" {
		t.Errorf("Result() = %+v", result)
	}
}

func TestPairingDiscoveryThenSelect(t *testing.T) {
	bridges := []api.DiscoveredBridge{
		{Host: "192.168.1.2", BridgeID: "001788fffe000001", Source: "mDNS"},
		{Host: "192.168.1.3", BridgeID: "001788fffe000002", Source: "cloud"},
	}
	m := NewPairModel(PairConfig{Discover: stubDiscover(bridges...), Pair: stubPair(t, "192.168.1.3")})
	if m.state != StateDiscovering {
		t.Fatalf("state = %d, want StateDiscovering", m.state)
	}

	m, _ = step(t, m, m.discoverCmd()())
	if m.state != StateBridgeList || len(m.bridges) != 2 {
		t.Fatalf("after discovery: state = %d, bridges = %d", m.state, len(m.bridges))
	}
	if !strings.Contains(m.View(), "192.168.1.3 (001788ff)") {
		t.Errorf("View() = %q", m.View())
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StatePairing || m.pairingHost != "192.168.1.3" {
		t.Fatalf("after enter: state = %d, host = %s", m.state, m.pairingHost)
	}
	if cmd == nil {
		t.Fatal("expected pairing command")
	}
}

func TestPairingManualEntry(t *testing.T) {
	m := NewPairModel(PairConfig{Discover: stubDiscover(), Pair: stubPair(t, "10.0.0.7")})
	m, _ = step(t, m, m.discoverCmd()())

	if !strings.Contains(m.View(), "No bridges found") {
		t.Errorf("View() = %q", m.View())
	}

	// With no bridges the cursor already sits on manual entry
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateManualEntry {
		t.Fatalf("state = %d, want StateManualEntry", m.state)
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("10.0.0.7")})
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StatePairing || m.pairingHost != "10.0.0.7" {
		t.Fatalf("state = %d, host = %q", m.state, m.pairingHost)
	}
	if _, ok := cmd().(PairingSuccessMsg); !ok {
		t.Error("expected PairingSuccessMsg from pairing command")
	}
}

func TestPairingError(t *testing.T) {
	m := NewPairModel(PairConfig{
		Host: "192.168.1.2",
		Pair: func(ctx context.Context, host string) (PairResult, error) {
			return PairResult{}, api.ErrPairingTimeout
		},
	})

	m, cmd := step(t, m, m.pairCmd()())
	if m.state != StateError {
		t.Fatalf("state = %d, want StateError", m.state)
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg after error")
	}
	if !strings.Contains(m.View(), "link button was not pressed") {
		t.Errorf("View() = %q", m.View())
	}
	if _, err := m.Result(); !errors.Is(err, api.ErrPairingTimeout) {
		t.Errorf("Result() error = %v, want ErrPairingTimeout", err)
	}
}

func TestPairingDiscoveryError(t *testing.T) {
	m := NewPairModel(PairConfig{
		Discover: func(ctx context.Context, timeout time.Duration) ([]api.DiscoveredBridge, error) {
			return nil, errors.New("network unreachable")
		},
	})

	m, _ = step(t, m, m.discoverCmd()())
	if m.state != StateBridgeList {
		t.Fatalf("state = %d, want StateBridgeList", m.state)
	}
	if !strings.Contains(m.View(), "network unreachable") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestPairingAborted(t *testing.T) {
	m := NewPairModel(PairConfig{Discover: stubDiscover()})
	m, _ = step(t, m, m.discoverCmd()())

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg on q")
	}
	if _, err := m.Result(); !errors.Is(err, ErrPairingAborted) {
		t.Errorf("Result() error = %v, want ErrPairingAborted", err)
	}
}
