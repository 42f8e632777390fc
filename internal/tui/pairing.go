// Package tui holds the interactive bridge pairing screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/angristan/lightctl/internal/api"
	"github.com/angristan/lightctl/internal/render"
)

// ErrPairingAborted is returned when the user leaves the pairing screen
var ErrPairingAborted = errors.New("pairing aborted")

// PairState represents the current pairing step
type PairState int

const (
	StateDiscovering PairState = iota
	StateBridgeList
	StateManualEntry
	StatePairing
	StateSuccess
	StateError
)

// PairResult is what a successful pairing yields
type PairResult struct {
	Host     string
	BridgeID string
	AppKey   string
}

// PairFunc pairs with the bridge at host
type PairFunc func(ctx context.Context, host string) (PairResult, error)

// PairConfig configures the pairing screen
type PairConfig struct {
	// Skip discovery and pair with this host directly
	Host string

	DiscoveryTimeout time.Duration
	PairTimeout      time.Duration

	// Defaults to api.DiscoverAll
	Discover api.Discoverer
	// Defaults to BridgePairer
	Pair PairFunc
}

// BridgePairer returns a PairFunc that waits for the link button and then
// reads the bridge ID
func BridgePairer(deviceType string, timeout time.Duration, trustAny bool) PairFunc {
	return func(ctx context.Context, host string) (PairResult, error) {
		appKey, err := api.CreateAppKey(ctx, api.PairOptions{
			Host:                host,
			DeviceType:          deviceType,
			Timeout:             timeout,
			TrustAnyCertificate: trustAny,
		})
		if err != nil {
			return PairResult{}, err
		}

		bridgeID, err := api.GetBridgeID(ctx, host, trustAny)
		if err != nil {
			return PairResult{}, err
		}

		return PairResult{Host: host, BridgeID: bridgeID, AppKey: appKey}, nil
	}
}

// PairModel is the pairing screen model
type PairModel struct {
	state    PairState
	bridges  []api.DiscoveredBridge
	selected int
	input    textinput.Model
	spinner  spinner.Model
	err      error

	pairingHost string
	result      *PairResult

	discoveryTimeout time.Duration
	pairTimeout      time.Duration
	discover         api.Discoverer
	pair             PairFunc
}

// NewPairModel creates a pairing screen
func NewPairModel(cfg PairConfig) PairModel {
	ti := textinput.New()
	ti.Placeholder = "192.168.1.x"
	ti.CharLimit = 45

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = render.StyleSpinner

	m := PairModel{
		state:            StateDiscovering,
		input:            ti,
		spinner:          sp,
		discoveryTimeout: cfg.DiscoveryTimeout,
		pairTimeout:      cfg.PairTimeout,
		discover:         cfg.Discover,
		pair:             cfg.Pair,
	}
	if m.discoveryTimeout == 0 {
		m.discoveryTimeout = 5 * time.Second
	}
	if m.pairTimeout == 0 {
		m.pairTimeout = 30 * time.Second
	}
	if m.discover == nil {
		m.discover = api.DiscoverAll
	}
	if m.pair == nil {
		m.pair = BridgePairer("lightctl#cli", m.pairTimeout, true)
	}
	if host := strings.TrimSpace(cfg.Host); host != "" {
		m.state = StatePairing
		m.pairingHost = host
	}
	return m
}

// Result returns the pairing outcome once the program has exited
func (m PairModel) Result() (PairResult, error) {
	if m.result != nil {
		return *m.result, nil
	}
	if m.err != nil {
		return PairResult{}, m.err
	}
	return PairResult{}, ErrPairingAborted
}

// RunPairing runs the pairing screen until it succeeds, fails or is left
func RunPairing(cfg PairConfig, opts ...tea.ProgramOption) (PairResult, error) {
	final, err := tea.NewProgram(NewPairModel(cfg), opts...).Run()
	if err != nil {
		return PairResult{}, err
	}
	return final.(PairModel).Result()
}

// Init starts discovery, or pairing when a host was given
func (m PairModel) Init() tea.Cmd {
	if m.state == StatePairing {
		return tea.Batch(m.spinner.Tick, m.pairCmd())
	}
	return tea.Batch(m.spinner.Tick, m.discoverCmd())
}

// Update handles messages
func (m PairModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.state {
		case StateBridgeList:
			switch msg.String() {
			case "up", "k":
				if m.selected > 0 {
					m.selected--
				}
			case "down", "j":
				if m.selected < len(m.bridges) {
					m.selected++
				}
			case "enter":
				if m.selected < len(m.bridges) {
					m.state = StatePairing
					m.pairingHost = m.bridges[m.selected].Host
					m.err = nil
					cmds = append(cmds, m.pairCmd())
				} else {
					m.state = StateManualEntry
					m.input.Focus()
					cmds = append(cmds, textinput.Blink)
				}
			case "m":
				m.state = StateManualEntry
				m.input.Focus()
				cmds = append(cmds, textinput.Blink)
			case "r":
				m.state = StateDiscovering
				m.err = nil
				cmds = append(cmds, m.discoverCmd())
			case "q", "esc":
				return m, tea.Quit
			}
			return m, tea.Batch(cmds...)

		case StateManualEntry:
			switch msg.String() {
			case "enter":
				host := strings.TrimSpace(m.input.Value())
				if host != "" {
					m.state = StatePairing
					m.pairingHost = host
					m.input.Blur()
					return m, m.pairCmd()
				}
			case "esc":
				m.state = StateBridgeList
				m.input.Blur()
				return m, nil
			}

		case StateError:
			return m, tea.Quit
		}

	case BridgesDiscoveredMsg:
		m.bridges = msg.Bridges
		m.selected = 0
		m.state = StateBridgeList

	case DiscoveryErrorMsg:
		m.state = StateBridgeList
		m.err = msg.Err

	case PairingSuccessMsg:
		m.state = StateSuccess
		result := msg.Result
		m.result = &result
		m.err = nil
		return m, tea.Quit

	case PairingErrorMsg:
		m.state = StateError
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.state == StateManualEntry {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the pairing screen
func (m PairModel) View() string {
	var b strings.Builder

	b.WriteString(render.StyleTitle.Render("lightctl bridge pairing"))
	b.WriteString("\n\n")

	switch m.state {
	case StateDiscovering:
		fmt.Fprintf(&b, "%s Searching for Hue bridges...", m.spinner.View())
	case StateBridgeList:
		b.WriteString(m.renderBridgeList())
	case StateManualEntry:
		b.WriteString("Enter bridge IP address:\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n" + render.StyleHelp.Render("enter confirm • esc back"))
	case StatePairing:
		fmt.Fprintf(&b, "%s Pairing with %s...\n\n", m.spinner.View(), m.pairingHost)
		b.WriteString(render.StylePrimary.Render("Press the link button on your Hue bridge"))
	case StateSuccess:
		b.WriteString(render.StyleSuccess.Render("✓ Paired with " + m.pairingHost))
	case StateError:
		b.WriteString(render.StyleError.Render("✗ Error: " + m.err.Error()))
	}

	b.WriteString("\n")
	return b.String()
}

func (m PairModel) renderBridgeList() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(render.StyleError.Render("Discovery failed: "+m.err.Error()) + "\n\n")
	}

	if len(m.bridges) == 0 {
		b.WriteString(render.StyleTextMuted.Render("No bridges found.") + "\n")
	} else {
		b.WriteString("Found bridges:\n\n")
		for i, bridge := range m.bridges {
			cursor := "  "
			name := bridge.Host
			if len(bridge.BridgeID) >= 8 {
				name = fmt.Sprintf("%s (%s)", bridge.Host, bridge.BridgeID[:8])
			}
			if i == m.selected {
				cursor = "> "
				name = render.StylePrimary.Render(name)
			}
			b.WriteString(cursor + name + "\n")
		}
	}

	cursor := "  "
	manual := "Enter IP manually..."
	if m.selected >= len(m.bridges) {
		cursor = "> "
		manual = render.StylePrimary.Render(manual)
	}
	b.WriteString("\n" + cursor + manual + "\n")
	b.WriteString(render.StyleHelp.Render("↑/↓ navigate • enter select • r refresh • m manual • q quit"))

	return b.String()
}

// Commands

func (m PairModel) discoverCmd() tea.Cmd {
	discover, timeout := m.discover, m.discoveryTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		bridges, err := discover(ctx, timeout)
		if err != nil {
			return DiscoveryErrorMsg{Err: err}
		}
		return BridgesDiscoveredMsg{Bridges: bridges}
	}
}

func (m PairModel) pairCmd() tea.Cmd {
	pair, host, timeout := m.pair, m.pairingHost, m.pairTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
		defer cancel()

		result, err := pair(ctx, host)
		if err != nil {
			return PairingErrorMsg{Err: err}
		}
		return PairingSuccessMsg{Result: result}
	}
}

// Messages

type BridgesDiscoveredMsg struct {
	Bridges []api.DiscoveredBridge
}

type DiscoveryErrorMsg struct {
	Err error
}

type PairingSuccessMsg struct {
	Result PairResult
}

type PairingErrorMsg struct {
	Err error
}
