// Package render formats command results for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/angristan/lightctl/internal/api"
	"github.com/angristan/lightctl/internal/hid"
	"github.com/angristan/lightctl/internal/models"
)

const barSegments = 10

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleHeader
			}
			return StyleCell
		})
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}

// Groups renders the group catalog as a table in id order.
// An empty catalog renders a single muted line and no rows.
func Groups(w io.Writer, groups models.Groups) error {
	if len(groups) == 0 {
		return writeLine(w, StyleTextMuted.Render("No groups"))
	}

	t := newTable("ID", "NAME", "TYPE", "CLASS", "LIGHTS", "STATE", "BRIGHTNESS")
	for _, id := range groups.IDs() {
		g := groups[id]
		t.Row(
			id,
			g.Name,
			g.Kind,
			g.Class,
			strconv.Itoa(len(g.Lights)),
			groupStatus(g.State),
			brightnessBar(g.Action.Bri),
		)
	}
	return writeLine(w, t.Render())
}

// GroupsJSON writes the catalog as indented JSON, keyed by group id
func GroupsJSON(w io.Writer, groups models.Groups) error {
	if groups == nil {
		groups = models.Groups{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(groups)
}

func groupStatus(state models.GroupState) string {
	switch {
	case state.AllOn:
		return StyleStatusOn.Render("● on")
	case state.AnyOn:
		return StyleStatusPartial.Render("◐ partial")
	default:
		return StyleStatusOff.Render("○ off")
	}
}

// brightnessBar draws bri (0-254) as a ten segment bar with a percentage
func brightnessBar(bri uint8) string {
	percent := int(bri) * 100 / 254
	if percent > 100 {
		percent = 100
	}

	var b strings.Builder
	for seg := 1; seg <= barSegments; seg++ {
		if percent >= seg*10 {
			b.WriteString(lipgloss.NewStyle().Foreground(brightnessColor(seg, percent)).Render("█"))
		} else {
			b.WriteString(StyleBrightnessBarEmpty.Render("░"))
		}
	}
	fmt.Fprintf(&b, " %3d%%", percent)
	return b.String()
}

// Bridges renders bridges found by discovery
func Bridges(w io.Writer, bridges []api.DiscoveredBridge) error {
	if len(bridges) == 0 {
		return writeLine(w, StyleTextMuted.Render("No bridges found"))
	}

	t := newTable("HOST", "BRIDGE ID", "MODEL", "NAME", "SOURCE")
	for _, b := range bridges {
		t.Row(b.Host, b.BridgeID, b.ModelID, b.Name, b.Source)
	}
	return writeLine(w, t.Render())
}

// EffectResults renders the outcome of a static effect pass, one row per device
func EffectResults(w io.Writer, results []hid.EffectResult) error {
	if len(results) == 0 {
		return writeLine(w, StyleTextMuted.Render("No matching devices"))
	}

	t := newTable("DEVICE", "TYPE", "PAYLOAD", "RESULT")
	for _, r := range results {
		status := StyleSuccess.Render("✓ written")
		if !r.OK() {
			status = StyleError.Render("✗ " + r.Err.Error())
		}
		t.Row(r.Device, r.Type, fmt.Sprintf("%02x %02x %02x", r.Payload[0], r.Payload[1], r.Payload[2]), status)
	}
	return writeLine(w, t.Render())
}

// Success prints a confirmation line
func Success(w io.Writer, format string, args ...any) error {
	return writeLine(w, StyleSuccess.Render("✓ ")+fmt.Sprintf(format, args...))
}

// Notice prints an informational line
func Notice(w io.Writer, format string, args ...any) error {
	return writeLine(w, StyleInfo.Render("ℹ ")+fmt.Sprintf(format, args...))
}

// Unsupported prints a visible notice for an accepted but unapplied feature
func Unsupported(w io.Writer, feature string, detail string) error {
	msg := StyleWarning.Render("! "+feature+" is not yet supported")
	if detail != "" {
		msg += StyleTextMuted.Render(" (" + detail + ")")
	}
	return writeLine(w, msg)
}
