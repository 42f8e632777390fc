package models

import (
	"errors"
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned for values that are neither a known name nor a hex code
var ErrInvalidColor = errors.New("invalid color")

// RGB is a plain three-channel color
type RGB struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// namedColors are the names accepted on the command line
var namedColors = map[string]RGB{
	"black":   {0x00, 0x00, 0x00},
	"white":   {0xFF, 0xFF, 0xFF},
	"red":     {0xFF, 0x00, 0x00},
	"green":   {0x00, 0xFF, 0x00},
	"blue":    {0x00, 0x00, 0xFF},
	"yellow":  {0xFF, 0xFF, 0x00},
	"cyan":    {0x00, 0xFF, 0xFF},
	"magenta": {0xFF, 0x00, 0xFF},
	"orange":  {0xFF, 0xA5, 0x00},
	"purple":  {0x80, 0x00, 0x80},
	"pink":    {0xFF, 0xC0, 0xCB},
	"warm":    {0xFF, 0xB4, 0x6B},
}

// ParseColor accepts a color name ("red") or a hex code ("#ff0000", "ff0000", "#f00")
func ParseColor(value string) (RGB, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return RGB{}, fmt.Errorf("%w: empty value", ErrInvalidColor)
	}

	if c, ok := namedColors[v]; ok {
		return c, nil
	}

	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	// colorful.Hex scans with fmt and tolerates trailing or missing digits
	if len(v) != 4 && len(v) != 7 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	r, g, b := c.RGB255()
	return RGB{Red: r, Green: g, Blue: b}, nil
}

// Bytes returns the channels in R, G, B order
func (c RGB) Bytes() [3]byte {
	return [3]byte{c.Red, c.Green, c.Blue}
}

// HexString returns the color as a hex string (e.g., "#FF0000")
func (c RGB) HexString() string {
	return "#" + hexByte(c.Red) + hexByte(c.Green) + hexByte(c.Blue)
}

func hexByte(b uint8) string {
	const hex = "0123456789ABCDEF"
	return string([]byte{hex[b>>4], hex[b&0x0F]})
}
