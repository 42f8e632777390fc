package models

import (
	"errors"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  RGB
	}{
		{name: "named", value: "red", want: RGB{255, 0, 0}},
		{name: "named mixed case", value: " Blue ", want: RGB{0, 0, 255}},
		{name: "hex with hash", value: "#00ff7f", want: RGB{0, 255, 127}},
		{name: "hex without hash", value: "FFA500", want: RGB{255, 165, 0}},
		{name: "short hex", value: "#0f0", want: RGB{0, 255, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.value)
			if err != nil {
				t.Fatalf("ParseColor(%q) returned error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, value := range []string{"", "   ", "chartreuse-ish", "#12345", "#gggggg"} {
		if _, err := ParseColor(value); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseColor(%q) error = %v, want ErrInvalidColor", value, err)
		}
	}
}

func TestRGBBytes(t *testing.T) {
	c := RGB{Red: 0x12, Green: 0x34, Blue: 0x56}
	got := c.Bytes()
	want := [3]byte{0x12, 0x34, 0x56}
	if got != want {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
}

func TestHexString(t *testing.T) {
	tests := []struct {
		c    RGB
		want string
	}{
		{RGB{255, 0, 0}, "#FF0000"},
		{RGB{0, 0, 0}, "#000000"},
		{RGB{0x0a, 0xb0, 0xc3}, "#0AB0C3"},
	}

	for _, tt := range tests {
		if got := tt.c.HexString(); got != tt.want {
			t.Errorf("HexString(%+v) = %s, want %s", tt.c, got, tt.want)
		}
	}
}
