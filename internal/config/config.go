package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const appName = "lightctl"

// Environment variables that override the config file
const (
	EnvHost     = "HUE_IP"
	EnvUser     = "HUE_USER"
	EnvInsecure = "HUE_INSECURE"
)

// BridgeConfig stores connection details for a Hue bridge
type BridgeConfig struct {
	// IP address or hostname of the bridge
	Host string `yaml:"host"`
	// Whitelisted username used as the v1 API token
	Username string `yaml:"username"`
	// Unique bridge identifier
	BridgeID string `yaml:"bridge_id,omitempty"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	JSON    bool   `yaml:"json"`
	NoColor bool   `yaml:"no_color"`
}

// HIDConfig locates the hardware effect devices
type HIDConfig struct {
	SysfsRoot string `yaml:"sysfs_root"`
	Subsystem string `yaml:"subsystem"`
	// Attribute a device must expose to receive effects
	Marker string `yaml:"marker"`
}

// Config stores all application configuration
type Config struct {
	// List of paired bridges
	Bridges []BridgeConfig `yaml:"bridges"`
	// ID of the last used bridge
	LastBridgeID string `yaml:"last_bridge_id,omitempty"`
	// HTTP timeout for bridge requests
	Timeout Duration `yaml:"timeout,omitempty"`
	// Accept the bridge's self-signed certificate without validation
	TrustAnyCertificate bool      `yaml:"trust_any_certificate"`
	Log                 LogConfig `yaml:"log"`
	HID                 HIDConfig `yaml:"hid"`

	// Bridge given through the environment, takes precedence over Bridges
	envBridge *BridgeConfig
}

var (
	ErrBridgeNotFound = errors.New("bridge not found")
	ErrNoBridges      = errors.New("no bridges configured")
	ErrMissingHost    = errors.New("bridge host not configured (set " + EnvHost + " or run `lightctl hue pair`)")
	ErrMissingToken   = errors.New("bridge token not configured (set " + EnvUser + " or run `lightctl hue pair`)")
)

// Duration is a wrapper around time.Duration for YAML (un)marshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// configDir returns the configuration directory path
func configDir() (string, error) {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName), nil
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the full path to the default config file
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from path (or DefaultPath when empty), then
// applies .env files and environment overrides. A missing file yields an
// empty configuration.
func Load(path string, dotenvFiles ...string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("path", path).Msg("No config file, using defaults")
	default:
		return nil, err
	}

	if err := loadDotenv(dotenvFiles...); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.setDefaults()

	return &cfg, nil
}

// loadDotenv loads credentials from .env files without overriding the
// process environment. Missing files are ignored.
func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		log.Debug().Str("file", f).Msg("Loaded environment file")
	}
	return nil
}

func (c *Config) applyEnv() {
	host := os.Getenv(EnvHost)
	user := os.Getenv(EnvUser)
	if host != "" || user != "" {
		c.envBridge = &BridgeConfig{Host: host, Username: user}
	}

	if v := os.Getenv(EnvInsecure); v != "" {
		if trust, err := strconv.ParseBool(v); err == nil {
			c.TrustAnyCertificate = trust
		}
	}
}

func (c *Config) setDefaults() {
	if c.Timeout == 0 {
		c.Timeout = Duration(10 * time.Second)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.HID.SysfsRoot == "" {
		c.HID.SysfsRoot = "/sys"
	}
	if c.HID.Subsystem == "" {
		c.HID.Subsystem = "hid"
	}
	if c.HID.Marker == "" {
		c.HID.Marker = "device_type"
	}
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		if val := os.Getenv(parts[1]); val != "" {
			return val
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Save writes the configuration to path (or DefaultPath when empty)
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// The file holds bridge tokens
	return os.WriteFile(path, data, 0o600)
}

// AddBridge adds or updates a bridge configuration and makes it the last used one
func (c *Config) AddBridge(bridge BridgeConfig) {
	c.LastBridgeID = bridge.BridgeID

	for i, b := range c.Bridges {
		if b.BridgeID == bridge.BridgeID {
			c.Bridges[i] = bridge
			return
		}
	}

	c.Bridges = append(c.Bridges, bridge)
}

// GetBridge returns the bridge configuration by ID
func (c *Config) GetBridge(bridgeID string) (*BridgeConfig, error) {
	for i := range c.Bridges {
		if c.Bridges[i].BridgeID == bridgeID {
			return &c.Bridges[i], nil
		}
	}
	return nil, ErrBridgeNotFound
}

// GetLastBridge returns the last used bridge or the first available
func (c *Config) GetLastBridge() (*BridgeConfig, error) {
	if len(c.Bridges) == 0 {
		return nil, ErrNoBridges
	}

	if c.LastBridgeID != "" {
		bridge, err := c.GetBridge(c.LastBridgeID)
		if err == nil {
			return bridge, nil
		}
	}

	return &c.Bridges[0], nil
}

// ActiveBridge resolves the bridge to talk to: the environment first, then
// the last used paired bridge. Host and token are both required.
func (c *Config) ActiveBridge() (*BridgeConfig, error) {
	bridge := c.envBridge
	if bridge == nil {
		last, err := c.GetLastBridge()
		if err != nil {
			return nil, ErrMissingHost
		}
		bridge = last
	}

	if bridge.Host == "" {
		return nil, ErrMissingHost
	}
	if bridge.Username == "" {
		return nil, ErrMissingToken
	}
	return bridge, nil
}
