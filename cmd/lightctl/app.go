package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/angristan/lightctl/internal/api"
	"github.com/angristan/lightctl/internal/config"
	"github.com/angristan/lightctl/internal/dispatch"
	"github.com/angristan/lightctl/internal/hid"
	"github.com/angristan/lightctl/internal/logging"
	"github.com/angristan/lightctl/internal/models"
	"github.com/angristan/lightctl/internal/render"
	"github.com/angristan/lightctl/internal/tui"
)

var errMissingGroup = errors.New("missing group id")

// lightctl holds state shared by all commands of one invocation
type lightctl struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	envFile    string
	logLevel   string
	demo       bool

	cfg     *config.Config
	closers []io.Closer
}

func newApp(out, errOut io.Writer) *cli.App {
	l := &lightctl{out: out, errOut: errOut}

	return &cli.App{
		Name:      "lightctl",
		Usage:     "control Hue light groups and Razer device lighting",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "configuration file (default $XDG_CONFIG_HOME/lightctl/config.yaml)",
				EnvVars:     []string{"LIGHTCTL_CONFIG"},
				Destination: &l.configPath,
			},
			&cli.StringFlag{
				Name:        "env-file",
				Value:       ".env",
				Usage:       "dotenv file with HUE_IP and HUE_USER",
				Destination: &l.envFile,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "debug, info, warn or error (overrides the config file)",
				EnvVars:     []string{"LIGHTCTL_LOG_LEVEL"},
				Destination: &l.logLevel,
			},
			&cli.BoolFlag{
				Name:        "demo",
				Usage:       "use an in-memory bridge with sample groups",
				EnvVars:     []string{"HUE_DEMO"},
				Destination: &l.demo,
			},
		},
		Before: l.setup,
		After:  l.teardown,
		Commands: []*cli.Command{
			l.hueCommand(),
			l.razerCommand(),
		},
		// Exit codes are mapped by main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func (l *lightctl) setup(c *cli.Context) error {
	// Config loading logs too, so the flag level applies before the file is read
	bootLevel := l.logLevel
	if bootLevel == "" {
		bootLevel = "info"
	}
	logging.Setup(l.errOut, bootLevel, false, false)

	cfg, err := config.Load(l.configPath, l.envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l.cfg = cfg

	level := cfg.Log.Level
	if l.logLevel != "" {
		level = l.logLevel
	}
	logging.Setup(l.errOut, level, cfg.Log.JSON, cfg.Log.NoColor)

	if l.demo {
		log.Info().Msg("Demo mode enabled")
	}
	return nil
}

// bridge builds the bridge client from the active configuration
func (l *lightctl) bridge(confirm bool) (api.BridgeClient, error) {
	if l.demo {
		return api.NewDemoBridge(), nil
	}

	bc, err := l.cfg.ActiveBridge()
	if err != nil {
		return nil, err
	}
	bridge := api.NewHueBridge(api.Options{
		Host:                bc.Host,
		Token:               bc.Username,
		Timeout:             l.cfg.Timeout.Duration(),
		TrustAnyCertificate: l.cfg.TrustAnyCertificate,
		ConfirmWrites:       confirm,
	})
	l.closers = append(l.closers, bridge)
	return bridge, nil
}

func (l *lightctl) teardown(c *cli.Context) error {
	var errs []error
	for _, closer := range l.closers {
		errs = append(errs, closer.Close())
	}
	l.closers = nil
	return errors.Join(errs...)
}

// groupArg returns the group argument of hue on/off. Flags placed after the
// group are applied to the command as if they had been given before it.
func groupArg(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", errMissingGroup
	}
	if c.NArg() == 1 {
		return c.Args().First(), nil
	}

	set := flag.NewFlagSet(c.Command.Name, flag.ContinueOnError)
	set.SetOutput(io.Discard)
	for _, f := range c.Command.Flags {
		if err := f.Apply(set); err != nil {
			return "", err
		}
	}
	if err := set.Parse(c.Args().Tail()); err != nil {
		return "", fmt.Errorf("hue %s: %w", c.Command.Name, err)
	}
	if set.NArg() > 0 {
		return "", fmt.Errorf("hue %s: unexpected arguments: %s", c.Command.Name, strings.Join(set.Args(), " "))
	}

	var err error
	set.Visit(func(f *flag.Flag) {
		if err == nil {
			err = c.Set(f.Name, f.Value.String())
		}
	})
	if err != nil {
		return "", err
	}
	return c.Args().First(), nil
}

func (l *lightctl) hueDispatcher(confirm bool) (*dispatch.Dispatcher, error) {
	bridge, err := l.bridge(confirm)
	if err != nil {
		return nil, err
	}
	return dispatch.New(dispatch.Options{Bridge: bridge, Out: l.out}), nil
}

var confirmFlag = &cli.BoolFlag{
	Name:  "confirm",
	Usage: "re-read the group after the change and fail if it did not apply",
}

func (l *lightctl) hueCommand() *cli.Command {
	return &cli.Command{
		Name:  "hue",
		Usage: "control light groups on a Hue bridge",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all groups",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the catalog as JSON"},
				},
				Action: func(c *cli.Context) error {
					d, err := l.hueDispatcher(false)
					if err != nil {
						return err
					}
					return d.HueList(c.Context, c.Bool("json"))
				},
			},
			{
				Name:      "on",
				Usage:     "turn a group on",
				ArgsUsage: "<group>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "color", Usage: "color name or hex code (not applied yet)"},
					confirmFlag,
				},
				Action: func(c *cli.Context) error {
					group, err := groupArg(c)
					if err != nil {
						return err
					}
					d, err := l.hueDispatcher(c.Bool("confirm"))
					if err != nil {
						return err
					}
					return d.HueOn(c.Context, group, c.String("color"))
				},
			},
			{
				Name:      "off",
				Usage:     "turn a group off",
				ArgsUsage: "<group>",
				Flags:     []cli.Flag{confirmFlag},
				Action: func(c *cli.Context) error {
					group, err := groupArg(c)
					if err != nil {
						return err
					}
					d, err := l.hueDispatcher(c.Bool("confirm"))
					if err != nil {
						return err
					}
					return d.HueOff(c.Context, group)
				},
			},
			{
				Name:  "discover",
				Usage: "find bridges on the local network",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "timeout", Value: 5 * time.Second, Usage: "how long to browse"},
				},
				Action: func(c *cli.Context) error {
					d := dispatch.New(dispatch.Options{Out: l.out})
					return d.HueDiscover(c.Context, c.Duration("timeout"))
				},
			},
			{
				Name:  "pair",
				Usage: "pair with a bridge and save its credentials",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "host", Usage: "bridge address, skips discovery"},
					&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "how long to wait for the link button"},
				},
				Action: l.pair,
			},
		},
		// Anything that is not a known subcommand
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.ShowSubcommandHelp(c)
			}
			return dispatch.New(dispatch.Options{Out: l.out}).HueUnsupported(c.Args().First())
		},
	}
}

func (l *lightctl) pair(c *cli.Context) error {
	timeout := c.Duration("timeout")

	// Bridges serve a self-signed certificate
	result, err := tui.RunPairing(tui.PairConfig{
		Host:        c.String("host"),
		PairTimeout: timeout,
		Pair:        tui.BridgePairer(deviceType(), timeout, true),
	}, tea.WithContext(c.Context), tea.WithOutput(l.out))
	if err != nil {
		return err
	}

	l.cfg.AddBridge(config.BridgeConfig{
		Host:     result.Host,
		Username: result.AppKey,
		BridgeID: result.BridgeID,
	})
	l.cfg.TrustAnyCertificate = true
	if err := l.cfg.Save(l.configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	log.Info().Str("host", result.Host).Str("bridge_id", result.BridgeID).Msg("Bridge paired")
	return render.Success(l.out, "Paired with bridge %s at %s", result.BridgeID, result.Host)
}

// deviceType is the application name registered on the bridge
func deviceType() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "cli"
	}
	host, _, _ = strings.Cut(host, ".")
	if len(host) > 19 {
		host = host[:19]
	}
	return "lightctl#" + host
}

func (l *lightctl) razerCommand() *cli.Command {
	return &cli.Command{
		Name:  "razer",
		Usage: "write a static lighting effect to every Razer device",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "color", Usage: "color name or hex code (default green)"},
			&cli.StringFlag{Name: "subsystem", Usage: "kernel subsystem to enumerate (default from config, hid)"},
			&cli.StringFlag{Name: "marker", Usage: "attribute a device must expose (default from config, device_type)"},
		},
		Action: func(c *cli.Context) error {
			payload := dispatch.DefaultPattern
			if v := c.String("color"); v != "" {
				rgb, err := models.ParseColor(v)
				if err != nil {
					return fmt.Errorf("--color: %w", err)
				}
				payload = rgb.Bytes()
			}

			subsystem := l.cfg.HID.Subsystem
			if v := c.String("subsystem"); v != "" {
				subsystem = v
			}
			marker := l.cfg.HID.Marker
			if v := c.String("marker"); v != "" {
				marker = v
			}

			d := dispatch.New(dispatch.Options{
				Bus:       hid.NewBus(l.cfg.HID.SysfsRoot),
				Out:       l.out,
				Subsystem: subsystem,
				Marker:    marker,
			})
			_, err := d.StaticEffect(c.Context, payload)
			return err
		},
	}
}
