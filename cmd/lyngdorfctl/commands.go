package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsoutter/golyngdorf/internal/config"
	"github.com/jsoutter/golyngdorf/internal/descriptor"
	"github.com/jsoutter/golyngdorf/internal/device"
	"github.com/jsoutter/golyngdorf/internal/discovery"
	"github.com/jsoutter/golyngdorf/internal/protocol"
	"github.com/jsoutter/golyngdorf/internal/session"
	"github.com/jsoutter/golyngdorf/internal/ui"
)

// Target selection flags.
var (
	hostFlag  string
	portFlag  int
	modelFlag string
	nameFlag  string
	scanFlag  int
	noConfirm bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Device host or IP (overrides --name)")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", protocol.DefaultPort, "Device control port")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Device model (e.g. MP-60); skips waiting for the announcement")
	rootCmd.PersistentFlags().StringVar(&nameFlag, "name", "", "Registered device name (see 'devices add')")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(voicingCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(audioModeCmd)
	rootCmd.AddCommand(lipsyncCmd)
	rootCmd.AddCommand(trimCmd)
	rootCmd.AddCommand(sendCmd)

	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesAddCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)
}

// resolveTarget determines host, port and model from flags and the
// device registry.
func resolveTarget() (host string, port int, model string, err error) {
	if hostFlag != "" {
		return hostFlag, portFlag, modelFlag, nil
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return "", 0, "", err
	}
	name := nameFlag
	if name == "" && registry.Preferences != nil {
		name = registry.Preferences.DefaultDevice
	}
	if name == "" {
		return "", 0, "", fmt.Errorf("no target: use --host, --name, or register a default device")
	}
	entry := registry.GetDevice(name)
	if entry == nil {
		return "", 0, "", fmt.Errorf("unknown device %q (see 'lyngdorfctl devices list')", name)
	}
	model = entry.Model
	if modelFlag != "" {
		model = modelFlag
	}
	return entry.Host, entry.EffectivePort(), model, nil
}

// openDevice connects to the target and returns the device model plus
// a teardown func.
func openDevice(ctx context.Context) (*device.Device, func(), error) {
	host, port, model, err := resolveTarget()
	if err != nil {
		return nil, nil, err
	}

	sess := session.New(session.Config{Host: host, Port: port}, nil)
	dev := device.New(sess)

	if model != "" {
		m, ok := descriptor.ModelByName(model)
		if !ok {
			return nil, nil, fmt.Errorf("unknown device model %q", model)
		}
		if err := dev.SelectModel(m); err != nil {
			return nil, nil, describeConnectError(err)
		}
	}

	if err := dev.Connect(ctx); err != nil {
		dev.Disconnect()
		return nil, nil, describeConnectError(err)
	}
	return dev, dev.Disconnect, nil
}

// describeConnectError turns session errors into the distinct messages
// the user needs to tell a dead network from a wrong model.
func describeConnectError(err error) error {
	var unsupported *descriptor.UnsupportedModelError
	switch {
	case session.IsTimeoutError(err):
		return fmt.Errorf("connection timed out: device not responding (%w)", err)
	case session.IsNetworkError(err):
		return fmt.Errorf("cannot connect: %w", err)
	case errors.As(err, &unsupported):
		return fmt.Errorf("unsupported device: %w", err)
	default:
		return err
	}
}

// settle gives the device a moment to stream the status events that
// follow the connect-time queries.
func settle() {
	time.Sleep(500 * time.Millisecond)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// withDevice wraps a command body with connect/teardown.
func withDevice(fn func(ctx context.Context, dev *device.Device) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		dev, done, err := openDevice(ctx)
		if err != nil {
			return err
		}
		defer done()
		return fn(ctx, dev)
	}
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the network for Lyngdorf devices",
	Long: `Scan for Lyngdorf processors using mDNS discovery.

Lists every device advertising the control service, with address and
model when the advertisement carries one.`,
	Example: `  # Scan for 10 seconds (default)
  lyngdorfctl scan

  # Quick scan
  lyngdorfctl scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanFlag, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for Lyngdorf devices (timeout: %ds)...\n\n", scanFlag)

	devices, err := discovery.ScanForDevices(time.Duration(scanFlag) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the device is powered and on the same network")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --host to address the device directly")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))
	for i, d := range devices {
		fmt.Printf("%d. %s\n", i+1, d.String())
		if d.Hostname != "" {
			fmt.Printf("   Hostname: %s\n", d.Hostname)
		}
	}
	fmt.Println("\nUse 'lyngdorfctl devices add <name> --host <ip>' to register a device")
	return nil
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage the registry of named devices",
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if len(registry.Devices) == 0 {
			fmt.Println("No devices registered. Use 'lyngdorfctl devices add'.")
			return nil
		}
		names := make([]string, 0, len(registry.Devices))
		for name := range registry.Devices {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			entry := registry.Devices[name]
			marker := " "
			if registry.Preferences != nil && registry.Preferences.DefaultDevice == name {
				marker = "*"
			}
			model := entry.Model
			if model == "" {
				model = "(model from announcement)"
			}
			fmt.Printf("%s %-20s %s:%d  %s\n", marker, name, entry.Host, entry.EffectivePort(), model)
		}
		return nil
	},
}

var (
	addHost    string
	addPort    int
	addModel   string
	addDefault bool
)

var devicesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a device under a name",
	Example: `  lyngdorfctl devices add living-room --host 192.168.1.40 --model MP-60
  lyngdorfctl devices add office --host 10.0.0.7 --default`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if _, err := registry.SetDevice(args[0], addHost, addPort, addModel); err != nil {
			return err
		}
		if addDefault {
			registry.Preferences.DefaultDevice = args[0]
		}
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Printf("Registered %q (%s)\n", args[0], addHost)
		return nil
	},
}

func init() {
	devicesAddCmd.Flags().StringVar(&addHost, "host", "", "Device host or IP (required)")
	devicesAddCmd.Flags().IntVar(&addPort, "port", 0, "Control port (0 uses the protocol default)")
	devicesAddCmd.Flags().StringVar(&addModel, "model", "", "Device model (e.g. MP-60)")
	devicesAddCmd.Flags().BoolVar(&addDefault, "default", false, "Make this the default device")
	_ = devicesAddCmd.MarkFlagRequired("host")
}

var devicesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a registered device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if !registry.RemoveDevice(args[0]) {
			return fmt.Errorf("unknown device %q", args[0])
		}
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Printf("Removed %q\n", args[0])
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the device's current state",
	RunE: withDevice(func(ctx context.Context, dev *device.Device) error {
		settle()
		printer := ui.NewPrinter(nil)
		printer.Print(ui.RenderStatus(dev.Host(), dev.ConnectionState(), dev.State()))
		return nil
	}),
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow the device's state live",
	Long: `Open an interactive view that updates as the device reports
state changes. Press q to quit.`,
	RunE: withDevice(func(ctx context.Context, dev *device.Device) error {
		return ui.RunMonitor(dev)
	}),
}

var powerCmd = &cobra.Command{
	Use:       "power <on|off>",
	Short:     "Turn the device on or into standby",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(ctx context.Context, dev *device.Device) error {
			if args[0] == "on" {
				return dev.PowerOn(ctx)
			}
			return dev.PowerOff(ctx)
		})(cmd, args)
	},
}

var volumeCmd = &cobra.Command{
	Use:   "volume <dB|up|down>",
	Short: "Set or nudge the volume",
	Long: `Set the absolute volume in dB, nudge it with "up"/"down", or
set a normalized 0..1 level with --level.`,
	Example: `  lyngdorfctl volume -- -25.5
  lyngdorfctl volume up
  lyngdorfctl volume --level 0.4`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(ctx context.Context, dev *device.Device) error {
			if volumeLevelSet(cmd) {
				level, _ := cmd.Flags().GetFloat64("level")
				return dev.SetVolumeLevel(ctx, level)
			}
			if len(args) == 0 {
				return fmt.Errorf("give a dB value, \"up\"/\"down\", or --level")
			}
			switch args[0] {
			case "up":
				return dev.VolumeUp(ctx)
			case "down":
				return dev.VolumeDown(ctx)
			}
			db, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid volume %q: want dB value, \"up\" or \"down\"", args[0])
			}
			return dev.SetVolume(ctx, db)
		})(cmd, args)
	},
}

func init() {
	volumeCmd.Flags().Float64("level", 0, "Normalized volume level 0..1")
}

func volumeLevelSet(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("level")
}

var muteCmd = &cobra.Command{
	Use:       "mute <on|off>",
	Short:     "Mute or unmute the device",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(ctx context.Context, dev *device.Device) error {
			return dev.SetMute(ctx, args[0] == "on")
		})(cmd, args)
	},
}

// newOptionCommand builds the shared shape of the commands that select
// a named option the device announced (source, voicing, ...). With no
// argument the known options are listed; "next"/"prev" step through them
// on the device.
func newOptionCommand(use, short, what, stepPrefix string, list func(device.State) []string, set func(context.Context, *device.Device, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name|next|prev>",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(func(ctx context.Context, dev *device.Device) error {
				if len(args) == 1 {
					switch args[0] {
					case "next":
						return dev.SendCommand(ctx, stepPrefix+"_NEXT", nil, true)
					case "prev":
						return dev.SendCommand(ctx, stepPrefix+"_PREV", nil, true)
					}
				}
				settle()
				options := list(dev.State())
				if len(args) == 0 {
					if len(options) == 0 {
						fmt.Printf("No %s reported by the device.\n", what)
						return nil
					}
					for _, option := range options {
						fmt.Println(option)
					}
					return nil
				}
				name := args[0]
				if !containsString(options, name) {
					fmt.Printf("Unknown %s %q. Known: %s\n", what, name, strings.Join(options, ", "))
					return nil
				}
				return set(ctx, dev, name)
			})(cmd, args)
		},
	}
}

var sourceCmd = newOptionCommand("source", "List, select or step the input source", "sources", "SOURCE",
	func(s device.State) []string { return s.Sources },
	func(ctx context.Context, dev *device.Device, name string) error { return dev.SetSource(ctx, name) })

var voicingCmd = newOptionCommand("voicing", "List, select or step the RoomPerfect voicing", "voicings", "VOICING",
	func(s device.State) []string { return s.Voicings },
	func(ctx context.Context, dev *device.Device, name string) error { return dev.SetVoicing(ctx, name) })

var focusCmd = newOptionCommand("focus", "List, select or step the RoomPerfect focus position", "focus positions", "FOCUS_POSITION",
	func(s device.State) []string { return s.FocusPositions },
	func(ctx context.Context, dev *device.Device, name string) error {
		return dev.SetFocusPosition(ctx, name)
	})

var audioModeCmd = newOptionCommand("audiomode", "List, select or step the audio processing mode", "audio modes", "AUDIO_MODE",
	func(s device.State) []string { return s.AudioModes },
	func(ctx context.Context, dev *device.Device, name string) error { return dev.SetAudioMode(ctx, name) })

var lipsyncCmd = &cobra.Command{
	Use:   "lipsync <ms>",
	Short: "Set the lipsync delay in milliseconds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(ctx context.Context, dev *device.Device) error {
			ms, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid lipsync %q: want milliseconds", args[0])
			}
			settle()
			return dev.SetLipsync(ctx, ms)
		})(cmd, args)
	},
}

var trimCmd = &cobra.Command{
	Use:   "trim <channel> <dB>",
	Short: "Set a channel trim in dB",
	Long: `Set a per-channel gain trim. Channels: bass, treble, center,
heights, lfe, surrounds. Bass and treble accept ±12 dB, the rest ±10 dB.`,
	Example: `  lyngdorfctl trim bass -- -1.5
  lyngdorfctl trim lfe 3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(ctx context.Context, dev *device.Device) error {
			db, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid trim %q: want dB value", args[1])
			}
			switch strings.ToLower(args[0]) {
			case "bass":
				return dev.SetBassTrim(ctx, db)
			case "treble":
				return dev.SetTrebleTrim(ctx, db)
			case "center":
				return dev.SetCenterTrim(ctx, db)
			case "heights":
				return dev.SetHeightsTrim(ctx, db)
			case "lfe":
				return dev.SetLFETrim(ctx, db)
			case "surrounds":
				return dev.SetSurroundsTrim(ctx, db)
			default:
				return fmt.Errorf("unknown channel %q: want bass, treble, center, heights, lfe or surrounds", args[0])
			}
		})(cmd, args)
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <command> [arg]",
	Short: "Send a named protocol command",
	Long: `Send any command the active descriptor knows by its identifier
name, e.g. VOLUME_UP, MENU, CURSOR_ENTER, SOURCE (with an index
argument). Useful for remote-control style navigation.`,
	Example: `  lyngdorfctl send MENU
  lyngdorfctl send CURSOR_DOWN
  lyngdorfctl send SOURCE 2`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(ctx context.Context, dev *device.Device) error {
			var arg *int
			if len(args) == 2 {
				v, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid argument %q: want integer", args[1])
				}
				arg = &v
			}
			return dev.SendCommand(ctx, args[0], arg, noConfirm)
		})(cmd, args)
	},
}

func init() {
	sendCmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "Do not wait for the confirmation echo")
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
