package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/galaxybuds/budspro/internal/config"
	"github.com/galaxybuds/budspro/internal/device"
	"github.com/galaxybuds/budspro/internal/transport"
)

// Connection flags (persistent on root)
var (
	flagAddress  string
	flagChannel  int
	flagTimeout  int
	flagLogLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAddress, "address", "", "Earbuds Bluetooth address (default from config)")
	rootCmd.PersistentFlags().IntVar(&flagChannel, "channel", int(transport.DefaultChannel), "RFCOMM channel")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "Acknowledgement timeout in seconds (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from BUDSCTL_LOG_LEVEL)")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(setNoiseCmd)
	rootCmd.AddCommand(setAncCmd)
	rootCmd.AddCommand(setEqualizerCmd)
	rootCmd.AddCommand(setTouchpadCmd)
	rootCmd.AddCommand(setTouchpadOptionCmd)
	rootCmd.AddCommand(syncTimeCmd)
	rootCmd.AddCommand(listenCmd)
}

// connectedAddress is the address connect() resolved, for commands
// that store per-device metadata afterwards.
var connectedAddress string

// connect resolves the target address, dials the earbuds and records
// the successful connection in the config registry.
func connect() (*device.Device, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	address := flagAddress
	if address == "" && registry.Preferences != nil {
		address = registry.Preferences.DefaultAddress
	}
	if address == "" {
		return nil, fmt.Errorf("no earbuds address given; use --address (it is remembered afterwards)")
	}

	channel := flagChannel
	if entry := registry.GetDevice(address); entry != nil && entry.Channel != 0 && !rootCmd.PersistentFlags().Changed("channel") {
		channel = entry.Channel
	}

	t, err := transport.DialRFCOMM(address, uint8(channel))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", address, err)
	}

	dev := device.NewDevice(t)

	timeout := flagTimeout
	if timeout == 0 && registry.Preferences != nil {
		timeout = registry.Preferences.AckTimeoutSeconds
	}
	dev.SetAckTimeout(time.Duration(timeout) * time.Second)

	connectedAddress = address
	registry.UpdateLastConnected(address)
	if err := registry.Save(); err != nil {
		// Not fatal; the connection itself is fine.
		fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
	}

	return dev, nil
}

// infoCmd prints device information and current status
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show earbuds information and status",
	Long: `Connect to the earbuds and print their current state.

By default this waits for the initial status burst and prints
everything: battery, placement, noise controls, firmware versions,
model and serial numbers. Use --print to select a subset.`,
	Example: `  # Full readout
  budsctl info --address 80:7B:3E:21:79:EA

  # Battery and placement only
  budsctl info --print status

  # Serial numbers for a support request
  budsctl info --print serial`,
	RunE: runInfo,
}

var infoPrint string

func init() {
	infoCmd.Flags().StringVar(&infoPrint, "print", "all", "What to print (all, status, version, sku, serial)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	switch infoPrint {
	case "all", "status", "version":
	case "sku", "serial":
	default:
		return fmt.Errorf("unknown --print value %q (use all, status, version, sku or serial)", infoPrint)
	}

	if infoPrint == "all" || infoPrint == "status" || infoPrint == "version" {
		// The earbuds burst extended status and version info right
		// after the connection is established.
		ok := dev.Status.WaitFor(func() bool {
			if dev.Status.MergedExtendedStatus() == nil {
				return false
			}
			return infoPrint == "status" || dev.Status.VersionInfo() != nil
		})
		if !ok {
			return fmt.Errorf("connection closed before status arrived")
		}
	}

	if infoPrint == "all" || infoPrint == "sku" {
		sku, err := dev.GetDebugSKU()
		if err != nil {
			return fmt.Errorf("reading model: %w", err)
		}
		fmt.Printf("Model:  left %s, right %s\n", sku.Left, sku.Right)
	}

	if infoPrint == "all" || infoPrint == "serial" {
		serial, err := dev.GetDebugSerialNumber()
		if err != nil {
			return fmt.Errorf("reading serial numbers: %w", err)
		}
		fmt.Printf("Serial: left %s, right %s\n", serial.Left, serial.Right)

		if registry, err := config.LoadRegistry(); err == nil {
			registry.SetSerialNumbers(connectedAddress, serial.Left, serial.Right)
			_ = registry.Save()
		}
	}

	if infoPrint == "all" || infoPrint == "version" {
		if v := dev.Status.VersionInfo(); v != nil {
			fmt.Println()
			printVersionInfo(v)
		}
	}

	if infoPrint == "all" || infoPrint == "status" {
		fmt.Println()
		printExtendedStatus(dev.Status.MergedExtendedStatus())
	}

	return nil
}

// findCmd chirps the earbuds so they can be located
var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Make the earbuds chirp so you can find them",
	Long: `Start the find-my-earbuds chirp on both earbuds.

The chirp runs for --duration seconds (or until interrupted) and is
stopped cleanly afterwards. Individual earbuds can be muted if only
one of them is lost.`,
	Example: `  # Chirp both earbuds for 30 seconds
  budsctl find

  # Only the left earbud is lost
  budsctl find --mute-right

  # Chirp for five minutes
  budsctl find --duration 300`,
	RunE: runFind,
}

var (
	findDuration  int
	findMuteLeft  bool
	findMuteRight bool
)

func init() {
	findCmd.Flags().IntVar(&findDuration, "duration", 30, "How long to chirp, in seconds")
	findCmd.Flags().BoolVar(&findMuteLeft, "mute-left", false, "Keep the left earbud silent")
	findCmd.Flags().BoolVar(&findMuteRight, "mute-right", false, "Keep the right earbud silent")
}

func runFind(cmd *cobra.Command, args []string) error {
	if findMuteLeft && findMuteRight {
		return fmt.Errorf("both earbuds muted; nothing would chirp")
	}

	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.StartFindMyEarbuds(); err != nil {
		return fmt.Errorf("starting chirp: %w", err)
	}

	if findMuteLeft || findMuteRight {
		if err := dev.MuteEarbud(findMuteLeft, findMuteRight); err != nil {
			return fmt.Errorf("muting earbud: %w", err)
		}
	}

	fmt.Printf("Chirping for %d seconds, Ctrl-C to stop...\n", findDuration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	select {
	case <-time.After(time.Duration(findDuration) * time.Second):
	case <-interrupt:
		fmt.Println()
	}

	if err := dev.StopFindMyEarbuds(); err != nil {
		return fmt.Errorf("stopping chirp: %w", err)
	}
	return nil
}

// setNoiseCmd switches the active noise control mode
var setNoiseCmd = &cobra.Command{
	Use:   "set-noise <off|anc|ambient-sounds>",
	Short: "Switch between off, noise cancelling and ambient sound",
	Example: `  # Enable active noise cancellation
  budsctl set-noise anc

  # Let outside sound through
  budsctl set-noise ambient-sounds`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := device.ParseNoiseControls(args[0])
		if err != nil {
			return err
		}

		dev, err := connect()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.SetNoiseControls(mode); err != nil {
			return err
		}
		fmt.Printf("Noise controls set to %s\n", mode)
		return nil
	},
}

// setAncCmd toggles noise reduction without touching ambient sound settings
var setAncCmd = &cobra.Command{
	Use:   "set-anc <on|off>",
	Short: "Toggle active noise cancellation",
	Long: `Toggle active noise cancellation directly.

Unlike 'set-noise anc', this uses the dedicated noise reduction
request; the earbuds confirm the change with a status update rather
than an acknowledgement.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseOnOff(args[0])
		if err != nil {
			return err
		}

		dev, err := connect()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.SetNoiseReduction(enabled); err != nil {
			return err
		}
		fmt.Printf("Noise reduction %s\n", onOff(enabled))
		return nil
	},
}

// setEqualizerCmd selects the equalizer preset
var setEqualizerCmd = &cobra.Command{
	Use:   "set-equalizer <preset>",
	Short: "Select the equalizer preset",
	Long: `Select the active equalizer preset.

Presets: normal, bass-boost, soft, dynamic, clear, treble-boost.`,
	Example: `  budsctl set-equalizer bass-boost
  budsctl set-equalizer normal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, err := device.ParseEqualizerType(args[0])
		if err != nil {
			return err
		}

		dev, err := connect()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.SetEqualizerType(preset); err != nil {
			return err
		}
		fmt.Printf("Equalizer set to %s\n", preset)
		return nil
	},
}

// setTouchpadCmd enables or disables the touchpads
var setTouchpadCmd = &cobra.Command{
	Use:   "set-touchpad <on|off>",
	Short: "Enable or disable the earbud touchpads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseOnOff(args[0])
		if err != nil {
			return err
		}

		dev, err := connect()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.SetTouchpadEnabled(enabled); err != nil {
			return err
		}
		fmt.Printf("Touchpad %s\n", onOff(enabled))
		return nil
	},
}

// setTouchpadOptionCmd configures the touch-and-hold actions
var setTouchpadOptionCmd = &cobra.Command{
	Use:   "set-touchpad-option <left> <right>",
	Short: "Configure the touch-and-hold action per earbud",
	Long: `Configure what touch-and-hold does on each earbud.

Actions: anc, volume, spotify, app5, app6.`,
	Example: `  # Noise controls on the left, volume on the right
  budsctl set-touchpad-option anc volume`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		left, err := device.ParseTouchpadOption(args[0])
		if err != nil {
			return fmt.Errorf("left: %w", err)
		}
		right, err := device.ParseTouchpadOption(args[1])
		if err != nil {
			return fmt.Errorf("right: %w", err)
		}

		dev, err := connect()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.SetTouchpadOption(left, right); err != nil {
			return err
		}
		fmt.Printf("Touch-and-hold: left %s, right %s\n", left, right)
		return nil
	},
}

// syncTimeCmd pushes the host clock to the earbuds
var syncTimeCmd = &cobra.Command{
	Use:   "sync-time",
	Short: "Push the current time to the earbuds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := connect()
		if err != nil {
			return err
		}
		defer dev.Close()

		now := time.Now()
		if err := dev.UpdateTime(now); err != nil {
			return err
		}
		fmt.Printf("Time set to %s\n", now.Format(time.RFC1123))
		return nil
	},
}

// listenCmd streams live events from the earbuds
var listenCmd = &cobra.Command{
	Use:   "listen <status|touch>",
	Short: "Stream live events from the earbuds",
	Long: `Stay connected and print events as they arrive.

  status  Print status changes (battery, placement, noise controls).
  touch   Print touch-and-hold events routed to a companion app.

Runs until interrupted with Ctrl-C.`,
	Example: `  # Watch battery and wear state change live
  budsctl listen status

  # Debug touchpad app actions
  budsctl listen touch`,
	Args: cobra.ExactArgs(1),
	RunE: runListen,
}

func runListen(cmd *cobra.Command, args []string) error {
	if args[0] != "status" && args[0] != "touch" {
		return fmt.Errorf("unknown event kind %q (use status or touch)", args[0])
	}

	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	switch args[0] {
	case "touch":
		fmt.Println("Listening for touch-and-hold events, Ctrl-C to stop...")
		cancel := dev.ListenForTouchAndHoldApp(func(option byte) {
			fmt.Printf("%s touch-and-hold app action %d\n", time.Now().Format("15:04:05"), option)
		})
		defer cancel()
		<-interrupt

	case "status":
		fmt.Println("Listening for status changes, Ctrl-C to stop...")
		done := make(chan struct{})
		go func() {
			defer close(done)
			watchStatus(dev)
		}()
		select {
		case <-interrupt:
		case <-done:
			return fmt.Errorf("connection closed")
		}
	}

	fmt.Println()
	return nil
}

// watchStatus blocks printing status diffs until the connection closes.
func watchStatus(dev *device.Device) {
	var last *statusSnapshot
	for {
		var next *statusSnapshot
		ok := dev.Status.WaitFor(func() bool {
			s := snapshotStatus(dev.Status.MergedExtendedStatus())
			if s == nil || s.equal(last) {
				return false
			}
			next = s
			return true
		})
		if !ok {
			return
		}
		printStatusDiff(last, next)
		last = next
	}
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func onOff(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}
