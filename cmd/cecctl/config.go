package main

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/urmzd/cecvol/pkg/cec"
	"github.com/urmzd/cecvol/pkg/db"
	"github.com/urmzd/cecvol/pkg/usbcec"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the active profile's bus settings",
	}
	cmd.AddCommand(newConfigShowCmd(opts), newConfigSetCmd(opts), newConfigPortsCmd())
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := opts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			cfg, err := database.ActiveConfig(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "database       %s\n", database.Path())
			fmt.Fprintf(out, "profile        %s\n", cfg.Profile.Name)
			fmt.Fprintf(out, "api address    %s\n", cfg.APIAddress())
			fmt.Fprintf(out, "transport      %s\n", cfg.CEC.Transport)
			fmt.Fprintf(out, "device path    %s\n", cfg.CEC.DevicePath)
			fmt.Fprintf(out, "serial port    %s\n", cfg.CEC.SerialPort)
			fmt.Fprintf(out, "osd name       %s\n", cfg.CEC.OSDName)
			fmt.Fprintf(out, "vendor id      %06x\n", cfg.CEC.VendorID)
			fmt.Fprintf(out, "device type    %s\n", cec.DeviceType(cfg.CEC.DeviceType))
			fmt.Fprintf(out, "poll interval  %s\n", cfg.CEC.PollInterval)
			fmt.Fprintf(out, "echo timeout   %s\n", cfg.CEC.EchoTimeout)
			return nil
		},
	}
}

type setFlags struct {
	transport    string
	devicePath   string
	serialPort   string
	osdName      string
	vendorID     string
	deviceType   string
	pollInterval time.Duration
	echoTimeout  time.Duration
	listen       string
}

func newConfigSetCmd(opts *rootOptions) *cobra.Command {
	f := &setFlags{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings of the active profile",
		Example: `  cecctl config set --transport serial --serial-port /dev/ttyACM0
  cecctl config set --osd-name den --device-type playback --listen 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			database, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			cfg, err := database.ActiveConfig(ctx)
			if err != nil {
				return err
			}

			s := cfg.CEC
			if flags.Changed("transport") {
				s.Transport = f.transport
			}
			if flags.Changed("device") {
				s.DevicePath = f.devicePath
			}
			if flags.Changed("serial-port") {
				s.SerialPort = f.serialPort
			}
			if flags.Changed("osd-name") {
				s.OSDName = f.osdName
			}
			if flags.Changed("vendor-id") {
				v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(f.vendorID), "0x"), 16, 32)
				if err != nil {
					return fmt.Errorf("vendor-id: %w", err)
				}
				s.VendorID = uint32(v)
			}
			if flags.Changed("device-type") {
				dt, err := cec.ParseDeviceType(f.deviceType)
				if err != nil {
					return err
				}
				s.DeviceType = uint8(dt)
			}
			if flags.Changed("poll-interval") {
				s.PollInterval = f.pollInterval
			}
			if flags.Changed("echo-timeout") {
				s.EchoTimeout = f.echoTimeout
			}

			if err := database.CECSettings().Save(ctx, &s); err != nil {
				return err
			}

			if flags.Changed("listen") {
				host, portStr, err := net.SplitHostPort(f.listen)
				if err != nil {
					return fmt.Errorf("listen: %w", err)
				}
				port, err := strconv.Atoi(portStr)
				if err != nil {
					return fmt.Errorf("listen port: %w", err)
				}
				if err := database.APIServers().Save(ctx, &db.APIServer{ProfileID: cfg.Profile.ID, Host: host, Port: port}); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "updated profile %s\n", cfg.Profile.Name)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.transport, "transport", "", "Bus transport: vchiq, serial or null")
	flags.StringVar(&f.devicePath, "device", "", "VideoCore device path")
	flags.StringVar(&f.serialPort, "serial-port", "", "USB-CEC adapter serial port")
	flags.StringVar(&f.osdName, "osd-name", "", "Name shown by the display (up to 14 characters)")
	flags.StringVar(&f.vendorID, "vendor-id", "", "Vendor OUI in hex, e.g. 00e091")
	flags.StringVar(&f.deviceType, "device-type", "", "Device type announced on the bus (recording, playback, ...)")
	flags.DurationVar(&f.pollInterval, "poll-interval", 0, "Interval between bus polls (0 disables)")
	flags.DurationVar(&f.echoTimeout, "echo-timeout", 0, "Wait for transmit echo (0 uses the default)")
	flags.StringVar(&f.listen, "listen", "", "API listen address host:port")
	return cmd
}

func newConfigPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports a USB-CEC adapter could be attached to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := usbcec.ListPorts()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				return errors.New("no serial ports found")
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
