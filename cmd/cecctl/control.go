package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/urmzd/cecvol/pkg/cec"
)

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "standby", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func newPowerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "power on|off",
		Short:     "Wake the display or put it in standby",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			// The controller wakes the display on start-up already
			return opts.withController(cmd.Context(), !on, func(c *cec.Controller) error {
				if on {
					return nil
				}
				return c.OnOff(cmd.Context(), false)
			})
		},
	}
}

func newVolumeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "volume <steps>",
		Short: "Press volume up (positive) or down (negative) a number of times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("steps: %w", err)
			}
			return opts.withController(cmd.Context(), true, func(c *cec.Controller) error {
				return c.VolumeChange(cmd.Context(), steps)
			})
		},
	}
}

func newMuteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mute [on|off]",
		Short: "Toggle mute",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mute := true
			if len(args) == 1 {
				var err error
				if mute, err = parseOnOff(args[0]); err != nil {
					return err
				}
			}
			return opts.withController(cmd.Context(), true, func(c *cec.Controller) error {
				return c.Mute(cmd.Context(), mute)
			})
		},
	}
}

func newInputCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "input <name>",
		Short: `Switch the display input ("HDMI 2", "hdmi2" or "2")`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := cec.ParseInput(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return opts.withController(cmd.Context(), true, func(c *cec.Controller) error {
				return c.SetInput(cmd.Context(), in)
			})
		},
	}
}

func newPollCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Ask every peer for its name and address and list what answered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withController(cmd.Context(), true, func(c *cec.Controller) error {
				if err := c.PollAll(cmd.Context()); err != nil {
					return err
				}
				devices, err := c.ListDevices(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, d := range devices {
					fmt.Fprintf(out, "%-13s %-8s %-20s %s\n", d.ID, d.PhysicalAddress, d.Name, d.VendorID)
				}
				return nil
			})
		},
	}
}

func newRawCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "raw <hex>",
		Short: `Transmit a raw frame such as "10:8f"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := cec.ParseFrameHex(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if _, err := cec.Parse(frame); err != nil {
				return err
			}
			return opts.withController(cmd.Context(), true, func(c *cec.Controller) error {
				if err := c.TransmitRaw(cmd.Context(), frame); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", cec.FormatFrame(frame))
				return nil
			})
		},
	}
}
