package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/urmzd/cecvol/pkg/cec"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a frame without touching the bus",
		Example: `  cecctl decode 4f:82:10:00
  cecctl decode 10 47 74 76`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := cec.ParseFrameHex(strings.Join(args, " "))
			if err != nil {
				return err
			}
			parsed, err := cec.Parse(frame)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(parsed, frame))
			return nil
		},
	}
}

// describe renders a parsed frame as "a -> b opcode {fields} [bytes]".
func describe(cmd cec.Command, frame []byte) string {
	route := fmt.Sprintf("%s -> %s", cmd.Initiator, cmd.Destination)
	if cmd.IsPoll() {
		return fmt.Sprintf("%s poll [%s]", route, cec.FormatFrame(frame))
	}
	return fmt.Sprintf("%s %s %+v [%s]", route, cmd.Message.Opcode(), cmd.Message, cec.FormatFrame(frame))
}
