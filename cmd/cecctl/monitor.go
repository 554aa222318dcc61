package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/urmzd/cecvol/pkg/cec"
	"github.com/urmzd/cecvol/pkg/device"
)

func newMonitorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Print bus traffic seen by the local transport until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return opts.withController(ctx, true, func(c *cec.Controller) error {
				events := c.Subscribe()
				defer c.Unsubscribe(events)

				out := cmd.OutOrStdout()
				for {
					select {
					case <-ctx.Done():
						return nil
					case evt, ok := <-events:
						if !ok {
							return nil
						}
						printEvent(out, evt)
					}
				}
			})
		},
	}
}

func newWatchCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch <url>",
		Short: "Print bus traffic streamed by a remote cecvol API",
		Long: `Connect to the /api/v1/bus/ws endpoint of a running cecvol API and print
each bus event. The URL may name the host only (ws://pi.local:8080), in which
case the endpoint path is appended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			endpoint, err := watchURL(args[0])
			if err != nil {
				return err
			}

			dialer := websocket.Dialer{HandshakeTimeout: timeout}
			conn, _, err := dialer.DialContext(ctx, endpoint, nil)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer conn.Close()

			go func() {
				<-ctx.Done()
				conn.Close()
			}()

			return readEvents(conn, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Handshake timeout")
	return cmd
}

// readEvents prints events from conn until the peer closes it.
func readEvents(conn *websocket.Conn, out io.Writer) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || errors.Is(err, websocket.ErrCloseSent) {
				return nil
			}
			return err
		}

		var evt device.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			fmt.Fprintf(out, "? %s\n", data)
			continue
		}
		printEvent(out, evt)
	}
}

// watchURL accepts a host, an http(s) URL or a ws(s) URL and returns the
// websocket endpoint to dial.
func watchURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("url: unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/api/v1/bus/ws"
	}
	return u.String(), nil
}

func printEvent(out io.Writer, evt device.Event) {
	ts := evt.Timestamp.Format("15:04:05.000")
	switch {
	case evt.Frame != "":
		line := evt.Frame
		if frame, err := cec.ParseFrameHex(evt.Frame); err == nil {
			if cmd, err := cec.Parse(frame); err == nil {
				line = describe(cmd, frame)
			}
		}
		fmt.Fprintf(out, "%s %-9s %s\n", ts, evt.Type, line)
	case evt.Device != nil:
		fmt.Fprintf(out, "%s %-9s %s %s %s\n", ts, evt.Type, evt.Device.ID, evt.Device.PhysicalAddress, evt.Device.Name)
	default:
		fmt.Fprintf(out, "%s %-9s %s\n", ts, evt.Type, evt.Message)
	}
}
