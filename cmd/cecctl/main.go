// Command cecctl drives and inspects the HDMI-CEC bus from a shell.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/urmzd/cecvol/pkg/cec"
	"github.com/urmzd/cecvol/pkg/db"
	"github.com/urmzd/cecvol/pkg/transport"
)

type rootOptions struct {
	dbPath  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "cecctl",
		Short: "HDMI-CEC control and diagnostics",
		Long: `cecctl sends display commands over HDMI-CEC and inspects bus traffic.

The bus transport (vchiq, serial or null) and this host's identity come from
the active profile in the cecvol database; see "cecctl config".`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
			if opts.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to database file (default: ~/.config/cecvol/cecvol.db)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log bus traffic to stderr")

	root.AddCommand(
		newPowerCmd(opts),
		newVolumeCmd(opts),
		newMuteCmd(opts),
		newInputCmd(opts),
		newPollCmd(opts),
		newRawCmd(opts),
		newMonitorCmd(opts),
		newWatchCmd(),
		newDecodeCmd(),
		newConfigCmd(opts),
		newProfileCmd(opts),
	)
	return root
}

// openDB opens and prepares the configured database.
func (o *rootOptions) openDB(ctx context.Context) (*db.DB, error) {
	database, err := db.Open(o.dbPath)
	if err != nil {
		return nil, err
	}
	if err := database.Prepare(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// withController loads the active settings, brings up a controller on the
// configured transport and hands it to fn.
func (o *rootOptions) withController(ctx context.Context, passive bool, fn func(*cec.Controller) error) error {
	database, err := o.openDB(ctx)
	if err != nil {
		return err
	}
	cfg, err := database.ActiveConfig(ctx)
	database.Close()
	if err != nil {
		return err
	}

	copts := transport.Options(cfg.CEC)
	copts.Passive = passive

	ctrl, err := transport.NewController(ctx, cfg.CEC, copts)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	return fn(ctrl)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
