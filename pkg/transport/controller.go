package transport

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/cecvol/pkg/cec"
	"github.com/urmzd/cecvol/pkg/db"
)

// NewController opens the configured transport and builds a controller on
// it with opts, normally Options(s). Display link changes are forwarded to the controller's subscribers.
// Closing the controller closes the transport.
func NewController(ctx context.Context, s db.CECSettings, opts cec.Options) (*cec.Controller, error) {
	t, err := Open(s)
	if err != nil {
		return nil, err
	}

	ctrl, err := cec.NewController(ctx, t.Conn, opts)
	if err != nil {
		if cerr := t.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("transport", t.Kind).Msg("Failed to close transport")
		}
		return nil, fmt.Errorf("%s controller: %w", t.Kind, err)
	}

	t.OnHDMIStatus(ctrl.NotifyHDMIStatus)

	log.Info().Str("transport", t.Kind).Msg("CEC controller ready")
	return ctrl, nil
}
