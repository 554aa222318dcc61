//go:build linux

package transport

import (
	"fmt"

	"github.com/urmzd/cecvol/pkg/db"
	"github.com/urmzd/cecvol/pkg/vchiq"
)

func openVCHIQ(s db.CECSettings) (*Transport, error) {
	hw, err := vchiq.Open(s.DevicePath)
	if err != nil {
		return nil, fmt.Errorf("vchiq transport: %w", err)
	}

	if err := hw.Claim(s.OSDName, s.VendorID); err != nil {
		_ = hw.Close()
		return nil, fmt.Errorf("vchiq claim: %w", err)
	}

	return &Transport{
		Kind:   s.Transport,
		Conn:   hw,
		closer: hw,
		hdmi: func(fn func(string)) {
			hw.SetHDMICallback(func(status vchiq.HDMIStatus) {
				fn(status.Reason.String())
			})
		},
	}, nil
}
