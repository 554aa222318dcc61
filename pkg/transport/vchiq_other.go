//go:build !linux

package transport

import (
	"fmt"

	"github.com/urmzd/cecvol/pkg/db"
)

func openVCHIQ(s db.CECSettings) (*Transport, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedTransport, s.Transport)
}
