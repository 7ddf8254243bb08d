//go:build !darwin
// +build !darwin

package coremididrv

import (
	"fmt"

	"github.com/oceansize/webmidi/sdk/contracts"
)

// New reports that CoreMIDI is unavailable off macOS. The factory never
// selects this driver elsewhere; this stub keeps the package buildable.
func New(portType contracts.PortType, opts *contracts.ClientOptions) (contracts.Transport, error) {
	opts.Logger.Warn("CoreMIDI driver requested on a non-macOS system")
	return nil, fmt.Errorf("CoreMIDI is not available on this platform")
}
