//go:build !windows
// +build !windows

package winmmdrv

import (
	"fmt"

	"github.com/oceansize/webmidi/sdk/contracts"
)

// New reports that winmm is unavailable off Windows. The factory never
// selects this driver elsewhere; this stub keeps the package buildable.
func New(portType contracts.PortType, opts *contracts.ClientOptions) (contracts.Transport, error) {
	opts.Logger.Warn("winmm driver requested on a non-Windows system")
	return nil, fmt.Errorf("winmm is not available on this platform")
}
