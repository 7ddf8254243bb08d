package hostmidi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/oceansize/webmidi/internal/hostmidi/coremididrv"
	"github.com/oceansize/webmidi/internal/hostmidi/gomididrv"
	"github.com/oceansize/webmidi/internal/hostmidi/winmmdrv"
	"github.com/oceansize/webmidi/sdk/contracts"
)

// ErrUnsupportedOS is returned when no host driver exists for the operating
// system.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// driverInitializers maps OS names to corresponding host driver initializers.
var driverInitializers = map[string]func(contracts.PortType, *contracts.ClientOptions) (contracts.Transport, error){
	"darwin":  coremididrv.New, // macOS CoreMIDI driver.
	"windows": winmmdrv.New,    // Windows winmm driver.
	"linux":   gomididrv.New,   // Portable rtmidi driver.
}

// New resolves the host transport for the current operating system. The
// transport binds the first port of the requested direction, or the one
// named in the options.
func New(portType contracts.PortType, opts *contracts.ClientOptions) (contracts.Transport, error) {
	if initializer, exists := driverInitializers[runtime.GOOS]; exists {
		return initializer(portType, opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
