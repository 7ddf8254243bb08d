package webmidi

import (
	"github.com/oceansize/webmidi/internal/hostmidi"
	"github.com/oceansize/webmidi/sdk/contracts"
)

// NewInput creates an input port with the specified options. When no
// transport is injected, the host driver for the current operating system
// binds the first available input port (or the one named through
// contracts.WithPortName).
//
// Returns:
//   - *Input: The input port, not yet opened.
//   - error: An error, if any occurred while resolving the host transport.
func NewInput(opts ...contracts.Option) (*Input, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	if options.Transport == nil {
		t, err := hostmidi.New(contracts.PortTypeInput, &options)
		if err != nil {
			return nil, err
		}
		options.Transport = t
	}

	return newInput(&options), nil
}

// NewOutput creates an output port with the specified options, following the
// same transport resolution as NewInput.
func NewOutput(opts ...contracts.Option) (*Output, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	if options.Transport == nil {
		t, err := hostmidi.New(contracts.PortTypeOutput, &options)
		if err != nil {
			return nil, err
		}
		options.Transport = t
	}

	return newOutput(&options), nil
}
