// Package gomididrv provides a portable host transport backed by the gomidi
// rtmidi driver. It is the default on Linux and usable anywhere rtmidi
// builds.
package gomididrv

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
	"go.uber.org/multierr"

	"github.com/oceansize/webmidi/sdk/contracts"
)

// Error definitions for port discovery and lifecycle issues.
var (
	ErrNoPorts      = errors.New("no MIDI ports found")
	ErrPortNotFound = errors.New("named MIDI port not found")
)

// transport adapts one gomidi port to the Transport contract.
type transport struct {
	logger contracts.Logger
	info   contracts.PortInfo

	mu       sync.Mutex
	in       drivers.In
	out      drivers.Out
	stopFn   func()
	sendFn   func(gomidi.Message) error
	receiver contracts.Receiver
	stateFn  contracts.StateHandler
	opened   bool
}

// New binds the first port of the requested direction, or the one whose name
// contains opts.PortName (case-insensitive).
func New(portType contracts.PortType, opts *contracts.ClientOptions) (contracts.Transport, error) {
	t := &transport{logger: opts.Logger}

	if portType == contracts.PortTypeInput {
		ports := gomidi.GetInPorts()
		if len(ports) == 0 {
			return nil, ErrNoPorts
		}
		for _, p := range ports {
			if matches(p.String(), opts.PortName) {
				t.in = p
				break
			}
		}
		if t.in == nil {
			return nil, fmt.Errorf("%w: %q", ErrPortNotFound, opts.PortName)
		}
		t.info = portInfo(t.in.String(), t.in.Number(), portType)
	} else {
		ports := gomidi.GetOutPorts()
		if len(ports) == 0 {
			return nil, ErrNoPorts
		}
		for _, p := range ports {
			if matches(p.String(), opts.PortName) {
				t.out = p
				break
			}
		}
		if t.out == nil {
			return nil, fmt.Errorf("%w: %q", ErrPortNotFound, opts.PortName)
		}
		t.info = portInfo(t.out.String(), t.out.Number(), portType)
	}

	opts.Logger.Info("gomidi transport bound",
		opts.Logger.Field().String("port", t.info.Name))
	return t, nil
}

func matches(name, want string) bool {
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}

func portInfo(name string, number int, portType contracts.PortType) contracts.PortInfo {
	return contracts.PortInfo{
		ID:   fmt.Sprintf("gomidi-%s-%d", portType, number),
		Name: name,
		Type: portType,
	}
}

func (t *transport) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.opened {
		return nil
	}

	if t.in != nil {
		stop, err := gomidi.ListenTo(t.in, func(msg gomidi.Message, timestampms int32) {
			t.mu.Lock()
			receiver := t.receiver
			t.mu.Unlock()
			if receiver != nil {
				receiver(msg, float64(timestampms))
			}
		})
		if err != nil {
			return fmt.Errorf("listening on MIDI input: %w", err)
		}
		t.stopFn = stop
	} else {
		send, err := gomidi.SendTo(t.out)
		if err != nil {
			return fmt.Errorf("opening MIDI output: %w", err)
		}
		t.sendFn = send
	}

	t.opened = true
	t.notify(contracts.PortConnected)
	return nil
}

func (t *transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.opened {
		return nil
	}

	var err error
	if t.stopFn != nil {
		t.stopFn()
		t.stopFn = nil
		err = t.in.Close()
	}
	if t.out != nil {
		t.sendFn = nil
		err = multierr.Append(err, t.out.Close())
	}

	t.opened = false
	t.notify(contracts.PortDisconnected)
	return err
}

// Send forwards one message immediately. rtmidi has no host-side scheduling,
// so the timestamp is accepted and dropped.
func (t *transport) Send(data []byte, _ float64) error {
	t.mu.Lock()
	send := t.sendFn
	t.mu.Unlock()
	if send == nil {
		return errors.New("port is not open for sending")
	}
	return send(gomidi.Message(data))
}

func (t *transport) SetReceiver(fn contracts.Receiver) {
	t.mu.Lock()
	t.receiver = fn
	t.mu.Unlock()
}

func (t *transport) OnStateChange(fn contracts.StateHandler) {
	t.mu.Lock()
	t.stateFn = fn
	t.mu.Unlock()
}

func (t *transport) Info() contracts.PortInfo { return t.info }

func (t *transport) State() contracts.PortState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.opened {
		return contracts.PortConnected
	}
	return contracts.PortDisconnected
}

// notify runs with t.mu held; the handler is invoked without the lock.
func (t *transport) notify(state contracts.PortState) {
	fn := t.stateFn
	if fn != nil {
		go fn(state)
	}
}
