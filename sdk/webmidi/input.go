package webmidi

import (
	"fmt"
	"sync"

	"github.com/oceansize/webmidi/sdk/contracts"
)

// Input wraps a host input port and decodes its inbound byte stream into
// named events. It owns a fixed set of 16 channels; channel voice and mode
// messages are dispatched on the matching channel, system messages on the
// port itself.
type Input struct {
	transport contracts.Transport
	logger    contracts.Logger
	clock     contracts.Clock

	mu        sync.Mutex
	channels  [16]*InputChannel
	registry  *listenerRegistry
	sysexBuf  []byte
	inSysex   bool
	opened    bool
	destroyed bool
}

func newInput(opts *contracts.ClientOptions) *Input {
	in := &Input{
		transport: opts.Transport,
		logger:    opts.Logger,
		clock:     opts.Clock,
		registry:  newListenerRegistry(),
	}
	for i := range in.channels {
		in.channels[i] = newInputChannel(in, i+1, opts.NrpnEvents, opts.OctaveOffset)
	}
	in.transport.SetReceiver(in.onMessage)
	in.transport.OnStateChange(in.onStateChange)
	return in
}

// Name reports the host port name.
func (in *Input) Name() string { return in.transport.Info().Name }

// ID reports the host port identifier.
func (in *Input) ID() string { return in.transport.Info().ID }

// Manufacturer reports the device manufacturer, if the host knows one.
func (in *Input) Manufacturer() string { return in.transport.Info().Manufacturer }

// State reports the host's connection state for the port.
func (in *Input) State() contracts.PortState { return in.transport.State() }

// Type reports the port direction, always contracts.PortTypeInput.
func (in *Input) Type() contracts.PortType { return contracts.PortTypeInput }

// Open connects the port. Failure to open propagates from the host.
func (in *Input) Open() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.destroyed {
		return ErrPortDestroyed
	}
	if in.opened {
		return nil
	}
	if err := in.transport.Open(); err != nil {
		return fmt.Errorf("opening input port: %w", err)
	}
	in.opened = true
	in.logger.Info("input port opened", in.logger.Field().String("name", in.Name()))
	return nil
}

// Close disconnects the port. Listeners stay registered.
func (in *Input) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.opened {
		return nil
	}
	if err := in.transport.Close(); err != nil {
		return fmt.Errorf("closing input port: %w", err)
	}
	in.opened = false
	return nil
}

// Destroy closes the port, destroys every channel and removes all listeners.
// Safe to call more than once.
func (in *Input) Destroy() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.destroyed {
		return nil
	}
	in.destroyed = true

	var err error
	if in.opened {
		err = in.transport.Close()
		in.opened = false
	}
	in.transport.SetReceiver(nil)
	for i, ch := range in.channels {
		if ch != nil {
			ch.Destroy()
			in.channels[i] = nil
		}
	}
	in.registry.removeAll("")
	in.logger.Info("input port destroyed", in.logger.Field().String("name", in.Name()))
	return err
}

// Channel returns the input channel for a 1-based channel number.
func (in *Input) Channel(number int) (*InputChannel, error) {
	if number < 1 || number > 16 {
		return nil, newRangeError("channel", 1, 16, number)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.destroyed {
		return nil, ErrPortDestroyed
	}
	return in.channels[number-1], nil
}

// AddListener registers a port-level listener. System message events and the
// connected/disconnected state events dispatch here.
func (in *Input) AddListener(eventType string, fn ListenerFunc) *Listener {
	return in.registry.add(eventType, fn)
}

// AddChannelListener registers the same listener on each of the given
// channels, or on all 16 when none are given.
func (in *Input) AddChannelListener(eventType string, fn ListenerFunc, channels ...int) ([]*Listener, error) {
	nums, err := expandChannels(channels)
	if err != nil {
		return nil, err
	}
	out := make([]*Listener, 0, len(nums))
	for _, n := range nums {
		ch, err := in.Channel(n)
		if err != nil {
			return nil, err
		}
		out = append(out, ch.AddListener(eventType, fn))
	}
	return out, nil
}

// RemoveListener unregisters a port-level listener.
func (in *Input) RemoveListener(l *Listener) {
	in.registry.remove(l)
}

// HasListener reports whether a port-level listener is registered for the
// named event, or for any event when eventType is "".
func (in *Input) HasListener(eventType string) bool {
	return in.registry.has(eventType)
}

func (in *Input) onStateChange(state contracts.PortState) {
	in.registry.emit(Event{
		Type:      string(state),
		Timestamp: resolveTimestampNow(in.clock),
		Port:      in,
	})
}

// onMessage is the transport receiver: it classifies one raw inbound message
// and routes it to the owning channel or to the port-level system handling.
// The host delivers one complete message per callback, so the full decode
// and dispatch path runs synchronously before the next message arrives.
func (in *Input) onMessage(data []byte, timestamp float64) {
	if len(data) == 0 {
		return
	}

	status := data[0]
	if status < 0x80 {
		// Hosts split long sysex messages into an opening 0xF0 chunk followed
		// by raw data chunks with no status byte, the last one ending in 0xF7.
		in.mu.Lock()
		buffering := in.inSysex
		in.mu.Unlock()
		if buffering {
			in.continueSysex(data, timestamp)
			return
		}
		// Data byte outside a sysex run; the host owns wire validity, so this
		// is dropped rather than rejected.
		return
	}

	if status < 0xF0 {
		in.mu.Lock()
		destroyed := in.destroyed
		var ch *InputChannel
		if !destroyed {
			ch = in.channels[status&0x0F]
		}
		in.mu.Unlock()
		if ch != nil {
			ch.parse(data, timestamp)
		}
		return
	}

	in.parseSystem(data, timestamp)
}

func (in *Input) parseSystem(data []byte, timestamp float64) {
	status := data[0]
	e := Event{
		Timestamp: timestamp,
		Data:      data,
		Port:      in,
	}

	switch status {
	case 0xF0:
		if data[len(data)-1] == 0xF7 {
			e.Type = "sysex"
			in.registry.emit(e)
			return
		}
		in.mu.Lock()
		in.inSysex = true
		in.sysexBuf = append(in.sysexBuf[:0], data...)
		in.mu.Unlock()

	case 0xF7:
		// A bare terminator chunk closing an open run; dropped otherwise.
		in.mu.Lock()
		buffering := in.inSysex
		in.mu.Unlock()
		if buffering {
			in.continueSysex(data, timestamp)
		}

	case 0xF1:
		if len(data) < 2 {
			return
		}
		e.Type = "timecode"
		e.RawValue = data[1]
		e.Value = float64(data[1])
		in.registry.emit(e)

	case 0xF2:
		if len(data) < 3 {
			return
		}
		e.Type = "songposition"
		e.Value = float64(int(data[2])<<7 | int(data[1]))
		in.registry.emit(e)

	case 0xF3:
		if len(data) < 2 {
			return
		}
		// Songs are surfaced 1-based, like programs.
		e.Type = "songselect"
		e.RawValue = data[1]
		e.Value = float64(data[1]) + 1
		in.registry.emit(e)

	case 0xF6:
		e.Type = "tunerequest"
		in.registry.emit(e)

	case 0xF8:
		e.Type = "clock"
		in.registry.emit(e)

	case 0xFA:
		e.Type = "start"
		in.registry.emit(e)

	case 0xFB:
		e.Type = "continue"
		in.registry.emit(e)

	case 0xFC:
		e.Type = "stop"
		in.registry.emit(e)

	case 0xFE:
		e.Type = "activesensing"
		in.registry.emit(e)

	case 0xFF:
		e.Type = "reset"
		in.registry.emit(e)

	default:
		in.logger.Debug("unclassified system message dropped",
			in.logger.Field().Uint8("status", status))
	}
}

// continueSysex buffers one continuation chunk of a split sysex message and
// emits the assembled event when the chunk carries the 0xF7 terminator.
func (in *Input) continueSysex(data []byte, timestamp float64) {
	in.mu.Lock()
	in.sysexBuf = append(in.sysexBuf, data...)
	done := data[len(data)-1] == 0xF7
	var buf []byte
	if done {
		buf = in.sysexBuf
		in.sysexBuf = nil
		in.inSysex = false
	}
	in.mu.Unlock()

	if done {
		in.registry.emit(Event{
			Type:      "sysex",
			Timestamp: timestamp,
			Data:      buf,
			Port:      in,
		})
	}
}

// resolveTimestampNow reports the current time from the configured clock.
func resolveTimestampNow(clock contracts.Clock) float64 {
	if clock == nil {
		clock = defaultClock
	}
	return clock()
}

// expandChannels resolves a channel selection to 1-based channel numbers,
// defaulting to all 16 when the selection is empty. Each number is validated
// independently.
func expandChannels(channels []int) ([]int, error) {
	if len(channels) == 0 {
		out := make([]int, 16)
		for i := range out {
			out[i] = i + 1
		}
		return out, nil
	}
	for _, n := range channels {
		if n < 1 || n > 16 {
			return nil, newRangeError("channel", 1, 16, n)
		}
	}
	return channels, nil
}
