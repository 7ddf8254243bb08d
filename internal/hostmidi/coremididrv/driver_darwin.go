//go:build darwin
// +build darwin

package coremididrv

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oceansize/webmidi/sdk/contracts"
	coremidi "github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices       = errors.New("no MIDI devices found")
	ErrPortNotFound        = errors.New("named MIDI port not found")
	ErrCreateInputPort     = errors.New("error creating input port")
	ErrCreateOutputPort    = errors.New("error creating output port")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
)

// internalPortConnection is an interface for handling disconnection from a
// MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// transport adapts one CoreMIDI source or destination to the Transport
// contract.
type transport struct {
	logger     contracts.Logger
	clientName string
	info       contracts.PortInfo

	mu          sync.Mutex
	client      coremidi.Client
	source      coremidi.Source
	destination coremidi.Destination
	inputPort   coremidi.InputPort
	outputPort  coremidi.OutputPort
	portConn    internalPortConnection
	receiver    contracts.Receiver
	stateFn     contracts.StateHandler
	opened      bool
}

// New binds the first CoreMIDI source or destination, or the one whose name
// contains opts.PortName (case-insensitive).
func New(portType contracts.PortType, opts *contracts.ClientOptions) (contracts.Transport, error) {
	client, err := coremidi.NewClient(opts.ClientName)
	if err != nil {
		return nil, err
	}

	t := &transport{
		logger:     opts.Logger,
		clientName: opts.ClientName,
		client:     client,
	}

	if portType == contracts.PortTypeInput {
		sources, err := coremidi.AllSources()
		if err != nil {
			return nil, fmt.Errorf("error listing MIDI sources: %w", err)
		}
		if len(sources) == 0 {
			opts.Logger.Warn(ErrNoMIDIDevices.Error())
			return nil, ErrNoMIDIDevices
		}
		found := false
		for _, source := range sources {
			if matches(source.Name(), opts.PortName) {
				t.source = source
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrPortNotFound, opts.PortName)
		}
		entity := t.source.Entity()
		t.info = contracts.PortInfo{
			ID:           fmt.Sprintf("coremidi-input-%s", t.source.Name()),
			Name:         t.source.Name(),
			Manufacturer: entity.Manufacturer(),
			Type:         portType,
		}
	} else {
		destinations, err := coremidi.AllDestinations()
		if err != nil {
			return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
		}
		if len(destinations) == 0 {
			opts.Logger.Warn(ErrNoMIDIDevices.Error())
			return nil, ErrNoMIDIDevices
		}
		found := false
		for _, destination := range destinations {
			if matches(destination.Name(), opts.PortName) {
				t.destination = destination
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrPortNotFound, opts.PortName)
		}
		entity := t.destination.Entity()
		t.info = contracts.PortInfo{
			ID:           fmt.Sprintf("coremidi-output-%s", t.destination.Name()),
			Name:         t.destination.Name(),
			Manufacturer: entity.Manufacturer(),
			Type:         portType,
		}
	}

	opts.Logger.Info("CoreMIDI transport bound",
		opts.Logger.Field().String("port", t.info.Name))
	return t, nil
}

func matches(name, want string) bool {
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}

func (t *transport) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.opened {
		return nil
	}

	if t.info.Type == contracts.PortTypeInput {
		inputPort, err := coremidi.NewInputPort(t.client, t.clientName, t.handleMIDIMessage)
		if err != nil {
			t.logger.Error(ErrCreateInputPort.Error())
			return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
		}
		t.inputPort = inputPort

		conn, err := inputPort.Connect(t.source)
		if err != nil {
			t.logger.Error(ErrMIDIConnectionError.Error())
			return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
		}
		t.portConn = conn
	} else {
		outputPort, err := coremidi.NewOutputPort(t.client, t.clientName)
		if err != nil {
			t.logger.Error(ErrCreateOutputPort.Error())
			return fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
		}
		t.outputPort = outputPort
	}

	t.opened = true
	t.notify(contracts.PortConnected)
	return nil
}

// handleMIDIMessage forwards one inbound CoreMIDI packet to the receiver,
// stamped with the reception time in milliseconds.
func (t *transport) handleMIDIMessage(source coremidi.Source, packet coremidi.Packet) {
	t.mu.Lock()
	receiver := t.receiver
	t.mu.Unlock()
	if receiver == nil {
		return
	}
	if len(packet.Data) == 0 {
		return
	}
	receiver(packet.Data, float64(time.Now().UnixNano())/float64(time.Millisecond))
}

func (t *transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.opened {
		return nil
	}

	if t.portConn != nil {
		t.portConn.Disconnect()
		t.portConn = nil
	}

	t.opened = false
	t.notify(contracts.PortDisconnected)
	return nil
}

// Send forwards one message immediately. CoreMIDI scheduling is not wired
// through go-coremidi, so the timestamp is accepted and dropped.
func (t *transport) Send(data []byte, _ float64) error {
	t.mu.Lock()
	opened := t.opened
	port := t.outputPort
	destination := t.destination
	t.mu.Unlock()

	if !opened {
		return errors.New("port is not open for sending")
	}
	packet := coremidi.NewPacket(data, 0)
	return packet.Send(&port, &destination)
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

func (t *transport) notify(state contracts.PortState) {
	fn := t.stateFn
	if fn != nil {
		go fn(state)
	}
}
