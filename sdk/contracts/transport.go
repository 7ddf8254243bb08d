package contracts

// PortType identifies the direction of a MIDI port.
type PortType string

const (
	// PortTypeInput marks a port that delivers messages from the host to us.
	PortTypeInput PortType = "input"
	// PortTypeOutput marks a port that accepts messages for the host to send.
	PortTypeOutput PortType = "output"
)

// PortState reflects the host subsystem's view of a port's availability.
type PortState string

const (
	// PortConnected means the underlying device is present and usable.
	PortConnected PortState = "connected"
	// PortDisconnected means the underlying device has gone away.
	PortDisconnected PortState = "disconnected"
)

// PortInfo carries the readonly identity fields of a host MIDI port.
type PortInfo struct {
	ID           string   // Host-assigned port identifier.
	Name         string   // Human-readable port name.
	Manufacturer string   // Device manufacturer, if the host reports one.
	Type         PortType // Input or output.
}

// Receiver is invoked by an input transport for every inbound MIDI message.
// data holds the raw status+data bytes of a single message; timestamp is the
// host's reception time in milliseconds (0 when the host provides none).
type Receiver func(data []byte, timestamp float64)

// StateHandler is invoked when the host reports a port state change.
type StateHandler func(state PortState)

// Transport is the host MIDI subsystem collaborator. Implementations wrap a
// single physical or virtual port. Open and Close are the only asynchronous
// boundaries of the system; Send hands a fully framed message to the host
// together with a scheduling timestamp (0 means send immediately).
type Transport interface {
	Open() error
	Close() error

	// Send forwards one wire-complete MIDI message. The timestamp is a
	// scheduling request in milliseconds; hosts without scheduling support
	// send immediately regardless.
	Send(data []byte, timestamp float64) error

	// SetReceiver registers the inbound message callback. Passing nil
	// detaches the current receiver. Only meaningful for input ports.
	SetReceiver(fn Receiver)

	// OnStateChange registers the state notification callback.
	OnStateChange(fn StateHandler)

	Info() PortInfo
	State() PortState
}
