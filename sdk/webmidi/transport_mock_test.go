package webmidi

import (
	"time"

	"github.com/oceansize/webmidi/sdk/contracts"
)

// sentMessage is one message recorded by the mock transport.
type sentMessage struct {
	data      []byte
	timestamp float64
}

// mockTransport records everything sent through it and lets tests inject
// inbound messages and state changes.
type mockTransport struct {
	info     contracts.PortInfo
	receiver contracts.Receiver
	stateFn  contracts.StateHandler
	sent     []sentMessage
	opened   bool

	openErr error
	sendErr error
}

func newMockTransport(portType contracts.PortType) *mockTransport {
	return &mockTransport{
		info: contracts.PortInfo{
			ID:           "mock-1",
			Name:         "Mock Port",
			Manufacturer: "Testing",
			Type:         portType,
		},
	}
}

func (m *mockTransport) Open() error {
	if m.openErr != nil {
		return m.openErr
	}
	m.opened = true
	return nil
}

func (m *mockTransport) Close() error {
	m.opened = false
	return nil
}

func (m *mockTransport) Send(data []byte, timestamp float64) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.sent = append(m.sent, sentMessage{data: buf, timestamp: timestamp})
	return nil
}

func (m *mockTransport) SetReceiver(fn contracts.Receiver)    { m.receiver = fn }
func (m *mockTransport) OnStateChange(fn contracts.StateHandler) { m.stateFn = fn }
func (m *mockTransport) Info() contracts.PortInfo             { return m.info }

func (m *mockTransport) State() contracts.PortState {
	if m.opened {
		return contracts.PortConnected
	}
	return contracts.PortDisconnected
}

// deliver injects one inbound message, as the host would.
func (m *mockTransport) deliver(data []byte, timestamp float64) {
	if m.receiver != nil {
		m.receiver(data, timestamp)
	}
}

// bytes flattens the recorded messages for sequence assertions.
func (m *mockTransport) bytes() [][]byte {
	out := make([][]byte, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.data
	}
	return out
}

// nopLogger discards everything; tests assert on behavior, not logs.
type nopLogger struct{}

func (nopLogger) Info(string, ...contracts.Field)  {}
func (nopLogger) Error(string, ...contracts.Field) {}
func (nopLogger) Debug(string, ...contracts.Field) {}
func (nopLogger) Warn(string, ...contracts.Field)  {}
func (nopLogger) Field() contracts.Field           { return nopField{} }
func (nopLogger) SetLevel(contracts.LogLevel)      {}

type nopField struct{}

func (nopField) Bool(string, bool) contracts.Field       { return nopField{} }
func (nopField) Int(string, int) contracts.Field         { return nopField{} }
func (nopField) Float64(string, float64) contracts.Field { return nopField{} }
func (nopField) String(string, string) contracts.Field   { return nopField{} }
func (nopField) Time(string, time.Time) contracts.Field  { return nopField{} }
func (nopField) Error(string, error) contracts.Field     { return nopField{} }
func (nopField) Uint8(string, uint8) contracts.Field     { return nopField{} }

// fixedClock keeps timestamp resolution deterministic.
const testNow = 10000.0

func fixedClock() float64 { return testNow }

func newTestOutput(t interface{ Fatalf(string, ...interface{}) }) (*Output, *mockTransport) {
	mock := newMockTransport(contracts.PortTypeOutput)
	out, err := NewOutput(
		contracts.WithTransport(mock),
		contracts.WithLogger(nopLogger{}),
		contracts.WithClock(fixedClock),
	)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}
	if err := out.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return out, mock
}

func newTestInput(t interface{ Fatalf(string, ...interface{}) }, opts ...contracts.Option) (*Input, *mockTransport) {
	mock := newMockTransport(contracts.PortTypeInput)
	all := append([]contracts.Option{
		contracts.WithTransport(mock),
		contracts.WithLogger(nopLogger{}),
		contracts.WithClock(fixedClock),
	}, opts...)
	in, err := NewInput(all...)
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	if err := in.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return in, mock
}
