package webmidi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceansize/webmidi/sdk/contracts"
)

func newNrpnInput(t *testing.T) (*Input, *mockTransport) {
	t.Helper()
	return newTestInput(t, contracts.WithNrpnEvents(true))
}

func TestRpnAssemblyCoarse(t *testing.T) {
	in, mock := newNrpnInput(t)
	rpn := collect(t, in, "rpn", 1)
	cc := collect(t, in, "controlchange", 1)

	// Select pitchbendrange, then a coarse data entry.
	mock.deliver([]byte{0xB0, 101, 0}, 0)
	mock.deliver([]byte{0xB0, 100, 0}, 0)
	mock.deliver([]byte{0xB0, 6, 2}, 0)

	assert.Empty(t, *cc, "the selection run is consumed, not surfaced")
	require.Len(t, *rpn, 1)
	e := (*rpn)[0]
	assert.Equal(t, "rpn", e.Type)
	assert.Equal(t, [2]byte{0, 0}, e.Parameter)
	assert.Equal(t, "pitchbendrange", e.ParameterName)
	assert.Equal(t, 2.0, e.Value)
	assert.Equal(t, byte(2), e.RawValue)
}

func TestRpnAssemblyFine(t *testing.T) {
	in, mock := newNrpnInput(t)
	rpn := collect(t, in, "rpn", 1)

	mock.deliver([]byte{0xB0, 101, 0}, 0)
	mock.deliver([]byte{0xB0, 100, 1}, 0) // channelfinetuning
	mock.deliver([]byte{0xB0, 6, 64}, 0)
	mock.deliver([]byte{0xB0, 38, 32}, 0)

	require.Len(t, *rpn, 2)
	assert.Equal(t, 64.0, (*rpn)[0].Value, "coarse event first")
	assert.Equal(t, float64(64<<7|32), (*rpn)[1].Value, "then the combined 14-bit value")
	assert.Equal(t, "channelfinetuning", (*rpn)[1].ParameterName)
}

func TestNrpnAssembly(t *testing.T) {
	in, mock := newNrpnInput(t)
	nrpn := collect(t, in, "nrpn", 1)

	mock.deliver([]byte{0xB0, 99, 0x01}, 0)
	mock.deliver([]byte{0xB0, 98, 0x02}, 0)
	mock.deliver([]byte{0xB0, 6, 100}, 0)

	require.Len(t, *nrpn, 1)
	e := (*nrpn)[0]
	assert.Equal(t, "nrpn", e.Type)
	assert.Equal(t, [2]byte{0x01, 0x02}, e.Parameter)
	assert.Equal(t, "", e.ParameterName, "non-registered parameters are unnamed")
	assert.Equal(t, 100.0, e.Value)
}

func TestRpnIncrementDecrement(t *testing.T) {
	in, mock := newNrpnInput(t)
	rpn := collect(t, in, "rpn", 1)

	mock.deliver([]byte{0xB0, 101, 0}, 0)
	mock.deliver([]byte{0xB0, 100, 0}, 0)
	mock.deliver([]byte{0xB0, 96, 0}, 0)
	mock.deliver([]byte{0xB0, 97, 0}, 0)

	require.Len(t, *rpn, 2)
	assert.Equal(t, 1.0, (*rpn)[0].Value)
	assert.Equal(t, -1.0, (*rpn)[1].Value)
}

func TestRpnNullSelectionDeselects(t *testing.T) {
	in, mock := newNrpnInput(t)
	rpn := collect(t, in, "rpn", 1)
	cc := collect(t, in, "controlchange", 1)

	mock.deliver([]byte{0xB0, 101, 127}, 0)
	mock.deliver([]byte{0xB0, 100, 127}, 0)
	assert.Empty(t, *rpn, "the null selection itself emits nothing")
	assert.Empty(t, *cc)

	// Data entry after a deselect is an ordinary control change.
	mock.deliver([]byte{0xB0, 6, 5}, 0)
	assert.Empty(t, *rpn)
	require.Len(t, *cc, 1)
	assert.Equal(t, byte(6), (*cc)[0].Controller.Number)
}

func TestDataEntryWhileIdleIsControlChange(t *testing.T) {
	in, mock := newNrpnInput(t)
	rpn := collect(t, in, "rpn", 1)
	cc := collect(t, in, "controlchange", 1)

	mock.deliver([]byte{0xB0, 6, 5}, 0)
	mock.deliver([]byte{0xB0, 38, 5}, 0)
	mock.deliver([]byte{0xB0, 96, 0}, 0)
	mock.deliver([]byte{0xB0, 97, 0}, 0)

	assert.Empty(t, *rpn)
	require.Len(t, *cc, 4)
	assert.Equal(t, "dataentrycoarse", (*cc)[0].Controller.Name)
}

func TestLoneSelectionLsbIsControlChange(t *testing.T) {
	in, mock := newNrpnInput(t)
	cc := collect(t, in, "controlchange", 1)

	// An LSB with no buffered MSB cannot complete a selection.
	mock.deliver([]byte{0xB0, 100, 0}, 0)

	require.Len(t, *cc, 1)
	assert.Equal(t, byte(100), (*cc)[0].Controller.Number)
}

func TestMixedKindSelectionResets(t *testing.T) {
	in, mock := newNrpnInput(t)
	rpn := collect(t, in, "rpn", 1)
	nrpn := collect(t, in, "nrpn", 1)
	cc := collect(t, in, "controlchange", 1)

	// RPN MSB followed by an NRPN LSB is not a valid selection.
	mock.deliver([]byte{0xB0, 101, 0}, 0)
	mock.deliver([]byte{0xB0, 98, 0}, 0)
	mock.deliver([]byte{0xB0, 6, 5}, 0)

	assert.Empty(t, *rpn)
	assert.Empty(t, *nrpn)
	require.Len(t, *cc, 2, "the mismatched LSB and the orphaned data entry surface as control changes")
}

func TestNrpnDisabledSurfacesRawRuns(t *testing.T) {
	in, mock := newTestInput(t) // NrpnEvents defaults to off
	rpn := collect(t, in, "rpn", 1)
	cc := collect(t, in, "controlchange", 1)

	mock.deliver([]byte{0xB0, 101, 0}, 0)
	mock.deliver([]byte{0xB0, 100, 0}, 0)
	mock.deliver([]byte{0xB0, 6, 2}, 0)

	assert.Empty(t, *rpn)
	require.Len(t, *cc, 3, "every message of the run surfaces as a plain control change")
}

func TestSetNrpnEventsEnabledResetsState(t *testing.T) {
	in, mock := newNrpnInput(t)
	ch, err := in.Channel(1)
	require.NoError(t, err)
	rpn := collect(t, in, "rpn", 1)
	cc := collect(t, in, "controlchange", 1)

	mock.deliver([]byte{0xB0, 101, 0}, 0)
	mock.deliver([]byte{0xB0, 100, 0}, 0)

	ch.SetNrpnEventsEnabled(false)
	assert.False(t, ch.NrpnEventsEnabled())
	mock.deliver([]byte{0xB0, 6, 2}, 0)
	assert.Empty(t, *rpn)
	require.Len(t, *cc, 1)

	// Re-enabling starts from a clean slate.
	ch.SetNrpnEventsEnabled(true)
	mock.deliver([]byte{0xB0, 6, 3}, 0)
	assert.Empty(t, *rpn, "the old selection was discarded")
	assert.Len(t, *cc, 2)
}

func TestParamStateIsPerChannel(t *testing.T) {
	in, mock := newNrpnInput(t)
	rpn1 := collect(t, in, "rpn", 1)
	rpn2 := collect(t, in, "rpn", 2)
	cc2 := collect(t, in, "controlchange", 2)

	// Select on channel 1, data entry on channel 2.
	mock.deliver([]byte{0xB0, 101, 0}, 0)
	mock.deliver([]byte{0xB0, 100, 0}, 0)
	mock.deliver([]byte{0xB1, 6, 2}, 0)

	assert.Empty(t, *rpn1)
	assert.Empty(t, *rpn2)
	require.Len(t, *cc2, 1)

	// Channel 1 still holds its selection.
	mock.deliver([]byte{0xB0, 6, 2}, 0)
	require.Len(t, *rpn1, 1)
}

func TestInputChannelOctaveOffset(t *testing.T) {
	in, mock := newTestInput(t)
	ch, err := in.Channel(1)
	require.NoError(t, err)
	ch.SetOctaveOffset(1)
	assert.Equal(t, 1, ch.OctaveOffset())

	events := collect(t, in, "noteon", 1)
	mock.deliver([]byte{0x90, 60, 64}, 0)

	require.Len(t, *events, 1)
	e := (*events)[0]
	assert.Equal(t, uint8(60), e.Note.Number, "the wire number is untouched")
	assert.Equal(t, 5, e.Note.Octave, "the surfaced octave shifts")
}

func TestInputChannelListenerLifecycle(t *testing.T) {
	in, _ := newTestInput(t)
	ch, err := in.Channel(1)
	require.NoError(t, err)

	l := ch.AddListener("noteon", func(Event) {})
	assert.True(t, ch.HasListener("noteon"))
	assert.True(t, ch.HasListener(""))
	assert.False(t, ch.HasListener("noteoff"))

	ch.RemoveListener(l)
	assert.False(t, ch.HasListener("noteon"))
	assert.False(t, ch.HasListener(""))
}
