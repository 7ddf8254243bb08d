package webmidi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceansize/webmidi/sdk/contracts"
)

func TestSendRawMessage(t *testing.T) {
	out, mock := newTestOutput(t)

	got, err := out.Send(0x90, []byte{60, 100}, nil)
	require.NoError(t, err)
	assert.Same(t, out, got)
	require.Len(t, mock.sent, 1)
	assert.Equal(t, []byte{0x90, 60, 100}, mock.sent[0].data)
	assert.Equal(t, 0.0, mock.sent[0].timestamp)
}

func TestSendRawMessageScheduled(t *testing.T) {
	out, mock := newTestOutput(t)

	_, err := out.Send(0xF8, nil, &SendOptions{Time: "+250"})
	require.NoError(t, err)
	require.Len(t, mock.sent, 1)
	assert.Equal(t, testNow+250, mock.sent[0].timestamp)
}

func TestSendRejectsDataByteStatus(t *testing.T) {
	out, mock := newTestOutput(t)

	var rangeErr *RangeError
	for _, status := range []byte{0x00, 0x40, 0x7F} {
		got, err := out.Send(status, nil, nil)
		require.ErrorAs(t, err, &rangeErr, "%#x", status)
		assert.Same(t, out, got)
	}
	assert.Empty(t, mock.sent)
}

func TestSendRejectsTruncatedMessages(t *testing.T) {
	out, mock := newTestOutput(t)

	var typeErr *TypeError
	for _, status := range []byte{0x80, 0x90, 0xA0} {
		_, err := out.Send(status, []byte{}, nil)
		require.ErrorAs(t, err, &typeErr, "%#x", status)
	}

	// One data byte is still one short for a noteon.
	_, err := out.Send(0x90, []byte{60}, nil)
	require.ErrorAs(t, err, &typeErr)

	// Program change needs exactly one.
	_, err = out.Send(0xC0, nil, nil)
	require.ErrorAs(t, err, &typeErr)

	assert.Empty(t, mock.sent)
}

func TestSendBeforeOpen(t *testing.T) {
	mock := newMockTransport(contracts.PortTypeOutput)
	out, err := NewOutput(
		contracts.WithTransport(mock),
		contracts.WithLogger(nopLogger{}),
		contracts.WithClock(fixedClock),
	)
	require.NoError(t, err)

	_, err = out.Send(0xF8, nil, nil)
	assert.True(t, errors.Is(err, ErrPortClosed))
	assert.Empty(t, mock.sent)
}

func TestSendAfterDestroy(t *testing.T) {
	out, mock := newTestOutput(t)
	require.NoError(t, out.Destroy())

	_, err := out.Send(0xF8, nil, nil)
	assert.True(t, errors.Is(err, ErrPortDestroyed))
	assert.Empty(t, mock.sent)

	// Destroy is idempotent.
	require.NoError(t, out.Destroy())
}

func TestDestroyTearsDownChannels(t *testing.T) {
	out, _ := newTestOutput(t)
	ch, err := out.Channel(3)
	require.NoError(t, err)

	require.NoError(t, out.Destroy())

	assert.Equal(t, 0, ch.Number())
	assert.Nil(t, ch.Output())
	_, err = out.Channel(3)
	assert.True(t, errors.Is(err, ErrPortDestroyed))
}

func TestTransportErrorsPassThrough(t *testing.T) {
	out, mock := newTestOutput(t)
	sendErr := errors.New("device unplugged")
	mock.sendErr = sendErr

	_, err := out.Send(0xF8, nil, nil)
	assert.True(t, errors.Is(err, sendErr))
}

func TestChannelNumberRange(t *testing.T) {
	out, _ := newTestOutput(t)

	var rangeErr *RangeError
	for _, n := range []int{0, 17, -1} {
		_, err := out.Channel(n)
		require.ErrorAs(t, err, &rangeErr, "%d", n)
	}
}

func TestSendSysex(t *testing.T) {
	out, mock := newTestOutput(t)

	got, err := out.SendSysex([]byte{0x42}, []byte{0x01, 0x02, 0x03}, nil)
	require.NoError(t, err)
	assert.Same(t, out, got)
	require.Len(t, mock.sent, 1)
	assert.Equal(t, []byte{0xF0, 0x42, 0x01, 0x02, 0x03, 0xF7}, mock.sent[0].data)
}

func TestSendSysexThreeByteManufacturer(t *testing.T) {
	out, mock := newTestOutput(t)

	_, err := out.SendSysex([]byte{0x00, 0x21, 0x09}, []byte{0x7F}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x00, 0x21, 0x09, 0x7F, 0xF7}, mock.sent[0].data)
}

func TestSendSysexInvalid(t *testing.T) {
	out, mock := newTestOutput(t)

	var typeErr *TypeError
	_, err := out.SendSysex(nil, nil, nil)
	require.ErrorAs(t, err, &typeErr)
	_, err = out.SendSysex([]byte{0x42, 0x43}, nil, nil)
	require.ErrorAs(t, err, &typeErr)

	var rangeErr *RangeError
	_, err = out.SendSysex([]byte{0x80}, nil, nil)
	require.ErrorAs(t, err, &rangeErr)
	_, err = out.SendSysex([]byte{0x42}, []byte{0x80}, nil)
	require.ErrorAs(t, err, &rangeErr)

	assert.Empty(t, mock.sent)
}

func TestSystemCommonMessages(t *testing.T) {
	out, mock := newTestOutput(t)

	_, err := out.SendTimecodeQuarterFrame(0x35, nil)
	require.NoError(t, err)
	_, err = out.SendSongPosition(1000, nil)
	require.NoError(t, err)
	_, err = out.SetSong(1, nil)
	require.NoError(t, err)
	_, err = out.SendTuneRequest(nil)
	require.NoError(t, err)

	want := [][]byte{
		{0xF1, 0x35},
		{0xF2, 1000 & 0x7F, 1000 >> 7},
		{0xF3, 0},
		{0xF6},
	}
	assert.Equal(t, want, mock.bytes())
}

func TestSystemRealTimeMessages(t *testing.T) {
	out, mock := newTestOutput(t)

	_, err := out.SendClock(nil)
	require.NoError(t, err)
	_, err = out.SendStart(nil)
	require.NoError(t, err)
	_, err = out.SendContinue(nil)
	require.NoError(t, err)
	_, err = out.SendStop(nil)
	require.NoError(t, err)
	_, err = out.SendActiveSensing(nil)
	require.NoError(t, err)
	_, err = out.SendReset(nil)
	require.NoError(t, err)

	want := [][]byte{{0xF8}, {0xFA}, {0xFB}, {0xFC}, {0xFE}, {0xFF}}
	assert.Equal(t, want, mock.bytes())
}

func TestSystemMessageRanges(t *testing.T) {
	out, _ := newTestOutput(t)

	var rangeErr *RangeError
	_, err := out.SendTimecodeQuarterFrame(128, nil)
	require.ErrorAs(t, err, &rangeErr)
	_, err = out.SendSongPosition(16384, nil)
	require.ErrorAs(t, err, &rangeErr)
	_, err = out.SendSongPosition(-1, nil)
	require.ErrorAs(t, err, &rangeErr)
	_, err = out.SetSong(0, nil)
	require.ErrorAs(t, err, &rangeErr)
	_, err = out.SetSong(129, nil)
	require.ErrorAs(t, err, &rangeErr)
}

func TestPortLevelFanOutDefaultsToAllChannels(t *testing.T) {
	out, mock := newTestOutput(t)

	got, err := out.SendProgramChange(1, nil)
	require.NoError(t, err)
	assert.Same(t, out, got)

	require.Len(t, mock.sent, 16)
	for i, msg := range mock.sent {
		assert.Equal(t, []byte{0xC0 | byte(i), 0}, msg.data, "channel %d", i+1)
	}
}

func TestPortLevelFanOutSelectedChannels(t *testing.T) {
	out, mock := newTestOutput(t)

	_, err := out.PlayNote(60, nil, 2, 5)
	require.NoError(t, err)

	want := [][]byte{
		{0x91, 60, 64},
		{0x94, 60, 64},
	}
	assert.Equal(t, want, mock.bytes())
}

func TestPortLevelFanOutChannelRange(t *testing.T) {
	out, mock := newTestOutput(t)

	var rangeErr *RangeError
	_, err := out.PlayNote(60, nil, 1, 17)
	require.ErrorAs(t, err, &rangeErr)
	_, err = out.PlayNote(60, nil, 0)
	require.ErrorAs(t, err, &rangeErr)
	assert.Empty(t, mock.sent, "channel validation happens before any send")
}

func TestOutputIdentity(t *testing.T) {
	out, _ := newTestOutput(t)

	assert.Equal(t, "mock-1", out.ID())
	assert.Equal(t, "Mock Port", out.Name())
	assert.Equal(t, "Testing", out.Manufacturer())
	assert.Equal(t, contracts.PortTypeOutput, out.Type())
	assert.Equal(t, contracts.PortConnected, out.State())

	require.NoError(t, out.Close())
	assert.Equal(t, contracts.PortDisconnected, out.State())
}

func TestOutputStateListeners(t *testing.T) {
	out, mock := newTestOutput(t)

	var events []Event
	l := out.AddListener("disconnected", func(e Event) {
		events = append(events, e)
	})
	assert.True(t, out.HasListener("disconnected"))
	assert.True(t, out.HasListener(""))

	mock.stateFn(contracts.PortDisconnected)
	require.Len(t, events, 1)
	assert.Equal(t, "disconnected", events[0].Type)
	assert.Equal(t, testNow, events[0].Timestamp)

	out.RemoveListener(l)
	assert.False(t, out.HasListener("disconnected"))
	mock.stateFn(contracts.PortDisconnected)
	assert.Len(t, events, 1)
}

func TestOpenIsIdempotent(t *testing.T) {
	out, _ := newTestOutput(t)
	require.NoError(t, out.Open())
	require.NoError(t, out.Open())
}
