package webmidi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeprecatedShimsForward(t *testing.T) {
	out, mock := newTestOutput(t)

	got, err := out.SendPitchBend(0, nil, 1)
	require.NoError(t, err)
	assert.Same(t, out, got)
	assert.Equal(t, []byte{0xE0, 0, 64}, mock.sent[0].data)

	mock.sent = nil
	_, err = out.SendSongSelect(12, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF3, 11}, mock.sent[0].data)

	mock.sent = nil
	_, err = out.SendTuningProgram(1, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xB0, 6, 0}, mock.sent[2].data)

	var rangeErr *RangeError
	_, err = out.SendTuningBank(0, nil, 1)
	require.ErrorAs(t, err, &rangeErr)
}
