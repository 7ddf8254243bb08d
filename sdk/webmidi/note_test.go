package webmidi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNoteName(t *testing.T) {
	cases := map[string]uint8{
		"C-1": 0,
		"C0":  12,
		"C3":  48,
		"A4":  69,
		"G#4": 68,
		"Bb1": 34,
		"G9":  127,
	}
	for name, want := range cases {
		got, err := ParseNoteName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestParseNoteNameInvalid(t *testing.T) {
	for _, name := range []string{"Z-8", "R22", "", "C", "c3", "C##b2", "H4"} {
		_, err := ParseNoteName(name)
		assert.Error(t, err, name)
	}

	// Well-formed but out of the 0-127 number range.
	_, err := ParseNoteName("A9")
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
}

func TestNewNote(t *testing.T) {
	n := NewNote(60)
	assert.Equal(t, "C", n.Name)
	assert.Equal(t, 4, n.Octave)

	n = NewNote(0)
	assert.Equal(t, "C", n.Name)
	assert.Equal(t, -1, n.Octave)
}

func TestConvertNoteToNumber(t *testing.T) {
	got, err := ConvertNoteToNumber(64)
	require.NoError(t, err)
	assert.Equal(t, uint8(64), got)

	got, err = ConvertNoteToNumber("C3")
	require.NoError(t, err)
	assert.Equal(t, uint8(48), got)

	got, err = ConvertNoteToNumber(Note{Number: 52})
	require.NoError(t, err)
	assert.Equal(t, uint8(52), got)

	got, err = ConvertNoteToNumber(64.0)
	require.NoError(t, err)
	assert.Equal(t, uint8(64), got)
}

func TestConvertNoteToNumberInvalid(t *testing.T) {
	for _, input := range []interface{}{-1, 128, nil, 64.5, "Z-8", struct{}{}, func() {}} {
		_, err := ConvertNoteToNumber(input)
		assert.Error(t, err, "%v", input)
	}
}

func TestExpandNotes(t *testing.T) {
	got, err := expandNotes([]interface{}{48, "E3", Note{Number: 55}})
	require.NoError(t, err)
	assert.Equal(t, []uint8{48, 52, 55}, got)

	got, err = expandNotes("C3")
	require.NoError(t, err)
	assert.Equal(t, []uint8{48}, got)

	_, err = expandNotes([]interface{}{"x"})
	assert.Error(t, err)

	_, err = expandNotes(nil)
	assert.Error(t, err)
}
