package webmidi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTimestampRelative(t *testing.T) {
	assert.Equal(t, testNow+100, resolveTimestamp(fixedClock, "+100"))
	assert.Equal(t, testNow+2.5, resolveTimestamp(fixedClock, "+2.5"))
}

func TestResolveTimestampAbsolute(t *testing.T) {
	assert.Equal(t, testNow, resolveTimestamp(fixedClock, testNow))
	assert.Equal(t, testNow+500, resolveTimestamp(fixedClock, testNow+500))
}

func TestResolveTimestampImmediate(t *testing.T) {
	cases := []interface{}{
		nil,
		0,
		testNow - 1, // past times send immediately
		"100",       // no "+" prefix
		"+",
		"+abc",
		"+-5",
		"yesterday",
		math.NaN(),
		math.Inf(1),
		math.Inf(-1),
		struct{}{},
	}
	for _, c := range cases {
		assert.Equal(t, 0.0, resolveTimestamp(fixedClock, c), "%v", c)
	}
}
