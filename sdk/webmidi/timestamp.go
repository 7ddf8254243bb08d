package webmidi

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/oceansize/webmidi/sdk/contracts"
)

// defaultClock reports wall-clock time in milliseconds, the unit used for
// every timestamp exchanged with the host transport.
func defaultClock() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}

// resolveTimestamp turns a user-supplied scheduling hint into the value
// handed to the transport: a string of the form "+123" means that many
// milliseconds from now, a number at or after the current time is an
// absolute scheduled time, and anything else means send immediately (0).
// Every send operation goes through this one function.
func resolveTimestamp(clock contracts.Clock, t interface{}) float64 {
	if clock == nil {
		clock = defaultClock
	}

	switch v := t.(type) {
	case nil:
		return 0
	case string:
		if !strings.HasPrefix(v, "+") {
			return 0
		}
		delay, err := strconv.ParseFloat(v[1:], 64)
		if err != nil || math.IsNaN(delay) || math.IsInf(delay, 0) || delay <= 0 {
			return 0
		}
		return clock() + delay
	case float64:
		return absoluteOrNow(clock, v)
	case float32:
		return absoluteOrNow(clock, float64(v))
	case int:
		return absoluteOrNow(clock, float64(v))
	case int64:
		return absoluteOrNow(clock, float64(v))
	case uint64:
		return absoluteOrNow(clock, float64(v))
	case time.Duration:
		if v <= 0 {
			return 0
		}
		return clock() + float64(v)/float64(time.Millisecond)
	case time.Time:
		return absoluteOrNow(clock, float64(v.UnixNano())/float64(time.Millisecond))
	default:
		return 0
	}
}

func absoluteOrNow(clock contracts.Clock, t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	if t >= clock() {
		return t
	}
	return 0
}
