package webmidi

import (
	"sync"

	"github.com/oceansize/webmidi/sdk/contracts"
)

// Compatibility shims for method names from earlier releases. Each forwards
// to its replacement and logs a single deprecation warning per process.

var deprecationWarned sync.Map

func warnDeprecated(logger contracts.Logger, old, replacement string) {
	if _, loaded := deprecationWarned.LoadOrStore(old, struct{}{}); loaded {
		return
	}
	logger.Warn("deprecated method called",
		logger.Field().String("method", old),
		logger.Field().String("use", replacement))
}

// SendPitchBend is the former name of SetPitchBend.
//
// Deprecated: Use SetPitchBend.
func (o *Output) SendPitchBend(value float64, opts *SendOptions, channels ...int) (*Output, error) {
	warnDeprecated(o.logger, "SendPitchBend", "SetPitchBend")
	return o.SetPitchBend(value, opts, channels...)
}

// SendTuningProgram is the former name of SetTuningProgram.
//
// Deprecated: Use SetTuningProgram.
func (o *Output) SendTuningProgram(program int, opts *SendOptions, channels ...int) (*Output, error) {
	warnDeprecated(o.logger, "SendTuningProgram", "SetTuningProgram")
	return o.SetTuningProgram(program, opts, channels...)
}

// SendTuningBank is the former name of SetTuningBank.
//
// Deprecated: Use SetTuningBank.
func (o *Output) SendTuningBank(bank int, opts *SendOptions, channels ...int) (*Output, error) {
	warnDeprecated(o.logger, "SendTuningBank", "SetTuningBank")
	return o.SetTuningBank(bank, opts, channels...)
}

// SendSongSelect is the former name of SetSong.
//
// Deprecated: Use SetSong.
func (o *Output) SendSongSelect(song int, opts *SendOptions) (*Output, error) {
	warnDeprecated(o.logger, "SendSongSelect", "SetSong")
	return o.SetSong(song, opts)
}
