package webmidi

import (
	"fmt"
	"math"
)

// NoteOptions adjusts PlayNote and StopNote. The zero value plays with the
// default velocity of 0.5, immediately, with no scheduled release.
type NoteOptions struct {
	Time interface{} // Scheduling hint, see SendOptions.

	// Duration, in milliseconds. When positive, PlayNote schedules a
	// matching noteoff at the resolved time plus the duration.
	Duration float64

	// Velocity (attack for PlayNote, release for StopNote) as a float in
	// [0,1]. Nil means the default of 0.5.
	Velocity *float64

	// RawVelocity interprets Velocity as a raw integer value in [0,127].
	RawVelocity bool

	// Release velocity for the noteoff scheduled through Duration.
	Release *float64
}

func (o *NoteOptions) time() interface{} {
	if o == nil {
		return nil
	}
	return o.Time
}

// Float64 returns a pointer to v, for use in option structs.
func Float64(v float64) *float64 { return &v }

// OutputChannel frames the channel voice and mode messages for one of the
// 16 MIDI channels of an Output. Every operation validates its arguments
// before any byte reaches the transport and returns the channel itself so
// calls can be sequenced.
type OutputChannel struct {
	number       int
	output       *Output
	octaveOffset int
}

func newOutputChannel(output *Output, number, octaveOffset int) *OutputChannel {
	return &OutputChannel{number: number, output: output, octaveOffset: octaveOffset}
}

// Number reports the 1-based channel number, or 0 once destroyed.
func (c *OutputChannel) Number() int { return c.number }

// Output reports the owning port, or nil once destroyed.
func (c *OutputChannel) Output() *Output { return c.output }

// OctaveOffset reports the offset applied to note name resolution.
func (c *OutputChannel) OctaveOffset() int { return c.octaveOffset }

// SetOctaveOffset adjusts the offset applied to note name resolution.
func (c *OutputChannel) SetOctaveOffset(offset int) { c.octaveOffset = offset }

func (c *OutputChannel) destroy() {
	c.number = 0
	c.output = nil
}

func (c *OutputChannel) send(msgType byte, data []byte, timestamp float64) error {
	if c.output == nil {
		return ErrPortDestroyed
	}
	return c.output.sendChannelMessage(msgType, c.number, data, timestamp)
}

func (c *OutputChannel) resolveTime(t interface{}) float64 {
	if c.output == nil {
		return 0
	}
	return resolveTimestamp(c.output.clock, t)
}

// resolveNoteNumbers expands a note specifier and applies the channel's
// octave offset to each resolved number.
func (c *OutputChannel) resolveNoteNumbers(note interface{}) ([]uint8, error) {
	numbers, err := expandNotes(note)
	if err != nil {
		return nil, err
	}
	if c.octaveOffset == 0 {
		return numbers, nil
	}
	for i, n := range numbers {
		shifted := int(n) + 12*c.octaveOffset
		if shifted < 0 || shifted > 127 {
			return nil, newRangeError("note number", 0, 127, shifted)
		}
		numbers[i] = uint8(shifted)
	}
	return numbers, nil
}

// resolveVelocity turns the options' velocity into a wire byte. The default
// is 0.5 (64 on the wire).
func resolveVelocity(v *float64, raw bool, what string) (byte, error) {
	if v == nil {
		return 64, nil
	}
	value := *v
	if raw {
		if math.IsNaN(value) || value != math.Trunc(value) || value < 0 || value > 127 {
			return 0, newRangeError(what, 0, 127, value)
		}
		return byte(value), nil
	}
	if math.IsNaN(value) || value < 0 || value > 1 {
		return 0, newRangeError(what, 0, 1, value)
	}
	return byte(math.Round(value * 127)), nil
}

// PlayNote sends a noteon for the given note(s): a number (0-127), a name
// such as "C3", a Note, or a slice of those. When the options carry a
// positive duration, a matching noteoff is scheduled at time+duration.
func (c *OutputChannel) PlayNote(note interface{}, opts *NoteOptions) (*OutputChannel, error) {
	numbers, err := c.resolveNoteNumbers(note)
	if err != nil {
		return c, err
	}

	var velocity *float64
	raw := false
	var duration float64
	var release *float64
	if opts != nil {
		velocity = opts.Velocity
		raw = opts.RawVelocity
		duration = opts.Duration
		release = opts.Release
	}
	attack, err := resolveVelocity(velocity, raw, "velocity")
	if err != nil {
		return c, err
	}

	timestamp := c.resolveTime(opts.time())
	for _, n := range numbers {
		if err := c.send(0x9, []byte{n, attack}, timestamp); err != nil {
			return c, err
		}
	}

	if duration > 0 {
		releaseVelocity, err := resolveVelocity(release, raw, "release velocity")
		if err != nil {
			return c, err
		}
		off := timestamp
		if off == 0 {
			off = resolveTimestampNow(c.output.clock)
		}
		off += duration
		for _, n := range numbers {
			if err := c.send(0x8, []byte{n, releaseVelocity}, off); err != nil {
				return c, err
			}
		}
	}
	return c, nil
}

// StopNote sends a noteoff for the given note(s). The options' velocity is
// the release velocity.
func (c *OutputChannel) StopNote(note interface{}, opts *NoteOptions) (*OutputChannel, error) {
	numbers, err := c.resolveNoteNumbers(note)
	if err != nil {
		return c, err
	}

	var velocity *float64
	raw := false
	if opts != nil {
		velocity = opts.Velocity
		raw = opts.RawVelocity
	}
	release, err := resolveVelocity(velocity, raw, "release velocity")
	if err != nil {
		return c, err
	}

	timestamp := c.resolveTime(opts.time())
	for _, n := range numbers {
		if err := c.send(0x8, []byte{n, release}, timestamp); err != nil {
			return c, err
		}
	}
	return c, nil
}

// resolveController turns a controller specifier (name or number) into a
// controller number in [0,119]. Numbers 120-127 are channel mode territory
// and rejected here.
func resolveController(controller interface{}) (byte, error) {
	switch v := controller.(type) {
	case string:
		number, ok := ControlChange(v)
		if !ok {
			return 0, newTypeError("controller", fmt.Sprintf("unknown control change name %q", v))
		}
		return number, nil
	case int:
		if v < 0 || v > 119 {
			return 0, newRangeError("controller", 0, 119, v)
		}
		return byte(v), nil
	case byte:
		if v > 119 {
			return 0, newRangeError("controller", 0, 119, v)
		}
		return v, nil
	default:
		return 0, newTypeError("controller", "must be a name or a number")
	}
}

// SendControlChange sends a control change for a controller given by name or
// number (0-119).
func (c *OutputChannel) SendControlChange(controller interface{}, value int, opts *SendOptions) (*OutputChannel, error) {
	number, err := resolveController(controller)
	if err != nil {
		return c, err
	}
	if value < 0 || value > 127 {
		return c, newRangeError("control change value", 0, 127, value)
	}
	return c, c.send(0xB, []byte{number, byte(value)}, c.resolveTime(opts.time()))
}

// SendChannelMode sends a channel mode message for a command given by name
// or controller number (120-127). Only localcontrol and monomodeon carry a
// meaningful nonzero value; others are range-checked but not special-cased.
func (c *OutputChannel) SendChannelMode(command interface{}, value int, opts *SendOptions) (*OutputChannel, error) {
	var number byte
	switch v := command.(type) {
	case string:
		n, ok := ChannelModeMessage(v)
		if !ok {
			return c, newTypeError("channel mode", fmt.Sprintf("unknown channel mode name %q", v))
		}
		number = n
	case int:
		if v < 120 || v > 127 {
			return c, newRangeError("channel mode", 120, 127, v)
		}
		number = byte(v)
	case byte:
		if v < 120 {
			return c, newRangeError("channel mode", 120, 127, v)
		}
		number = v
	default:
		return c, newTypeError("channel mode", "must be a name or a number")
	}
	if value < 0 || value > 127 {
		return c, newRangeError("channel mode value", 0, 127, value)
	}
	return c, c.send(0xB, []byte{number, byte(value)}, c.resolveTime(opts.time()))
}

// SendKeyAftertouch sends a polyphonic key pressure message. Pressure is a
// float in [0,1].
func (c *OutputChannel) SendKeyAftertouch(note interface{}, pressure float64, opts *SendOptions) (*OutputChannel, error) {
	numbers, err := c.resolveNoteNumbers(note)
	if err != nil {
		return c, err
	}
	if math.IsNaN(pressure) || pressure < 0 || pressure > 1 {
		return c, newRangeError("pressure", 0, 1, pressure)
	}
	raw := byte(math.Round(pressure * 127))
	timestamp := c.resolveTime(opts.time())
	for _, n := range numbers {
		if err := c.send(0xA, []byte{n, raw}, timestamp); err != nil {
			return c, err
		}
	}
	return c, nil
}

// SendChannelAftertouch sends a channel pressure message. Pressure is a
// float in [0,1].
func (c *OutputChannel) SendChannelAftertouch(pressure float64, opts *SendOptions) (*OutputChannel, error) {
	if math.IsNaN(pressure) || pressure < 0 || pressure > 1 {
		return c, newRangeError("pressure", 0, 1, pressure)
	}
	raw := byte(math.Round(pressure * 127))
	return c, c.send(0xD, []byte{raw}, c.resolveTime(opts.time()))
}

// SendProgramChange selects a program by its 1-based number (1-128); the
// wire value is 0-based, matching how most hardware numbers its programs.
func (c *OutputChannel) SendProgramChange(program int, opts *SendOptions) (*OutputChannel, error) {
	if program < 1 || program > 128 {
		return c, newRangeError("program", 1, 128, program)
	}
	return c, c.send(0xC, []byte{byte(program - 1)}, c.resolveTime(opts.time()))
}

// SetPitchBend bends the pitch by a float in [-1,1]; 0 is the center (no
// bend), encoded as the 14-bit value 8192.
func (c *OutputChannel) SetPitchBend(value float64, opts *SendOptions) (*OutputChannel, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < -1 || value > 1 {
		return c, newRangeError("pitch bend", -1, 1, value)
	}
	level := int(math.Round((value + 1) / 2 * 16383))
	msb := byte(level >> 7 & 0x7F)
	lsb := byte(level & 0x7F)
	return c, c.send(0xE, []byte{lsb, msb}, c.resolveTime(opts.time()))
}

// SetPitchBendRaw bends the pitch by a raw coarse value in [0,127]; 64 is
// the center.
func (c *OutputChannel) SetPitchBendRaw(value int, opts *SendOptions) (*OutputChannel, error) {
	if value < 0 || value > 127 {
		return c, newRangeError("pitch bend", 0, 127, value)
	}
	return c, c.send(0xE, []byte{0, byte(value)}, c.resolveTime(opts.time()))
}

// resolveRegisteredParameter turns a parameter specifier (well-known name or
// literal [2]byte pair) into its (MSB, LSB) selection bytes.
func resolveRegisteredParameter(parameter interface{}) ([2]byte, bool) {
	switch v := parameter.(type) {
	case string:
		pair, ok := RegisteredParameter(v)
		return pair, ok
	case [2]byte:
		return v, v[0] <= 127 && v[1] <= 127
	case []byte:
		if len(v) != 2 || v[0] > 127 || v[1] > 127 {
			return [2]byte{}, false
		}
		return [2]byte{v[0], v[1]}, true
	default:
		return [2]byte{}, false
	}
}

// selectRegisteredParameter sends the two control changes that select a
// registered parameter (CC 101 MSB, CC 100 LSB).
func (c *OutputChannel) selectRegisteredParameter(parameter [2]byte, timestamp float64) error {
	if err := c.send(0xB, []byte{ccRpnMSB, parameter[0]}, timestamp); err != nil {
		return err
	}
	return c.send(0xB, []byte{ccRpnLSB, parameter[1]}, timestamp)
}

// deselectRegisteredParameter sends the null sentinel (127/127) that closes
// a registered parameter sequence, so stray data entry messages cannot be
// misattributed.
func (c *OutputChannel) deselectRegisteredParameter(timestamp float64) error {
	if err := c.send(0xB, []byte{ccRpnMSB, paramNullSentinel}, timestamp); err != nil {
		return err
	}
	return c.send(0xB, []byte{ccRpnLSB, paramNullSentinel}, timestamp)
}

// selectNonRegisteredParameter sends the two control changes that select a
// non-registered parameter (CC 99 MSB, CC 98 LSB).
func (c *OutputChannel) selectNonRegisteredParameter(parameter [2]byte, timestamp float64) error {
	if err := c.send(0xB, []byte{ccNrpnMSB, parameter[0]}, timestamp); err != nil {
		return err
	}
	return c.send(0xB, []byte{ccNrpnLSB, parameter[1]}, timestamp)
}

// deselectNonRegisteredParameter sends the null sentinel that closes a
// non-registered parameter sequence.
func (c *OutputChannel) deselectNonRegisteredParameter(timestamp float64) error {
	if err := c.send(0xB, []byte{ccNrpnMSB, paramNullSentinel}, timestamp); err != nil {
		return err
	}
	return c.send(0xB, []byte{ccNrpnLSB, paramNullSentinel}, timestamp)
}

// setCurrentParameter sends the data entry message(s) for the currently
// selected parameter: CC 6 for the coarse value and, when present, CC 38
// for the fine value. The data has been validated before the selection
// phase started.
func (c *OutputChannel) setCurrentParameter(data []int, timestamp float64) error {
	if err := c.send(0xB, []byte{ccDataEntryMSB, byte(data[0])}, timestamp); err != nil {
		return err
	}
	if len(data) == 2 {
		return c.send(0xB, []byte{ccDataEntryLSB, byte(data[1])}, timestamp)
	}
	return nil
}

// SetRegisteredParameter sets a registered parameter through the full
// select, data entry, deselect sequence. The parameter is a well-known name
// or a literal (MSB, LSB) pair; data holds the coarse and optionally the
// fine value.
func (c *OutputChannel) SetRegisteredParameter(parameter interface{}, data []int, opts *SendOptions) (*OutputChannel, error) {
	pair, ok := resolveRegisteredParameter(parameter)
	if !ok {
		return c, newTypeError("registered parameter", fmt.Sprintf("unknown parameter %v", parameter))
	}
	timestamp := c.resolveTime(opts.time())
	if err := c.validateParameterData(data); err != nil {
		return c, err
	}
	if err := c.selectRegisteredParameter(pair, timestamp); err != nil {
		return c, err
	}
	if err := c.setCurrentParameter(data, timestamp); err != nil {
		return c, err
	}
	return c, c.deselectRegisteredParameter(timestamp)
}

// SetNonRegisteredParameter sets a non-registered parameter through the
// full select, data entry, deselect sequence. The parameter is a literal
// (MSB, LSB) pair with both bytes in [0,127].
func (c *OutputChannel) SetNonRegisteredParameter(parameter [2]byte, data []int, opts *SendOptions) (*OutputChannel, error) {
	if parameter[0] > 127 || parameter[1] > 127 {
		return c, newRangeError("parameter byte", 0, 127, parameter)
	}
	timestamp := c.resolveTime(opts.time())
	if err := c.validateParameterData(data); err != nil {
		return c, err
	}
	if err := c.selectNonRegisteredParameter(parameter, timestamp); err != nil {
		return c, err
	}
	if err := c.setCurrentParameter(data, timestamp); err != nil {
		return c, err
	}
	return c, c.deselectNonRegisteredParameter(timestamp)
}

// validateParameterData checks the data entry values before the selection
// phase starts, so a failing call sends nothing at all.
func (c *OutputChannel) validateParameterData(data []int) error {
	if len(data) < 1 || len(data) > 2 {
		return newTypeError("parameter data", "must hold 1 or 2 values")
	}
	for _, v := range data {
		if v < 0 || v > 127 {
			return newRangeError("parameter data", 0, 127, v)
		}
	}
	return nil
}

// IncrementRegisteredParameter increments a registered parameter through the
// select, step, deselect sequence: five control changes in total, two
// selecting (CC 101/100), one data increment (CC 96), and two deselecting
// with the null sentinel.
func (c *OutputChannel) IncrementRegisteredParameter(parameter interface{}, opts *SendOptions) (*OutputChannel, error) {
	pair, ok := resolveRegisteredParameter(parameter)
	if !ok {
		return c, fmt.Errorf("%w: %v", ErrUnknownParameter, parameter)
	}
	timestamp := c.resolveTime(opts.time())
	if err := c.selectRegisteredParameter(pair, timestamp); err != nil {
		return c, err
	}
	if err := c.send(0xB, []byte{ccDataIncrement, 0}, timestamp); err != nil {
		return c, err
	}
	return c, c.deselectRegisteredParameter(timestamp)
}

// DecrementRegisteredParameter decrements a registered parameter through the
// select, step, deselect sequence: five control changes in total, two
// selecting (CC 101/100), one data decrement (CC 97), and two deselecting
// with the null sentinel.
func (c *OutputChannel) DecrementRegisteredParameter(parameter interface{}, opts *SendOptions) (*OutputChannel, error) {
	pair, ok := resolveRegisteredParameter(parameter)
	if !ok {
		return c, newTypeError("registered parameter", fmt.Sprintf("unknown parameter %v", parameter))
	}
	timestamp := c.resolveTime(opts.time())
	if err := c.selectRegisteredParameter(pair, timestamp); err != nil {
		return c, err
	}
	if err := c.send(0xB, []byte{ccDataDecrement, 0}, timestamp); err != nil {
		return c, err
	}
	return c, c.deselectRegisteredParameter(timestamp)
}

// SetPitchBendRange sets the pitch bend range in semitones and cents, each
// in [0,127].
func (c *OutputChannel) SetPitchBendRange(semitones, cents int, opts *SendOptions) (*OutputChannel, error) {
	if semitones < 0 || semitones > 127 {
		return c, newRangeError("semitones", 0, 127, semitones)
	}
	if cents < 0 || cents > 127 {
		return c, newRangeError("cents", 0, 127, cents)
	}
	return c.SetRegisteredParameter("pitchbendrange", []int{semitones, cents}, opts)
}

// SetModulationRange sets the modulation depth range in semitones and
// cents, each in [0,127].
func (c *OutputChannel) SetModulationRange(semitones, cents int, opts *SendOptions) (*OutputChannel, error) {
	if semitones < 0 || semitones > 127 {
		return c, newRangeError("semitones", 0, 127, semitones)
	}
	if cents < 0 || cents > 127 {
		return c, newRangeError("cents", 0, 127, cents)
	}
	return c.SetRegisteredParameter("modulationrange", []int{semitones, cents}, opts)
}

// SetMasterTuning sets the master tuning in semitones, from -65 (exclusive)
// to 64 (exclusive). The integer part goes to the coarse tuning parameter,
// the fraction to the fine tuning parameter as a 14-bit value.
func (c *OutputChannel) SetMasterTuning(value float64, opts *SendOptions) (*OutputChannel, error) {
	if math.IsNaN(value) || value <= -65 || value >= 64 {
		return c, newRangeError("master tuning", -65, 64, value)
	}
	coarse := int(math.Floor(value)) + 64
	fine := value - math.Floor(value)
	level := int(math.Round(fine * 16383))
	if _, err := c.SetRegisteredParameter("channelcoarsetuning", []int{coarse}, opts); err != nil {
		return c, err
	}
	return c.SetRegisteredParameter("channelfinetuning", []int{level >> 7 & 0x7F, level & 0x7F}, opts)
}

// SetTuningProgram selects a tuning program by its 1-based number (1-128).
func (c *OutputChannel) SetTuningProgram(program int, opts *SendOptions) (*OutputChannel, error) {
	if program < 1 || program > 128 {
		return c, newRangeError("tuning program", 1, 128, program)
	}
	return c.SetRegisteredParameter("tuningprogram", []int{program - 1}, opts)
}

// SetTuningBank selects a tuning bank by its 1-based number (1-128).
func (c *OutputChannel) SetTuningBank(bank int, opts *SendOptions) (*OutputChannel, error) {
	if bank < 1 || bank > 128 {
		return c, newRangeError("tuning bank", 1, 128, bank)
	}
	return c.SetRegisteredParameter("tuningbank", []int{bank - 1}, opts)
}
