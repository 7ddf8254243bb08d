package webmidi

import (
	"fmt"
	"sync"

	"github.com/oceansize/webmidi/sdk/contracts"
)

// SendOptions carries the scheduling hint shared by every send operation.
// Time accepts a string of the form "+123" (milliseconds from now), an
// absolute time in milliseconds, or nothing (send immediately).
type SendOptions struct {
	Time interface{}
}

func (o *SendOptions) time() interface{} {
	if o == nil {
		return nil
	}
	return o.Time
}

// Output wraps a host output port and frames high-level calls into MIDI byte
// sequences. It owns a fixed set of 16 channels; channel-level operations
// exist both here (with a channel selection that defaults to all 16) and on
// the individual OutputChannel.
type Output struct {
	transport contracts.Transport
	logger    contracts.Logger
	clock     contracts.Clock

	mu        sync.Mutex
	channels  [16]*OutputChannel
	registry  *listenerRegistry
	opened    bool
	destroyed bool
}

func newOutput(opts *contracts.ClientOptions) *Output {
	out := &Output{
		transport: opts.Transport,
		logger:    opts.Logger,
		clock:     opts.Clock,
		registry:  newListenerRegistry(),
	}
	for i := range out.channels {
		out.channels[i] = newOutputChannel(out, i+1, opts.OctaveOffset)
	}
	out.transport.OnStateChange(out.onStateChange)
	return out
}

// Name reports the host port name.
func (o *Output) Name() string { return o.transport.Info().Name }

// ID reports the host port identifier.
func (o *Output) ID() string { return o.transport.Info().ID }

// Manufacturer reports the device manufacturer, if the host knows one.
func (o *Output) Manufacturer() string { return o.transport.Info().Manufacturer }

// State reports the host's connection state for the port.
func (o *Output) State() contracts.PortState { return o.transport.State() }

// Type reports the port direction, always contracts.PortTypeOutput.
func (o *Output) Type() contracts.PortType { return contracts.PortTypeOutput }

// Open connects the port. Failure to open propagates from the host.
func (o *Output) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.destroyed {
		return ErrPortDestroyed
	}
	if o.opened {
		return nil
	}
	if err := o.transport.Open(); err != nil {
		return fmt.Errorf("opening output port: %w", err)
	}
	o.opened = true
	o.logger.Info("output port opened", o.logger.Field().String("name", o.Name()))
	return nil
}

// Close disconnects the port.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.opened {
		return nil
	}
	if err := o.transport.Close(); err != nil {
		return fmt.Errorf("closing output port: %w", err)
	}
	o.opened = false
	return nil
}

// Destroy closes the port, destroys every channel and removes all listeners.
// Safe to call more than once.
func (o *Output) Destroy() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.destroyed {
		return nil
	}
	o.destroyed = true

	var err error
	if o.opened {
		err = o.transport.Close()
		o.opened = false
	}
	for i, ch := range o.channels {
		if ch != nil {
			ch.destroy()
			o.channels[i] = nil
		}
	}
	o.registry.removeAll("")
	o.logger.Info("output port destroyed", o.logger.Field().String("name", o.Name()))
	return err
}

// Channel returns the output channel for a 1-based channel number.
func (o *Output) Channel(number int) (*OutputChannel, error) {
	if number < 1 || number > 16 {
		return nil, newRangeError("channel", 1, 16, number)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.destroyed {
		return nil, ErrPortDestroyed
	}
	return o.channels[number-1], nil
}

// AddListener registers a listener for the connected/disconnected state
// events of the port.
func (o *Output) AddListener(eventType string, fn ListenerFunc) *Listener {
	return o.registry.add(eventType, fn)
}

// RemoveListener unregisters a previously added listener.
func (o *Output) RemoveListener(l *Listener) {
	o.registry.remove(l)
}

// HasListener reports whether a listener is registered for the named event,
// or for any event when eventType is "".
func (o *Output) HasListener(eventType string) bool {
	return o.registry.has(eventType)
}

func (o *Output) onStateChange(state contracts.PortState) {
	o.registry.emit(Event{
		Type:      string(state),
		Timestamp: resolveTimestampNow(o.clock),
	})
}

// Send is the lowest-level send primitive: one status byte plus raw data
// bytes, forwarded to the host with a resolved timestamp. The status byte
// must be in [128,255]; data bytes may use the full [0,255] range here, but
// the sequence must be structurally complete for its message family.
func (o *Output) Send(status byte, data []byte, opts *SendOptions) (*Output, error) {
	if status < 0x80 {
		return o, newRangeError("status byte", 128, 255, status)
	}
	if want := requiredDataLength(status); want >= 0 && len(data) < want {
		return o, newTypeError("message", fmt.Sprintf("status %#x requires %d data byte(s), got %d", status, want, len(data)))
	}

	message := make([]byte, 0, 1+len(data))
	message = append(message, status)
	message = append(message, data...)
	return o, o.sendAt(message, resolveTimestamp(o.clock, opts.time()))
}

// requiredDataLength reports the number of data bytes a status byte's
// message family requires, or -1 for variable-length (sysex).
func requiredDataLength(status byte) int {
	if status < 0xF0 {
		switch status >> 4 {
		case 0xC, 0xD:
			return 1
		default:
			return 2
		}
	}
	switch status {
	case 0xF0, 0xF7:
		return -1
	case 0xF1, 0xF3:
		return 1
	case 0xF2:
		return 2
	default:
		return 0
	}
}

// sendAt forwards one framed message to the host transport. Transport errors
// pass through unreinterpreted.
func (o *Output) sendAt(message []byte, timestamp float64) error {
	o.mu.Lock()
	if o.destroyed {
		o.mu.Unlock()
		return ErrPortDestroyed
	}
	if !o.opened {
		o.mu.Unlock()
		return ErrPortClosed
	}
	o.mu.Unlock()

	return o.transport.Send(message, timestamp)
}

// sendChannelMessage frames a channel voice/mode message for a 1-based
// channel: status = messageType<<4 | (channel-1).
func (o *Output) sendChannelMessage(msgType byte, channel int, data []byte, timestamp float64) error {
	status := msgType<<4 | byte(channel-1)
	message := make([]byte, 0, 1+len(data))
	message = append(message, status)
	message = append(message, data...)
	return o.sendAt(message, timestamp)
}

// SendSysex frames and sends a system exclusive message. The manufacturer
// identifier must be 1 or 3 bytes; identifier and payload bytes must stay in
// [0,127]. The terminator 0xF7 is appended here.
func (o *Output) SendSysex(manufacturer []byte, data []byte, opts *SendOptions) (*Output, error) {
	if len(manufacturer) != 1 && len(manufacturer) != 3 {
		return o, newTypeError("manufacturer identifier", "must be 1 or 3 bytes")
	}
	for _, b := range manufacturer {
		if b > 127 {
			return o, newRangeError("manufacturer identifier byte", 0, 127, b)
		}
	}
	for _, b := range data {
		if b > 127 {
			return o, newRangeError("sysex data byte", 0, 127, b)
		}
	}

	message := make([]byte, 0, len(manufacturer)+len(data)+2)
	message = append(message, 0xF0)
	message = append(message, manufacturer...)
	message = append(message, data...)
	message = append(message, 0xF7)
	return o, o.sendAt(message, resolveTimestamp(o.clock, opts.time()))
}

// SendTimecodeQuarterFrame sends a MIDI timecode quarter frame message.
func (o *Output) SendTimecodeQuarterFrame(value int, opts *SendOptions) (*Output, error) {
	if value < 0 || value > 127 {
		return o, newRangeError("timecode value", 0, 127, value)
	}
	return o, o.sendAt([]byte{0xF1, byte(value)}, resolveTimestamp(o.clock, opts.time()))
}

// SendSongPosition sends a song position pointer, in MIDI beats (0-16383).
func (o *Output) SendSongPosition(beats int, opts *SendOptions) (*Output, error) {
	if beats < 0 || beats > 16383 {
		return o, newRangeError("song position", 0, 16383, beats)
	}
	msb := byte(beats >> 7 & 0x7F)
	lsb := byte(beats & 0x7F)
	return o, o.sendAt([]byte{0xF2, lsb, msb}, resolveTimestamp(o.clock, opts.time()))
}

// SetSong selects a song by its 1-based number (1-128).
func (o *Output) SetSong(song int, opts *SendOptions) (*Output, error) {
	if song < 1 || song > 128 {
		return o, newRangeError("song", 1, 128, song)
	}
	return o, o.sendAt([]byte{0xF3, byte(song - 1)}, resolveTimestamp(o.clock, opts.time()))
}

// SendTuneRequest asks analog synthesizers to tune their oscillators.
func (o *Output) SendTuneRequest(opts *SendOptions) (*Output, error) {
	return o, o.sendAt([]byte{0xF6}, resolveTimestamp(o.clock, opts.time()))
}

// SendClock sends a timing clock pulse (24 per quarter note).
func (o *Output) SendClock(opts *SendOptions) (*Output, error) {
	return o, o.sendAt([]byte{0xF8}, resolveTimestamp(o.clock, opts.time()))
}

// SendStart starts playback from the beginning of the song.
func (o *Output) SendStart(opts *SendOptions) (*Output, error) {
	return o, o.sendAt([]byte{0xFA}, resolveTimestamp(o.clock, opts.time()))
}

// SendContinue resumes playback from the current song position.
func (o *Output) SendContinue(opts *SendOptions) (*Output, error) {
	return o, o.sendAt([]byte{0xFB}, resolveTimestamp(o.clock, opts.time()))
}

// SendStop stops playback.
func (o *Output) SendStop(opts *SendOptions) (*Output, error) {
	return o, o.sendAt([]byte{0xFC}, resolveTimestamp(o.clock, opts.time()))
}

// SendActiveSensing sends an active sensing keep-alive.
func (o *Output) SendActiveSensing(opts *SendOptions) (*Output, error) {
	return o, o.sendAt([]byte{0xFE}, resolveTimestamp(o.clock, opts.time()))
}

// SendReset asks receivers to reset to their power-up state.
func (o *Output) SendReset(opts *SendOptions) (*Output, error) {
	return o, o.sendAt([]byte{0xFF}, resolveTimestamp(o.clock, opts.time()))
}

// forEachChannel runs one operation per selected channel, defaulting to all
// 16 channels. Validation happens before anything is sent, so a bad channel
// number aborts the whole call.
func (o *Output) forEachChannel(channels []int, fn func(*OutputChannel) error) error {
	nums, err := expandChannels(channels)
	if err != nil {
		return err
	}
	for _, n := range nums {
		ch, err := o.Channel(n)
		if err != nil {
			return err
		}
		if err := fn(ch); err != nil {
			return err
		}
	}
	return nil
}

// PlayNote plays the given note(s) on the selected channels (all 16 when
// none are given).
func (o *Output) PlayNote(note interface{}, opts *NoteOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.PlayNote(note, opts)
		return err
	})
}

// StopNote stops the given note(s) on the selected channels.
func (o *Output) StopNote(note interface{}, opts *NoteOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.StopNote(note, opts)
		return err
	})
}

// SendControlChange sends a control change on the selected channels.
func (o *Output) SendControlChange(controller interface{}, value int, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SendControlChange(controller, value, opts)
		return err
	})
}

// SendChannelMode sends a channel mode message on the selected channels.
func (o *Output) SendChannelMode(command interface{}, value int, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SendChannelMode(command, value, opts)
		return err
	})
}

// SendKeyAftertouch sends a key aftertouch on the selected channels.
func (o *Output) SendKeyAftertouch(note interface{}, pressure float64, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SendKeyAftertouch(note, pressure, opts)
		return err
	})
}

// SendChannelAftertouch sends a channel aftertouch on the selected channels.
func (o *Output) SendChannelAftertouch(pressure float64, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SendChannelAftertouch(pressure, opts)
		return err
	})
}

// SendProgramChange sends a program change (1-based, 1-128) on the selected
// channels.
func (o *Output) SendProgramChange(program int, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SendProgramChange(program, opts)
		return err
	})
}

// SetPitchBend sets the pitch bend on the selected channels.
func (o *Output) SetPitchBend(value float64, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SetPitchBend(value, opts)
		return err
	})
}

// SetPitchBendRange sets the pitch bend range on the selected channels.
func (o *Output) SetPitchBendRange(semitones, cents int, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SetPitchBendRange(semitones, cents, opts)
		return err
	})
}

// SetRegisteredParameter sets a registered parameter on the selected
// channels.
func (o *Output) SetRegisteredParameter(parameter interface{}, data []int, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SetRegisteredParameter(parameter, data, opts)
		return err
	})
}

// SetNonRegisteredParameter sets a non-registered parameter on the selected
// channels.
func (o *Output) SetNonRegisteredParameter(parameter [2]byte, data []int, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SetNonRegisteredParameter(parameter, data, opts)
		return err
	})
}

// IncrementRegisteredParameter increments a registered parameter on the
// selected channels.
func (o *Output) IncrementRegisteredParameter(parameter interface{}, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.IncrementRegisteredParameter(parameter, opts)
		return err
	})
}

// DecrementRegisteredParameter decrements a registered parameter on the
// selected channels.
func (o *Output) DecrementRegisteredParameter(parameter interface{}, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.DecrementRegisteredParameter(parameter, opts)
		return err
	})
}

// SetModulationRange sets the modulation depth range on the selected
// channels.
func (o *Output) SetModulationRange(semitones, cents int, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SetModulationRange(semitones, cents, opts)
		return err
	})
}

// SetMasterTuning sets the master tuning on the selected channels.
func (o *Output) SetMasterTuning(value float64, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SetMasterTuning(value, opts)
		return err
	})
}

// SetTuningProgram selects a tuning program (1-based, 1-128) on the selected
// channels.
func (o *Output) SetTuningProgram(program int, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SetTuningProgram(program, opts)
		return err
	})
}

// SetTuningBank selects a tuning bank (1-based, 1-128) on the selected
// channels.
func (o *Output) SetTuningBank(bank int, opts *SendOptions, channels ...int) (*Output, error) {
	return o, o.forEachChannel(channels, func(ch *OutputChannel) error {
		_, err := ch.SetTuningBank(bank, opts)
		return err
	})
}
