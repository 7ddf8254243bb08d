package webmidi

// Controller numbers that drive the RPN/NRPN accumulation protocol.
const (
	ccDataEntryMSB    = 6
	ccDataEntryLSB    = 38
	ccDataIncrement   = 96
	ccDataDecrement   = 97
	ccNrpnLSB         = 98
	ccNrpnMSB         = 99
	ccRpnLSB          = 100
	ccRpnMSB          = 101
	paramNullSentinel = 0x7F
)

// paramState tracks the per-channel RPN/NRPN accumulation protocol.
type paramState int

const (
	paramIdle paramState = iota
	paramSelected
	paramAwaitingFine
)

type paramKind int

const (
	kindRPN paramKind = iota
	kindNRPN
)

// InputChannel decodes the channel voice and mode messages arriving on one
// of the 16 MIDI channels of an Input, and dispatches them as named events.
type InputChannel struct {
	number   int
	input    *Input
	registry *listenerRegistry

	nrpnEnabled  bool
	octaveOffset int

	// RPN/NRPN accumulation state.
	state      paramState
	kind       paramKind
	pendingMSB int // -1 when no selection MSB is buffered.
	paramMSB   byte
	paramLSB   byte
	dataMSB    byte
}

func newInputChannel(input *Input, number int, nrpnEnabled bool, octaveOffset int) *InputChannel {
	return &InputChannel{
		number:       number,
		input:        input,
		registry:     newListenerRegistry(),
		nrpnEnabled:  nrpnEnabled,
		octaveOffset: octaveOffset,
		pendingMSB:   -1,
	}
}

// Number reports the 1-based channel number, or 0 once destroyed.
func (c *InputChannel) Number() int { return c.number }

// Input reports the owning port, or nil once destroyed.
func (c *InputChannel) Input() *Input { return c.input }

// OctaveOffset reports the offset applied to note name resolution.
func (c *InputChannel) OctaveOffset() int { return c.octaveOffset }

// SetOctaveOffset adjusts the offset applied to note name resolution.
func (c *InputChannel) SetOctaveOffset(offset int) { c.octaveOffset = offset }

// NrpnEventsEnabled reports whether RPN/NRPN runs are assembled into
// parameter events instead of being surfaced as plain control changes.
func (c *InputChannel) NrpnEventsEnabled() bool { return c.nrpnEnabled }

// SetNrpnEventsEnabled toggles RPN/NRPN assembly. Disabling resets any
// in-flight selection.
func (c *InputChannel) SetNrpnEventsEnabled(enabled bool) {
	c.nrpnEnabled = enabled
	if !enabled {
		c.resetParamState()
	}
}

// AddListener registers a listener for the named event on this channel.
func (c *InputChannel) AddListener(eventType string, fn ListenerFunc) *Listener {
	if c.registry == nil {
		return nil
	}
	return c.registry.add(eventType, fn)
}

// RemoveListener unregisters a previously added listener.
func (c *InputChannel) RemoveListener(l *Listener) {
	if c.registry == nil {
		return
	}
	c.registry.remove(l)
}

// HasListener reports whether any listener is registered for the named
// event, or for any event when eventType is "".
func (c *InputChannel) HasListener(eventType string) bool {
	if c.registry == nil {
		return false
	}
	return c.registry.has(eventType)
}

// Destroy clears the channel's listeners and releases its references. Safe
// to call more than once.
func (c *InputChannel) Destroy() {
	if c.registry != nil {
		c.registry.removeAll("")
	}
	c.resetParamState()
	c.number = 0
	c.input = nil
	c.registry = nil
}

func (c *InputChannel) resetParamState() {
	c.state = paramIdle
	c.pendingMSB = -1
	c.paramMSB = 0
	c.paramLSB = 0
	c.dataMSB = 0
}

func (c *InputChannel) emit(e Event) {
	if c.registry == nil {
		return
	}
	c.registry.emit(e)
}

func (c *InputChannel) noteFromNumber(number uint8) Note {
	n := NewNote(number)
	n.Octave += c.octaveOffset
	return n
}

// parse classifies one inbound channel voice/mode message and emits the
// corresponding named event. Inbound bytes are trusted to be wire-valid;
// anything unclassifiable is dropped, never raised.
func (c *InputChannel) parse(data []byte, timestamp float64) {
	if len(data) < 2 {
		return
	}

	msgType := data[0] >> 4
	data1 := data[1]
	var data2 byte
	if len(data) > 2 {
		data2 = data[2]
	}

	base := Event{
		Timestamp: timestamp,
		Data:      data,
		Target:    c,
		Port:      c.input,
	}

	switch msgType {
	case 0x8: // noteoff
		base.Type = "noteoff"
		base.Note = c.noteFromNumber(data1)
		base.RawValue = data2
		base.Value = float64(data2) / 127
		c.emit(base)

	case 0x9:
		// A zero-velocity note-on is surfaced as noteon with value 0, not
		// silently reinterpreted as noteoff.
		base.Type = "noteon"
		base.Note = c.noteFromNumber(data1)
		base.RawValue = data2
		base.Value = float64(data2) / 127
		c.emit(base)

	case 0xA: // keyaftertouch
		base.Type = "keyaftertouch"
		base.Note = c.noteFromNumber(data1)
		base.RawValue = data2
		base.Value = float64(data2) / 127
		c.emit(base)

	case 0xB:
		if data1 >= 120 {
			c.parseChannelMode(base, data1, data2)
			return
		}
		if c.nrpnEnabled && c.feedParamStateMachine(base, data1, data2) {
			return
		}
		base.Type = "controlchange"
		base.Controller = Controller{Number: data1, Name: ControlChangeName(data1)}
		base.RawValue = data2
		base.Value = float64(data2)
		c.emit(base)

	case 0xC: // programchange: surfaced 1-based to match hardware numbering
		base.Type = "programchange"
		base.RawValue = data1
		base.Value = float64(data1) + 1
		c.emit(base)

	case 0xD: // channelaftertouch
		base.Type = "channelaftertouch"
		base.RawValue = data1
		base.Value = float64(data1) / 127
		c.emit(base)

	case 0xE: // pitchbend
		level := int(data2)<<7 | int(data1)
		base.Type = "pitchbend"
		base.Value = (float64(level) - 8192) / 8192
		base.RawValue = data2
		base.RawPair = [2]uint8{data1, data2}
		c.emit(base)

	default:
		if c.input != nil {
			c.input.logger.Debug("unclassified channel message dropped",
				c.input.logger.Field().Uint8("status", data[0]))
		}
	}
}

// parseChannelMode handles controller numbers 120-127, which are reserved
// for channel mode messages and never surfaced as plain control changes.
func (c *InputChannel) parseChannelMode(base Event, controller, value byte) {
	base.Controller = Controller{Number: controller, Name: ChannelModeName(controller)}
	base.RawValue = value
	base.Value = float64(value)

	switch controller {
	case 120:
		base.Type = "allsoundoff"
	case 121:
		base.Type = "resetallcontrollers"
	case 122:
		base.Type = "localcontrol"
		base.Bool = value != 0
	case 123:
		base.Type = "allnotesoff"
	case 124:
		base.Type = "omnimode"
		base.Bool = false
	case 125:
		base.Type = "omnimode"
		base.Bool = true
	case 126:
		base.Type = "monomode"
		base.Bool = true
	case 127:
		base.Type = "monomode"
		base.Bool = false
	}
	c.emit(base)
}

// feedParamStateMachine advances the RPN/NRPN accumulation protocol with one
// control change. It reports whether the message was consumed; messages that
// do not fit the current state fall through to plain controlchange handling.
func (c *InputChannel) feedParamStateMachine(base Event, controller, value byte) bool {
	switch controller {
	case ccRpnMSB, ccNrpnMSB:
		if controller == ccRpnMSB {
			c.kind = kindRPN
		} else {
			c.kind = kindNRPN
		}
		c.pendingMSB = int(value)
		return true

	case ccRpnLSB, ccNrpnLSB:
		if c.pendingMSB < 0 {
			return false
		}
		wantRPN := controller == ccRpnLSB
		if wantRPN != (c.kind == kindRPN) {
			c.resetParamState()
			return false
		}
		if byte(c.pendingMSB) == paramNullSentinel && value == paramNullSentinel {
			// Null selection: deselect, no event.
			c.resetParamState()
			return true
		}
		c.paramMSB = byte(c.pendingMSB)
		c.paramLSB = value
		c.pendingMSB = -1
		c.state = paramSelected
		return true

	case ccDataEntryMSB:
		if c.state == paramIdle {
			return false
		}
		c.dataMSB = value
		c.state = paramAwaitingFine
		c.emitParamEvent(base, float64(value), value)
		return true

	case ccDataEntryLSB:
		if c.state != paramAwaitingFine {
			return false
		}
		level := int(c.dataMSB)<<7 | int(value)
		c.state = paramSelected
		c.emitParamEvent(base, float64(level), value)
		return true

	case ccDataIncrement:
		if c.state == paramIdle {
			return false
		}
		c.emitParamEvent(base, 1, value)
		return true

	case ccDataDecrement:
		if c.state == paramIdle {
			return false
		}
		c.emitParamEvent(base, -1, value)
		return true
	}

	return false
}

func (c *InputChannel) emitParamEvent(base Event, value float64, raw byte) {
	if c.kind == kindRPN {
		base.Type = "rpn"
		base.ParameterName = registeredParameterName(c.paramMSB, c.paramLSB)
	} else {
		base.Type = "nrpn"
	}
	base.Parameter = [2]byte{c.paramMSB, c.paramLSB}
	base.Value = value
	base.RawValue = raw
	c.emit(base)
}

// registeredParameterName reports the well-known name of a registered
// parameter pair, or "" when the pair is unnamed.
func registeredParameterName(msb, lsb byte) string {
	for name, pair := range registeredParameters {
		if pair[0] == msb && pair[1] == lsb {
			return name
		}
	}
	return ""
}
