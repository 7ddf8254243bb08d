package webmidi

// Static MIDI 1.0 name tables. Lookups are case-sensitive exact matches and
// report misses through their second return value rather than an error; the
// operations that need a resolved value turn a miss into a TypeError.

// Channel voice/mode message types, keyed by name. The value is the high
// nibble of the status byte.
var channelMessages = map[string]byte{
	"noteoff":           0x8,
	"noteon":            0x9,
	"keyaftertouch":     0xA,
	"controlchange":     0xB,
	"channelmode":       0xB,
	"programchange":     0xC,
	"channelaftertouch": 0xD,
	"pitchbend":         0xE,
}

// System messages, keyed by name. The value is the full status byte.
var systemMessages = map[string]byte{
	"sysex":         0xF0,
	"timecode":      0xF1,
	"songposition":  0xF2,
	"songselect":    0xF3,
	"tunerequest":   0xF6,
	"sysexend":      0xF7,
	"clock":         0xF8,
	"start":         0xFA,
	"continue":      0xFB,
	"stop":          0xFC,
	"activesensing": 0xFE,
	"reset":         0xFF,
}

// Continuous controller numbers 0-119, keyed by name. Numbers in range but
// absent from this table are valid yet unnamed.
var controlChanges = map[string]byte{
	"bankselectcoarse":               0,
	"modulationwheelcoarse":          1,
	"breathcontrollercoarse":         2,
	"footcontrollercoarse":           4,
	"portamentotimecoarse":           5,
	"dataentrycoarse":                6,
	"volumecoarse":                   7,
	"balancecoarse":                  8,
	"pancoarse":                      10,
	"expressioncoarse":               11,
	"effectcontrol1coarse":           12,
	"effectcontrol2coarse":           13,
	"generalpurposeslider1":          16,
	"generalpurposeslider2":          17,
	"generalpurposeslider3":          18,
	"generalpurposeslider4":          19,
	"bankselectfine":                 32,
	"modulationwheelfine":            33,
	"breathcontrollerfine":           34,
	"footcontrollerfine":             36,
	"portamentotimefine":             37,
	"dataentryfine":                  38,
	"volumefine":                     39,
	"balancefine":                    40,
	"panfine":                        42,
	"expressionfine":                 43,
	"effectcontrol1fine":             44,
	"effectcontrol2fine":             45,
	"holdpedal":                      64,
	"portamento":                     65,
	"sustenutopedal":                 66,
	"softpedal":                      67,
	"legatopedal":                    68,
	"hold2pedal":                     69,
	"soundvariation":                 70,
	"resonance":                      71,
	"soundreleasetime":               72,
	"soundattacktime":                73,
	"brightness":                     74,
	"soundcontrol6":                  75,
	"soundcontrol7":                  76,
	"soundcontrol8":                  77,
	"soundcontrol9":                  78,
	"soundcontrol10":                 79,
	"generalpurposebutton1":          80,
	"generalpurposebutton2":          81,
	"generalpurposebutton3":          82,
	"generalpurposebutton4":          83,
	"reverblevel":                    91,
	"tremololevel":                   92,
	"choruslevel":                    93,
	"celestelevel":                   94,
	"phaserlevel":                    95,
	"databuttonincrement":            96,
	"databuttondecrement":            97,
	"nonregisteredparametercoarse":   99,
	"nonregisteredparameterfine":     98,
	"registeredparametercoarse":      101,
	"registeredparameterfine":        100,
}

// Channel mode controller numbers 120-127, keyed by name.
var channelModeMessages = map[string]byte{
	"allsoundoff":          120,
	"resetallcontrollers":  121,
	"localcontrol":         122,
	"allnotesoff":          123,
	"omnimodeoff":          124,
	"omnimodeon":           125,
	"monomodeon":           126,
	"polymodeon":           127,
}

// Registered parameter numbers, keyed by name. The value is the (MSB, LSB)
// pair selected through CC 101/100.
var registeredParameters = map[string][2]byte{
	"pitchbendrange":         {0x00, 0x00},
	"channelfinetuning":      {0x00, 0x01},
	"channelcoarsetuning":    {0x00, 0x02},
	"tuningprogram":          {0x00, 0x03},
	"tuningbank":             {0x00, 0x04},
	"modulationrange":        {0x00, 0x05},
	"azimuthangle":           {0x3D, 0x00},
	"elevationangle":         {0x3D, 0x01},
	"gain":                   {0x3D, 0x02},
	"distanceratio":          {0x3D, 0x03},
	"maximumdistance":        {0x3D, 0x04},
	"maximumdistancegain":    {0x3D, 0x05},
	"referencedistanceratio": {0x3D, 0x06},
	"panspreadangle":         {0x3D, 0x07},
	"rollangle":              {0x3D, 0x08},
}

// ChannelMessage resolves a channel voice/mode message name to the high
// nibble of its status byte.
func ChannelMessage(name string) (byte, bool) {
	v, ok := channelMessages[name]
	return v, ok
}

// SystemMessage resolves a system message name to its status byte.
func SystemMessage(name string) (byte, bool) {
	v, ok := systemMessages[name]
	return v, ok
}

// ControlChange resolves a controller name to its number (0-119).
func ControlChange(name string) (byte, bool) {
	v, ok := controlChanges[name]
	return v, ok
}

// ControlChangeName reports the well-known name of a controller number, or
// "" when the number is valid but unnamed.
func ControlChangeName(number byte) string {
	for name, n := range controlChanges {
		if n == number {
			return name
		}
	}
	return ""
}

// ChannelModeMessage resolves a channel mode name to its controller number
// (120-127).
func ChannelModeMessage(name string) (byte, bool) {
	v, ok := channelModeMessages[name]
	return v, ok
}

// ChannelModeName reports the name of a channel mode controller number, or
// "" when the number is outside 120-127.
func ChannelModeName(number byte) string {
	for name, n := range channelModeMessages {
		if n == number {
			return name
		}
	}
	return ""
}

// RegisteredParameter resolves a registered parameter name to its (MSB, LSB)
// selection pair.
func RegisteredParameter(name string) ([2]byte, bool) {
	v, ok := registeredParameters[name]
	return v, ok
}
