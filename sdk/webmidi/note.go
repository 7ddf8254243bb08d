package webmidi

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Note is the logical representation of a single MIDI note.
type Note struct {
	Number uint8  // MIDI note number, 0-127.
	Name   string // Pitch class with accidental, e.g. "C", "G#", "Bb".
	Octave int    // Octave in the -1..9 range, with C-1 = number 0.
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var noteNameRe = regexp.MustCompile(`^([CDEFGAB])(#{0,2}|b{0,2})(-?\d+)$`)

var semitones = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

// NewNote builds a Note from a MIDI note number.
func NewNote(number uint8) Note {
	return Note{
		Number: number,
		Name:   noteNames[number%12],
		Octave: int(number/12) - 1,
	}
}

// ParseNoteName converts a note name such as "C3", "G#4" or "Bb-1" to its
// MIDI note number.
func ParseNoteName(name string) (uint8, error) {
	m := noteNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, newTypeError("note name", name)
	}

	semitone := semitones[m[1]]
	if strings.HasPrefix(m[2], "#") {
		semitone += len(m[2])
	} else {
		semitone -= len(m[2])
	}

	octave, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, newTypeError("note name", name)
	}

	number := (octave+1)*12 + semitone
	if number < 0 || number > 127 {
		return 0, newRangeError("note number", 0, 127, number)
	}
	return uint8(number), nil
}

// ConvertNoteToNumber resolves a single note specifier to a MIDI note
// number. It accepts an integer (0-127), an integral float, a note name
// string, or a Note.
func ConvertNoteToNumber(input interface{}) (uint8, error) {
	switch v := input.(type) {
	case int:
		return noteNumberFromInt(v)
	case int8:
		return noteNumberFromInt(int(v))
	case int16:
		return noteNumberFromInt(int(v))
	case int32:
		return noteNumberFromInt(int(v))
	case int64:
		return noteNumberFromInt(int(v))
	case uint8:
		if v > 127 {
			return 0, newRangeError("note number", 0, 127, v)
		}
		return v, nil
	case float32:
		return noteNumberFromFloat(float64(v))
	case float64:
		return noteNumberFromFloat(v)
	case string:
		return ParseNoteName(v)
	case Note:
		if v.Number > 127 {
			return 0, newRangeError("note number", 0, 127, v.Number)
		}
		return v.Number, nil
	case *Note:
		if v == nil {
			return 0, newTypeError("note", "nil note")
		}
		return ConvertNoteToNumber(*v)
	default:
		return 0, newTypeError("note", "unsupported note specifier")
	}
}

func noteNumberFromInt(n int) (uint8, error) {
	if n < 0 || n > 127 {
		return 0, newRangeError("note number", 0, 127, n)
	}
	return uint8(n), nil
}

func noteNumberFromFloat(f float64) (uint8, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, newTypeError("note", "note number must be an integer")
	}
	return noteNumberFromInt(int(f))
}

// expandNotes resolves a note specifier that may be a single value or a
// slice of values into the list of note numbers it designates.
func expandNotes(input interface{}) ([]uint8, error) {
	switch v := input.(type) {
	case nil:
		return nil, newTypeError("note", "missing note specifier")
	case []interface{}:
		out := make([]uint8, 0, len(v))
		for _, item := range v {
			n, err := ConvertNoteToNumber(item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case []int:
		out := make([]uint8, 0, len(v))
		for _, item := range v {
			n, err := noteNumberFromInt(item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case []uint8:
		out := make([]uint8, 0, len(v))
		for _, item := range v {
			n, err := ConvertNoteToNumber(item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case []string:
		out := make([]uint8, 0, len(v))
		for _, item := range v {
			n, err := ParseNoteName(item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	default:
		n, err := ConvertNoteToNumber(input)
		if err != nil {
			return nil, err
		}
		return []uint8{n}, nil
	}
}
