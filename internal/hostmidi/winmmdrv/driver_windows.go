//go:build windows
// +build windows

package winmmdrv

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/oceansize/webmidi/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles.
type (
	HMIDIIN  windows.Handle
	HMIDIOUT windows.Handle
)

// Constants for callback flags.
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI input messages.
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

const mhdrDone = 0x00000001

// Structs representing MIDI device capabilities.
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

type midiHdr struct {
	lpData          uintptr
	dwBufferLength  uint32
	dwBytesRecorded uint32
	dwUser          uintptr
	dwFlags         uint32
	lpNext          uintptr
	reserved        uintptr
	dwOffset        uint32
	dwReserved      [8]uintptr
}

// Load the winmm.dll library and required functions.
var (
	winmm                     = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs      = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps      = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen            = winmm.NewProc("midiInOpen")
	procMidiInStart           = winmm.NewProc("midiInStart")
	procMidiInStop            = winmm.NewProc("midiInStop")
	procMidiInClose           = winmm.NewProc("midiInClose")
	procMidiOutGetNumDevs     = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps     = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen           = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg       = winmm.NewProc("midiOutShortMsg")
	procMidiOutLongMsg        = winmm.NewProc("midiOutLongMsg")
	procMidiOutPrepareHdr     = winmm.NewProc("midiOutPrepareHeader")
	procMidiOutUnprepareHdr   = winmm.NewProc("midiOutUnprepareHeader")
	procMidiOutClose          = winmm.NewProc("midiOutClose")
)

// Error definitions for device discovery.
var (
	ErrNoMIDIDevices = errors.New("no MIDI devices found")
	ErrPortNotFound  = errors.New("named MIDI port not found")
)

// transport adapts one winmm device to the Transport contract.
type transport struct {
	logger contracts.Logger
	info   contracts.PortInfo
	device uint32

	mu        sync.Mutex
	inHandle  HMIDIIN
	outHandle HMIDIOUT
	callback  uintptr
	receiver  contracts.Receiver
	stateFn   contracts.StateHandler
	opened    bool
}

// New binds the first winmm device of the requested direction, or the one
// whose name contains opts.PortName (case-insensitive).
func New(portType contracts.PortType, opts *contracts.ClientOptions) (contracts.Transport, error) {
	t := &transport{logger: opts.Logger}

	if portType == contracts.PortTypeInput {
		r0, _, _ := procMidiInGetNumDevs.Call()
		numDevices := uint32(r0)
		if numDevices == 0 {
			opts.Logger.Warn(ErrNoMIDIDevices.Error())
			return nil, ErrNoMIDIDevices
		}
		found := false
		for i := uint32(0); i < numDevices; i++ {
			var caps midiInCaps
			r1, _, _ := procMidiInGetDevCaps.Call(
				uintptr(i),
				uintptr(unsafe.Pointer(&caps)),
				unsafe.Sizeof(caps),
			)
			if r1 != 0 {
				continue
			}
			name := windows.UTF16ToString(caps.szPname[:])
			if matches(name, opts.PortName) {
				t.device = i
				t.info = contracts.PortInfo{
					ID:           fmt.Sprintf("winmm-input-%d", i),
					Name:         name,
					Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
					Type:         portType,
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrPortNotFound, opts.PortName)
		}
	} else {
		r0, _, _ := procMidiOutGetNumDevs.Call()
		numDevices := uint32(r0)
		if numDevices == 0 {
			opts.Logger.Warn(ErrNoMIDIDevices.Error())
			return nil, ErrNoMIDIDevices
		}
		found := false
		for i := uint32(0); i < numDevices; i++ {
			var caps midiOutCaps
			r1, _, _ := procMidiOutGetDevCaps.Call(
				uintptr(i),
				uintptr(unsafe.Pointer(&caps)),
				unsafe.Sizeof(caps),
			)
			if r1 != 0 {
				continue
			}
			name := windows.UTF16ToString(caps.szPname[:])
			if matches(name, opts.PortName) {
				t.device = i
				t.info = contracts.PortInfo{
					ID:           fmt.Sprintf("winmm-output-%d", i),
					Name:         name,
					Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
					Type:         portType,
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrPortNotFound, opts.PortName)
		}
	}

	opts.Logger.Info("winmm transport bound",
		opts.Logger.Field().String("port", t.info.Name))
	return t, nil
}

func matches(name, want string) bool {
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}

func (t *transport) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.opened {
		return nil
	}

	if t.info.Type == contracts.PortTypeInput {
		t.callback = windows.NewCallback(midiInCallback)
		fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS

		r1, _, err := procMidiInOpen.Call(
			uintptr(unsafe.Pointer(&t.inHandle)),
			uintptr(t.device),
			t.callback,
			uintptr(unsafe.Pointer(t)),
			uintptr(fdwOpen),
		)
		if r1 != 0 {
			return fmt.Errorf("failed to open MIDI input device %d: %v", t.device, err)
		}
		r1, _, err = procMidiInStart.Call(uintptr(t.inHandle))
		if r1 != 0 {
			return fmt.Errorf("failed to start MIDI capture: %v", err)
		}
	} else {
		r1, _, err := procMidiOutOpen.Call(
			uintptr(unsafe.Pointer(&t.outHandle)),
			uintptr(t.device),
			0,
			0,
			0,
		)
		if r1 != 0 {
			return fmt.Errorf("failed to open MIDI output device %d: %v", t.device, err)
		}
	}

	t.opened = true
	t.notify(contracts.PortConnected)
	return nil
}

// midiInCallback processes incoming MIDI messages.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	t := (*transport)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case MIM_OPEN:
		t.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		t.logger.Debug("MIDI device closed")
	case MIM_DATA:
		status := byte(dwParam1 & 0xFF)
		data1 := byte((dwParam1 >> 8) & 0xFF)
		data2 := byte((dwParam1 >> 16) & 0xFF)

		t.mu.Lock()
		receiver := t.receiver
		t.mu.Unlock()
		if receiver == nil {
			return 0
		}

		data := packMessage(status, data1, data2)
		receiver(data, float64(time.Now().UnixNano())/float64(time.Millisecond))
	case MIM_ERROR, MIM_LONGERROR:
		t.logger.Error(fmt.Sprintf("MIDI error: msg=0x%X", wMsg))
	case MIM_MOREDATA:
		t.logger.Debug("Received MIM_MOREDATA message; ignored")
	default:
		t.logger.Warn(fmt.Sprintf("Unknown MIDI message: 0x%X", wMsg))
	}

	return 0
}

// packMessage trims a packed winmm short message to the byte count its
// status requires.
func packMessage(status, data1, data2 byte) []byte {
	if status < 0xF0 {
		switch status >> 4 {
		case 0xC, 0xD:
			return []byte{status, data1}
		default:
			return []byte{status, data1, data2}
		}
	}
	switch status {
	case 0xF1, 0xF3:
		return []byte{status, data1}
	case 0xF2:
		return []byte{status, data1, data2}
	default:
		return []byte{status}
	}
}

func (t *transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.opened {
		return nil
	}

	if t.info.Type == contracts.PortTypeInput {
		if r1, _, err := procMidiInStop.Call(uintptr(t.inHandle)); r1 != 0 {
			return fmt.Errorf("failed to stop MIDI capture: %v", err)
		}
		if r1, _, err := procMidiInClose.Call(uintptr(t.inHandle)); r1 != 0 {
			return fmt.Errorf("failed to close MIDI input device: %v", err)
		}
		t.inHandle = 0
	} else {
		if r1, _, err := procMidiOutClose.Call(uintptr(t.outHandle)); r1 != 0 {
			return fmt.Errorf("failed to close MIDI output device: %v", err)
		}
		t.outHandle = 0
	}

	t.opened = false
	t.notify(contracts.PortDisconnected)
	return nil
}

// Send forwards one message immediately. winmm has no scheduling on the
// short message path, so the timestamp is accepted and dropped. Messages of
// up to three bytes use midiOutShortMsg; anything longer (sysex) goes
// through a prepared header and midiOutLongMsg.
func (t *transport) Send(data []byte, _ float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.opened || t.outHandle == 0 {
		return errors.New("port is not open for sending")
	}

	if len(data) <= 3 {
		var packed uint32
		for i, b := range data {
			packed |= uint32(b) << (8 * i)
		}
		if r1, _, err := procMidiOutShortMsg.Call(uintptr(t.outHandle), uintptr(packed)); r1 != 0 {
			return fmt.Errorf("failed to send MIDI message: %v", err)
		}
		return nil
	}

	hdr := midiHdr{
		lpData:         uintptr(unsafe.Pointer(&data[0])),
		dwBufferLength: uint32(len(data)),
	}
	if r1, _, err := procMidiOutPrepareHdr.Call(uintptr(t.outHandle), uintptr(unsafe.Pointer(&hdr)), unsafe.Sizeof(hdr)); r1 != 0 {
		return fmt.Errorf("failed to prepare sysex header: %v", err)
	}
	defer procMidiOutUnprepareHdr.Call(uintptr(t.outHandle), uintptr(unsafe.Pointer(&hdr)), unsafe.Sizeof(hdr))

	if r1, _, err := procMidiOutLongMsg.Call(uintptr(t.outHandle), uintptr(unsafe.Pointer(&hdr)), unsafe.Sizeof(hdr)); r1 != 0 {
		return fmt.Errorf("failed to send sysex message: %v", err)
	}
	for hdr.dwFlags&mhdrDone == 0 {
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (t *transport) SetReceiver(fn contracts.Receiver) {
	t.mu.Lock()
	t.receiver = fn
	t.mu.Unlock()
}

func (t *transport) OnStateChange(fn contracts.StateHandler) {
	t.mu.Lock()
	t.stateFn = fn
	t.mu.Unlock()
}

func (t *transport) Info() contracts.PortInfo { return t.info }

func (t *transport) State() contracts.PortState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.opened {
		return contracts.PortConnected
	}
	return contracts.PortDisconnected
}

func (t *transport) notify(state contracts.PortState) {
	fn := t.stateFn
	if fn != nil {
		go fn(state)
	}
}
