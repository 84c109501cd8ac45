package message

import "fmt"

// StringPair carries two ASCII strings of equal length, one per
// earbud. Used by the debug SKU (0x22) and debug serial number (0x29)
// replies.
type StringPair struct {
	id    byte
	Left  string
	Right string
}

func (m *StringPair) ID() byte { return m.id }

func (m *StringPair) String() string {
	return fmt.Sprintf("StringPair{left=%q, right=%q}", m.Left, m.Right)
}

func decodeStringPair(id byte, body []byte) (Message, error) {
	if len(body)%2 == 1 {
		return nil, decodeErrf(id, len(body), "expected an even number of bytes for a string pair")
	}
	n := len(body) / 2
	return &StringPair{id: id, Left: string(body[:n]), Right: string(body[n:])}, nil
}

// VersionInfo (0x63) reports hardware and firmware versions for both
// earbuds. The model number (SM-R190) is implied.
type VersionInfo struct {
	RightHWVersion      uint8
	LeftHWVersion       uint8
	LeftSWVersionFlags  uint8
	LeftSWVersionDate   uint8
	LeftSWVersionVer    uint8
	RightSWVersionFlags uint8
	RightSWVersionDate  uint8
	RightSWVersionVer   uint8
	LeftTouchFWVersion  uint8
	RightTouchFWVersion uint8
}

func (m *VersionInfo) ID() byte { return IDVersionInfo }

func (m *VersionInfo) String() string {
	return fmt.Sprintf("VersionInfo{hw=%d/%d, sw=%d.%d.%d/%d.%d.%d, touch=%d/%d}",
		m.LeftHWVersion, m.RightHWVersion,
		m.LeftSWVersionFlags, m.LeftSWVersionDate, m.LeftSWVersionVer,
		m.RightSWVersionFlags, m.RightSWVersionDate, m.RightSWVersionVer,
		m.LeftTouchFWVersion, m.RightTouchFWVersion)
}

func decodeVersionInfo(id byte, body []byte) (Message, error) {
	if len(body) != 10 {
		return nil, decodeErrf(id, len(body), "expected 10 bytes for version info")
	}
	return &VersionInfo{
		RightHWVersion:      body[0],
		LeftHWVersion:       body[1],
		LeftSWVersionFlags:  body[2],
		LeftSWVersionDate:   body[3],
		LeftSWVersionVer:    body[4],
		RightSWVersionFlags: body[5],
		RightSWVersionDate:  body[6],
		RightSWVersionVer:   body[7],
		LeftTouchFWVersion:  body[8],
		RightTouchFWVersion: body[9],
	}, nil
}

// NoiseControlsUpdate (0x77) is sent when the noise reduction mode
// changes, e.g. in response to a legacy 0x98 set request.
type NoiseControlsUpdate struct {
	NoiseControls uint8
	WearingState  uint8
}

func (m *NoiseControlsUpdate) ID() byte { return IDNoiseControlsUpdate }

func (m *NoiseControlsUpdate) String() string {
	return fmt.Sprintf("NoiseControlsUpdate{mode=%d, wearing=%d}", m.NoiseControls, m.WearingState)
}

func decodeNoiseControlsUpdate(id byte, body []byte) (Message, error) {
	if len(body) != 2 {
		return nil, decodeErrf(id, len(body), "expected 2 bytes for noise controls update")
	}
	return &NoiseControlsUpdate{NoiseControls: body[0], WearingState: body[1]}, nil
}

// VoiceWakeupListeningStatus (0x9C) reports whether the earbuds are
// currently listening for the wake-up phrase.
type VoiceWakeupListeningStatus struct {
	Listening bool
}

func (m *VoiceWakeupListeningStatus) ID() byte { return IDVoiceWakeupListeningStatus }

func (m *VoiceWakeupListeningStatus) String() string {
	return fmt.Sprintf("VoiceWakeupListeningStatus{listening=%v}", m.Listening)
}

func decodeVoiceWakeupListeningStatus(id byte, body []byte) (Message, error) {
	if len(body) != 1 {
		return nil, decodeErrf(id, len(body), "expected 1 byte for voice wakeup listening status")
	}
	return &VoiceWakeupListeningStatus{Listening: body[0] != 0}, nil
}

// FotaResult (0xB9) reports the outcome of a firmware-over-the-air
// update.
type FotaResult struct {
	Result    uint8
	ErrorCode uint8
}

func (m *FotaResult) ID() byte { return IDFotaResult }

func (m *FotaResult) String() string {
	return fmt.Sprintf("FotaResult{result=%d, error=%d}", m.Result, m.ErrorCode)
}

func decodeFotaResult(id byte, body []byte) (Message, error) {
	if len(body) != 2 {
		return nil, decodeErrf(id, len(body), "expected 2 bytes for fota result")
	}
	return &FotaResult{Result: body[0], ErrorCode: body[1]}, nil
}

// TouchPadOther (0x93) is sent when the user touch-and-holds an earbud
// configured with one of the "other" options. 4 is hard-coded as
// Spotify in the vendor app; 5 and 6 are configurable.
type TouchPadOther struct {
	OtherOption uint8
}

func (m *TouchPadOther) ID() byte { return IDTouchPadOther }

func (m *TouchPadOther) String() string {
	return fmt.Sprintf("TouchPadOther{option=%d}", m.OtherOption)
}

func decodeTouchPadOther(id byte, body []byte) (Message, error) {
	if len(body) != 1 {
		return nil, decodeErrf(id, len(body), "expected 1 byte for touchpad other option")
	}
	return &TouchPadOther{OtherOption: body[0]}, nil
}

// Simple is a pass-through for message IDs whose structure is known to
// exist on the wire but is not decoded by this client.
type Simple struct {
	id   byte
	Data []byte
}

func (m *Simple) ID() byte { return m.id }

func (m *Simple) String() string {
	return fmt.Sprintf("Simple{id=0x%02X, len=%d}", m.id, len(m.Data))
}

func decodeSimple(id byte, body []byte) (Message, error) {
	data := make([]byte, len(body))
	copy(data, body)
	return &Simple{id: id, Data: data}, nil
}
