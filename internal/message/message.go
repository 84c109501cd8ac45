package message

import "fmt"

// Message identifiers seen on the wire. The same ID is used for a
// request and the message that answers it; "set" style requests are
// instead answered by IDUniversalAcknowledgement carrying the
// request's ID as its redirect ID.
const (
	IDDebugSKU                   = 0x22
	IDDebugData                  = 0x26
	IDDebugSerialNumber          = 0x29
	IDUsageReport                = 0x40
	IDMeteringReport             = 0x41
	IDUniversalAcknowledgement   = 0x42
	IDIgnored4B                  = 0x4B
	IDStatusUpdated              = 0x60
	IDExtendedStatusUpdated      = 0x61
	IDVersionInfo                = 0x63
	IDAmbientDuringCallNoti      = 0x6D
	IDNoiseControlsUpdate        = 0x77
	IDSetNoiseControls           = 0x78
	IDSetEqualizerType           = 0x86
	IDLockTouchpad               = 0x90
	IDSetTouchpadOption          = 0x92
	IDTouchPadOther              = 0x93
	IDSetNoiseReduction          = 0x98
	IDVoiceWakeupListeningStatus = 0x9C
	IDFindMyEarbudsStart         = 0xA0
	IDFindMyEarbudsStop          = 0xA1
	IDVoiceNotiStop              = 0xA5
	IDMuteEarbud                 = 0xA2
	IDUpdateTime                 = 0xA7
	IDFotaResult                 = 0xB9
	IDSpatialSensorData          = 0xC2
	IDSpatialSensorControl       = 0xC3
)

// Message is a decoded frame body. The concrete type depends on the
// message ID the frame carried.
type Message interface {
	// ID returns the wire message ID this message was decoded from.
	ID() byte
	String() string
}

// DecodeError reports a frame body that violates the layout contract
// for its message ID: too short for the required fields, or carrying
// trailing bytes after all known fields were consumed.
type DecodeError struct {
	MsgID  byte
	Len    int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("message 0x%02X (%d bytes): %s", e.MsgID, e.Len, e.Reason)
}

func decodeErrf(id byte, n int, format string, args ...interface{}) error {
	return &DecodeError{MsgID: id, Len: n, Reason: fmt.Sprintf(format, args...)}
}

type decoderFunc func(id byte, body []byte) (Message, error)

// decoders maps every wire message ID this client understands to its
// decoder. IDs absent from the table decode to nil (no known message)
// rather than an error, so their frames are still delivered raw.
var decoders = map[byte]decoderFunc{
	IDDebugSKU:                   decodeStringPair,
	IDDebugSerialNumber:          decodeStringPair,
	IDUsageReport:                decodeUsageReport,
	IDMeteringReport:             decodeMeteringReport,
	IDUniversalAcknowledgement:   decodeUniversalAcknowledgement,
	IDStatusUpdated:              decodeStatusUpdated,
	IDExtendedStatusUpdated:      decodeExtendedStatusUpdated,
	IDVersionInfo:                decodeVersionInfo,
	IDNoiseControlsUpdate:        decodeNoiseControlsUpdate,
	IDTouchPadOther:              decodeTouchPadOther,
	IDVoiceWakeupListeningStatus: decodeVoiceWakeupListeningStatus,
	IDFotaResult:                 decodeFotaResult,

	// Known to exist on the wire but not structurally decoded; passed
	// through as raw bytes.
	IDIgnored4B:             decodeSimple,
	IDAmbientDuringCallNoti: decodeSimple,
	IDFindMyEarbudsStop:     decodeSimple,
	IDVoiceNotiStop:         decodeSimple,
	IDSpatialSensorData:     decodeSimple,
	IDSpatialSensorControl:  decodeSimple,
}

// Decode parses a frame body into a typed message based on its ID.
//
// A nil Message with a nil error means the ID has no decoder; the
// frame is still valid and should be delivered with its raw body. A
// non-nil error is a contract violation (short body or trailing
// bytes) and the frame should be dropped and logged.
func Decode(id byte, body []byte) (Message, error) {
	dec, ok := decoders[id]
	if !ok {
		return nil, nil
	}
	return dec(id, body)
}
