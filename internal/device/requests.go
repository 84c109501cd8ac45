package device

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/galaxybuds/budspro/internal/message"
	"github.com/galaxybuds/budspro/internal/protocol"
)

// Outbound request builders, one per catalog entry. Builders that take
// ranged values validate them before any byte is built, so a bad value
// never reaches the wire.

// DebugSKURequest asks for the product code of both earbuds.
func DebugSKURequest() *protocol.Frame {
	return protocol.MakeFrame(message.IDDebugSKU, nil, false, false)
}

// DebugDataRequest asks for the debug data dump.
func DebugDataRequest() *protocol.Frame {
	return protocol.MakeFrame(message.IDDebugData, nil, false, false)
}

// DebugSerialNumberRequest asks for the serial number of both earbuds.
func DebugSerialNumberRequest() *protocol.Frame {
	return protocol.MakeFrame(message.IDDebugSerialNumber, nil, false, false)
}

// UsageReportResponse acknowledges a received usage report with a
// response code. This is the only builder that sets the response flag.
func UsageReportResponse(code byte) *protocol.Frame {
	return protocol.MakeFrame(message.IDUsageReport, []byte{code}, true, false)
}

// NoiseControlsRequest sets the noise reduction mode.
func NoiseControlsRequest(v NoiseControls) (*protocol.Frame, error) {
	if v > NoiseControlsAmbientSounds {
		return nil, fmt.Errorf("noise controls mode out of range [0, 2]: %d", v)
	}
	return protocol.MakeFrame(message.IDSetNoiseControls, []byte{byte(v)}, false, false), nil
}

// SetEqualizerTypeRequest sets the equalizer preset.
func SetEqualizerTypeRequest(v EqualizerType) (*protocol.Frame, error) {
	if v > EqualizerTrebleBoost {
		return nil, fmt.Errorf("equalizer type out of range [0, 5]: %d", v)
	}
	return protocol.MakeFrame(message.IDSetEqualizerType, []byte{byte(v)}, false, false), nil
}

// LockTouchpadRequest locks or unlocks the touchpads.
func LockTouchpadRequest(locked bool) *protocol.Frame {
	return protocol.MakeFrame(message.IDLockTouchpad, []byte{btob(locked)}, false, false)
}

// SetTouchpadOptionRequest assigns the touch-and-hold action of each
// earbud.
func SetTouchpadOptionRequest(left, right TouchpadOption) (*protocol.Frame, error) {
	if left < TouchpadAnc || left > TouchpadApp6 {
		return nil, fmt.Errorf("left touchpad option out of range [2, 6]: %d", left)
	}
	if right < TouchpadAnc || right > TouchpadApp6 {
		return nil, fmt.Errorf("right touchpad option out of range [2, 6]: %d", right)
	}
	return protocol.MakeFrame(message.IDSetTouchpadOption, []byte{byte(left), byte(right)}, false, false), nil
}

// SetNoiseReductionRequest sets the legacy boolean noise reduction
// state; NoiseControlsRequest supersedes it on newer firmware.
func SetNoiseReductionRequest(enabled bool) *protocol.Frame {
	return protocol.MakeFrame(message.IDSetNoiseReduction, []byte{btob(enabled)}, false, false)
}

// StartFindMyEarbudsRequest makes the earbuds start chirping.
func StartFindMyEarbudsRequest() *protocol.Frame {
	return protocol.MakeFrame(message.IDFindMyEarbudsStart, nil, false, false)
}

// StopFindMyEarbudsRequest stops the chirp.
func StopFindMyEarbudsRequest() *protocol.Frame {
	return protocol.MakeFrame(message.IDFindMyEarbudsStop, nil, false, false)
}

// MuteEarbudRequest mutes the find-my-earbuds chirp per side.
func MuteEarbudRequest(left, right bool) *protocol.Frame {
	return protocol.MakeFrame(message.IDMuteEarbud, []byte{btob(left), btob(right)}, false, false)
}

// UpdateTimeRequest sets the device clock: epoch seconds plus the
// local timezone offset in seconds.
func UpdateTimeRequest(t time.Time) *protocol.Frame {
	_, offset := t.Zone()
	body := make([]byte, 8)
	binary.LittleEndian.PutUint32(body[0:4], uint32(t.Unix()))
	binary.LittleEndian.PutUint32(body[4:8], uint32(int32(offset)))
	return protocol.MakeFrame(message.IDUpdateTime, body, false, false)
}

func btob(v bool) byte {
	if v {
		return 1
	}
	return 0
}
