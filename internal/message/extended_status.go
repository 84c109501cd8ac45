package message

import (
	"encoding/binary"
	"fmt"
)

// ExtendedStatusUpdated (0x61) is the full status snapshot the earbuds
// burst at connection time. Its layout depends on the embedded
// Revision: trailing fields appear as the firmware revision grows.
// Fields that are undefined at the message's revision are nil, never
// zero.
type ExtendedStatusUpdated struct {
	Revision       uint8
	EarType        uint8
	BatteryLeft    uint8
	BatteryRight   uint8
	Coupled        bool
	PrimaryEarbud  uint8
	PlacementLeft  uint8
	PlacementRight uint8
	BatteryCaseRaw uint8

	AdjustSoundSync     bool
	EqualizerType       uint8
	TouchpadConfig      bool
	TouchpadOptionLeft  uint8
	TouchpadOptionRight uint8
	NoiseControls       uint8
	VoiceWakeUp         bool
	// DeviceColorRaw holds the color codes of both earbuds; see
	// DeviceColor for which one applies.
	DeviceColorRaw      [2]uint16
	VoiceWakeUpLanguage uint8
	// SeamlessConnectionRaw is negated on the wire: 0 means enabled.
	SeamlessConnectionRaw uint8
	FmmRevision           uint8

	NoiseControlsOff     bool
	NoiseControlsAmbient bool
	NoiseControlsAnc     bool
	// Per-earbud variants of the bitmask flags, revision >= 8.
	LeftNoiseControlsOff     *bool
	LeftNoiseControlsAmbient *bool
	LeftNoiseControlsAnc     *bool

	// ExtraHighAmbientLegacy occupies the byte after the bitmask at
	// revision < 3; from revision 3 the same slot is SpeakSeamlessly
	// and extra high ambient moves to ExtraHighAmbient2 (revision 6).
	ExtraHighAmbientLegacy *bool
	SpeakSeamlessly        *bool

	AmbientSoundLevel              uint8
	NoiseReductionLevel            uint8
	AutoSwitchAudioOutput          bool
	DetectConversations            bool
	DetectConversationsDurationRaw uint8

	SpatialAudio        *bool  // revision >= 2
	HearingEnhancements *uint8 // revision >= 5
	ExtraHighAmbient2   *bool  // revision >= 6
	OutsideDoubleTap    *bool  // revision >= 7

	NoiseControlsWithOneEarbud  *bool  // revision >= 8
	CustomizeAmbientSoundOn     *bool  // revision >= 8
	CustomizeAmbientVolumeLeft  *uint8 // revision >= 8
	CustomizeAmbientVolumeRight *uint8 // revision >= 8
	AmbientSoundTone            *uint8 // revision >= 8

	SideTone *bool // revision >= 9
	// CallPathControl is negated on the wire: a zero byte means
	// enabled. Revision >= 10.
	CallPathControl *bool
}

func (m *ExtendedStatusUpdated) ID() byte { return IDExtendedStatusUpdated }

func (m *ExtendedStatusUpdated) String() string {
	return fmt.Sprintf("ExtendedStatusUpdated{rev=%d, battery=%d/%d, coupled=%v, primary=%d, placement=%d/%d, case=%d, eq=%d, anc=%d}",
		m.Revision, m.BatteryLeft, m.BatteryRight, m.Coupled, m.PrimaryEarbud,
		m.PlacementLeft, m.PlacementRight, m.BatteryCase(), m.EqualizerType, m.NoiseControls)
}

// BatteryCase returns the case battery percentage, or -1 when the
// firmware reports it as unknown.
func (m *ExtendedStatusUpdated) BatteryCase() int {
	if m.BatteryCaseRaw == batteryCaseUnknown {
		return -1
	}
	return int(m.BatteryCaseRaw)
}

// DeviceColor picks the color code of the active earbud.
func (m *ExtendedStatusUpdated) DeviceColor() uint16 {
	if (m.Coupled && m.DeviceColorRaw[1] != 0) || (!m.Coupled && m.PrimaryEarbud == 0) {
		return m.DeviceColorRaw[1]
	}
	return m.DeviceColorRaw[0]
}

// SeamlessConnection reports whether seamless connection is enabled;
// the wire encoding is negated.
func (m *ExtendedStatusUpdated) SeamlessConnection() bool {
	return m.SeamlessConnectionRaw == 0
}

// ExtraHighAmbient resolves the revision-dependent placement of the
// extra-high-ambient flag: the legacy byte below revision 3, the
// dedicated byte from revision 6, and false in between where the
// firmware has no field for it.
func (m *ExtendedStatusUpdated) ExtraHighAmbient() bool {
	if m.Revision < 3 && m.ExtraHighAmbientLegacy != nil {
		return *m.ExtraHighAmbientLegacy
	}
	if m.Revision >= 6 && m.ExtraHighAmbient2 != nil {
		return *m.ExtraHighAmbient2
	}
	return false
}

// DetectConversationsDuration returns the conversation-detection
// duration code, reading raw values below 2 as 1. The firmware appears
// to clamp this upstream; verify against real device captures if the
// raw value ever matters.
func (m *ExtendedStatusUpdated) DetectConversationsDuration() int {
	if m.DetectConversationsDurationRaw < 2 {
		return 1
	}
	return int(m.DetectConversationsDurationRaw)
}

// extFixedLen is the unconditional prefix: the fixed fields through
// the noise-controls bitmask byte.
const extFixedLen = 22

const noRevCap = 0xFF

// extTailField describes one byte span after the fixed prefix of an
// extended status body, and the revision window in which it is
// present. The table below is the authoritative revision-to-presence
// mapping; both the required length for a revision and the field
// offsets are derived from it by a single walk.
type extTailField struct {
	name   string
	minRev uint8
	maxRev uint8
	size   int
	set    func(m *ExtendedStatusUpdated, b []byte)
}

var extTail = []extTailField{
	{"extraHighAmbientLegacy", 0, 2, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.ExtraHighAmbientLegacy = boolPtr(b[0] != 0)
	}},
	{"speakSeamlessly", 3, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.SpeakSeamlessly = boolPtr(b[0] != 0)
	}},
	{"ambientSoundLevel", 0, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.AmbientSoundLevel = b[0]
	}},
	{"noiseReductionLevel", 0, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.NoiseReductionLevel = b[0]
	}},
	{"autoSwitchAudioOutput", 0, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.AutoSwitchAudioOutput = b[0] != 0
	}},
	{"detectConversations", 0, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.DetectConversations = b[0] != 0
	}},
	{"detectConversationsDuration", 0, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.DetectConversationsDurationRaw = b[0]
	}},
	{"spatialAudio", 2, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.SpatialAudio = boolPtr(b[0] != 0)
	}},
	{"hearingEnhancements", 5, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.HearingEnhancements = u8Ptr(b[0])
	}},
	{"extraHighAmbient2", 6, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.ExtraHighAmbient2 = boolPtr(b[0] != 0)
	}},
	{"outsideDoubleTap", 7, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.OutsideDoubleTap = boolPtr(b[0] != 0)
	}},
	{"customizeAmbient", 8, noRevCap, 4, func(m *ExtendedStatusUpdated, b []byte) {
		m.NoiseControlsWithOneEarbud = boolPtr(b[0] != 0)
		m.CustomizeAmbientSoundOn = boolPtr(b[1] != 0)
		m.CustomizeAmbientVolumeLeft = u8Ptr(b[2] >> 4)
		m.CustomizeAmbientVolumeRight = u8Ptr(b[2] & 0x0F)
		m.AmbientSoundTone = u8Ptr(b[3])
	}},
	{"sideTone", 9, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.SideTone = boolPtr(b[0] != 0)
	}},
	{"callPathControl", 10, noRevCap, 1, func(m *ExtendedStatusUpdated, b []byte) {
		m.CallPathControl = boolPtr(b[0] == 0)
	}},
}

// extRequiredLen returns the exact body length of an extended status
// message at the given revision.
func extRequiredLen(rev uint8) int {
	n := extFixedLen
	for _, f := range extTail {
		if rev >= f.minRev && rev <= f.maxRev {
			n += f.size
		}
	}
	return n
}

func decodeExtendedStatusUpdated(id byte, body []byte) (Message, error) {
	if len(body) < extFixedLen {
		return nil, decodeErrf(id, len(body), "expected at least %d bytes for extended status", extFixedLen)
	}

	rev := body[0]
	if want := extRequiredLen(rev); len(body) != want {
		return nil, decodeErrf(id, len(body), "expected %d bytes for extended status revision %d", want, rev)
	}

	m := &ExtendedStatusUpdated{
		Revision:              rev,
		EarType:               body[1],
		BatteryLeft:           body[2],
		BatteryRight:          body[3],
		Coupled:               body[4] != 0,
		PrimaryEarbud:         body[5],
		PlacementLeft:         body[6] >> 4,
		PlacementRight:        body[6] & 0x0F,
		BatteryCaseRaw:        body[7],
		AdjustSoundSync:       body[8] != 0,
		EqualizerType:         body[9],
		TouchpadConfig:        body[10] != 0,
		TouchpadOptionLeft:    body[11] >> 4,
		TouchpadOptionRight:   body[11] & 0x0F,
		NoiseControls:         body[12],
		VoiceWakeUp:           body[13] != 0,
		VoiceWakeUpLanguage:   body[18],
		SeamlessConnectionRaw: body[19],
		FmmRevision:           body[20],
	}
	m.DeviceColorRaw[0] = binary.LittleEndian.Uint16(body[14:16])
	m.DeviceColorRaw[1] = binary.LittleEndian.Uint16(body[16:18])

	mask := body[21]
	m.NoiseControlsOff = mask&0x01 != 0
	m.NoiseControlsAmbient = mask&0x02 != 0
	m.NoiseControlsAnc = mask&0x04 != 0
	if rev >= 8 {
		m.LeftNoiseControlsOff = boolPtr(mask&0x10 != 0)
		m.LeftNoiseControlsAmbient = boolPtr(mask&0x20 != 0)
		m.LeftNoiseControlsAnc = boolPtr(mask&0x40 != 0)
	}

	i := extFixedLen
	for _, f := range extTail {
		if rev < f.minRev || rev > f.maxRev {
			continue
		}
		f.set(m, body[i:i+f.size])
		i += f.size
	}

	return m, nil
}

func boolPtr(v bool) *bool    { return &v }
func u8Ptr(v uint8) *uint8    { return &v }
func u16Ptr(v uint16) *uint16 { return &v }
