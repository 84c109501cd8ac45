package message

import "fmt"

// Earbud placement codes reported in status messages.
const (
	PlacementWearing = 1
	PlacementTable   = 2
	PlacementCase    = 3
)

// batteryCaseUnknown is the raw case-battery code the firmware sends
// when the case level is not known (earbuds out of the case).
const batteryCaseUnknown = 101

// StatusUpdated (0x60) is the small periodic status update. After the
// initial burst of extended status at connection time, the earbuds
// mostly send these.
type StatusUpdated struct {
	Revision       uint8
	BatteryLeft    uint8
	BatteryRight   uint8
	Coupled        bool
	PrimaryEarbud  uint8
	PlacementLeft  uint8
	PlacementRight uint8
	BatteryCaseRaw uint8
}

func (m *StatusUpdated) ID() byte { return IDStatusUpdated }

// BatteryCase returns the case battery percentage, or -1 when the
// firmware reports it as unknown.
func (m *StatusUpdated) BatteryCase() int {
	if m.BatteryCaseRaw == batteryCaseUnknown {
		return -1
	}
	return int(m.BatteryCaseRaw)
}

func (m *StatusUpdated) String() string {
	return fmt.Sprintf("StatusUpdated{battery=%d/%d, coupled=%v, primary=%d, placement=%d/%d, case=%d}",
		m.BatteryLeft, m.BatteryRight, m.Coupled, m.PrimaryEarbud,
		m.PlacementLeft, m.PlacementRight, m.BatteryCase())
}

func decodeStatusUpdated(id byte, body []byte) (Message, error) {
	if len(body) < 7 {
		return nil, decodeErrf(id, len(body), "expected at least 7 bytes for status")
	}
	if len(body) != 7 {
		return nil, decodeErrf(id, len(body), "trailing bytes after status fields")
	}
	return &StatusUpdated{
		Revision:       body[0],
		BatteryLeft:    body[1],
		BatteryRight:   body[2],
		Coupled:        body[3] != 0,
		PrimaryEarbud:  body[4],
		PlacementLeft:  body[5] >> 4,
		PlacementRight: body[5] & 0x0F,
		BatteryCaseRaw: body[6],
	}, nil
}
