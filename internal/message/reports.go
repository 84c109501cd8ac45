package message

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// usageEntrySize is one usage report entry: a 5-byte null-terminated
// ASCII key followed by a 4-byte little-endian counter.
const usageEntrySize = 9

// UsageReport (0x40) carries usage counters keyed by short ASCII
// names. The device expects an acknowledgement with a response code on
// the same ID.
type UsageReport struct {
	Entries map[string]uint32
}

func (m *UsageReport) ID() byte { return IDUsageReport }

func (m *UsageReport) String() string {
	return fmt.Sprintf("UsageReport{entries=%d}", len(m.Entries))
}

func decodeUsageReport(id byte, body []byte) (Message, error) {
	if len(body) < 1 {
		return nil, decodeErrf(id, len(body), "expected at least 1 byte for usage report")
	}
	n := int(body[0])
	if len(body)-1 != usageEntrySize*n {
		return nil, decodeErrf(id, len(body), "expected %d bytes of data for %d entries", usageEntrySize*n, n)
	}

	entries := make(map[string]uint32, n)
	for i := 1; i < len(body); i += usageEntrySize {
		key := body[i : i+5]
		if ei := bytes.IndexByte(key, 0); ei >= 0 {
			key = key[:ei]
		}
		entries[string(key)] = binary.LittleEndian.Uint32(body[i+5 : i+9])
	}
	return &UsageReport{Entries: entries}, nil
}

// meteringSideSize is one per-side metering record: a battery byte and
// four 4-byte counters.
const meteringSideSize = 17

// MeteringSide holds one earbud's metering counters.
type MeteringSide struct {
	Battery       uint8
	A2DPUsingTime uint32
	EscoOpenTime  uint32
	AncOnTime     uint32
	AmbientOnTime uint32
}

// MeteringReport (0x41) carries battery metering for each connected
// earbud. The per-side records are present only for sides flagged as
// connected; a disconnected side is nil.
type MeteringReport struct {
	Format         uint8
	ConnectedLeft  bool
	ConnectedRight bool
	// TotalBatteryCapacity is present from format 2.
	TotalBatteryCapacity *uint16
	Left                 *MeteringSide
	Right                *MeteringSide
}

func (m *MeteringReport) ID() byte { return IDMeteringReport }

func (m *MeteringReport) String() string {
	return fmt.Sprintf("MeteringReport{format=%d, connected=%v/%v}", m.Format, m.ConnectedLeft, m.ConnectedRight)
}

func decodeMeteringReport(id byte, body []byte) (Message, error) {
	if len(body) < 2 {
		return nil, decodeErrf(id, len(body), "expected at least 2 bytes for metering report")
	}

	m := &MeteringReport{
		Format:         body[0],
		ConnectedLeft:  body[1]>>4 != 0,
		ConnectedRight: body[1]&0x0F != 0,
	}
	i := 2

	if m.Format >= 2 {
		if len(body) < i+2 {
			return nil, decodeErrf(id, len(body), "missing total battery capacity for format %d", m.Format)
		}
		m.TotalBatteryCapacity = u16Ptr(binary.LittleEndian.Uint16(body[i : i+2]))
		i += 2
	}

	for _, side := range []struct {
		connected bool
		dst       **MeteringSide
	}{
		{m.ConnectedLeft, &m.Left},
		{m.ConnectedRight, &m.Right},
	} {
		if !side.connected {
			continue
		}
		if len(body) < i+meteringSideSize {
			return nil, decodeErrf(id, len(body), "missing per-side metering record at offset %d", i)
		}
		*side.dst = &MeteringSide{
			Battery:       body[i],
			A2DPUsingTime: binary.LittleEndian.Uint32(body[i+1 : i+5]),
			EscoOpenTime:  binary.LittleEndian.Uint32(body[i+5 : i+9]),
			AncOnTime:     binary.LittleEndian.Uint32(body[i+9 : i+13]),
			AmbientOnTime: binary.LittleEndian.Uint32(body[i+13 : i+17]),
		}
		i += meteringSideSize
	}

	if i != len(body) {
		return nil, decodeErrf(id, len(body), "trailing bytes after metering fields (consumed %d)", i)
	}
	return m, nil
}
