package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/galaxybuds/budspro/internal/message"
)

// Wire framing constants.
const (
	StartOfFrame = 0xFD
	EndOfFrame   = 0xDD

	// headerSize is the encoded header: start marker, 2-byte flags,
	// message ID.
	headerSize = 4

	// minFrameSize is the smallest possible complete frame: header,
	// empty body, CRC, end marker.
	minFrameSize = 7

	flagLengthMask = 0x03FF
	flagResponse   = 0x1000
	flagFragment   = 0x2000
)

// FrameHeader is the decoded flags and message ID of one frame.
//
// The 10 low bits of Flags hold the length of everything between the
// start and end markers: the message ID byte, the body, and the 2-byte
// CRC. A valid header therefore always declares a length of at least 3.
type FrameHeader struct {
	Flags uint16
	MsgID byte
}

// IsFragment reports whether this frame is part of a fragmented
// message stream (i.e. not the last piece).
func (h FrameHeader) IsFragment() bool { return h.Flags&flagFragment != 0 }

// IsResponse reports whether this frame answers a request.
func (h FrameHeader) IsResponse() bool { return h.Flags&flagResponse != 0 }

// Length returns the declared length: ID byte + body + CRC.
func (h FrameHeader) Length() int { return int(h.Flags & flagLengthMask) }

// Encode returns the 4-byte wire form of the header.
func (h FrameHeader) Encode() []byte {
	buf := make([]byte, headerSize)
	buf[0] = StartOfFrame
	binary.LittleEndian.PutUint16(buf[1:3], h.Flags)
	buf[3] = h.MsgID
	return buf
}

func (h FrameHeader) String() string {
	return fmt.Sprintf("FrameHeader{id=0x%02X, len=%d, response=%v, fragment=%v}",
		h.MsgID, h.Length(), h.IsResponse(), h.IsFragment())
}

// ParseFrameHeader decodes a frame header from the start of data and
// returns it with the number of bytes consumed. It fails with
// MalformedHeaderError if fewer than four bytes are available or the
// first byte is not the start-of-frame marker.
func ParseFrameHeader(data []byte) (FrameHeader, int, error) {
	if len(data) < headerSize {
		return FrameHeader{}, 0, &MalformedHeaderError{Len: len(data)}
	}
	if data[0] != StartOfFrame {
		return FrameHeader{}, 0, &MalformedHeaderError{Len: len(data), First: data[0]}
	}
	return FrameHeader{
		Flags: binary.LittleEndian.Uint16(data[1:3]),
		MsgID: data[3],
	}, headerSize, nil
}

// MakeFrameHeader builds a header for an outbound frame. length covers
// the ID byte, body and CRC.
func MakeFrameHeader(id byte, length int, response, fragment bool) FrameHeader {
	flags := uint16(length) & flagLengthMask
	if response {
		flags |= flagResponse
	}
	if fragment {
		flags |= flagFragment
	}
	return FrameHeader{Flags: flags, MsgID: id}
}

// Frame is one delimited unit of the wire protocol. Body excludes both
// the message ID byte (carried in the header) and the CRC.
//
// Wire encoding, little-endian except where noted:
//
//	1 byte   0xFD start-of-frame marker
//	2 bytes  flags: bits 0-9 length, bit 12 response, bit 13 fragment
//	1 byte   message ID
//	n bytes  message body
//	2 bytes  CRC-16/CCITT over [ID, body]; validation re-appends the
//	         two bytes most-significant-first so a valid frame folds
//	         to zero
//	1 byte   0xDD end-of-frame marker
type Frame struct {
	Header FrameHeader
	Body   []byte
}

// Encode returns the complete wire form of the frame, including the
// markers and CRC.
func (f *Frame) Encode() []byte {
	buf := make([]byte, 0, headerSize+len(f.Body)+3)
	buf = append(buf, f.Header.Encode()...)
	buf = append(buf, f.Body...)
	crc := crc16([]byte{f.Header.MsgID}, f.Body)
	buf = append(buf, byte(crc), byte(crc>>8))
	buf = append(buf, EndOfFrame)
	return buf
}

// Message decodes the frame body into a typed message. A nil message
// with a nil error means no decoder exists for this frame's ID.
func (f *Frame) Message() (message.Message, error) {
	return message.Decode(f.Header.MsgID, f.Body)
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame{id=0x%02X, body=%d bytes, response=%v}",
		f.Header.MsgID, len(f.Body), f.Header.IsResponse())
}

// DecodeBody validates the body+CRC span that followed a parsed header
// and returns the assembled frame. data must contain exactly the bytes
// between the message ID and the end-of-frame marker.
func DecodeBody(header FrameHeader, data []byte) (*Frame, error) {
	if len(data) < 2 || 1+len(data) != header.Length() {
		return nil, &MalformedFrameError{Declared: header.Length(), Available: 1 + len(data)}
	}

	body := data[:len(data)-2]
	// CRC bytes travel least-significant-first; re-append them
	// most-significant-first and the whole span folds to zero.
	crcBE := []byte{data[len(data)-1], data[len(data)-2]}
	if crc16([]byte{header.MsgID}, body, crcBE) != 0 {
		return nil, &CrcMismatchError{MsgID: header.MsgID, Len: header.Length()}
	}

	own := make([]byte, len(body))
	copy(own, body)
	return &Frame{Header: header, Body: own}, nil
}

// MakeFrame builds an outbound frame with the given message ID and
// payload. A nil payload encodes as an empty body.
func MakeFrame(id byte, payload []byte, response, fragment bool) *Frame {
	body := make([]byte, len(payload))
	copy(body, payload)
	return &Frame{
		Header: MakeFrameHeader(id, 1+len(body)+2, response, fragment),
		Body:   body,
	}
}
