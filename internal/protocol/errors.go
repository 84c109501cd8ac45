package protocol

import (
	"errors"
	"fmt"
)

// ErrClosed is the terminal condition a FrameReceiver reports once its
// transport has been closed locally or reached a clean end-of-stream.
var ErrClosed = errors.New("frame stream closed")

// MalformedHeaderError reports bytes that cannot be a frame header:
// fewer than four bytes available, or a first byte that is not the
// start-of-frame marker.
type MalformedHeaderError struct {
	Len   int
	First byte
}

func (e *MalformedHeaderError) Error() string {
	if e.Len < headerSize {
		return fmt.Sprintf("short frame header: %d bytes", e.Len)
	}
	return fmt.Sprintf("invalid start-of-frame marker: 0x%02X", e.First)
}

// MalformedFrameError reports a frame whose declared length does not
// match the bytes that follow its header.
type MalformedFrameError struct {
	Declared  int
	Available int
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("short frame: header declares %d bytes, %d available", e.Declared, e.Available)
}

// CrcMismatchError reports a frame that failed CRC validation.
type CrcMismatchError struct {
	MsgID byte
	Len   int
}

func (e *CrcMismatchError) Error() string {
	return fmt.Sprintf("CRC mismatch on frame id=0x%02X len=%d", e.MsgID, e.Len)
}
