package protocol

import (
	"bytes"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/galaxybuds/budspro/internal/logging"
	"github.com/galaxybuds/budspro/internal/transport"
)

// recvChunk is how many bytes we ask the transport for at a time.
const recvChunk = 0x800

// FrameReceiver turns the raw byte stream from a transport into a
// sequence of validated frames. It tolerates noise: garbage between
// frames, mis-framed spans and CRC failures are logged and skipped,
// never surfaced to the caller.
//
// Next is not safe for concurrent use; Close may be called from any
// goroutine and unblocks a Next in flight.
type FrameReceiver struct {
	t      transport.Transport
	buf    []byte
	closed atomic.Bool
}

// NewFrameReceiver wraps a transport.
func NewFrameReceiver(t transport.Transport) *FrameReceiver {
	return &FrameReceiver{t: t}
}

// Close closes the underlying transport, causing any in-progress Next
// to return ErrClosed.
func (r *FrameReceiver) Close() error {
	r.closed.Store(true)
	return r.t.Close()
}

// Next blocks until a valid frame is available and returns it.
//
// It returns ErrClosed exactly once the stream has ended (local Close
// or clean end-of-stream); any other error is a fatal transport
// failure. Framing noise never produces an error: the receiver resyncs
// on the next start-of-frame marker and keeps going.
func (r *FrameReceiver) Next() (*Frame, error) {
	for {
		if err := r.ensure(minFrameSize); err != nil {
			return nil, err
		}

		// Resync: find the next start-of-frame marker, discarding
		// whatever precedes it.
		if i := bytes.IndexByte(r.buf, StartOfFrame); i != 0 {
			if i < 0 {
				i = len(r.buf)
			}
			logging.Warn("lost non-framed data",
				zap.Int("bytes", i),
				zap.String("hex", logging.HexDump(r.buf[:i])),
			)
			r.advance(i)
			continue
		}

		header, n, err := ParseFrameHeader(r.buf)
		if err != nil {
			// Unreachable given the buffered minimum and the marker
			// check above, but resync rather than trust it.
			r.advance(1)
			continue
		}

		// The declared length counts the ID byte and the CRC, so
		// anything below 3 cannot be a frame: the marker we locked
		// onto was mid-stream noise. Drop one byte and rescan.
		if header.Length() < minFrameSize-headerSize {
			logging.Warn("lost data with bad framing",
				zap.Int("bytes", headerSize),
				zap.String("hex", logging.HexDump(r.buf[:headerSize])),
			)
			r.advance(1)
			continue
		}

		// Header (minus marker) + declared span + end marker.
		total := (headerSize - 1) + header.Length() + 1
		if err := r.ensure(total); err != nil {
			return nil, err
		}

		// A wrong byte at the end-of-frame position means the marker
		// we locked onto was mid-stream noise. Drop exactly one byte
		// and rescan.
		if r.buf[total-1] != EndOfFrame {
			logging.Warn("lost data with bad framing",
				zap.Int("bytes", total),
				zap.String("hex", logging.HexDump(r.buf[:total])),
			)
			r.advance(1)
			continue
		}

		frame, err := DecodeBody(header, r.buf[n:total-1])
		r.advance(total)
		if err != nil {
			// One bad frame never ends the stream.
			logging.Warn("lost invalid frame", zap.Error(err))
			continue
		}

		logging.Debug("received frame", zap.String("frame", frame.String()))
		return frame, nil
	}
}

// ensure blocks until at least n bytes are buffered.
func (r *FrameReceiver) ensure(n int) error {
	for len(r.buf) < n {
		data, err := r.t.Recv(recvChunk)
		if err != nil {
			if r.closed.Load() {
				return ErrClosed
			}
			return err
		}
		if len(data) == 0 {
			// Clean end-of-stream.
			return ErrClosed
		}
		r.buf = append(r.buf, data...)
	}
	return nil
}

// advance drops the first n buffered bytes.
func (r *FrameReceiver) advance(n int) {
	r.buf = r.buf[:copy(r.buf, r.buf[n:])]
}
