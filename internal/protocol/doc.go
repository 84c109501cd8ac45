// Package protocol implements the framed binary control protocol the
// Galaxy Buds Pro speak over their RFCOMM serial channel.
//
// The layers, bottom up:
//
//   - Frame codec: bit-exact encode/decode of one frame, including
//     CRC-16/CCITT validation (frame.go, crc16.go).
//   - FrameReceiver: extracts validated frames from the continuous
//     byte stream, resynchronizing after garbage, mis-framing or CRC
//     failures (receiver.go).
//   - FrameDispatcher: consumes the receiver on a dedicated goroutine
//     and fans decoded frames out to per-ID listeners; one-shot
//     waiters provide request/response correlation, including the
//     protocol's acknowledgement-redirect indirection (dispatcher.go).
//
// Framing noise is self-healing and logged, never raised; connection
// loss surfaces uniformly as a nil result to every blocked waiter.
package protocol
