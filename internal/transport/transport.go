// Package transport provides the byte-oriented duplex channel the
// protocol layer reads frames from, and an RFCOMM implementation of it
// for Linux.
package transport

// Transport is a duplex byte stream to the device. The protocol layer
// is written against this interface so tests can script wire traffic
// without a Bluetooth stack.
//
// Close is idempotent and unblocks any Recv in flight. After a local
// Close, Recv reports end-of-stream; any other failure is a real
// transport error and propagates.
type Transport interface {
	// Send writes the whole buffer to the device.
	Send(data []byte) error

	// Recv reads up to max bytes. A nil error with an empty result
	// signals a clean end-of-stream.
	Recv(max int) ([]byte, error)

	// Close tears the channel down.
	Close() error
}
