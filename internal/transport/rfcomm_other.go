//go:build !linux

package transport

import "fmt"

// DialRFCOMM is only implemented for Linux, where the kernel exposes
// RFCOMM stream sockets directly.
func DialRFCOMM(addr string, channel uint8) (Transport, error) {
	return nil, fmt.Errorf("RFCOMM connections are only supported on linux")
}
