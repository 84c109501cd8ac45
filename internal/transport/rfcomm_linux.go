//go:build linux

package transport

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/galaxybuds/budspro/internal/logging"
)

// rfcommConn is a Transport over a classic Bluetooth RFCOMM stream
// socket.
type rfcommConn struct {
	fd        int
	closeOnce sync.Once
	closeErr  error
}

// DialRFCOMM connects to the RFCOMM channel of the device with the
// given Bluetooth address ("XX:XX:XX:XX:XX:XX"). The earbuds expose
// their control protocol on the SPP channel registered as GEARMANAGER;
// the channel number must be known up front since this function does
// not perform SDP discovery.
func DialRFCOMM(addr string, channel uint8) (Transport, error) {
	bdaddr, err := ParseMAC(addr)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("failed to create RFCOMM socket: %w", err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: bdaddr, Channel: channel}
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to connect to %s channel %d: %w", addr, channel, err)
	}

	logging.Info("RFCOMM connection established")
	return &rfcommConn{fd: fd}, nil
}

func (c *rfcommConn) Send(data []byte) error {
	for len(data) > 0 {
		n, err := unix.Write(c.fd, data)
		if err != nil {
			return fmt.Errorf("RFCOMM write failed: %w", err)
		}
		data = data[n:]
	}
	return nil
}

func (c *rfcommConn) Recv(max int) ([]byte, error) {
	buf := make([]byte, max)
	n, err := unix.Read(c.fd, buf)
	if err != nil {
		return nil, fmt.Errorf("RFCOMM read failed: %w", err)
	}
	return buf[:n], nil
}

// Close shuts the socket down before closing it so that a Recv blocked
// in another goroutine is released.
func (c *rfcommConn) Close() error {
	c.closeOnce.Do(func() {
		_ = unix.Shutdown(c.fd, unix.SHUT_RDWR)
		c.closeErr = unix.Close(c.fd)
	})
	return c.closeErr
}
