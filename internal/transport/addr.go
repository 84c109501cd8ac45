package transport

import (
	"fmt"
	"strconv"
	"strings"
)

// SPPUUID is the Serial Port Profile UUID the earbuds register their
// control channel under (service name GEARMANAGER). Kept here for
// reference; this package connects by address and channel and does not
// run SDP discovery.
const SPPUUID = "00001101-0000-1000-8000-00805F9B34FB"

// DefaultChannel is the RFCOMM channel used when none is configured.
const DefaultChannel uint8 = 1

// ParseMAC converts a textual Bluetooth address ("XX:XX:XX:XX:XX:XX")
// into the kernel's bdaddr byte order, which is the reverse of the
// display order.
func ParseMAC(addr string) ([6]byte, error) {
	var bdaddr [6]byte

	parts := strings.Split(addr, ":")
	if len(parts) != 6 {
		return bdaddr, fmt.Errorf("invalid bluetooth address %q: expected 6 colon-separated octets", addr)
	}

	for i, part := range parts {
		if len(part) != 2 {
			return bdaddr, fmt.Errorf("invalid bluetooth address %q: octet %q is not 2 hex digits", addr, part)
		}
		v, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return bdaddr, fmt.Errorf("invalid bluetooth address %q: %w", addr, err)
		}
		bdaddr[5-i] = byte(v)
	}
	return bdaddr, nil
}
