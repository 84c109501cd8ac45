package protocol

// CRC-16/CCITT as used by the earbuds firmware: polynomial 0x1021,
// initial value 0, data processed most-significant bit first.

var crc16Table [256]uint16

func init() {
	for i := range crc16Table {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		crc16Table[i] = crc
	}
}

// crc16 computes the CRC-16/CCITT checksum of data.
//
// A frame checksum is computed over the message ID byte and the body.
// Because the algorithm runs MSB-first, appending the checksum bytes
// most-significant-first to the covered data folds the whole span to
// zero, which is how validation works.
func crc16(data ...[]byte) uint16 {
	var crc uint16
	for _, chunk := range data {
		for _, b := range chunk {
			crc = crc<<8 ^ crc16Table[byte(crc>>8)^b]
		}
	}
	return crc
}
