package pix

import (
	"fmt"
	"strings"
)

const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// ComputeChecksum runs CRC-16/CCITT-FALSE over the bytes of data and
// returns it as four uppercase hex digits.
func ComputeChecksum(data string) string {
	crc := uint16(crcInitial)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}

// Verify checks that payload ends with a checksum field matching its content.
func Verify(payload string) error {
	if len(payload) < len(checksumPrefix)+4 {
		return fmt.Errorf("%w: too short to carry a checksum", ErrMalformedPayload)
	}
	body := payload[:len(payload)-4]
	if !strings.HasSuffix(body, checksumPrefix) {
		return fmt.Errorf("%w: missing checksum field", ErrMalformedPayload)
	}
	got := payload[len(payload)-4:]
	if want := ComputeChecksum(body); got != want {
		return fmt.Errorf("%w: checksum %s, expected %s", ErrMalformedPayload, got, want)
	}
	return nil
}
