package testutil

import (
	"encoding/binary"

	"github.com/udisondev/itemcode/internal/crypto"
)

// EncryptSerial obfuscates a plaintext serial the way the game does, so tests can
// build encrypted fixtures. Production code only ever decrypts.
// key must fit in 27 bits (signed), steps in 5 bits.
func EncryptSerial(plain []byte, key int32, steps uint8) []byte {
	payload := plain[5:]
	s := int(steps) % len(payload)
	rotated := append(append([]byte{}, payload[s:]...), payload[:s]...)

	out := make([]byte, 5, len(plain))
	out[0] = plain[0]
	binary.BigEndian.PutUint32(out[1:], uint32(key<<5|int32(steps&0b11111)))

	k := int64(key)
	for _, b := range rotated {
		k = (k * 0x10A860C1) % 0xFFFFFFFB
		if k < 0 {
			k += 0xFFFFFFFB
		}
		out = append(out, b^byte(k))
	}
	return out
}

// SealedSerial builds a valid plaintext serial from a marker and payload bytes:
// zero key header, correct checksum.
func SealedSerial(marker byte, payload ...byte) []byte {
	buf := make([]byte, 7, 7+len(payload))
	buf[0] = marker
	buf = append(buf, payload...)
	binary.BigEndian.PutUint16(buf[5:], crypto.Checksum(buf))
	return buf
}
