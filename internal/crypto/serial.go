package crypto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Serial number layout (decoded):
//
//	[0]     item kind marker (opaque, passed through)
//	[1:5]   BE int32: 27-bit rolling key (high) | 5-bit steps (low)
//	[5:7]   BE uint16 checksum
//	[7:]    payload
const (
	SerialMinLen = 8  // kind + key + checksum + at least one payload byte
	SerialMaxLen = 40 // size of the native serial buffer

	keyOffset      = 1
	checksumOffset = 5
	payloadOffset  = 5

	keyMultiplier = 0x10A860C1
	keyModulus    = 0xFFFFFFFB

	// PadByte fills the unused tail of a native serial buffer.
	PadByte = 0xFF
)

var (
	ErrSerialLength = errors.New("serial number length out of range")
	ErrChecksum     = errors.New("serial number checksum mismatch")
)

// SerialKey is the cipher mode recorded in a serial header: either Plaintext or Encrypted.
type SerialKey interface {
	isSerialKey()
}

// Plaintext — serial хранится без шифрования (key == 0). Все коды, которые мы генерируем, такие.
type Plaintext struct{}

// Encrypted holds the rolling key and the rotation count of an obfuscated serial.
type Encrypted struct {
	Key   int32 // 27-bit signed key
	Steps uint8 // 5-bit rotation count
}

func (Plaintext) isSerialKey() {}
func (Encrypted) isSerialKey() {}

// ParseSerialKey extracts the cipher mode from bytes 1..4.
// serial must be at least 5 bytes long.
func ParseSerialKey(serial []byte) SerialKey {
	keyAndSteps := int32(binary.BigEndian.Uint32(serial[keyOffset:]))
	key := keyAndSteps >> 5 // arithmetic shift, key keeps its sign
	if key == 0 {
		return Plaintext{}
	}
	return Encrypted{
		Key:   key,
		Steps: uint8(keyAndSteps & 0b11111),
	}
}

// DecodeSerial removes the stream cipher from an encoded serial number.
// Plaintext serials are returned as a copy. The result has the key/steps header zeroed.
func DecodeSerial(encoded []byte) ([]byte, error) {
	if len(encoded) < SerialMinLen || len(encoded) > SerialMaxLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrSerialLength, len(encoded))
	}

	enc, ok := ParseSerialKey(encoded).(Encrypted)
	if !ok {
		return bytes.Clone(encoded), nil
	}

	xored := make([]byte, len(encoded)-payloadOffset)
	key := int64(enc.Key)
	for i, b := range encoded[payloadOffset:] {
		key = nextKey(key)
		xored[i] = b ^ byte(key)
	}

	steps := int(enc.Steps) % len(xored)
	split := len(xored) - steps

	out := make([]byte, 0, len(encoded))
	out = append(out, encoded[0], 0, 0, 0, 0)
	out = append(out, xored[split:]...)
	out = append(out, xored[:split]...)
	return out, nil
}

// nextKey advances the rolling key. The result is always in [0, keyModulus).
func nextKey(key int64) int64 {
	key = (key * keyMultiplier) % keyModulus
	if key < 0 {
		key += keyModulus
	}
	return key
}

// Checksum computes the 16-bit serial checksum.
// The buffer is padded to SerialMaxLen with PadByte and bytes 5..6 are treated as 0xFFFF.
func Checksum(serial []byte) uint16 {
	var buf [SerialMaxLen]byte
	n := copy(buf[:], serial)
	for i := n; i < len(buf); i++ {
		buf[i] = PadByte
	}
	buf[checksumOffset] = PadByte
	buf[checksumOffset+1] = PadByte

	crc := crc32.ChecksumIEEE(buf[:])
	return uint16(crc>>16) ^ uint16(crc)
}

// StoredChecksum returns the big-endian checksum stored at bytes 5..6.
func StoredChecksum(serial []byte) uint16 {
	return binary.BigEndian.Uint16(serial[checksumOffset:])
}

// ValidateChecksum reports whether a decoded serial carries a correct checksum.
func ValidateChecksum(decoded []byte) bool {
	if len(decoded) < checksumOffset+2 {
		return false
	}
	return StoredChecksum(decoded) == Checksum(decoded)
}

// ValidateAndDecodeSerial decodes the serial and verifies its checksum.
// Anything outside [SerialMinLen, SerialMaxLen] is rejected before decoding:
// the native unpacker is not safe on short buffers.
func ValidateAndDecodeSerial(encoded []byte) ([]byte, error) {
	decoded, err := DecodeSerial(encoded)
	if err != nil {
		return nil, err
	}
	if !ValidateChecksum(decoded) {
		return nil, fmt.Errorf("%w: stored %#04x, computed %#04x",
			ErrChecksum, StoredChecksum(decoded), Checksum(decoded))
	}
	return decoded, nil
}

// SealSerial turns a native serial buffer into the plaintext form we emit:
// key/steps zeroed, fresh checksum, trailing pad bytes stripped.
// Stripping never goes below SerialMinLen.
func SealSerial(native []byte) ([]byte, error) {
	if len(native) < SerialMinLen || len(native) > SerialMaxLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrSerialLength, len(native))
	}

	buf := bytes.Clone(native)
	clear(buf[keyOffset:checksumOffset])
	binary.BigEndian.PutUint16(buf[checksumOffset:], Checksum(buf))

	end := len(buf)
	for end > SerialMinLen && buf[end-1] == PadByte {
		end--
	}
	return buf[:end], nil
}

// PadSerial returns a SerialMaxLen copy padded with PadByte, the shape the native unpacker expects.
func PadSerial(serial []byte) []byte {
	buf := make([]byte, SerialMaxLen)
	n := copy(buf, serial)
	for i := n; i < len(buf); i++ {
		buf[i] = PadByte
	}
	return buf
}

// NativeBuffer returns the buffer handed to the native unpacker: padded to SerialMaxLen
// with the checksum bytes masked to 0xFFFF, the way the game keeps unsealed serials.
func NativeBuffer(serial []byte) []byte {
	buf := PadSerial(serial)
	buf[checksumOffset] = PadByte
	buf[checksumOffset+1] = PadByte
	return buf
}
