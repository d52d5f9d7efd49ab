package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Plaintext serial exported by a save editor; its checksum 0x4a7e is known good.
const editorSerialHex = "87000000004a7e0081c7034004e10198c3708541000302c6ff7f09181b30feff9fc36082310ce3"

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestChecksum_KnownSerial(t *testing.T) {
	serial := mustHex(t, editorSerialHex)

	assert.Equal(t, uint16(0x4a7e), Checksum(serial))
	assert.Equal(t, uint16(0x4a7e), StoredChecksum(serial))
	assert.True(t, ValidateChecksum(serial))
}

func TestChecksum_Vectors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint16
	}{
		{"zeros", make([]byte, 8), 0xadbf},
		{"kind and one byte", []byte{1, 0, 0, 0, 0, 0, 0, 0x42}, 0x0f3b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum(tt.in))
		})
	}
}

func TestChecksum_IgnoresStoredBytesAndPadding(t *testing.T) {
	serial := mustHex(t, editorSerialHex)

	masked := bytes.Clone(serial)
	masked[5], masked[6] = 0x12, 0x34
	assert.Equal(t, Checksum(serial), Checksum(masked), "bytes 5..6 must not influence the checksum")

	assert.Equal(t, Checksum(serial), Checksum(PadSerial(serial)), "0xFF padding to 40 bytes is implicit")
}

func TestChecksum_SingleByteFlip(t *testing.T) {
	serial := mustHex(t, editorSerialHex)
	base := Checksum(serial)

	for i := range serial {
		if i == 5 || i == 6 {
			continue
		}
		flipped := bytes.Clone(serial)
		flipped[i] ^= 0x01
		assert.NotEqual(t, base, Checksum(flipped), "flip at byte %d", i)
	}
}

func TestParseSerialKey(t *testing.T) {
	assert.Equal(t, Plaintext{}, ParseSerialKey([]byte{0x87, 0, 0, 0, 0}))
	// Steps alone do not make a serial encrypted.
	assert.Equal(t, Plaintext{}, ParseSerialKey([]byte{0x87, 0, 0, 0, 0x1F}))

	assert.Equal(t, Encrypted{Key: 0x12345, Steps: 7}, ParseSerialKey(mustHex(t, "87002468a7")))
	assert.Equal(t, Encrypted{Key: -0x1234, Steps: 3}, ParseSerialKey(mustHex(t, "87fffdb983")))
}

func TestDecodeSerial_Plaintext(t *testing.T) {
	serial := mustHex(t, editorSerialHex)

	out, err := DecodeSerial(serial)
	require.NoError(t, err)
	assert.Equal(t, serial, out)

	out[0] = 0
	assert.Equal(t, byte(0x87), serial[0], "plaintext decode must return a copy")
}

func TestDecodeSerial_Encrypted(t *testing.T) {
	want := mustHex(t, editorSerialHex)

	tests := []struct {
		name    string
		encoded string
	}{
		{"positive key", "87002468a7c0fe57cae9776ca18b3ec9de52019b4235c0fd573d2c20c1b94afc4eac2481c8bc27"},
		{"negative key", "87fffdb9835dd144c997cc4f9ec7dbcdf5cd0e43810f69b0e58f1259f080310da669755adc9e51"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ValidateAndDecodeSerial(mustHex(t, tt.encoded))
			require.NoError(t, err)
			assert.Equal(t, want, out)
		})
	}
}

func TestDecodeSerial_Length(t *testing.T) {
	for _, n := range []int{0, 1, 7, 41, 64} {
		_, err := DecodeSerial(make([]byte, n))
		assert.True(t, errors.Is(err, ErrSerialLength), "len %d", n)
	}

	_, err := DecodeSerial(make([]byte, 8))
	assert.NoError(t, err)
	_, err = DecodeSerial(make([]byte, 40))
	assert.NoError(t, err)
}

func TestValidateAndDecodeSerial_BadChecksum(t *testing.T) {
	serial := mustHex(t, editorSerialHex)
	serial[10] ^= 0xFF

	_, err := ValidateAndDecodeSerial(serial)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestSealSerial(t *testing.T) {
	// Native buffer straight from the packer: key set, no checksum, 0xFF padding.
	native := mustHex(t, "87d1620929ffff0081c7034004e10198c3708541000302c6ff7f09181b30feff9fc36082310ce3ff")

	sealed, err := SealSerial(native)
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, editorSerialHex), sealed)
	assert.True(t, ValidateChecksum(sealed))
	assert.Equal(t, Plaintext{}, ParseSerialKey(sealed))
}

func TestSealSerial_KeepsMinimumLength(t *testing.T) {
	native := PadSerial([]byte{0x03, 1, 2, 3, 4, 0xFF, 0xFF})

	sealed, err := SealSerial(native)
	require.NoError(t, err)
	require.Len(t, sealed, SerialMinLen)

	decoded, err := ValidateAndDecodeSerial(sealed)
	require.NoError(t, err)
	assert.Equal(t, sealed, decoded)
}

func TestSealSerial_Length(t *testing.T) {
	_, err := SealSerial(make([]byte, 41))
	assert.ErrorIs(t, err, ErrSerialLength)
	_, err = SealSerial(make([]byte, 7))
	assert.ErrorIs(t, err, ErrSerialLength)
}

func TestPadSerial(t *testing.T) {
	padded := PadSerial([]byte{1, 2, 3})
	require.Len(t, padded, SerialMaxLen)
	assert.Equal(t, []byte{1, 2, 3, 0xFF, 0xFF}, padded[:5])
	assert.Equal(t, byte(0xFF), padded[SerialMaxLen-1])
}

func TestNativeBuffer(t *testing.T) {
	serial := mustHex(t, editorSerialHex)

	buf := NativeBuffer(serial)
	require.Len(t, buf, SerialMaxLen)
	assert.Equal(t, []byte{0xFF, 0xFF}, buf[5:7], "checksum bytes are masked")
	assert.Equal(t, serial[7:], buf[7:len(serial)])
	assert.Equal(t, uint16(0x4a7e), StoredChecksum(serial), "input is not modified")

	sealed, err := SealSerial(buf)
	require.NoError(t, err)
	assert.Equal(t, serial, sealed)
}
