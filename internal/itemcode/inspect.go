package itemcode

import (
	"fmt"

	"github.com/udisondev/itemcode/internal/crypto"
	"github.com/udisondev/itemcode/internal/fields"
	"github.com/udisondev/itemcode/internal/model"
	"github.com/udisondev/itemcode/internal/replacement"
)

// Report is a structural dump of a code, produced without the native engine.
type Report struct {
	Ident          string
	Key            crypto.SerialKey
	Marker         byte   // serial byte 0, item kind marker
	Serial         []byte // decoded serial, header zeroed
	StoredChecksum uint16
	Checksum       uint16
	Modded         bool
	Payload        replacement.Payload // labelled against the requested kind's table
}

// Encrypted reports whether the serial was obfuscated by the game.
func (r Report) Encrypted() bool {
	_, ok := r.Key.(crypto.Encrypted)
	return ok
}

// Inspect validates a code and describes its content. Replacement values are
// labelled with the field table of kind; the native engine is the only authority
// on the real kind.
// On error the report holds whatever was decoded before the failing stage.
func (in *Inspector) Inspect(text string, kind model.Kind) (Report, error) {
	code, err := Parse(text)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Ident: code.Ident, Modded: code.Modded()}
	if !in.game.Accepts(code.Ident) {
		return rep, fmt.Errorf("%w: %q", ErrWrongGame, code.Ident)
	}

	rawSerial, ext, err := code.Decode()
	if err != nil {
		return rep, err
	}

	serial, err := crypto.DecodeSerial(rawSerial)
	if err != nil {
		return rep, fmt.Errorf("%w: serial: %w", ErrMalformed, err)
	}
	rep.Key = crypto.ParseSerialKey(rawSerial)
	rep.Marker = serial[0]
	rep.Serial = serial
	rep.StoredChecksum = crypto.StoredChecksum(serial)
	rep.Checksum = crypto.Checksum(serial)
	if rep.StoredChecksum != rep.Checksum {
		return rep, fmt.Errorf("%w: serial: %w", ErrMalformed, crypto.ErrChecksum)
	}

	if ext == nil {
		return rep, nil
	}
	payload, err := in.ext.Decompress(ext)
	if err != nil {
		return rep, fmt.Errorf("%w: extension: %w", ErrMalformed, err)
	}
	rep.Payload, err = replacement.Parse(payload, fields.For(kind))
	if err != nil {
		return rep, fmt.Errorf("%w: extension: %w", ErrMalformed, err)
	}
	return rep, nil
}

// Normalize rewrites a valid code into the form this package emits: plaintext
// serial with a fresh checksum, no padding, canonical prefix. The extension block
// is validated and carried through unchanged.
func (in *Inspector) Normalize(text string) (string, error) {
	d, err := in.decode(text)
	if err != nil {
		return "", err
	}

	serial, err := crypto.SealSerial(d.serial)
	if err != nil {
		return "", fmt.Errorf("%w: serial: %w", ErrMalformed, err)
	}
	return Format(in.game.Prefix(), serial, d.ext), nil
}
