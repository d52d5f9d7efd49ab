// Package itemcode reads and writes the textual item code format:
//
//	<prefix>(<serial>)
//	<prefix>MODDED[<serial>|<extension>]
//
// The serial is the game's native serial number, the extension block carries the
// fields the native format cannot express (parts added by mods).
package itemcode

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/itemcode/internal/crypto"
	"github.com/udisondev/itemcode/internal/fields"
	"github.com/udisondev/itemcode/internal/model"
	"github.com/udisondev/itemcode/internal/replacement"
	"github.com/udisondev/itemcode/internal/zdict"
)

// Engine is the host's native serial number implementation.
type Engine interface {
	// Pack serializes a record into a native serial buffer (at most 40 bytes,
	// key header and checksum not necessarily set).
	Pack(rec model.Record) ([]byte, error)

	// Unpack decodes a plaintext 40-byte serial buffer. The returned record's
	// Kind tells weapons from other items. ok is false if the game rejects the serial.
	Unpack(serial []byte) (rec model.Record, ok bool)
}

// Option configures a Codec or an Inspector.
type Option func(*options)

type options struct {
	dict *zdict.Dictionary
}

// WithDictionary replaces the embedded extension block dictionary.
// Codes are only readable by peers that use byte-identical dictionaries.
func WithDictionary(dict *zdict.Dictionary) Option {
	return func(o *options) {
		o.dict = dict
	}
}

// Inspector validates and dissects codes without a native engine.
// Safe for concurrent use.
type Inspector struct {
	game Game
	ext  *replacement.Codec
}

// NewInspector creates an inspector for a game.
func NewInspector(game Game, opts ...Option) (*Inspector, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.dict == nil {
		dict, err := zdict.Default()
		if err != nil {
			return nil, fmt.Errorf("loading default dictionary: %w", err)
		}
		o.dict = dict
	}
	return &Inspector{
		game: game,
		ext:  replacement.NewCodec(o.dict),
	}, nil
}

// Game returns the game the inspector reads codes for.
func (in *Inspector) Game() Game {
	return in.game
}

// decoded is a code that passed every check short of the native unpack.
type decoded struct {
	code    Code
	serial  []byte // cipher removed, not padded
	ext     []byte // raw extension block, nil for vanilla codes
	payload []byte // inflated extension block
}

// decode runs the validation stages in order. Errors wrap ErrNoMatch, ErrWrongGame or ErrMalformed.
func (in *Inspector) decode(text string) (decoded, error) {
	code, err := Parse(text)
	if err != nil {
		return decoded{}, err
	}
	if !in.game.Accepts(code.Ident) {
		return decoded{}, fmt.Errorf("%w: %q", ErrWrongGame, code.Ident)
	}

	rawSerial, ext, err := code.Decode()
	if err != nil {
		return decoded{}, err
	}

	serial, err := crypto.ValidateAndDecodeSerial(rawSerial)
	if err != nil {
		return decoded{}, fmt.Errorf("%w: serial: %w", ErrMalformed, err)
	}

	d := decoded{
		code:   code,
		serial: serial,
		ext:    ext,
	}
	if ext == nil {
		return d, nil
	}

	d.payload, err = in.ext.Decompress(ext)
	if err != nil {
		return decoded{}, fmt.Errorf("%w: extension: %w", ErrMalformed, err)
	}
	return d, nil
}

// resultOf maps a decode error onto the result taxonomy.
func resultOf(err error) Result {
	switch {
	case errors.Is(err, ErrNoMatch):
		return NoMatch
	case errors.Is(err, ErrWrongGame):
		return WrongGame
	default:
		return MalformedCode
	}
}

// Codec converts between item codes and definition records.
// Safe for concurrent use if the engine and resolver are.
type Codec struct {
	*Inspector
	engine   Engine
	resolver replacement.Resolver
}

// New creates a codec for a game.
func New(game Game, engine Engine, resolver replacement.Resolver, opts ...Option) (*Codec, error) {
	in, err := NewInspector(game, opts...)
	if err != nil {
		return nil, err
	}
	return &Codec{
		Inspector: in,
		engine:    engine,
		resolver:  resolver,
	}, nil
}

// Unpack decodes an item code into a definition record.
// The record is nil unless the result is Full* or Partial*.
func (c *Codec) Unpack(text string) (Result, model.Record) {
	d, err := c.decode(text)
	if err != nil {
		res := resultOf(err)
		slog.Debug("item code rejected", "result", res, "err", err)
		return res, nil
	}

	// Native unpack expects the full fixed-size buffer.
	rec, ok := c.engine.Unpack(crypto.NativeBuffer(d.serial))
	if !ok || rec == nil {
		slog.Debug("item code rejected by game", "ident", d.code.Ident)
		return GameRejectedCode, nil
	}

	weapon := rec.Kind() == model.KindWeapon
	if d.payload == nil {
		return unpacked(weapon, true), rec
	}

	// The whole payload is parsed before anything touches the record.
	p, err := replacement.Parse(d.payload, fields.For(rec.Kind()))
	if err != nil {
		slog.Debug("item code rejected", "result", MalformedCode, "err", err)
		return MalformedCode, nil
	}

	full := replacement.Apply(rec, p, c.resolver)
	return unpacked(weapon, full), rec
}

// Pack encodes a record as an item code.
// Fields the native serial drops are carried in an extension block.
func (c *Codec) Pack(rec model.Record) (string, error) {
	native, err := c.engine.Pack(rec)
	if err != nil {
		return "", fmt.Errorf("packing serial: %w", err)
	}
	if len(native) < crypto.SerialMinLen || len(native) > crypto.SerialMaxLen {
		return "", fmt.Errorf("packing serial: %w: %d bytes", crypto.ErrSerialLength, len(native))
	}

	// Unpack what we just packed to find out which fields survived.
	roundTripped, ok := c.engine.Unpack(crypto.PadSerial(native))
	if !ok || roundTripped == nil {
		return "", ErrRoundTrip
	}
	if roundTripped.Kind() != rec.Kind() {
		return "", fmt.Errorf("%w: packed %s, unpacked %s", ErrRoundTrip, rec.Kind(), roundTripped.Kind())
	}

	p, err := replacement.Diff(rec, roundTripped, fields.For(rec.Kind()))
	if err != nil {
		return "", fmt.Errorf("diffing record: %w", err)
	}

	serial, err := crypto.SealSerial(native)
	if err != nil {
		return "", fmt.Errorf("sealing serial: %w", err)
	}

	if p.Empty() {
		return Format(c.game.Prefix(), serial, nil), nil
	}

	ext, err := c.ext.Compress(p.Marshal())
	if err != nil {
		return "", fmt.Errorf("compressing replacements: %w", err)
	}

	slog.Debug("packed modded item code", "kind", rec.Kind(), "mask", fmt.Sprintf("%#04x", p.Mask))
	return Format(c.game.Prefix(), serial, ext), nil
}
