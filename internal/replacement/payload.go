package replacement

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/udisondev/itemcode/internal/fields"
	"github.com/udisondev/itemcode/internal/model"
	"github.com/udisondev/itemcode/internal/packet"
)

var (
	ErrTruncated   = errors.New("replacement payload truncated")
	ErrFieldType   = errors.New("field value does not match field type")
	ErrInvalidName = errors.New("object path cannot be encoded")
)

// Resolver looks up live objects by path name (case-insensitive).
type Resolver interface {
	Resolve(pathName string) (model.Object, error)
}

// Replacement is one slot override. Int is used when Field.IsInt, Name otherwise;
// an empty Name means "no object".
type Replacement struct {
	Field fields.Field
	Int   int32
	Name  string
}

// String formats the value the way it appears on the wire.
func (r Replacement) String() string {
	if r.Field.IsInt {
		return fmt.Sprintf("%d", r.Int)
	}
	if r.Name == "" {
		return "None"
	}
	return r.Name
}

// Payload is the decoded content of an extension block.
type Payload struct {
	Mask   uint16
	Values []Replacement
}

// Empty reports whether the payload overrides nothing.
func (p Payload) Empty() bool {
	return p.Mask == 0
}

// Parse decodes a raw payload against a field table.
// Values are read for every set bit that has a table entry, from bit 15 down.
// Trailing bytes after the last value are ignored.
func Parse(data []byte, table fields.Table) (Payload, error) {
	r := packet.NewReader(data)

	mask, err := r.ReadUint16()
	if err != nil {
		return Payload{}, fmt.Errorf("%w: bitmask: %w", ErrTruncated, err)
	}

	selected := table.Selected(mask)
	p := Payload{
		Mask:   mask,
		Values: make([]Replacement, 0, len(selected)),
	}
	for _, f := range selected {
		rep := Replacement{Field: f}
		if f.IsInt {
			rep.Int, err = r.ReadInt()
		} else {
			var name []byte
			name, err = r.ReadCString()
			rep.Name = string(name)
		}
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %s: %w", ErrTruncated, f.Name, err)
		}
		p.Values = append(p.Values, rep)
	}
	return p, nil
}

// Marshal encodes the payload: LE uint16 mask followed by the values.
func (p Payload) Marshal() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteUint16(p.Mask)
	for _, v := range p.Values {
		if v.Field.IsInt {
			w.WriteInt(v.Int)
		} else {
			w.WriteCString(v.Name)
		}
	}

	out := make([]byte, w.Len())
	copy(out, w.Bytes())
	return out
}

// Apply assigns every replacement onto rec.
// A name the resolver cannot find sets the slot to None and is logged; the remaining
// slots are still applied. Returns false if any name failed to resolve.
func Apply(rec model.Record, p Payload, resolver Resolver) bool {
	ok := true
	for _, v := range p.Values {
		if v.Field.IsInt {
			rec.SetField(v.Field.Name, model.Int(v.Int))
			continue
		}
		if v.Name == "" {
			rec.SetField(v.Field.Name, model.None())
			continue
		}

		value := model.None()
		switch {
		case !utf8.ValidString(v.Name):
			slog.Warn("part name is not valid UTF-8 while unpacking item code",
				"field", v.Field.Name, "part", fmt.Sprintf("%q", v.Name))
			ok = false
		default:
			obj, err := resolver.Resolve(v.Name)
			if err != nil || obj == nil {
				slog.Warn("couldn't find part while unpacking item code",
					"field", v.Field.Name, "part", v.Name, "err", err)
				ok = false
			} else {
				value = model.Ref(obj)
			}
		}
		rec.SetField(v.Field.Name, value)
	}
	return ok
}

// Diff records every slot where original differs from what survived the native
// round trip. Object paths are upper-cased: lookups are case-insensitive and vanilla
// paths in the shared dictionary are upper-case.
func Diff(original, roundTripped model.Record, table fields.Table) (Payload, error) {
	var p Payload
	for _, f := range table.Selected(table.Mask()) {
		want := original.Field(f.Name)
		if want.Equal(roundTripped.Field(f.Name)) {
			continue
		}

		rep := Replacement{Field: f}
		switch want.Kind() {
		case model.ValueInt:
			if !f.IsInt {
				return Payload{}, fmt.Errorf("%w: %s holds an int", ErrFieldType, f.Name)
			}
			rep.Int, _ = want.Int()
		case model.ValueObject:
			if f.IsInt {
				return Payload{}, fmt.Errorf("%w: %s holds an object", ErrFieldType, f.Name)
			}
			rep.Name = strings.ToUpper(want.PathName())
			if rep.Name == "" || strings.IndexByte(rep.Name, 0) >= 0 {
				return Payload{}, fmt.Errorf("%w: %s: %q", ErrInvalidName, f.Name, want.PathName())
			}
		default:
			if f.IsInt {
				return Payload{}, fmt.Errorf("%w: %s is empty", ErrFieldType, f.Name)
			}
		}

		p.Mask |= f.Mask()
		p.Values = append(p.Values, rep)
	}
	return p, nil
}
