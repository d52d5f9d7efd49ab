package testutil

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/udisondev/itemcode/internal/catalog"
	"github.com/udisondev/itemcode/internal/crypto"
	"github.com/udisondev/itemcode/internal/fields"
	"github.com/udisondev/itemcode/internal/model"
)

// Markers written to serial byte 0 by FakeEngine.
const (
	WeaponMarker byte = 0x87
	ItemMarker   byte = 0x07
)

// Key header the game leaves in a freshly packed serial before sealing it.
var packedKeyHeader = [4]byte{0xd1, 0x62, 0x09, 0x29}

// FakeEngine — in-memory замена native pack/unpack для unit тестов.
//
// Serial layout (40 bytes):
//
//	[0]     WeaponMarker / ItemMarker
//	[1:5]   packedKeyHeader
//	[5:7]   0xFFFF
//	[7:]    every field of the kind's table, bit 15 first:
//	        object slot — BE uint16 catalog index + 1, 0 for None
//	        int slot    — one byte
//
// Objects outside the catalog and ints outside 0..255 do not survive a pack,
// which is exactly what modded parts look like to the real game.
type FakeEngine struct {
	Catalog *catalog.Catalog

	// FailPack makes Pack return ErrSimulated.
	FailPack bool

	packCalls   atomic.Int64
	unpackCalls atomic.Int64
}

// NewFakeEngine creates a FakeEngine over a catalog.
func NewFakeEngine(c *catalog.Catalog) *FakeEngine {
	return &FakeEngine{Catalog: c}
}

// PackCalls returns how many times Pack was called.
func (e *FakeEngine) PackCalls() int64 {
	return e.packCalls.Load()
}

// UnpackCalls returns how many times Unpack was called.
func (e *FakeEngine) UnpackCalls() int64 {
	return e.unpackCalls.Load()
}

// Pack serializes the catalog-backed part of rec.
func (e *FakeEngine) Pack(rec model.Record) ([]byte, error) {
	e.packCalls.Add(1)
	if e.FailPack {
		return nil, ErrSimulated
	}

	buf := make([]byte, 0, crypto.SerialMaxLen)
	if rec.Kind() == model.KindWeapon {
		buf = append(buf, WeaponMarker)
	} else {
		buf = append(buf, ItemMarker)
	}
	buf = append(buf, packedKeyHeader[:]...)
	buf = append(buf, crypto.PadByte, crypto.PadByte)

	table := fields.For(rec.Kind())
	for _, f := range table.Selected(table.Mask()) {
		v := rec.Field(f.Name)
		if f.IsInt {
			n, _ := v.Int()
			buf = append(buf, byte(n))
			continue
		}

		var idx uint16
		if p, ok := e.Catalog.Lookup(v.PathName()); ok && !v.IsNone() {
			idx = uint16(p.Index() + 1)
		}
		buf = binary.BigEndian.AppendUint16(buf, idx)
	}
	return crypto.PadSerial(buf), nil
}

// Unpack rebuilds a record. Indexes outside the catalog make it fail, like a
// serial from another game build would.
func (e *FakeEngine) Unpack(serial []byte) (model.Record, bool) {
	e.unpackCalls.Add(1)
	if len(serial) != crypto.SerialMaxLen {
		return nil, false
	}

	kind := model.KindItem
	if serial[0]&0x80 != 0 {
		kind = model.KindWeapon
	}
	rec := model.NewDefinition(kind)

	pos := 7
	table := fields.For(kind)
	for _, f := range table.Selected(table.Mask()) {
		if f.IsInt {
			rec.SetField(f.Name, model.Int(int32(serial[pos])))
			pos++
			continue
		}

		idx := int(binary.BigEndian.Uint16(serial[pos:]))
		pos += 2
		if idx == 0 {
			rec.SetField(f.Name, model.None())
			continue
		}
		p, ok := e.Catalog.At(idx - 1)
		if !ok {
			return nil, false
		}
		rec.SetField(f.Name, model.Ref(p))
	}
	return rec, true
}
