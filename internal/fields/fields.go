package fields

import "github.com/udisondev/itemcode/internal/model"

// Field describes one structural slot of a definition record that the modded
// extension block can carry.
type Field struct {
	Name  string
	Bit   uint8 // 0..15, position in the replacement bitmask
	IsInt bool  // true: 4-byte LE int32, false: NUL-terminated object path
}

// Mask returns the bitmask value of the field.
func (f Field) Mask() uint16 {
	return 1 << f.Bit
}

// Table — упорядоченный набор слотов для одного вида definition data.
// Порядок значим: значения в payload идут от старшего бита к младшему.
type Table []Field

// Weapon covers WeaponDefinitionData.
var Weapon = Table{
	{Name: "WeaponTypeDefinition", Bit: 15},
	{Name: "BalanceDefinition", Bit: 14},
	{Name: "ManufacturerDefinition", Bit: 13},
	{Name: "ManufacturerGradeIndex", Bit: 12, IsInt: true},
	{Name: "BodyPartDefinition", Bit: 11},
	{Name: "GripPartDefinition", Bit: 10},
	{Name: "BarrelPartDefinition", Bit: 9},
	{Name: "SightPartDefinition", Bit: 8},
	{Name: "StockPartDefinition", Bit: 7},
	{Name: "ElementalPartDefinition", Bit: 6},
	{Name: "Accessory1PartDefinition", Bit: 5},
	{Name: "Accessory2PartDefinition", Bit: 4},
	{Name: "MaterialPartDefinition", Bit: 3},
	{Name: "PrefixPartDefinition", Bit: 2},
	{Name: "TitlePartDefinition", Bit: 1},
	{Name: "GameStage", Bit: 0, IsInt: true},
}

// Item covers ItemDefinitionData (shields, grenades, class mods, relics, ...).
var Item = Table{
	{Name: "ItemDefinition", Bit: 15},
	{Name: "BalanceDefinition", Bit: 14},
	{Name: "ManufacturerDefinition", Bit: 13},
	{Name: "ManufacturerGradeIndex", Bit: 12, IsInt: true},
	{Name: "AlphaItemPartDefinition", Bit: 11},
	{Name: "BetaItemPartDefinition", Bit: 10},
	{Name: "GammaItemPartDefinition", Bit: 9},
	{Name: "DeltaItemPartDefinition", Bit: 8},
	{Name: "EpsilonItemPartDefinition", Bit: 7},
	{Name: "ZetaItemPartDefinition", Bit: 6},
	{Name: "EtaItemPartDefinition", Bit: 5},
	{Name: "ThetaItemPartDefinition", Bit: 4},
	{Name: "MaterialItemPartDefinition", Bit: 3},
	{Name: "PrefixItemNamePartDefinition", Bit: 2},
	{Name: "TitleItemNamePartDefinition", Bit: 1},
	{Name: "GameStage", Bit: 0, IsInt: true},
}

// For returns the table matching the record kind.
func For(kind model.Kind) Table {
	if kind == model.KindWeapon {
		return Weapon
	}
	return Item
}

// Mask returns the union of all bits the table defines.
func (t Table) Mask() uint16 {
	var m uint16
	for _, f := range t {
		m |= f.Mask()
	}
	return m
}

// ByBit returns the field at the given bit position.
func (t Table) ByBit(bit uint8) (Field, bool) {
	for _, f := range t {
		if f.Bit == bit {
			return f, true
		}
	}
	return Field{}, false
}

// Selected returns the fields whose bits are set in mask, highest bit first.
// Bits without a table entry are never returned.
func (t Table) Selected(mask uint16) []Field {
	out := make([]Field, 0, len(t))
	for bit := 15; bit >= 0; bit-- {
		if mask&(1<<bit) == 0 {
			continue
		}
		if f, ok := t.ByBit(uint8(bit)); ok {
			out = append(out, f)
		}
	}
	return out
}
