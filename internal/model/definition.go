package model

import (
	"maps"
	"slices"
)

// Kind — тип definition data: оружие или всё остальное (щиты, гранаты, class mods, ...).
type Kind uint8

const (
	KindWeapon Kind = iota
	KindItem
)

// String returns human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindWeapon:
		return "Weapon"
	case KindItem:
		return "Item"
	default:
		return "Unknown"
	}
}

// Record is the structural definition data produced and consumed by the native
// pack/unpack primitives. The codec only touches the named slots listed in the
// field tables; everything else is host state it passes through.
type Record interface {
	Kind() Kind
	Field(name string) Value
	SetField(name string, v Value)
}

// Definition — map-backed Record.
// Используется каталогом, CLI и тестами; хост может передавать свою реализацию Record.
type Definition struct {
	kind   Kind
	fields map[string]Value
}

// NewDefinition creates an empty definition of the given kind.
func NewDefinition(kind Kind) *Definition {
	return &Definition{
		kind:   kind,
		fields: make(map[string]Value),
	}
}

// Kind returns the definition kind.
func (d *Definition) Kind() Kind {
	return d.kind
}

// Field returns the slot value, None if never set.
func (d *Definition) Field(name string) Value {
	return d.fields[name]
}

// SetField assigns a slot value.
func (d *Definition) SetField(name string, v Value) {
	d.fields[name] = v
}

// FieldNames returns the names of all assigned slots in sorted order.
func (d *Definition) FieldNames() []string {
	return slices.Sorted(maps.Keys(d.fields))
}

// Clone returns an independent copy. Referenced objects are shared.
func (d *Definition) Clone() *Definition {
	return &Definition{
		kind:   d.kind,
		fields: maps.Clone(d.fields),
	}
}
