package model

import (
	"fmt"
	"strings"
)

// Object — ссылка на live-объект движка (part, balance, manufacturer, ...).
// Кодек использует только полный path name объекта.
type Object interface {
	PathName() string
}

// ValueKind определяет вариант Value.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueObject
)

// String returns human-readable value kind name.
func (k ValueKind) String() string {
	switch k {
	case ValueNone:
		return "None"
	case ValueInt:
		return "Int"
	case ValueObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Value is a definition record slot value: nothing, an int32, or an object reference.
// The zero Value is None.
type Value struct {
	kind ValueKind
	i    int32
	obj  Object
}

// None returns the empty value (null object reference).
func None() Value {
	return Value{}
}

// Int wraps an integer slot value.
func Int(v int32) Value {
	return Value{kind: ValueInt, i: v}
}

// Ref wraps an object reference. A nil object yields None.
func Ref(obj Object) Value {
	if obj == nil {
		return Value{}
	}
	return Value{kind: ValueObject, obj: obj}
}

// Kind returns which variant the value holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNone reports whether the value is empty.
func (v Value) IsNone() bool {
	return v.kind == ValueNone
}

// Int returns the integer payload.
func (v Value) Int() (int32, bool) {
	return v.i, v.kind == ValueInt
}

// Object returns the referenced object.
func (v Value) Object() (Object, bool) {
	return v.obj, v.kind == ValueObject
}

// PathName returns the referenced object's path name, or "" for non-object values.
func (v Value) PathName() string {
	if v.kind != ValueObject {
		return ""
	}
	return v.obj.PathName()
}

// Equal сравнивает значения.
// Объекты сравниваются по path name без учёта регистра (object lookup в движке case-insensitive).
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueInt:
		return v.i == other.i
	case ValueObject:
		return strings.EqualFold(v.obj.PathName(), other.obj.PathName())
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValueInt:
		return fmt.Sprintf("%d", v.i)
	case ValueObject:
		return v.obj.PathName()
	default:
		return "None"
	}
}
