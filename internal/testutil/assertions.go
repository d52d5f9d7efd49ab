package testutil

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/udisondev/itemcode/internal/fields"
	"github.com/udisondev/itemcode/internal/model"
)

// RecordSlots снимает значения всех слотов таблицы в виде строк.
// Path names upper-cased: object lookup в игре case-insensitive.
func RecordSlots(rec model.Record, table fields.Table) map[string]string {
	out := make(map[string]string, len(table))
	for _, f := range table {
		v := rec.Field(f.Name)
		out[f.Name] = v.Kind().String() + ":" + strings.ToUpper(v.String())
	}
	return out
}

// AssertSameSlots проверяет, что два record совпадают на каждом слоте таблицы их kind.
func AssertSameSlots(t testing.TB, want, got model.Record) {
	t.Helper()

	if got == nil {
		t.Fatalf("record is nil, want %s", want.Kind())
	}
	if want.Kind() != got.Kind() {
		t.Fatalf("record kind mismatch: expected %s, got %s", want.Kind(), got.Kind())
	}

	table := fields.For(want.Kind())
	if diff := cmp.Diff(RecordSlots(want, table), RecordSlots(got, table)); diff != "" {
		t.Fatalf("record slots mismatch (-want +got):\n%s", diff)
	}
}

// AssertSerialLength проверяет длину serial после декодирования.
func AssertSerialLength(t testing.TB, expected int, serial []byte) {
	t.Helper()

	if len(serial) != expected {
		t.Fatalf("serial length mismatch: expected %d bytes, got %d bytes\n%s",
			expected, len(serial), DumpSerial(serial))
	}
}

// DumpSerial возвращает hex dump буфера для отладки.
func DumpSerial(serial []byte) string {
	var buf bytes.Buffer
	for i := 0; i < len(serial); i += 16 {
		end := min(i+16, len(serial))
		chunk := serial[i:end]

		// Offset
		fmt.Fprintf(&buf, "%04x  ", i)

		// Hex
		for j, b := range chunk {
			if j == 8 {
				buf.WriteString(" ")
			}
			fmt.Fprintf(&buf, "%02x ", b)
		}

		// Padding
		for j := len(chunk); j < 16; j++ {
			if j == 8 {
				buf.WriteString(" ")
			}
			buf.WriteString("   ")
		}

		// ASCII
		buf.WriteString(" |")
		for _, b := range chunk {
			if b >= 32 && b <= 126 {
				buf.WriteByte(b)
			} else {
				buf.WriteByte('.')
			}
		}
		buf.WriteString("|\n")
	}
	return buf.String()
}
