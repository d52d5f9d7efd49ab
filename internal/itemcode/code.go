package itemcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const moddedKeyword = "MODDED"

var (
	ErrNoMatch   = errors.New("no item code found")
	ErrWrongGame = errors.New("item code belongs to another game")
	ErrMalformed = errors.New("malformed item code")
	ErrRoundTrip = errors.New("native serial round trip failed")
)

// <ident>(<serial>) or <ident>MODDED[<serial>|<ext>], case-insensitive.
var reItemCode = regexp.MustCompile(`(?i)^(\w+)(?:\((.+?)\)|MODDED\[(.+?)\|(.+?)\])$`)

// Code is the textual item code split into its sections. Sections are still base64.
type Code struct {
	Ident  string
	Serial string
	Ext    string // empty for vanilla codes
}

// Modded reports whether the code carries an extension block.
func (c Code) Modded() bool {
	return c.Ext != ""
}

// Parse splits a code into its sections. Surrounding whitespace is ignored.
func Parse(text string) (Code, error) {
	m := reItemCode.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Code{}, ErrNoMatch
	}

	c := Code{Ident: m[1], Serial: m[2]}
	if c.Serial == "" {
		c.Serial, c.Ext = m[3], m[4]
	}
	return c, nil
}

// Decode base64-decodes both sections. ext is nil for vanilla codes.
func (c Code) Decode() (serial, ext []byte, err error) {
	serial, err = base64.StdEncoding.Strict().DecodeString(c.Serial)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: serial base64: %w", ErrMalformed, err)
	}
	if !c.Modded() {
		return serial, nil, nil
	}
	ext, err = base64.StdEncoding.Strict().DecodeString(c.Ext)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: extension base64: %w", ErrMalformed, err)
	}
	return serial, ext, nil
}

// Format composes a code. A nil or empty ext yields the vanilla form.
func Format(prefix string, serial, ext []byte) string {
	base := base64.StdEncoding.EncodeToString(serial)
	if len(ext) == 0 {
		return prefix + "(" + base + ")"
	}
	return prefix + moddedKeyword + "[" + base + "|" + base64.StdEncoding.EncodeToString(ext) + "]"
}
