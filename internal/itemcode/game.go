package itemcode

import (
	"fmt"
	"strings"
)

// Game identifies the game build a code belongs to.
type Game uint8

const (
	BL2 Game = iota
	TPS
	AoDK
)

// Prefix returns the identifier written in front of codes we produce.
func (g Game) Prefix() string {
	switch g {
	case BL2:
		return "BL2"
	case TPS:
		return "BLOZ"
	case AoDK:
		return "AODK"
	default:
		return ""
	}
}

// String returns human-readable game name.
func (g Game) String() string {
	switch g {
	case BL2:
		return "BL2"
	case TPS:
		return "TPS"
	case AoDK:
		return "AoDK"
	default:
		return fmt.Sprintf("Game(%d)", uint8(g))
	}
}

// accepted returns every prefix the game reads. TPS codes have circulated as both BLOZ and BLTPS.
func (g Game) accepted() []string {
	if g == TPS {
		return []string{"BLOZ", "BLTPS"}
	}
	return []string{g.Prefix()}
}

// Accepts reports whether a code identifier belongs to the game.
// The identifier only has to start with an accepted prefix, ignoring case.
func (g Game) Accepts(ident string) bool {
	for _, p := range g.accepted() {
		if len(ident) >= len(p) && strings.EqualFold(ident[:len(p)], p) {
			return true
		}
	}
	return false
}

// ParseGame parses a game name or code prefix ("bl2", "tps", "bloz", "aodk").
func ParseGame(s string) (Game, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BL2":
		return BL2, nil
	case "TPS", "BLOZ", "BLTPS":
		return TPS, nil
	case "AODK":
		return AoDK, nil
	default:
		return 0, fmt.Errorf("unknown game %q", s)
	}
}

// UnmarshalText lets Game be used directly in config files and flags.
func (g *Game) UnmarshalText(text []byte) error {
	parsed, err := ParseGame(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// MarshalText returns the canonical game name.
func (g Game) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(g.String())), nil
}
