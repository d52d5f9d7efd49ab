package itemcode

// Result is the outcome of unpacking an item code.
// Only Full* and Partial* results come with a usable record.
type Result uint8

const (
	// NoMatch — в строке нет item code.
	NoMatch Result = iota
	// WrongGame — код с префиксом другой игры.
	WrongGame
	// MalformedCode — invalid base64, bad length, bad checksum, broken extension block.
	MalformedCode
	// GameRejectedCode — код структурно корректен, но native unpack его отверг
	// (чаще всего из-за вручную изменённого префикса).
	GameRejectedCode
	FullWeapon
	FullItem
	// PartialWeapon — оружие распаковано, но часть modded replacements не нашлась.
	PartialWeapon
	PartialItem
)

// String returns human-readable result name.
func (r Result) String() string {
	switch r {
	case NoMatch:
		return "NoMatch"
	case WrongGame:
		return "WrongGame"
	case MalformedCode:
		return "MalformedCode"
	case GameRejectedCode:
		return "GameRejectedCode"
	case FullWeapon:
		return "FullWeapon"
	case FullItem:
		return "FullItem"
	case PartialWeapon:
		return "PartialWeapon"
	case PartialItem:
		return "PartialItem"
	default:
		return "Unknown"
	}
}

// OK reports whether the result carries a record.
func (r Result) OK() bool {
	return r >= FullWeapon && r <= PartialItem
}

// IsWeapon reports whether a record-carrying result is a weapon.
func (r Result) IsWeapon() bool {
	return r == FullWeapon || r == PartialWeapon
}

// IsPartial reports whether some replacements could not be applied.
func (r Result) IsPartial() bool {
	return r == PartialWeapon || r == PartialItem
}

func unpacked(weapon, full bool) Result {
	switch {
	case weapon && full:
		return FullWeapon
	case weapon:
		return PartialWeapon
	case full:
		return FullItem
	default:
		return PartialItem
	}
}
