package stash

import (
	"github.com/fxamacker/cbor/v2"
)

// encMode — Core Deterministic Encoding: одинаковый Entry всегда даёт одинаковые байты.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// KSUIDs are stored as their base62 text form.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	// Unix seconds would drop sub-second precision of CreatedAt.
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("stash: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("stash: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshalEntry(e Entry) ([]byte, error) {
	return encMode.Marshal(e)
}

func unmarshalEntry(data []byte) (Entry, error) {
	var e Entry
	err := decMode.Unmarshal(data, &e)
	return e, err
}
