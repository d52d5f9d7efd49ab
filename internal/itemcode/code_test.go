package itemcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Code
	}{
		{
			name: "vanilla",
			text: "BL2(hwAAAABKfgCB)",
			want: Code{Ident: "BL2", Serial: "hwAAAABKfgCB"},
		},
		{
			name: "modded",
			text: "BL2MODDED[hwAAAABKfgCB|AHj5CCMp]",
			want: Code{Ident: "BL2", Serial: "hwAAAABKfgCB", Ext: "AHj5CCMp"},
		},
		{
			name: "lowercase keyword and surrounding whitespace",
			text: "  bloz" + "modded[abc|def]\n",
			want: Code{Ident: "bloz", Serial: "abc", Ext: "def"},
		},
		{
			name: "ident is any word",
			text: "BLTPS_Something(abc)",
			want: Code{Ident: "BLTPS_Something", Serial: "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Ext != "", got.Modded())
		})
	}
}

func TestParse_NoMatch(t *testing.T) {
	for _, text := range []string{
		"",
		"hello world",
		"BL2()",
		"BL2(abc",
		"BL2MODDED[abc]",
		"BL2MODDED[abc|]",
		"(abc)",
		"BL2(abc) trailing",
	} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrNoMatch, "%q", text)
	}
}

func TestCode_Decode(t *testing.T) {
	serial, ext, err := Code{Serial: "AQID", Ext: "BAU="}.Decode()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, serial)
	assert.Equal(t, []byte{4, 5}, ext)

	serial, ext, err = Code{Serial: "AQID"}.Decode()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, serial)
	assert.Nil(t, ext)

	_, _, err = Code{Serial: "AQI"}.Decode()
	assert.ErrorIs(t, err, ErrMalformed, "missing padding")

	_, _, err = Code{Serial: "AQID", Ext: "B@U="}.Decode()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "BL2(AQID)", Format("BL2", []byte{1, 2, 3}, nil))
	assert.Equal(t, "BLOZMODDED[AQID|BAU=]", Format("BLOZ", []byte{1, 2, 3}, []byte{4, 5}))
}

func TestGame(t *testing.T) {
	assert.True(t, BL2.Accepts("BL2"))
	assert.True(t, BL2.Accepts("bl2"))
	assert.False(t, BL2.Accepts("BLOZ"))
	assert.False(t, BL2.Accepts("BL"))

	assert.True(t, TPS.Accepts("BLOZ"))
	assert.True(t, TPS.Accepts("bltps"))
	assert.False(t, TPS.Accepts("BL2"))

	assert.True(t, AoDK.Accepts("AoDK"))
	assert.False(t, AoDK.Accepts("BL2"))

	assert.Equal(t, "BLOZ", TPS.Prefix())

	for in, want := range map[string]Game{"bl2": BL2, "TPS": TPS, "BLOZ": TPS, " aodk ": AoDK} {
		g, err := ParseGame(in)
		require.NoError(t, err)
		assert.Equal(t, want, g, in)
	}
	_, err := ParseGame("bl3")
	assert.Error(t, err)

	var g Game
	require.NoError(t, g.UnmarshalText([]byte("aodk")))
	assert.Equal(t, AoDK, g)
	text, err := TPS.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "tps", string(text))
}

func TestResult(t *testing.T) {
	for _, r := range []Result{NoMatch, WrongGame, MalformedCode, GameRejectedCode} {
		assert.False(t, r.OK(), r.String())
	}
	for _, r := range []Result{FullWeapon, FullItem, PartialWeapon, PartialItem} {
		assert.True(t, r.OK(), r.String())
	}

	assert.Equal(t, FullWeapon, unpacked(true, true))
	assert.Equal(t, PartialWeapon, unpacked(true, false))
	assert.Equal(t, FullItem, unpacked(false, true))
	assert.Equal(t, PartialItem, unpacked(false, false))

	assert.True(t, PartialWeapon.IsWeapon())
	assert.True(t, PartialWeapon.IsPartial())
	assert.False(t, FullItem.IsWeapon())
	assert.False(t, FullItem.IsPartial())
}
