package zdict

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	assert.Equal(t, DefaultHash, d.Hash().String())
	assert.LessOrEqual(t, len(d.Bytes()), MaxSize)
	assert.Equal(t, strings.ToUpper(string(d.Bytes())), string(d.Bytes()), "dictionary is upper-case like encoded paths")

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, d, again, "default dictionary is loaded once")
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = New(make([]byte, MaxSize+1))
	assert.ErrorIs(t, err, ErrTooLarge)

	src := []byte("GD_WEAP_SHOTGUN.")
	d, err := New(src)
	require.NoError(t, err)
	src[0] = 'X'
	assert.Equal(t, byte('G'), d.Bytes()[0], "New must copy its input")
}

func TestVerify(t *testing.T) {
	d, err := New([]byte("GD_SHIELDS."))
	require.NoError(t, err)

	assert.NoError(t, d.Verify(d.Hash().String()))

	other := Sum([]byte("GD_GRENADEMODS."))
	assert.ErrorIs(t, d.Verify(other.String()), ErrHashMismatch)

	assert.Error(t, d.Verify("zz"))
	assert.Error(t, d.Verify("abcd"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zdict")
	require.NoError(t, os.WriteFile(path, []byte("GD_CLASSMODS."), 0o600))

	want := Sum([]byte("GD_CLASSMODS.")).String()

	d, err := Load(path, want)
	require.NoError(t, err)
	assert.Equal(t, want, d.Hash().String())

	d, err = Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, want, d.Hash().String())

	_, err = Load(path, DefaultHash)
	assert.ErrorIs(t, err, ErrHashMismatch)

	_, err = Load(filepath.Join(dir, "missing"), "")
	assert.Error(t, err)
}

func TestBuild_ReproducesDefault(t *testing.T) {
	f, err := os.Open("testdata/parts.txt")
	require.NoError(t, err)
	defer f.Close()

	names, err := ReadPartNames(f)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	got := Build(names, BuildOptions{})
	assert.Equal(t, DefaultHash, Sum(got).String(), "embedded dictionary is generated from testdata/parts.txt")
}

func TestBuild_Properties(t *testing.T) {
	var names []string
	for _, m := range []string{"Bandit", "Dahl", "Jakobs", "Maliwan", "Torgue", "Vladof", "Hyperion", "Tediore"} {
		names = append(names,
			"GD_Weap_Shotgun.Barrel.SG_Barrel_"+m,
			"GD_Weap_Shotgun.Body.SG_Body_"+m,
		)
	}

	dict := Build(names, BuildOptions{})
	require.NotEmpty(t, dict)
	assert.True(t, bytes.Contains(dict, []byte("GD_WEAP_SHOTGUN.")), "common prefix must be kept: %q", dict)
	assert.False(t, bytes.Contains(dict, []byte("JAKOBS")), "substrings used once must be dropped")

	assert.Equal(t, dict, Build(names, BuildOptions{}), "build must be deterministic")

	small := Build(names, BuildOptions{TargetSize: 4})
	assert.Less(t, len(small), len(dict))
}

func TestPrependOverlapping(t *testing.T) {
	assert.Equal(t, "ABCDEF", prependOverlapping("CDEF", "ABCD"))
	assert.Equal(t, "XYZCDEF", prependOverlapping("CDEF", "XYZ"))
	assert.Equal(t, "ABC", prependOverlapping("", "ABC"))
}

func TestReadPartNames(t *testing.T) {
	names, err := ReadPartNames(strings.NewReader("# header\n\n  GD_A.B  \nGD_C.D\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GD_A.B", "GD_C.D"}, names)
}
