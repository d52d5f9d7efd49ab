package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/itemcode/internal/fields"
	"github.com/udisondev/itemcode/internal/itemcode"
	"github.com/udisondev/itemcode/internal/replacement"
	"github.com/udisondev/itemcode/internal/testutil"
	"github.com/udisondev/itemcode/internal/zdict"
)

// writeConfig creates a config that keeps the stash inside the test's temp dir.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "itemcode.yaml")
	cfg := fmt.Sprintf("game: bl2\nlog_level: error\nstash:\n  backend: pebble\n  dir: %s\n%s", filepath.Join(dir, "stash"), extra)
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func execute(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	var out bytes.Buffer
	err := run(ctx, append([]string{"--config", cfgPath}, args...), strings.NewReader(stdin), &out)
	return out.String(), err
}

func vanillaCode(payload ...byte) string {
	return itemcode.Format("BL2", testutil.SealedSerial(testutil.WeaponMarker, payload...), nil)
}

func moddedCode(t *testing.T, barrel string) string {
	t.Helper()
	f, ok := fields.Weapon.ByBit(9)
	require.True(t, ok)
	p := replacement.Payload{
		Mask:   f.Mask(),
		Values: []replacement.Replacement{{Field: f, Name: barrel}},
	}

	dict, err := zdict.Default()
	require.NoError(t, err)
	ext, err := replacement.NewCodec(dict).Compress(p.Marshal())
	require.NoError(t, err)
	return itemcode.Format("BL2", testutil.SealedSerial(testutil.WeaponMarker, 1, 2, 3, 4), ext)
}

func TestNormalizeCmd(t *testing.T) {
	cfg := writeConfig(t, "")
	plain := testutil.SealedSerial(testutil.WeaponMarker, 0x11, 0x22, 0x33, 0x44)
	encrypted := itemcode.Format("BL2", testutil.EncryptSerial(plain, 0x2468, 11), nil)

	out, err := execute(t, cfg, "", "normalize", encrypted)
	require.NoError(t, err)
	assert.Equal(t, itemcode.Format("BL2", plain, nil)+"\n", out)

	_, err = execute(t, cfg, "", "--game", "tps", "normalize", encrypted)
	assert.ErrorIs(t, err, itemcode.ErrWrongGame)
}

func TestInspectCmd(t *testing.T) {
	cfg := writeConfig(t, "")

	t.Run("modded code", func(t *testing.T) {
		code := moddedCode(t, "GD_Weap_Shotgun.Barrel.SG_Barrel_Jakobs")
		out, err := execute(t, cfg, "", "inspect", code)
		require.NoError(t, err)
		assert.Contains(t, out, "key:      plaintext")
		assert.Contains(t, out, "modded, mask 0x0200")
		assert.Contains(t, out, "BarrelPartDefinition")
		assert.Contains(t, out, "GD_Weap_Shotgun.Barrel.SG_Barrel_Jakobs")
		assert.NotContains(t, out, "[installed]", "no catalog configured")
	})

	t.Run("codes from stdin", func(t *testing.T) {
		stdin := vanillaCode(1, 2, 3, 4) + "\n\nBLOZ(AAAA)\n"
		out, err := execute(t, cfg, stdin, "inspect")
		assert.EqualError(t, err, "1 of 2 codes invalid")
		assert.Contains(t, out, "result:   vanilla")
		assert.Contains(t, out, "result:   WrongGame")
	})

	t.Run("catalog marks installed parts", func(t *testing.T) {
		catalogPath := filepath.Join(t.TempDir(), "parts.txt")
		require.NoError(t, os.WriteFile(catalogPath, []byte("GD_Weap_Shotgun.Barrel.SG_Barrel_Jakobs\n"), 0o644))
		withCatalog := writeConfig(t, "catalog: "+catalogPath+"\n")

		out, err := execute(t, withCatalog, "", "inspect", moddedCode(t, "gd_weap_shotgun.barrel.sg_barrel_jakobs"))
		require.NoError(t, err)
		assert.Contains(t, out, "[installed]")

		out, err = execute(t, withCatalog, "", "inspect", moddedCode(t, "Mod.Barrel.Laser"))
		require.NoError(t, err)
		assert.Contains(t, out, "[missing]")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := execute(t, cfg, "", "inspect", "--kind", "shield", vanillaCode(1, 2, 3, 4))
		assert.Error(t, err)
	})
}

func TestBatchCmd_KeepsInputOrder(t *testing.T) {
	cfg := writeConfig(t, "")

	var codes []string
	for i := range 40 {
		if i%7 == 3 {
			codes = append(codes, fmt.Sprintf("garbage %d", i))
			continue
		}
		codes = append(codes, vanillaCode(byte(i), byte(i>>8), 0x55, 0x66))
	}
	file := filepath.Join(t.TempDir(), "codes.txt")
	require.NoError(t, os.WriteFile(file, []byte(strings.Join(codes, "\n")), 0o644))

	out, err := execute(t, cfg, "", "batch", "--workers", "8", file)
	require.NoError(t, err)

	pos := -1
	for _, code := range codes {
		i := strings.Index(out, code+"\n")
		require.Greater(t, i, pos, "code %q out of order", code)
		pos = i
	}
	assert.Contains(t, out, "40 codes, 34 valid, 6 invalid")
}

func TestBatchCmd_Cancelled(t *testing.T) {
	cfg := writeConfig(t, "")
	file := filepath.Join(t.TempDir(), "codes.txt")
	require.NoError(t, os.WriteFile(file, []byte(vanillaCode(1, 2, 3, 4)+"\n"), 0o644))

	ctx, cancel := testutil.ContextWithCancel(t)
	cancel()

	var out bytes.Buffer
	err := run(ctx, []string{"--config", cfg, "batch", file}, strings.NewReader(""), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestDictCmd(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, cfg, "", "dict", "hash")
	require.NoError(t, err)
	assert.Equal(t, zdict.DefaultHash+"\n", out)

	dst := filepath.Join(t.TempDir(), "rebuilt.zdict")
	out, err = execute(t, cfg, "", "dict", "build", filepath.Join("..", "..", "internal", "zdict", "testdata", "parts.txt"), "-o", dst)
	require.NoError(t, err)
	assert.Equal(t, zdict.DefaultHash+"\n", out)

	out, err = execute(t, cfg, "", "dict", "hash", dst)
	require.NoError(t, err)
	assert.Equal(t, zdict.DefaultHash+"\n", out)
}

func TestStashCmd(t *testing.T) {
	cfg := writeConfig(t, "")
	code := vanillaCode(9, 8, 7, 6)

	out, err := execute(t, cfg, "", "stash", "add", "shotgun", code)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.Len(t, id, 27, "KSUID")

	out, err = execute(t, cfg, "", "stash", "add", "again", code)
	require.NoError(t, err)
	assert.Contains(t, out, "already stashed as "+id)

	out, err = execute(t, cfg, "", "stash", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "shotgun")

	out, err = execute(t, cfg, "", "stash", "get", id)
	require.NoError(t, err)
	assert.Equal(t, code+"\n", out)

	_, err = execute(t, cfg, "", "stash", "rm", id)
	require.NoError(t, err)

	_, err = execute(t, cfg, "", "stash", "get", id)
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warn").String())
	assert.Equal(t, "INFO", parseLogLevel("loud").String())
}
