package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetDefault(t *testing.T) {
	t.Helper()
	SetDefault(nil)
	t.Cleanup(func() {
		Close()
		SetDefault(nil)
	})
}

func TestDefaultLogger(t *testing.T) {
	resetDefault(t)

	l := Default()
	require.NotNil(t, l)
	assert.Same(t, l, Default())
	assert.Nil(t, l.redactor)
}

func TestPackageLevelWritesVerbatim(t *testing.T) {
	resetDefault(t)

	path := filepath.Join(t.TempDir(), "verbatim.log")
	require.NoError(t, Init(path))
	Writef("auth token=%s user=%s", "abcdefghijklmnopqrstuvwxyz", "bob")
	Writef("password=%s secret=%s", "hunter2", "s3cr3t")
	Writef("Authorization: Bearer %s", "abc.def.ghi")
	require.NoError(t, Close())

	assert.Equal(t,
		"auth token=abcdefghijklmnopqrstuvwxyz user=bob\n"+
			"password=hunter2 secret=s3cr3t\n"+
			"Authorization: Bearer abc.def.ghi\n",
		readFile(t, path))
}

func TestPackageLevelLifecycle(t *testing.T) {
	resetDefault(t)

	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.log")
	pathB := filepath.Join(dir, "b.log")

	assert.NotPanics(t, func() {
		Writef("before init %d", 0)
	})

	require.NoError(t, Init(pathA))
	Writef("value=%d", 42)
	require.NoError(t, Close())
	require.NoError(t, Close())

	require.NoError(t, Init(pathB))
	Writef("R2")
	require.NoError(t, Close())

	assert.Equal(t, "value=42\n", readFile(t, pathA))
	assert.Equal(t, "R2\n", readFile(t, pathB))
}

func TestSetDefault(t *testing.T) {
	resetDefault(t)

	custom, _ := newTestLogger(t, Config{Prefix: true})
	SetDefault(custom)

	assert.Same(t, custom, Default())
}
