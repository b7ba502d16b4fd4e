package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiskBackend(t *testing.T) {
	_, err := NewDiskBackend("")
	assert.Error(t, err)

	root := filepath.Join(t.TempDir(), "nested", "data")
	d, err := NewDiskBackend(root)
	require.NoError(t, err)
	require.NotNil(t, d)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDiskBackend_ReadWrite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := NewDiskBackend(root)
	require.NoError(t, err)

	data, err := d.Read(ctx, "workouts.json")
	assert.ErrorIs(t, err, ErrArtifactNotFound)
	assert.Nil(t, data)

	require.NoError(t, d.Write(ctx, "workouts.json", []byte(`[]`)))
	data, err = d.Read(ctx, "workouts.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	// overwritten as a whole
	require.NoError(t, d.Write(ctx, "workouts.json", []byte(`[{"workout_type":"run"}]`)))
	data, err = d.Read(ctx, "workouts.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"workout_type":"run"}]`, string(data))

	// no temp files left behind
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "workouts.json", entries[0].Name())
}

func TestDiskBackend_RootRemovedWhileRunning(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "data")
	d, err := NewDiskBackend(root)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(root))
	require.NoError(t, d.Write(ctx, "goal.json", []byte(`{"goal_minutes":200}`)))

	data, err := d.Read(ctx, "goal.json")
	require.NoError(t, err)
	assert.Equal(t, `{"goal_minutes":200}`, string(data))
}

func TestDiskBackend_InvalidName(t *testing.T) {
	ctx := context.Background()
	d, err := NewDiskBackend(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../escape.json", `a\b`} {
		_, err := d.Read(ctx, name)
		assert.Error(t, err, name)
		assert.NotErrorIs(t, err, ErrArtifactNotFound, name)
		assert.Error(t, d.Write(ctx, name, []byte("x")), name)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, WriteFileAtomic(path, []byte("first")))
	require.NoError(t, WriteFileAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// missing parent dir
	assert.Error(t, WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "x"), []byte("x")))
}
