package store

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vdiff/internal/errors"
)

func TestFileStorePutGet(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(filepath.Join(t.TempDir(), "snaps"))
	require.NoError(t, err)

	require.NoError(t, st.Put(ctx, "runs/1/old.yaml", []byte("tag: div\n")))
	require.NoError(t, st.Put(ctx, "runs/1/old.yaml", []byte("tag: span\n")))

	data, err := st.Get(ctx, "runs/1/old.yaml")
	require.NoError(t, err)
	assert.Equal(t, "tag: span\n", string(data))

	_, err = os.Stat(filepath.Join(st.Root(), "runs", "1", "old.yaml"))
	assert.NoError(t, err)
}

func TestFileStoreNotFound(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = st.Get(context.Background(), "missing.yaml")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.Equal(t, "E301", errors.Code(err))
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	st, err := NewFileStore(filepath.Join(parent, "root"))
	require.NoError(t, err)

	err = st.Put(ctx, "../escape.yaml", []byte("x"))
	assert.True(t, stderrors.Is(err, ErrInvalidName))
	_, statErr := os.Stat(filepath.Join(parent, "escape.yaml"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = st.Get(ctx, "/etc/hosts")
	assert.True(t, stderrors.Is(err, ErrInvalidName))
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"b.yaml", "a.yaml", "runs/2.yaml", "runs/1.yaml"} {
		require.NoError(t, st.Put(ctx, name, []byte("text: x\n")))
	}
	require.NoError(t, os.WriteFile(filepath.Join(st.Root(), tempPrefix+"partial"), nil, 0o644))

	all, err := st.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.yaml", "b.yaml", "runs/1.yaml", "runs/2.yaml"}, all)

	runs, err := st.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/1.yaml", "runs/2.yaml"}, runs)
}

func TestFileStoreCanceledContext(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, st.Put(ctx, "a.yaml", nil), context.Canceled)
	_, err = st.Get(ctx, "a.yaml")
	assert.ErrorIs(t, err, context.Canceled)
}
