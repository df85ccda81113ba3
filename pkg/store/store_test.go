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

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"a.yaml", "a.yaml", true},
		{"runs/1/a.yaml", "runs/1/a.yaml", true},
		{"runs/./a.yaml", "runs/a.yaml", true},
		{"runs/../a.yaml", "a.yaml", true},
		{"", "", false},
		{"../a.yaml", "", false},
		{"runs/../../a.yaml", "", false},
		{"/etc/passwd", "", false},
		{`runs\a.yaml`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanName(tt.name)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, ErrInvalidName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	st, err := Open(dir, S3Options{})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, st)
	assert.Equal(t, dir, st.(*FileStore).Root())

	st, err = Open("file://"+filepath.ToSlash(dir), S3Options{})
	require.NoError(t, err)
	assert.Equal(t, dir, st.(*FileStore).Root())

	st, err = Open("s3://bucket/snaps", S3Options{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true})
	require.NoError(t, err)
	require.IsType(t, &S3Store{}, st)
	assert.Equal(t, "bucket", st.(*S3Store).Bucket())
	assert.Equal(t, "snaps/", st.(*S3Store).prefix)

	_, err = Open("s3:///snaps", S3Options{})
	assert.Equal(t, "E304", errors.Code(err))

	_, err = Open("http://example.com/snaps", S3Options{})
	assert.Equal(t, "E304", errors.Code(err))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in, root, name string
	}{
		{"snaps/a.yaml", "snaps", "a.yaml"},
		{"a.yaml", ".", "a.yaml"},
		{"s3://bucket/snaps/a.yaml", "s3://bucket/snaps", "a.yaml"},
		{"s3://bucket/a.yaml", "s3://bucket", "a.yaml"},
		{"file:///tmp/snaps/a.yaml", "file:///tmp/snaps", "a.yaml"},
	}
	for _, tt := range tests {
		root, name := Split(tt.in)
		assert.Equal(t, tt.root, root, tt.in)
		assert.Equal(t, tt.name, name, tt.in)
	}
}

func TestFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("tag: div\n"), 0o644))

	data, err := Fetch(context.Background(), filepath.Join(dir, "a.yaml"), S3Options{})
	require.NoError(t, err)
	assert.Equal(t, "tag: div\n", string(data))

	_, err = Fetch(context.Background(), filepath.Join(dir, "b.yaml"), S3Options{})
	assert.True(t, stderrors.Is(err, ErrNotFound))
}
