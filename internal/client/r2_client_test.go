package client

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellijobs/api/internal/config"
)

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := store.Save(ctx, "u1/abc_resume.pdf", strings.NewReader("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)

	rc, err := store.Open(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, store.Delete(ctx, path))
	require.NoError(t, store.Delete(ctx, path))
	_, err = store.Open(ctx, path)
	assert.Error(t, err)
}

func TestLocalStore_KeyCannotEscape(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	path, err := store.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))
}

func TestNewR2Client_Incomplete(t *testing.T) {
	_, err := NewR2Client(&config.R2Config{AccountID: "acc"})
	assert.Error(t, err)
}

type failingReader struct {
	data []byte
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("connection reset")
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestLocalStore_SaveRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "u1/abc_resume.pdf", &failingReader{data: []byte("%PDF-1.4 trunc")}, "application/pdf")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "u1", "abc_resume.pdf"))
	assert.True(t, os.IsNotExist(statErr), "partial upload left on disk")
}

func TestNewFileStore(t *testing.T) {
	local, err := NewFileStore(&config.Config{Storage: config.StorageConfig{UploadDir: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, local)

	// a bucket without credentials is an error, never a silent local fallback
	_, err = NewFileStore(&config.Config{
		R2:      config.R2Config{BucketName: "resumes"},
		Storage: config.StorageConfig{UploadDir: t.TempDir()},
	})
	assert.Error(t, err)

	r2, err := NewFileStore(&config.Config{R2: config.R2Config{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "resumes",
	}})
	require.NoError(t, err)
	assert.IsType(t, &R2Client{}, r2)
}
