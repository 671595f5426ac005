package gcsfetch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objects map[string]string

	mu      sync.Mutex
	open    int32
	maxOpen int32
	fail    string
}

func (m *memStore) List(_ context.Context, _ string, prefix string) ([]string, error) {
	var names []string
	for name := range m.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (m *memStore) Open(_ context.Context, _ string, name string) (io.ReadCloser, error) {
	if name == m.fail {
		return nil, eris.Errorf("no such object %s", name)
	}
	n := atomic.AddInt32(&m.open, 1)
	m.mu.Lock()
	if n > m.maxOpen {
		m.maxOpen = n
	}
	m.mu.Unlock()
	return &trackedReader{Reader: strings.NewReader(m.objects[name]), open: &m.open}, nil
}

type trackedReader struct {
	io.Reader
	open *int32
}

func (r *trackedReader) Close() error {
	atomic.AddInt32(r.open, -1)
	return nil
}

func TestFetch(t *testing.T) {
	store := &memStore{objects: map[string]string{
		"exports/":              "",
		"exports/NDVI_2016.tif": "2016",
		"exports/NDVI_2017.tif": "2017",
		"exports/Rainfall.csv":  "rain",
		"elsewhere/NDVI_S2.csv": "ignored",
	}}
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := Fetch(context.Background(), store, "bucket", "exports/", dir, 2)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "NDVI_2016.tif"),
		filepath.Join(dir, "NDVI_2017.tif"),
		filepath.Join(dir, "Rainfall.csv"),
	}, paths)

	got, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Equal(t, "rain", string(got))
	assert.LessOrEqual(t, store.maxOpen, int32(2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestFetchKeepsFolders(t *testing.T) {
	store := &memStore{objects: map[string]string{
		"exports/2016/NDVI.tif": "2016",
		"exports/2017/NDVI.tif": "2017",
	}}
	dir := t.TempDir()

	paths, err := Fetch(context.Background(), store, "bucket", "exports/", dir, 2)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "2016", "NDVI.tif"),
		filepath.Join(dir, "2017", "NDVI.tif"),
	}, paths)
	for i, want := range []string{"2016", "2017"} {
		got, err := os.ReadFile(paths[i])
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestLocalPath(t *testing.T) {
	path, err := localPath("out", "NDVI_", "NDVI_2016.tif")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "NDVI_2016.tif"), path)

	path, err = localPath("out", "exports/NDVI_", "exports/NDVI_2016.tif")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "NDVI_2016.tif"), path)

	_, err = localPath("out", "", "../escape.tif")
	assert.Error(t, err)
}

func TestFetchNothing(t *testing.T) {
	store := &memStore{objects: map[string]string{}}
	paths, err := Fetch(context.Background(), store, "bucket", "exports/", t.TempDir(), 2)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFetchError(t *testing.T) {
	store := &memStore{
		objects: map[string]string{"a/x.csv": "x", "a/y.csv": "y"},
		fail:    "a/y.csv",
	}
	dir := t.TempDir()
	_, err := Fetch(context.Background(), store, "bucket", "a/", dir, 1)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "y.csv"))
	assert.True(t, os.IsNotExist(statErr))
}
