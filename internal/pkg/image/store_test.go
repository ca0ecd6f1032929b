package image

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DownloadsOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := NewLocalStore(&Config{Dir: filepath.Join(dir, "img"), PublicURL: "/images/"})
	ctx := context.Background()

	url, err := s.Resolve(ctx, srv.URL+"/00123_r.jpg", "123")
	require.NoError(t, err)
	assert.Equal(t, "/images/123.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "img", "123.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	url, err = s.Resolve(ctx, srv.URL+"/00123_r.jpg", "123")
	require.NoError(t, err)
	assert.Equal(t, "/images/123.jpg", url)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestResolve_Failures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	s := NewLocalStore(&Config{Dir: dir, PublicURL: "/images"})

	_, err := s.Resolve(context.Background(), srv.URL+"/missing.jpg", "7")
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = s.Resolve(context.Background(), srv.URL, "../etc")
	assert.Error(t, err)
}
