package asset

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoad_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logozcnl.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t), 0o600))

	img, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, KindPNG, img.Kind)
	assert.Equal(t, path, img.Location)
	assert.NotEmpty(t, img.Bytes)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "Img", "logozcnl.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAssetNotFound)
	assert.Contains(t, err.Error(), "logozcnl.png")
}

func TestLoad_EmptyLocation(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.svg")
	require.NoError(t, os.WriteFile(path, []byte("<svg></svg>"), 0o600))

	_, err := NewLoader(nil).Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_Remote(t *testing.T) {
	logo := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(logo)
		case "/broken.png":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loader := NewLoader(nil)

	img, err := loader.Load(context.Background(), srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, KindPNG, img.Kind)
	assert.Equal(t, logo, img.Bytes)

	_, err = loader.Load(context.Background(), srv.URL+"/missing.png")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = loader.Load(context.Background(), srv.URL+"/broken.png")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAssetNotFound)
	assert.Contains(t, err.Error(), "status 403")
}

func TestDetectKind(t *testing.T) {
	kind, err := detectKind("logo.JPG?v=2", []byte("not really an image"))
	require.NoError(t, err)
	assert.Equal(t, KindJPEG, kind)

	kind, err = detectKind("logo", pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, KindPNG, kind)
}
