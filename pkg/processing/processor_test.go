package processing

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage creates a simple gradient test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8((x * 255) / width), uint8((y * 255) / height), 128, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeFormat(t *testing.T) {
	for in, want := range map[string]string{"": "jpg", "JPEG": "jpg", ".jpg": "jpg", "png": "png", "WebP": "webp"} {
		got, err := NormalizeFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := NormalizeFormat("tiff")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	p := NewProcessor()

	img, format, err := p.Decode(encodePNG(t, createTestImage(40, 30)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 40, img.Bounds().Dx())

	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, createTestImage(40, 30), &webp.Options{Lossless: true}))
	img, format, err = p.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 30, img.Bounds().Dy())

	_, _, err = p.Decode(nil)
	assert.Error(t, err)

	_, _, err = p.Decode([]byte("nope"))
	assert.Error(t, err)
}

func TestDecodeConfigReadsHeaderOnly(t *testing.T) {
	p := NewProcessor()

	cfg, format, err := p.DecodeConfig(encodePNG(t, createTestImage(40, 30)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)

	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, createTestImage(12, 10), &webp.Options{Lossless: true}))
	cfg, format, err = p.DecodeConfig(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 12, cfg.Width)

	_, _, err = p.DecodeConfig(nil)
	assert.Error(t, err)
	_, _, err = p.DecodeConfig([]byte("nope"))
	assert.Error(t, err)
}

func TestEncodeFormats(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(64, 36)

	data, err := p.Encode(img, "jpg", 80)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)

	data, err = p.Encode(img, "png", 0)
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)

	data, err = p.Encode(img, "webp", 90)
	require.NoError(t, err)
	decoded, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 36, decoded.Bounds().Dy())

	_, err = p.Encode(img, "bmp", 90)
	assert.Error(t, err)
}

func TestLoadImageAndSave(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "photo.png")

	require.NoError(t, p.SaveBytes(encodePNG(t, createTestImage(20, 10)), path))

	img, format, err := p.LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 20, img.Bounds().Dx())

	_, _, err = p.LoadImage(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadImageFromURL(t *testing.T) {
	payload := encodePNG(t, createTestImage(8, 8))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(payload)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewProcessor()

	data, err := p.ReadSource(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = p.LoadImageFromURL(context.Background(), srv.URL+"/page")
	assert.ErrorContains(t, err, "does not point to an image")

	_, err = p.LoadImageFromURL(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")

	_, err = p.LoadImageFromURL(context.Background(), "ftp://example.com/a.png")
	assert.ErrorContains(t, err, "unsupported URL scheme")
}

func TestLoadImageFromURLHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewProcessor().ReadSource(ctx, srv.URL+"/slow.png")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestInfo(t *testing.T) {
	info := NewProcessor().Info(createTestImage(400, 300), "png")
	assert.Equal(t, 400, info.Width)
	assert.Equal(t, 300, info.Height)
	assert.Equal(t, 120000, info.Area)
	assert.InDelta(t, 4.0/3.0, info.AspectRatio, 1e-9)
	assert.Equal(t, "png", info.Format)
}
