package ioutils

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name             string
		srcW, srcH, want int
		wantH            int
	}{
		{"square", 1000, 1000, 500, 500},
		{"landscape", 1200, 1000, 500, 417},
		{"portrait", 600, 900, 300, 450},
		{"upscale", 100, 50, 500, 250},
		{"sliver", 10000, 1, 500, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ScaledSize(tt.srcW, tt.srcH, tt.want)
			assert.Equal(t, tt.want, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestImageService_ResizeFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cover.orig")
	dst := filepath.Join(dir, "cover_100.jpeg")
	writePNG(t, src, 400, 200)

	svc := NewImageService()
	require.NoError(t, svc.ResizeFile(context.Background(), src, dst, 100))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err, "output must be JPEG")
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestImageService_ResizeFile_UndecodableSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cover.orig")
	dst := filepath.Join(dir, "cover_100.jpeg")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0644))

	err := NewImageService().ResizeFile(context.Background(), src, dst, 100)
	require.Error(t, err)

	ok, statErr := Exists(dst)
	require.NoError(t, statErr)
	assert.False(t, ok)
}

func TestImageService_ResizeFile_InvalidWidth(t *testing.T) {
	err := NewImageService().ResizeFile(context.Background(), "a", "b", 0)
	assert.Error(t, err)
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}
