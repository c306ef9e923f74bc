package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

// pngHeader сигнатура PNG и начало IHDR чанка.
var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01}

func TestReadPhoto_PNG(t *testing.T) {
	photo, err := ReadPhoto("lubang.png", bytes.NewReader(pngHeader), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", photo.MIME)
	assert.Equal(t, "lubang.png", photo.Name)
	assert.Equal(t, pngHeader, photo.Data)
}

func TestReadPhoto_JPEGExtensionAlias(t *testing.T) {
	photo, err := ReadPhoto("jalan.jpeg", bytes.NewReader(jpegHeader), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", photo.MIME)
}

func TestReadPhoto_AddsMissingExtension(t *testing.T) {
	photo, err := ReadPhoto("camera-upload", bytes.NewReader(jpegHeader), 0)
	require.NoError(t, err)
	assert.Equal(t, "camera-upload.jpg", photo.Name)
}

func TestReadPhoto_Rejects(t *testing.T) {
	cases := map[string]struct {
		name string
		data []byte
		max  int64
	}{
		"empty":          {name: "a.png", data: nil},
		"not an image":   {name: "a.png", data: []byte("just some text, definitely not a picture")},
		"ext mismatch":   {name: "a.gif", data: pngHeader},
		"too large":      {name: "a.png", data: pngHeader, max: 8},
		"pdf is unknown": {name: "a.pdf", data: []byte("%PDF-1.4\n%âãÏÓ\n")},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadPhoto(tc.name, bytes.NewReader(tc.data), tc.max)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestDetectImageMIME(t *testing.T) {
	mime, err := DetectImageMIME(jpegHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	// bmp распознаётся как изображение, но сервер его не принимает
	_, err = DetectImageMIME([]byte("BM\x36\x00\x00\x00\x00\x00"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "image/bmp")
}

func TestLoadPhoto_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foto.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	photo, err := LoadPhoto(path, DefaultMaxPhotoBytes)
	require.NoError(t, err)
	assert.Equal(t, "foto.png", photo.Name)

	_, err = LoadPhoto(filepath.Join(t.TempDir(), "missing.png"), DefaultMaxPhotoBytes)
	assert.True(t, apperror.IsValidation(err))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "photo", sanitizeFilename(""))
}
