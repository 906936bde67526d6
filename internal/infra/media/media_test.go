package media

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pixel = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		ext     string
		wantErr bool
	}{
		{name: "png", in: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pixel), ext: "png"},
		{name: "upper case type", in: "data:image/JPEG;base64," + base64.StdEncoding.EncodeToString(pixel), ext: "jpeg"},
		{name: "not an image", in: "data:text/plain;base64,aGVsbG8=", wantErr: true},
		{name: "unsupported", in: "data:image/tiff;base64,aGVsbG8=", wantErr: true},
		{name: "broken base64", in: "data:image/png;base64,!!!", wantErr: true},
		{name: "plain url", in: "http://example.com/a.png", wantErr: true},
		{name: "empty payload", in: "data:image/png;base64,", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, data, err := DecodeDataURI(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, pixel, data)
		})
	}
}

func TestFileName(t *testing.T) {
	a, b := FileName("recipes", "png"), FileName("recipes", "png")
	assert.True(t, strings.HasPrefix(a, "recipes/"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
}

func TestFileStore(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root, "http://localhost/media/")
	ctx := context.Background()

	url, err := s.Save(ctx, "users/a.png", pixel)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/media/users/a.png", url)

	data, err := os.ReadFile(filepath.Join(root, "users", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, pixel, data)

	require.NoError(t, s.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(root, "users", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление и чужие адреса — не ошибка
	assert.NoError(t, s.Delete(ctx, url))
	assert.NoError(t, s.Delete(ctx, "https://cdn.example/users/a.png"))
	assert.NoError(t, s.Delete(ctx, "http://localhost/media/../etc/passwd"))
}
