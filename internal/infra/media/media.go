// Package media хранит загруженные изображения рецептов и аватары.
package media

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrBadImage = errors.New("media: invalid image data")

type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

var allowedExt = map[string]bool{
	"png": true, "jpeg": true, "jpg": true, "gif": true, "webp": true,
}

// DecodeDataURI разбирает "data:image/png;base64,...." и возвращает расширение и байты.
func DecodeDataURI(s string) (string, []byte, error) {
	header, payload, ok := strings.Cut(s, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return "", nil, ErrBadImage
	}
	ext := strings.ToLower(strings.TrimPrefix(header, "data:image/"))
	if !allowedExt[ext] {
		return "", nil, fmt.Errorf("%w: unsupported type %q", ErrBadImage, ext)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", nil, ErrBadImage
	}
	return ext, data, nil
}

// FileName — случайное имя файла в каталоге dir.
func FileName(dir, ext string) string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return dir + "/" + hex.EncodeToString(b[:]) + "." + ext
}
