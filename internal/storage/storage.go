// Package storage хранит загруженные картинки: в локальной папке или в бакете S3.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("object not found")

// ErrBadKey — ключ пытается выйти за пределы хранилища.
var ErrBadKey = errors.New("bad object key")

// Store — хранилище загрузок. Ключ — плоское имя файла вида <uuid>.<ext>.
type Store interface {
	Save(ctx context.Context, key, contentType string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL возвращает ссылку, по которой объект доступен клиенту.
	URL(ctx context.Context, key string) (string, error)
}

// NewKey генерирует имя объекта с расширением по content type.
func NewKey(contentType string) string {
	return uuid.NewString() + ExtFor(contentType)
}

// ExtFor подбирает расширение; всё неизвестное считается JPEG.
func ExtFor(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}

// ContentTypeFor обратна ExtFor.
func ContentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func checkKey(key string) error {
	if key == "" || key != path.Base(key) || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return ErrBadKey
	}
	return nil
}
