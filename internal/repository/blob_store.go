package repository

import (
	"context"
	"io"
	"net/url"
	"path"
)

// BlobStore — внешнее объектное хранилище: bucket + key, наружу отдаётся
// публичный URL.
type BlobStore interface {
	Upload(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, bucket, key string) error
}

// ObjectKeyFromURL извлекает ключ объекта из сохранённого file_url.
// Ключи генерируются плоскими (без разделителей пути), поэтому последний
// сегмент пути и есть ключ.
func ObjectKeyFromURL(fileURL string) string {
	if fileURL == "" {
		return ""
	}
	if u, err := url.Parse(fileURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(fileURL)
}
