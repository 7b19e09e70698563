package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// storageKey строит плоский ключ объекта: временная метка и случайный
// префикс исключают коллизии, очищенное имя сохраняет читаемость.
// Разделителей пути в ключе нет — последний сегмент URL всегда равен ключу.
func storageKey(fileName string) string {
	return fmt.Sprintf("%d_%s_%s",
		time.Now().UnixNano(),
		uuid.New().String()[:8],
		sanitizeFileName(fileName),
	)
}

func sanitizeFileName(name string) string {
	// Обратные слэши приводим к "/" до Base: на Linux "\" не разделитель,
	// и windows-путь иначе пролез бы целиком.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}

	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "file"
	}

	return cleaned
}
