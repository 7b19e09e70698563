package service

import (
	"errors"
	"fmt"
)

// ErrNotFound: сущность не найдена либо не принадлежит вызывающему.
// Слои выше не различают эти случаи, чтобы не раскрывать чужие ID.
var ErrNotFound = errors.New("not found")

// ValidationError — отказ на входных данных, до любых побочных эффектов.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// StorageError — отказ объектного хранилища.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError — отказ базы данных.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CleanupOutcome — результат best-effort удаления блоба при компенсации.
// Неудача НЕ делает операцию ошибочной, но должна попасть в лог.
type CleanupOutcome struct {
	Bucket string
	Key    string
	Err    error
}

func (c CleanupOutcome) Failed() bool { return c.Err != nil }
