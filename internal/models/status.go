package models

import "fmt"

// SubmissionStatus никогда не хранится в БД — всегда вычисляется
// из наличия записи и поля marks.
type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusSubmitted SubmissionStatus = "submitted"
	StatusEvaluated SubmissionStatus = "evaluated"
)

func (s SubmissionStatus) String() string {
	return string(s)
}

// ResolveStatus — единственный источник правила вычисления статуса.
func ResolveStatus(hasSubmission bool, marks *int) SubmissionStatus {
	if !hasSubmission {
		return StatusPending
	}
	if marks == nil {
		return StatusSubmitted
	}
	return StatusEvaluated
}

// StatusCaseExpr генерирует SQL-эквивалент ResolveStatus для списочных
// запросов, чтобы правило не дублировалось руками в каждом запросе.
func StatusCaseExpr(submissionIDCol, marksCol string) string {
	return fmt.Sprintf(
		"CASE WHEN %s IS NULL THEN '%s' WHEN %s IS NULL THEN '%s' ELSE '%s' END",
		submissionIDCol, StatusPending,
		marksCol, StatusSubmitted,
		StatusEvaluated,
	)
}
