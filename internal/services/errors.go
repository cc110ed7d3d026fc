package services

import "errors"

var (
	// ErrNotFound is returned for missing rows and for rows the caller may
	// not see, so existence is never leaked across owners.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller can see a row but not change it.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput wraps business-rule violations found after binding.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAIUnavailable is returned when every configured LLM failed.
	ErrAIUnavailable = errors.New("ai service unavailable")
)
