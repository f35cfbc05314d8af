package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/Questline/internal/models"
)

var (
	// ErrGatePending is matched by every *GatePendingError.
	ErrGatePending       = errors.New("reflection gate pending")
	ErrJourneyNotStarted = errors.New("journey has not started")
	ErrJourneyCompleted  = errors.New("journey is already completed")
	ErrDailyLimit        = errors.New("already checked in today")
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// ValidationError names the offending input fields.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

func invalid(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

// GatePendingError rejects an ordinary check-in while a reflection gate for
// the reached day is still open.
type GatePendingError struct {
	Gate models.ReflectionGate
}

func (e *GatePendingError) Error() string {
	return fmt.Sprintf("complete the day %d reflection gate (%s) before checking in", e.Gate.Day, e.Gate.ID.Hex())
}

func (e *GatePendingError) Unwrap() error { return ErrGatePending }
