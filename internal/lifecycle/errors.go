package lifecycle

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Kind classifies an engine error.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// Error is returned by every engine operation that fails. It unwraps to
// ErrNotFound or ErrInvalidInput so callers can use errors.Is.
type Error struct {
	Kind   Kind
	Entity string
	ID     string
	Reason string
}

func (e *Error) Error() string {
	switch {
	case e.ID != "" && e.Reason != "":
		return fmt.Sprintf("%s %s: %s: %s", e.Entity, e.ID, e.Kind, e.Reason)
	case e.ID != "":
		return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Kind)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s: %s", e.Entity, e.Kind, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", e.Entity, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindInvalidInput:
		return ErrInvalidInput
	default:
		return nil
	}
}

func notFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

func invalidInput(entity, id, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Entity: entity, ID: id, Reason: fmt.Sprintf(format, args...)}
}

const (
	entityReminder    = "reminder"
	entityHabit       = "habit"
	entityStatistics  = "statistics"
	entityAchievement = "achievement"
)
