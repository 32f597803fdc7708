package game

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable failure category surfaced to callers.
type Kind string

const (
	KindUnknown             Kind = "UNKNOWN"
	KindInvalidTurn         Kind = "INVALID_TURN"
	KindInvalidActionSchema Kind = "INVALID_ACTION_SCHEMA"
	KindInvalidClue         Kind = "INVALID_CLUE"
	KindInvalidGuess        Kind = "INVALID_GUESS"
	KindInvalidMove         Kind = "INVALID_MOVE"
	KindConfiguration       Kind = "CONFIGURATION"
	KindGameOver            Kind = "GAME_OVER"
	KindUnknownPlayer       Kind = "UNKNOWN_PLAYER"
)

// Error is a structured, recoverable game failure. Returning one means the
// session state was not modified.
type Error struct {
	Kind    Kind
	Reason  string // finer-grained cause within Kind, may be empty
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind, and by reason when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// NewError creates an error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates an error of the given kind with a reason and formatted message.
func Errorf(kind Kind, reason, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Sentinels usable with errors.Is.
var (
	ErrInvalidTurn         = NewError(KindInvalidTurn, "not your turn")
	ErrInvalidActionSchema = NewError(KindInvalidActionSchema, "malformed action")
	ErrInvalidClue         = NewError(KindInvalidClue, "invalid clue")
	ErrInvalidGuess        = NewError(KindInvalidGuess, "invalid guess")
	ErrInvalidMove         = NewError(KindInvalidMove, "invalid move")
	ErrConfiguration       = NewError(KindConfiguration, "invalid configuration")
	ErrGameOver            = NewError(KindGameOver, "game is over")
	ErrUnknownPlayer       = NewError(KindUnknownPlayer, "unknown player")
)

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

// ReasonOf returns the Reason carried by err, if any.
func ReasonOf(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Reason
	}
	return ""
}
