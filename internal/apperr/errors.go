// Package apperr defines the error kinds surfaced by shurl. Every kind except
// ErrPublish ends the run; the CLI maps them to operator messages.
package apperr

import "errors"

var (
	ErrConfigIO       = errors.New("config io")
	ErrConfigParse    = errors.New("config parse")
	ErrConfigInvalid  = errors.New("config invalid")
	ErrConfigCreated  = errors.New("config created")
	ErrInvalidURL     = errors.New("invalid url")
	ErrInvalidName    = errors.New("invalid short name")
	ErrRepositoryOpen = errors.New("repository open")
	ErrWrite          = errors.New("filesystem")
	ErrSnapshot       = errors.New("snapshot")
	ErrPublish        = errors.New("publish")

	// ErrNamespaceExhausted is returned when a bounded name search only
	// found taken names.
	ErrNamespaceExhausted = errors.New("namespace exhausted")
)

// Error attaches a kind and the failing operation to an underlying error.
type Error struct {
	Kind error
	Op   string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap returns nil when err is nil.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// New creates an error of the given kind without an underlying cause.
func New(kind error, op string) error {
	return &Error{Kind: kind, Op: op}
}

// KindOf returns the kind of err, or nil when err carries none.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
