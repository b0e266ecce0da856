package catalog

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUploadsDisabled    = errors.New("uploads are not configured")
)

// Error carries a client facing message and one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func invalid(message string) error {
	return &Error{Kind: ErrInvalidInput, Message: message}
}

func notFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}
