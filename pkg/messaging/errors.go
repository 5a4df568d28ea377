package messaging

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks requests rejected before touching storage: blank
	// content, missing or malformed identities, self-messages.
	ErrValidation = errors.New("validation error")
	// ErrStorage marks failures of the underlying database.
	ErrStorage = errors.New("storage error")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
