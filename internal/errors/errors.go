package errors

import (
	"errors"
	"fmt"
)

// Common error types for the device locator
var (
	// Session store errors
	ErrDeserialization = errors.New("authentication record could not be deserialized")

	// Identity errors
	ErrStaleRecord      = errors.New("saved authentication record is no longer valid")
	ErrLoginExpired     = errors.New("interactive login expired")
	ErrLoginDeclined    = errors.New("interactive login declined")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Navigation errors
	ErrNoSubscription  = errors.New("no subscription selected")
	ErrNoResourceGroup = errors.New("no resource group selected")
	ErrNoHub           = errors.New("no IoT hub selected")

	// Registry errors
	ErrOwnerKeyMissing         = errors.New("IoT hub owner key not returned")
	ErrInvalidConnectionString = errors.New("invalid IoT hub connection string")
	ErrInvalidSharedAccessKey  = errors.New("invalid shared access key")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
