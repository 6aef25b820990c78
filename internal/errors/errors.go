package errors

import (
	"errors"
	"fmt"
)

// Common error types for the scan orchestration server
var (
	// SSO login errors
	ErrInvalidStartURL      = errors.New("invalid start URL")
	ErrProviderUnreachable  = errors.New("identity provider unreachable")
	ErrAuthorizationExpired = errors.New("authorization expired")
	ErrAuthorizationDenied  = errors.New("authorization denied")
	ErrNoLoginInProgress    = errors.New("no login in progress")
	ErrNotAuthenticated     = errors.New("not authenticated")

	// Role credential errors
	ErrUnknownAccountOrRole     = errors.New("unknown account or role")
	ErrCredentialExchangeFailed = errors.New("credential exchange failed")
	ErrCredentialsExpired       = errors.New("credentials expired")

	// Scan errors
	ErrScanLaunchFailed = errors.New("scan launch failed")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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
