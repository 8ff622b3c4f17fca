package archive

import (
	"errors"
	"fmt"
)

// ErrEmptySelection is returned when an export is requested without photos.
var ErrEmptySelection = errors.New("no photos selected for export")

// BundlingErrorKind separates failures the caller must see from failures that
// send the export down the local assembly path.
type BundlingErrorKind string

const (
	// BundlingValidation means the bundling service rejected the request.
	BundlingValidation BundlingErrorKind = "validation"
	// BundlingUnavailable means the service could not be reached or failed on its side.
	BundlingUnavailable BundlingErrorKind = "unavailable"
)

// BundlingError is returned by Bundler implementations.
type BundlingError struct {
	Kind       BundlingErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *BundlingError) Error() string {
	msg := fmt.Sprintf("bundling service %s", e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = msg + ": " + e.Message
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *BundlingError) Unwrap() error {
	return e.Err
}

// NewBundlingValidationError builds a validation failure.
func NewBundlingValidationError(status int, message string) *BundlingError {
	return &BundlingError{Kind: BundlingValidation, StatusCode: status, Message: message}
}

// NewBundlingUnavailableError builds a connectivity or server-side failure.
func NewBundlingUnavailableError(status int, message string, err error) *BundlingError {
	return &BundlingError{Kind: BundlingUnavailable, StatusCode: status, Message: message, Err: err}
}

// IsBundlingUnavailable reports whether err is a bundling failure that allows fallback.
func IsBundlingUnavailable(err error) bool {
	var be *BundlingError
	return errors.As(err, &be) && be.Kind == BundlingUnavailable
}

// AuthorizationError means no retrieval authorization could be obtained for a photo.
type AuthorizationError struct {
	PhotoID int64
	Key     string
	Err     error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorize photo %d (%s): %v", e.PhotoID, e.Key, e.Err)
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}

// FetchError means the bytes of a photo could not be retrieved.
type FetchError struct {
	PhotoID int64
	Expired bool
	Err     error
}

func (e *FetchError) Error() string {
	if e.Expired {
		return fmt.Sprintf("fetch photo %d: retrieval authorization expired", e.PhotoID)
	}
	return fmt.Sprintf("fetch photo %d: %v", e.PhotoID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AssemblyError means the archive could not be built or handed out.
type AssemblyError struct {
	Entry string
	Err   error
}

func (e *AssemblyError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("assemble archive entry %s: %v", e.Entry, e.Err)
	}
	return fmt.Sprintf("assemble archive: %v", e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}
