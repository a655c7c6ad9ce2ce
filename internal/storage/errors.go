package storage

import (
	"errors"
	"fmt"
)

// These constants mirror domain error codes to avoid circular imports.
const (
	codeInvalid  = "invalid"
	codeNotFound = "not_found"
)

// StorageError represents a storage-specific error with a code and message.
type StorageError struct {
	Code    string
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *StorageError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *StorageError) ErrorMessage() string {
	return e.Message
}

func newStorageError(code, message string) *StorageError {
	return &StorageError{Code: code, Message: message}
}

var (
	ErrR2AccountIDRequired   = newStorageError(codeInvalid, "R2 account ID is required")
	ErrR2CredentialsRequired = newStorageError(codeInvalid, "R2 credentials are required")
	ErrR2BucketRequired      = newStorageError(codeInvalid, "R2 bucket name is required")
	ErrS3BucketRequired      = newStorageError(codeInvalid, "S3 bucket name is required")
)

// ErrUnreadable marks a blob that exists but cannot be opened, such as a
// record sealed under a different encryption key.
var ErrUnreadable = errors.New("storage: blob unreadable")

// ErrFileNotFound creates an error for a missing key.
func ErrFileNotFound(key string) error {
	return &StorageError{
		Code:    codeNotFound,
		Message: fmt.Sprintf("file not found: %s", key),
	}
}

// ErrInvalidKey rejects keys that would escape the storage root.
func ErrInvalidKey(key string) error {
	return &StorageError{
		Code:    codeInvalid,
		Message: fmt.Sprintf("invalid storage key: %q", key),
	}
}

// ErrUnknownProvider creates an error for unknown storage providers.
func ErrUnknownProvider(provider string) error {
	return &StorageError{
		Code:    codeInvalid,
		Message: fmt.Sprintf("unknown storage provider: %s", provider),
	}
}

// IsNotFound reports whether err is a missing-key error from any backend.
func IsNotFound(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == codeNotFound
}
