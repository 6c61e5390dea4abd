// Package apperr defines the error taxonomy shared by every component.
// All failures end up in one of these shapes so the UI layer can map them
// to a user-facing message without inspecting transport details.
package apperr

import "fmt"

// ValidationError is produced locally, before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthKind classifies failures coming back from the auth provider.
type AuthKind string

const (
	AuthInvalidCredential AuthKind = "invalid_credential"
	AuthAlreadyExists     AuthKind = "already_exists"
	AuthNotFound          AuthKind = "not_found"
	AuthInvalidInput      AuthKind = "invalid_input"
	AuthOther             AuthKind = "other"
)

type AuthError struct {
	Kind    AuthKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransferKind classifies media-host upload failures.
type TransferKind string

const (
	TransferNetwork      TransferKind = "network"
	TransferSizeRejected TransferKind = "size_rejected"
	TransferTypeRejected TransferKind = "type_rejected"
	TransferHostRejected TransferKind = "host_rejected"
)

type TransferError struct {
	Kind    TransferKind
	Message string
	Err     error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransferError) Unwrap() error { return e.Err }

// PersistenceKind classifies record-write failures against the store.
type PersistenceKind string

const (
	PersistTimeout   PersistenceKind = "timeout"
	PersistTransport PersistenceKind = "transport"
)

type PersistenceError struct {
	Kind    PersistenceKind
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SubscriptionError is delivered once when a live query terminates.
type SubscriptionError struct {
	Err error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription lost: %v", e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }
