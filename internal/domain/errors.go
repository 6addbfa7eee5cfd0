package domain

import "fmt"

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DuplicateEmailError reports an email already used by another officer or identity.
type DuplicateEmailError struct {
	Field string
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("%s: email %s is already in use", e.Field, e.Email)
}

// WeakCredentialError reports a secret that fails the credential policy.
type WeakCredentialError struct {
	Field  string
	Reason string
}

func (e *WeakCredentialError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failure of the durable store. The operation that
// produced it may still have succeeded logically.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// InvalidRoleError signals a role value outside the closed enumeration.
// Seeing it means a programming error, not bad user input.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("invalid role %q", e.Role)
}
