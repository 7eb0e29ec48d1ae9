// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes binding translation errors.
type ErrorKind uint8

const (
	// ErrCapability indicates a binding the backend cannot represent,
	// such as a location beyond the configured limits.
	ErrCapability ErrorKind = iota

	// ErrTranslationInvariant indicates an internal consistency failure,
	// such as two locations generating the same native identifier.
	ErrTranslationInvariant

	// ErrUnsupportedCombination indicates a resource kind requested in a
	// slot the backend cannot represent.
	ErrUnsupportedCombination
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrCapability:
		return "Capability"
	case ErrTranslationInvariant:
		return "TranslationInvariant"
	case ErrUnsupportedCombination:
		return "UnsupportedCombination"
	default:
		return "Unknown"
	}
}

// Error represents a binding translation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Location optionally identifies the offending binding.
	Location *Location

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Location != nil {
		return fmt.Sprintf("binding %s at %s: %s", e.Kind, e.Location, e.Message)
	}
	return fmt.Sprintf("binding %s: %s", e.Kind, e.Message)
}

// NewError creates a new error without location information.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewLocationError creates a new error attached to a binding location.
func NewLocationError(kind ErrorKind, loc Location, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Location: &loc,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsCapability reports whether err wraps an ErrCapability error.
func IsCapability(err error) bool {
	return hasKind(err, ErrCapability)
}

// IsTranslationInvariant reports whether err wraps an ErrTranslationInvariant error.
func IsTranslationInvariant(err error) bool {
	return hasKind(err, ErrTranslationInvariant)
}

// IsUnsupportedCombination reports whether err wraps an ErrUnsupportedCombination error.
func IsUnsupportedCombination(err error) bool {
	return hasKind(err, ErrUnsupportedCombination)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
