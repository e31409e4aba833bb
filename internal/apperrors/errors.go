// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package apperrors defines the error taxonomy shared by the backup, restore
// and import pipeline. Every error that crosses a package boundary carries a
// machine-readable Kind so callers (HTTP handlers, the CLI, the scheduler)
// can react without string matching.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an application error.
type Kind string

const (
	// KindValidation is a missing or malformed required field.
	KindValidation Kind = "validation"
	// KindNotFound is an unknown filename or referenced entity.
	KindNotFound Kind = "not_found"
	// KindReferentialIntegrity is a reference to a nonexistent or inactive entity.
	KindReferentialIntegrity Kind = "referential_integrity"
	// KindFormat is an unparseable backup container or unsupported export format.
	KindFormat Kind = "format"
	// KindIO is a filesystem failure.
	KindIO Kind = "io"
	// KindSecurity is a filename that fails the traversal or naming check.
	KindSecurity Kind = "security"
	// KindConflict is an operation that is already in progress.
	KindConflict Kind = "conflict"
	// KindNoRecognizedSheets is a workbook with neither a student nor a project sheet.
	KindNoRecognizedSheets Kind = "no_recognized_sheets"
	// KindInternal is anything unclassified.
	KindInternal Kind = "internal"
)

// Code returns the upper-snake API error code for the kind, e.g. SECURITY_ERROR.
func (k Kind) Code() string {
	if k == "" {
		k = KindInternal
	}
	return strings.ToUpper(string(k)) + "_ERROR"
}

// Error is an application error with a kind, a message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, apperrors.ErrSecurity) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrReferentialIntegrity = &Error{Kind: KindReferentialIntegrity}
	ErrFormat               = &Error{Kind: KindFormat}
	ErrIO                   = &Error{Kind: KindIO}
	ErrSecurity             = &Error{Kind: KindSecurity}
	ErrConflict             = &Error{Kind: KindConflict}
	ErrNoRecognizedSheets   = &Error{Kind: KindNoRecognizedSheets}
)

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Validation creates a KindValidation error.
func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

// ReferentialIntegrity creates a KindReferentialIntegrity error.
func ReferentialIntegrity(format string, args ...interface{}) *Error {
	return New(KindReferentialIntegrity, format, args...)
}

// Format creates a KindFormat error.
func Format(format string, args ...interface{}) *Error {
	return New(KindFormat, format, args...)
}

// IO wraps a filesystem failure.
func IO(cause error, format string, args ...interface{}) *Error {
	return Wrap(KindIO, cause, format, args...)
}

// Security creates a KindSecurity error.
func Security(format string, args ...interface{}) *Error {
	return New(KindSecurity, format, args...)
}

// Conflict creates a KindConflict error.
func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
