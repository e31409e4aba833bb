// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the HTTP request decoders, the
// restore engine (every student in a backup document is validated before the
// transaction starts) and the spreadsheet importer (email addresses on
// student rows).
//
// Fields are reported by their JSON names, so a failing student reads
// "studentId must be at most 20 characters" rather than using the Go field name.
//
// # Custom Tags
//
//   - naturalkey: printable characters only, no whitespace
//
// # Error Types
//
// ValidateStruct returns *RequestValidationError, which carries one
// ValidationError per failed field. It unwraps to an apperrors validation
// error, so apperrors.KindOf reports KindValidation and the API maps it to
// 400 VALIDATION_ERROR.
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
