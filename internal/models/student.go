// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package models

import "time"

// DefaultProgram is assigned to imported students with no program.
const DefaultProgram = "Film Production"

// Student is an enrolled student. StudentID is the natural key: unique and
// immutable once assigned.
type Student struct {
	ID        int64     `json:"id"`
	StudentID string    `json:"studentId" validate:"required,min=1,max=20"`
	FirstName string    `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string    `json:"lastName" validate:"required,min=1,max=50"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	Year      int       `json:"year" validate:"min=1,max=4"`
	Program   string    `json:"program" validate:"required,min=1,max=100"`
	IsActive  bool      `json:"isActive"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Summary returns the subset of fields embedded in exported projects.
func (s *Student) Summary() *StudentSummary {
	return &StudentSummary{
		ID:        s.ID,
		StudentID: s.StudentID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
	}
}

// StudentSummary is the student relation embedded in a project export.
type StudentSummary struct {
	ID        int64  `json:"id"`
	StudentID string `json:"studentId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// FullName returns "First Last", or "" for a nil summary.
func (s *StudentSummary) FullName() string {
	if s == nil {
		return ""
	}
	return s.FirstName + " " + s.LastName
}
