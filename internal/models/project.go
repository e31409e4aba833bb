// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package models

import "time"

// Project is a student film moving through the production pipeline.
//
// Student is the explicit nullable relation to the owning student. A nil
// Student means "absent" and each export format renders it its own way:
// null in JSON, empty quoted fields in CSV, empty cells in XLSX.
type Project struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title" validate:"required,max=255"`
	Description string        `json:"description,omitempty"`
	Genre       string        `json:"genre,omitempty"`
	Duration    *int          `json:"duration" validate:"omitempty,min=1"`
	Status      ProjectStatus `json:"status"`
	StudentID   *int64        `json:"studentId"`

	// Milestones
	ShootDate          Date `json:"shootDate"`
	RushesDeliveryDate Date `json:"rushesDeliveryDate"`
	GradeDate          Date `json:"gradeDate"`
	MixDate            Date `json:"mixDate"`
	FinalDeliveryDate  Date `json:"finalDeliveryDate"`
	ReviewDate         Date `json:"reviewDate"`
	ScreeningDate      Date `json:"screeningDate"`

	// Crew
	SupervisingProducer string `json:"supervisingProducer,omitempty"`
	Director            string `json:"director,omitempty"`
	Editor              string `json:"editor,omitempty"`
	SoundEngineer       string `json:"soundEngineer,omitempty"`
	CameraEquipment     string `json:"cameraEquipment,omitempty"`
	EditingSuite        string `json:"editingSuite,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Student *StudentSummary `json:"student"`
}

// Milestone pairs a human-readable column label with a project date.
type Milestone struct {
	Label string
	Date  Date
}

// Milestones returns the seven milestone dates in export column order.
func (p *Project) Milestones() []Milestone {
	return []Milestone{
		{"Shoot Date", p.ShootDate},
		{"Grade Date", p.GradeDate},
		{"Mix Date", p.MixDate},
		{"Rushes Delivery Date", p.RushesDeliveryDate},
		{"Final Delivery Date", p.FinalDeliveryDate},
		{"Review Date", p.ReviewDate},
		{"Screening Date", p.ScreeningDate},
	}
}

// SetMilestone assigns a date by its column label. Unknown labels are ignored.
func (p *Project) SetMilestone(label string, d Date) {
	switch label {
	case "Shoot Date":
		p.ShootDate = d
	case "Grade Date":
		p.GradeDate = d
	case "Mix Date":
		p.MixDate = d
	case "Rushes Delivery Date":
		p.RushesDeliveryDate = d
	case "Final Delivery Date":
		p.FinalDeliveryDate = d
	case "Review Date":
		p.ReviewDate = d
	case "Screening Date":
		p.ScreeningDate = d
	}
}

// MilestoneLabels lists the milestone column labels in export order.
func MilestoneLabels() []string {
	return []string{
		"Shoot Date",
		"Grade Date",
		"Mix Date",
		"Rushes Delivery Date",
		"Final Delivery Date",
		"Review Date",
		"Screening Date",
	}
}
