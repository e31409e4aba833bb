// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/filmvault/internal/models"
)

var csvHeader = []string{
	"ID", "Title", "Description", "Genre", "Duration", "Status",
	"Student ID", "Student Name", "Student Email",
	"Shoot Date", "Grade Date", "Mix Date", "Rushes Delivery Date",
	"Final Delivery Date", "Review Date", "Screening Date",
	"Supervising Producer", "Director", "Editor", "Sound Engineer",
	"Camera Equipment", "Editing Suite", "Notes", "Created At", "Updated At",
}

// quoteCSV wraps s in double quotes, doubling any inside it. Text fields
// are always quoted, even when empty.
func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func csvRow(p *models.Project) []string {
	duration := ""
	if p.Duration != nil {
		duration = strconv.Itoa(*p.Duration)
	}

	var studentKey, studentName, studentEmail string
	if p.Student != nil {
		studentKey = p.Student.StudentID
		studentName = p.Student.FullName()
		studentEmail = p.Student.Email
	}

	row := []string{
		strconv.FormatInt(p.ID, 10),
		quoteCSV(p.Title),
		quoteCSV(p.Description),
		quoteCSV(p.Genre),
		duration,
		quoteCSV(string(p.Status)),
		quoteCSV(studentKey),
		quoteCSV(studentName),
		quoteCSV(studentEmail),
	}
	for _, m := range p.Milestones() {
		row = append(row, m.Date.String())
	}
	return append(row,
		quoteCSV(p.SupervisingProducer),
		quoteCSV(p.Director),
		quoteCSV(p.Editor),
		quoteCSV(p.SoundEngineer),
		quoteCSV(p.CameraEquipment),
		quoteCSV(p.EditingSuite),
		quoteCSV(p.Notes),
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
}

func (s *Serializer) writeCSV(_ context.Context, snap *dataSnapshot, w io.Writer) error {
	projects := snap.projects

	// bufio.Writer errors are sticky, so checking Flush covers every write.
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(strings.Join(csvHeader, ",") + "\n")
	for i := range projects {
		_, _ = bw.WriteString(strings.Join(csvRow(&projects[i]), ",") + "\n")
	}
	if err := bw.Flush(); err != nil {
		return ioError(err, "csv backup")
	}
	return nil
}
