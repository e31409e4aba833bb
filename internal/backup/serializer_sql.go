// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/filmvault/internal/models"
)

// The schema-script format dumps the students table only. Projects are not
// included; use the json format for a restorable backup.
const studentsDDL = `CREATE TABLE students (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  student_id VARCHAR(20) NOT NULL UNIQUE,
  first_name VARCHAR(50) NOT NULL,
  last_name VARCHAR(50) NOT NULL,
  email VARCHAR(255) NOT NULL,
  phone VARCHAR(20),
  year INTEGER NOT NULL,
  program VARCHAR(100) NOT NULL,
  is_active BOOLEAN DEFAULT 1,
  notes TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlOptional(s string) string {
	if s == "" {
		return "NULL"
	}
	return sqlString(s)
}

func studentInsert(st *models.Student) string {
	active := 0
	if st.IsActive {
		active = 1
	}
	return fmt.Sprintf("INSERT INTO students VALUES (%d, %s, %s, %s, %s, %s, %d, %s, %d, %s, %s, %s);",
		st.ID,
		sqlString(st.StudentID),
		sqlString(st.FirstName),
		sqlString(st.LastName),
		sqlString(st.Email),
		sqlOptional(st.Phone),
		st.Year,
		sqlString(st.Program),
		active,
		sqlOptional(st.Notes),
		sqlString(st.CreatedAt.UTC().Format(time.RFC3339)),
		sqlString(st.UpdatedAt.UTC().Format(time.RFC3339)),
	)
}

func (s *Serializer) writeSQL(_ context.Context, snap *dataSnapshot, w io.Writer) error {
	students := snap.students

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Film Production Database Backup\n-- Generated on: %s\n", s.now().UTC().Format(isoMillis))
	fmt.Fprint(bw, "-- Contains the students table only.\n\n")
	fmt.Fprint(bw, "-- Table structure for students\nDROP TABLE IF EXISTS students;\n")
	fmt.Fprint(bw, studentsDDL+"\n\n")
	if len(students) > 0 {
		fmt.Fprint(bw, "-- Data for students\n")
		for i := range students {
			fmt.Fprintln(bw, studentInsert(&students[i]))
		}
		fmt.Fprintln(bw)
	}
	if err := bw.Flush(); err != nil {
		return ioError(err, "sql backup")
	}
	return nil
}
