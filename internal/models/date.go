// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date rendering used by every export format.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time of day and no zone.
// The zero value means "absent" and renders as JSON null and SQL NULL.
type Date struct {
	t time.Time
}

// NewDate returns the given calendar date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.t
}

// String renders YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts null, "", YYYY-MM-DD
// and RFC 3339 timestamps.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	s = strings.Trim(s, `"`)
	parsed, ok := parseStrictDate(s)
	if !ok {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, ok := parseStrictDate(s)
	if !ok {
		return fmt.Errorf("invalid stored date %q", s)
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func parseStrictDate(s string) (Date, bool) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t.UTC()), true
	}
	return Date{}, false
}

// tolerantLayouts are tried in order by ParseDate. Ambiguous numeric forms
// are read month-first, matching what spreadsheet tools emit for en-US locales.
var tolerantLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2006.01.02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"1-2-2006",
	"2-Jan-2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, 02 Jan 2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses free-form date text. It never fails hard: anything it
// cannot read yields (zero, false) and the caller treats the date as absent.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	if d, ok := parseExcelSerial(s); ok {
		return d, true
	}
	for _, layout := range tolerantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

// excelEpoch is day zero of the 1900 date system as spreadsheet tools count
// it, including the phantom 1900-02-29.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxExcelSerial is 9999-12-31.
const maxExcelSerial = 2958465

func parseExcelSerial(s string) (Date, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f > maxExcelSerial {
		return Date{}, false
	}
	days := int(math.Floor(f))
	return DateOf(excelEpoch.AddDate(0, 0, days)), true
}
