// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tomtom215/filmvault/internal/metrics"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// store holds the query methods shared by DB and Tx.
type store struct {
	q   queryer
	now func() time.Time
}

func (s *store) exec(ctx context.Context, operation, table, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := s.q.ExecContext(ctx, query, args...)
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
	return res, err
}

func (s *store) queryRow(ctx context.Context, table, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := s.q.QueryRowContext(ctx, query, args...)
	metrics.RecordDBQuery("SELECT", table, time.Since(start), row.Err())
	return row
}

// queryBuilder helps construct SQL queries with filters
type queryBuilder struct {
	baseQuery string
	args      []interface{}
	filters   []string
}

// newQueryBuilder creates a new query builder with a base query.
// The base query must end in a WHERE clause so filters can be ANDed on.
func newQueryBuilder(baseQuery string) *queryBuilder {
	return &queryBuilder{
		baseQuery: baseQuery,
		args:      make([]interface{}, 0, 4),
		filters:   make([]string, 0, 4),
	}
}

// addFilter adds a custom filter condition
func (qb *queryBuilder) addFilter(condition string, args ...interface{}) *queryBuilder {
	qb.filters = append(qb.filters, condition)
	qb.args = append(qb.args, args...)
	return qb
}

// addFilterIf adds the condition only when value is non-empty
func (qb *queryBuilder) addFilterIf(condition, value string) *queryBuilder {
	if value == "" {
		return qb
	}
	return qb.addFilter(condition, value)
}

// addLimit adds a LIMIT argument (the suffix passed to build must contain the placeholder)
func (qb *queryBuilder) addLimit(limit int) *queryBuilder {
	qb.args = append(qb.args, limit)
	return qb
}

// build constructs the final query and returns it with args
func (qb *queryBuilder) build(suffix string) (string, []interface{}) {
	query := qb.baseQuery
	if len(qb.filters) > 0 {
		query += " AND " + strings.Join(qb.filters, " AND ")
	}
	if suffix != "" {
		query += " " + suffix
	}
	return query, qb.args
}

// scanFunc is a function that scans a single row into a result type
type scanFunc[T any] func(rowScanner) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan function.
// Rows are fully drained before returning, which matters with a single pooled connection.
func queryAndScan[T any](ctx context.Context, s *store, table, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	start := time.Now()
	rows, err := s.q.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("SELECT", table, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	results := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func nullInt64(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// stamp returns t, or now when t is zero.
func stamp(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t.UTC()
}
