// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/filmvault/internal/app"
	"github.com/tomtom215/filmvault/internal/apperrors"
)

func newImportCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import students and projects from a workbook",
		Long: `Import the registrar's workbook in one transaction.

Students are matched by Student ID (natural key) and updated in place.
Projects are always created. Rows that fail validation are reported and
skipped; every other row is committed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
				return apperrors.Validation("only .xlsx workbooks can be imported, got %q", filepath.Base(path))
			}

			return env.withApp(cmd.Context(), func(a *app.App) error {
				data, err := readWorkbook(path, a.Config.Security.MaxUploadBytes)
				if err != nil {
					return err
				}
				result, err := a.Reconciler.ImportFromSpreadsheet(cmd.Context(), data)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				success(out, "Imported %d students and %d projects in %s",
					result.StudentsImported, result.ProjectsImported, result.Duration().Round(time.Millisecond))
				if len(result.Errors) > 0 {
					warn(out, "%d rows skipped:", len(result.Errors))
					for _, msg := range result.Errors {
						fmt.Fprintf(out, "  - %s\n", msg)
					}
				}
				return nil
			})
		},
	}
}

// readWorkbook reads at most limit bytes of path. A non-positive limit
// reads the whole file.
func readWorkbook(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, apperrors.IO(err, "open %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.IO(err, "read %s", path)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, apperrors.Validation("%s exceeds the %d byte upload limit", filepath.Base(path), limit)
	}
	return data, nil
}
