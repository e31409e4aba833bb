// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Command filmvault is the operator CLI. It reads the same configuration as
// the server and works on the same database and backup directory.
//
//	filmvault backup create --format xlsx
//	filmvault backup list
//	filmvault backup restore backup_full_2026-10-16T02-00-00-000Z.json --yes
//	filmvault import registrar.xlsx
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}
