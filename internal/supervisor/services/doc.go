// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package services adapts components whose lifecycle is not already
// context-driven to suture's Serve(ctx) error contract.
//
// The backup scheduler implements suture.Service itself and is added to the
// tree directly. The HTTP server blocks in ListenAndServe and needs a
// separate Shutdown call, which HTTPServerService provides.
package services
