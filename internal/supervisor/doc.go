// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

/*
Package supervisor runs the long-lived parts of the server under a suture v4
supervisor tree.

# Layout

	filmvault (root)
	├── jobs-layer
	│   └── backup-scheduler (nightly backups and retention cleanup)
	└── api-layer
	    └── http-server

Each layer is its own supervisor, so a scheduler that keeps failing backs off
without taking the HTTP server down with it. Supervisor events (service
panics, restarts, backoff) are written through sutureslog into the
application's zerolog output.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddJobService(scheduler)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tree.Serve(ctx)

Services are plain suture.Service values: Serve(ctx) blocks until ctx is
canceled and returns an error to request a restart.
*/
package supervisor
