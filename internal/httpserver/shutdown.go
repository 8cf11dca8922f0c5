package httpserver

import "time"

// ShutdownTimeout bounds graceful shutdown: first draining in-flight
// requests, then the export archiver queue.
var ShutdownTimeout = 10 * time.Second
