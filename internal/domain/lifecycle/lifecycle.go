// Package lifecycle holds shared constants for component start and shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds graceful startup and shutdown of long-lived
// resources such as the HTTP server and the database pool.
const DefaultTimeout = 10 * time.Second
