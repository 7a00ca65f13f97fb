package httpserver

import "time"

// ShutdownTimeout controls how long to wait for in-flight requests before
// the server is torn down.
const ShutdownTimeout = 10 * time.Second
