package instance

import "os"

// ID identifies the running process in logs and lock owners. It prefers the
// Cloud Run revision, then WORKER_ID, then the hostname.
func ID() string {
	for _, key := range []string{"K_REVISION", "WORKER_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
