package instance

import "testing"

func TestIDPrefersRevision(t *testing.T) {
	t.Setenv("K_REVISION", "api-00042")
	t.Setenv("WORKER_ID", "worker-3")
	if got := ID(); got != "api-00042" {
		t.Fatalf("expected revision id, got %q", got)
	}
}

func TestIDFallsBackToWorkerID(t *testing.T) {
	t.Setenv("K_REVISION", "")
	t.Setenv("WORKER_ID", "worker-3")
	if got := ID(); got != "worker-3" {
		t.Fatalf("expected worker id, got %q", got)
	}
}
