package domain

import (
	"context"
	"time"
)

// DefaultRequestsPerMinute is the per-principal admission capacity when none is configured
const DefaultRequestsPerMinute = 10

// Decision is the outcome of one admission check
type Decision struct {
	Admitted bool
	// Remaining is the number of whole tokens left after the check
	Remaining int
	// RetryAfter is the time until at least one token is available; zero when admitted
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	secs := d.RetryAfter / time.Second
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	return int(secs)
}

// AdmissionEvent describes one admission decision for stats and metrics
type AdmissionEvent struct {
	Username string
	Admitted bool
	Method   string
	Path     string
	At       time.Time
}

// AdmissionRecorder persists admission outcomes. Recording is best effort:
// callers log failures and never reject a request because of them.
type AdmissionRecorder interface {
	Record(ctx context.Context, ev AdmissionEvent) error
}
