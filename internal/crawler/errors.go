package crawler

import "errors"

// Sentinel errors surfaced by the core. API handlers map these onto HTTP
// status codes; everything else is treated as internal.
var (
	// ErrInvalidStrategy rejects a traversal strategy outside the supported set.
	ErrInvalidStrategy = errors.New("invalid crawl strategy")
	// ErrMissingStartURL rejects a config without a seed URL.
	ErrMissingStartURL = errors.New("start url is required")
	// ErrTaskNotFound is returned by control operations on an unknown task ID.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskConflict is returned when starting a task while another is running.
	ErrTaskConflict = errors.New("another task is already running")
)
