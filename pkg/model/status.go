package model

// Status is the sync state surfaced to the UI. It is presentation only;
// callers never block on it.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)
