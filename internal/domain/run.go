package domain

import "time"

// RunSummary records the outcome of one export run
type RunSummary struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Fetched    int       `json:"fetched"`   // Records built from the server
	Skipped    int       `json:"skipped"`   // Titles dropped by per-item errors
	Watched    int       `json:"watched"`   // Records written to the master
	Unwatched  int       `json:"unwatched"` // Records written to the unwatched file
	Changes    int       `json:"changes"`   // Records written to the delta file
	DeltaFile  string    `json:"deltaFile,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Succeeded reports whether the run finished without a fatal error
func (r RunSummary) Succeeded() bool {
	return r.Error == ""
}
