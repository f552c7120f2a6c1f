package constants

// JobStatus is the canonical status of an extraction job.
type JobStatus string

// Stable values (exposed as-is over the HTTP API).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // accepted, waiting for a worker
	JobStatusRunning JobStatus = "RUNNING" // pipeline in progress
	JobStatusDone    JobStatus = "DONE"    // pipeline finished with records
	JobStatusEmpty   JobStatus = "EMPTY"   // pipeline finished, nothing usable found
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// Terminal reports whether no further transitions happen from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusEmpty || s == JobStatusFailed
}
