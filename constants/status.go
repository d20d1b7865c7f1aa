package constants

// JobStatus is the canonical status for rows in extract_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued   JobStatus = "QUEUED"   // waiting for a worker
	JobStatusRunning  JobStatus = "RUNNING"  // in progress
	JobStatusAcquired JobStatus = "ACQUIRED" // stage 1 completed (text or entities acquired)
	JobStatusParsed   JobStatus = "PARSED"   // stage 2 completed (fields extracted)
	JobStatusFailed   JobStatus = "FAILED"   // terminal failure
)
