package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an async extraction
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// ExtractionJob tracks an article extraction running in the background.
// Review is set once the job is done; Error and Fallback once it failed.
type ExtractionJob struct {
	ID         uuid.UUID         `json:"job_id"`
	Status     JobStatus         `json:"status"`
	SourceURL  string            `json:"source_url,omitempty"`
	Review     *ExtractionReview `json:"review,omitempty"`
	Error      string            `json:"error,omitempty"`
	Fallback   string            `json:"fallback,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// Finished reports whether the job will not change again
func (j ExtractionJob) Finished() bool {
	return j.Status == JobDone || j.Status == JobFailed
}
