package entity

import "time"

// JobKind names the work an ActivationJob performs.
type JobKind string

const JobUpdateStatus JobKind = "updateStatus"

// BackoffFixed waits the same Backoff.Delay between every attempt.
const BackoffFixed = "fixed"

type Backoff struct {
	Kind  string        `json:"kind"`
	Delay time.Duration `json:"delay"`
}

type JobOptions struct {
	Delay       time.Duration `json:"delay"`
	MaxAttempts int           `json:"maxAttempts"`
	Backoff     Backoff       `json:"backoff"`
}

// ActivationJob carries the user snapshot taken at schedule time. Executing it only
// patches status, so stale snapshot fields are never written back.
type ActivationJob struct {
	Kind       JobKind    `json:"kind"`
	User       User       `json:"user"`
	Options    JobOptions `json:"options"`
	Attempt    int        `json:"attempt"` // zero-based
	EnqueuedAt time.Time  `json:"enqueuedAt"`
}

func NewActivationJob(u User, opts JobOptions) ActivationJob {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.Backoff.Kind == "" {
		opts.Backoff.Kind = BackoffFixed
	}
	return ActivationJob{
		Kind:       JobUpdateStatus,
		User:       u,
		Options:    opts,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Retry returns the follow-up job and its delay, or false once MaxAttempts is spent.
func (j ActivationJob) Retry() (ActivationJob, time.Duration, bool) {
	if j.Attempt+1 >= j.Options.MaxAttempts {
		return j, 0, false
	}
	next := j
	next.Attempt++
	next.EnqueuedAt = time.Now().UTC()
	return next, j.Options.Backoff.Delay, true
}
