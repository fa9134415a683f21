package extraction

import "sync"

// Result accumulates the records and failures of one extraction job.
// Appends are serialised; once Close is called the result is read-only.
type Result struct {
	mu sync.Mutex

	JobID           string
	ProjectRoot     string
	Records         []MethodRecord
	Failures        []FileFailure
	FilesDiscovered int
	FilesProcessed  int
	Cancelled       bool

	closed bool
}

// NewResult returns an empty, open result for the job jobID over projectRoot.
func NewResult(jobID, projectRoot string) *Result {
	return &Result{
		JobID:       jobID,
		ProjectRoot: projectRoot,
		Records:     []MethodRecord{},
		Failures:    []FileFailure{},
	}
}

// AppendFile adds the records of one successfully processed file.
func (r *Result) AppendFile(records []MethodRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrResultClosed
	}
	r.Records = append(r.Records, records...)
	r.FilesProcessed++
	return nil
}

// AddFailure records a file that could not be read or parsed.
// A failed file still counts as processed.
func (r *Result) AddFailure(failure FileFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrResultClosed
	}
	r.Failures = append(r.Failures, failure)
	r.FilesProcessed++
	return nil
}

// Close finalises the result. cancelled marks a job stopped before all files ran.
func (r *Result) Close(cancelled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.Cancelled = cancelled
}

// Closed reports whether Close has been called.
func (r *Result) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
