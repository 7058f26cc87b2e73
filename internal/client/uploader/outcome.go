package uploader

// Outcome classifies one upload attempt for the scheduler.
type Outcome int

const (
	// OutcomeSuccess means the record is uploaded; no further work.
	OutcomeSuccess Outcome = iota

	// OutcomeRetry means the attempt failed for a transient reason and the
	// scheduler should re-invoke after backoff.
	OutcomeRetry

	// OutcomePermanentFailure means retrying cannot help (misconfiguration,
	// missing record or file, or exhausted attempt budget).
	OutcomePermanentFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetry:
		return "retry"
	case OutcomePermanentFailure:
		return "permanent_failure"
	default:
		return "unknown"
	}
}
