package models

// CaptureOutcome represents the result of a single capture attempt
type CaptureOutcome int

const (
	OutcomeNotEmailView CaptureOutcome = iota
	OutcomeIncomplete
	OutcomeDuplicate
	OutcomeCaptured
)

// String returns the log/API label of the outcome
func (o CaptureOutcome) String() string {
	switch o {
	case OutcomeNotEmailView:
		return "not_email_view"
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeCaptured:
		return "captured"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome as its label
func (o CaptureOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
