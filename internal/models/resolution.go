package models

// Status tags the outcome of a single station lookup.
type Status string

const (
	StatusResolved        Status = "resolved"
	StatusSkipped         Status = "skipped"
	StatusNotFound        Status = "not_found"
	StatusTooManyAttempts Status = "too_many_attempts"
	StatusTimeout         Status = "timeout"
	StatusInvalidResponse Status = "invalid_response"
	StatusUnavailable     Status = "unavailable"
)

// Retryable reports whether a bulk re-run should try the lookup again.
func (s Status) Retryable() bool {
	switch s {
	case StatusResolved, StatusSkipped, "":
		return false
	default:
		return true
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusResolved, StatusSkipped, StatusNotFound, StatusTooManyAttempts,
		StatusTimeout, StatusInvalidResponse, StatusUnavailable:
		return true
	}
	return false
}

// Resolution is the result of locating the nearest station for one point.
// StationID is only set when Status is StatusResolved.
type Resolution struct {
	Status     Status     `json:"status"`
	StationID  string     `json:"stationId,omitempty"`
	Candidate  *Candidate `json:"candidate,omitempty"`
	Attempts   int        `json:"attempts"`
	HalfWidths []float64  `json:"halfWidths,omitempty"`
}

func (r *Resolution) Resolved() bool {
	return r != nil && r.Status == StatusResolved
}
