package monitor

import "time"

// Status is the outcome of the most recent round of checks.
type Status struct {
	Checks    map[string]bool `json:"checks"`
	LastCheck time.Time       `json:"last_check"`
}

// Healthy reports whether every check passed. No checks run yet means unhealthy.
func (s Status) Healthy() bool {
	if len(s.Checks) == 0 {
		return false
	}
	for _, ok := range s.Checks {
		if !ok {
			return false
		}
	}
	return true
}
