package scheduler

import "fmt"

// ConfigError reports a malformed rotation configuration. Rejected before
// any plan work starts so bad settings never surface as runtime panics.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid rotation config: " + e.Reason
}

// ValidationError carries the rotation account ids that are missing from
// the pool or not yet verified. No plan is produced while it is non-nil.
type ValidationError struct {
	Missing    []uint `json:"missing_ids"`
	Unverified []uint `json:"unverified_ids"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rotation accounts rejected: %d missing, %d unverified",
		len(e.Missing), len(e.Unverified))
}
