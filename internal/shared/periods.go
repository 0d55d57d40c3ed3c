package shared

import "time"

// WithinWindow reports whether ref falls inside [effective, end]. A nil end
// date means the window is open-ended.
func WithinWindow(ref, effective time.Time, end *time.Time) bool {
	if ref.Before(effective) {
		return false
	}
	if end == nil {
		return true
	}
	return !ref.After(*end)
}
