package enums

import "fmt"

// ScheduleKind selects the creation branch of the lifecycle engine: scheduled
// campaigns consume a push credit and wait for the delivery worker, immediate
// sends are persisted as already sent.
type ScheduleKind string

const (
	ScheduleKindScheduled ScheduleKind = "scheduled"
	ScheduleKindImmediate ScheduleKind = "immediate"
)

var validScheduleKinds = []ScheduleKind{
	ScheduleKindScheduled,
	ScheduleKindImmediate,
}

// IsValid reports whether the value is a known ScheduleKind.
func (k ScheduleKind) IsValid() bool {
	for _, candidate := range validScheduleKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseScheduleKind converts raw input into a ScheduleKind.
func ParseScheduleKind(value string) (ScheduleKind, error) {
	for _, candidate := range validScheduleKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid schedule kind %q", value)
}
