package enums

import "fmt"

// NotificationStatus maps to the notification_status enum in Postgres.
type NotificationStatus string

const (
	NotificationStatusScheduled NotificationStatus = "scheduled"
	NotificationStatusSent      NotificationStatus = "sent"
	NotificationStatusDelivered NotificationStatus = "delivered"
	NotificationStatusRead      NotificationStatus = "read"
	NotificationStatusFailed    NotificationStatus = "failed"
)

var validNotificationStatuses = []NotificationStatus{
	NotificationStatusScheduled,
	NotificationStatusSent,
	NotificationStatusDelivered,
	NotificationStatusRead,
	NotificationStatusFailed,
}

// String implements fmt.Stringer.
func (s NotificationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known NotificationStatus.
func (s NotificationStatus) IsValid() bool {
	for _, candidate := range validNotificationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further progression.
func (s NotificationStatus) IsTerminal() bool {
	return s == NotificationStatusRead || s == NotificationStatusFailed
}

// ParseNotificationStatus converts raw input into a NotificationStatus.
func ParseNotificationStatus(value string) (NotificationStatus, error) {
	for _, candidate := range validNotificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification status %q", value)
}
