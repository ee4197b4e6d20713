package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres. The type is
// informational and does not affect lifecycle behavior.
type NotificationType string

const (
	NotificationTypeAppointment  NotificationType = "appointment"
	NotificationTypeMedicine     NotificationType = "medicine"
	NotificationTypeReminder     NotificationType = "reminder"
	NotificationTypeFollowup     NotificationType = "followup"
	NotificationTypeReview       NotificationType = "review"
	NotificationTypeAnnouncement NotificationType = "announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeAppointment,
	NotificationTypeMedicine,
	NotificationTypeReminder,
	NotificationTypeFollowup,
	NotificationTypeReview,
	NotificationTypeAnnouncement,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
