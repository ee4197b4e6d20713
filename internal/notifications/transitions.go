package notifications

import "github.com/clinicdesk/clinicdesk-backend/pkg/enums"

// transitionTargets is the legal lifecycle adjacency. Anything not listed is
// rejected; a transition to the current status is treated as a no-op upstream.
var transitionTargets = map[enums.NotificationStatus][]enums.NotificationStatus{
	enums.NotificationStatusScheduled: {
		enums.NotificationStatusSent,
		enums.NotificationStatusFailed,
	},
	enums.NotificationStatusSent: {
		enums.NotificationStatusDelivered,
		enums.NotificationStatusFailed,
	},
	enums.NotificationStatusDelivered: {
		enums.NotificationStatusRead,
	},
}

func canTransition(from, to enums.NotificationStatus) bool {
	for _, candidate := range transitionTargets[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
