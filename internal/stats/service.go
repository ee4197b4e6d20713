package stats

import (
	"context"
	"math"
	"time"

	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/google/uuid"
)

type clinicLocator interface {
	Location(ctx context.Context, clinicID uuid.UUID) (*time.Location, error)
}

// Service computes the notification dashboard summary. All reads, no writes.
type Service interface {
	Summary(ctx context.Context, clinicID uuid.UUID, asOf time.Time) (*Summary, error)
}

type service struct {
	repo       Repository
	clinics    clinicLocator
	windowDays int
}

// Summary is the point-in-time aggregation returned to dashboard callers.
// Rates are integer percentages; divisions by zero yield 0.
type Summary struct {
	TotalNotifications  int64 `json:"totalNotifications"`
	ScheduledToday      int64 `json:"scheduledToday"`
	PendingCount        int64 `json:"pendingCount"`
	UpcomingCount       int64 `json:"upcomingCount"`
	SentCount           int64 `json:"sentCount"`
	DeliveredCount      int64 `json:"deliveredCount"`
	ReadCount           int64 `json:"readCount"`
	FailedCount         int64 `json:"failedCount"`
	DeliverySuccessRate int   `json:"deliverySuccessRate"`
	EngagementRate      int   `json:"engagementRate"`
	FailureRate         int   `json:"failureRate"`
}

// NewService wires the aggregation engine. windowDays controls the upcoming
// count horizon and defaults to 7 when non-positive.
func NewService(repo Repository, clinics clinicLocator, windowDays int) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stats repository required")
	}
	if clinics == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "clinic locator required")
	}
	if windowDays <= 0 {
		windowDays = 7
	}
	return &service{repo: repo, clinics: clinics, windowDays: windowDays}, nil
}

func (s *service) Summary(ctx context.Context, clinicID uuid.UUID, asOf time.Time) (*Summary, error) {
	if clinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	loc, err := s.clinics.Location(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus(ctx, clinicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count notifications by status")
	}

	// Day boundaries in the clinic's local calendar, converted back to
	// instants for the store query.
	local := asOf.In(loc)
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	startOfTomorrow := startOfDay.AddDate(0, 0, 1)
	windowEnd := startOfDay.AddDate(0, 0, s.windowDays)

	scheduledToday, err := s.repo.CountScheduledBetween(ctx, clinicID, startOfDay, startOfTomorrow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count scheduled today")
	}
	upcoming, err := s.repo.CountScheduledBetween(ctx, clinicID, startOfDay, windowEnd)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count upcoming")
	}

	summary := &Summary{
		ScheduledToday: scheduledToday,
		UpcomingCount:  upcoming,
		PendingCount:   counts[enums.NotificationStatusScheduled],
		SentCount:      counts[enums.NotificationStatusSent],
		DeliveredCount: counts[enums.NotificationStatusDelivered],
		ReadCount:      counts[enums.NotificationStatusRead],
		FailedCount:    counts[enums.NotificationStatusFailed],
	}
	for _, count := range counts {
		summary.TotalNotifications += count
	}

	totalSent := summary.SentCount + summary.DeliveredCount + summary.ReadCount + summary.FailedCount
	summary.DeliverySuccessRate = percentage(summary.DeliveredCount+summary.ReadCount, totalSent)
	summary.EngagementRate = percentage(summary.ReadCount, summary.DeliveredCount)
	summary.FailureRate = percentage(summary.FailedCount, totalSent)

	return summary, nil
}

func percentage(numerator, denominator int64) int {
	if denominator == 0 {
		return 0
	}
	return int(math.Round(100 * float64(numerator) / float64(denominator)))
}
