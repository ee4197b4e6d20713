package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Clinic represents the canonical tenant model. Every notification, patient
// and credit event hangs off a clinic row.
type Clinic struct {
	ID                      uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name                    string         `gorm:"column:name;not null"`
	LegalName               *string        `gorm:"column:legal_name"`
	Phone                   *string        `gorm:"column:phone"`
	Email                   *string        `gorm:"column:email"`
	Timezone                string         `gorm:"column:timezone;not null;default:'UTC'"`
	PushNotificationBalance int            `gorm:"column:push_notification_balance;not null;default:0"`
	Specialties             pq.StringArray `gorm:"column:specialties;type:text[]"`
	OwnerID                 uuid.UUID      `gorm:"column:owner;type:uuid;not null"`
	IsActive                bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt               time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// Location resolves the clinic timezone, defaulting to UTC when the stored
// name is unknown.
func (c Clinic) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
