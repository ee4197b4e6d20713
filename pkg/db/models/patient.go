package models

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a clinic-scoped recipient record. Push delivery requires the
// clinic app to be installed and a device token on file.
type Patient struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClinicID       uuid.UUID  `gorm:"column:clinic_id;type:uuid;not null;index"`
	FirstName      string     `gorm:"column:first_name;not null"`
	LastName       string     `gorm:"column:last_name;not null"`
	Email          *string    `gorm:"column:email"`
	Phone          *string    `gorm:"column:phone"`
	DateOfBirth    *time.Time `gorm:"column:date_of_birth;type:date"`
	PushToken      *string    `gorm:"column:push_token"`
	AppInstalledAt *time.Time `gorm:"column:app_installed_at"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// HasActiveAppInstall reports whether the patient completed app onboarding.
func (p Patient) HasActiveAppInstall() bool {
	return p.AppInstalledAt != nil
}

// HasPushCapability reports whether a push-capable device token is on file.
// App installation is tracked separately and only gates scheduled campaigns.
func (p Patient) HasPushCapability() bool {
	return p.PushToken != nil && *p.PushToken != ""
}
