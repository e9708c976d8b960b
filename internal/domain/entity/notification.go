package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a per-user message about something that happened to one of their records
type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ActorID    *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null" json:"target_id"`
	TargetName string     `gorm:"type:varchar(255);not null" json:"target_name"`
	Type       string     `gorm:"type:varchar(100);not null" json:"type"`
	Action     string     `gorm:"type:varchar(100);not null" json:"action"`
	IsRead     bool       `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Notification and action log target types
const (
	TargetTypeAppointment          = "appointments"
	TargetTypeEmr                  = "emr"
	TargetTypeLaboratoryTestResult = "laboratory-test-results"
)

// NotificationFilter narrows a user's notification listing
type NotificationFilter struct {
	UnreadOnly bool
	Ascending  bool
	Page       int
	Limit      int
}

// Offset returns the row offset for the filter's page
func (f *NotificationFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
