package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog is the action log: who did what to which record
type AuditLog struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action       string     `gorm:"type:varchar(100);not null;index" json:"action"`
	TargetID     *uuid.UUID `gorm:"type:uuid;index" json:"target_id,omitempty"`
	TargetName   string     `gorm:"type:varchar(255)" json:"target_name,omitempty"`
	TargetType   string     `gorm:"type:varchar(100);index" json:"target_type,omitempty"`
	TargetUserID *uuid.UUID `gorm:"type:uuid;index" json:"target_user_id,omitempty"`
	Metadata     JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON maps a jsonb column
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB value type %T", value)
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Common audit actions
const (
	AuditActionAppointmentCreate   = "appointment.create"
	AuditActionAppointmentApprove  = "appointment.approve"
	AuditActionAppointmentReject   = "appointment.reject"
	AuditActionAppointmentCancel   = "appointment.cancel"
	AuditActionAppointmentComplete = "appointment.complete"
	AuditActionAppointmentExpire   = "appointment.expire"
	AuditActionEmrCreate           = "emr.create"
	AuditActionEmrUpdate           = "emr.update"
	AuditActionTestResultCreate    = "test_result.create"
	AuditActionTestResultUpdate    = "test_result.update"
)

// AuditLogFilter narrows audit log listings
type AuditLogFilter struct {
	Action     string
	TargetType string
	TargetID   *uuid.UUID
	Page       int
	Limit      int
}

// Offset returns the row offset for the filter's page
func (f *AuditLogFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
