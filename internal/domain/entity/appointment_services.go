package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentServices is the snapshot of what was ordered with an appointment.
// Only Notes may change after creation.
type AppointmentServices struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`
	ServiceID *uuid.UUID `gorm:"type:uuid" json:"service_id,omitempty"`
	TherapyID *uuid.UUID `gorm:"type:uuid" json:"therapy_id,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Service  *Service         `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Therapy  *Therapy         `gorm:"foreignKey:TherapyID" json:"therapy,omitempty"`
	Scans    []Modality       `gorm:"many2many:appointment_services_scans" json:"scans,omitempty"`
	LabWorks []LaboratoryTest `gorm:"many2many:appointment_services_lab_works" json:"lab_works,omitempty"`
}

func (AppointmentServices) TableName() string {
	return "appointment_services"
}

// ServiceOrder is the set of catalog references a patient asks for when booking
type ServiceOrder struct {
	ServiceID  *uuid.UUID
	TherapyID  *uuid.UUID
	ScanIDs    []uuid.UUID
	LabWorkIDs []uuid.UUID
	Notes      string
}
