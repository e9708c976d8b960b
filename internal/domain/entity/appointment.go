package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusApproved  AppointmentStatus = "approved"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// appointmentTransitions lists every legal edge of the appointment state machine.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:  {AppointmentStatusApproved, AppointmentStatusRejected},
	AppointmentStatusApproved: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

// CanTransitionAppointment reports whether from -> to is a legal edge
func CanTransitionAppointment(from, to AppointmentStatus) bool {
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment represents a patient visit and the services ordered for it
type Appointment struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Number     int64             `gorm:"autoIncrement;uniqueIndex;not null" json:"number"`
	Date       time.Time         `gorm:"not null;index" json:"date"`
	Status     AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PatientID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID   *uuid.UUID        `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	EmrID      uuid.UUID         `gorm:"type:uuid;not null" json:"emr_id"`
	BillingID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"billing_id"`
	ServicesID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"services_id"`
	VitalsID   *uuid.UUID        `gorm:"type:uuid" json:"vitals_id,omitempty"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient  *User                `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor   *User                `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Billing  *Billing             `gorm:"foreignKey:BillingID" json:"billing,omitempty"`
	Services *AppointmentServices `gorm:"foreignKey:ServicesID" json:"services,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// DisplayName is how an appointment is referred to in logs and notifications
func (a *Appointment) DisplayName() string {
	return fmt.Sprintf("Appointment #%d", a.Number)
}

// IsPending checks if appointment is waiting for approval
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsApproved checks if appointment is approved
func (a *Appointment) IsApproved() bool {
	return a.Status == AppointmentStatusApproved
}

// IsOwnedBy checks if the appointment belongs to the given patient
func (a *Appointment) IsOwnedBy(patientID uuid.UUID) bool {
	return a.PatientID == patientID
}

// AppointmentFilter narrows appointment listings
type AppointmentFilter struct {
	Status    AppointmentStatus
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Page      int
	Limit     int
}

// Offset returns the row offset for the filter's page
func (f *AppointmentFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
