package entity

import (
	"time"

	"github.com/google/uuid"
)

// LaboratoryTestResult holds the measured biomarker values of one lab test
// performed for an appointment
type LaboratoryTestResult struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID    uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	LaboratoryTestID uuid.UUID `gorm:"type:uuid;not null" json:"laboratory_test_id"`
	Title            string    `gorm:"type:varchar(255);not null" json:"title"`
	Notes            string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointment    *Appointment     `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	LaboratoryTest *LaboratoryTest  `gorm:"foreignKey:LaboratoryTestID" json:"laboratory_test,omitempty"`
	Values         []BiomarkerValue `gorm:"foreignKey:TestResultID" json:"values,omitempty"`
}

func (LaboratoryTestResult) TableName() string {
	return "laboratory_test_results"
}

// BiomarkerValue is a single measurement inside a test result
type BiomarkerValue struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TestResultID uuid.UUID `gorm:"type:uuid;not null;index" json:"test_result_id"`
	BiomarkerID  uuid.UUID `gorm:"type:uuid;not null" json:"biomarker_id"`
	Value        float64   `gorm:"not null" json:"value"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Biomarker *Biomarker `gorm:"foreignKey:BiomarkerID" json:"biomarker,omitempty"`
}

func (BiomarkerValue) TableName() string {
	return "biomarker_values"
}

// BiomarkerReading is a submitted measurement before it is matched to a stored value
type BiomarkerReading struct {
	BiomarkerID uuid.UUID
	Value       float64
}
