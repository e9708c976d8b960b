package entity

import (
	"time"

	"github.com/google/uuid"
)

type BloodType string

const (
	BloodTypeAPositive  BloodType = "a_positive"
	BloodTypeANegative  BloodType = "a_negative"
	BloodTypeBPositive  BloodType = "b_positive"
	BloodTypeBNegative  BloodType = "b_negative"
	BloodTypeABPositive BloodType = "ab_positive"
	BloodTypeABNegative BloodType = "ab_negative"
	BloodTypeOPositive  BloodType = "o_positive"
	BloodTypeONegative  BloodType = "o_negative"
)

// SubstanceUsage describes smoking, alcohol and drug habits
type SubstanceUsage string

const (
	SubstanceUsageNever   SubstanceUsage = "never"
	SubstanceUsageFormer  SubstanceUsage = "former"
	SubstanceUsageCurrent SubstanceUsage = "current"
)

// ElectronicMedicalRecord is the patient-scoped clinical record. One per patient.
type ElectronicMedicalRecord struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"patient_id"`
	Height        *float64        `gorm:"type:numeric(5,2)" json:"height,omitempty"`
	Weight        *float64        `gorm:"type:numeric(5,2)" json:"weight,omitempty"`
	BloodType     *BloodType      `gorm:"type:varchar(20)" json:"blood_type,omitempty"`
	SmokingStatus *SubstanceUsage `gorm:"type:varchar(20)" json:"smoking_status,omitempty"`
	AlcoholStatus *SubstanceUsage `gorm:"type:varchar(20)" json:"alcohol_status,omitempty"`
	DrugsUsage    *SubstanceUsage `gorm:"type:varchar(20)" json:"drugs_usage,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient           *User                     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Insurance         *Insurance                `gorm:"foreignKey:EmrID" json:"insurance,omitempty"`
	Allergies         []PatientAllergy          `gorm:"foreignKey:EmrID" json:"allergies,omitempty"`
	Diagnoses         []PatientDiagnosis        `gorm:"foreignKey:EmrID" json:"diagnoses,omitempty"`
	MedicalConditions []PatientMedicalCondition `gorm:"foreignKey:EmrID" json:"medical_conditions,omitempty"`
	Surgeries         []PatientSurgery          `gorm:"foreignKey:EmrID" json:"surgeries,omitempty"`
	Medications       []PatientMedication       `gorm:"foreignKey:EmrID" json:"medications,omitempty"`
}

func (ElectronicMedicalRecord) TableName() string {
	return "electronic_medical_records"
}

// Insurance is the optional coverage attached to an EMR
type Insurance struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmrID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"emr_id"`
	ProviderName    string    `gorm:"type:varchar(255);not null" json:"provider_name"`
	PolicyNumber    string    `gorm:"type:varchar(100);not null" json:"policy_number"`
	PolicyStartDate time.Time `gorm:"not null" json:"policy_start_date"`
	PolicyEndDate   time.Time `gorm:"not null" json:"policy_end_date"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Insurance) TableName() string {
	return "insurances"
}

// IsValidAt checks the policy has not ended before now
func (i *Insurance) IsValidAt(now time.Time) bool {
	return !i.PolicyEndDate.Before(now)
}
