package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChangeSet is the {deleted, new, updated} batch for one EMR collection.
// Deleted holds lookup ids (allergy id, diagnosis id, ...).
type ChangeSet[T any] struct {
	Deleted []uuid.UUID `json:"deleted" validate:"dive,required"`
	New     []T         `json:"new" validate:"dive"`
	Updated []T         `json:"updated" validate:"dive"`
}

type AllergyEntryRequest struct {
	AllergyID uuid.UUID `json:"allergyId" validate:"required"`
	Notes     string    `json:"notes" validate:"max=2000"`
	Reaction  string    `json:"reaction" validate:"max=2000"`
}

type DiagnosisEntryRequest struct {
	DiagnosisID uuid.UUID  `json:"diagnosisId" validate:"required"`
	Notes       string     `json:"notes" validate:"max=2000"`
	Date        *time.Time `json:"date"`
}

type MedicalConditionEntryRequest struct {
	MedicalConditionID uuid.UUID  `json:"medicalConditionId" validate:"required"`
	Notes              string     `json:"notes" validate:"max=2000"`
	Date               *time.Time `json:"date"`
}

type SurgeryEntryRequest struct {
	SurgeryID uuid.UUID  `json:"surgeryId" validate:"required"`
	Notes     string     `json:"notes" validate:"max=2000"`
	Date      *time.Time `json:"date"`
}

type MedicationEntryRequest struct {
	MedicationID uuid.UUID  `json:"medicationId" validate:"required"`
	Notes        string     `json:"notes" validate:"max=2000"`
	Dosage       string     `json:"dosage" validate:"max=100"`
	Frequency    string     `json:"frequency" validate:"max=100"`
	Required     bool       `json:"required"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
}

type InsuranceRequest struct {
	ProviderName    string    `json:"providerName" validate:"required,max=255"`
	PolicyNumber    string    `json:"policyNumber" validate:"required,max=100"`
	PolicyStartDate time.Time `json:"policyStartDate" validate:"required"`
	PolicyEndDate   time.Time `json:"policyEndDate" validate:"required,gtfield=PolicyStartDate"`
}

type CreateEmrRequest struct {
	Height            *float64                       `json:"height" validate:"omitempty,gt=0,lte=300"`
	Weight            *float64                       `json:"weight" validate:"omitempty,gt=0,lte=700"`
	BloodType         *string                        `json:"bloodType" validate:"omitempty,oneof=a_positive a_negative b_positive b_negative ab_positive ab_negative o_positive o_negative"`
	SmokingStatus     *string                        `json:"smokingStatus" validate:"omitempty,oneof=never former current"`
	AlcoholStatus     *string                        `json:"alcoholStatus" validate:"omitempty,oneof=never former current"`
	DrugsUsage        *string                        `json:"drugsUsage" validate:"omitempty,oneof=never former current"`
	Insurance         *InsuranceRequest              `json:"insurance"`
	Allergies         []AllergyEntryRequest          `json:"allergies" validate:"dive"`
	Diagnoses         []DiagnosisEntryRequest        `json:"diagnoses" validate:"dive"`
	MedicalConditions []MedicalConditionEntryRequest `json:"medicalConditions" validate:"dive"`
	Surgeries         []SurgeryEntryRequest          `json:"surgeries" validate:"dive"`
	Medications       []MedicationEntryRequest       `json:"medications" validate:"dive"`
}

type UpdateEmrRequest struct {
	Height            *float64                                 `json:"height" validate:"omitempty,gt=0,lte=300"`
	Weight            *float64                                 `json:"weight" validate:"omitempty,gt=0,lte=700"`
	BloodType         *string                                  `json:"bloodType" validate:"omitempty,oneof=a_positive a_negative b_positive b_negative ab_positive ab_negative o_positive o_negative"`
	SmokingStatus     *string                                  `json:"smokingStatus" validate:"omitempty,oneof=never former current"`
	AlcoholStatus     *string                                  `json:"alcoholStatus" validate:"omitempty,oneof=never former current"`
	DrugsUsage        *string                                  `json:"drugsUsage" validate:"omitempty,oneof=never former current"`
	Insurance         *InsuranceRequest                        `json:"insurance"`
	Allergies         *ChangeSet[AllergyEntryRequest]          `json:"allergies"`
	Diagnoses         *ChangeSet[DiagnosisEntryRequest]        `json:"diagnoses"`
	MedicalConditions *ChangeSet[MedicalConditionEntryRequest] `json:"medicalConditions"`
	Surgeries         *ChangeSet[SurgeryEntryRequest]          `json:"surgeries"`
	Medications       *ChangeSet[MedicationEntryRequest]       `json:"medications"`
}

// Response DTOs

type InsuranceResponse struct {
	ProviderName    string    `json:"providerName"`
	PolicyNumber    string    `json:"policyNumber"`
	PolicyStartDate time.Time `json:"policyStartDate"`
	PolicyEndDate   time.Time `json:"policyEndDate"`
}

type EmrEntryResponse struct {
	ID        uuid.UUID  `json:"id"`
	LookupID  uuid.UUID  `json:"lookupId"`
	Name      string     `json:"name,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Reaction  string     `json:"reaction,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	Dosage    string     `json:"dosage,omitempty"`
	Frequency string     `json:"frequency,omitempty"`
	Required  *bool      `json:"required,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type EmrResponse struct {
	ID                uuid.UUID          `json:"id"`
	PatientID         uuid.UUID          `json:"patientId"`
	Height            *float64           `json:"height,omitempty"`
	Weight            *float64           `json:"weight,omitempty"`
	BloodType         *string            `json:"bloodType,omitempty"`
	SmokingStatus     *string            `json:"smokingStatus,omitempty"`
	AlcoholStatus     *string            `json:"alcoholStatus,omitempty"`
	DrugsUsage        *string            `json:"drugsUsage,omitempty"`
	Insurance         *InsuranceResponse `json:"insurance,omitempty"`
	Allergies         []EmrEntryResponse `json:"allergies"`
	Diagnoses         []EmrEntryResponse `json:"diagnoses"`
	MedicalConditions []EmrEntryResponse `json:"medicalConditions"`
	Surgeries         []EmrEntryResponse `json:"surgeries"`
	Medications       []EmrEntryResponse `json:"medications"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}
