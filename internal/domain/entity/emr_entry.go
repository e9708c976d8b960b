package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmrEntry is satisfied by pointers to the five EMR collection types so the
// merge engine can handle every collection with the same code.
type EmrEntry[E any] interface {
	*E
	// LookupKey is the id of the catalog entity the entry references
	LookupKey() uuid.UUID
	EntryID() uuid.UUID
	// Stamp prepares a new entry for insertion under emrID
	Stamp(emrID uuid.UUID, now time.Time)
	// Overwrite copies the mutable fields of src
	Overwrite(src *E, now time.Time)
}

type PatientAllergy struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmrID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"emr_id"`
	AllergyID uuid.UUID      `gorm:"type:uuid;not null" json:"allergy_id"`
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	Reaction  string         `gorm:"type:text" json:"reaction,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Allergy *Allergy `gorm:"foreignKey:AllergyID" json:"allergy,omitempty"`
}

func (PatientAllergy) TableName() string {
	return "patient_allergies"
}

func (p *PatientAllergy) LookupKey() uuid.UUID { return p.AllergyID }
func (p *PatientAllergy) EntryID() uuid.UUID   { return p.ID }

func (p *PatientAllergy) Stamp(emrID uuid.UUID, now time.Time) {
	p.ID = uuid.New()
	p.EmrID = emrID
	p.CreatedAt = now
	p.UpdatedAt = now
}

func (p *PatientAllergy) Overwrite(src *PatientAllergy, now time.Time) {
	p.Notes = src.Notes
	p.Reaction = src.Reaction
	p.UpdatedAt = now
}

type PatientDiagnosis struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmrID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"emr_id"`
	DiagnosisID uuid.UUID      `gorm:"type:uuid;not null" json:"diagnosis_id"`
	Notes       string         `gorm:"type:text" json:"notes,omitempty"`
	Date        *time.Time     `json:"date,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Diagnosis *Diagnosis `gorm:"foreignKey:DiagnosisID" json:"diagnosis,omitempty"`
}

func (PatientDiagnosis) TableName() string {
	return "patient_diagnoses"
}

func (p *PatientDiagnosis) LookupKey() uuid.UUID { return p.DiagnosisID }
func (p *PatientDiagnosis) EntryID() uuid.UUID   { return p.ID }

func (p *PatientDiagnosis) Stamp(emrID uuid.UUID, now time.Time) {
	p.ID = uuid.New()
	p.EmrID = emrID
	p.CreatedAt = now
	p.UpdatedAt = now
}

func (p *PatientDiagnosis) Overwrite(src *PatientDiagnosis, now time.Time) {
	p.Notes = src.Notes
	p.Date = src.Date
	p.UpdatedAt = now
}

type PatientMedicalCondition struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmrID              uuid.UUID      `gorm:"type:uuid;not null;index" json:"emr_id"`
	MedicalConditionID uuid.UUID      `gorm:"type:uuid;not null" json:"medical_condition_id"`
	Notes              string         `gorm:"type:text" json:"notes,omitempty"`
	Date               *time.Time     `json:"date,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	MedicalCondition *MedicalCondition `gorm:"foreignKey:MedicalConditionID" json:"medical_condition,omitempty"`
}

func (PatientMedicalCondition) TableName() string {
	return "patient_medical_conditions"
}

func (p *PatientMedicalCondition) LookupKey() uuid.UUID { return p.MedicalConditionID }
func (p *PatientMedicalCondition) EntryID() uuid.UUID   { return p.ID }

func (p *PatientMedicalCondition) Stamp(emrID uuid.UUID, now time.Time) {
	p.ID = uuid.New()
	p.EmrID = emrID
	p.CreatedAt = now
	p.UpdatedAt = now
}

func (p *PatientMedicalCondition) Overwrite(src *PatientMedicalCondition, now time.Time) {
	p.Notes = src.Notes
	p.Date = src.Date
	p.UpdatedAt = now
}

type PatientSurgery struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmrID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"emr_id"`
	SurgeryID uuid.UUID      `gorm:"type:uuid;not null" json:"surgery_id"`
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	Date      *time.Time     `json:"date,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Surgery *Surgery `gorm:"foreignKey:SurgeryID" json:"surgery,omitempty"`
}

func (PatientSurgery) TableName() string {
	return "patient_surgeries"
}

func (p *PatientSurgery) LookupKey() uuid.UUID { return p.SurgeryID }
func (p *PatientSurgery) EntryID() uuid.UUID   { return p.ID }

func (p *PatientSurgery) Stamp(emrID uuid.UUID, now time.Time) {
	p.ID = uuid.New()
	p.EmrID = emrID
	p.CreatedAt = now
	p.UpdatedAt = now
}

func (p *PatientSurgery) Overwrite(src *PatientSurgery, now time.Time) {
	p.Notes = src.Notes
	p.Date = src.Date
	p.UpdatedAt = now
}

type PatientMedication struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmrID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"emr_id"`
	MedicationID uuid.UUID      `gorm:"type:uuid;not null" json:"medication_id"`
	Notes        string         `gorm:"type:text" json:"notes,omitempty"`
	Dosage       string         `gorm:"type:varchar(100)" json:"dosage,omitempty"`
	Frequency    string         `gorm:"type:varchar(100)" json:"frequency,omitempty"`
	Required     bool           `gorm:"not null;default:false" json:"required"`
	StartDate    *time.Time     `json:"start_date,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Medication *Medication `gorm:"foreignKey:MedicationID" json:"medication,omitempty"`
}

func (PatientMedication) TableName() string {
	return "patient_medications"
}

func (p *PatientMedication) LookupKey() uuid.UUID { return p.MedicationID }
func (p *PatientMedication) EntryID() uuid.UUID   { return p.ID }

func (p *PatientMedication) Stamp(emrID uuid.UUID, now time.Time) {
	p.ID = uuid.New()
	p.EmrID = emrID
	p.CreatedAt = now
	p.UpdatedAt = now
}

func (p *PatientMedication) Overwrite(src *PatientMedication, now time.Time) {
	p.Notes = src.Notes
	p.Dosage = src.Dosage
	p.Frequency = src.Frequency
	p.Required = src.Required
	p.StartDate = src.StartDate
	p.EndDate = src.EndDate
	p.UpdatedAt = now
}

// EmrChangeKind tags an EmrChange
type EmrChangeKind int

const (
	EmrChangeDelete EmrChangeKind = iota + 1
	EmrChangeInsert
	EmrChangeUpdate
)

func (k EmrChangeKind) String() string {
	switch k {
	case EmrChangeDelete:
		return "delete"
	case EmrChangeInsert:
		return "insert"
	case EmrChangeUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// EmrChange is one mutation of an EMR collection, keyed by the lookup entity id.
// Entry is unset for deletes.
type EmrChange[E any] struct {
	Kind     EmrChangeKind
	LookupID uuid.UUID
	Entry    E
}

// EmrPatch is a full EMR update: scalar fields, insurance and the five change-sets
type EmrPatch struct {
	Height        *float64
	Weight        *float64
	BloodType     *BloodType
	SmokingStatus *SubstanceUsage
	AlcoholStatus *SubstanceUsage
	DrugsUsage    *SubstanceUsage
	Insurance     *Insurance

	Allergies         []EmrChange[PatientAllergy]
	Diagnoses         []EmrChange[PatientDiagnosis]
	MedicalConditions []EmrChange[PatientMedicalCondition]
	Surgeries         []EmrChange[PatientSurgery]
	Medications       []EmrChange[PatientMedication]
}

// ScalarUpdates returns the column updates carried by the patch
func (p *EmrPatch) ScalarUpdates() map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Height != nil {
		updates["height"] = *p.Height
	}
	if p.Weight != nil {
		updates["weight"] = *p.Weight
	}
	if p.BloodType != nil {
		updates["blood_type"] = *p.BloodType
	}
	if p.SmokingStatus != nil {
		updates["smoking_status"] = *p.SmokingStatus
	}
	if p.AlcoholStatus != nil {
		updates["alcohol_status"] = *p.AlcoholStatus
	}
	if p.DrugsUsage != nil {
		updates["drugs_usage"] = *p.DrugsUsage
	}
	return updates
}
