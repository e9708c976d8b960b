package repository

import (
	"errors"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type emrRepository struct{}

func NewEmrRepository() domainRepo.EmrRepository {
	return &emrRepository{}
}

func (r *emrRepository) Create(db *gorm.DB, emr *entity.ElectronicMedicalRecord) error {
	return db.Omit(clause.Associations).Create(emr).Error
}

func (r *emrRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.ElectronicMedicalRecord, error) {
	var emr entity.ElectronicMedicalRecord
	err := db.Where("patient_id = ?", patientID).First(&emr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &emr, nil
}

func (r *emrRepository) FindDetailByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.ElectronicMedicalRecord, error) {
	var emr entity.ElectronicMedicalRecord
	err := db.
		Preload("Insurance").
		Preload("Allergies.Allergy").
		Preload("Diagnoses.Diagnosis").
		Preload("MedicalConditions.MedicalCondition").
		Preload("Surgeries.Surgery").
		Preload("Medications.Medication").
		Where("patient_id = ?", patientID).
		First(&emr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &emr, nil
}

func (r *emrRepository) UpdateFields(db *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return db.Model(&entity.ElectronicMedicalRecord{}).Where("id = ?", id).Updates(updates).Error
}

func (r *emrRepository) FindInsuranceByEmrID(db *gorm.DB, emrID uuid.UUID) (*entity.Insurance, error) {
	var insurance entity.Insurance
	err := db.Where("emr_id = ?", emrID).First(&insurance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &insurance, nil
}

// UpsertInsurance replaces the EMR's insurance keyed on emr_id
func (r *emrRepository) UpsertInsurance(db *gorm.DB, insurance *entity.Insurance) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "emr_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider_name", "policy_number", "policy_start_date", "policy_end_date", "updated_at"}),
	}).Create(insurance).Error
}
