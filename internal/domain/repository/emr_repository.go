package repository

import (
	"go-clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmrRepository interface {
	Create(db *gorm.DB, emr *entity.ElectronicMedicalRecord) error
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.ElectronicMedicalRecord, error)
	// FindDetailByPatientID loads the record with insurance and every active entry
	FindDetailByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.ElectronicMedicalRecord, error)
	UpdateFields(db *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	FindInsuranceByEmrID(db *gorm.DB, emrID uuid.UUID) (*entity.Insurance, error)
	UpsertInsurance(db *gorm.DB, insurance *entity.Insurance) error
}

// EmrEntryRepository stores one EMR collection. Reads only see active entries.
type EmrEntryRepository[E any] interface {
	FindActiveByEmrID(db *gorm.DB, emrID uuid.UUID) ([]E, error)
	CreateBatch(db *gorm.DB, entries []E) error
	Update(db *gorm.DB, entry *E) error
	SoftDeleteByIDs(db *gorm.DB, ids []uuid.UUID) error
}
