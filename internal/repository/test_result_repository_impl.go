package repository

import (
	"errors"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testResultRepository struct{}

func NewTestResultRepository() domainRepo.TestResultRepository {
	return &testResultRepository{}
}

func (r *testResultRepository) Create(db *gorm.DB, result *entity.LaboratoryTestResult) error {
	return db.Omit("Appointment", "LaboratoryTest", "Values.Biomarker").Create(result).Error
}

func (r *testResultRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.LaboratoryTestResult, error) {
	var result entity.LaboratoryTestResult
	err := db.
		Preload("LaboratoryTest.Biomarkers").
		Preload("Values", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Values.Biomarker").
		Where("id = ?", id).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) ([]entity.LaboratoryTestResult, error) {
	var results []entity.LaboratoryTestResult
	err := db.
		Preload("LaboratoryTest").
		Preload("Values.Biomarker").
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *testResultRepository) UpdateFields(db *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return db.Model(&entity.LaboratoryTestResult{}).Where("id = ?", id).Updates(updates).Error
}

func (r *testResultRepository) CreateValues(db *gorm.DB, values []entity.BiomarkerValue) error {
	if len(values) == 0 {
		return nil
	}
	return db.Omit("Biomarker").Create(&values).Error
}

// UpdateValue writes only the value column so rows keep their identity
func (r *testResultRepository) UpdateValue(db *gorm.DB, value *entity.BiomarkerValue) error {
	return db.Model(&entity.BiomarkerValue{}).
		Where("id = ?", value.ID).
		Updates(map[string]interface{}{
			"value":      value.Value,
			"updated_at": value.UpdatedAt,
		}).Error
}
