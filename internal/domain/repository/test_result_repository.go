package repository

import (
	"go-clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TestResultRepository interface {
	Create(db *gorm.DB, result *entity.LaboratoryTestResult) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.LaboratoryTestResult, error)
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) ([]entity.LaboratoryTestResult, error)
	UpdateFields(db *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	CreateValues(db *gorm.DB, values []entity.BiomarkerValue) error
	UpdateValue(db *gorm.DB, value *entity.BiomarkerValue) error
}
