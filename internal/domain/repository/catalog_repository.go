package repository

import (
	"go-clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository reads the lookup and billable catalogs
type CatalogRepository interface {
	FindServiceByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error)
	FindTherapyByID(db *gorm.DB, id uuid.UUID) (*entity.Therapy, error)
	FindModalitiesByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.Modality, error)
	FindLaboratoryTestsByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.LaboratoryTest, error)
	FindLaboratoryTestByID(db *gorm.DB, id uuid.UUID) (*entity.LaboratoryTest, error)
	// FindMissingIDs returns the ids that have no row in model's table
	FindMissingIDs(db *gorm.DB, model interface{}, ids []uuid.UUID) ([]uuid.UUID, error)
}
