package repository

import (
	"errors"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type catalogRepository struct{}

func NewCatalogRepository() domainRepo.CatalogRepository {
	return &catalogRepository{}
}

func (r *catalogRepository) FindServiceByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	err := db.Where("id = ?", id).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *catalogRepository) FindTherapyByID(db *gorm.DB, id uuid.UUID) (*entity.Therapy, error) {
	var therapy entity.Therapy
	err := db.Where("id = ?", id).First(&therapy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &therapy, nil
}

func (r *catalogRepository) FindModalitiesByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.Modality, error) {
	var modalities []entity.Modality
	if len(ids) == 0 {
		return modalities, nil
	}
	if err := db.Where("id IN ?", ids).Find(&modalities).Error; err != nil {
		return nil, err
	}
	return modalities, nil
}

func (r *catalogRepository) FindLaboratoryTestsByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.LaboratoryTest, error) {
	var tests []entity.LaboratoryTest
	if len(ids) == 0 {
		return tests, nil
	}
	if err := db.Where("id IN ?", ids).Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *catalogRepository) FindLaboratoryTestByID(db *gorm.DB, id uuid.UUID) (*entity.LaboratoryTest, error) {
	var test entity.LaboratoryTest
	err := db.Preload("Biomarkers").Where("id = ?", id).First(&test).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &test, nil
}

func (r *catalogRepository) FindMissingIDs(db *gorm.DB, model interface{}, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uuid.UUID
	if err := db.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	present := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
