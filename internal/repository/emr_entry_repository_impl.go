package repository

import (
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// emrEntryRepository serves every EMR collection. Soft delete comes from the
// entry's gorm.DeletedAt field, so finds skip removed rows.
type emrEntryRepository[E any] struct{}

func NewEmrEntryRepository[E any]() domainRepo.EmrEntryRepository[E] {
	return &emrEntryRepository[E]{}
}

func (r *emrEntryRepository[E]) FindActiveByEmrID(db *gorm.DB, emrID uuid.UUID) ([]E, error) {
	var entries []E
	if err := db.Where("emr_id = ?", emrID).Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *emrEntryRepository[E]) CreateBatch(db *gorm.DB, entries []E) error {
	if len(entries) == 0 {
		return nil
	}
	return db.Omit(clause.Associations).Create(&entries).Error
}

func (r *emrEntryRepository[E]) Update(db *gorm.DB, entry *E) error {
	return db.Omit(clause.Associations).Save(entry).Error
}

func (r *emrEntryRepository[E]) SoftDeleteByIDs(db *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	var model E
	return db.Where("id IN ?", ids).Delete(&model).Error
}
