package repository

import (
	"time"

	"go-clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BillingRepository interface {
	Create(db *gorm.DB, billing *entity.Billing) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Billing, error)
	TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.BillingStatus, now time.Time) (int64, error)
	CancelOpenByIDs(db *gorm.DB, ids []uuid.UUID, now time.Time) (int64, error)
	FindForExport(db *gorm.DB, filter *entity.BillingFilter) ([]entity.Billing, error)
}
