package repository

import (
	"errors"
	"time"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type billingRepository struct{}

func NewBillingRepository() domainRepo.BillingRepository {
	return &billingRepository{}
}

func (r *billingRepository) Create(db *gorm.DB, billing *entity.Billing) error {
	return db.Omit("Appointment").Create(billing).Error
}

func (r *billingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Billing, error) {
	var billing entity.Billing
	err := db.Where("id = ?", id).First(&billing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &billing, nil
}

// TransitionStatus updates the billing only while it is still in from.
// Returns affected rows: 0 means the billing had already left that status.
func (r *billingRepository) TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.BillingStatus, now time.Time) (int64, error) {
	result := db.Model(&entity.Billing{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *billingRepository) CancelOpenByIDs(db *gorm.DB, ids []uuid.UUID, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := db.Model(&entity.Billing{}).
		Where("id IN ? AND status = ?", ids, entity.BillingStatusInitial).
		Updates(map[string]interface{}{
			"status":     entity.BillingStatusCancelled,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *billingRepository) FindForExport(db *gorm.DB, filter *entity.BillingFilter) ([]entity.Billing, error) {
	query := db.Model(&entity.Billing{})
	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.From != nil {
			query = query.Where("date >= ?", *filter.From)
		}
		if filter.To != nil {
			query = query.Where("date <= ?", *filter.To)
		}
	}

	var billings []entity.Billing
	err := query.
		Preload("Appointment").
		Preload("Appointment.Patient").
		Order("number ASC").
		Find(&billings).Error
	if err != nil {
		return nil, err
	}
	return billings, nil
}
