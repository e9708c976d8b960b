package service

import (
	"time"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBillingNotOpen        = apperror.Conflict("billing is already settled or cancelled")
	ErrInvalidSettlement     = apperror.Unprocessable("billing status must be paid or insurance")
	ErrInsuranceMissing      = apperror.Conflict("patient has no insurance on record")
	ErrInsuranceExpired      = apperror.Conflict("patient insurance policy has expired")
	ErrNegativeBillingAmount = apperror.Unprocessable("billing amount cannot be negative")
)

// BillingCoordinator owns billing status. Every write is conditional on the
// billing still being initial, so it can only move once.
type BillingCoordinator interface {
	// Open creates the initial billing of an appointment dated date
	Open(db *gorm.DB, amount decimal.Decimal, date time.Time) (*entity.Billing, error)
	// CheckInsuranceEligibility returns a Conflict error unless the EMR has an
	// insurance whose policy has not ended before now.
	CheckInsuranceEligibility(db *gorm.DB, emrID uuid.UUID, now time.Time) error
	Settle(db *gorm.DB, billingID uuid.UUID, method entity.BillingStatus, now time.Time) error
	Void(db *gorm.DB, billingID uuid.UUID, now time.Time) error
}

type billingCoordinator struct {
	log         *logrus.Logger
	billingRepo repository.BillingRepository
	emrRepo     repository.EmrRepository
}

func NewBillingCoordinator(log *logrus.Logger, billingRepo repository.BillingRepository, emrRepo repository.EmrRepository) BillingCoordinator {
	return &billingCoordinator{
		log:         log,
		billingRepo: billingRepo,
		emrRepo:     emrRepo,
	}
}

func (c *billingCoordinator) Open(db *gorm.DB, amount decimal.Decimal, date time.Time) (*entity.Billing, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeBillingAmount
	}

	billing := &entity.Billing{
		Amount: amount,
		Status: entity.BillingStatusInitial,
		Date:   date,
	}
	if err := c.billingRepo.Create(db, billing); err != nil {
		c.log.Warnf("Failed to create billing: %+v", err)
		return nil, err
	}
	return billing, nil
}

func (c *billingCoordinator) CheckInsuranceEligibility(db *gorm.DB, emrID uuid.UUID, now time.Time) error {
	insurance, err := c.emrRepo.FindInsuranceByEmrID(db, emrID)
	if err != nil {
		c.log.Warnf("Failed to find insurance for emr %s: %+v", emrID, err)
		return err
	}
	if insurance == nil {
		return ErrInsuranceMissing
	}
	if !insurance.IsValidAt(now) {
		return ErrInsuranceExpired
	}
	return nil
}

func (c *billingCoordinator) Settle(db *gorm.DB, billingID uuid.UUID, method entity.BillingStatus, now time.Time) error {
	if !entity.IsSettlementMethod(method) {
		return ErrInvalidSettlement
	}
	return c.transition(db, billingID, method, now)
}

func (c *billingCoordinator) Void(db *gorm.DB, billingID uuid.UUID, now time.Time) error {
	return c.transition(db, billingID, entity.BillingStatusCancelled, now)
}

func (c *billingCoordinator) transition(db *gorm.DB, billingID uuid.UUID, to entity.BillingStatus, now time.Time) error {
	affected, err := c.billingRepo.TransitionStatus(db, billingID, entity.BillingStatusInitial, to, now)
	if err != nil {
		c.log.Warnf("Failed to move billing %s to %s: %+v", billingID, to, err)
		return err
	}
	if affected == 0 {
		return ErrBillingNotOpen
	}
	return nil
}
