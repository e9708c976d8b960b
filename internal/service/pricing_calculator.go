package service

import (
	"fmt"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MinimumCharge is billed when nothing billable was ordered
var MinimumCharge = decimal.NewFromInt(20)

var (
	ErrServiceNotFound        = apperror.NotFound("service not found")
	ErrTherapyNotFound        = apperror.NotFound("therapy not found")
	ErrModalityNotFound       = apperror.NotFound("scan modality not found")
	ErrLaboratoryTestNotFound = apperror.NotFound("laboratory test not found")
)

// PriceQuote is a resolved service order and what it costs
type PriceQuote struct {
	Service  *entity.Service
	Therapy  *entity.Therapy
	Scans    []entity.Modality
	LabWorks []entity.LaboratoryTest
	Total    decimal.Decimal
}

type PricingCalculator interface {
	// Quote resolves every catalog reference of order and prices it.
	// A missing reference is a NotFound error.
	Quote(db *gorm.DB, order *entity.ServiceOrder) (*PriceQuote, error)
}

type pricingCalculator struct {
	log         *logrus.Logger
	catalogRepo repository.CatalogRepository
}

func NewPricingCalculator(log *logrus.Logger, catalogRepo repository.CatalogRepository) PricingCalculator {
	return &pricingCalculator{
		log:         log,
		catalogRepo: catalogRepo,
	}
}

func (p *pricingCalculator) Quote(db *gorm.DB, order *entity.ServiceOrder) (*PriceQuote, error) {
	quote := &PriceQuote{}

	if order.ServiceID != nil {
		service, err := p.catalogRepo.FindServiceByID(db, *order.ServiceID)
		if err != nil {
			p.log.Warnf("Failed to find service %s: %+v", *order.ServiceID, err)
			return nil, err
		}
		if service == nil {
			return nil, ErrServiceNotFound
		}
		quote.Service = service
	}

	if order.TherapyID != nil {
		therapy, err := p.catalogRepo.FindTherapyByID(db, *order.TherapyID)
		if err != nil {
			p.log.Warnf("Failed to find therapy %s: %+v", *order.TherapyID, err)
			return nil, err
		}
		if therapy == nil {
			return nil, ErrTherapyNotFound
		}
		quote.Therapy = therapy
	}

	scanIDs := uniqueIDs(order.ScanIDs)
	scans, err := p.catalogRepo.FindModalitiesByIDs(db, scanIDs)
	if err != nil {
		p.log.Warnf("Failed to find scan modalities: %+v", err)
		return nil, err
	}
	if len(scans) != len(scanIDs) {
		return nil, fmt.Errorf("%w: %d of %d requested", ErrModalityNotFound, len(scanIDs)-len(scans), len(scanIDs))
	}
	quote.Scans = scans

	labIDs := uniqueIDs(order.LabWorkIDs)
	labs, err := p.catalogRepo.FindLaboratoryTestsByIDs(db, labIDs)
	if err != nil {
		p.log.Warnf("Failed to find laboratory tests: %+v", err)
		return nil, err
	}
	if len(labs) != len(labIDs) {
		return nil, fmt.Errorf("%w: %d of %d requested", ErrLaboratoryTestNotFound, len(labIDs)-len(labs), len(labIDs))
	}
	quote.LabWorks = labs

	quote.Total = TotalPrice(quote)
	return quote, nil
}

// TotalPrice sums every priced component of q, falling back to MinimumCharge
// when the sum is zero.
func TotalPrice(q *PriceQuote) decimal.Decimal {
	total := decimal.Zero
	if q.Service != nil {
		total = total.Add(q.Service.Price)
	}
	if q.Therapy != nil {
		total = total.Add(q.Therapy.Price)
	}
	for _, scan := range q.Scans {
		total = total.Add(scan.Price)
	}
	for _, lab := range q.LabWorks {
		total = total.Add(lab.Price)
	}

	if total.IsZero() {
		return MinimumCharge
	}
	return total
}

// uniqueIDs drops repeated ids, keeping first-seen order
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
