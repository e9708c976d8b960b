package service

import (
	"errors"
	"testing"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/mocks"
	"go-clinic-management/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQuote_EmptyOrderChargesMinimum(t *testing.T) {
	catalogRepo := new(mocks.MockCatalogRepository)
	catalogRepo.On("FindModalitiesByIDs", mock.Anything, []uuid.UUID{}).Return([]entity.Modality{}, nil)
	catalogRepo.On("FindLaboratoryTestsByIDs", mock.Anything, []uuid.UUID{}).Return([]entity.LaboratoryTest{}, nil)

	quote, err := NewPricingCalculator(testLogger(), catalogRepo).Quote(nil, &entity.ServiceOrder{})

	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(20)), "got %s", quote.Total)
	catalogRepo.AssertNotCalled(t, "FindServiceByID", mock.Anything, mock.Anything)
	catalogRepo.AssertExpectations(t)
}

func TestQuote_SumsEveryComponent(t *testing.T) {
	serviceID, therapyID, scanID, labID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	catalogRepo := new(mocks.MockCatalogRepository)
	catalogRepo.On("FindServiceByID", mock.Anything, serviceID).
		Return(&entity.Service{ID: serviceID, Price: decimal.RequireFromString("100.50")}, nil)
	catalogRepo.On("FindTherapyByID", mock.Anything, therapyID).
		Return(&entity.Therapy{ID: therapyID, Price: decimal.NewFromInt(75)}, nil)
	catalogRepo.On("FindModalitiesByIDs", mock.Anything, []uuid.UUID{scanID}).
		Return([]entity.Modality{{ID: scanID, Price: decimal.NewFromInt(50)}}, nil)
	catalogRepo.On("FindLaboratoryTestsByIDs", mock.Anything, []uuid.UUID{labID}).
		Return([]entity.LaboratoryTest{{ID: labID, Price: decimal.RequireFromString("24.50")}}, nil)

	order := &entity.ServiceOrder{
		ServiceID:  &serviceID,
		TherapyID:  &therapyID,
		ScanIDs:    []uuid.UUID{scanID, scanID},
		LabWorkIDs: []uuid.UUID{labID},
	}
	quote, err := NewPricingCalculator(testLogger(), catalogRepo).Quote(nil, order)

	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(250)), "got %s", quote.Total)
	assert.Len(t, quote.Scans, 1)
	catalogRepo.AssertExpectations(t)
}

func TestQuote_SingleScanIsNotRaisedToMinimum(t *testing.T) {
	scanID := uuid.New()
	catalogRepo := new(mocks.MockCatalogRepository)
	catalogRepo.On("FindModalitiesByIDs", mock.Anything, []uuid.UUID{scanID}).
		Return([]entity.Modality{{ID: scanID, Price: decimal.NewFromInt(50)}}, nil)
	catalogRepo.On("FindLaboratoryTestsByIDs", mock.Anything, []uuid.UUID{}).Return(nil, nil)

	quote, err := NewPricingCalculator(testLogger(), catalogRepo).Quote(nil, &entity.ServiceOrder{ScanIDs: []uuid.UUID{scanID}})

	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(50)))
}

func TestQuote_MissingReferences(t *testing.T) {
	t.Run("service", func(t *testing.T) {
		serviceID := uuid.New()
		catalogRepo := new(mocks.MockCatalogRepository)
		catalogRepo.On("FindServiceByID", mock.Anything, serviceID).Return(nil, nil)

		_, err := NewPricingCalculator(testLogger(), catalogRepo).Quote(nil, &entity.ServiceOrder{ServiceID: &serviceID})

		assert.ErrorIs(t, err, ErrServiceNotFound)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("therapy", func(t *testing.T) {
		therapyID := uuid.New()
		catalogRepo := new(mocks.MockCatalogRepository)
		catalogRepo.On("FindTherapyByID", mock.Anything, therapyID).Return(nil, nil)

		_, err := NewPricingCalculator(testLogger(), catalogRepo).Quote(nil, &entity.ServiceOrder{TherapyID: &therapyID})

		assert.ErrorIs(t, err, ErrTherapyNotFound)
	})

	t.Run("scan", func(t *testing.T) {
		known, unknown := uuid.New(), uuid.New()
		catalogRepo := new(mocks.MockCatalogRepository)
		catalogRepo.On("FindModalitiesByIDs", mock.Anything, []uuid.UUID{known, unknown}).
			Return([]entity.Modality{{ID: known, Price: decimal.NewFromInt(50)}}, nil)

		_, err := NewPricingCalculator(testLogger(), catalogRepo).Quote(nil, &entity.ServiceOrder{ScanIDs: []uuid.UUID{known, unknown}})

		assert.ErrorIs(t, err, ErrModalityNotFound)
		catalogRepo.AssertNotCalled(t, "FindLaboratoryTestsByIDs", mock.Anything, mock.Anything)
	})

	t.Run("lab work", func(t *testing.T) {
		labID := uuid.New()
		catalogRepo := new(mocks.MockCatalogRepository)
		catalogRepo.On("FindModalitiesByIDs", mock.Anything, []uuid.UUID{}).Return(nil, nil)
		catalogRepo.On("FindLaboratoryTestsByIDs", mock.Anything, []uuid.UUID{labID}).Return(nil, nil)

		_, err := NewPricingCalculator(testLogger(), catalogRepo).Quote(nil, &entity.ServiceOrder{LabWorkIDs: []uuid.UUID{labID}})

		assert.ErrorIs(t, err, ErrLaboratoryTestNotFound)
	})
}

func TestQuote_RepositoryError(t *testing.T) {
	serviceID := uuid.New()
	dbErr := errors.New("connection reset")
	catalogRepo := new(mocks.MockCatalogRepository)
	catalogRepo.On("FindServiceByID", mock.Anything, serviceID).Return(nil, dbErr)

	_, err := NewPricingCalculator(testLogger(), catalogRepo).Quote(nil, &entity.ServiceOrder{ServiceID: &serviceID})

	assert.ErrorIs(t, err, dbErr)
}

func TestTotalPrice_ZeroPricedItemsFallBackToMinimum(t *testing.T) {
	q := &PriceQuote{Scans: []entity.Modality{{Price: decimal.Zero}}}
	assert.True(t, TotalPrice(q).Equal(MinimumCharge))
}
