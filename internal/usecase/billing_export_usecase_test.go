package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/mocks"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportBillings(t *testing.T) {
	db, _ := newMockDB(t)
	repo := new(mocks.MockBillingRepository)
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 30, 23, 59, 59, 0, time.UTC)

	billings := []entity.Billing{
		{
			ID:     uuid.New(),
			Number: 1001,
			Amount: decimal.RequireFromString("150.75"),
			Status: entity.BillingStatusPaid,
			Date:   time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
			Appointment: &entity.Appointment{
				Number:  31,
				Status:  entity.AppointmentStatusCompleted,
				Patient: &entity.User{FullName: "Budi Santoso"},
			},
		},
		{
			ID:     uuid.New(),
			Number: 1002,
			Amount: decimal.NewFromInt(20),
			Status: entity.BillingStatusPaid,
			Date:   time.Date(2026, 4, 3, 11, 0, 0, 0, time.UTC),
		},
	}
	repo.On("FindForExport", mock.Anything, &entity.BillingFilter{
		Status: entity.BillingStatusPaid,
		From:   &from,
		To:     &to,
	}).Return(billings, nil)

	data, err := NewBillingExportUsecase(db, testLogger(), repo).Export(context.Background(), adminActor, &dto.BillingExportQuery{
		Status: "paid",
		From:   &from,
		To:     &to,
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{billingSheet}, f.GetSheetList())
	rows, err := f.GetRows(billingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, billingExportHeader, rows[0])
	assert.Equal(t, []string{"1001", "2026-04-02 10:00:00", "paid", "150.75", "Appointment #31", "completed", "Budi Santoso"}, rows[1])
	assert.Equal(t, "1002", rows[2][0])
	assert.Equal(t, "20", rows[2][3])
}

func TestExportBillings_AdminOnly(t *testing.T) {
	db, _ := newMockDB(t)
	repo := new(mocks.MockBillingRepository)

	_, err := NewBillingExportUsecase(db, testLogger(), repo).Export(context.Background(), doctorActor, &dto.BillingExportQuery{})

	assert.ErrorIs(t, err, ErrActionNotAllowed)
	repo.AssertNotCalled(t, "FindForExport", mock.Anything, mock.Anything)
}
