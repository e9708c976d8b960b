package usecase

import (
	"bytes"
	"context"
	"fmt"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const billingSheet = "Billings"

var billingExportHeader = []string{
	"Number",
	"Date",
	"Status",
	"Amount",
	"Appointment",
	"Appointment Status",
	"Patient",
}

var billingColumnWidths = []float64{10, 20, 12, 14, 20, 20, 30}

type BillingExportUsecase interface {
	// Export renders the matching billings as an xlsx workbook
	Export(ctx context.Context, actor entity.Actor, query *dto.BillingExportQuery) ([]byte, error)
}

type billingExportUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	billingRepo repository.BillingRepository
}

func NewBillingExportUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	billingRepo repository.BillingRepository,
) BillingExportUsecase {
	return &billingExportUsecase{
		db:          db,
		log:         log,
		billingRepo: billingRepo,
	}
}

func (u *billingExportUsecase) Export(ctx context.Context, actor entity.Actor, query *dto.BillingExportQuery) ([]byte, error) {
	if !actor.Can(entity.CapabilityExportBillings) {
		return nil, ErrActionNotAllowed
	}

	billings, err := u.billingRepo.FindForExport(u.db.WithContext(ctx), &entity.BillingFilter{
		Status: entity.BillingStatus(query.Status),
		From:   query.From,
		To:     query.To,
	})
	if err != nil {
		u.log.Warnf("Failed to load billings for export: %+v", err)
		return nil, err
	}

	data, err := renderBillings(billings)
	if err != nil {
		u.log.Warnf("Failed to render billing export: %+v", err)
		return nil, err
	}

	u.log.Infof("Exported %d billings", len(billings))
	return data, nil
}

func renderBillings(billings []entity.Billing) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(billingSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(billingSheet, "A1", &billingExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(billingExportHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(billingSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range billingColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(billingSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, b := range billings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := billingRow(&b)
		if err := f.SetSheetRow(billingSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(billingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func billingRow(b *entity.Billing) []interface{} {
	amount, _ := b.Amount.Float64()
	row := []interface{}{
		b.Number,
		b.Date.Format("2006-01-02 15:04:05"),
		string(b.Status),
		amount,
		"",
		"",
		"",
	}
	if a := b.Appointment; a != nil {
		row[4] = a.DisplayName()
		row[5] = string(a.Status)
		if a.Patient != nil {
			row[6] = a.Patient.FullName
		}
	}
	return row
}
