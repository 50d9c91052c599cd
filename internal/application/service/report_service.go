package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jmarquez/insurance-billing/internal/application/port"
	"github.com/jmarquez/insurance-billing/internal/domain/entity"
)

// ReportService exports the bill registry for the accounting department
type ReportService interface {
	// ExportBillRegistry writes every active bill into a workbook, one row
	// per bill, and returns it ready to be saved or streamed
	ExportBillRegistry(ctx context.Context) (*excelize.File, error)
}

type reportServiceImpl struct {
	bills  port.BillRepository
	logger Logger
}

// NewReportService creates a new ReportService
func NewReportService(bills port.BillRepository, logger Logger) ReportService {
	return &reportServiceImpl{bills: bills, logger: logger}
}

const registrySheet = "Bill Registry"

var registryHeaders = []string{
	"Claim Number", "Invoice Number", "Provider", "Billing Type", "Currency",
	"Total Billed", "Billed Amount", "Administrative Amount", "Retention",
	"Indemnifiable Amount", "Amount Local", "Amount Foreign", "Exchange Rate",
	"Status", "Last Stage", "Batch Tag", "Arrival Date", "Updated At",
}

// pageSize bounds each repository read while exporting
const pageSize = 200

// ExportBillRegistry exports all active bills to an Excel workbook
func (s *reportServiceImpl) ExportBillRegistry(ctx context.Context) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", registrySheet)

	for col, header := range registryHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(registrySheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	row := 2
	for offset := 0; ; offset += pageSize {
		bills, err := s.bills.List(ctx, pageSize, offset)
		if err != nil {
			s.logger.Error("Failed to list bills for export", "offset", offset, "error", err)
			return nil, fmt.Errorf("list bills: %w", err)
		}
		if len(bills) == 0 {
			break
		}

		for _, bill := range bills {
			if err := writeRegistryRow(f, row, bill); err != nil {
				return nil, err
			}
			row++
		}

		if len(bills) < pageSize {
			break
		}
	}

	s.logger.Info("Bill registry exported", "rows", row-2)
	return f, nil
}

func writeRegistryRow(f *excelize.File, row int, bill *entity.Bill) error {
	values := []interface{}{
		bill.ClaimNumber,
		bill.InvoiceNumber,
		bill.ProviderID,
		bill.BillingType,
		bill.Currency,
		bill.TotalBilled,
		bill.BilledAmount,
		bill.AdministrativeAmount,
		bill.Retention,
		bill.IndemnifiableAmount,
		bill.AmountLocal,
		bill.AmountForeign,
		bill.ExchangeRate,
		bill.Status,
		bill.StageSequence,
		bill.BatchTag,
		formatDate(bill.ArrivalDate),
		bill.UpdatedAt.Format("2006-01-02 15:04"),
	}

	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(registrySheet, cell, value); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
