package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"shopcart-backend/internal/domains/coupon/model"
)

// ExportUsageHistory renders a coupon's usage ledger as an XLSX
// workbook. Returns the file bytes and a suggested filename.
func (s *couponService) ExportUsageHistory(ctx context.Context, couponID uuid.UUID, filter *model.UsageHistoryFilter) ([]byte, string, error) {
	coupon, err := s.repo.FindByID(ctx, couponID)
	if err != nil {
		return nil, "", err
	}

	// Export ignores pagination and pulls the full filtered ledger.
	exportFilter := *filter
	exportFilter.Page = 1
	exportFilter.Limit = 10000

	usages, _, err := s.repo.GetUsageHistory(ctx, couponID, &exportFilter)
	if err != nil {
		return nil, "", err
	}

	f, err := buildUsageWorkbook(coupon, usages)
	if err != nil {
		return nil, "", fmt.Errorf("build usage workbook: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write usage workbook: %w", err)
	}

	filename := fmt.Sprintf("coupon-usage-%s-%s.xlsx", coupon.Code, time.Now().Format("20060102"))

	return buf.Bytes(), filename, nil
}

func buildUsageWorkbook(coupon *model.Coupon, usages []*model.CouponUsageDetail) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Usage"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{
		"Usage ID",
		"Coupon Code",
		"User ID",
		"User Email",
		"User Name",
		"Used At",
	}

	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", "F1", headerStyle)
	}

	for i, u := range usages {
		rowNum := i + 2

		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, rowNum)
			return name
		}

		f.SetCellValue(sheetName, cell(1), u.ID.String())
		f.SetCellValue(sheetName, cell(2), coupon.Code)
		f.SetCellValue(sheetName, cell(3), u.UserID.String())
		f.SetCellValue(sheetName, cell(4), u.UserEmail)
		f.SetCellValue(sheetName, cell(5), u.UserFullName)
		f.SetCellValue(sheetName, cell(6), u.UsedAt.Format("2006-01-02 15:04:05"))
	}

	if err := f.SetColWidth(sheetName, "A", "F", 24); err != nil {
		return nil, err
	}

	return f, nil
}
