package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"monetization-backend/internal/domains/withdrawal/model"
	"monetization-backend/internal/shared"
	"monetization-backend/pkg/logger"
)

const payoutSheet = "Payouts"

// ExportPayoutSheet xuất các yêu cầu rút tiền đang pending ra file xlsx để chuyển khoản
func (s *WithdrawalService) ExportPayoutSheet(ctx context.Context, actor shared.Actor) ([]byte, error) {
	pending, err := s.ListPending(ctx, actor)
	if err != nil {
		return nil, err
	}

	f, err := buildPayoutFile(pending)
	if err != nil {
		return nil, fmt.Errorf("build payout sheet: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write payout sheet: %w", err)
	}

	logger.Info("Payout sheet exported", map[string]interface{}{"rows": len(pending), "by": actor.UserID})
	return buf.Bytes(), nil
}

func buildPayoutFile(rows []*model.WithdrawalRequest) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", payoutSheet); err != nil {
		return nil, err
	}

	headers := []string{"Withdrawal ID", "User ID", "Phone", "Amount", "Tax", "Total Deducted", "Requested At"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(payoutSheet, cell, h); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(payoutSheet, "A1", lastCell, headerStyle)
	}

	for i, w := range rows {
		values := []interface{}{
			w.ID.String(),
			w.UserID,
			w.Phone,
			w.Amount.InexactFloat64(),
			w.Tax.InexactFloat64(),
			w.TotalDeducted.InexactFloat64(),
			w.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(payoutSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
