package xslsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/utils"
	"github.com/xuri/excelize/v2"
)

const (
	progressSheet = "Progress"
	pricesSheet   = "Prices"
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, report model.ProgressReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if len(report.Rows) == 0 {
		return nil, "", errors.New("empty report")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	headerStyle, err := g.headerStyle(f)
	if err != nil {
		return nil, "", err
	}

	if err = g.fillProgressSheet(f, report, headerStyle); err != nil {
		slog.Error("got error while filling progress sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillPricesSheet(f, report, headerStyle); err != nil {
		slog.Error("got error while filling prices sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	// Удаляем лист по умолчанию "Sheet1"
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"}, // Светло-голубой цвет
		},
	})
}

func (g *XSLSXGenerator) fillProgressSheet(f *excelize.File, report model.ProgressReport, headerStyle int) error {
	if _, err := f.NewSheet(progressSheet); err != nil {
		return err
	}

	if err := f.MergeCell(progressSheet, "A1", "D1"); err != nil {
		return err
	}
	_ = f.SetCellStr(progressSheet, "A1", fmt.Sprintf("Build-out progress, %s", report.GeneratedAt.Format("2006-01-02 15:04")))
	if err := f.SetCellStyle(progressSheet, "A1", "D2", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	_ = f.SetCellStr(progressSheet, "A2", "ETF")
	_ = f.SetCellStr(progressSheet, "B2", "Purchased (£)")
	_ = f.SetCellStr(progressSheet, "C2", "Target (£)")
	_ = f.SetCellStr(progressSheet, "D2", "Progress (%)")

	for i, row := range report.Rows {
		_ = f.SetCellStr(progressSheet, fmt.Sprintf("A%d", i+3), row.Symbol)
		_ = f.SetCellValue(progressSheet, fmt.Sprintf("B%d", i+3), row.Purchased.InexactFloat64())
		_ = f.SetCellValue(progressSheet, fmt.Sprintf("C%d", i+3), row.Target.InexactFloat64())
		_ = f.SetCellValue(progressSheet, fmt.Sprintf("D%d", i+3), row.Progress.Round(1).InexactFloat64())
	}

	totalRow := len(report.Rows) + 3
	_ = f.SetCellStr(progressSheet, fmt.Sprintf("A%d", totalRow), "Total")
	_ = f.SetCellValue(progressSheet, fmt.Sprintf("B%d", totalRow), report.Totals.Purchased.InexactFloat64())
	_ = f.SetCellValue(progressSheet, fmt.Sprintf("C%d", totalRow), report.Totals.Target.InexactFloat64())
	_ = f.SetCellValue(progressSheet, fmt.Sprintf("D%d", totalRow), report.Totals.Progress.Round(1).InexactFloat64())

	return f.SetColWidth(progressSheet, "A", "D", 16)
}

func (g *XSLSXGenerator) fillPricesSheet(f *excelize.File, report model.ProgressReport, headerStyle int) error {
	if _, err := f.NewSheet(pricesSheet); err != nil {
		return err
	}

	_ = f.SetCellStr(pricesSheet, "A1", "ETF")
	_ = f.SetCellStr(pricesSheet, "B1", "Ticker")
	_ = f.SetCellStr(pricesSheet, "C1", "Price")
	if err := f.SetCellStyle(pricesSheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, quote := range report.Quotes {
		_ = f.SetCellStr(pricesSheet, fmt.Sprintf("A%d", i+2), quote.Symbol)
		_ = f.SetCellStr(pricesSheet, fmt.Sprintf("B%d", i+2), quote.Ticker)
		if quote.Price.Ok() {
			_ = f.SetCellValue(pricesSheet, fmt.Sprintf("C%d", i+2), quote.Price.Value.InexactFloat64())
		} else {
			_ = f.SetCellStr(pricesSheet, fmt.Sprintf("C%d", i+2), quote.String())
		}
	}

	return nil
}
