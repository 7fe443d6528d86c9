// Package export renders trade history as downloadable statements.
package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/iho/energyledger/internal/domain"
)

// Format names a supported statement format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat maps a query value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatXLSX, FormatPDF:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the rendered document.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Summary aggregates a set of trades.
type Summary struct {
	Trades      int
	TotalEnergy decimal.Decimal
	TotalValue  decimal.Decimal
}

// Summarize totals energy and value across trades. Totals are decimals so
// the sum of many uint64 amounts cannot wrap.
func Summarize(trades []*domain.Trade) Summary {
	s := Summary{TotalEnergy: decimal.Zero, TotalValue: decimal.Zero}
	for _, t := range trades {
		s.Trades++
		s.TotalEnergy = s.TotalEnergy.Add(domain.Value(t.Amount))
		s.TotalValue = s.TotalValue.Add(domain.Value(t.TotalPrice))
	}
	return s
}

// Render dispatches to the renderer for format.
func Render(format Format, title string, trades []*domain.Trade, generatedAt time.Time) ([]byte, error) {
	switch format {
	case FormatPDF:
		return TradesPDF(title, trades, generatedAt)
	case FormatXLSX:
		return TradesXLSX(title, trades, generatedAt)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

var tradeColumns = []string{"Sequence", "Trade ID", "Prosumer", "Consumer", "Amount", "Price/Unit", "Total", "Timestamp"}

// TradesXLSX renders a workbook with a summary sheet and one row per trade.
func TradesXLSX(title string, trades []*domain.Trade, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	summarySheet := "summary"
	tradesSheet := "trades"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(tradesSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	sum := Summarize(trades)
	_ = f.SetCellValue(summarySheet, "A1", title)
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", generatedAt.UTC().Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Trades")
	_ = f.SetCellValue(summarySheet, "B4", sum.Trades)
	_ = f.SetCellValue(summarySheet, "A5", "Total Energy")
	_ = f.SetCellValue(summarySheet, "B5", sum.TotalEnergy.String())
	_ = f.SetCellValue(summarySheet, "A6", "Total Value")
	_ = f.SetCellValue(summarySheet, "B6", sum.TotalValue.String())

	for i, col := range tradeColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(tradesSheet, cell, col)
	}
	for i, t := range trades {
		row := strconv.Itoa(i + 2)
		_ = f.SetCellValue(tradesSheet, "A"+row, t.Sequence)
		_ = f.SetCellValue(tradesSheet, "B"+row, t.ID)
		_ = f.SetCellValue(tradesSheet, "C"+row, t.Prosumer)
		_ = f.SetCellValue(tradesSheet, "D"+row, t.Consumer)
		// uint64 cells are written as text; spreadsheet numbers are float64.
		_ = f.SetCellValue(tradesSheet, "E"+row, strconv.FormatUint(t.Amount, 10))
		_ = f.SetCellValue(tradesSheet, "F"+row, strconv.FormatUint(t.PricePerUnit, 10))
		_ = f.SetCellValue(tradesSheet, "G"+row, strconv.FormatUint(t.TotalPrice, 10))
		_ = f.SetCellValue(tradesSheet, "H"+row, t.Timestamp.UTC().Format(time.RFC3339))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// TradesPDF renders a landscape statement table of trades.
func TradesPDF(title string, trades []*domain.Trade, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	sum := Summarize(trades)
	pdf.Cell(0, 8, title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Trades: %d", sum.Trades))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Energy: %s", sum.TotalEnergy.String()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Value: %s", sum.TotalValue.String()))
	pdf.Ln(8)

	widths := []float64{20, 55, 40, 40, 28, 28, 30, 36}
	pdf.SetFont("Arial", "B", 9)
	for i, col := range tradeColumns {
		pdf.CellFormat(widths[i], 6, col, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, t := range trades {
		pdf.CellFormat(widths[0], 6, strconv.FormatInt(t.Sequence, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[1], 6, t.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, t.Prosumer, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, t.Consumer, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, strconv.FormatUint(t.Amount, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, strconv.FormatUint(t.PricePerUnit, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 6, strconv.FormatUint(t.TotalPrice, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[7], 6, t.Timestamp.UTC().Format("2006-01-02 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
