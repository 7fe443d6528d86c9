package export

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iho/energyledger/internal/domain"
)

func sampleTrades() []*domain.Trade {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*domain.Trade{
		{ID: "t1", Sequence: 1, Prosumer: "X", Consumer: "Y", Amount: 5, PricePerUnit: 3, TotalPrice: 15, Timestamp: ts},
		{ID: "t2", Sequence: 2, Prosumer: "X", Consumer: "Z", Amount: 10, PricePerUnit: 2, TotalPrice: 20, Timestamp: ts.Add(time.Minute)},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sampleTrades())
	assert.Equal(t, 2, sum.Trades)
	assert.True(t, sum.TotalEnergy.Equal(decimal.NewFromInt(15)))
	assert.True(t, sum.TotalValue.Equal(decimal.NewFromInt(35)))
}

func TestSummarize_DoesNotWrap(t *testing.T) {
	trades := []*domain.Trade{
		{Amount: math.MaxUint64, TotalPrice: math.MaxUint64},
		{Amount: 1, TotalPrice: 1},
	}
	sum := Summarize(trades)
	assert.Equal(t, "18446744073709551616", sum.TotalEnergy.String())
	assert.Equal(t, "18446744073709551616", sum.TotalValue.String())
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	assert.Zero(t, sum.Trades)
	assert.True(t, sum.TotalEnergy.IsZero())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	f, err = ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Contains(t, f.ContentType(), "spreadsheetml")

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestTradesXLSX(t *testing.T) {
	data, err := TradesXLSX("Trade history", sampleTrades(), time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Trade history", title)

	total, err := f.GetCellValue("summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "35", total)

	rows, err := f.GetRows("trades")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Sequence", rows[0][0])
	assert.Equal(t, "t2", rows[2][1])
	assert.Equal(t, "20", rows[2][6])
}

func TestTradesPDF(t *testing.T) {
	data, err := TradesPDF("Trade history", sampleTrades(), time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRender(t *testing.T) {
	data, err := Render(FormatPDF, "x", nil, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = Render(Format("csv"), "x", nil, time.Now())
	assert.Error(t, err)
}
