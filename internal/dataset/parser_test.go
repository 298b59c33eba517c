package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCSVParser(t *testing.T) {
	input := "\uFEFFeventTime,pv_power,status\n" +
		"2024-06-01 10:00:00,123.4,ok\n" +
		"2024-06-01 10:01:00,,ok\n" +
		"2024-06-01 10:02:00,125.1,degraded\n"

	p := NewCSVParser("eventTime")
	header, rows, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"eventTime", "pv_power", "status"}, header)
	require.Len(t, rows, 3)

	assert.Equal(t, "2024-06-01 10:00:00", rows[0].Labels["eventTime"])
	assert.InDelta(t, 123.4, rows[0].Values["pv_power"], 1e-9)
	assert.Equal(t, "ok", rows[0].Labels["status"])

	// Empty cell stays absent, not zero.
	_, ok := rows[1].Values["pv_power"]
	assert.False(t, ok)
}

func TestCSVParserRaggedRows(t *testing.T) {
	input := "eventTime,pv_power\n" +
		"2024-06-01 10:00:00,10\n" +
		"2024-06-01 10:01:00\n" +
		"2024-06-01 10:02:00,12,extra\n"

	p := NewCSVParser("eventTime")
	_, rows, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	_, ok := rows[1].Values["pv_power"]
	assert.False(t, ok)
	// Cells beyond the header are dropped.
	assert.InDelta(t, 12, rows[2].Values["pv_power"], 1e-9)
}

func TestCSVParserMissingTimeColumn(t *testing.T) {
	input := "timestamp,pv_power\n2024-06-01 10:00:00,10\n"

	p := NewCSVParser("eventTime")
	_, _, err := p.Parse(strings.NewReader(input))
	assert.Error(t, err)
}

func TestXLSXParser(t *testing.T) {
	buf := buildWorkbook(t,
		[]interface{}{"Date", "大气温度(℃)", "大气湿度(%RH)"},
		[][]interface{}{
			{"2024-06-01 10:00:00", 21.5, 40.0},
			{"2024-06-01 11:00:00", 22.0, nil},
			{nil, nil, nil},
		})

	p := NewXLSXParser("Date")
	header, rows, err := p.Parse(bytes.NewReader(buf))
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "大气温度(℃)", "大气湿度(%RH)"}, header)
	// The all-empty row is dropped.
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-06-01 10:00:00", rows[0].Labels["Date"])
	assert.InDelta(t, 21.5, rows[0].Values["大气温度(℃)"], 1e-9)

	_, ok := rows[1].Values["大气湿度(%RH)"]
	assert.False(t, ok)
}

func TestXLSXParserMissingTimeColumn(t *testing.T) {
	buf := buildWorkbook(t,
		[]interface{}{"when", "temp"},
		[][]interface{}{{"2024-06-01", 20.0}})

	p := NewXLSXParser("Date")
	_, _, err := p.Parse(bytes.NewReader(buf))
	assert.Error(t, err)
}

// buildWorkbook writes a single-sheet workbook to memory.
func buildWorkbook(t *testing.T, header []interface{}, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}
