package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseSeriesFileCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"日付,商品,販売数",
		"2024-01-01,A,\"1,200\"",
		"2024/01/02,A,130",
		",A,999",
		"20240103,A,140.5",
	}, "\n")

	points, err := ParseSeriesFile("sales.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2024-01-01", points[0].Date.String())
	assert.Equal(t, 1200.0, points[0].Value)
	assert.Equal(t, "2024-01-02", points[1].Date.String())
	assert.Equal(t, "2024-01-03", points[2].Date.String())
	assert.Equal(t, 140.5, points[2].Value)
}

func TestParseSeriesFileXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Date", "Quantity"},
		{"2024-02-01", 10},
		{"2024-02-02", 12},
		{"2024-02-03", 11},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	points, err := ParseSeriesFile("upload.XLSX", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "2024-02-02", points[1].Date.String())
	assert.Equal(t, 12.0, points[1].Value)
}

func TestParseSeriesFileExcelSerialDate(t *testing.T) {
	// 45292 = 2024-01-01
	points, err := ParseSeriesFile("serial.csv", strings.NewReader("date,value\n45292,5\n45293,6\n"))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-01", points[0].Date.String())
	assert.Equal(t, "2024-01-02", points[1].Date.String())
}

func TestParseSeriesFileErrors(t *testing.T) {
	testCases := []struct {
		name     string
		fileName string
		content  string
	}{
		{"unsupported extension", "data.txt", "date,value\n2024-01-01,1\n"},
		{"header only", "data.csv", "date,value\n"},
		{"missing value column", "data.csv", "date,name\n2024-01-01,x\n"},
		{"bad number", "data.csv", "date,value\n2024-01-01,abc\n"},
		{"bad date", "data.csv", "date,value\nnot-a-date,1\n"},
		{"no usable rows", "data.csv", "date,value\n,\n,\n"},
		{"broken xlsx", "data.xlsx", "not a zip"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSeriesFile(tc.fileName, strings.NewReader(tc.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestToObservations(t *testing.T) {
	points, err := ParseSeriesFile("s.csv", strings.NewReader("date,amount\n2024-01-01,10\n2024-01-02,20\n"))
	require.NoError(t, err)

	demand := ToDemandObservations(points)
	revenue := ToRevenueObservations(points)
	require.Len(t, demand, 2)
	require.Len(t, revenue, 2)
	assert.Equal(t, 20.0, demand[1].Quantity)
	assert.Equal(t, 20.0, revenue[1].Amount)
	assert.Equal(t, points[0].Date, revenue[0].Date)
}
