package services

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"bizops-analytics-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// ヘッダー検出に使う列名の候補
var (
	dateColumnCandidates  = []string{"date", "timestamp", "日付", "年月日"}
	valueColumnCandidates = []string{"value", "quantity", "amount", "sales", "revenue", "販売数", "数量", "売上", "金額"}
)

// ParseSeriesFile アップロードされた .xlsx / .csv から時系列を読み込む
//
// 1行目はヘッダー。日付列と値列は候補名で検出し、空セルを含む行は読み飛ばす。
func ParseSeriesFile(fileName string, r io.Reader) ([]models.TimePoint, error) {
	const op = "ParseSeriesFile"

	rows, err := readRows(fileName, r)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, invalidInput(op, "file", "a header row and at least 1 data row are required")
	}

	header := rows[0]
	dateIdx := findIndex(header, dateColumnCandidates...)
	valueIdx := findIndex(header, valueColumnCandidates...)
	if dateIdx == -1 || valueIdx == -1 {
		return nil, invalidInput(op, "header", "date and value columns are required, got %v", header)
	}

	points := make([]models.TimePoint, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if dateIdx >= len(row) || valueIdx >= len(row) {
			continue
		}
		rawDate, rawValue := strings.TrimSpace(row[dateIdx]), strings.TrimSpace(row[valueIdx])
		if rawDate == "" || rawValue == "" {
			continue
		}

		date, err := parseCellDate(rawDate)
		if err != nil {
			return nil, invalidInput(op, "date", "row %d: %v", line, err)
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(rawValue, ",", ""), 64)
		if err != nil {
			return nil, invalidInput(op, "value", "row %d: %q is not a number", line, rawValue)
		}
		if err := checkFinite(op, "value", value); err != nil {
			return nil, err
		}
		points = append(points, models.TimePoint{Date: date, Value: value})
	}

	if len(points) == 0 {
		return nil, invalidInput(op, "file", "no usable data rows")
	}
	return points, nil
}

func readRows(fileName string, r io.Reader) ([][]string, error) {
	const op = "ParseSeriesFile"
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, invalidInput(op, "file", "failed to open Excel file: %v", err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, invalidInput(op, "file", "failed to read Excel sheet: %v", err)
		}
		return rows, nil
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, invalidInput(op, "file", "failed to parse CSV: %v", err)
		}
		return rows, nil
	default:
		return nil, invalidInput(op, "file", "unsupported file format %q, upload .xlsx or .csv", fileName)
	}
}

// parseCellDate 日付文字列、またはExcelのシリアル値を解釈する
func parseCellDate(raw string) (models.Date, error) {
	date, err := models.ParseDate(raw)
	if err == nil {
		return date, nil
	}
	if serial, serr := strconv.ParseFloat(raw, 64); serr == nil && serial > 0 && serial < 2958466 {
		t, terr := excelize.ExcelDateToTime(serial, false)
		if terr == nil {
			return models.DateOf(t), nil
		}
	}
	return models.Date{}, err
}

// findIndex finds the index of the first candidate in a slice
func findIndex(slice []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range slice {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

// ToDemandObservations 時系列を需要観測に変換
func ToDemandObservations(points []models.TimePoint) []models.DemandObservation {
	out := make([]models.DemandObservation, len(points))
	for i, p := range points {
		out[i] = models.DemandObservation{Date: p.Date, Quantity: p.Value}
	}
	return out
}

// ToRevenueObservations 時系列を売上観測に変換
func ToRevenueObservations(points []models.TimePoint) []models.RevenueObservation {
	out := make([]models.RevenueObservation, len(points))
	for i, p := range points {
		out[i] = models.RevenueObservation{Date: p.Date, Amount: p.Value}
	}
	return out
}
