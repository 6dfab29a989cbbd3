package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"statbasket/domain/stats"
	"statbasket/internal"
	"statbasket/internal/errors"
	"statbasket/ports"

	"github.com/xuri/excelize/v2"
)

var _ ports.SampleReader = (*DataReader)(nil)

// maxReportedRows caps how many offending rows an error message lists.
const maxReportedRows = 10

// DataReader handles reading sample columns from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger

	data *ExcelData
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.Named("DataReader"),
	}
}

// WithSheet selects a worksheet by name. The first sheet is used otherwise.
// Ignored for CSV files.
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	r.data = nil
	return r
}

// ReadData reads the file once and caches the result.
func (r *DataReader) ReadData() (*ExcelData, error) {
	if r.data != nil {
		return r.data, nil
	}
	r.logger.Debug("Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType)))
	}

	r.data = r.processRows(rows)
	return r.data, nil
}

// readExcelRows reads every row of the selected sheet
func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open Excel file")
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.NotFound(fmt.Sprintf("sheet %q", sheet))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to read sheet %q", sheet)
	}
	r.logger.Debug("Sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// readCSVRows reads every record of a CSV file
func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read CSV file")
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) *ExcelData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData, len(headers))
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(headers), len(dataRows))
	return &ExcelData{Headers: headers, Rows: dataRows}
}

// Column returns the numeric values of one column. Blank cells are skipped.
func (r *DataReader) Column(name string) (stats.Sample, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	if !data.HasColumn(name) {
		return nil, errors.NotFound(fmt.Sprintf("column %q", name))
	}

	sample := make(stats.Sample, 0, len(data.Rows))
	var bad []int
	for i, row := range data.Rows {
		cell := row[name]
		if cell == "" {
			continue
		}
		v, ok := parseNumber(cell)
		if !ok {
			bad = append(bad, i+2)
			continue
		}
		sample = append(sample, v)
	}
	if len(bad) > 0 {
		return nil, nonNumeric(name, bad)
	}
	r.logger.Debug("Column %q: %d values", name, len(sample))
	return sample, nil
}

// PairedColumns returns two aligned columns for a dependent test. Rows where
// both cells are blank are skipped; a row with only one blank cell is an error.
func (r *DataReader) PairedColumns(nameX, nameY string) (stats.Sample, stats.Sample, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, nil, err
	}
	for _, name := range []string{nameX, nameY} {
		if !data.HasColumn(name) {
			return nil, nil, errors.NotFound(fmt.Sprintf("column %q", name))
		}
	}

	x := make(stats.Sample, 0, len(data.Rows))
	y := make(stats.Sample, 0, len(data.Rows))
	var bad, unpaired []int
	for i, row := range data.Rows {
		cx, cy := row[nameX], row[nameY]
		if cx == "" && cy == "" {
			continue
		}
		if cx == "" || cy == "" {
			unpaired = append(unpaired, i+2)
			continue
		}
		vx, okx := parseNumber(cx)
		vy, oky := parseNumber(cy)
		if !okx || !oky {
			bad = append(bad, i+2)
			continue
		}
		x = append(x, vx)
		y = append(y, vy)
	}
	if len(bad) > 0 {
		return nil, nil, nonNumeric(nameX+"/"+nameY, bad)
	}
	if len(unpaired) > 0 {
		return nil, nil, errors.InvalidInput(fmt.Sprintf("columns %q and %q are not paired at rows %s", nameX, nameY, formatRows(unpaired)))
	}
	return x, y, nil
}

// parseNumber accepts plain numbers plus thousands separators and a trailing percent sign.
func parseNumber(cell string) (float64, bool) {
	s := strings.ReplaceAll(cell, ",", "")
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if percent {
		v /= 100
	}
	return v, true
}

func nonNumeric(column string, rows []int) error {
	return errors.InvalidInput(fmt.Sprintf("column %q has non-numeric values at rows %s", column, formatRows(rows)))
}

func formatRows(rows []int) string {
	shown := rows
	if len(shown) > maxReportedRows {
		shown = shown[:maxReportedRows]
	}
	parts := make([]string, len(shown))
	for i, row := range shown {
		parts[i] = strconv.Itoa(row)
	}
	out := strings.Join(parts, ", ")
	if extra := len(rows) - len(shown); extra > 0 {
		out += fmt.Sprintf(" and %d more", extra)
	}
	return out
}
