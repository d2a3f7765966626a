// Package tabular reads CSV and XLSX files into a header row and data rows.
// Cells come back as trimmed strings; interpretation is left to the caller.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ubuntu/decorate"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptyFile is returned when the file has no rows at all.
	ErrEmptyFile = errors.New("file is empty")
	// ErrEmptyHeader is returned when the header row holds no field ids.
	ErrEmptyHeader = errors.New("header row is empty")
	// ErrUnsupportedType is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedType = errors.New("unsupported file type, use .csv or .xlsx")
)

// Read loads the file and returns the header row and the data rows, in file
// order. Fully blank rows are dropped. The file type is picked by extension.
func Read(path string) (header []string, rows [][]string, err error) {
	defer decorate.OnError(&err, fmt.Sprintf("could not read %s", path))

	var all [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		all, err = readCSV(path)
	case ".xlsx":
		all, err = readXLSX(path)
	default:
		return nil, nil, ErrUnsupportedType
	}
	if err != nil {
		return nil, nil, err
	}

	if len(all) == 0 {
		return nil, nil, ErrEmptyFile
	}

	header = all[0]
	if !anyFilled(header) {
		return nil, nil, ErrEmptyHeader
	}

	for _, row := range all[1:] {
		if anyFilled(row) {
			rows = append(rows, row)
		}
	}
	return header, rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		records = append(records, record)
	}

	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	// First sheet only, like the original file contract.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return rows, nil
}

func anyFilled(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return true
		}
	}
	return false
}
