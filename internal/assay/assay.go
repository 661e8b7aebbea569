// Package assay extracts element grades from uploaded assay spreadsheets.
//
// Only the header row and the first data row of the first sheet are read.
// Each element is looked up under a fixed list of candidate column names
// and the first candidate present wins.
package assay

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for extensions other than .csv,
	// .xlsx and .xls.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoFile is returned when no upload was provided.
	ErrNoFile = errors.New("no file uploaded")
)

// Result holds the grades found in a file. Missing columns read 0.
type Result struct {
	AssayPb  float64 `json:"assay_pb"`
	AssayZn  float64 `json:"assay_zn"`
	AssayCu  float64 `json:"assay_cu"`
	AssayAg  float64 `json:"assay_ag"`
	FileName string  `json:"file_name"`
	FileSize int64   `json:"file_size"`
}

// Candidate headers per element, in lookup order.
var (
	pbColumns = []string{"Pb", "Lead", "PB", "pb", "lead"}
	znColumns = []string{"Zn", "Zinc", "ZN", "zn", "zinc"}
	cuColumns = []string{"Cu", "Copper", "CU", "cu", "copper"}
	agColumns = []string{"Ag", "Silver", "AG", "ag", "silver"}
)

// sheet is the header and first data row of a spreadsheet. row is nil
// when the file has no data rows.
type sheet struct {
	header []string
	row    []string
}

type reader func(data []byte) (sheet, error)

var readers = map[string]reader{
	".csv":  readCSV,
	".xlsx": readXLSX,
	".xls":  readXLS,
}

// Supported reports whether name has an extension Parse understands.
func Supported(name string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Parse reads the upload named name from r.
func Parse(name string, r io.Reader) (Result, error) {
	read, ok := readers[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return Result{}, ErrUnsupportedFormat
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}

	s, err := read(data)
	if err != nil {
		return Result{}, err
	}

	res := Result{FileName: name, FileSize: int64(len(data))}
	for _, f := range []struct {
		dst        *float64
		candidates []string
	}{
		{&res.AssayPb, pbColumns},
		{&res.AssayZn, znColumns},
		{&res.AssayCu, cuColumns},
		{&res.AssayAg, agColumns},
	} {
		v, err := s.lookup(f.candidates)
		if err != nil {
			return Result{}, err
		}
		*f.dst = v
	}
	return res, nil
}

// lookup returns the first-row value of the first candidate column that
// exists. No matching column, or no data row, reads 0.
func (s sheet) lookup(candidates []string) (float64, error) {
	for _, name := range candidates {
		idx := indexOf(s.header, name)
		if idx < 0 {
			continue
		}
		if s.row == nil || idx >= len(s.row) {
			return 0, nil
		}
		return parseCell(name, s.row[idx])
	}
	return 0, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

// parseCell converts a grade cell. Blank cells read 0; anything else that
// is not a number is an error.
func parseCell(column, cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: could not convert %q to float", column, cell)
	}
	return v, nil
}
