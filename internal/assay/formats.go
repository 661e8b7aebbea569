package assay

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

func readCSV(data []byte) (sheet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return sheet{}, errors.New("no columns to parse from file")
	}
	if err != nil {
		return sheet{}, fmt.Errorf("read csv header: %w", err)
	}
	// A UTF-8 BOM from spreadsheet exports would hide the first header.
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	row, err := r.Read()
	if errors.Is(err, io.EOF) {
		return sheet{header: header}, nil
	}
	if err != nil {
		return sheet{}, fmt.Errorf("read csv row: %w", err)
	}
	return sheet{header: header, row: row}, nil
}

func readXLSX(data []byte) (sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return sheet{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	if len(names) == 0 {
		return sheet{}, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(names[0])
	if err != nil {
		return sheet{}, fmt.Errorf("read sheet %s: %w", names[0], err)
	}
	if len(rows) == 0 {
		return sheet{}, errors.New("no columns to parse from file")
	}
	s := sheet{header: rows[0]}
	if len(rows) > 1 {
		s.row = rows[1]
	}
	return s, nil
}

func readXLS(data []byte) (sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return sheet{}, fmt.Errorf("open xls: %w", err)
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return sheet{}, errors.New("workbook has no sheets")
	}

	header := xlsRow(ws, 0)
	if header == nil {
		return sheet{}, errors.New("no columns to parse from file")
	}
	return sheet{header: header, row: xlsRow(ws, 1)}, nil
}

func xlsRow(ws *xls.WorkSheet, i int) []string {
	if i > int(ws.MaxRow) {
		return nil
	}
	row := ws.Row(i)
	if row == nil {
		return nil
	}
	cells := make([]string, 0, row.LastCol()+1)
	for c := 0; c <= row.LastCol(); c++ {
		cells = append(cells, row.Col(c))
	}
	return cells
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
