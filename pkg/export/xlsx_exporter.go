package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet      = "Sheet1"
	maxSheetNameRunes = 31
)

// XLSXExporter renders one or more datasets into a workbook, one sheet each.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes every sheet in order. Values of Numeric columns are stored as
// numbers when they parse, everything else as text.
func (e *XLSXExporter) Render(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]struct{}, len(sheets))
	for i, sheet := range sheets {
		name := uniqueSheetName(SheetName(sheet.Name), used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, sheet.Data); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("sheet %s requires at least one header", sheet)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	row := 1
	if data.Title != "" {
		if err := f.SetCellValue(sheet, "A1", data.Title); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
		_ = f.SetCellStyle(sheet, "A1", "A1", bold)
		row = 3
	}
	headerRow := row

	for i, header := range data.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(data.Headers), row)
	_ = f.SetCellStyle(sheet, first, last, bold)

	for _, record := range data.records() {
		row++
		for i, value := range record {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, cellValue(value, data.Numeric[data.Headers[i]])); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}
	if len(data.Footer) > 0 {
		from, _ := excelize.CoordinatesToCellName(1, row-len(data.Footer)+1)
		to, _ := excelize.CoordinatesToCellName(len(data.Headers), row)
		_ = f.SetCellStyle(sheet, from, to, bold)
	}

	columns := make(map[string]int, len(data.Headers))
	for i, header := range data.Headers {
		columns[header] = i + 1
	}
	for _, span := range data.Spans {
		col, ok := columns[span.Column]
		if !ok || span.LastRow <= span.FirstRow {
			continue
		}
		top, _ := excelize.CoordinatesToCellName(col, headerRow+1+span.FirstRow)
		bottom, _ := excelize.CoordinatesToCellName(col, headerRow+1+span.LastRow)
		if err := f.MergeCell(sheet, top, bottom); err != nil {
			return fmt.Errorf("merge %s:%s: %w", top, bottom, err)
		}
	}
	return nil
}

func cellValue(raw string, numeric bool) interface{} {
	if raw == "" || !numeric {
		return raw
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

// SheetName strips characters Excel rejects and truncates to the 31 rune limit.
func SheetName(raw string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(raw))
	name = strings.Trim(name, "'")
	if name == "" {
		name = defaultSheet
	}
	if runes := []rune(name); len(runes) > maxSheetNameRunes {
		name = string(runes[:maxSheetNameRunes])
	}
	return name
}

func uniqueSheetName(name string, used map[string]struct{}) string {
	candidate := name
	for i := 2; ; i++ {
		key := strings.ToLower(candidate)
		if _, taken := used[key]; !taken {
			used[key] = struct{}{}
			return candidate
		}
		suffix := fmt.Sprintf(" (%d)", i)
		runes := []rune(name)
		if len(runes)+len(suffix) > maxSheetNameRunes {
			runes = runes[:maxSheetNameRunes-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
}
