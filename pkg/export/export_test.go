package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Opterećenje nastavnika",
		Headers: []string{"Nastavnik", "Predmet", "P"},
		Rows: []map[string]string{
			{"Nastavnik": "Ana", "Predmet": "Matematika", "P": "30"},
			{"Nastavnik": "Ana", "Predmet": "Fizika", "P": "15"},
		},
		Footer:  []map[string]string{{"Nastavnik": "Ukupno", "P": "45"}},
		Spans:   []Span{{Column: "Nastavnik", FirstRow: 0, LastRow: 1}},
		Numeric: map[string]bool{"P": true},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Nastavnik,Predmet,P", lines[0])
	assert.Equal(t, "Ana,Fizika,15", lines[2])
	assert.Equal(t, "Ukupno,,45", lines[3])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRenderSheets(t *testing.T) {
	out, err := NewXLSXExporter().Render([]Sheet{
		{Name: "SUMMARY", Data: sampleDataset()},
		{Name: "Fakultet: IT/Tehnika", Data: sampleDataset()},
		{Name: "summary", Data: sampleDataset()},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"SUMMARY", "Fakultet- IT-Tehnika", "summary (2)"}, f.GetSheetList())
	value, err := f.GetCellValue("SUMMARY", "C4")
	require.NoError(t, err)
	assert.Equal(t, "30", value)
	merged, err := f.GetMergeCells("SUMMARY")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A4", merged[0].GetStartAxis())
	assert.Equal(t, "A5", merged[0].GetEndAxis())
}

func TestXLSXExporterKeepsTextColumnsVerbatim(t *testing.T) {
	data := Dataset{
		Headers: []string{"Code", "P"},
		Rows: []map[string]string{
			{"Code": "0101", "P": "30"},
			{"Code": "1E3", "P": "7.5"},
		},
		Numeric: map[string]bool{"P": true},
	}
	out, err := NewXLSXExporter().Render([]Sheet{{Name: "SUMMARY", Data: data}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("SUMMARY")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"0101", "30"}, rows[1])
	assert.Equal(t, []string{"1E3", "7.5"}, rows[2])

	codeType, err := f.GetCellType("SUMMARY", "A2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeSharedString, codeType)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", SheetName("  "))
	assert.Equal(t, "a-b-c", SheetName("a/b?c"))
	assert.Len(t, []rune(SheetName(strings.Repeat("x", 40))), 31)
}
