package export

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
	// Footer rows are rendered after the body, e.g. totals.
	Footer []map[string]string
	// Spans merge a column vertically across consecutive body rows.
	Spans []Span
	// Numeric columns are written as numbers where the format has types.
	// Every other column stays text, so codes like "0101" survive.
	Numeric map[string]bool
}

// Span marks Rows[FirstRow..LastRow] of Column as one visual cell.
type Span struct {
	Column   string
	FirstRow int
	LastRow  int
}

// Sheet is one named Dataset inside a workbook.
type Sheet struct {
	Name string
	Data Dataset
}

func (d Dataset) records() [][]string {
	out := make([][]string, 0, len(d.Rows)+len(d.Footer))
	for _, group := range [][]map[string]string{d.Rows, d.Footer} {
		for _, row := range group {
			record := make([]string, len(d.Headers))
			for i, header := range d.Headers {
				record[i] = row[header]
			}
			out = append(out, record)
		}
	}
	return out
}

// Content types of the rendered formats.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
