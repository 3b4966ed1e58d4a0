package imports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Supported upload formats.
const (
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Row is one data row keyed by normalized header. Line is the 1-based
// position among data rows, header excluded.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the first non-empty value among keys.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.Fields[k]); v != "" {
			return v
		}
	}
	return ""
}

// FormatFromName derives the format from a file extension.
func FormatFromName(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// NormalizeHeader turns "Client PAN No." into "client_pan_no".
func NormalizeHeader(h string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Parse reads every data row of the first sheet (spreadsheets), the whole
// file (csv) or the top-level array (json). Blank rows are dropped but still
// advance Line.
func Parse(data []byte, format string) ([]Row, error) {
	switch format {
	case FormatXLSX:
		return parseXLSX(data)
	case FormatXLS:
		return parseXLS(data)
	case FormatCSV:
		return parseCSV(data)
	case FormatJSON:
		return parseJSON(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func tableRows(table [][]string) []Row {
	if len(table) == 0 {
		return []Row{}
	}
	headers := make([]string, len(table[0]))
	for i, h := range table[0] {
		headers[i] = NormalizeHeader(strings.TrimPrefix(h, "\ufeff"))
	}
	rows := make([]Row, 0, len(table)-1)
	for i, cells := range table[1:] {
		fields := make(map[string]string, len(headers))
		blank := true
		for j, h := range headers {
			if h == "" || j >= len(cells) {
				continue
			}
			v := strings.TrimSpace(cells[j])
			if v != "" {
				blank = false
			}
			fields[h] = v
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Line: i + 1, Fields: fields})
	}
	return rows
}

func parseXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []Row{}, nil
	}
	// Raw values keep date cells as serial numbers instead of the cell's display format.
	table, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return tableRows(table), nil
}

// errNoWorkbook is returned for OLE files without a Workbook stream.
var errNoWorkbook = errors.New("xls: no workbook stream")

func parseXLS(data []byte) (rows []Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("xls: malformed workbook: %v", r)
		}
	}()
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, errNoWorkbook
	}
	rawNumbers(wb)
	sheet := wb.GetSheet(0)
	if sheet == nil || sheet.MaxRow == 0 {
		return []Row{}, nil
	}
	// ReadAllCells walks only the rows present; the first MaxRow+1 rows are
	// the first sheet.
	return tableRows(wb.ReadAllCells(int(sheet.MaxRow) + 1)), nil
}

// rawNumbers switches every cell style to General. The reader renders
// numbers styled with a built-in date format as "2006.01", dropping the day,
// while General yields the serial number, the same raw value read from .xlsx.
func rawNumbers(wb *xls.WorkBook) {
	for _, xf := range wb.Xfs {
		switch x := xf.(type) {
		case *xls.Xf8:
			x.Format = 0
		case *xls.Xf5:
			x.Format = 0
		}
	}
}

func parseCSV(data []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var table [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}
	return tableRows(table), nil
}

func parseJSON(data []byte) ([]Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return RecordsToRows(records), nil
}

// RecordsToRows converts decoded JSON objects into rows. Keys are normalized
// like spreadsheet headers, so "clientCode" becomes "client_code".
func RecordsToRows(records []map[string]interface{}) []Row {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		fields := make(map[string]string, len(rec))
		for k, v := range rec {
			fields[NormalizeHeader(splitCamel(k))] = stringify(v)
		}
		rows = append(rows, Row{Line: i + 1, Fields: fields})
	}
	return rows
}

func splitCamel(s string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range s {
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
