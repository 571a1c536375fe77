// load.go reads layouts from CSV, Excel and JSON sources.

package layout

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
)

// Recognised header cells. Matching ignores case, spaces and underscores.
const (
	colName        = "Column_Name"
	colLength      = "Length"
	colType        = "Type"
	colBlock       = "Block_ID"
	colDescription = "Description"
)

// LoadFile reads a layout, choosing the parser by file extension.
func LoadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout %s: %w", path, err)
	}
	var l *Layout
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		l, err = ParseExcel(data)
	case ".json":
		l, err = ParseTemplate(data)
	default:
		l, err = Parse(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", filepath.Base(path), err)
	}
	return l, nil
}

// Parse reads a CSV layout with a header row containing at least
// Column_Name and Length, and optionally Type or Block_ID.
func Parse(r io.Reader) (*Layout, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV layout: %w", err)
	}
	if len(records) == 0 {
		return nil, &MalformedLayoutError{Reason: "missing header row"}
	}
	return fromRows(records[0], records[1:])
}

// ParseExcel reads the first sheet of an .xlsx workbook using the same
// columns as Parse.
func ParseExcel(data []byte) (*Layout, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel layout: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel layout")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, &MalformedLayoutError{Reason: "missing header row"}
	}
	return fromRows(rows[0], rows[1:])
}

// Template is the JSON form of a layout.
type Template struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// ParseTemplate decodes a JSON layout template.
func ParseTemplate(data []byte) (*Layout, error) {
	var tpl Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse layout template: %w", err)
	}
	return New(tpl.Fields)
}

// fromRows maps tabular rows onto descriptors. Fully blank rows are skipped.
func fromRows(header []string, rows [][]string) (*Layout, error) {
	cols := map[string]int{}
	for i, h := range header {
		cols[normalize(h)] = i
	}
	nameIdx, ok := cols[normalize(colName)]
	if !ok {
		return nil, &MalformedLayoutError{Reason: "missing " + colName + " column"}
	}
	lenIdx, ok := cols[normalize(colLength)]
	if !ok {
		return nil, &MalformedLayoutError{Reason: "missing " + colLength + " column"}
	}
	typeIdx, hasType := cols[normalize(colType)]
	if !hasType {
		typeIdx, hasType = cols[normalize(colBlock)]
	}
	descIdx, hasDesc := cols[normalize(colDescription)]

	var fields []Field
	for i, row := range rows {
		if blank(row) {
			continue
		}
		f := Field{Name: cell(row, nameIdx)}
		if hasType {
			f.RecordType = cell(row, typeIdx)
		}
		if hasDesc {
			f.Description = cell(row, descIdx)
		}
		n, err := parseLength(cell(row, lenIdx))
		if err != nil {
			return nil, &MalformedLayoutError{RecordType: f.RecordType, Field: f.Name, Row: i + 1, Reason: err.Error()}
		}
		f.Length = n
		fields = append(fields, f)
	}
	return New(fields)
}

// parseLength accepts integers and integral floats ("5", "5.0").
func parseLength(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return int(v), nil
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, " ", "")
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
