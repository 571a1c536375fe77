package quality

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/avaropoint/flatsynth/synth/profile"
)

const summarySheet = "Summary"

// WriteExcel renders the report as an .xlsx workbook: a summary sheet plus
// one sheet per dataset.
func (r *Report) WriteExcel(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	summary := [][]any{{"Dataset", "Rows", "Score"}}
	for _, g := range r.Groups {
		summary = append(summary, []any{g.Dataset, g.Rows, round(g.Score)})
	}
	summary = append(summary, []any{"overall", "", round(r.Score)})
	if err := writeSheet(f, summarySheet, summary, bold); err != nil {
		return err
	}

	for _, g := range r.Groups {
		name := sheetName(g.Dataset)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
		rows := [][]any{{"Column", "Kind", "Real blank", "Synthetic blank", "Validity", "Score"}}
		for _, c := range g.Columns {
			rows = append(rows, []any{c.Column, string(c.Kind), round(c.RealBlank), round(c.SynthBlank), round(c.Validity), round(c.Score)})
		}
		if err := writeSheet(f, name, rows, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel report: %w", err)
	}
	return nil
}

// SaveExcel writes the workbook to path.
func (r *Report) SaveExcel(path string) error {
	var buf bytes.Buffer
	if err := r.WriteExcel(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, header int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	colName, _ := excelize.ColumnNumberToName(len(rows[0]))
	return f.SetColWidth(sheet, "A", colName, 18)
}

// sheetName makes a dataset name usable as an Excel sheet name.
func sheetName(dataset string) string {
	name := profile.SanitizeName(dataset)
	if strings.EqualFold(name, summarySheet) {
		name += "_"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func round(v float64) float64 {
	return float64(int(v*10000+0.5)) / 10000
}
