// Package export renders a project as a multi-sheet xlsx workbook.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"brd-tui/internal/brd"
	"brd-tui/internal/theme"
)

// ExportError is returned for every failed export.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export: %v", e.Err)
	}
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Sheet names, in workbook order.
const (
	SheetOverview     = "Overview"
	SheetUISpec       = "UI Specification"
	SheetAPISpec      = "API Specification"
	SheetLLMPrompts   = "LLM Prompts"
	SheetDBSchema     = "Database Schema"
	SheetTechStack    = "Tech Stack & Version Control"
	SheetTraceability = "Traceability Matrix"
	SheetAgentArch    = "Agent Architecture"
	SheetAgentConfig  = "Agent Configuration"
	SheetAgentTasks   = "Agent Tasks"
)

var sheets = []struct {
	name string
	kind brd.Kind
	// always is false for sheets written only when the collection has rows.
	always bool
}{
	{SheetUISpec, brd.KindUISpec, true},
	{SheetAPISpec, brd.KindAPISpec, true},
	{SheetLLMPrompts, brd.KindLLMPrompt, true},
	{SheetDBSchema, brd.KindDBField, true},
	{SheetTechStack, brd.KindTechStack, true},
	{SheetTraceability, brd.KindTraceability, true},
	{SheetAgentArch, brd.KindAgentArch, false},
	{SheetAgentConfig, brd.KindAgentConfig, false},
	{SheetAgentTasks, brd.KindAgentTask, false},
}

// SheetNames returns the sheets Write produces for p, in order.
func SheetNames(p *brd.Project) []string {
	names := []string{SheetOverview}
	for _, s := range sheets {
		if s.always || p.Len(s.kind) > 0 {
			names = append(names, s.name)
		}
	}
	return names
}

func columnWidth(t brd.FieldType) float64 {
	switch t {
	case brd.FieldLongText:
		return 45
	case brd.FieldEnum:
		return 16
	case brd.FieldFloat, brd.FieldBool:
		return 12
	case brd.FieldDate:
		return 16
	}
	return 22
}

type styles struct {
	header int
	cell   int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: theme.SheetBorder, Style: 1},
		{Type: "right", Color: theme.SheetBorder, Style: 1},
		{Type: "top", Color: theme.SheetBorder, Style: 1},
		{Type: "bottom", Color: theme.SheetBorder, Style: 1},
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: theme.SheetHeaderFont},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{theme.SheetHeaderFill}},
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	})
	if err != nil {
		return styles{}, fmt.Errorf("header style: %w", err)
	}
	cell, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return styles{}, fmt.Errorf("cell style: %w", err)
	}
	return styles{header: header, cell: cell}, nil
}

// Write renders p as an xlsx workbook to w. p is only read.
func Write(w io.Writer, p *brd.Project) error {
	f, err := build(p)
	if err != nil {
		return &ExportError{Err: err}
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return &ExportError{Err: err}
	}
	return nil
}

// Bytes renders p and returns the workbook contents.
func Bytes(p *brd.Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func build(p *brd.Project) (*excelize.File, error) {
	if p == nil {
		return nil, errors.New("nil project")
	}
	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	// A new workbook starts with one sheet; it becomes the overview.
	if err := f.SetSheetName(f.GetSheetName(0), SheetOverview); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeOverview(f, st, p); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", SheetOverview, err)
	}
	for _, s := range sheets {
		if !s.always && p.Len(s.kind) == 0 {
			continue
		}
		if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		if err := writeRecords(f, st, s.name, s.kind, p.Records(s.kind)); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeOverview(f *excelize.File, st styles, p *brd.Project) error {
	rows := [][2]any{{"Field", "Value"}}
	for _, fld := range brd.OverviewSchema {
		rows = append(rows, [2]any{fld.Label, p.Overview.Get(fld.Name)})
	}
	rows = append(rows,
		[2]any{"Template Type", string(p.Template)},
		[2]any{"Created At", p.CreatedAt.UTC().Format(time.RFC3339)},
		[2]any{"Updated At", p.UpdatedAt.UTC().Format(time.RFC3339)},
	)
	for i, row := range rows {
		for j, v := range row {
			if err := setCell(f, SheetOverview, j+1, i+1, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetCellStyle(SheetOverview, "A1", "B1", st.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetOverview, "A2", fmt.Sprintf("B%d", len(rows)), st.cell); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetOverview, "A", "A", 25); err != nil {
		return err
	}
	return f.SetColWidth(SheetOverview, "B", "B", 60)
}

func writeRecords(f *excelize.File, st styles, sheet string, k brd.Kind, recs []brd.Record) error {
	schema := brd.Schema(k)
	last, err := excelize.ColumnNumberToName(len(schema))
	if err != nil {
		return err
	}
	for j, fld := range schema {
		if err := setCell(f, sheet, j+1, 1, fld.Label); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(j + 1)
		if err := f.SetColWidth(sheet, col, col, columnWidth(fld.Type)); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", st.header); err != nil {
		return err
	}
	for i, r := range recs {
		row := i + 2
		for j, fld := range schema {
			if err := setCell(f, sheet, j+1, row, cellValue(fld, r.Get(fld.Name))); err != nil {
				return err
			}
		}
	}
	if len(recs) > 0 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("%s%d", last, len(recs)+1), st.cell); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue gives numbers their numeric type and booleans a Yes/No form.
func cellValue(fld brd.Field, v string) any {
	switch fld.Type {
	case brd.FieldFloat:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	case brd.FieldBool:
		if b, err := brd.ParseBool(v); err == nil {
			if b {
				return "Yes"
			}
			return "No"
		}
	}
	return v
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, v)
}

// FileName returns the export file name for p at t:
// BRD_<name>_<YYYYMMDD_HHMMSS>.xlsx.
func FileName(p *brd.Project, t time.Time) string {
	return fmt.Sprintf("BRD_%s_%s.xlsx", safeName(p.Overview.ProjectName), t.Format("20060102_150405"))
}

func safeName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case strings.ContainsRune(`/\:*?"<>|`, r), r < 0x20:
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "project"
	}
	return b.String()
}

// WriteFile writes p into dir and returns the path written. An existing
// file is never overwritten; a numeric suffix is added instead.
func WriteFile(dir string, p *brd.Project) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &ExportError{Path: dir, Err: err}
	}
	base := strings.TrimSuffix(FileName(p, time.Now()), ".xlsx")

	var (
		out  *os.File
		path string
	)
	for n := 1; ; n++ {
		name := base + ".xlsx"
		if n > 1 {
			name = fmt.Sprintf("%s_%d.xlsx", base, n)
		}
		path = filepath.Join(dir, name)
		var err error
		out, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", &ExportError{Path: path, Err: err}
		}
	}

	if err := Write(out, p); err != nil {
		out.Close()
		os.Remove(path)
		var ee *ExportError
		if errors.As(err, &ee) {
			ee.Path = path
		}
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", &ExportError{Path: path, Err: err}
	}
	return path, nil
}
