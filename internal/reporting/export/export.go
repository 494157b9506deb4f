// Package export renders formatted reports as downloadable files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"energy-audit/internal/reporting"
)

// Format is a supported export file type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts the file extension of an export.
func ParseFormat(value string) (Format, bool) {
	switch Format(value) {
	case FormatPDF, FormatXLSX, FormatCSV:
		return Format(value), true
	default:
		return "", false
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/pdf"
	}
}

// Render dispatches to the renderer of the format.
func Render(format Format, report reporting.FormattedReport) ([]byte, error) {
	switch format {
	case FormatPDF:
		return PDF(report)
	case FormatXLSX:
		return XLSX(report)
	case FormatCSV:
		return CSV(report)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// PDF renders the report on landscape A4 pages.
func PDF(report reporting.FormattedReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, tr(report.Title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(report.Subtitle))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr("Generado: "+report.GeneratedAt))
	pdf.Ln(8)

	for _, card := range report.Cards {
		line := card.Label + ": " + card.Value
		if card.Unit != "" {
			line += " " + card.Unit
		}
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	writeTable(pdf, tr, report.Sources)
	pdf.Ln(4)
	writeTable(pdf, tr, report.Detail)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTable(pdf *gofpdf.Fpdf, tr func(string) string, table reporting.Table) {
	if len(table.Columns) == 0 {
		return
	}
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := (pageWidth - left - right) / float64(len(table.Columns))

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, tr(table.Title))
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 8)
	for _, column := range table.Columns {
		pdf.CellFormat(width, 6, tr(column), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, row := range table.Rows {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(width, 6, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// XLSX renders the report as a workbook with summary, sources and detail sheets.
func XLSX(report reporting.FormattedReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "resumen"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	_ = f.SetCellValue(summarySheet, "A1", report.Title)
	_ = f.SetCellValue(summarySheet, "A2", report.Subtitle)
	_ = f.SetCellValue(summarySheet, "A3", "Generado")
	_ = f.SetCellValue(summarySheet, "B3", report.GeneratedAt)
	for i, card := range report.Cards {
		row := i + 5
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), card.Label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), card.Value)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), card.Unit)
	}

	if err := writeSheet(f, "fuentes", report.Sources); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "detalle", report.Detail); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, table reporting.Table) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for i, column := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellValue(sheet, cell, column)
	}
	for r, row := range table.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
	}
	return nil
}

// CSV writes the detail table only, header first.
func CSV(report reporting.FormattedReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(report.Detail.Columns); err != nil {
		return nil, err
	}
	if err := writer.WriteAll(report.Detail.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
