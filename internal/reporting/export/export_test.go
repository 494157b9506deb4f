package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"

	"energy-audit/internal/reporting"
)

func sampleReport() reporting.FormattedReport {
	return reporting.FormattedReport{
		Title:       "Dashboard estratégico",
		Subtitle:    "Centro Andino",
		GeneratedAt: "2024-05-10 14:30",
		Cards:       []reporting.Card{{Label: "Energía total", Value: "12.000", Unit: "kWh"}},
		Sources: reporting.Table{
			Title:   "Consumo por fuente",
			Columns: []string{"Fuente", "Energía (kWh)"},
			Rows:    [][]string{{"Electricidad", "10.000"}, {"Gas Natural", "2.000"}},
		},
		Detail: reporting.Table{
			Title:   "Detalle",
			Columns: []string{"Proyecto", "Energía total (kWh)"},
			Rows:    [][]string{{"Auditoría Textiles", "12.000"}},
		},
	}
}

func TestPDF(t *testing.T) {
	data, err := PDF(sampleReport())
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected pdf header")
	}
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleReport())
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("resumen", "B5"); got != "12.000" {
		t.Fatalf("card value = %q", got)
	}
	if got, _ := f.GetCellValue("fuentes", "A3"); got != "Gas Natural" {
		t.Fatalf("source row = %q", got)
	}
	if got, _ := f.GetCellValue("detalle", "B1"); got != "Energía total (kWh)" {
		t.Fatalf("detail header = %q", got)
	}
}

func TestRender(t *testing.T) {
	format, ok := ParseFormat("xlsx")
	if !ok || format.ContentType() == "application/pdf" {
		t.Fatalf("xlsx format not parsed")
	}
	if _, ok := ParseFormat("docx"); ok {
		t.Fatalf("docx should be rejected")
	}
	if _, err := Render(Format("docx"), sampleReport()); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if _, err := Render(FormatPDF, sampleReport()); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
}

func TestCSV(t *testing.T) {
	data, err := CSV(sampleReport())
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d", len(records))
	}
	if records[0][0] != "Proyecto" || records[1][1] != "12.000" {
		t.Fatalf("unexpected csv content: %v", records)
	}
}
