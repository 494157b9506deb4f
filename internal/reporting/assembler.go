package reporting

import (
	"strings"
	"time"

	"energy-audit/internal/analytics/domain/kpi"
	audits "energy-audit/internal/audits/domain"
)

// Card is one headline indicator.
type Card struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Table is a titled grid of preformatted cells.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// FormattedReport is what renderers consume. It holds strings only.
type FormattedReport struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	GeneratedAt string `json:"generated_at"`
	Cards       []Card `json:"cards"`
	Sources     Table  `json:"sources"`
	Detail      Table  `json:"detail"`
}

// Assembler formats computed indicators.
type Assembler struct {
	format *Formatter
	now    func() time.Time
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithClock overrides the time stamped on reports.
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAssembler constructs an assembler around a formatter.
func NewAssembler(format *Formatter, opts ...AssemblerOption) *Assembler {
	a := &Assembler{format: format, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var sourceColumns = []string{"Fuente", "Energía (kWh)", "Costo ($)", "Emisiones (tCO2/año)"}

// Project formats the indicators of a single project.
func (a *Assembler) Project(project audits.Project, set kpi.KpiSet) FormattedReport {
	f := a.format
	subtitle := project.Name
	if company := strings.TrimSpace(project.CompanyName); company != "" {
		subtitle += " · " + company
	}
	report := FormattedReport{
		Title:       "Informe de auditoría energética",
		Subtitle:    subtitle,
		GeneratedAt: a.stamp(),
		Cards: []Card{
			{Label: "Energía total", Value: f.Energy(set.TotalEnergy), Unit: "kWh"},
			{Label: "Costo total", Value: f.Cost(set.TotalCost)},
			{Label: "Emisiones", Value: f.Emissions(set.TotalEmissions), Unit: "tCO2/año"},
			{Label: "IDES", Value: f.IDES(set.IDES), Unit: intensityUnit(set.ProductionUnit)},
			{Label: "Energía eléctrica", Value: f.MBTU(set.ElectricMBTU), Unit: "MBTU"},
			{Label: "Energía térmica", Value: f.MBTU(set.ThermalMBTU), Unit: "MBTU"},
		},
		Sources: Table{Title: "Consumo por fuente", Columns: sourceColumns},
		Detail: Table{
			Title:   "Datos del proyecto",
			Columns: []string{"Campo", "Valor"},
			Rows: [][]string{
				{"Centro", dash(project.OrganizationName)},
				{"Empresa", dash(project.CompanyName)},
				{"Líder", leadName(project.LeadName)},
				{"Estado", project.Status.Label()},
				{"Producción", f.Production(set.Production, set.ProductionUnit)},
			},
		},
	}
	for _, src := range set.Sources {
		report.Sources.Rows = append(report.Sources.Rows, []string{
			src.Label, f.Energy(src.KWh), f.Cost(src.Cost), f.Emissions(src.Emissions),
		})
	}
	return report
}

// Dashboard formats the rollup of an organization or of every project.
func (a *Assembler) Dashboard(scope string, report kpi.Report) FormattedReport {
	f := a.format
	out := FormattedReport{
		Title:       "Dashboard estratégico",
		Subtitle:    scope,
		GeneratedAt: a.stamp(),
		Cards:       a.totalsCards(report),
		Sources:     a.sources(report),
		Detail: Table{
			Title: "Detalle por proyecto",
			Columns: []string{
				"Proyecto", "Empresa", "Líder", "Estado", "Producción", "Energía total (kWh)",
				"Eléctrica (kWh)", "Térmica (kWh)", "Costo ($)", "Emisiones (tCO2)", "IDES",
			},
			Rows: make([][]string, 0, len(report.Rows)),
		},
	}
	for _, row := range report.Rows {
		out.Detail.Rows = append(out.Detail.Rows, []string{
			row.ProjectName,
			dash(row.CompanyName),
			row.LeadName,
			row.Status.Label(),
			f.Production(row.Production, row.ProductionUnit),
			f.Energy(row.TotalEnergy),
			f.Energy(row.ElectricKWh),
			f.Energy(row.ThermalKWh),
			f.Cost(row.Cost),
			f.Emissions(row.Emissions),
			f.IDES(row.IDES),
		})
	}
	return out
}

// National formats the comparison of organizations.
func (a *Assembler) National(report kpi.NationalReport) FormattedReport {
	f := a.format
	out := FormattedReport{
		Title:       "Dashboard nacional",
		Subtitle:    "Comparativo de centros",
		GeneratedAt: a.stamp(),
		Cards:       a.totalsCards(report.Overall),
		Sources:     a.sources(report.Overall),
		Detail: Table{
			Title:   "Ranking de centros por consumo",
			Columns: []string{"Centro", "Código", "Región", "Proyectos", "Energía (kWh)", "Emisiones (tCO2)", "Promedio (kWh/proyecto)"},
			Rows:    make([][]string, 0, len(report.Organizations)),
		},
	}
	for _, org := range report.Organizations {
		out.Detail.Rows = append(out.Detail.Rows, []string{
			org.Name,
			org.Code,
			dash(org.Region),
			f.Count(org.ProjectCount),
			f.Energy(org.TotalEnergy),
			f.Emissions(org.TotalEmissions),
			f.Energy(org.AverageKWh),
		})
	}
	return out
}

func (a *Assembler) totalsCards(report kpi.Report) []Card {
	f := a.format
	return []Card{
		{Label: "Proyectos", Value: f.Count(report.ProjectCount)},
		{Label: "Energía total", Value: f.Energy(report.Totals.Energy), Unit: "kWh"},
		{Label: "Costo total", Value: f.Cost(report.Totals.Cost)},
		{Label: "Emisiones", Value: f.Emissions(report.Totals.Emissions), Unit: "tCO2/año"},
		{Label: "Energía eléctrica", Value: f.Energy(report.Totals.ElectricKWh), Unit: "kWh"},
		{Label: "Energía térmica", Value: f.MBTU(report.Totals.ThermalMBTU), Unit: "MBTU"},
	}
}

func (a *Assembler) sources(report kpi.Report) Table {
	f := a.format
	table := Table{
		Title:   "Consumo por fuente",
		Columns: sourceColumns[:3],
		Rows:    make([][]string, 0, len(report.Sources)),
	}
	for _, src := range report.Sources {
		table.Rows = append(table.Rows, []string{src.Label, f.Energy(src.KWh), f.Cost(src.Cost)})
	}
	return table
}

func (a *Assembler) stamp() string {
	return a.now().Format("2006-01-02 15:04")
}

func intensityUnit(productionUnit string) string {
	if unit := strings.TrimSpace(productionUnit); unit != "" {
		return "kWh/" + unit
	}
	return "kWh/unidad"
}

func leadName(name string) string {
	if strings.TrimSpace(name) == "" {
		return kpi.UnassignedLead
	}
	return name
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
