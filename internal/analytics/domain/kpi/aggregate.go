package kpi

import (
	"slices"
	"strings"

	audits "energy-audit/internal/audits/domain"
	energy "energy-audit/internal/energy/domain"
)

// UnassignedLead is shown for projects without a lead.
const UnassignedLead = "Sin asignar"

// ProjectRecords pairs a project with its energy records.
type ProjectRecords struct {
	Project audits.Project
	Records []energy.Record
}

// Totals are summed indicators of a project set.
type Totals struct {
	Energy       float64
	Cost         float64
	Emissions    float64
	ElectricKWh  float64
	ThermalKWh   float64
	ElectricMBTU float64
	ThermalMBTU  float64
}

// SourceTotal is the summed contribution of one fuel across projects.
type SourceTotal struct {
	Kind  energy.FuelKind
	Label string
	Color string
	KWh   float64
	Cost  float64
}

// ProjectRow is one line of the drill-down table.
type ProjectRow struct {
	ProjectID      string
	ProjectName    string
	CompanyName    string
	LeadName       string
	Status         audits.Status
	Production     float64
	ProductionUnit string
	TotalEnergy    float64
	ElectricKWh    float64
	ThermalKWh     float64
	Cost           float64
	Emissions      float64
	IDES           float64
}

// Report is the rollup of a project set.
type Report struct {
	ProjectCount int
	Totals       Totals
	Sources      []SourceTotal
	Rows         []ProjectRow
}

// ChartSources returns the fuels with energy, in fixed order.
func (r Report) ChartSources() []SourceTotal {
	out := make([]SourceTotal, 0, len(r.Sources))
	for _, src := range r.Sources {
		if src.KWh > 0 {
			out = append(out, src)
		}
	}
	return out
}

// Aggregate folds the project set, most recently created first, into a report.
// The same input always yields the same output.
func Aggregate(items []ProjectRecords) Report {
	ordered := slices.Clone(items)
	slices.SortStableFunc(ordered, func(a, b ProjectRecords) int {
		return audits.CompareRecentFirst(a.Project, b.Project)
	})

	report := Report{
		ProjectCount: len(ordered),
		Sources:      emptySources(),
		Rows:         make([]ProjectRow, 0, len(ordered)),
	}
	index := make(map[energy.FuelKind]int, len(report.Sources))
	for i, src := range report.Sources {
		index[src.Kind] = i
	}

	for _, item := range ordered {
		set := ComputeProject(item.Project, item.Records)
		report.Totals.add(set)
		for _, src := range set.Sources {
			if i, ok := index[src.Kind]; ok {
				report.Sources[i].KWh += src.KWh
				report.Sources[i].Cost += src.Cost
			}
		}
		report.Rows = append(report.Rows, newRow(item.Project, set))
	}
	report.Totals.ElectricMBTU = report.Totals.ElectricKWh * MBTUPerKWh
	report.Totals.ThermalMBTU = report.Totals.ThermalKWh * MBTUPerKWh
	return report
}

func (t *Totals) add(set KpiSet) {
	t.Energy += set.TotalEnergy
	t.Cost += set.TotalCost
	t.Emissions += set.TotalEmissions
	t.ElectricKWh += set.ElectricKWh
	t.ThermalKWh += set.ThermalKWh
}

func emptySources() []SourceTotal {
	kinds := energy.Kinds()
	out := make([]SourceTotal, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, SourceTotal{Kind: kind, Label: kind.Label(), Color: color(kind)})
	}
	return out
}

func newRow(project audits.Project, set KpiSet) ProjectRow {
	lead := strings.TrimSpace(project.LeadName)
	if lead == "" {
		lead = UnassignedLead
	}
	return ProjectRow{
		ProjectID:      project.ID,
		ProjectName:    project.Name,
		CompanyName:    project.CompanyName,
		LeadName:       lead,
		Status:         project.Status,
		Production:     set.Production,
		ProductionUnit: set.ProductionUnit,
		TotalEnergy:    set.TotalEnergy,
		ElectricKWh:    set.ElectricKWh,
		ThermalKWh:     set.ThermalKWh,
		Cost:           set.TotalCost,
		Emissions:      set.TotalEmissions,
		IDES:           set.IDES,
	}
}
