// Package kpi computes per-project indicators and folds them into
// organization and national reports. Everything here is a pure function of
// the projects and records passed in.
package kpi

import (
	"math"

	audits "energy-audit/internal/audits/domain"
	energy "energy-audit/internal/energy/domain"
)

// MBTUPerKWh converts kWh into millions of BTU.
const MBTUPerKWh = 0.00341214

// Display precision of each indicator.
const (
	EmissionsDecimals = 2
	EnergyDecimals    = 0
	CostDecimals      = 0
	IDESDecimals      = 4
	MBTUDecimals      = 2
)

// SourceKPI is the contribution of one fuel to a project.
type SourceKPI struct {
	Kind      energy.FuelKind
	Label     string
	Color     string
	KWh       float64
	Cost      float64
	Emissions float64
}

// KpiSet holds the headline indicators of one project.
type KpiSet struct {
	ProjectID      string
	TotalEmissions float64
	TotalCost      float64
	ElectricKWh    float64
	ThermalKWh     float64
	TotalEnergy    float64
	Production     float64
	ProductionUnit string
	IDES           float64
	ElectricMBTU   float64
	ThermalMBTU    float64
	Sources        []SourceKPI
}

// ComputeProject sums the records of a project into its indicators.
// Records of other projects are ignored.
func ComputeProject(project audits.Project, records []energy.Record) KpiSet {
	set := KpiSet{
		ProjectID:      project.ID,
		Production:     project.Production(),
		ProductionUnit: project.ProductionUnit,
	}
	ordered := make([]energy.Record, 0, len(records))
	for _, rec := range records {
		if rec.ProjectID == project.ID || rec.ProjectID == "" {
			ordered = append(ordered, rec)
		}
	}
	energy.SortRecords(ordered)

	for _, rec := range ordered {
		kwh := rec.AnnualKWhEquivalent()
		set.TotalEmissions += rec.AnnualEmissions
		set.TotalCost += rec.AnnualCost
		if rec.Electric() {
			set.ElectricKWh += kwh
		} else {
			set.ThermalKWh += kwh
		}
		set.Sources = append(set.Sources, SourceKPI{
			Kind:      rec.Kind,
			Label:     rec.Kind.Label(),
			Color:     color(rec.Kind),
			KWh:       kwh,
			Cost:      rec.AnnualCost,
			Emissions: rec.AnnualEmissions,
		})
	}
	set.TotalEnergy = set.ElectricKWh + set.ThermalKWh
	set.IDES = Intensity(set.TotalEnergy, set.Production)
	set.ElectricMBTU = set.ElectricKWh * MBTUPerKWh
	set.ThermalMBTU = set.ThermalKWh * MBTUPerKWh
	return set
}

// Intensity is energy per unit of production, zero when either is missing.
func Intensity(totalEnergy, production float64) float64 {
	if production <= 0 || totalEnergy <= 0 {
		return 0
	}
	return totalEnergy / production
}

// Rounded returns a copy rounded for display. Stored values are never rounded.
func (k KpiSet) Rounded() KpiSet {
	out := k
	out.TotalEmissions = Round(k.TotalEmissions, EmissionsDecimals)
	out.TotalCost = Round(k.TotalCost, CostDecimals)
	out.ElectricKWh = Round(k.ElectricKWh, EnergyDecimals)
	out.ThermalKWh = Round(k.ThermalKWh, EnergyDecimals)
	out.TotalEnergy = Round(k.TotalEnergy, EnergyDecimals)
	out.IDES = Round(k.IDES, IDESDecimals)
	out.ElectricMBTU = Round(k.ElectricMBTU, MBTUDecimals)
	out.ThermalMBTU = Round(k.ThermalMBTU, MBTUDecimals)
	out.Sources = make([]SourceKPI, len(k.Sources))
	for i, src := range k.Sources {
		src.KWh = Round(src.KWh, EnergyDecimals)
		src.Cost = Round(src.Cost, CostDecimals)
		src.Emissions = Round(src.Emissions, EmissionsDecimals)
		out.Sources[i] = src
	}
	return out
}

// Round rounds half away from zero to the given decimals.
func Round(value float64, decimals int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	scale := math.Pow10(decimals)
	return math.Round(value*scale) / scale
}

func color(kind energy.FuelKind) string {
	profile, _ := kind.Profile()
	return profile.Color
}
