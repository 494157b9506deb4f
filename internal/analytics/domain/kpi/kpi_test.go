package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audits "energy-audit/internal/audits/domain"
	energy "energy-audit/internal/energy/domain"
)

func production(v float64) *float64 { return &v }

func record(t *testing.T, projectID string, in energy.Input) energy.Record {
	t.Helper()
	rec, err := energy.NewRecord(projectID, in)
	require.NoError(t, err)
	return *rec
}

func TestComputeProject_ElectricityOnly(t *testing.T) {
	p := audits.Project{ID: "p1"}
	set := ComputeProject(p, []energy.Record{
		record(t, "p1", energy.Input{Kind: energy.FuelElectricity, AnnualConsumption: 12000}),
	})

	assert.Equal(t, 12000.0, set.ElectricKWh)
	assert.Equal(t, 0.0, set.ThermalKWh)
	assert.Equal(t, 12000.0, set.TotalEnergy)
	assert.Equal(t, 0.0, set.IDES)
}

func TestComputeProject_IDES(t *testing.T) {
	records := []energy.Record{record(t, "p1", energy.Input{Kind: energy.FuelElectricity, AnnualConsumption: 50000})}

	set := ComputeProject(audits.Project{ID: "p1", ProductionTotal: production(1000)}, records)
	assert.Equal(t, 50.0, set.IDES)

	set = ComputeProject(audits.Project{ID: "p1", ProductionTotal: production(0)}, records)
	assert.Equal(t, 0.0, set.IDES)

	set = ComputeProject(audits.Project{ID: "p1"}, records)
	assert.Equal(t, 0.0, set.IDES)
}

func TestComputeProject_MixedSourcesAndMBTU(t *testing.T) {
	p := audits.Project{ID: "p1", ProductionTotal: production(3)}
	set := ComputeProject(p, []energy.Record{
		record(t, "p1", energy.Input{Kind: energy.FuelNaturalGas, AnnualConsumption: 2000, CalorificValue: 3600, AnnualCost: 1000000, AnnualEmissions: 1.5}),
		record(t, "p1", energy.Input{Kind: energy.FuelElectricity, AnnualConsumption: 10000, AnnualCost: 5000000, AnnualEmissions: 3.2}),
		record(t, "other", energy.Input{Kind: energy.FuelCoal, AnnualConsumption: 1, CalorificValue: 1}),
	})

	assert.Equal(t, 12000.0, set.TotalEnergy)
	assert.Equal(t, 2000.0, set.ThermalKWh)
	assert.Equal(t, 6000000.0, set.TotalCost)
	assert.InDelta(t, 4.7, set.TotalEmissions, 1e-9)
	assert.InDelta(t, 10000*MBTUPerKWh, set.ElectricMBTU, 1e-9)
	assert.InDelta(t, 2000*MBTUPerKWh, set.ThermalMBTU, 1e-9)
	require.Len(t, set.Sources, 2)
	assert.Equal(t, energy.FuelElectricity, set.Sources[0].Kind, "sources follow fuel order")

	rounded := set.Rounded()
	assert.Equal(t, 4000.0, rounded.IDES)
	assert.Equal(t, 34.12, rounded.ElectricMBTU)
	assert.Equal(t, 6.82, rounded.ThermalMBTU)
	assert.InDelta(t, 10000*MBTUPerKWh, set.ElectricMBTU, 1e-9, "rounding never mutates the source set")
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.1416, Round(3.14159265, 4))
	assert.Equal(t, 12346.0, Round(12345.5, 0))
	assert.Equal(t, -2.35, Round(-2.346, 2))
	assert.Equal(t, 0.0, Round(1/zero(), 2))
}

func zero() float64 { return 0 }

func TestAggregate_FixedSourceOrderAndRows(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	older := ProjectRecords{
		Project: audits.Project{ID: "a", Name: "Antiguo", CompanyName: "Textiles", LeadName: "Laura Gómez", CreatedAt: now.Add(-time.Hour)},
		Records: []energy.Record{record(t, "a", energy.Input{Kind: energy.FuelElectricity, AnnualConsumption: 10000, AnnualCost: 5000000, AnnualEmissions: 3.2})},
	}
	newer := ProjectRecords{
		Project: audits.Project{ID: "b", Name: "Nuevo", CompanyName: "Lácteos", CreatedAt: now, ProductionTotal: production(100), ProductionUnit: "Ton"},
		Records: []energy.Record{record(t, "b", energy.Input{Kind: energy.FuelPropane, AnnualConsumption: 1000, CalorificValue: 3600, AnnualCost: 800000})},
	}

	report := Aggregate([]ProjectRecords{older, newer})

	assert.Equal(t, 2, report.ProjectCount)
	assert.Equal(t, 11000.0, report.Totals.Energy)
	assert.Equal(t, 5800000.0, report.Totals.Cost)
	assert.Equal(t, 10000.0, report.Totals.ElectricKWh)
	assert.Equal(t, 1000.0, report.Totals.ThermalKWh)

	require.Len(t, report.Sources, 6)
	kinds := make([]energy.FuelKind, 0, 6)
	for _, src := range report.Sources {
		kinds = append(kinds, src.Kind)
	}
	assert.Equal(t, energy.Kinds(), kinds)
	assert.Len(t, report.ChartSources(), 2)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "b", report.Rows[0].ProjectID, "most recent first")
	assert.Equal(t, UnassignedLead, report.Rows[0].LeadName)
	assert.Equal(t, 10.0, report.Rows[0].IDES)
	assert.Equal(t, "Laura Gómez", report.Rows[1].LeadName)

	again := Aggregate([]ProjectRecords{newer, older})
	assert.Equal(t, report, again)
}

func TestAggregate_Empty(t *testing.T) {
	report := Aggregate(nil)
	assert.Equal(t, 0, report.ProjectCount)
	assert.Len(t, report.Sources, 6)
	assert.Empty(t, report.Rows)
	assert.Empty(t, report.ChartSources())
}
