package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy-audit/internal/analytics/domain/kpi"
	audits "energy-audit/internal/audits/domain"
	energy "energy-audit/internal/energy/domain"
	masterdata "energy-audit/internal/masterdata/domain"
)

var fixedNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	f, err := NewFormatter(DefaultLocale)
	require.NoError(t, err)
	return NewAssembler(f, WithClock(func() time.Time { return fixedNow }))
}

func sample(t *testing.T) (audits.Project, []energy.Record) {
	t.Helper()
	production := 10000.0
	project := audits.Project{
		ID:              "p1",
		OrganizationID:  "org-a",
		Name:            "Auditoría Textiles",
		CompanyName:     "Textiles SA",
		Status:          audits.StatusInExecution,
		ProductionTotal: &production,
		ProductionUnit:  "Ton",
		CreatedAt:       fixedNow,
	}
	electricity, err := energy.NewRecord("p1", energy.Input{Kind: energy.FuelElectricity, AnnualConsumption: 10000, AnnualCost: 5000000, AnnualEmissions: 3.2})
	require.NoError(t, err)
	gas, err := energy.NewRecord("p1", energy.Input{Kind: energy.FuelNaturalGas, AnnualConsumption: 2000, CalorificValue: 3600, AnnualCost: 1000000})
	require.NoError(t, err)
	return project, []energy.Record{*electricity, *gas}
}

func TestAssembler_Project(t *testing.T) {
	a := newAssembler(t)
	project, records := sample(t)

	report := a.Project(project, kpi.ComputeProject(project, records))

	assert.Equal(t, "Auditoría Textiles · Textiles SA", report.Subtitle)
	assert.Equal(t, "2024-05-10 14:30", report.GeneratedAt)
	require.NotEmpty(t, report.Cards)
	assert.Equal(t, Card{Label: "Energía total", Value: "12.000", Unit: "kWh"}, report.Cards[0])
	assert.Equal(t, "$ 6.000.000", report.Cards[1].Value)
	assert.Equal(t, "1,2000", report.Cards[3].Value)
	assert.Equal(t, "kWh/Ton", report.Cards[3].Unit)

	require.Len(t, report.Sources.Rows, 2)
	assert.Equal(t, []string{"Electricidad", "10.000", "$ 5.000.000", "3,20"}, report.Sources.Rows[0])
	assert.Contains(t, report.Detail.Rows, []string{"Líder", kpi.UnassignedLead})
	assert.Contains(t, report.Detail.Rows, []string{"Producción", "10.000 Ton"})
}

func TestAssembler_Dashboard(t *testing.T) {
	a := newAssembler(t)
	project, records := sample(t)
	report := kpi.Aggregate([]kpi.ProjectRecords{{Project: project, Records: records}})

	out := a.Dashboard("Centro Andino", report)

	assert.Equal(t, "Centro Andino", out.Subtitle)
	assert.Equal(t, "1", out.Cards[0].Value)
	assert.Len(t, out.Sources.Rows, len(energy.Kinds()))
	require.Len(t, out.Detail.Rows, 1)
	row := out.Detail.Rows[0]
	assert.Len(t, row, len(out.Detail.Columns))
	assert.Equal(t, "Auditoría Textiles", row[0])
	assert.Equal(t, kpi.UnassignedLead, row[2])
	assert.Equal(t, "12.000", row[5])
}

func TestAssembler_EmptyDashboardIsZeroFilled(t *testing.T) {
	a := newAssembler(t)
	out := a.Dashboard("Nacional", kpi.Aggregate(nil))

	assert.Equal(t, "0", out.Cards[0].Value)
	assert.Equal(t, "$ 0", out.Cards[2].Value)
	assert.Empty(t, out.Detail.Rows)
	for _, row := range out.Sources.Rows {
		assert.Equal(t, "0", row[1])
	}
}

func TestAssembler_National(t *testing.T) {
	a := newAssembler(t)
	project, records := sample(t)
	orgs := []masterdata.Organization{
		{ID: "org-a", Name: "Centro Andino", Code: "CA", Region: "Andina", Active: true},
		{ID: "org-b", Name: "Centro Caribe", Code: "CC", Active: true},
	}
	report := kpi.AggregateNational(orgs, []kpi.ProjectRecords{{Project: project, Records: records}})

	out := a.National(report)

	require.Len(t, out.Detail.Rows, 2)
	assert.Equal(t, []string{"Centro Andino", "CA", "Andina", "1", "12.000", "3,20", "12.000"}, out.Detail.Rows[0])
	assert.Equal(t, []string{"Centro Caribe", "CC", "-", "0", "0", "0,00", "0"}, out.Detail.Rows[1])
}
