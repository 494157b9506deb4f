package kpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audits "energy-audit/internal/audits/domain"
	energy "energy-audit/internal/energy/domain"
	masterdata "energy-audit/internal/masterdata/domain"
)

func TestAggregateNational_RanksByEnergy(t *testing.T) {
	orgs := []masterdata.Organization{
		{ID: "a", Name: "Centro Andino", Active: true},
		{ID: "b", Name: "Centro Caribe", Active: true},
		{ID: "c", Name: "Centro Vacío", Active: true},
		{ID: "d", Name: "Centro Cerrado", Active: false},
	}
	electric := func(projectID string, kwh float64) []energy.Record {
		return []energy.Record{record(t, projectID, energy.Input{Kind: energy.FuelElectricity, AnnualConsumption: kwh, AnnualEmissions: 1})}
	}
	items := []ProjectRecords{
		{Project: audits.Project{ID: "a1", OrganizationID: "a"}, Records: electric("a1", 1000)},
		{Project: audits.Project{ID: "b1", OrganizationID: "b"}, Records: electric("b1", 4000)},
		{Project: audits.Project{ID: "b2", OrganizationID: "b"}, Records: electric("b2", 2000)},
		{Project: audits.Project{ID: "d1", OrganizationID: "d"}, Records: electric("d1", 99999)},
	}

	report := AggregateNational(orgs, items)

	require.Len(t, report.Organizations, 3)
	assert.Equal(t, "b", report.Organizations[0].OrganizationID)
	assert.Equal(t, 2, report.Organizations[0].ProjectCount)
	assert.Equal(t, 6000.0, report.Organizations[0].TotalEnergy)
	assert.Equal(t, 3000.0, report.Organizations[0].AverageKWh)
	assert.Equal(t, 2.0, report.Organizations[0].TotalEmissions)
	assert.Equal(t, "a", report.Organizations[1].OrganizationID)

	empty := report.Organizations[2]
	assert.Equal(t, "c", empty.OrganizationID)
	assert.Zero(t, empty.ProjectCount)
	assert.Zero(t, empty.AverageKWh)

	assert.Equal(t, 3, report.Overall.ProjectCount)
	assert.Equal(t, 7000.0, report.Overall.Totals.Energy)
}
