package kpi

import (
	"slices"
	"strings"

	masterdata "energy-audit/internal/masterdata/domain"
)

// OrganizationSummary is one center in the national comparison.
type OrganizationSummary struct {
	OrganizationID string
	Name           string
	Code           string
	Region         string
	ProjectCount   int
	TotalEnergy    float64
	TotalEmissions float64
	AverageKWh     float64
}

// NationalReport compares active organizations.
type NationalReport struct {
	Overall       Report
	Organizations []OrganizationSummary
}

// AggregateNational summarizes the projects of every active organization and
// ranks organizations by total energy, highest first. Organizations without
// projects appear with zero values.
func AggregateNational(organizations []masterdata.Organization, items []ProjectRecords) NationalReport {
	byOrg := make(map[string][]ProjectRecords)
	for _, item := range items {
		byOrg[item.Project.OrganizationID] = append(byOrg[item.Project.OrganizationID], item)
	}

	report := NationalReport{Organizations: make([]OrganizationSummary, 0, len(organizations))}
	var included []ProjectRecords
	for _, org := range organizations {
		if !org.Active {
			continue
		}
		orgItems := byOrg[org.ID]
		included = append(included, orgItems...)
		orgReport := Aggregate(orgItems)
		summary := OrganizationSummary{
			OrganizationID: org.ID,
			Name:           org.Name,
			Code:           org.Code,
			Region:         org.Region,
			ProjectCount:   orgReport.ProjectCount,
			TotalEnergy:    orgReport.Totals.Energy,
			TotalEmissions: orgReport.Totals.Emissions,
		}
		if summary.ProjectCount > 0 {
			summary.AverageKWh = summary.TotalEnergy / float64(summary.ProjectCount)
		}
		report.Organizations = append(report.Organizations, summary)
	}
	slices.SortStableFunc(report.Organizations, func(a, b OrganizationSummary) int {
		switch {
		case a.TotalEnergy > b.TotalEnergy:
			return -1
		case a.TotalEnergy < b.TotalEnergy:
			return 1
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})
	report.Overall = Aggregate(included)
	return report
}
