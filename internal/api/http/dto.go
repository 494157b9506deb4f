package apihttp

import (
	"encoding/json"
	"time"

	"energy-audit/internal/analytics/application"
	"energy-audit/internal/audit"
	"energy-audit/internal/analytics/domain/kpi"
	audits "energy-audit/internal/audits/domain"
	energy "energy-audit/internal/energy/domain"
	masterdata "energy-audit/internal/masterdata/domain"
)

const dateLayout = "2006-01-02"

type userResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Position       string    `json:"position"`
	Role           string    `json:"role"`
	RoleLabel      string    `json:"role_label"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Superuser      bool      `json:"superuser"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

func toUser(u masterdata.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Position:       u.Position,
		Role:           string(u.Role),
		RoleLabel:      u.Role.Label(),
		OrganizationID: u.OrganizationID,
		Superuser:      u.Superuser,
		Active:         u.Active,
		CreatedAt:      u.CreatedAt,
	}
}

type projectResponse struct {
	ID                 string    `json:"id"`
	OrganizationID     string    `json:"organization_id"`
	OrganizationName   string    `json:"organization_name"`
	CompanyID          string    `json:"company_id"`
	CompanyName        string    `json:"company_name"`
	LeadID             string    `json:"lead_id,omitempty"`
	LeadName           string    `json:"lead_name,omitempty"`
	Team               []string  `json:"team"`
	Name               string    `json:"name"`
	StartDate          string    `json:"start_date"`
	EstimatedCloseDate *string   `json:"estimated_close_date,omitempty"`
	Status             string    `json:"status"`
	StatusLabel        string    `json:"status_label"`
	ProductionTotal    *float64  `json:"production_total,omitempty"`
	ProductionUnit     string    `json:"production_unit,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toProject(p audits.Project) projectResponse {
	out := projectResponse{
		ID:               p.ID,
		OrganizationID:   p.OrganizationID,
		OrganizationName: p.OrganizationName,
		CompanyID:        p.CompanyID,
		CompanyName:      p.CompanyName,
		LeadID:           p.LeadID,
		LeadName:         p.LeadName,
		Team:             p.Team,
		Name:             p.Name,
		StartDate:        p.StartDate.Format(dateLayout),
		Status:           string(p.Status),
		StatusLabel:      p.Status.Label(),
		ProductionTotal:  p.ProductionTotal,
		ProductionUnit:   p.ProductionUnit,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if out.Team == nil {
		out.Team = []string{}
	}
	if p.EstimatedCloseDate != nil {
		closeDate := p.EstimatedCloseDate.Format(dateLayout)
		out.EstimatedCloseDate = &closeDate
	}
	return out
}

func toProjects(projects []audits.Project) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProject(p))
	}
	return out
}

type recordResponse struct {
	ID                 string    `json:"id"`
	ProjectID          string    `json:"project_id"`
	Fuel               string    `json:"fuel"`
	FuelLabel          string    `json:"fuel_label"`
	UnitCost           float64   `json:"unit_cost"`
	MonthlyAverageCost float64   `json:"monthly_average_cost"`
	AnnualCost         float64   `json:"annual_cost"`
	EmissionFactor     float64   `json:"emission_factor"`
	AnnualEmissions    float64   `json:"annual_emissions"`
	MonthlyConsumption float64   `json:"monthly_consumption"`
	AnnualConsumption  float64   `json:"annual_consumption"`
	CalorificValue     float64   `json:"calorific_value,omitempty"`
	CalorificUnit      string    `json:"calorific_unit,omitempty"`
	Variety            string    `json:"variety,omitempty"`
	AnnualKWh          float64   `json:"annual_kwh"`
	CostPerKWh         float64   `json:"cost_per_kwh"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toRecord(r energy.Record) recordResponse {
	return recordResponse{
		ID:                 r.ID,
		ProjectID:          r.ProjectID,
		Fuel:               string(r.Kind),
		FuelLabel:          r.Kind.Label(),
		UnitCost:           r.UnitCost,
		MonthlyAverageCost: r.MonthlyAverageCost,
		AnnualCost:         r.AnnualCost,
		EmissionFactor:     r.EmissionFactor,
		AnnualEmissions:    r.AnnualEmissions,
		MonthlyConsumption: r.MonthlyConsumption,
		AnnualConsumption:  r.AnnualConsumption,
		CalorificValue:     r.CalorificValue,
		CalorificUnit:      r.CalorificUnit,
		Variety:            r.Variety,
		AnnualKWh:          r.AnnualKWhEquivalent(),
		CostPerKWh:         r.CostPerKWh,
		UpdatedAt:          r.UpdatedAt,
	}
}

type sourceResponse struct {
	Fuel      string  `json:"fuel"`
	Label     string  `json:"label"`
	Color     string  `json:"color"`
	KWh       float64 `json:"kwh"`
	Cost      float64 `json:"cost"`
	Emissions float64 `json:"emissions,omitempty"`
}

type kpiResponse struct {
	ProjectID      string           `json:"project_id"`
	TotalEnergy    float64          `json:"total_energy_kwh"`
	ElectricKWh    float64          `json:"electric_kwh"`
	ThermalKWh     float64          `json:"thermal_kwh"`
	ElectricMBTU   float64          `json:"electric_mbtu"`
	ThermalMBTU    float64          `json:"thermal_mbtu"`
	TotalCost      float64          `json:"total_cost"`
	TotalEmissions float64          `json:"total_emissions"`
	Production     float64          `json:"production"`
	ProductionUnit string           `json:"production_unit,omitempty"`
	IDES           float64          `json:"ides"`
	Sources        []sourceResponse `json:"sources"`
}

func toKPIs(set kpi.KpiSet) kpiResponse {
	set = set.Rounded()
	out := kpiResponse{
		ProjectID:      set.ProjectID,
		TotalEnergy:    set.TotalEnergy,
		ElectricKWh:    set.ElectricKWh,
		ThermalKWh:     set.ThermalKWh,
		ElectricMBTU:   set.ElectricMBTU,
		ThermalMBTU:    set.ThermalMBTU,
		TotalCost:      set.TotalCost,
		TotalEmissions: set.TotalEmissions,
		Production:     set.Production,
		ProductionUnit: set.ProductionUnit,
		IDES:           set.IDES,
		Sources:        make([]sourceResponse, 0, len(set.Sources)),
	}
	for _, src := range set.Sources {
		out.Sources = append(out.Sources, sourceResponse{
			Fuel: string(src.Kind), Label: src.Label, Color: src.Color, KWh: src.KWh, Cost: src.Cost, Emissions: src.Emissions,
		})
	}
	return out
}

type totalsResponse struct {
	Energy       float64 `json:"energy_kwh"`
	Cost         float64 `json:"cost"`
	Emissions    float64 `json:"emissions"`
	ElectricKWh  float64 `json:"electric_kwh"`
	ThermalKWh   float64 `json:"thermal_kwh"`
	ElectricMBTU float64 `json:"electric_mbtu"`
	ThermalMBTU  float64 `json:"thermal_mbtu"`
}

type rowResponse struct {
	ProjectID      string  `json:"project_id"`
	ProjectName    string  `json:"project_name"`
	CompanyName    string  `json:"company_name"`
	LeadName       string  `json:"lead_name"`
	Status         string  `json:"status"`
	Production     float64 `json:"production"`
	ProductionUnit string  `json:"production_unit,omitempty"`
	TotalEnergy    float64 `json:"total_energy_kwh"`
	ElectricKWh    float64 `json:"electric_kwh"`
	ThermalKWh     float64 `json:"thermal_kwh"`
	Cost           float64 `json:"cost"`
	Emissions      float64 `json:"emissions"`
	IDES           float64 `json:"ides"`
}

type reportResponse struct {
	ProjectCount int              `json:"project_count"`
	Totals       totalsResponse   `json:"totals"`
	Sources      []sourceResponse `json:"sources"`
	Chart        []sourceResponse `json:"chart"`
	Rows         []rowResponse    `json:"rows"`
}

func toSources(sources []kpi.SourceTotal) []sourceResponse {
	out := make([]sourceResponse, 0, len(sources))
	for _, src := range sources {
		out = append(out, sourceResponse{
			Fuel:  string(src.Kind),
			Label: src.Label,
			Color: src.Color,
			KWh:   kpi.Round(src.KWh, kpi.EnergyDecimals),
			Cost:  kpi.Round(src.Cost, kpi.CostDecimals),
		})
	}
	return out
}

func toReport(r kpi.Report) reportResponse {
	out := reportResponse{
		ProjectCount: r.ProjectCount,
		Totals: totalsResponse{
			Energy:       kpi.Round(r.Totals.Energy, kpi.EnergyDecimals),
			Cost:         kpi.Round(r.Totals.Cost, kpi.CostDecimals),
			Emissions:    kpi.Round(r.Totals.Emissions, kpi.EmissionsDecimals),
			ElectricKWh:  kpi.Round(r.Totals.ElectricKWh, kpi.EnergyDecimals),
			ThermalKWh:   kpi.Round(r.Totals.ThermalKWh, kpi.EnergyDecimals),
			ElectricMBTU: kpi.Round(r.Totals.ElectricMBTU, kpi.MBTUDecimals),
			ThermalMBTU:  kpi.Round(r.Totals.ThermalMBTU, kpi.MBTUDecimals),
		},
		Sources: toSources(r.Sources),
		Chart:   toSources(r.ChartSources()),
		Rows:    make([]rowResponse, 0, len(r.Rows)),
	}
	for _, row := range r.Rows {
		out.Rows = append(out.Rows, rowResponse{
			ProjectID:      row.ProjectID,
			ProjectName:    row.ProjectName,
			CompanyName:    row.CompanyName,
			LeadName:       row.LeadName,
			Status:         string(row.Status),
			Production:     row.Production,
			ProductionUnit: row.ProductionUnit,
			TotalEnergy:    kpi.Round(row.TotalEnergy, kpi.EnergyDecimals),
			ElectricKWh:    kpi.Round(row.ElectricKWh, kpi.EnergyDecimals),
			ThermalKWh:     kpi.Round(row.ThermalKWh, kpi.EnergyDecimals),
			Cost:           kpi.Round(row.Cost, kpi.CostDecimals),
			Emissions:      kpi.Round(row.Emissions, kpi.EmissionsDecimals),
			IDES:           kpi.Round(row.IDES, kpi.IDESDecimals),
		})
	}
	return out
}

type strategicResponse struct {
	Scope          string               `json:"scope"`
	OrganizationID string               `json:"organization_id,omitempty"`
	ProjectID      string               `json:"project,omitempty"`
	LeadID         string               `json:"lead,omitempty"`
	Report         reportResponse       `json:"report"`
	ProjectOptions []application.Option `json:"project_options"`
	LeadOptions    []application.Option `json:"lead_options"`
}

func toStrategic(d *application.StrategicDashboard) strategicResponse {
	return strategicResponse{
		Scope:          d.ScopeLabel,
		OrganizationID: d.OrganizationID,
		ProjectID:      d.Filter.ProjectID,
		LeadID:         d.Filter.LeadID,
		Report:         toReport(d.Report),
		ProjectOptions: d.ProjectOptions,
		LeadOptions:    d.LeadOptions,
	}
}

type organizationSummaryResponse struct {
	OrganizationID string  `json:"organization_id"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	Region         string  `json:"region"`
	ProjectCount   int     `json:"project_count"`
	TotalEnergy    float64 `json:"total_energy_kwh"`
	TotalEmissions float64 `json:"total_emissions"`
	AverageKWh     float64 `json:"average_kwh"`
}

type nationalResponse struct {
	OrganizationID string                        `json:"organization_id,omitempty"`
	Organizations  []application.Option          `json:"organizations"`
	Overall        *reportResponse               `json:"overall,omitempty"`
	Ranking        []organizationSummaryResponse `json:"ranking,omitempty"`
	Detail         *strategicResponse            `json:"detail,omitempty"`
}

func toNational(d *application.NationalDashboard) nationalResponse {
	out := nationalResponse{OrganizationID: d.OrganizationID, Organizations: d.Organizations}
	if d.Detail != nil {
		detail := toStrategic(d.Detail)
		out.Detail = &detail
	}
	if d.Summary != nil {
		overall := toReport(d.Summary.Overall)
		out.Overall = &overall
		out.Ranking = make([]organizationSummaryResponse, 0, len(d.Summary.Organizations))
		for _, org := range d.Summary.Organizations {
			out.Ranking = append(out.Ranking, organizationSummaryResponse{
				OrganizationID: org.OrganizationID,
				Name:           org.Name,
				Code:           org.Code,
				Region:         org.Region,
				ProjectCount:   org.ProjectCount,
				TotalEnergy:    kpi.Round(org.TotalEnergy, kpi.EnergyDecimals),
				TotalEmissions: kpi.Round(org.TotalEmissions, kpi.EmissionsDecimals),
				AverageKWh:     kpi.Round(org.AverageKWh, kpi.EnergyDecimals),
			})
		}
	}
	return out
}

type workspaceResponse struct {
	ProjectCount     int               `json:"project_count"`
	InExecutionCount int               `json:"in_execution_count"`
	Recent           []projectResponse `json:"recent"`
}

type directoryEntryResponse struct {
	Organization masterdata.Organization `json:"organization"`
	ProjectCount int                     `json:"project_count"`
}

type publicResponse struct {
	FinalizedProjects   int                      `json:"finalized_projects"`
	ActiveOrganizations int                      `json:"active_organizations"`
	Regions             []string                 `json:"regions"`
	Directory           []directoryEntryResponse `json:"directory"`
	News                []masterdata.News        `json:"news"`
}

func toPublic(s *application.PublicSummary) publicResponse {
	out := publicResponse{
		FinalizedProjects:   s.FinalizedProjects,
		ActiveOrganizations: s.ActiveOrganizations,
		Regions:             s.Regions,
		Directory:           make([]directoryEntryResponse, 0, len(s.Directory)),
		News:                s.News,
	}
	if out.News == nil {
		out.News = []masterdata.News{}
	}
	for _, entry := range s.Directory {
		out.Directory = append(out.Directory, directoryEntryResponse{Organization: entry.Organization, ProjectCount: entry.ProjectCount})
	}
	return out
}

type activityResponse struct {
	ID           string          `json:"id"`
	Actor        string          `json:"actor"`
	Role         string          `json:"role"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toActivity(e audit.Entry) activityResponse {
	return activityResponse{
		ID:           e.ID,
		Actor:        e.Actor,
		Role:         e.Role,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Metadata:     e.Metadata,
		CreatedAt:    e.CreatedAt,
	}
}
