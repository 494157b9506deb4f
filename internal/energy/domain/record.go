package energy

import "time"

// Record is the single current-year energy entry of one fuel in one project.
//
// Consumption figures are in the fuel's native unit; for electricity the
// native unit is kWh. MonthlyKWh, AnnualKWh and CostPerKWh are derived for
// combustibles and always overwritten by Refresh.
type Record struct {
	ID        string
	ProjectID string
	Kind      FuelKind

	UnitCost           float64
	MonthlyAverageCost float64
	AnnualCost         float64
	EmissionFactor     float64
	AnnualEmissions    float64

	MonthlyConsumption float64
	AnnualConsumption  float64

	CalorificValue float64
	CalorificUnit  string
	Variety        string

	MonthlyKWh float64
	AnnualKWh  float64
	CostPerKWh float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord builds a record for a project from validated input and
// computes its derived fields.
func NewRecord(projectID string, input Input) (*Record, error) {
	if projectID == "" {
		return nil, ErrEmptyProjectID
	}
	if !input.Kind.IsValid() {
		return nil, ErrUnknownFuelKind
	}
	rec := &Record{
		ProjectID:          projectID,
		Kind:               input.Kind,
		UnitCost:           input.UnitCost,
		MonthlyAverageCost: input.MonthlyAverageCost,
		AnnualCost:         input.AnnualCost,
		EmissionFactor:     input.EmissionFactor,
		AnnualEmissions:    input.AnnualEmissions,
		MonthlyConsumption: input.MonthlyConsumption,
		AnnualConsumption:  input.AnnualConsumption,
		CalorificValue:     input.CalorificValue,
		CalorificUnit:      input.CalorificUnit,
		Variety:            input.Variety,
	}
	if err := rec.Refresh(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Refresh recomputes the derived fields from the entered ones.
func (r *Record) Refresh() error {
	profile, ok := r.Kind.Profile()
	if !ok {
		return ErrUnknownFuelKind
	}
	if !profile.Combustible() {
		r.CalorificValue = 0
		r.CalorificUnit = ""
		r.MonthlyKWh = 0
		r.AnnualKWh = 0
		r.CostPerKWh = 0
		return nil
	}

	normalized, err := Normalize(r.Kind, r.AnnualConsumption, r.CalorificValue, r.AnnualCost)
	if err != nil {
		return err
	}
	r.AnnualKWh = normalized.AnnualKWh
	r.CostPerKWh = normalized.CostPerKWh
	r.MonthlyKWh = toKWh(profile, r.MonthlyConsumption, r.CalorificValue)
	return nil
}

// AnnualKWhEquivalent returns the annual energy of the record in kWh,
// whatever the fuel.
func (r Record) AnnualKWhEquivalent() float64 {
	if r.Kind.Electric() {
		return r.AnnualConsumption
	}
	return r.AnnualKWh
}

// Electric reports whether the record belongs to the electric split.
func (r Record) Electric() bool { return r.Kind.Electric() }
