package energy

// KilojoulesPerKWh is the energy content of one kilowatt-hour.
const KilojoulesPerKWh = 3600.0

// Normalized holds the derived energy figures of a combustible record.
type Normalized struct {
	AnnualKWh  float64
	CostPerKWh float64
}

// Normalize converts a combustible's annual native consumption into kWh
// and derives the cost per kWh-equivalent. Zero inputs yield zero outputs.
func Normalize(kind FuelKind, annualOrig, calorific, annualCost float64) (Normalized, error) {
	profile, ok := kind.Profile()
	if !ok {
		return Normalized{}, ErrUnknownFuelKind
	}
	if !profile.Combustible() {
		return Normalized{}, ErrNotCombustible
	}

	var out Normalized
	out.AnnualKWh = toKWh(profile, annualOrig, calorific)
	if out.AnnualKWh > 0 {
		out.CostPerKWh = annualCost / out.AnnualKWh
	}
	return out, nil
}

// ConversionFactor returns the native-unit to calorific-basis factor of a kind.
func ConversionFactor(kind FuelKind) (float64, error) {
	profile, ok := kind.Profile()
	if !ok {
		return 0, ErrUnknownFuelKind
	}
	if !profile.Combustible() {
		return 0, ErrNotCombustible
	}
	return profile.UnitFactor, nil
}

func toKWh(profile Profile, consumption, calorific float64) float64 {
	if consumption == 0 || calorific == 0 {
		return 0
	}
	kilojoules := consumption * profile.UnitFactor * calorific
	return kilojoules / KilojoulesPerKWh
}
