package energy

import (
	"sort"
	"strings"
)

// FuelKind identifies one of the six energy sources logged per project.
type FuelKind string

const (
	FuelElectricity FuelKind = "electricidad"
	FuelNaturalGas  FuelKind = "gas_natural"
	FuelCoal        FuelKind = "carbon"
	FuelFuelOil     FuelKind = "fuel_oil"
	FuelBiomass     FuelKind = "biomasa"
	FuelPropane     FuelKind = "glp"
)

// Unit factors from native consumption unit to the basis of the calorific value.
const (
	GallonsToCubicMeters = 0.00378541
	TonsToKilograms      = 1000.0
	SameBasis            = 1.0
)

// Profile is the static description of a fuel kind: how it is measured,
// how it converts to energy and how it is charted.
type Profile struct {
	Kind            FuelKind
	Label           string
	Color           string
	Electric        bool
	ConsumptionUnit string
	CalorificBasis  string
	UnitFactor      float64
	Order           int
}

// Combustible reports whether the fuel needs calorific normalization.
func (p Profile) Combustible() bool { return !p.Electric }

var profiles = map[FuelKind]Profile{
	FuelElectricity: {Kind: FuelElectricity, Label: "Electricidad", Color: "#ffc107", Electric: true, ConsumptionUnit: "kWh", Order: 0},
	FuelNaturalGas:  {Kind: FuelNaturalGas, Label: "Gas Natural", Color: "#0d6efd", ConsumptionUnit: "m³", CalorificBasis: "m³", UnitFactor: SameBasis, Order: 1},
	FuelCoal:        {Kind: FuelCoal, Label: "Carbón Mineral", Color: "#212529", ConsumptionUnit: "Ton", CalorificBasis: "kg", UnitFactor: TonsToKilograms, Order: 2},
	FuelFuelOil:     {Kind: FuelFuelOil, Label: "Fuel Oil", Color: "#dc3545", ConsumptionUnit: "Galones", CalorificBasis: "m³", UnitFactor: GallonsToCubicMeters, Order: 3},
	FuelBiomass:     {Kind: FuelBiomass, Label: "Biomasa", Color: "#198754", ConsumptionUnit: "Ton", CalorificBasis: "kg", UnitFactor: TonsToKilograms, Order: 4},
	FuelPropane:     {Kind: FuelPropane, Label: "GLP", Color: "#0dcaf0", ConsumptionUnit: "kg", CalorificBasis: "kg", UnitFactor: SameBasis, Order: 5},
}

// Kinds returns every fuel kind in display order.
func Kinds() []FuelKind {
	return []FuelKind{FuelElectricity, FuelNaturalGas, FuelCoal, FuelFuelOil, FuelBiomass, FuelPropane}
}

// ParseFuelKind validates a fuel kind string.
func ParseFuelKind(value string) (FuelKind, error) {
	kind := FuelKind(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := profiles[kind]; !ok {
		return "", ErrUnknownFuelKind
	}
	return kind, nil
}

// IsValid reports whether the kind is one of the known fuels.
func (k FuelKind) IsValid() bool {
	_, ok := profiles[k]
	return ok
}

// Profile returns the static profile for the kind.
func (k FuelKind) Profile() (Profile, bool) {
	p, ok := profiles[k]
	return p, ok
}

// Label returns the display label, or the raw kind when unknown.
func (k FuelKind) Label() string {
	if p, ok := profiles[k]; ok {
		return p.Label
	}
	return string(k)
}

// Electric reports whether the kind accumulates into the electric split.
func (k FuelKind) Electric() bool {
	p, ok := profiles[k]
	return ok && p.Electric
}

// SortRecords orders records by fuel profile order.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Kind.order() < records[j].Kind.order()
	})
}

func (k FuelKind) order() int {
	if profile, ok := k.Profile(); ok {
		return profile.Order
	}
	return len(profiles)
}
