package energy

import (
	"math"
	"strconv"
	"strings"

	"energy-audit/internal/validation"
)

// Form keys accepted by the registration flow.
const (
	FieldUnitCost           = "costo_unitario"
	FieldMonthlyAverageCost = "costo_mensual_promedio"
	FieldAnnualCost         = "costo_total_anual"
	FieldEmissionFactor     = "factor_emision"
	FieldAnnualEmissions    = "emisiones_totales"
	FieldMonthlyKWh         = "consumo_mensual"
	FieldAnnualKWh          = "consumo_anual"
	FieldMonthlyOrig        = "consumo_mensual_orig"
	FieldAnnualOrig         = "consumo_anual_orig"
	FieldCalorificValue     = "poder_calorifico"
	FieldCalorificUnit      = "unidad_pc"
	FieldVariety            = "tipo"
)

// DefaultBiomassVariety is used when no biomass variety is entered.
const DefaultBiomassVariety = "Genérica"

// FieldType tells how a form value is parsed.
type FieldType string

const (
	FieldNumber FieldType = "number"
	FieldText   FieldType = "text"
)

// FieldSpec describes one input of a fuel registration form.
type FieldSpec struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// Input is the parsed, validated content of a registration form.
type Input struct {
	Kind               FuelKind
	UnitCost           float64
	MonthlyAverageCost float64
	AnnualCost         float64
	EmissionFactor     float64
	AnnualEmissions    float64
	MonthlyConsumption float64
	AnnualConsumption  float64
	CalorificValue     float64
	CalorificUnit      string
	Variety            string
}

type fieldBinding struct {
	spec   FieldSpec
	number func(*Input) *float64
	text   func(*Input) *string
}

func number(key, label string, target func(*Input) *float64) fieldBinding {
	return fieldBinding{spec: FieldSpec{Key: key, Label: label, Type: FieldNumber, Required: true}, number: target}
}

func text(key, label string, required bool, target func(*Input) *string) fieldBinding {
	return fieldBinding{spec: FieldSpec{Key: key, Label: label, Type: FieldText, Required: required}, text: target}
}

var schemas = map[FuelKind][]fieldBinding{
	FuelElectricity: electricitySchema(),
	FuelNaturalGas:  combustibleSchema("m³", "COP/m³", "kgCO2/m³", "Ej: kWh/m³"),
	FuelCoal:        combustibleSchema("Ton", "COP/Ton", "kgCO2/Ton", "Ej: MJ/kg"),
	FuelFuelOil:     combustibleSchema("Galones", "COP/Galón", "kgCO2/Gal", "Ej: MJ/Gal"),
	FuelBiomass: append(
		[]fieldBinding{text(FieldVariety, "Tipo de Biomasa (Ej: Bagazo, Cisco)", false, func(in *Input) *string { return &in.Variety })},
		combustibleSchema("Ton", "COP/Ton", "kgCO2/Ton", "Ej: kJ/kg")...,
	),
	FuelPropane: combustibleSchema("kg", "COP/kg", "kgCO2/kg", ""),
}

func electricitySchema() []fieldBinding {
	return []fieldBinding{
		number(FieldMonthlyKWh, "Consumo Mensual (kWh/mes)", func(in *Input) *float64 { return &in.MonthlyConsumption }),
		number(FieldAnnualKWh, "Consumo Anual (kWh/año)", func(in *Input) *float64 { return &in.AnnualConsumption }),
		number(FieldUnitCost, "Costo Unitario (COP/kWh)", func(in *Input) *float64 { return &in.UnitCost }),
		number(FieldMonthlyAverageCost, "Costo Mensual Promedio (COP)", func(in *Input) *float64 { return &in.MonthlyAverageCost }),
		number(FieldAnnualCost, "Costo Total Anual (COP)", func(in *Input) *float64 { return &in.AnnualCost }),
		number(FieldEmissionFactor, "Factor de Emisión (kgCO2/kWh)", func(in *Input) *float64 { return &in.EmissionFactor }),
		number(FieldAnnualEmissions, "Emisiones Totales (TonCO2/año)", func(in *Input) *float64 { return &in.AnnualEmissions }),
	}
}

func combustibleSchema(unit, unitCost, emissionFactor, calorificHint string) []fieldBinding {
	calorificLabel := "Unidad del Poder Calorífico"
	if calorificHint != "" {
		calorificLabel += " (" + calorificHint + ")"
	}
	return []fieldBinding{
		number(FieldMonthlyOrig, "Consumo Mensual ("+unit+"/mes)", func(in *Input) *float64 { return &in.MonthlyConsumption }),
		number(FieldAnnualOrig, "Consumo Anual ("+unit+"/año)", func(in *Input) *float64 { return &in.AnnualConsumption }),
		number(FieldCalorificValue, "Poder Calorífico (PC)", func(in *Input) *float64 { return &in.CalorificValue }),
		text(FieldCalorificUnit, calorificLabel, true, func(in *Input) *string { return &in.CalorificUnit }),
		number(FieldUnitCost, "Costo Unitario ("+unitCost+")", func(in *Input) *float64 { return &in.UnitCost }),
		number(FieldMonthlyAverageCost, "Costo Mensual Promedio (COP)", func(in *Input) *float64 { return &in.MonthlyAverageCost }),
		number(FieldAnnualCost, "Costo Total Anual (COP)", func(in *Input) *float64 { return &in.AnnualCost }),
		number(FieldEmissionFactor, "Factor de Emisión ("+emissionFactor+")", func(in *Input) *float64 { return &in.EmissionFactor }),
		number(FieldAnnualEmissions, "Emisiones Totales (TonCO2/año)", func(in *Input) *float64 { return &in.AnnualEmissions }),
	}
}

// Schema returns the ordered form fields of a fuel kind.
func Schema(kind FuelKind) ([]FieldSpec, error) {
	bindings, ok := schemas[kind]
	if !ok {
		return nil, ErrUnknownFuelKind
	}
	specs := make([]FieldSpec, 0, len(bindings))
	for _, b := range bindings {
		specs = append(specs, b.spec)
	}
	return specs, nil
}

// ParseInput validates raw form values against the kind's schema.
// Keys outside the schema, including derived fields, are ignored.
func ParseInput(kind FuelKind, values map[string]string) (Input, error) {
	bindings, ok := schemas[kind]
	if !ok {
		return Input{}, ErrUnknownFuelKind
	}

	in := Input{Kind: kind}
	verr := validation.New("energy")
	for _, b := range bindings {
		raw := strings.TrimSpace(values[b.spec.Key])
		switch b.spec.Type {
		case FieldNumber:
			if raw == "" {
				if b.spec.Required {
					verr.Add(b.spec.Key, "este campo es obligatorio")
				}
				continue
			}
			value, err := ParseNumber(raw)
			if err != nil {
				verr.Add(b.spec.Key, "introduzca un número válido")
				continue
			}
			if value < 0 {
				verr.Add(b.spec.Key, "el valor no puede ser negativo")
				continue
			}
			*b.number(&in) = value
		case FieldText:
			if raw == "" && b.spec.Required {
				verr.Add(b.spec.Key, "este campo es obligatorio")
				continue
			}
			*b.text(&in) = raw
		}
	}
	if !verr.Empty() {
		return Input{}, verr
	}
	if kind == FuelBiomass && in.Variety == "" {
		in.Variety = DefaultBiomassVariety
	}
	return in, nil
}

// ParseNumber parses a float that may carry "," thousands separators,
// as pasted from spreadsheets.
func ParseNumber(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, strconv.ErrSyntax
	}
	return value, nil
}
