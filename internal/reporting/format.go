// Package reporting turns computed indicators into display strings. It never
// computes: every value it prints was produced by the kpi package.
package reporting

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"energy-audit/internal/analytics/domain/kpi"
)

// DefaultLocale groups thousands with "." and separates decimals with ",".
const DefaultLocale = "es-CO"

// ProductionDecimals is the display precision of production totals.
const ProductionDecimals = 0

// Formatter prints numbers for one locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter builds a formatter for a BCP 47 locale. An empty locale
// selects DefaultLocale.
func NewFormatter(locale string) (*Formatter, error) {
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("report locale %q: %w", locale, err)
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}, nil
}

// Locale returns the configured locale.
func (f *Formatter) Locale() string { return f.tag.String() }

// Number rounds half away from zero and prints with fixed decimals.
func (f *Formatter) Number(value float64, decimals int) string {
	value = kpi.Round(value, decimals)
	if value == 0 {
		value = 0
	}
	return f.printer.Sprint(number.Decimal(value, number.Scale(decimals)))
}

// Energy prints kWh.
func (f *Formatter) Energy(value float64) string { return f.Number(value, kpi.EnergyDecimals) }

// Cost prints a currency amount with its symbol.
func (f *Formatter) Cost(value float64) string { return "$ " + f.Number(value, kpi.CostDecimals) }

// Emissions prints tCO2.
func (f *Formatter) Emissions(value float64) string { return f.Number(value, kpi.EmissionsDecimals) }

// IDES prints the energy intensity.
func (f *Formatter) IDES(value float64) string { return f.Number(value, kpi.IDESDecimals) }

// MBTU prints millions of BTU.
func (f *Formatter) MBTU(value float64) string { return f.Number(value, kpi.MBTUDecimals) }

// Production prints a production total with its unit, or "-" when unknown.
func (f *Formatter) Production(value float64, unit string) string {
	if value <= 0 {
		return "-"
	}
	out := f.Number(value, ProductionDecimals)
	if unit = strings.TrimSpace(unit); unit != "" {
		out += " " + unit
	}
	return out
}

// Count prints an integer.
func (f *Formatter) Count(value int) string { return f.printer.Sprint(number.Decimal(value)) }
