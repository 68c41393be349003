// Package carbon estimates and reports the CO2 footprint of expenses.
package carbon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Per-trip kg CO2e by transport mode, with the Spanish names the mobile
// client sends.
var tripKg = map[string]decimal.Decimal{
	"car":       decimal.NewFromInt(4),
	"auto":      decimal.NewFromInt(4),
	"taxi":      decimal.NewFromInt(4),
	"uber":      decimal.NewFromInt(4),
	"rideshare": decimal.NewFromInt(4),
	"motorbike": decimal.NewFromInt(2),
	"moto":      decimal.NewFromInt(2),
	"bus":       decimal.NewFromInt(1),
	"colectivo": decimal.NewFromInt(1),
	"train":     decimal.RequireFromString("0.5"),
	"tren":      decimal.RequireFromString("0.5"),
	"subway":    decimal.RequireFromString("0.6"),
	"subte":     decimal.RequireFromString("0.6"),
	"metro":     decimal.RequireFromString("0.6"),
	"plane":     decimal.NewFromInt(50),
	"avion":     decimal.NewFromInt(50),
	"avión":     decimal.NewFromInt(50),
	"bike":      decimal.Zero,
	"bici":      decimal.Zero,
	"walk":      decimal.Zero,
	"caminando": decimal.Zero,
}

// EstimateKg returns the per-trip estimate for transportType. ok is false for
// modes without a known factor.
func EstimateKg(transportType string) (kg decimal.Decimal, ok bool) {
	kg, ok = tripKg[strings.ToLower(strings.TrimSpace(transportType))]
	return kg, ok
}

// Equivalents restates a footprint in everyday units.
type Equivalents struct {
	CarKm          decimal.Decimal `json:"car_km"`
	Trees          decimal.Decimal `json:"trees"`
	KWh            decimal.Decimal `json:"kwh"`
	GasolineLiters decimal.Decimal `json:"gasoline_liters"`
}

var (
	kgPerCarKm       = decimal.RequireFromString("0.2")
	kgPerTreeYear    = decimal.NewFromInt(21)
	kgPerKWh         = decimal.RequireFromString("0.45")
	kgPerGasolineLtr = decimal.RequireFromString("2.31")
)

func EquivalentsOf(totalKg decimal.Decimal) Equivalents {
	return Equivalents{
		CarKm:          totalKg.Div(kgPerCarKm).Round(2),
		Trees:          totalKg.Div(kgPerTreeYear).Round(2),
		KWh:            totalKg.Div(kgPerKWh).Round(2),
		GasolineLiters: totalKg.Div(kgPerGasolineLtr).Round(2),
	}
}
