package services

import (
	"fmt"
	"math"

	"github.com/pioui/energy-report-service/internal/models"
)

// Plausible TTC unit-price bands used to flag extraction misreads, €/kWh.
const (
	minPlausibleElecPrice = 0.05
	maxPlausibleElecPrice = 0.60
	minPlausibleGasPrice  = 0.02
	maxPlausibleGasPrice  = 0.30
)

// CoherenceValidator cross-checks the figures extracted from an invoice
// against each other. It never blocks processing: inconsistencies become
// warnings attached to the report section so the reader can judge how much
// to trust the numbers.
type CoherenceValidator struct {
	tolerance float64 // relative tolerance (0.05 = 5%)
}

// NewCoherenceValidator creates a validator with the default 5% tolerance.
func NewCoherenceValidator() *CoherenceValidator {
	return &CoherenceValidator{tolerance: 0.05}
}

// Validate runs all cross-checks for one energy of the invoice.
func (v *CoherenceValidator) Validate(rec *models.EnergyRecord, params models.EnergyParams) []models.ValidationWarning {
	warnings := []models.ValidationWarning{}

	if rec != nil {
		v.validateRegisters(rec, &warnings)
		v.validateUnitPrice(rec, &warnings)
	}
	v.validatePeriod(params, &warnings)
	v.validateAnnual(params, &warnings)

	if params.AnnualAssumedFromLLM {
		warnings = append(warnings, models.ValidationWarning{
			Code:     "annual_from_extraction",
			Severity: "info",
			Message:  "Consommation annuelle reprise telle quelle de l'extraction, sans période pour la recouper",
		})
	}

	return warnings
}

// validateRegisters checks that the HP and HC registers sum to the total.
func (v *CoherenceValidator) validateRegisters(rec *models.EnergyRecord, warnings *[]models.ValidationWarning) {
	if rec.HPKWh == nil || rec.HCKWh == nil || rec.TotalKWh == nil || *rec.TotalKWh <= 0 {
		return
	}

	sum := *rec.HPKWh + *rec.HCKWh
	diff := math.Abs(sum - *rec.TotalKWh)
	if diff > *rec.TotalKWh*v.tolerance {
		*warnings = append(*warnings, models.ValidationWarning{
			Code:     "hp_hc_register_mismatch",
			Severity: "warning",
			Message: fmt.Sprintf("La somme des index HP+HC (%.0f kWh) ne correspond pas au total facturé (%.0f kWh)",
				sum, *rec.TotalKWh),
		})
	}
}

// validateUnitPrice derives the average €/kWh from the billed total and flags
// values outside the plausible band for the energy.
func (v *CoherenceValidator) validateUnitPrice(rec *models.EnergyRecord, warnings *[]models.ValidationWarning) {
	if rec.TotalTTC == nil || *rec.TotalTTC <= 0 || rec.TotalKWh == nil || *rec.TotalKWh <= 0 {
		return
	}

	total := *rec.TotalTTC
	if rec.SubscriptionTTC != nil {
		total -= *rec.SubscriptionTTC
	}
	if total <= 0 {
		return
	}
	unit := total / *rec.TotalKWh

	lo, hi := minPlausibleElecPrice, maxPlausibleElecPrice
	if rec.Type == models.EnergyGas {
		lo, hi = minPlausibleGasPrice, maxPlausibleGasPrice
	}

	if unit < lo || unit > hi {
		*warnings = append(*warnings, models.ValidationWarning{
			Code:     "implausible_unit_price",
			Severity: "warning",
			Message: fmt.Sprintf("Prix moyen déduit de %.3f €/kWh hors de la plage plausible [%.2f - %.2f], montant ou consommation probablement mal lu",
				unit, lo, hi),
		})
	}
}

// validatePeriod flags billing periods too short or too long to extrapolate from.
func (v *CoherenceValidator) validatePeriod(params models.EnergyParams, warnings *[]models.ValidationWarning) {
	if params.PeriodDays == nil {
		return
	}
	days := *params.PeriodDays
	if days < 10 || days > 400 {
		*warnings = append(*warnings, models.ValidationWarning{
			Code:     "implausible_period",
			Severity: "warning",
			Message:  fmt.Sprintf("Période de facturation de %d jours, extrapolation annuelle peu fiable", days),
		})
	}
}

// validateAnnual compares the annual figure against the extrapolated period
// consumption when both are available.
func (v *CoherenceValidator) validateAnnual(params models.EnergyParams, warnings *[]models.ValidationWarning) {
	if params.AnnualKWh == nil || *params.AnnualKWh <= 0 ||
		params.PeriodKWh == nil || *params.PeriodKWh <= 0 ||
		params.PeriodDays == nil || *params.PeriodDays <= 0 {
		return
	}

	extrapolated := *params.PeriodKWh * 365.0 / float64(*params.PeriodDays)
	relDiff := math.Abs(extrapolated-*params.AnnualKWh) / *params.AnnualKWh

	// Seasonal invoices legitimately diverge, so the bar is well above the
	// arithmetic tolerance.
	if relDiff > 0.35 {
		*warnings = append(*warnings, models.ValidationWarning{
			Code:     "annual_vs_period_divergence",
			Severity: "info",
			Message: fmt.Sprintf("Consommation annuelle déclarée (%.0f kWh) éloignée de l'extrapolation de la période (%.0f kWh), facture possiblement saisonnière",
				*params.AnnualKWh, extrapolated),
		})
	}
}
