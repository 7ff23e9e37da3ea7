package analysis

import (
	"strings"
	"time"

	"github.com/pioui/energy-report-service/internal/models"
)

const fallbackZipcode = "75001"

// Flat-rate fallback constants for the annual baseline, used only when the
// invoice carries no usable monetary figure.
const (
	flatRateElecPerKWh = 0.25
	flatSubElecPerYear = 150.0
	flatRateGasPerKWh  = 0.10
	flatSubGasPerYear  = 220.0
)

func parseDateFR(s string) (time.Time, bool) {
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// resolveDays picks the explicit day count when present, otherwise subtracts
// the period dates.
func resolveDays(p models.Period) *int {
	if p.Days != nil && *p.Days > 0 {
		return p.Days
	}
	if p.From == "" || p.To == "" {
		return nil
	}
	d1, ok1 := parseDateFR(p.From)
	d2, ok2 := parseDateFR(p.To)
	if !ok1 || !ok2 || !d1.Before(d2) {
		return nil
	}
	n := int(d2.Sub(d1).Hours() / 24)
	return &n
}

// ParamsFromEnergy resolves the normalized parameter set for one energy
// record. Text-derived consumption always wins over the extractor's figure;
// the extractor value is only trusted as a period reading when the day count
// is known, or assumed annual when it is not (flagged as a diagnostic).
func ParamsFromEnergy(parsed *models.ParsedInvoice, rec *models.EnergyRecord, rawText, defaultZipcode string) models.EnergyParams {
	zip := parsed.Client.Zipcode
	if zip == "" {
		zip = defaultZipcode
	}
	if zip == "" {
		zip = fallbackZipcode
	}

	period := parsed.Period
	if rec.Period != nil {
		period = *rec.Period
	}
	days := resolveDays(period)

	energy := models.EnergyElectricity
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(string(rec.Type))), "gaz") {
		energy = models.EnergyGas
	}

	option := rec.Option
	kva := 0
	if energy == models.EnergyElectricity {
		if option == "" {
			option = "Base"
		}
		kva = 6
		if rec.PowerKVA != nil && *rec.PowerKVA > 0 {
			kva = *rec.PowerKVA
		}
	} else {
		option = ""
	}

	periodTxt, annualTxt := DeriveConsumptions(rawText, energy, days)
	consoLLM := rec.TotalKWh

	periodKWh := periodTxt
	if isZeroOrNil(periodKWh) && consoLLM != nil && *consoLLM > 0 && days != nil {
		periodKWh = consoLLM
	}

	annualKWh := annualTxt
	assumedFromLLM := false
	if isZeroOrNil(annualKWh) {
		switch {
		case !isZeroOrNil(periodKWh) && days != nil && *days > 0:
			v := *periodKWh * 365.0 / float64(*days)
			annualKWh = &v
		case consoLLM != nil && *consoLLM > 0 && days == nil:
			annualKWh = consoLLM
			assumedFromLLM = true
		}
	}

	hpShare := 0.0
	if strings.HasPrefix(strings.ToUpper(option), "HP") {
		hpShare = 0.35
	}

	return models.EnergyParams{
		Energy:   energy,
		Provider: rec.Provider,
		Offer:    rec.Offer,
		Option:   option,
		Zipcode:  zip,

		PowerKVA: kva,
		HPShare:  hpShare,

		PeriodDays:     days,
		PeriodKWh:      periodKWh,
		AnnualKWh:      annualKWh,
		TotalTTCPeriod: rec.TotalTTC,

		AnnualAssumedFromLLM: assumedFromLLM,
	}
}

// CurrentAnnualTotal computes the annualized TTC baseline: the real period
// total extrapolated to 365 days when possible, a flat-rate estimate from the
// annual consumption otherwise, nil when neither path has data.
func CurrentAnnualTotal(p models.EnergyParams) *float64 {
	if p.TotalTTCPeriod != nil && *p.TotalTTCPeriod > 0 && p.PeriodDays != nil && *p.PeriodDays > 0 {
		v := *p.TotalTTCPeriod * 365.0 / float64(*p.PeriodDays)
		return &v
	}
	if p.AnnualKWh != nil {
		rate, sub := flatRateGasPerKWh, flatSubGasPerYear
		if p.Energy == models.EnergyElectricity {
			rate, sub = flatRateElecPerKWh, flatSubElecPerYear
		}
		v := *p.AnnualKWh*rate + sub
		return &v
	}
	return nil
}
