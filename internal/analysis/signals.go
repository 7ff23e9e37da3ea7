package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pioui/energy-report-service/internal/models"
)

var (
	carRe       = regexp.MustCompile(`(?is)Consommation\s+Annuelle\s+de\s+R[ée]f[ée]rence.*?:\s*([\d\s]{1,7})\s*kWh`)
	monthlyRe   = regexp.MustCompile(`(?is)ma\s+consommation\s*\(kWh\)(.*)`)
	smallIntRe  = regexp.MustCompile(`\b(\d{1,5})\b`)
	detailRe    = regexp.MustCompile(`(?is)D[ée]tail\s+de\s+ma\s+facture(.*?)(?:TOTAL|TVA|$)`)
	consoLineRe = regexp.MustCompile(`(?i)Conso\s*\(kWh\)\s*([0-9]{1,6})`)
	m3Re        = regexp.MustCompile(`(?i)Conso\s*\(m3\)\s*([\d.,]+)`)
	coefRe      = regexp.MustCompile(`(?i)Coefficient\s+de\s+conversion[^\n]*?:\s*([\d.,]+)`)
)

// parseCARAnnual reads an explicit "Consommation Annuelle de Référence" figure.
func parseCARAnnual(text string) *float64 {
	m := carRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(m[1]))
	if err != nil {
		return nil
	}
	v := float64(n)
	return &v
}

// parseMonthlySum sums the figures of a "ma consommation (kWh)" block: the
// first 12 when at least a full year is listed, everything when at least 6.
func parseMonthlySum(text string) *float64 {
	m := monthlyRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	nums := smallIntRe.FindAllStringSubmatch(m[1], -1)
	if len(nums) < 6 {
		return nil
	}
	limit := len(nums)
	if limit > 12 {
		limit = 12
	}
	sum := 0
	for _, g := range nums[:limit] {
		n, _ := strconv.Atoi(g[1])
		sum += n
	}
	v := float64(sum)
	return &v
}

// parsePeriodFromDetail sums "Conso (kWh)" line items, scoped to the
// "Détail de ma facture" block when one is present.
func parsePeriodFromDetail(text string) *float64 {
	scope := text
	if m := detailRe.FindStringSubmatch(text); m != nil {
		scope = m[1]
	}
	ms := consoLineRe.FindAllStringSubmatch(scope, -1)
	if len(ms) == 0 {
		return nil
	}
	sum := 0
	for _, g := range ms {
		n, _ := strconv.Atoi(g[1])
		sum += n
	}
	v := float64(sum)
	return &v
}

// parseM3TimesCoef converts cubic-meter readings via the printed conversion
// coefficient when no kWh line item exists (gas invoices).
func parseM3TimesCoef(text string) *float64 {
	m3s := m3Re.FindAllStringSubmatch(text, -1)
	cm := coefRe.FindStringSubmatch(text)
	if len(m3s) == 0 || cm == nil {
		return nil
	}
	coef := parseFloatFR(cm[1])
	if coef == nil || *coef == 0 {
		return nil
	}
	total := 0.0
	for _, g := range m3s {
		if v := parseFloatFR(g[1]); v != nil {
			total += *v
		}
	}
	kwh := total * *coef
	if kwh <= 0 {
		return nil
	}
	return &kwh
}

// DeriveConsumptions pulls (periodKWh, annualKWh) out of the raw invoice
// text. Priority for the annual figure: explicit CAR marker, then the monthly
// block sum, then extrapolation from the period figure. Priority for the
// period figure: the line-item sum, then m3 x conversion coefficient.
// Negative or zero results are discarded and reported as nil, never as zero.
func DeriveConsumptions(rawText string, energy models.EnergyType, periodDays *int) (periodKWh, annualKWh *float64) {
	periodKWh = parsePeriodFromDetail(rawText)
	if isZeroOrNil(periodKWh) {
		if alt := parseM3TimesCoef(rawText); !isZeroOrNil(alt) {
			periodKWh = alt
		}
	}

	annualKWh = parseCARAnnual(rawText)
	if isZeroOrNil(annualKWh) {
		annualKWh = parseMonthlySum(rawText)
	}
	if isZeroOrNil(annualKWh) && !isZeroOrNil(periodKWh) && periodDays != nil && *periodDays > 0 {
		v := *periodKWh * 365.0 / float64(*periodDays)
		annualKWh = &v
	}

	if periodKWh != nil && *periodKWh < 0 {
		periodKWh = nil
	}
	if annualKWh != nil && *annualKWh <= 0 {
		annualKWh = nil
	}
	return periodKWh, annualKWh
}
