package analysis

import (
	"math"
	"strings"

	"github.com/pioui/energy-report-service/internal/models"
)

// NormalizeEnergyMode maps user input to one of auto, gaz, electricite, dual.
// An empty value means auto.
func NormalizeEnergyMode(x string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(x))
	switch m {
	case "":
		return "auto", nil
	case "auto":
		return "auto", nil
	case "gaz", "gas", "g":
		return "gaz", nil
	case "electricite", "électricité", "elec", "e":
		return "electricite", nil
	case "dual", "duale", "duo", "pack":
		return "dual", nil
	}
	return "", ErrInvalidEnergyMode
}

// ApplyEnergyMode reconciles the requested mode against the text evidence and
// returns the invoice with its energy records filtered accordingly. The input
// is not mutated; a fresh record slice is returned on the copy.
//
// auto keeps what the text supports and synthesizes stubs when the extractor
// produced nothing usable. Forced gaz/electricite fails under strict when the
// other energy is confidently detected instead. dual requires confidence on
// both energies and guarantees both records exist.
func ApplyEnergyMode(parsed models.ParsedInvoice, rawText, mode string, confMin float64, strict bool) (models.ParsedInvoice, models.Signals, error) {
	m, err := NormalizeEnergyMode(mode)
	if err != nil {
		return parsed, models.Signals{}, err
	}

	diag := DetectEnergySignals(rawText)
	cg := diag.Confidence[models.EnergyGas]
	ce := diag.Confidence[models.EnergyElectricity]

	switch m {
	case "auto":
		if len(diag.Decision) == 0 {
			parsed.Energies = enforceSingleEnergyIfClear(parsed.Energies, rawText)
			return parsed, diag, nil
		}
		parsed.Energies = filterEnergies(parsed.Energies, diag.Decision...)
		if len(parsed.Energies) == 0 {
			for _, d := range diag.Decision {
				parsed.Energies = ensureStub(parsed.Energies, d)
			}
		}
		return parsed, diag, nil

	case "gaz", "electricite":
		want := models.EnergyGas
		other := models.EnergyElectricity
		if m == "electricite" {
			want, other = other, want
		}
		if strict && diag.Confidence[other] >= confMin && diag.Has(other) && !diag.Has(want) {
			return parsed, diag, &MismatchError{
				Requested:  m,
				Detected:   string(other),
				Confidence: diag.Confidence[other],
			}
		}
		parsed.Energies = filterEnergies(parsed.Energies, want)
		parsed.Energies = ensureStub(parsed.Energies, want)
		return parsed, diag, nil

	default: // dual
		if cg >= confMin && ce >= confMin {
			parsed.Energies = filterEnergies(parsed.Energies, models.EnergyGas, models.EnergyElectricity)
			parsed.Energies = ensureStub(parsed.Energies, models.EnergyElectricity)
			parsed.Energies = ensureStub(parsed.Energies, models.EnergyGas)
			return parsed, diag, nil
		}
		return parsed, diag, &MismatchError{Requested: "dual", Confidence: math.Min(cg, ce)}
	}
}

// filterEnergies keeps only the records whose type matches one of the given
// energies. Extractors sometimes emit variants like "gaz naturel", so the
// match is on prefix.
func filterEnergies(energies []models.EnergyRecord, keep ...models.EnergyType) []models.EnergyRecord {
	var kept []models.EnergyRecord
	for _, e := range energies {
		t := strings.ToLower(strings.TrimSpace(string(e.Type)))
		for _, k := range keep {
			if strings.HasPrefix(t, string(k)) {
				kept = append(kept, e)
				break
			}
		}
	}
	return kept
}

// ensureStub appends an empty record of the given energy when none exists, so
// downstream stages always have something to operate on.
func ensureStub(energies []models.EnergyRecord, energy models.EnergyType) []models.EnergyRecord {
	for _, e := range energies {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(string(e.Type))), string(energy)) {
			return energies
		}
	}
	stub := models.EnergyRecord{Type: energy}
	if energy == models.EnergyElectricity {
		stub.Option = "Base"
	}
	return append(energies, stub)
}

// enforceSingleEnergyIfClear drops the phantom energy when the extractor
// returned both but the text clearly points to one. PDL/PCE tokens decide
// first; otherwise a light keyword score with a margin of 2 must separate
// them, else both records are kept.
func enforceSingleEnergyIfClear(energies []models.EnergyRecord, rawText string) []models.EnergyRecord {
	if len(energies) <= 1 || rawText == "" {
		return energies
	}
	txt := strings.ToLower(rawText)

	hasPDL := strings.Contains(txt, "pdl")
	hasPCE := strings.Contains(txt, "pce")
	if hasPDL && !hasPCE {
		return filterEnergies(energies, models.EnergyElectricity)
	}
	if hasPCE && !hasPDL {
		return filterEnergies(energies, models.EnergyGas)
	}

	scoreE := strings.Count(txt, "électricité") + strings.Count(txt, "electricite") +
		strings.Count(txt, "elec") + strings.Count(txt, "compteur") + strings.Count(txt, "enedis") +
		3*strings.Count(txt, "pdl")
	scoreG := strings.Count(txt, "gaz") + strings.Count(txt, "grdf") + strings.Count(txt, "gaz naturel") +
		3*strings.Count(txt, "pce")

	if absInt(scoreE-scoreG) >= 2 {
		if scoreE > scoreG {
			return filterEnergies(energies, models.EnergyElectricity)
		}
		return filterEnergies(energies, models.EnergyGas)
	}
	return energies
}
