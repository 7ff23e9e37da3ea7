package analysis

import (
	"math"
	"strings"

	"github.com/pioui/energy-report-service/internal/models"
)

// Keyword weights: hard identifiers (PCE, PDL) dominate soft vocabulary.
var gasWeights = map[string]int{
	"pce": 6, "grdf": 5, "gazpar": 5, "ticgn": 5, "coefficient de conversion": 4,
	"pcs": 3, "gaz naturel": 2, "zone gaz": 2, "classe de consommation": 2,
	"m3": 1, "gaz": 1,
}

var elecWeights = map[string]int{
	"pdl": 6, "enedis": 5, "linky": 4, "kva": 4,
	"heures pleines": 3, "heures creuses": 3, "hp hc": 3,
	"turpe": 3, "electricite": 1, "elec": 1,
}

// Marketing copy that mentions both energies must not fake a dual invoice.
var marketingNoise = []string{
	"electricite et gaz", "elec et gaz",
	"pack duo", "duale", "dual", "offre duo", "pack dual",
}

// DetectEnergySignals scores the raw text for gas and electricity evidence
// and derives a per-energy confidence plus a decision set. Pure function of
// its input: identical text always yields identical signals.
func DetectEnergySignals(rawText string) models.Signals {
	sig := models.Signals{
		Confidence: map[models.EnergyType]float64{
			models.EnergyGas:         0,
			models.EnergyElectricity: 0,
		},
	}
	if rawText == "" {
		return sig
	}

	t := Normalize(rawText)

	score := func(weights map[string]int) int {
		s := 0
		for k, w := range weights {
			s += strings.Count(t, k) * w
		}
		return s
	}
	sg := score(gasWeights)
	se := score(elecWeights)

	noiseHits := 0
	for _, n := range marketingNoise {
		noiseHits += strings.Count(t, n)
	}
	if noiseHits > 0 {
		sg = max(0, sg-2*noiseHits)
		se = max(0, se-2*noiseHits)
	}

	sig.GasScore = sg
	sig.ElecScore = se
	sig.Confidence[models.EnergyGas] = 1.0 - math.Exp(-float64(sg)/8.0)
	sig.Confidence[models.EnergyElectricity] = 1.0 - math.Exp(-float64(se)/8.0)

	hasPCE := strings.Contains(t, "pce")
	hasPDL := strings.Contains(t, "pdl")
	switch {
	case hasPCE && !hasPDL:
		sig.Decision = []models.EnergyType{models.EnergyGas}
	case hasPDL && !hasPCE:
		sig.Decision = []models.EnergyType{models.EnergyElectricity}
	case sg == 0 && se == 0:
		// no evidence at all, leave the decision empty
	case absInt(sg-se) >= 3:
		if sg > se {
			sig.Decision = []models.EnergyType{models.EnergyGas}
		} else {
			sig.Decision = []models.EnergyType{models.EnergyElectricity}
		}
	case max(sg, se) >= 6 && min(sg, se) >= 3:
		sig.Decision = []models.EnergyType{models.EnergyElectricity, models.EnergyGas}
	default:
		// electricity wins an exact tie
		if se >= sg {
			sig.Decision = []models.EnergyType{models.EnergyElectricity}
		} else {
			sig.Decision = []models.EnergyType{models.EnergyGas}
		}
	}
	return sig
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
