package analysis

import (
	"strings"
	"testing"

	"github.com/pioui/energy-report-service/internal/models"
)

func TestDetectEnergySignalsEmptyText(t *testing.T) {
	sig := DetectEnergySignals("")
	if sig.GasScore != 0 || sig.ElecScore != 0 {
		t.Fatalf("expected zero scores, got gas=%d elec=%d", sig.GasScore, sig.ElecScore)
	}
	if len(sig.Decision) != 0 {
		t.Fatalf("expected empty decision, got %v", sig.Decision)
	}
	if sig.Confidence[models.EnergyGas] != 0 || sig.Confidence[models.EnergyElectricity] != 0 {
		t.Fatalf("expected zero confidence, got %v", sig.Confidence)
	}
}

func TestDetectEnergySignalsPDLWinsExclusively(t *testing.T) {
	text := "Facture d'électricité - PDL 12345678901234 - compteur Linky - gaz mentionné en passant"
	sig := DetectEnergySignals(text)
	if len(sig.Decision) != 1 || sig.Decision[0] != models.EnergyElectricity {
		t.Fatalf("expected electricity decision, got %v", sig.Decision)
	}
}

func TestDetectEnergySignalsPCEWinsExclusively(t *testing.T) {
	text := "Relevé gaz naturel - PCE 000111222 - index GRDF"
	sig := DetectEnergySignals(text)
	if len(sig.Decision) != 1 || sig.Decision[0] != models.EnergyGas {
		t.Fatalf("expected gas decision, got %v", sig.Decision)
	}
}

func TestDetectEnergySignalsDual(t *testing.T) {
	// Both identifiers present, both scores above the dual thresholds.
	text := "PDL 12345 Enedis - Heures Creuses - PCE 456 GRDF relevé gaz naturel"
	sig := DetectEnergySignals(text)
	if len(sig.Decision) != 2 {
		t.Fatalf("expected dual decision, got %v (gas=%d elec=%d)", sig.Decision, sig.GasScore, sig.ElecScore)
	}
	if sig.Decision[0] != models.EnergyElectricity || sig.Decision[1] != models.EnergyGas {
		t.Fatalf("expected [electricite gaz] order, got %v", sig.Decision)
	}
}

func TestDetectEnergySignalsElectricityWinsTie(t *testing.T) {
	// One soft gas keyword against one soft electricity keyword: scores 1-1.
	sig := DetectEnergySignals("offre elec et consommation de gaz")
	if sig.GasScore != sig.ElecScore {
		t.Fatalf("expected a tie, got gas=%d elec=%d", sig.GasScore, sig.ElecScore)
	}
	if len(sig.Decision) != 1 || sig.Decision[0] != models.EnergyElectricity {
		t.Fatalf("expected electricity on a tie, got %v", sig.Decision)
	}
}

func TestDetectEnergySignalsMarketingNoisePenalty(t *testing.T) {
	with := DetectEnergySignals("offre pack duo gaz")
	without := DetectEnergySignals("gaz")
	if with.GasScore >= without.GasScore {
		t.Fatalf("expected noise to lower the gas score: with=%d without=%d", with.GasScore, without.GasScore)
	}
	if with.GasScore < 0 {
		t.Fatalf("score must not go negative, got %d", with.GasScore)
	}
}

func TestDetectEnergySignalsDeterministic(t *testing.T) {
	text := "Facture EDF - PDL 112233 - Heures Pleines 1200 kWh - Heures Creuses 800 kWh"
	first := DetectEnergySignals(text)
	for i := 0; i < 10; i++ {
		again := DetectEnergySignals(text)
		if again.GasScore != first.GasScore || again.ElecScore != first.ElecScore {
			t.Fatalf("run %d: scores changed: %+v vs %+v", i, again, first)
		}
		if len(again.Decision) != len(first.Decision) {
			t.Fatalf("run %d: decision changed: %v vs %v", i, again.Decision, first.Decision)
		}
	}
}

func TestDetectEnergySignalsConfidenceBounds(t *testing.T) {
	sig := DetectEnergySignals("pce 123 grdf relevé gaz naturel")
	c := sig.Confidence[models.EnergyGas]
	if c <= 0 || c >= 1 {
		t.Fatalf("confidence must stay in (0,1), got %f", c)
	}

	// A huge score saturates to 1.0 in float64; it must never overshoot.
	sat := DetectEnergySignals(strings.Repeat("pce grdf gazpar ticgn ", 20))
	if got := sat.Confidence[models.EnergyGas]; got > 1 {
		t.Fatalf("confidence must never exceed 1, got %f", got)
	}
}
