package analysis

import (
	"errors"
	"testing"

	"github.com/pioui/energy-report-service/internal/models"
)

const gasHeavyText = "Relevé de gaz naturel - PCE 12345 - GRDF - compteur gazpar - consommation de gaz"

func TestNormalizeEnergyMode(t *testing.T) {
	cases := map[string]string{
		"":            "auto",
		"auto":        "auto",
		"gaz":         "gaz",
		"GAS":         "gaz",
		"g":           "gaz",
		"electricite": "electricite",
		"Électricité": "electricite",
		"elec":        "electricite",
		" dual ":      "dual",
		"duo":         "dual",
	}
	for in, want := range cases {
		got, err := NormalizeEnergyMode(in)
		if err != nil {
			t.Fatalf("NormalizeEnergyMode(%q): unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("NormalizeEnergyMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeEnergyModeInvalid(t *testing.T) {
	_, err := NormalizeEnergyMode("nucleaire")
	if !errors.Is(err, ErrInvalidEnergyMode) {
		t.Fatalf("expected ErrInvalidEnergyMode, got %v", err)
	}
}

func TestApplyEnergyModeAutoFiltersPhantomEnergy(t *testing.T) {
	parsed := models.ParsedInvoice{
		Energies: []models.EnergyRecord{
			{Type: models.EnergyElectricity, Provider: "edf"},
			{Type: models.EnergyGas, Provider: "engie"},
		},
	}
	out, sig, err := ApplyEnergyMode(parsed, gasHeavyText, "auto", 0.5, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Energies) != 1 || out.Energies[0].Type != models.EnergyGas {
		t.Fatalf("expected only the gas record, got %+v", out.Energies)
	}
	if !sig.Has(models.EnergyGas) {
		t.Fatalf("expected gas in decision, got %v", sig.Decision)
	}
}

func TestApplyEnergyModeAutoSynthesizesStub(t *testing.T) {
	parsed := models.ParsedInvoice{}
	out, _, err := ApplyEnergyMode(parsed, gasHeavyText, "auto", 0.5, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Energies) != 1 || out.Energies[0].Type != models.EnergyGas {
		t.Fatalf("expected a synthesized gas stub, got %+v", out.Energies)
	}
}

func TestApplyEnergyModeDoesNotMutateInput(t *testing.T) {
	parsed := models.ParsedInvoice{
		Energies: []models.EnergyRecord{
			{Type: models.EnergyElectricity},
			{Type: models.EnergyGas},
		},
	}
	_, _, err := ApplyEnergyMode(parsed, gasHeavyText, "auto", 0.5, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Energies) != 2 {
		t.Fatalf("input was mutated: %+v", parsed.Energies)
	}
}

func TestApplyEnergyModeStrictMismatch(t *testing.T) {
	parsed := models.ParsedInvoice{
		Energies: []models.EnergyRecord{{Type: models.EnergyGas, Provider: "engie"}},
	}
	_, _, err := ApplyEnergyMode(parsed, gasHeavyText, "electricite", 0.5, true)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
	if mismatch.Requested != "electricite" || mismatch.Detected != "gaz" {
		t.Fatalf("unexpected mismatch fields: %+v", mismatch)
	}
	if mismatch.Confidence < 0.5 {
		t.Fatalf("expected confidence >= threshold, got %f", mismatch.Confidence)
	}
}

func TestApplyEnergyModeForcedNonStrictKeepsStub(t *testing.T) {
	parsed := models.ParsedInvoice{
		Energies: []models.EnergyRecord{{Type: models.EnergyGas, Provider: "engie"}},
	}
	out, _, err := ApplyEnergyMode(parsed, gasHeavyText, "electricite", 0.5, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Energies) != 1 || out.Energies[0].Type != models.EnergyElectricity {
		t.Fatalf("expected one electricity stub, got %+v", out.Energies)
	}
	if out.Energies[0].Option != "Base" {
		t.Fatalf("expected stub option Base, got %q", out.Energies[0].Option)
	}
}

func TestApplyEnergyModeDualRequiresBothConfidences(t *testing.T) {
	parsed := models.ParsedInvoice{}
	_, _, err := ApplyEnergyMode(parsed, gasHeavyText, "dual", 0.5, false)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError for dual on single-energy text, got %v", err)
	}
	if mismatch.Requested != "dual" {
		t.Fatalf("expected requested dual, got %q", mismatch.Requested)
	}
}

func TestApplyEnergyModeDualSynthesizesBoth(t *testing.T) {
	dualText := "PDL 123 Enedis compteur Linky électricité - PCE 456 GRDF gazpar relevé gaz naturel"
	parsed := models.ParsedInvoice{
		Energies: []models.EnergyRecord{{Type: models.EnergyElectricity, Provider: "edf"}},
	}
	out, _, err := ApplyEnergyMode(parsed, dualText, "dual", 0.5, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Energies) != 2 {
		t.Fatalf("expected two records, got %+v", out.Energies)
	}
	if out.Energies[0].Type != models.EnergyElectricity || out.Energies[1].Type != models.EnergyGas {
		t.Fatalf("expected [electricite gaz], got %+v", out.Energies)
	}
	if out.Energies[0].Provider != "edf" {
		t.Fatalf("expected the extracted record to survive, got %+v", out.Energies[0])
	}
}

func TestEnforceSingleEnergyIfClearPCEOnly(t *testing.T) {
	energies := []models.EnergyRecord{
		{Type: models.EnergyElectricity},
		{Type: models.EnergyGas},
	}
	out := enforceSingleEnergyIfClear(energies, "pce 123 relevé")
	if len(out) != 1 || out[0].Type != models.EnergyGas {
		t.Fatalf("expected gas only, got %+v", out)
	}
}

func TestEnforceSingleEnergyIfClearAmbiguousKeepsBoth(t *testing.T) {
	energies := []models.EnergyRecord{
		{Type: models.EnergyElectricity},
		{Type: models.EnergyGas},
	}
	out := enforceSingleEnergyIfClear(energies, "facture sans indicateur")
	if len(out) != 2 {
		t.Fatalf("expected both records kept, got %+v", out)
	}
}
