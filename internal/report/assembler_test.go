package report

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pioui/energy-report-service/internal/analysis"
	"github.com/pioui/energy-report-service/internal/models"
	"github.com/pioui/energy-report-service/internal/offers"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(n int) *int           { return &n }

func testAssembler(seed int64) *Assembler {
	return NewAssembler(
		offers.NewGeneratorWithRand(rand.New(rand.NewSource(seed))),
		models.AnalysisConfig{},
	)
}

const elecInvoiceText = `Facture d'électricité EDF
PDL 12345678901234 - compteur Linky - 6 kVA
Détail de ma facture
Conso (kWh) 1200
TOTAL TTC 285,40 €`

func elecInvoice() models.ParsedInvoice {
	days := 61
	return models.ParsedInvoice{
		Client: models.ClientInfo{Name: "Jean Dupont", Zipcode: "75002"},
		Period: models.Period{From: "01/01/2024", To: "02/03/2024", Days: &days},
		Energies: []models.EnergyRecord{{
			Type:     models.EnergyElectricity,
			Provider: "EDF",
			Offer:    "Tarif Bleu",
			Option:   "Base",
			TotalKWh: floatPtr(1200),
			TotalTTC: floatPtr(285.40),
		}},
	}
}

func TestBuildAutoSingleElectricity(t *testing.T) {
	a := testAssembler(1)
	payload, err := a.Build(elecInvoice(), elecInvoiceText, Options{Mode: "auto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.ID == "" {
		t.Fatal("expected a report id")
	}
	if payload.Mode != "auto" {
		t.Fatalf("expected mode auto, got %q", payload.Mode)
	}
	if len(payload.Sections) != 1 {
		t.Fatalf("expected one section, got %d", len(payload.Sections))
	}

	sec := payload.Sections[0]
	if sec.Params.Energy != models.EnergyElectricity {
		t.Fatalf("expected electricity section, got %s", sec.Params.Energy)
	}
	if sec.CurrentAnnualTTC == nil {
		t.Fatal("expected an annual baseline from the billed total")
	}
	// Three base offers plus three HP/HC variants.
	if len(sec.Offers) != 6 {
		t.Fatalf("expected 6 offers, got %d", len(sec.Offers))
	}
	if len(sec.Vices) != 6 {
		t.Fatalf("expected 6 cautionary statements, got %d", len(sec.Vices))
	}
	if len(payload.DualOffers) != 0 {
		t.Fatalf("expected no dual packs for a single energy, got %d", len(payload.DualOffers))
	}
	if best := payload.BestSaving(); best == nil || *best <= 0 {
		t.Fatalf("expected a positive best saving, got %v", best)
	}
}

func TestBuildInvalidMode(t *testing.T) {
	a := testAssembler(2)
	_, err := a.Build(elecInvoice(), elecInvoiceText, Options{Mode: "plasma"})
	if !errors.Is(err, analysis.ErrInvalidEnergyMode) {
		t.Fatalf("expected ErrInvalidEnergyMode, got %v", err)
	}
}

func TestBuildStrictMismatch(t *testing.T) {
	a := testAssembler(3)
	gasText := "Relevé gaz naturel - PCE 123 - GRDF - gazpar"
	parsed := models.ParsedInvoice{
		Energies: []models.EnergyRecord{{Type: models.EnergyGas, Provider: "Engie"}},
	}
	_, err := a.Build(parsed, gasText, Options{Mode: "electricite", Strict: true})
	var mismatch *analysis.MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
}

func TestBuildInsufficientDataStillReports(t *testing.T) {
	a := testAssembler(4)
	// Forced electricity on an empty invoice: a stub section with no priced
	// offers but the full cautionary list.
	payload, err := a.Build(models.ParsedInvoice{}, "", Options{Mode: "electricite"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Sections) != 1 {
		t.Fatalf("expected one stub section, got %d", len(payload.Sections))
	}
	sec := payload.Sections[0]
	if len(sec.Offers) != 0 {
		t.Fatalf("expected no offers without consumption data, got %d", len(sec.Offers))
	}
	if len(sec.Vices) != 6 {
		t.Fatalf("expected 6 cautionary statements regardless, got %d", len(sec.Vices))
	}
	if payload.BestSaving() != nil {
		t.Fatal("expected nil best saving without offers")
	}
}

func TestBuildDual(t *testing.T) {
	a := testAssembler(5)
	dualText := `Facture duale
PDL 12345 Enedis - Heures Creuses
PCE 456 GRDF relevé gaz naturel
Détail de ma facture
Conso (kWh) 1200
TOTAL`
	days := 61
	parsed := models.ParsedInvoice{
		Period: models.Period{Days: &days},
		Energies: []models.EnergyRecord{
			{
				Type: models.EnergyElectricity, Provider: "EDF", Option: "Base",
				TotalKWh: floatPtr(1200), TotalTTC: floatPtr(285),
			},
			{
				Type: models.EnergyGas, Provider: "Engie",
				TotalKWh: floatPtr(2400), TotalTTC: floatPtr(260),
			},
		},
	}

	payload, err := a.Build(parsed, dualText, Options{Mode: "dual"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Sections) != 2 {
		t.Fatalf("expected two sections, got %d", len(payload.Sections))
	}
	if payload.Sections[0].Params.Energy != models.EnergyElectricity ||
		payload.Sections[1].Params.Energy != models.EnergyGas {
		t.Fatalf("expected [electricite gaz] sections, got %+v", payload.EnergyNames())
	}
	if len(payload.DualOffers) == 0 {
		t.Fatal("expected dual packs when both energies have offers")
	}
	if len(payload.DualOffers) > 3 {
		t.Fatalf("expected at most 3 packs, got %d", len(payload.DualOffers))
	}
	for _, d := range payload.DualOffers {
		if d.TotalTTC <= 0 {
			t.Fatalf("pack total must be positive: %+v", d)
		}
	}
}

func TestConfidenceMinDefaults(t *testing.T) {
	a := testAssembler(6)
	if got := a.confidenceMin("auto", 0); got != 0.5 {
		t.Fatalf("expected default 0.5 for auto, got %f", got)
	}
	if got := a.confidenceMin("gaz", 0); got != 0.6 {
		t.Fatalf("expected default 0.6 for forced modes, got %f", got)
	}
	if got := a.confidenceMin("auto", 0.8); got != 0.8 {
		t.Fatalf("explicit threshold must win, got %f", got)
	}

	cfg := NewAssembler(offers.NewGenerator(), models.AnalysisConfig{
		ConfidenceMinAuto:   0.3,
		ConfidenceMinForced: 0.7,
	})
	if got := cfg.confidenceMin("auto", 0); got != 0.3 {
		t.Fatalf("configured auto threshold must win, got %f", got)
	}
	if got := cfg.confidenceMin("dual", 0); got != 0.7 {
		t.Fatalf("configured forced threshold must win, got %f", got)
	}
}
