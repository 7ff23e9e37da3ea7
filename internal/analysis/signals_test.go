package analysis

import (
	"math"
	"testing"

	"github.com/pioui/energy-report-service/internal/models"
)

func intPtr(n int) *int { return &n }

func TestDeriveConsumptionsCARWinsOverMonthly(t *testing.T) {
	text := `Consommation Annuelle de Référence (CAR) : 4200 kWh
Ma consommation (kWh) 300 310 320 330 340 350 360 370 380 390 400 150
Détail de ma facture
Conso (kWh) 300
TOTAL`
	period, annual := DeriveConsumptions(text, models.EnergyElectricity, intPtr(61))
	if annual == nil || *annual != 4200 {
		t.Fatalf("expected CAR annual 4200, got %v", annual)
	}
	if period == nil || *period != 300 {
		t.Fatalf("expected period 300, got %v", period)
	}
}

func TestDeriveConsumptionsMonthlySum(t *testing.T) {
	text := "Ma consommation (kWh) 100 200 300 100 200 300 100 200 300 100 200 300"
	_, annual := DeriveConsumptions(text, models.EnergyElectricity, nil)
	if annual == nil || *annual != 2400 {
		t.Fatalf("expected monthly sum 2400, got %v", annual)
	}
}

func TestDeriveConsumptionsMonthlyTooFewFigures(t *testing.T) {
	text := "Ma consommation (kWh) 100 200 300"
	_, annual := DeriveConsumptions(text, models.EnergyElectricity, nil)
	if annual != nil {
		t.Fatalf("expected nil annual for fewer than 6 figures, got %v", *annual)
	}
}

func TestDeriveConsumptionsDetailScoped(t *testing.T) {
	// A kWh line outside the detail block must not be summed in.
	text := `Conso (kWh) 9999
Détail de ma facture
Conso (kWh) 120
Conso (kWh) 180
TOTAL TTC 85,00 €`
	period, _ := DeriveConsumptions(text, models.EnergyElectricity, nil)
	if period == nil || *period != 300 {
		t.Fatalf("expected period 300 from detail block, got %v", period)
	}
}

func TestDeriveConsumptionsM3TimesCoef(t *testing.T) {
	text := `Détail de ma facture
Conso (m3) 100,5
Coefficient de conversion : 11,2
TVA`
	period, _ := DeriveConsumptions(text, models.EnergyGas, nil)
	if period == nil {
		t.Fatal("expected a period figure from m3 conversion")
	}
	want := 100.5 * 11.2
	if math.Abs(*period-want) > 0.001 {
		t.Fatalf("expected %.2f kWh, got %.2f", want, *period)
	}
}

func TestDeriveConsumptionsExtrapolation(t *testing.T) {
	text := `Détail de ma facture
Conso (kWh) 300
TOTAL`
	_, annual := DeriveConsumptions(text, models.EnergyElectricity, intPtr(61))
	if annual == nil {
		t.Fatal("expected an extrapolated annual figure")
	}
	want := 300.0 * 365.0 / 61.0
	if math.Abs(*annual-want) > 0.01 {
		t.Fatalf("expected %.2f, got %.2f", want, *annual)
	}
}

func TestDeriveConsumptionsNothingFound(t *testing.T) {
	period, annual := DeriveConsumptions("facture sans chiffres exploitables", models.EnergyElectricity, nil)
	if period != nil || annual != nil {
		t.Fatalf("expected nil, nil, got %v, %v", period, annual)
	}
}
