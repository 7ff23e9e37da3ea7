package vices

import (
	"strings"
	"testing"

	"github.com/pioui/energy-report-service/internal/models"
)

func TestForAlwaysSixStatements(t *testing.T) {
	cases := []struct {
		energy   models.EnergyType
		provider string
		offer    string
	}{
		{models.EnergyElectricity, "EDF", "Vert Électrique"},
		{models.EnergyElectricity, "Fournisseur Inconnu", ""},
		{models.EnergyElectricity, "", ""},
		{models.EnergyGas, "Engie", "Online"},
		{models.EnergyGas, "", "Offre Mystère"},
	}
	for _, c := range cases {
		got := For(c.energy, c.provider, c.offer, 0)
		if len(got) != DefaultCount {
			t.Fatalf("For(%s, %q, %q): expected %d statements, got %d",
				c.energy, c.provider, c.offer, DefaultCount, len(got))
		}
	}
}

func TestForEnergyPrefix(t *testing.T) {
	for _, v := range For(models.EnergyElectricity, "EDF", "", 0) {
		if !strings.HasPrefix(v, "[ELEC] ") {
			t.Fatalf("expected [ELEC] prefix, got %q", v)
		}
	}
	for _, v := range For("gaz naturel", "Engie", "", 0) {
		if !strings.HasPrefix(v, "[GAZ] ") {
			t.Fatalf("expected [GAZ] prefix for 'gaz naturel', got %q", v)
		}
	}
}

func TestForSpecificsComeFirst(t *testing.T) {
	got := For(models.EnergyGas, "Engie", "Online", 0)
	if got[0] != "[GAZ] "+gasMisleadingPromo {
		t.Fatalf("expected the offer-specific statement first, got %q", got[0])
	}
}

func TestForProviderVicesBeforeOfferVices(t *testing.T) {
	got := For(models.EnergyElectricity, "EDF", "Vert Électrique", 0)
	if got[0] != "[ELEC] "+elecOpaqueIndex {
		t.Fatalf("expected the provider statement first, got %q", got[0])
	}
	if got[1] != "[ELEC] "+elecGreenUncert {
		t.Fatalf("expected the offer statement second, got %q", got[1])
	}
}

func TestForUnknownProviderGenericPool(t *testing.T) {
	got := For(models.EnergyElectricity, "Fournisseur Imaginaire", "Offre X", 0)
	for i, want := range genericPool[models.EnergyElectricity] {
		if got[i] != "[ELEC] "+want {
			t.Fatalf("position %d: expected generic %q, got %q", i, want, got[i])
		}
	}
}

func TestForSubstringProviderMatch(t *testing.T) {
	// "Happ-e by Engie" must match on substring, not fall through to generics.
	got := For(models.EnergyElectricity, "Happ-e by Engie", "Happ-e", 0)
	if got[0] != "[ELEC] "+elecTempDiscount {
		t.Fatalf("expected the Happ-e discount statement first, got %q", got[0])
	}
}

func TestForDeduplicates(t *testing.T) {
	got := For(models.EnergyGas, "OHM Énergie", "Eco", 0)
	seen := make(map[string]bool)
	for _, v := range got {
		if seen[v] {
			t.Fatalf("duplicate statement %q in %v", v, got)
		}
		seen[v] = true
	}
	if len(got) != DefaultCount {
		t.Fatalf("expected %d after dedup, got %d", DefaultCount, len(got))
	}
}

func TestForCountOverride(t *testing.T) {
	if got := For(models.EnergyElectricity, "", "", 3); len(got) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(got))
	}
	got := For(models.EnergyElectricity, "", "", 8)
	// The generic pool holds six distinct statements, so 8 is not reachable.
	if len(got) != 6 {
		t.Fatalf("expected the pool to cap at 6, got %d", len(got))
	}
}
