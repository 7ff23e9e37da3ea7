package offers

import (
	"sort"

	"github.com/pioui/energy-report-service/internal/models"
)

// CombineDual pairs up to three electricity and gas offers positionally into
// dual packs. The pairing is by rank, not by provider; the pack label is a
// random pick between the two paired providers. This is an illustrative
// bundle, not a real combined-tariff lookup.
func (g *Generator) CombineDual(elec, gas []models.Offer) []models.DualOffer {
	n := len(elec)
	if len(gas) < n {
		n = len(gas)
	}
	if n > 3 {
		n = 3
	}
	out := make([]models.DualOffer, 0, n)
	for i := 0; i < n; i++ {
		provider := elec[i].Provider
		if g.rng.Intn(2) == 1 {
			provider = gas[i].Provider
		}
		out = append(out, models.DualOffer{
			Provider:  provider,
			Name:      elec[i].Name + " + " + gas[i].Name,
			TotalTTC:  elec[i].TotalTTC + gas[i].TotalTTC,
			SavingTTC: elec[i].SavingTTC + gas[i].SavingTTC,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalTTC < out[j].TotalTTC })
	return out
}
