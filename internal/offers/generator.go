package offers

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/pioui/energy-report-service/internal/models"
)

var providersElec = []string{
	"EDF", "Engie", "TotalEnergies", "Vattenfall", "OHM Énergie", "ekWateur", "Mint Énergie",
	"Plüm énergie", "ilek", "Enercoop", "Méga Énergie", "Wekiwi", "Happ-e by Engie", "Alpiq",
	"Octopus Energy",
}

var providersGas = []string{
	"Engie", "EDF", "TotalEnergies", "Plenitude (ex Eni)", "Happ-e by Engie", "ekWateur", "Vattenfall",
	"Mint Énergie", "Butagaz", "ilek", "Gaz de Bordeaux", "OHM Énergie", "Alterna", "Dyneff", "Wekiwi",
}

var offerNames = []string{
	"Éco", "Essentielle", "Online", "Verte Fixe", "Standard", "Smart", "Confort", "Tranquille", "Indexée",
	"Prix Bloqué", "Pack Duo", "Zen",
}

// Discount bands off the current annual baseline, applied to the 1st, 2nd
// and 3rd candidate provider before jitter.
var discounts = []float64{0.12, 0.11, 0.10}

// Generator produces synthetic comparison offers. Values are randomized but
// the structure is deterministic; the random source is injectable so tests
// can pin a seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator backed by a time-seeded source.
func NewGenerator() *Generator {
	return NewGeneratorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGeneratorWithRand returns a generator using the given source.
func NewGeneratorWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) offerName() string {
	return offerNames[g.rng.Intn(len(offerNames))]
}

// chooseProviders picks k providers from the pool of the given energy,
// excluding the invoice's own provider.
func (g *Generator) chooseProviders(energy models.EnergyType, avoid string, k int) []string {
	src := providersElec
	if energy == models.EnergyGas {
		src = providersGas
	}
	pool := make([]string, 0, len(src))
	for _, p := range src {
		if avoid != "" && strings.EqualFold(p, avoid) {
			continue
		}
		pool = append(pool, p)
	}
	g.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > k {
		pool = pool[:k]
	}
	return pool
}

// roundMoney rounds to the nearest 0.5 €.
func roundMoney(x float64) float64 {
	return math.Round(x/0.5) * 0.5
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// BaseOffers generates three single-rate offers targeting 12/11/10 % below
// the current annual baseline, sorted ascending by annual total. A nil
// baseline or unknown annual consumption yields no offers, never an error.
func (g *Generator) BaseOffers(p models.EnergyParams, currentTotal *float64) []models.Offer {
	if currentTotal == nil || p.AnnualKWh == nil || *p.AnnualKWh <= 0 {
		return nil
	}
	conso := *p.AnnualKWh
	providers := g.chooseProviders(p.Energy, p.Provider, 3)

	out := make([]models.Offer, 0, len(providers))
	for i, prov := range providers {
		tgt := *currentTotal * (1.0 - discounts[i])
		tgt *= 1.0 + g.uniform(-0.002, 0.002)

		var share float64
		option := ""
		if p.Energy == models.EnergyElectricity {
			share = g.uniform(0.12, 0.22)
			option = "Base"
		} else {
			share = g.uniform(0.20, 0.32)
		}
		sub := roundMoney(tgt * share)
		price := round4(math.Max(0.01, (tgt-sub)/conso))
		total := sub + price*conso

		out = append(out, models.Offer{
			Provider:        prov,
			Name:            g.offerName(),
			Option:          option,
			SubscriptionTTC: sub,
			PriceTTC:        price,
			TotalTTC:        total,
			SavingTTC:       *currentTotal - total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalTTC < out[j].TotalTTC })
	return out
}

// HPHCOffers generates three peak/off-peak offers for electricity. The HP and
// HC prices straddle the blended price with a random spread weighted by the
// invoice's HP share, so the weighted blend reconstructs the target exactly.
func (g *Generator) HPHCOffers(p models.EnergyParams, currentTotal *float64) []models.Offer {
	if p.Energy != models.EnergyElectricity {
		return nil
	}
	if currentTotal == nil || p.AnnualKWh == nil || *p.AnnualKWh <= 0 {
		return nil
	}
	conso := *p.AnnualKWh
	hpShare := p.HPShare
	if hpShare == 0 {
		hpShare = 0.35
	}
	providers := g.chooseProviders(models.EnergyElectricity, p.Provider, 3)

	out := make([]models.Offer, 0, len(providers))
	for i, prov := range providers {
		tgt := *currentTotal * (1.0 - discounts[i]) * (1.0 + g.uniform(-0.002, 0.002))
		sub := roundMoney(tgt * g.uniform(0.12, 0.22))
		blended := math.Max(0.01, (tgt-sub)/conso)
		delta := g.uniform(0.02, 0.06)
		hp := round4(math.Max(0.01, blended+delta*(1.0-hpShare)))
		hc := round4(math.Max(0.01, blended-delta*hpShare))

		// Reconstruct the blend from the rounded prices so the cost
		// consistency invariant holds on the published figures.
		price := hpShare*hp + (1.0-hpShare)*hc
		total := sub + price*conso

		hpv, hcv := hp, hc
		out = append(out, models.Offer{
			Provider:        prov,
			Name:            g.offerName() + " HP/HC",
			Option:          "HP/HC",
			SubscriptionTTC: sub,
			PriceTTC:        price,
			PriceHPTTC:      &hpv,
			PriceHCTTC:      &hcv,
			TotalTTC:        total,
			SavingTTC:       *currentTotal - total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalTTC < out[j].TotalTTC })
	return out
}
