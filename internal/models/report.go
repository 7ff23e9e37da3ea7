package models

import "time"

// Signals is the outcome of the keyword classifier over the raw invoice text.
type Signals struct {
	GasScore  int `json:"gasScore"`
	ElecScore int `json:"elecScore"`

	// Confidence per energy, 1 - exp(-score/8), in [0, 1).
	Confidence map[EnergyType]float64 `json:"confidence"`

	// Decision is the set of energies the text supports: empty (undecided),
	// one energy, or both for a dual invoice.
	Decision []EnergyType `json:"decision"`
}

// Has reports whether the decision includes the given energy.
func (s Signals) Has(t EnergyType) bool {
	for _, d := range s.Decision {
		if d == t {
			return true
		}
	}
	return false
}

// EnergyParams is the normalized parameter set for one energy, resolved from
// the extracted record, the raw text and the defaults.
type EnergyParams struct {
	Energy   EnergyType `json:"energy"`
	Provider string     `json:"provider,omitempty"`
	Offer    string     `json:"offer,omitempty"`
	Option   string     `json:"option,omitempty"`
	Zipcode  string     `json:"zipcode"`

	PowerKVA int     `json:"powerKva,omitempty"`
	HPShare  float64 `json:"hpShare,omitempty"`

	PeriodDays     *int     `json:"periodDays,omitempty"`
	PeriodKWh      *float64 `json:"periodKwh,omitempty"`
	AnnualKWh      *float64 `json:"annualKwh,omitempty"`
	TotalTTCPeriod *float64 `json:"totalTtcPeriod,omitempty"`

	// AnnualAssumedFromLLM is set when the extractor's kWh figure had to be
	// treated as an annual reading because the billing period was unknown.
	AnnualAssumedFromLLM bool `json:"annualAssumedFromLlm,omitempty"`
}

// Offer is one synthetic alternative offer, annualized TTC.
type Offer struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
	Option   string `json:"option"`

	SubscriptionTTC float64  `json:"subscriptionTtc"`      // € / year
	PriceTTC        float64  `json:"priceTtc"`             // blended € / kWh
	PriceHPTTC      *float64 `json:"priceHpTtc,omitempty"` // € / kWh
	PriceHCTTC      *float64 `json:"priceHcTtc,omitempty"` // € / kWh

	TotalTTC  float64 `json:"totalTtc"`  // € / year
	SavingTTC float64 `json:"savingTtc"` // € / year vs current
}

// DualOffer bundles one electricity and one gas offer into a pack.
type DualOffer struct {
	Provider  string  `json:"provider"`
	Name      string  `json:"name"`
	TotalTTC  float64 `json:"totalTtc"`
	SavingTTC float64 `json:"savingTtc"`
}

// ValidationWarning is a non-blocking coherence finding on the extracted data.
type ValidationWarning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "info" or "warning"
}

// EnergySection is the per-energy slice of the final report.
type EnergySection struct {
	Params           EnergyParams        `json:"params"`
	CurrentAnnualTTC *float64            `json:"currentAnnualTtc,omitempty"`
	Offers           []Offer             `json:"offers"`
	Vices            []string            `json:"vices"`
	Warnings         []ValidationWarning `json:"warnings,omitempty"`
}

// ReportPayload is the complete savings report for one invoice.
type ReportPayload struct {
	ID     string     `json:"id"`
	Client ClientInfo `json:"client"`
	Period Period     `json:"period"`

	Mode    string  `json:"mode"`
	Signals Signals `json:"signals"`

	Sections   []EnergySection `json:"sections"`
	DualOffers []DualOffer     `json:"dualOffers,omitempty"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// BestSaving returns the largest annual saving across all sections, nil when
// no offer could be priced.
func (r *ReportPayload) BestSaving() *float64 {
	var best *float64
	for _, sec := range r.Sections {
		for _, o := range sec.Offers {
			if best == nil || o.SavingTTC > *best {
				v := o.SavingTTC
				best = &v
			}
		}
	}
	return best
}

// EnergyNames returns the energies covered by the report, in section order.
func (r *ReportPayload) EnergyNames() []string {
	names := make([]string, 0, len(r.Sections))
	for _, sec := range r.Sections {
		names = append(names, string(sec.Params.Energy))
	}
	return names
}
