package vices

import (
	"strings"

	"github.com/pioui/energy-report-service/internal/analysis"
	"github.com/pioui/energy-report-service/internal/models"
)

// DefaultCount is the fixed number of statements per energy section; the
// rendering layer assumes a stable bullet-list length.
const DefaultCount = 6

// For returns exactly n cautionary statements for the given energy, provider
// and offer name. Provider and offer specific rules come first, the generic
// pool fills the rest, deduplicated by statement and tagged with the energy
// prefix. An unknown provider still yields the full generic set.
func For(energy models.EnergyType, provider, offer string, n int) []string {
	if n <= 0 {
		n = DefaultCount
	}
	key := models.EnergyElectricity
	prefix := "[ELEC] "
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(string(energy))), "gaz") {
		key = models.EnergyGas
		prefix = "[GAZ] "
	}

	var specifics []string
	if fNorm := analysis.Normalize(provider); fNorm != "" {
		for _, entry := range catalog[key] {
			pNorm := analysis.Normalize(entry.key)
			if !strings.Contains(fNorm, pNorm) && !strings.Contains(pNorm, fNorm) {
				continue
			}
			specifics = append(specifics, entry.rules.providerVices...)
			for _, rule := range entry.rules.offers {
				if matchAny(offer, rule.patterns) {
					specifics = append(specifics, rule.vices...)
				}
			}
			break
		}
	}

	pool := genericPool[key]

	merged := make([]string, 0, n)
	seen := make(map[string]bool)
	for _, v := range append(append([]string{}, specifics...), pool...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		merged = append(merged, prefix+v)
	}

	// Top up cyclically from the generic pool; with a 6-item pool this only
	// matters for n above the pool size.
	for i := 0; len(merged) < n && len(pool) > 0; i++ {
		candidate := prefix + pool[i%len(pool)]
		if !contains(merged, candidate) {
			merged = append(merged, candidate)
		}
		if i > 4*n {
			break
		}
	}

	if len(merged) > n {
		merged = merged[:n]
	}
	return merged
}

func matchAny(name string, patterns []string) bool {
	nm := analysis.Normalize(name)
	if nm == "" {
		return false
	}
	for _, p := range patterns {
		pn := analysis.Normalize(p)
		if pn != "" && strings.Contains(nm, pn) {
			return true
		}
	}
	return false
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
