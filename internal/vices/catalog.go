package vices

import "github.com/pioui/energy-report-service/internal/models"

// Risk statements surfaced to the end user, grouped in a fixed vocabulary so
// the catalog entries and the generic pools share the same strings.
const (
	elecAboveTRV       = "Tarif supérieur au TRV (à vérifier sur la période de facturation)"
	elecTempDiscount   = "Remise temporaire déguisée (prix d'appel limité dans le temps)"
	elecGreenUncert    = "Option verte non certifiée (labels/garanties d'origine floues)"
	elecDoubleSub      = "Double abonnement (compteur secondaire / services additionnels)"
	elecOpaqueIndex    = "Indexation non transparente (référence ambiguë, révision discrétionnaire)"
	genServiceFees     = "Frais de service/gestion additionnels peu transparents"
	gasAboveBenchmark  = "Prix > Prix repère CRE pour profil comparable"
	gasUncappedIndex   = "Tarif indexé sans plafond (exposition forte aux hausses)"
	gasAbusiveFees     = "Frais techniques (mise en service, déplacement) supérieurs aux barèmes GRDF"
	gasMisleadingPromo = "Promotion trompeuse (conditions d’éligibilité restrictives)"
	gasMidTermRevision = "Révision tarifaire possible en cours d’engagement"
	genForcedPayment   = "Mode de paiement imposé / pénalités annexes"
)

// genericPool is the guaranteed fallback set, exactly six per energy.
var genericPool = map[models.EnergyType][]string{
	models.EnergyElectricity: {
		elecAboveTRV, elecTempDiscount, elecGreenUncert,
		elecDoubleSub, elecOpaqueIndex, genServiceFees,
	},
	models.EnergyGas: {
		gasAboveBenchmark, gasUncappedIndex, gasAbusiveFees,
		gasMisleadingPromo, gasMidTermRevision, genForcedPayment,
	},
}

type offerRule struct {
	patterns []string
	vices    []string
}

type providerRules struct {
	providerVices []string
	offers        []offerRule
}

type providerEntry struct {
	key   string
	rules providerRules
}

// catalog is an ordered rule base: the first provider whose key matches wins,
// so more specific keys must come before generic ones.
var catalog = map[models.EnergyType][]providerEntry{
	models.EnergyElectricity: {
		{"edf", providerRules{
			providerVices: []string{elecOpaqueIndex},
			offers: []offerRule{
				{patterns: []string{"Tarif Bleu", "TRV"}},
				{patterns: []string{"Vert", "Vert Electrique", "Vert Électrique", "Vert Fixe"}, vices: []string{elecGreenUncert}},
			},
		}},
		{"engie", providerRules{
			offers: []offerRule{
				{patterns: []string{"Elec Reference", "Référence", "Reference 3 ans", "Tranquillite", "Tranquillité"}, vices: []string{elecAboveTRV}},
				{patterns: []string{"Online", "Happ e"}, vices: []string{elecTempDiscount}},
			},
		}},
		{"totalenergies", providerRules{
			offers: []offerRule{
				{patterns: []string{"Online", "Standard Online", "Heures Creuses Online"}, vices: []string{elecTempDiscount, elecOpaqueIndex}},
				{patterns: []string{"Verte", "Verte Fixe"}, vices: []string{elecGreenUncert, elecAboveTRV}},
			},
		}},
		{"ohm energie", providerRules{
			providerVices: []string{elecTempDiscount, elecOpaqueIndex},
			offers: []offerRule{
				{patterns: []string{"Eco", "Classique", "Petite Conso", "Beaux Jours"}, vices: []string{elecTempDiscount, elecOpaqueIndex}},
			},
		}},
		{"mint", providerRules{
			offers: []offerRule{
				{patterns: []string{"Online", "Smart"}, vices: []string{elecTempDiscount, elecOpaqueIndex}},
				{patterns: []string{"Vert", "Verte", "100% vert"}, vices: []string{elecGreenUncert, elecAboveTRV}},
			},
		}},
		{"ekwateur", providerRules{
			offers: []offerRule{
				{patterns: []string{"Verte", "Bois", "Hydro", "Eolien", "Éolien"}, vices: []string{elecGreenUncert, elecAboveTRV}},
				{patterns: []string{"Indexee", "Indexée"}, vices: []string{elecOpaqueIndex}},
			},
		}},
		{"enercoop", providerRules{
			offers: []offerRule{
				{patterns: []string{"Cooperative", "Coopérative"}, vices: []string{elecAboveTRV}},
			},
		}},
		{"vattenfall", providerRules{offers: []offerRule{{patterns: []string{"Eco", "Fixe"}, vices: []string{elecAboveTRV}}}}},
		{"mega", providerRules{offers: []offerRule{{patterns: []string{"Super", "Online", "Variable"}, vices: []string{elecTempDiscount, elecOpaqueIndex}}}}},
		{"wekiwi", providerRules{offers: []offerRule{{patterns: []string{"Kiwhi", "Online", "Spot"}, vices: []string{elecOpaqueIndex}}}}},
		{"octopus", providerRules{offers: []offerRule{{patterns: []string{"Agile", "Spot", "Heures Creuses dynamiques"}, vices: []string{elecOpaqueIndex}}}}},
		{"plum", providerRules{offers: []offerRule{{patterns: []string{"Plum", "Plüm"}, vices: []string{elecGreenUncert}}}}},
		{"ilek", providerRules{offers: []offerRule{{patterns: []string{"local", "producteur", "eolien", "hydro", "Éolien"}, vices: []string{elecGreenUncert, elecAboveTRV}}}}},
		{"alpiq", providerRules{offers: []offerRule{{patterns: []string{"Eco", "Online"}, vices: []string{elecAboveTRV}}}}},
		{"happ e", providerRules{offers: []offerRule{{patterns: []string{"Happ e"}, vices: []string{elecTempDiscount}}}}},
	},

	models.EnergyGas: {
		{"engie", providerRules{
			offers: []offerRule{
				{patterns: []string{"Reference", "Référence", "Tranquillite", "Tranquillité", "Fixe"}, vices: []string{gasAboveBenchmark}},
				{patterns: []string{"Online", "Happ e"}, vices: []string{gasMisleadingPromo}},
			},
		}},
		{"edf", providerRules{offers: []offerRule{{patterns: []string{"Avantage Gaz", "Fixe"}, vices: []string{gasAboveBenchmark}}}}},
		{"totalenergies", providerRules{
			offers: []offerRule{
				{patterns: []string{"Online", "Standard"}, vices: []string{gasMisleadingPromo}},
				{patterns: []string{"Verte", "Biogaz"}, vices: []string{gasAboveBenchmark}},
			},
		}},
		{"mint", providerRules{offers: []offerRule{{patterns: []string{"Biogaz", "Online"}, vices: []string{gasAboveBenchmark, gasMisleadingPromo}}}}},
		{"ekwateur", providerRules{
			offers: []offerRule{
				{patterns: []string{"Biogaz", "Vert"}, vices: []string{gasAboveBenchmark}},
				{patterns: []string{"Indexee", "Indexée", "Spot"}, vices: []string{gasUncappedIndex}},
			},
		}},
		{"gaz de bordeaux", providerRules{offers: []offerRule{{patterns: []string{"Variable", "Indexee", "Indexée", "Spot"}, vices: []string{gasUncappedIndex}}}}},
		{"wekiwi", providerRules{offers: []offerRule{{patterns: []string{"Spot", "Variable", "Kiwhi"}, vices: []string{gasUncappedIndex}}}}},
		{"dyneff", providerRules{offers: []offerRule{{patterns: []string{"Fixe", "Confort"}, vices: []string{gasAboveBenchmark}}}}},
		{"butagaz", providerRules{offers: []offerRule{{patterns: []string{"Online", "Confort"}, vices: []string{gasMisleadingPromo}}}}},
		{"ohm energie", providerRules{
			providerVices: []string{gasMisleadingPromo, gasUncappedIndex},
			offers: []offerRule{
				{patterns: []string{"Eco", "Classique"}, vices: []string{gasMisleadingPromo, gasUncappedIndex}},
			},
		}},
		{"ilek", providerRules{offers: []offerRule{{patterns: []string{"Biogaz", "Local"}, vices: []string{gasAboveBenchmark}}}}},
		{"mega", providerRules{offers: []offerRule{{patterns: []string{"Online", "Variable"}, vices: []string{gasUncappedIndex}}}}},
		{"alterna", providerRules{offers: []offerRule{{patterns: []string{"Fixe", "Tranquille"}, vices: []string{gasAboveBenchmark}}}}},
		{"plenitude", providerRules{offers: []offerRule{{patterns: []string{"Fixe", "Indexee", "Indexée"}, vices: []string{gasAboveBenchmark, gasUncappedIndex}}}}},
	},
}
