package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pioui/energy-report-service/internal/models"
)

// Extractor handles AI-based data extraction from invoice text or page images.
type Extractor struct {
	provider Provider
}

// NewExtractor creates a new AI extractor.
func NewExtractor(provider Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract processes invoice text or a page image and returns structured data.
// Vision mode is used when an image is supplied and no usable text layer exists.
func (e *Extractor) Extract(rawText string, imageBase64 string) (*models.ParsedInvoice, float64, error) {
	startTime := time.Now()

	isVisionMode := imageBase64 != "" && strings.TrimSpace(rawText) == ""

	var prompt string
	if isVisionMode {
		prompt = e.buildPromptVision()
	} else {
		prompt = e.buildPromptText(rawText)
	}

	response, err := e.provider.ExtractData(prompt, imageBase64)
	if err != nil {
		return nil, 0, fmt.Errorf("AI extraction failed: %w", err)
	}

	duration := time.Since(startTime).Seconds()

	parsed, err := e.parseResponse(response)
	if err != nil {
		return nil, duration, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return parsed, duration, nil
}

const extractionSchema = `{
  "type_facture": "electricite" | "gaz" | "dual",
  "client": {"name": "...", "address": "...", "zipcode": "75001"},
  "periode": {"de": "JJ/MM/AAAA", "a": "JJ/MM/AAAA", "jours": nombre ou null},
  "energies": [
    {
      "type": "electricite" | "gaz",
      "fournisseur": "...",
      "offre": "...",
      "option": "Base" | "HP/HC" | null,
      "puissance_kVA": nombre ou null,
      "conso_kwh_total": nombre ou null,
      "conso_hc_kwh": nombre ou null,
      "conso_hp_kwh": nombre ou null,
      "prix_hc_eur_kwh": nombre ou null,
      "prix_hp_eur_kwh": nombre ou null,
      "abonnement_ttc": nombre ou null,
      "total_ttc": nombre ou null
    }
  ]
}`

// buildPromptVision creates the prompt for direct page analysis.
func (e *Extractor) buildPromptVision() string {
	return `Tu es un expert des factures d'énergie françaises (électricité et gaz naturel).
Lis ATTENTIVEMENT l'image de la facture et extrais les données demandées.

## REPÈRES DE LECTURE
- Le FOURNISSEUR est dans l'en-tête (EDF, Engie, TotalEnergies, etc.), pas le gestionnaire de réseau (Enedis, GRDF).
- La PÉRIODE de facturation est souvent notée "du JJ/MM/AAAA au JJ/MM/AAAA".
- PDL = point de livraison électricité ; PCE = point comptage estimation gaz.
- L'option tarifaire électricité est "Base" ou "Heures Pleines / Heures Creuses".
- Une facture peut couvrir les DEUX énergies : dans ce cas remplis une entrée par énergie.

## FORMAT DE SORTIE
Réponds UNIQUEMENT avec un JSON valide (sans markdown, sans commentaire) :
` + extractionSchema + `

## RÈGLES
1. N'invente JAMAIS de valeur : mets null si l'information n'est pas lisible.
2. Les montants sont en euros TTC, les consommations en kWh.
3. "type_facture" vaut "dual" si la facture couvre électricité ET gaz.
4. Le code postal est celui de l'adresse de CONSOMMATION, 5 chiffres.
5. Pour une option HP/HC, remplis conso_hp_kwh et conso_hc_kwh séparément.

ANALYSE L'IMAGE MAINTENANT et renvoie le JSON.`
}

// buildPromptText creates the prompt for extraction from a text layer.
func (e *Extractor) buildPromptText(rawText string) string {
	return `Tu es un expert des factures d'énergie françaises (électricité et gaz naturel).
Extrais les données demandées du texte de facture ci-dessous.

## REPÈRES
- Le FOURNISSEUR est l'émetteur de la facture, pas le gestionnaire de réseau (Enedis, GRDF).
- PDL = point de livraison électricité ; PCE = point comptage estimation gaz.
- L'option tarifaire électricité est "Base" ou "Heures Pleines / Heures Creuses".
- Une facture peut couvrir les DEUX énergies : dans ce cas remplis une entrée par énergie.

## FORMAT DE SORTIE
Réponds UNIQUEMENT avec un JSON valide (sans markdown, sans commentaire) :
` + extractionSchema + `

## RÈGLES
1. N'invente JAMAIS de valeur : mets null si l'information n'apparaît pas dans le texte.
2. Les montants sont en euros TTC, les consommations en kWh.
3. "type_facture" vaut "dual" si la facture couvre électricité ET gaz.
4. Le code postal est celui de l'adresse de CONSOMMATION, 5 chiffres.
5. Les nombres français peuvent contenir des espaces et des virgules ("1 234,56").

Texte de la facture :
` + rawText
}

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	zipcodeRe    = regexp.MustCompile(`\b\d{5}\b`)
	digitsRe     = regexp.MustCompile(`\d+`)
)

type rawEnergy struct {
	Type         string      `json:"type"`
	Fournisseur  string      `json:"fournisseur"`
	Offre        string      `json:"offre"`
	Option       string      `json:"option"`
	PuissanceKVA interface{} `json:"puissance_kVA"`
	ConsoTotal   interface{} `json:"conso_kwh_total"`
	ConsoHC      interface{} `json:"conso_hc_kwh"`
	ConsoHP      interface{} `json:"conso_hp_kwh"`
	PrixHC       interface{} `json:"prix_hc_eur_kwh"`
	PrixHP       interface{} `json:"prix_hp_eur_kwh"`
	Abonnement   interface{} `json:"abonnement_ttc"`
	TotalTTC     interface{} `json:"total_ttc"`
}

type rawExtraction struct {
	TypeFacture string `json:"type_facture"`
	Client      struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Zipcode string `json:"zipcode"`
	} `json:"client"`
	Periode struct {
		De    string      `json:"de"`
		A     string      `json:"a"`
		Jours interface{} `json:"jours"`
	} `json:"periode"`
	Energies []rawEnergy `json:"energies"`
}

// parseResponse converts the model's JSON output into a ParsedInvoice.
func (e *Extractor) parseResponse(response string) (*models.ParsedInvoice, error) {
	// Clean response (remove markdown code blocks if present)
	cleaned := strings.TrimSpace(response)
	backticks := string([]byte{96, 96, 96})
	cleaned = strings.ReplaceAll(cleaned, backticks+"json", "")
	cleaned = strings.ReplaceAll(cleaned, backticks, "")
	cleaned = strings.TrimSpace(cleaned)

	var raw rawExtraction
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		// Some models wrap the object in prose; retry on the outermost braces.
		if m := jsonObjectRe.FindString(cleaned); m != "" {
			if err2 := json.Unmarshal([]byte(m), &raw); err2 != nil {
				return nil, fmt.Errorf("JSON parse error: %w - Response: %s", err2, cleaned)
			}
		} else {
			return nil, fmt.Errorf("JSON parse error: %w - Response: %s", err, cleaned)
		}
	}

	parsed := &models.ParsedInvoice{
		Client: models.ClientInfo{
			Name:    strings.TrimSpace(raw.Client.Name),
			Address: strings.TrimSpace(raw.Client.Address),
			Zipcode: strings.TrimSpace(raw.Client.Zipcode),
		},
		Period: models.Period{
			From: strings.TrimSpace(raw.Periode.De),
			To:   strings.TrimSpace(raw.Periode.A),
		},
		ProcessedAt: time.Now(),
	}

	if days := parseOptInt(raw.Periode.Jours); days != nil && *days > 0 {
		parsed.Period.Days = days
	} else if d := daysBetween(parsed.Period.From, parsed.Period.To); d != nil {
		parsed.Period.Days = d
	}

	// Recover the zipcode from the address when the model left it out.
	if !zipcodeRe.MatchString(parsed.Client.Zipcode) {
		parsed.Client.Zipcode = ""
		if m := zipcodeRe.FindString(parsed.Client.Address); m != "" {
			parsed.Client.Zipcode = m
		}
	}

	for _, re := range raw.Energies {
		rec := models.EnergyRecord{
			Provider: strings.TrimSpace(re.Fournisseur),
			Offer:    strings.TrimSpace(re.Offre),
			Option:   normalizeOption(re.Option),
		}

		switch {
		case strings.HasPrefix(strings.ToLower(strings.TrimSpace(re.Type)), "gaz"):
			rec.Type = models.EnergyGas
		default:
			rec.Type = models.EnergyElectricity
		}

		rec.PowerKVA = parseOptInt(re.PuissanceKVA)
		rec.TotalKWh = parseOptFloat(re.ConsoTotal)
		rec.HCKWh = parseOptFloat(re.ConsoHC)
		rec.HPKWh = parseOptFloat(re.ConsoHP)
		rec.PriceHCTTC = parseOptFloat(re.PrixHC)
		rec.PriceHPTTC = parseOptFloat(re.PrixHP)
		rec.SubscriptionTTC = parseOptFloat(re.Abonnement)
		rec.TotalTTC = parseOptFloat(re.TotalTTC)

		reconcileHPHC(&rec)

		parsed.Energies = append(parsed.Energies, rec)
	}

	parsed.Confidence = calculateConfidence(parsed)
	return parsed, nil
}

// reconcileHPHC fixes the total consumption from the HP and HC registers when
// the total is missing, implausibly large, or disagrees with their sum by more
// than 20 %. Vision models frequently misread the total line but get the two
// register lines right.
func reconcileHPHC(rec *models.EnergyRecord) {
	if rec.HPKWh == nil || rec.HCKWh == nil {
		return
	}
	sum := *rec.HPKWh + *rec.HCKWh
	if sum <= 0 {
		return
	}
	if rec.TotalKWh == nil || *rec.TotalKWh > 20000 {
		rec.TotalKWh = &sum
		return
	}
	if *rec.TotalKWh > 0 {
		relDiff := (sum - *rec.TotalKWh) / *rec.TotalKWh
		if relDiff < 0 {
			relDiff = -relDiff
		}
		if relDiff > 0.2 {
			rec.TotalKWh = &sum
		}
	}
}

// normalizeOption maps the option spellings seen on French invoices to the
// two canonical values.
func normalizeOption(option string) string {
	o := strings.ToLower(strings.TrimSpace(option))
	switch o {
	case "":
		return ""
	case "base", "option base":
		return "Base"
	case "hp/hc", "hc/hp", "hp hc", "heures creuses",
		"heures pleines/creuses", "heures pleines / creuses",
		"heures pleines et creuses", "heures pleines-heures creuses":
		return "HP/HC"
	}
	if strings.Contains(o, "creuse") || strings.Contains(o, "hp") {
		return "HP/HC"
	}
	return strings.TrimSpace(option)
}

// daysBetween returns the day count between two JJ/MM/AAAA dates, nil when
// either date is missing or the order is wrong.
func daysBetween(from, to string) *int {
	if from == "" || to == "" {
		return nil
	}
	d1, err1 := time.Parse("02/01/2006", from)
	d2, err2 := time.Parse("02/01/2006", to)
	if err1 != nil || err2 != nil || !d1.Before(d2) {
		return nil
	}
	days := int(d2.Sub(d1).Hours() / 24)
	return &days
}

// parseOptFloat handles flexible number parsing from interface{}.
// Supports numbers and French-formatted strings ("1 234,56").
func parseOptFloat(v interface{}) *float64 {
	if v == nil {
		return nil
	}

	var d decimal.Decimal
	switch val := v.(type) {
	case float64:
		d = decimal.NewFromFloat(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int64:
		d = decimal.NewFromInt(val)
	case json.Number:
		parsed, err := decimal.NewFromString(string(val))
		if err != nil {
			return nil
		}
		d = parsed
	case string:
		cleaned := strings.NewReplacer(" ", "", " ", "", " ", "", "€", "", ",", ".").Replace(val)
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			return nil
		}
		parsed, err := decimal.NewFromString(cleaned)
		if err != nil {
			return nil
		}
		d = parsed
	default:
		return nil
	}

	f, _ := d.Float64()
	return &f
}

// parseOptInt parses an optional integer, pulling the first digit run out of
// strings like "6 kVA".
func parseOptInt(v interface{}) *int {
	if s, ok := v.(string); ok {
		m := digitsRe.FindString(s)
		if m == "" {
			return nil
		}
		v = json.Number(m)
	}
	f := parseOptFloat(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// calculateConfidence computes a confidence score based on extraction quality.
//
// Score breakdown (max 1.0):
//
//	Critical fields  — 0.15 each (0.60 total):
//	  at least one energy block, provider present, a consumption figure,
//	  a billed total > 0
//	Important fields — 0.05 each (0.20 total):
//	  billing period dates, client name, offer name, tariff option
//	Bonus            — 0.10 each (0.20 total):
//	  valid 5-digit zipcode, HP+HC registers consistent with the total
func calculateConfidence(p *models.ParsedInvoice) float64 {
	var score float64

	if len(p.Energies) == 0 {
		return 0
	}
	score += 0.15

	first := p.Energies[0]
	if first.Provider != "" {
		score += 0.15
	}
	if first.TotalKWh != nil && *first.TotalKWh > 0 {
		score += 0.15
	}
	if first.TotalTTC != nil && *first.TotalTTC > 0 {
		score += 0.15
	}

	if p.Period.From != "" && p.Period.To != "" {
		score += 0.05
	}
	if p.Client.Name != "" {
		score += 0.05
	}
	if first.Offer != "" {
		score += 0.05
	}
	if first.Option != "" {
		score += 0.05
	}

	if zipcodeRe.MatchString(p.Client.Zipcode) {
		score += 0.10
	}

	if first.HPKWh != nil && first.HCKWh != nil && first.TotalKWh != nil && *first.TotalKWh > 0 {
		sum := *first.HPKWh + *first.HCKWh
		relDiff := (sum - *first.TotalKWh) / *first.TotalKWh
		if relDiff < 0 {
			relDiff = -relDiff
		}
		if relDiff <= 0.05 {
			score += 0.10
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
