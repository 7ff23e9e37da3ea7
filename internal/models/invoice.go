package models

import "time"

// EnergyType identifies the energy carried by an invoice line.
type EnergyType string

const (
	EnergyElectricity EnergyType = "electricite"
	EnergyGas         EnergyType = "gaz"
)

// ClientInfo holds the subscriber identity printed on the invoice.
type ClientInfo struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
}

// Period is the billing period as printed (JJ/MM/AAAA dates).
type Period struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Days *int   `json:"days,omitempty"`
}

// EnergyRecord is one energy block extracted from the invoice. Numeric
// fields are pointers: nil means the value was not printed or not readable,
// which is different from zero.
type EnergyRecord struct {
	Type     EnergyType `json:"type"`
	Provider string     `json:"provider,omitempty"`
	Offer    string     `json:"offer,omitempty"`
	Option   string     `json:"option,omitempty"` // "Base" or "HP/HC"

	// Period of actual consumption for this energy when the invoice prints
	// one per energy block; falls back to the invoice-level period.
	Period *Period `json:"period,omitempty"`

	PowerKVA *int `json:"powerKva,omitempty"`

	TotalKWh *float64 `json:"totalKwh,omitempty"`
	HCKWh    *float64 `json:"hcKwh,omitempty"`
	HPKWh    *float64 `json:"hpKwh,omitempty"`

	PriceHCTTC      *float64 `json:"priceHcTtc,omitempty"` // €/kWh
	PriceHPTTC      *float64 `json:"priceHpTtc,omitempty"` // €/kWh
	SubscriptionTTC *float64 `json:"subscriptionTtc,omitempty"`
	TotalTTC        *float64 `json:"totalTtc,omitempty"`
}

// ParsedInvoice is the structured output of the AI extraction step.
type ParsedInvoice struct {
	Client   ClientInfo     `json:"client"`
	Period   Period         `json:"period"`
	Energies []EnergyRecord `json:"energies"`

	Confidence  float64   `json:"confidence"`
	ProcessedAt time.Time `json:"processedAt"`
}

// EnergyOfType returns the first record of the given energy, or nil.
func (p *ParsedInvoice) EnergyOfType(t EnergyType) *EnergyRecord {
	for i := range p.Energies {
		if p.Energies[i].Type == t {
			return &p.Energies[i]
		}
	}
	return nil
}

// ProcessRequest represents the input for invoice processing.
type ProcessRequest struct {
	FileData []byte `json:"-"`
	Filename string `json:"-"`

	EnergyMode    string  `json:"type"`          // auto | electricite | gaz | dual
	ConfidenceMin float64 `json:"confidenceMin"` // classifier threshold for forced modes
	Strict        bool    `json:"strict"`

	AIProvider string `json:"aiProvider"` // "openai" or "gemini"
	Model      string `json:"model"`
}

// ProcessResponse represents the output of invoice processing.
type ProcessResponse struct {
	Success bool           `json:"success"`
	Report  *ReportPayload `json:"report,omitempty"`
	Error   string         `json:"error,omitempty"`

	Files *ReportFiles `json:"files,omitempty"`

	ExtractionDuration float64 `json:"extractionDuration,omitempty"`
	TotalDuration      float64 `json:"totalDuration"`
}

// ReportFiles are the object-storage keys of the rendered artifacts.
type ReportFiles struct {
	Source         string `json:"source,omitempty"`
	PDFIdentified  string `json:"pdfIdentified,omitempty"`
	PDFAnonymized  string `json:"pdfAnonymized,omitempty"`
	XLSXComparison string `json:"xlsxComparison,omitempty"`
}
