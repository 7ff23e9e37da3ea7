package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/pioui/energy-report-service/internal/analysis"
	"github.com/pioui/energy-report-service/internal/models"
	"github.com/pioui/energy-report-service/internal/offers"
	"github.com/pioui/energy-report-service/internal/services"
	"github.com/pioui/energy-report-service/internal/vices"
)

// Options control how an invoice is turned into a report.
type Options struct {
	Mode          string  // auto | electricite | gaz | dual
	ConfidenceMin float64 // classifier threshold; 0 picks the configured default
	Strict        bool    // reject forced modes contradicted by the text
}

// Assembler turns an extracted invoice plus its raw text into a complete
// savings report: energy resolution, per-energy parameters, synthetic offers,
// cautionary statements and coherence warnings.
type Assembler struct {
	gen       *offers.Generator
	validator *services.CoherenceValidator
	cfg       models.AnalysisConfig
}

// NewAssembler creates an assembler using the given offer generator and
// analysis settings.
func NewAssembler(gen *offers.Generator, cfg models.AnalysisConfig) *Assembler {
	return &Assembler{
		gen:       gen,
		validator: services.NewCoherenceValidator(),
		cfg:       cfg,
	}
}

func (a *Assembler) confidenceMin(mode string, requested float64) float64 {
	if requested > 0 {
		return requested
	}
	if mode == "auto" {
		if a.cfg.ConfidenceMinAuto > 0 {
			return a.cfg.ConfidenceMinAuto
		}
		return 0.5
	}
	if a.cfg.ConfidenceMinForced > 0 {
		return a.cfg.ConfidenceMinForced
	}
	return 0.6
}

// Build assembles the report. Mode errors (unknown mode, strict mismatch)
// come back as-is so the API layer can map them to status codes.
func (a *Assembler) Build(parsed models.ParsedInvoice, rawText string, opts Options) (*models.ReportPayload, error) {
	mode, err := analysis.NormalizeEnergyMode(opts.Mode)
	if err != nil {
		return nil, err
	}

	confMin := a.confidenceMin(mode, opts.ConfidenceMin)

	filtered, signals, err := analysis.ApplyEnergyMode(parsed, rawText, mode, confMin, opts.Strict)
	if err != nil {
		return nil, err
	}

	payload := &models.ReportPayload{
		ID:          uuid.New().String(),
		Client:      filtered.Client,
		Period:      filtered.Period,
		Mode:        mode,
		Signals:     signals,
		GeneratedAt: time.Now(),
	}

	vicesPerEnergy := a.cfg.VicesPerEnergy
	if vicesPerEnergy <= 0 {
		vicesPerEnergy = vices.DefaultCount
	}

	var elecOffers, gasOffers []models.Offer
	for i := range filtered.Energies {
		rec := &filtered.Energies[i]

		params := analysis.ParamsFromEnergy(&filtered, rec, rawText, a.cfg.DefaultZipcode)
		current := analysis.CurrentAnnualTotal(params)

		sectionOffers := a.gen.BaseOffers(params, current)
		if rec.Type == models.EnergyElectricity {
			sectionOffers = append(sectionOffers, a.gen.HPHCOffers(params, current)...)
		}

		section := models.EnergySection{
			Params:           params,
			CurrentAnnualTTC: current,
			Offers:           sectionOffers,
			Vices:            vices.For(rec.Type, params.Provider, params.Offer, vicesPerEnergy),
			Warnings:         a.validator.Validate(rec, params),
		}
		payload.Sections = append(payload.Sections, section)

		switch rec.Type {
		case models.EnergyElectricity:
			elecOffers = baseOnly(sectionOffers)
		case models.EnergyGas:
			gasOffers = sectionOffers
		}
	}

	if len(elecOffers) > 0 && len(gasOffers) > 0 {
		payload.DualOffers = a.gen.CombineDual(elecOffers, gasOffers)
	}

	return payload, nil
}

// baseOnly keeps the single-rate offers; dual packs pair rank against rank and
// mixing tariff structures would make the pack totals incomparable.
func baseOnly(all []models.Offer) []models.Offer {
	out := make([]models.Offer, 0, len(all))
	for _, o := range all {
		if o.Option != "HP/HC" {
			out = append(out, o)
		}
	}
	return out
}
