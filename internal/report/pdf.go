package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/pioui/energy-report-service/internal/models"
)

// BuildReportPDF renders the savings report. The anonymized variant hides the
// subscriber identity and replaces alternative provider names with neutral
// labels, one lettered sequence per comparison table, so the document can be
// shared before a mandate is signed.
func BuildReportPDF(r *models.ReportPayload, anonymized bool) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Rapport d'économies d'énergie"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 5, tr(fmt.Sprintf("Généré le %s", r.GeneratedAt.Format("02/01/2006"))))
	pdf.Ln(5)
	if !anonymized && r.Client.Name != "" {
		pdf.Cell(0, 5, tr(fmt.Sprintf("Client : %s", r.Client.Name)))
		pdf.Ln(5)
	}
	if r.Period.From != "" && r.Period.To != "" {
		pdf.Cell(0, 5, tr(fmt.Sprintf("Période de facturation : du %s au %s", r.Period.From, r.Period.To)))
		pdf.Ln(5)
	}
	pdf.Ln(3)

	for _, sec := range r.Sections {
		renderSection(pdf, tr, sec, anonymized)
	}

	if len(r.DualOffers) > 0 {
		renderDualPacks(pdf, tr, r.DualOffers, anonymized)
	}

	renderMethodology(pdf, tr)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func energyTitle(t models.EnergyType) string {
	if t == models.EnergyGas {
		return "Analyse Gaz"
	}
	return "Analyse Électricité"
}

// anonymousLabel returns "Fournisseur Alternatif A", "B", ... for table row i.
func anonymousLabel(i int) string {
	return fmt.Sprintf("Fournisseur Alternatif %c", 'A'+i)
}

func fmtEuro(x float64) string {
	return fmt.Sprintf("%.2f €", x)
}

func fmtOptKWh(x *float64) string {
	if x == nil {
		return "n.c."
	}
	return fmt.Sprintf("%.0f kWh", *x)
}

func renderSection(pdf *gofpdf.Fpdf, tr func(string) string, sec models.EnergySection, anonymized bool) {
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 9, tr(energyTitle(sec.Params.Energy)))
	pdf.Ln(10)

	renderCurrentOffer(pdf, tr, sec)
	renderComparison(pdf, tr, sec, anonymized)
	renderVices(pdf, tr, sec.Vices)
	renderRecommendation(pdf, tr, sec, anonymized)
	pdf.Ln(4)
}

func renderCurrentOffer(pdf *gofpdf.Fpdf, tr func(string) string, sec models.EnergySection) {
	p := sec.Params

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, tr("Votre offre actuelle"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)

	row := func(label, value string) {
		pdf.CellFormat(60, 6, tr(label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(130, 6, tr(value), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	provider := p.Provider
	if provider == "" {
		provider = "n.c."
	}
	offer := p.Offer
	if offer == "" {
		offer = "n.c."
	}
	row("Fournisseur", provider)
	row("Offre", offer)
	if p.Energy == models.EnergyElectricity {
		row("Puissance souscrite", fmt.Sprintf("%d kVA", p.PowerKVA))
		option := p.Option
		if option == "" {
			option = "Base"
		}
		row("Option tarifaire", option)
	}
	row("Consommation annuelle estimée", fmtOptKWh(p.AnnualKWh))
	if p.TotalTTCPeriod != nil {
		row("Montant TTC de la période", fmtEuro(*p.TotalTTCPeriod))
	}
	if sec.CurrentAnnualTTC != nil {
		row("Estimation annuelle TTC", fmtEuro(*sec.CurrentAnnualTTC))
	}
	pdf.Ln(3)
}

func renderComparison(pdf *gofpdf.Fpdf, tr func(string) string, sec models.EnergySection, anonymized bool) {
	var base, hphc []models.Offer
	for _, o := range sec.Offers {
		if o.Option == "HP/HC" {
			hphc = append(hphc, o)
		} else {
			base = append(base, o)
		}
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, tr("Comparatif des offres alternatives"))
	pdf.Ln(7)

	if len(base) == 0 && len(hphc) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, tr("Données insuffisantes pour générer un comparatif."))
		pdf.Ln(8)
		return
	}

	if len(base) > 0 {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(45, 6, tr("Fournisseur"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, tr("Offre"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, tr("Abonnement/an"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, tr("Prix €/kWh"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, tr("Total/an"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, tr("Économie/an"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for i, o := range base {
			provider := o.Provider
			if anonymized {
				provider = anonymousLabel(i)
			}
			pdf.CellFormat(45, 6, tr(provider), "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, tr(o.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, tr(fmtEuro(o.SubscriptionTTC)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%.4f", o.PriceTTC), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, tr(fmtEuro(o.TotalTTC)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, tr(fmtEuro(o.SavingTTC)), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}

	if len(hphc) > 0 {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(40, 6, tr("Fournisseur"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, tr("Offre"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, tr("Abonnement/an"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, tr("Prix HP"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, tr("Prix HC"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(21, 6, tr("Total/an"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, tr("Économie"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for i, o := range hphc {
			provider := o.Provider
			if anonymized {
				provider = anonymousLabel(i)
			}
			hp, hc := 0.0, 0.0
			if o.PriceHPTTC != nil {
				hp = *o.PriceHPTTC
			}
			if o.PriceHCTTC != nil {
				hc = *o.PriceHCTTC
			}
			pdf.CellFormat(40, 6, tr(provider), "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, tr(o.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 6, tr(fmtEuro(o.SubscriptionTTC)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(22, 6, fmt.Sprintf("%.4f", hp), "1", 0, "R", false, 0, "")
			pdf.CellFormat(22, 6, fmt.Sprintf("%.4f", hc), "1", 0, "R", false, 0, "")
			pdf.CellFormat(21, 6, tr(fmtEuro(o.TotalTTC)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(20, 6, tr(fmtEuro(o.SavingTTC)), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}
}

func renderVices(pdf *gofpdf.Fpdf, tr func(string) string, statements []string) {
	if len(statements) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, tr("Points de vigilance (vices cachés)"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 9)
	for _, s := range statements {
		pdf.MultiCell(190, 5, tr("- "+s), "", "L", false)
	}
	pdf.Ln(2)
}

func renderRecommendation(pdf *gofpdf.Fpdf, tr func(string) string, sec models.EnergySection, anonymized bool) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, tr("Notre recommandation"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)

	var text string
	switch {
	case len(sec.Offers) == 0:
		text = "Données insuffisantes pour établir une recommandation fiable."
	default:
		best := sec.Offers[0]
		for _, o := range sec.Offers[1:] {
			if o.SavingTTC > best.SavingTTC {
				best = o
			}
		}
		if best.SavingTTC > 0 {
			provider := best.Provider
			if anonymized {
				provider = "un fournisseur alternatif"
			}
			text = fmt.Sprintf("Économisez jusqu'à %.0f € par an en passant chez %s avec l'offre %s.",
				best.SavingTTC, provider, best.Name)
		} else {
			text = "Votre offre actuelle semble compétitive par rapport aux alternatives étudiées."
		}
	}

	pdf.MultiCell(190, 6, tr(text), "1", "L", false)
	pdf.Ln(3)
}

func renderDualPacks(pdf *gofpdf.Fpdf, tr func(string) string, packs []models.DualOffer, anonymized bool) {
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 9, tr("Pack Dual (électricité + gaz)"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(45, 6, tr("Fournisseur"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(85, 6, tr("Pack"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, tr("Total/an"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, tr("Économie/an"), "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for i, p := range packs {
		provider := p.Provider
		if anonymized {
			provider = anonymousLabel(i)
		}
		pdf.CellFormat(45, 6, tr(provider), "1", 0, "L", false, 0, "")
		pdf.CellFormat(85, 6, tr(p.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, tr(fmtEuro(p.TotalTTC)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, tr(fmtEuro(p.SavingTTC)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func renderMethodology(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, tr("Méthodologie & fiabilité"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(190, 4, tr(
		"Les données de votre facture sont extraites automatiquement puis recoupées avec le texte du document. "+
			"La consommation annuelle est extrapolée de la période de facturation lorsque la facture ne la mentionne pas. "+
			"Les offres alternatives sont des estimations indicatives construites à partir de votre profil de consommation, "+
			"elles ne constituent pas un devis. Vérifiez les conditions contractuelles avant tout changement de fournisseur."),
		"", "L", false)
}
