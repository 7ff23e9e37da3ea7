package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pioui/energy-report-service/internal/models"
)

// BuildReportXLSX renders the offer comparison as a workbook: one summary
// sheet plus one sheet per energy with the full offer table.
func BuildReportXLSX(r *models.ReportPayload) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "Synthèse"
	f.SetSheetName("Sheet1", summarySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Rapport d'économies d'énergie")
	_ = f.SetCellValue(summarySheet, "A3", "Généré le")
	_ = f.SetCellValue(summarySheet, "B3", r.GeneratedAt.Format("02/01/2006"))
	_ = f.SetCellValue(summarySheet, "A4", "Client")
	_ = f.SetCellValue(summarySheet, "B4", r.Client.Name)
	_ = f.SetCellValue(summarySheet, "A5", "Mode")
	_ = f.SetCellValue(summarySheet, "B5", r.Mode)
	if r.Period.From != "" {
		_ = f.SetCellValue(summarySheet, "A6", "Période")
		_ = f.SetCellValue(summarySheet, "B6", fmt.Sprintf("du %s au %s", r.Period.From, r.Period.To))
	}
	if best := r.BestSaving(); best != nil {
		_ = f.SetCellValue(summarySheet, "A7", "Meilleure économie annuelle (€)")
		_ = f.SetCellValue(summarySheet, "B7", *best)
	}

	for _, sec := range r.Sections {
		sheet := "Électricité"
		if sec.Params.Energy == models.EnergyGas {
			sheet = "Gaz"
		}
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		writeSectionSheet(f, sheet, sec)
	}

	if len(r.DualOffers) > 0 {
		sheet := "Pack Dual"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, "A1", "Fournisseur")
		_ = f.SetCellValue(sheet, "B1", "Pack")
		_ = f.SetCellValue(sheet, "C1", "Total annuel (€)")
		_ = f.SetCellValue(sheet, "D1", "Économie annuelle (€)")
		for i, p := range r.DualOffers {
			row := i + 2
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.Provider)
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Name)
			_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.TotalTTC)
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.SavingTTC)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSectionSheet(f *excelize.File, sheet string, sec models.EnergySection) {
	_ = f.SetCellValue(sheet, "A1", "Fournisseur actuel")
	_ = f.SetCellValue(sheet, "B1", sec.Params.Provider)
	_ = f.SetCellValue(sheet, "A2", "Offre actuelle")
	_ = f.SetCellValue(sheet, "B2", sec.Params.Offer)
	if sec.Params.AnnualKWh != nil {
		_ = f.SetCellValue(sheet, "A3", "Consommation annuelle (kWh)")
		_ = f.SetCellValue(sheet, "B3", *sec.Params.AnnualKWh)
	}
	if sec.CurrentAnnualTTC != nil {
		_ = f.SetCellValue(sheet, "A4", "Estimation annuelle actuelle (€)")
		_ = f.SetCellValue(sheet, "B4", *sec.CurrentAnnualTTC)
	}

	headers := []string{"Fournisseur", "Offre", "Option", "Abonnement (€/an)",
		"Prix (€/kWh)", "Prix HP (€/kWh)", "Prix HC (€/kWh)", "Total annuel (€)", "Économie (€)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 6)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, o := range sec.Offers {
		row := i + 7
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), o.Provider)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), o.Name)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), o.Option)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), o.SubscriptionTTC)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), o.PriceTTC)
		if o.PriceHPTTC != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), *o.PriceHPTTC)
		}
		if o.PriceHCTTC != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), *o.PriceHCTTC)
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), o.TotalTTC)
		_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", row), o.SavingTTC)
	}

	warnRow := len(sec.Offers) + 9
	if len(sec.Warnings) > 0 {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", warnRow), "Avertissements")
		for i, w := range sec.Warnings {
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", warnRow+1+i), w.Severity)
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", warnRow+1+i), w.Message)
		}
	}
}
