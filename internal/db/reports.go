package db

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Report is the persisted trace of one processed invoice: the assembled
// report as JSON plus the object-storage keys of the rendered artifacts.
type Report struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	ReportID string    `json:"report_id"`

	ClientName string `json:"client_name"`
	EnergyMode string `json:"energy_mode"`
	Energies   string `json:"energies"` // comma-separated, e.g. "electricite,gaz"

	PeriodFrom string `json:"period_from,omitempty"`
	PeriodTo   string `json:"period_to,omitempty"`

	Confidence float64  `json:"confidence"`
	BestSaving *float64 `json:"best_saving,omitempty"`

	SourceKey        string `json:"source_key,omitempty"`
	PDFIdentifiedKey string `json:"pdf_identified_key,omitempty"`
	PDFAnonymizedKey string `json:"pdf_anonymized_key,omitempty"`
	XLSXKey          string `json:"xlsx_key,omitempty"`

	RawText    string `json:"-"`
	ReportJSON string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// SaveReport inserts a report row and fills in its ID and timestamp.
func SaveReport(ctx context.Context, rep *Report) error {
	query := `
		INSERT INTO reports (
			user_id, report_id, client_name, energy_mode, energies,
			period_from, period_to, confidence, best_saving,
			source_key, pdf_identified_key, pdf_anonymized_key, xlsx_key,
			raw_text, report_json
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`

	return Pool.QueryRow(ctx, query,
		rep.UserID, rep.ReportID, rep.ClientName, rep.EnergyMode, rep.Energies,
		rep.PeriodFrom, rep.PeriodTo, rep.Confidence, rep.BestSaving,
		rep.SourceKey, rep.PDFIdentifiedKey, rep.PDFAnonymizedKey, rep.XLSXKey,
		rep.RawText, rep.ReportJSON,
	).Scan(&rep.ID, &rep.CreatedAt)
}

// GetReports returns the most recent reports of a user, newest first.
func GetReports(ctx context.Context, userID uuid.UUID, limit int) ([]Report, error) {
	query := `
		SELECT id, user_id, report_id, COALESCE(client_name, ''), COALESCE(energy_mode, ''),
		       COALESCE(energies, ''), COALESCE(period_from, ''), COALESCE(period_to, ''),
		       COALESCE(confidence, 0), best_saving,
		       COALESCE(source_key, ''), COALESCE(pdf_identified_key, ''),
		       COALESCE(pdf_anonymized_key, ''), COALESCE(xlsx_key, ''), created_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var rep Report
		err := rows.Scan(
			&rep.ID, &rep.UserID, &rep.ReportID, &rep.ClientName, &rep.EnergyMode,
			&rep.Energies, &rep.PeriodFrom, &rep.PeriodTo,
			&rep.Confidence, &rep.BestSaving,
			&rep.SourceKey, &rep.PDFIdentifiedKey, &rep.PDFAnonymizedKey, &rep.XLSXKey,
			&rep.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	return reports, nil
}

// GetReportByID retrieves a single report of a user, including the stored
// report JSON and raw text.
func GetReportByID(ctx context.Context, userID uuid.UUID, reportID string) (*Report, error) {
	query := `
		SELECT id, user_id, report_id, COALESCE(client_name, ''), COALESCE(energy_mode, ''),
		       COALESCE(energies, ''), COALESCE(period_from, ''), COALESCE(period_to, ''),
		       COALESCE(confidence, 0), best_saving,
		       COALESCE(source_key, ''), COALESCE(pdf_identified_key, ''),
		       COALESCE(pdf_anonymized_key, ''), COALESCE(xlsx_key, ''),
		       COALESCE(raw_text, ''), COALESCE(report_json::text, ''), created_at
		FROM reports
		WHERE user_id = $1 AND report_id = $2
	`

	var rep Report
	err := Pool.QueryRow(ctx, query, userID, reportID).Scan(
		&rep.ID, &rep.UserID, &rep.ReportID, &rep.ClientName, &rep.EnergyMode,
		&rep.Energies, &rep.PeriodFrom, &rep.PeriodTo,
		&rep.Confidence, &rep.BestSaving,
		&rep.SourceKey, &rep.PDFIdentifiedKey, &rep.PDFAnonymizedKey, &rep.XLSXKey,
		&rep.RawText, &rep.ReportJSON, &rep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// DeleteReport removes a report row.
func DeleteReport(ctx context.Context, userID uuid.UUID, reportID string) error {
	_, err := Pool.Exec(ctx, `DELETE FROM reports WHERE user_id = $1 AND report_id = $2`, userID, reportID)
	return err
}

// MonthlyStats represents the current month's processing statistics.
type MonthlyStats struct {
	Month         string  `json:"month"`
	TotalReports  int     `json:"total_reports"`
	DualReports   int     `json:"dual_reports"`
	TotalSavings  float64 `json:"total_savings"`
	AverageSaving float64 `json:"average_saving"`
}

// GetMonthlyStats returns statistics for the current month.
func GetMonthlyStats(ctx context.Context, userID uuid.UUID) (*MonthlyStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_reports,
			COUNT(*) FILTER (WHERE energies LIKE '%,%') AS dual_reports,
			COALESCE(SUM(best_saving), 0) AS total_savings,
			COALESCE(AVG(best_saving), 0) AS average_saving
		FROM reports
		WHERE user_id = $1
		  AND DATE_TRUNC('month', created_at) = DATE_TRUNC('month', CURRENT_DATE)
	`

	stats := &MonthlyStats{
		Month: time.Now().Format("2006-01"),
	}

	err := Pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalReports,
		&stats.DualReports,
		&stats.TotalSavings,
		&stats.AverageSaving,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// EnergiesColumn joins section energies into the stored representation.
func EnergiesColumn(names []string) string {
	return strings.Join(names, ",")
}
