package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pioui/energy-report-service/internal/ai"
	"github.com/pioui/energy-report-service/internal/analysis"
	"github.com/pioui/energy-report-service/internal/auth"
	"github.com/pioui/energy-report-service/internal/db"
	"github.com/pioui/energy-report-service/internal/metrics"
	"github.com/pioui/energy-report-service/internal/models"
	"github.com/pioui/energy-report-service/internal/ocr"
	"github.com/pioui/energy-report-service/internal/offers"
	"github.com/pioui/energy-report-service/internal/report"
	"github.com/pioui/energy-report-service/internal/storage"
)

const (
	MaxUploadSize = 15 * 1024 * 1024 // 15MB
	Version       = "1.2.0"
)

// Handler handles HTTP requests for invoice analysis
type Handler struct {
	config    *models.Config
	assembler *report.Assembler
	text      *ocr.TextExtractor
	prep      *ocr.Preprocessor
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config) *Handler {
	return &Handler{
		config:    config,
		assembler: report.NewAssembler(offers.NewGenerator(), config.Analysis),
		text:      ocr.NewTextExtractor(config.OCR.PdfToTextBin, config.OCR.MinTextChars),
		prep:      ocr.NewPreprocessor(config.OCR.ConvertBin),
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Main endpoint
	router.HandleFunc("/api/process-invoice", h.ProcessInvoice).Methods("POST")

	// Report history
	router.HandleFunc("/api/reports", h.GetReports).Methods("GET")
	router.HandleFunc("/api/report/{id}", h.GetReport).Methods("GET")
	router.HandleFunc("/api/report/{id}", h.DeleteReport).Methods("DELETE")
	router.HandleFunc("/api/report/{id}/files", h.GetReportFiles).Methods("GET")

	// Statistics
	router.HandleFunc("/api/stats", h.GetStats).Methods("GET")

	// Health check and metrics
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Timestamp   string            `json:"timestamp"`
	Uptime      string            `json:"uptime"`
	Memory      MemoryStats       `json:"memory"`
	PdfToText   ServiceStatus     `json:"pdftotext"`
	ImageMagick ServiceStatus     `json:"imageMagick"`
	Database    ServiceStatus     `json:"database"`
	Storage     ServiceStatus     `json:"storage"`
	AI          map[string]string `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	pdftotextStatus := h.checkPdfToText()
	imageMagickStatus := h.checkImageMagick()
	databaseStatus := h.checkDatabase()
	storageStatus := h.checkStorage()

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		PdfToText:   pdftotextStatus,
		ImageMagick: imageMagickStatus,
		Database:    databaseStatus,
		Storage:     storageStatus,
		AI: map[string]string{
			"defaultProvider": h.config.AI.DefaultProvider,
		},
	}

	// With both binaries down there is no usable input path left
	if !pdftotextStatus.Available && !imageMagickStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkPdfToText verifies pdftotext is available
func (h *Handler) checkPdfToText() ServiceStatus {
	bin := h.config.OCR.PdfToTextBin
	if bin == "" {
		bin = "pdftotext"
	}
	cmd := exec.Command(bin, "-v")
	output, err := cmd.CombinedOutput()

	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     "pdftotext not found or not executable",
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkImageMagick verifies ImageMagick is available
func (h *Handler) checkImageMagick() ServiceStatus {
	bin := h.config.OCR.ConvertBin
	if bin == "" {
		bin = "convert"
	}
	cmd := exec.Command(bin, "-version")
	output, err := cmd.CombinedOutput()

	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     "imagemagick not found or not executable",
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkDatabase verifies PostgreSQL connection
func (h *Handler) checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL via PgBouncer",
	}
}

// checkStorage verifies MinIO connection
func (h *Handler) checkStorage() ServiceStatus {
	if storage.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// ProcessInvoice turns an uploaded energy invoice into a savings report
func (h *Handler) ProcessInvoice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	requestStart := time.Now()

	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized: "+err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	// Accept both "file" and "invoice" field names
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("invoice")
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' or 'invoice' field)")
			return
		}
	}
	defer file.Close()

	var fileBuf bytes.Buffer
	if _, err := fileBuf.ReadFrom(file); err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	fileData := fileBuf.Bytes()

	opts := report.Options{
		Mode:   r.FormValue("type"),
		Strict: parseStrict(r.FormValue("strict")),
	}
	if v := r.FormValue("confidenceMin"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.ConfidenceMin = f
		}
	}

	aiProvider := r.FormValue("aiProvider")
	if aiProvider == "" {
		aiProvider = h.config.AI.DefaultProvider
	}
	model := r.FormValue("model")

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	// Step 1: recover the raw text, deciding between text and vision mode
	enhance := r.FormValue("enhance") == "true"
	rawText, imageBase64, err := h.prepareInput(fileData, contentType, enhance)
	if err != nil {
		metrics.InvoicesProcessed.WithLabelValues("none", "extraction_error").Inc()
		h.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// Step 2: AI extraction
	provider, err := h.createProvider(aiProvider, model)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	extractor := ai.NewExtractor(provider)
	parsed, aiDuration, err := extractor.Extract(rawText, imageBase64)
	if err != nil {
		metrics.InvoicesProcessed.WithLabelValues("none", "extraction_error").Inc()
		h.sendJSON(w, http.StatusOK, models.ProcessResponse{
			Success:       false,
			Error:         err.Error(),
			TotalDuration: time.Since(requestStart).Seconds(),
		})
		return
	}
	metrics.ExtractionDuration.Observe(aiDuration)

	// Step 3: assemble the report
	payload, err := h.assembler.Build(*parsed, rawText, opts)
	if err != nil {
		h.handleBuildError(w, err, requestStart)
		return
	}

	// Step 4: render and persist the artifacts
	files := h.storeArtifacts(ctx, claims, payload, parsed, rawText, fileData, contentType)

	totalDuration := time.Since(requestStart).Seconds()
	metrics.ProcessingDuration.Observe(totalDuration)
	metrics.InvoicesProcessed.WithLabelValues(metrics.DecisionLabel(payload.EnergyNames()), "ok").Inc()

	h.sendJSON(w, http.StatusOK, models.ProcessResponse{
		Success:            true,
		Report:             payload,
		Files:              files,
		ExtractionDuration: aiDuration,
		TotalDuration:      totalDuration,
	})
}

// parseStrict reads the strict form field. Strict is the fail-closed default:
// only an explicit "false" opts out of the energy-mismatch rejection.
func parseStrict(v string) bool {
	return v != "false"
}

// prepareInput extracts the text layer from PDFs and falls back to vision
// input (rendered page or original image) when no usable text exists.
func (h *Handler) prepareInput(fileData []byte, contentType string, enhance bool) (string, string, error) {
	isPDF := contentType == "application/pdf" || bytes.HasPrefix(fileData, []byte("%PDF"))

	if isPDF {
		text, _, err := h.text.ExtractText(fileData)
		if err == nil && h.text.Usable(text) {
			return text, "", nil
		}

		// Scanned PDF: rasterize the first page for the vision model
		page, renderErr := h.prep.RenderPDFFirstPage(fileData)
		if renderErr != nil {
			if err != nil {
				return "", "", fmt.Errorf("no text layer (%v) and rasterization failed: %v", err, renderErr)
			}
			return "", "", fmt.Errorf("rasterization failed: %v", renderErr)
		}
		return "", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(page), nil
	}

	// Photographed invoice: vision models read the original color image
	// better than a grayscale-preprocessed one, so enhancement is opt-in
	// for low-quality scans
	if enhance {
		if enhanced, err := h.prep.EnhanceScan(fileData); err == nil {
			fileData = enhanced
		}
	}
	return "", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(fileData), nil
}

// handleBuildError maps assembly errors to HTTP status codes
func (h *Handler) handleBuildError(w http.ResponseWriter, err error, requestStart time.Time) {
	var mismatch *analysis.MismatchError
	switch {
	case errors.Is(err, analysis.ErrInvalidEnergyMode):
		metrics.InvoicesProcessed.WithLabelValues("none", "mode_error").Inc()
		h.sendError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &mismatch):
		metrics.InvoicesProcessed.WithLabelValues("none", "mode_error").Inc()
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":      mismatch.Error(),
			"requested":  mismatch.Requested,
			"detected":   mismatch.Detected,
			"confidence": mismatch.Confidence,
		})
	default:
		metrics.InvoicesProcessed.WithLabelValues("none", "internal_error").Inc()
		h.sendJSON(w, http.StatusOK, models.ProcessResponse{
			Success:       false,
			Error:         err.Error(),
			TotalDuration: time.Since(requestStart).Seconds(),
		})
	}
}

// storeArtifacts renders the PDFs and the workbook, uploads everything to
// MinIO and records the report row. Storage failures degrade to warnings;
// the report itself is still returned to the caller.
func (h *Handler) storeArtifacts(
	ctx context.Context,
	claims *auth.Claims,
	payload *models.ReportPayload,
	parsed *models.ParsedInvoice,
	rawText string,
	fileData []byte,
	contentType string,
) *models.ReportFiles {
	files := &models.ReportFiles{}

	pdfIdentified, err := report.BuildReportPDF(payload, false)
	if err != nil {
		fmt.Printf("Warning: failed to render identified PDF: %v\n", err)
	}
	pdfAnonymized, err := report.BuildReportPDF(payload, true)
	if err != nil {
		fmt.Printf("Warning: failed to render anonymized PDF: %v\n", err)
	}
	xlsxData, err := report.BuildReportXLSX(payload)
	if err != nil {
		fmt.Printf("Warning: failed to render workbook: %v\n", err)
	}

	if storage.Client != nil {
		now := time.Now()
		upload := func(name string, data []byte, ct string) string {
			if len(data) == 0 {
				return ""
			}
			key := storage.ObjectKey(claims.UserID, payload.ID, name, now)
			path, err := storage.UploadArtifact(ctx, key, data, ct)
			if err != nil {
				fmt.Printf("Warning: failed to upload %s: %v\n", name, err)
				return ""
			}
			return path
		}

		files.Source = upload("source"+storage.GetFileExtension(contentType), fileData, contentType)
		files.PDFIdentified = upload("rapport_identifie.pdf", pdfIdentified, "application/pdf")
		files.PDFAnonymized = upload("rapport_anonymise.pdf", pdfAnonymized, "application/pdf")
		files.XLSXComparison = upload("comparatif.xlsx", xlsxData,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}

	if db.Pool != nil {
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			fmt.Printf("Warning: invalid user id in claims: %v\n", err)
			return files
		}
		reportJSON, _ := json.Marshal(payload)

		rep := &db.Report{
			UserID:           userID,
			ReportID:         payload.ID,
			ClientName:       payload.Client.Name,
			EnergyMode:       payload.Mode,
			Energies:         db.EnergiesColumn(payload.EnergyNames()),
			PeriodFrom:       payload.Period.From,
			PeriodTo:         payload.Period.To,
			Confidence:       parsed.Confidence,
			BestSaving:       payload.BestSaving(),
			SourceKey:        files.Source,
			PDFIdentifiedKey: files.PDFIdentified,
			PDFAnonymizedKey: files.PDFAnonymized,
			XLSXKey:          files.XLSXComparison,
			RawText:          rawText,
			ReportJSON:       string(reportJSON),
		}
		if err := db.SaveReport(ctx, rep); err != nil {
			fmt.Printf("Warning: failed to save report to DB: %v\n", err)
		}
	}

	return files
}

// GetReports returns the authenticated user's report history
func (h *Handler) GetReports(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	reports, err := db.GetReports(ctx, userID, 100)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get reports: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"reports": reports,
		"count":   len(reports),
	})
}

// GetReport returns a single report, including the stored report payload
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	rep, err := db.GetReportByID(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("report not found: %v", err))
		return
	}

	var payload json.RawMessage
	if rep.ReportJSON != "" {
		payload = json.RawMessage(rep.ReportJSON)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"report":  rep,
		"payload": payload,
	})
}

// GetReportFiles returns presigned download URLs for the report artifacts
func (h *Handler) GetReportFiles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}
	if storage.Client == nil {
		h.sendError(w, http.StatusServiceUnavailable, "storage not available")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	rep, err := db.GetReportByID(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("report not found: %v", err))
		return
	}

	urls := map[string]string{}
	for name, key := range map[string]string{
		"source":        rep.SourceKey,
		"pdfIdentified": rep.PDFIdentifiedKey,
		"pdfAnonymized": rep.PDFAnonymizedKey,
		"xlsx":          rep.XLSXKey,
	} {
		if key == "" {
			continue
		}
		if url, err := storage.GetPresignedURL(ctx, key); err == nil {
			urls[name] = url
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"files":   urls,
	})
}

// DeleteReport removes a report and its stored artifacts
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	reportID := mux.Vars(r)["id"]

	if storage.Client != nil {
		if rep, err := db.GetReportByID(ctx, userID, reportID); err == nil {
			for _, key := range []string{rep.SourceKey, rep.PDFIdentifiedKey, rep.PDFAnonymizedKey, rep.XLSXKey} {
				if key != "" {
					_ = storage.DeleteArtifact(ctx, key)
				}
			}
		}
	}

	if err := db.DeleteReport(ctx, userID, reportID); err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to delete report")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "report deleted",
	})
}

// GetStats returns monthly statistics
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	stats, err := db.GetMonthlyStats(ctx, userID)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// createProvider creates the appropriate AI provider
func (h *Handler) createProvider(providerName, modelName string) (ai.Provider, error) {
	switch providerName {
	case "openai":
		model := modelName
		if model == "" {
			model = h.config.AI.OpenAI.Model
		}
		return ai.NewOpenAIProvider(
			h.config.AI.OpenAI.APIKey,
			h.config.AI.OpenAI.BaseURL,
			model,
		), nil

	case "gemini":
		model := modelName
		if model == "" {
			model = h.config.AI.Gemini.Model
		}
		return ai.NewGeminiProvider(
			h.config.AI.Gemini.APIKey,
			model,
		), nil

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func (h *Handler) sendJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
