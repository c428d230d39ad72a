package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devdocai/piiguard/internal/cache"
	"github.com/devdocai/piiguard/internal/privacy"
	"github.com/devdocai/piiguard/internal/websocket"
)

// detectRequest is the shared request shape for scan endpoints.
type detectRequest struct {
	Text          string   `json:"text"`
	Locales       []string `json:"locales,omitempty"`
	MinConfidence float64  `json:"min_confidence,omitempty"`
}

type detectResponse struct {
	RequestID string          `json:"request_id"`
	HasPII    bool            `json:"has_pii"`
	Matches   []privacy.Match `json:"matches"`
	Counts    map[string]int  `json:"counts"`
	// Warning is advisory only. Detection never blocks the caller; the
	// caller decides whether to proceed, redact, or abort.
	Warning string `json:"warning,omitempty"`
}

type batchDetectRequest struct {
	Documents     []string `json:"documents"`
	Locales       []string `json:"locales,omitempty"`
	MinConfidence float64  `json:"min_confidence,omitempty"`
}

type batchDetectResponse struct {
	RequestID string                `json:"request_id"`
	Results   []*privacy.ScanResult `json:"results"`
}

type checkResponse struct {
	RequestID string                `json:"request_id"`
	Cached    bool                  `json:"cached"`
	Metadata  *privacy.ScanMetadata `json:"metadata"`
}

type redactRequest struct {
	Text          string          `json:"text"`
	Locales       []string        `json:"locales,omitempty"`
	MinConfidence float64         `json:"min_confidence,omitempty"`
	Policy        *privacy.Policy `json:"policy,omitempty"`
}

type redactResponse struct {
	RequestID    string         `json:"request_id"`
	RedactedText string         `json:"redacted_text"`
	Counts       map[string]int `json:"counts"`
}

type classifyRequest struct {
	Categories []string `json:"categories"`
}

type classifyResponse struct {
	Classifications map[string][]privacy.ComplianceTag `json:"classifications"`
}

type patternListResponse struct {
	Locales     []string                   `json:"locales"`
	Categories  []string                   `json:"categories"`
	Recognizers []privacy.RecognizerConfig `json:"recognizers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// detectionDefaults fills in the operator-configured locales and threshold
// for requests that leave them unset, falling back to the library default
// when the config carries no threshold either. Applying this before cache
// keying keeps equivalent requests on one cache entry.
func (s *Server) detectionDefaults(locales []string, minConfidence float64) ([]string, float64) {
	if len(locales) == 0 {
		locales = s.config.Detection.DefaultLocales
	}
	if minConfidence <= 0 {
		minConfidence = s.config.Detection.MinConfidence
	}
	if minConfidence <= 0 {
		minConfidence = privacy.DefaultMinConfidence
	}
	return locales, minConfidence
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var req detectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	req.Locales, req.MinConfidence = s.detectionDefaults(req.Locales, req.MinConfidence)

	start := time.Now()
	result, err := s.detector.Detect(req.Text, req.Locales, req.MinConfidence)
	if err != nil {
		s.writeDetectError(w, requestID, err)
		return
	}

	s.afterScan(r, requestID, req.Text, req.Locales, req.MinConfidence, result, false, time.Since(start))
	writeJSON(w, http.StatusOK, detectResponse{
		RequestID: requestID,
		HasPII:    result.HasPII,
		Matches:   result.Matches,
		Counts:    result.Counts,
		Warning:   scanWarning(result),
	})
}

// scanWarning builds the advisory message for a scan. It names categories
// and counts only, never matched values.
func scanWarning(result *privacy.ScanResult) string {
	if !result.HasPII {
		return ""
	}
	categories := make([]string, 0, len(result.Counts))
	for category := range result.Counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return fmt.Sprintf("document contains %d potential PII match(es) in categories [%s]; review or redact before publishing",
		len(result.Matches), strings.Join(categories, ", "))
}

func (s *Server) handleDetectBatch(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var req batchDetectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "documents must not be empty")
		return
	}
	req.Locales, req.MinConfidence = s.detectionDefaults(req.Locales, req.MinConfidence)

	results, err := s.detector.DetectBatch(r.Context(), req.Documents, req.Locales, req.MinConfidence, s.config.Detection.BatchConcurrency)
	if err != nil {
		s.writeDetectError(w, requestID, err)
		return
	}

	for _, result := range results {
		s.totalScans.Add(1)
		if result.HasPII {
			s.totalDetections.Add(1)
		}
	}
	writeJSON(w, http.StatusOK, batchDetectResponse{RequestID: requestID, Results: results})
}

// handleCheck answers "does this document contain PII" with metadata only.
// Responses carry no matched values, so results are served from and stored
// in the scan cache.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var req detectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	req.Locales, req.MinConfidence = s.detectionDefaults(req.Locales, req.MinConfidence)

	key := cache.Key(req.Text, req.Locales, req.MinConfidence)
	if s.scanCache != nil {
		if meta, err := s.scanCache.Get(r.Context(), key); err != nil {
			s.logger.WithRequestID(requestID).Warn("Cache lookup failed", zap.Error(err))
		} else if meta != nil {
			writeJSON(w, http.StatusOK, checkResponse{RequestID: requestID, Cached: true, Metadata: meta})
			return
		}
	}

	start := time.Now()
	result, err := s.detector.Detect(req.Text, req.Locales, req.MinConfidence)
	if err != nil {
		s.writeDetectError(w, requestID, err)
		return
	}
	meta := result.Metadata()

	if s.scanCache != nil {
		if err := s.scanCache.Set(r.Context(), key, meta); err != nil {
			s.logger.WithRequestID(requestID).Warn("Cache store failed", zap.Error(err))
		}
	}

	s.afterScan(r, requestID, req.Text, req.Locales, req.MinConfidence, result, false, time.Since(start))
	writeJSON(w, http.StatusOK, checkResponse{RequestID: requestID, Cached: false, Metadata: meta})
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var req redactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	req.Locales, req.MinConfidence = s.detectionDefaults(req.Locales, req.MinConfidence)

	policy := s.config.Redaction.Policy()
	if req.Policy != nil {
		policy = *req.Policy
	}

	start := time.Now()
	result, err := s.detector.Detect(req.Text, req.Locales, req.MinConfidence)
	if err != nil {
		s.writeDetectError(w, requestID, err)
		return
	}

	redacted, err := privacy.Redact(req.Text, result, policy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.afterScan(r, requestID, req.Text, req.Locales, req.MinConfidence, result, true, time.Since(start))
	writeJSON(w, http.StatusOK, redactResponse{
		RequestID:    requestID,
		RedactedText: redacted,
		Counts:       result.Counts,
	})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if len(req.Categories) == 0 {
		req.Categories = privacy.Categories()
	}

	classifications := make(map[string][]privacy.ComplianceTag, len(req.Categories))
	for _, category := range req.Categories {
		classifications[category] = privacy.Classify(category)
	}
	writeJSON(w, http.StatusOK, classifyResponse{Classifications: classifications})
}

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	library := s.detector.Library()
	categories, _ := library.CategoriesFor(nil)

	writeJSON(w, http.StatusOK, patternListResponse{
		Locales:     library.Locales(),
		Categories:  categories,
		Recognizers: library.Recognizers(),
	})
}

func (s *Server) handleRegisterPattern(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var rec privacy.RecognizerConfig
	if err := decodeJSON(w, r, &rec); err != nil {
		return
	}

	if err := s.detector.Library().Register(rec); err != nil {
		var cfgErr *privacy.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusUnprocessableEntity, cfgErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "pattern registration failed")
		return
	}

	s.logger.WithRequestID(requestID).Info("Recognizer registered",
		zap.String("recognizer", rec.Name),
		zap.String("category", rec.Category),
		zap.Strings("countries", rec.Countries))

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypePatternUpdate,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: websocket.PatternUpdateEvent{
			Recognizer: rec.Name,
			Category:   rec.Category,
			Countries:  rec.Countries,
			Action:     "registered",
		},
	})
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusNotImplemented, "reporting is not enabled")
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
		since = parsed
	}

	summary, err := s.reports.Summarize(r.Context(), since)
	if err != nil {
		s.logger.Error("Report summary failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to summarize reports")
		return
	}
	totals, err := s.reports.CategoryTotals(r.Context(), since)
	if err != nil {
		s.logger.Error("Category totals failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to summarize reports")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"since":           since,
		"summary":         summary,
		"category_totals": totals,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	categories, _ := s.detector.Library().CategoriesFor(nil)
	info := map[string]interface{}{
		"service":              "piiguard",
		"version":              Version,
		"uptime":               time.Since(s.startTime).String(),
		"total_scans":          s.totalScans.Load(),
		"total_detections":     s.totalDetections.Load(),
		"locales":              s.detector.Library().Locales(),
		"universal_categories": categories,
		"max_document_bytes":   s.detector.MaxDocumentBytes(),
		"websocket_clients":    s.wsHub.GetStats().ActiveConnections,
	}
	if s.scanCache != nil {
		info["cache"] = s.scanCache.Stats()
	}
	writeJSON(w, http.StatusOK, info)
}

// afterScan updates counters and fans the scan metadata out to reporting
// and the event stream. Only the metadata projection leaves the handler.
func (s *Server) afterScan(r *http.Request, requestID, text string, locales []string, minConfidence float64, result *privacy.ScanResult, redacted bool, elapsed time.Duration) {
	s.totalScans.Add(1)
	if result.HasPII {
		s.totalDetections.Add(1)
	}

	meta := result.Metadata()
	s.logger.LogScan(requestID, len(text), locales, meta.Counts)

	if s.reports != nil {
		if err := s.reports.Record(r.Context(), requestID, len(text), meta); err != nil {
			s.logger.WithRequestID(requestID).Warn("Failed to record scan report", zap.Error(err))
		}
	}

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeScan,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: websocket.ScanEvent{
			RequestID:     requestID,
			DocumentBytes: len(text),
			Locales:       locales,
			Metadata:      meta,
			Redacted:      redacted,
			ProcessingMS:  float64(elapsed.Microseconds()) / 1000.0,
		},
	})
}

// writeDetectError maps detection errors onto HTTP statuses. The response
// never echoes document content; the error types only carry sizes and
// identifiers.
func (s *Server) writeDetectError(w http.ResponseWriter, requestID string, err error) {
	var (
		tooLarge *privacy.ContentTooLargeError
		unknown  *privacy.UnknownLocaleError
		encoding *privacy.EncodingNormalizationError
	)
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, tooLarge.Error())
	case errors.As(err, &unknown):
		writeError(w, http.StatusBadRequest, unknown.Error())
	case errors.As(err, &encoding):
		writeError(w, http.StatusBadRequest, encoding.Error())
	default:
		s.logger.WithRequestID(requestID).Error("Scan failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scan failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
