package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"exoserve/dataset"
	"exoserve/db"
	"exoserve/ml"
	"exoserve/monitoring"
	"exoserve/serving"
)

// Handlers bundles the dependencies the API endpoints need. Construct once
// in main and register on the server mux.
type Handlers struct {
	pipeline  *serving.Pipeline
	registry  *serving.Registry
	collector *monitoring.Collector
	hub       *monitoring.Hub
	logger    *zap.SugaredLogger
	audit     bool
}

// NewHandlers creates the handler set. audit enables the SQLite inference
// log (requires db.InitDB to have been called).
func NewHandlers(pipeline *serving.Pipeline, registry *serving.Registry, collector *monitoring.Collector, hub *monitoring.Hub, logger *zap.SugaredLogger, audit bool) *Handlers {
	return &Handlers{
		pipeline:  pipeline,
		registry:  registry,
		collector: collector,
		hub:       hub,
		logger:    logger,
		audit:     audit,
	}
}

// Register mounts all API routes.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/models", h.handleModels)
	mux.HandleFunc("GET /api/inferences", h.handleInferences)
	if h.hub != nil {
		mux.HandleFunc("GET /api/ws/metrics", h.hub.ServeWS)
	}
}

type predictRequest struct {
	DatasetType string          `json:"dataset_type"`
	Data        json.RawMessage `json:"data"`
}

type predictResponse struct {
	Predictions   []int     `json:"predictions"`
	Probabilities []float64 `json:"probabilities"`
	DatasetType   string    `json:"dataset_type"`
	NumSamples    int       `json:"num_samples"`
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "healthy",
		"service":            "Exoplanet Classification API",
		"available_datasets": h.registry.Types(),
	})
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	datasetType := strings.ToLower(strings.TrimSpace(req.DatasetType))
	if datasetType == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing 'dataset_type' field"})
		return
	}
	if len(req.Data) == 0 || string(req.Data) == "null" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing 'data' field"})
		return
	}

	start := time.Now()
	preds, err := h.pipeline.Infer(r.Context(), dataset.Type(datasetType), req.Data)
	duration := time.Since(start)

	h.record(datasetType, len(preds), duration, err)

	if err != nil {
		h.respondError(w, r, datasetType, err)
		return
	}
	respondJSON(w, http.StatusOK, buildPredictResponse(datasetType, preds))
}

func buildPredictResponse(datasetType string, preds []ml.Prediction) predictResponse {
	labels := make([]int, len(preds))
	scores := make([]float64, len(preds))
	for i, p := range preds {
		labels[i] = p.Label
		scores[i] = p.Score
	}
	return predictResponse{
		Predictions:   labels,
		Probabilities: scores,
		DatasetType:   datasetType,
		NumSamples:    len(preds),
	}
}

func (h *Handlers) handleModels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"models": h.registry.Status(),
	})
}

func (h *Handlers) handleInferences(w http.ResponseWriter, r *http.Request) {
	if !h.audit {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "inference audit log is disabled"})
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	records, err := db.RecentInferences(limit)
	if err != nil {
		h.logger.Errorw("failed to read inference log", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read inference log"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"inferences": records,
	})
}

// record updates metrics and the audit log for one predict call. Requests
// rejected for an unknown dataset type are recorded under a single sentinel
// key so garbage types cannot grow the per-type counters without bound.
func (h *Handlers) record(datasetType string, samples int, duration time.Duration, err error) {
	errKind := ""
	status := "ok"
	if err != nil {
		errKind = string(serving.KindOf(err))
		status = "error"
	}
	if errKind == string(serving.KindUnknownDatasetType) {
		datasetType = "unknown"
	}
	h.collector.RecordInference(datasetType, samples, duration, errKind)

	if !h.audit {
		return
	}
	rec := db.InferenceRecord{
		DatasetType: datasetType,
		Samples:     samples,
		DurationMS:  float64(duration.Microseconds()) / 1000,
		Status:      status,
		ErrorKind:   errKind,
	}
	if err := db.SaveInference(rec); err != nil {
		h.logger.Warnw("failed to save inference audit record", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, datasetType string, err error) {
	kind := serving.KindOf(err)
	status := http.StatusInternalServerError
	if kind.ClientFault() {
		status = http.StatusBadRequest
	}

	fields := []interface{}{
		"request_id", GetRequestID(r.Context()),
		"dataset_type", datasetType,
		"kind", kind,
		"error", err,
	}
	if kind.ClientFault() {
		h.logger.Infow("rejected prediction request", fields...)
	} else {
		h.logger.Errorw("prediction failed", fields...)
	}

	respondJSON(w, status, errorResponse{Error: err.Error(), Hint: serving.HintOf(err)})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
