package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matevzk/povzetek/internal/domain/generation"
	"github.com/matevzk/povzetek/internal/domain/grounding"
	"github.com/matevzk/povzetek/internal/domain/models"
	"github.com/matevzk/povzetek/internal/domain/summaries"
	apperrors "github.com/matevzk/povzetek/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	generationSvc generation.Service
	groundingSvc  grounding.Service
	summariesSvc  summaries.Service
	modelsSvc     models.Service
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(generationSvc generation.Service, groundingSvc grounding.Service, summariesSvc summaries.Service, modelsSvc models.Service, logger *slog.Logger) *Handler {
	return &Handler{
		generationSvc: generationSvc,
		groundingSvc:  groundingSvc,
		summariesSvc:  summariesSvc,
		modelsSvc:     modelsSvc,
		logger:        logger.With("component", "http.handler"),
	}
}

// Chat streams a summary generation using Server-Sent Events.
func (h *Handler) Chat(c *gin.Context) {
	var req generation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	updates, err := h.generationSvc.Generate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "generation_failed"))
		return
	}

	flusher, ok := h.beginEventStream(c)
	if !ok {
		return
	}
	for update := range updates {
		h.writeEvent(c, flusher, update)
	}
}

// CancelChat forwards a cancellation to the inference upstream.
func (h *Handler) CancelChat(c *gin.Context) {
	var req generation.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	if err := h.generationSvc.Cancel(c.Request.Context(), req); err != nil {
		abortWithError(c, domainError(err, "cancel_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ChatState snapshots the active generation.
func (h *Handler) ChatState(c *gin.Context) {
	c.JSON(http.StatusOK, h.generationSvc.State())
}

// RefineChat reworks the current summary per a user instruction.
func (h *Handler) RefineChat(c *gin.Context) {
	var req generation.RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.generationSvc.Refine(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "refine_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Analyze grounds the summary against the original text.
func (h *Handler) Analyze(c *gin.Context) {
	var req grounding.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.groundingSvc.Analyze(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "analysis_failed"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeLocal grounds with the offline stem matcher only.
func (h *Handler) AnalyzeLocal(c *gin.Context) {
	var req grounding.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, h.groundingSvc.AnalyzeLocal(req))
}

// ListSummaries pages through stored summary records.
func (h *Handler) ListSummaries(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	records, err := h.summariesSvc.List(c.Request.Context(), skip, limit)
	if err != nil {
		abortWithError(c, domainError(err, "summaries_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": records})
}

// CreateSummary stores a new summary record.
func (h *Handler) CreateSummary(c *gin.Context) {
	var record summaries.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	created, err := h.summariesSvc.Create(c.Request.Context(), record)
	if err != nil {
		abortWithError(c, domainError(err, "summaries_failed"))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateSummary replaces the edited output text of a record.
func (h *Handler) UpdateSummary(c *gin.Context) {
	id, ok := summaryID(c)
	if !ok {
		return
	}

	var body struct {
		Output string `json:"output"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	record, err := h.summariesSvc.UpdateOutput(c.Request.Context(), id, body.Output)
	if err != nil {
		abortWithError(c, domainError(err, "summaries_failed"))
		return
	}
	c.JSON(http.StatusOK, record)
}

// SummaryParameters returns the generation parameters of a record.
func (h *Handler) SummaryParameters(c *gin.Context) {
	id, ok := summaryID(c)
	if !ok {
		return
	}

	params, err := h.summariesSvc.Parameters(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, domainError(err, "summaries_failed"))
		return
	}
	c.JSON(http.StatusOK, params)
}

// UpdateSummaryParameters replaces the generation parameters of a record.
func (h *Handler) UpdateSummaryParameters(c *gin.Context) {
	id, ok := summaryID(c)
	if !ok {
		return
	}

	var params summaries.Parameters
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	record, err := h.summariesSvc.UpdateParameters(c.Request.Context(), id, params)
	if err != nil {
		abortWithError(c, domainError(err, "summaries_failed"))
		return
	}
	c.JSON(http.StatusOK, record)
}

// ActivateSummary switches the record being edited and drops cached analyses.
func (h *Handler) ActivateSummary(c *gin.Context) {
	id, ok := summaryID(c)
	if !ok {
		return
	}

	if err := h.summariesSvc.Activate(c.Request.Context(), id); err != nil {
		abortWithError(c, domainError(err, "summaries_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "activated"})
}

type endpointBody struct {
	APIEndpoint string `json:"api_endpoint"`
}

// ListModels proxies the model listing of the inference upstream.
func (h *Handler) ListModels(c *gin.Context) {
	var body endpointBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	infos, err := h.modelsSvc.List(c.Request.Context(), body.APIEndpoint)
	if err != nil {
		abortWithError(c, domainError(err, "models_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": infos})
}

// CurrentModel reports which model the upstream has loaded.
func (h *Handler) CurrentModel(c *gin.Context) {
	var body endpointBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	info, err := h.modelsSvc.Current(c.Request.Context(), body.APIEndpoint)
	if err != nil {
		abortWithError(c, domainError(err, "models_failed"))
		return
	}
	c.JSON(http.StatusOK, info)
}

// SwitchModel streams model-switch progress using Server-Sent Events.
func (h *Handler) SwitchModel(c *gin.Context) {
	var body struct {
		ModelName   string `json:"model_name"`
		APIEndpoint string `json:"api_endpoint,omitempty"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	updates, err := h.modelsSvc.Switch(c.Request.Context(), body.APIEndpoint, body.ModelName)
	if err != nil {
		abortWithError(c, domainError(err, "models_failed"))
		return
	}

	flusher, ok := h.beginEventStream(c)
	if !ok {
		return
	}
	for progress := range updates {
		h.writeEvent(c, flusher, progress)
	}
}

// EndpointSetting returns the persisted completion endpoint.
func (h *Handler) EndpointSetting(c *gin.Context) {
	endpoint, err := h.summariesSvc.Endpoint(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err, "settings_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"api_endpoint": endpoint})
}

// UpdateEndpointSetting persists the chosen completion endpoint.
func (h *Handler) UpdateEndpointSetting(c *gin.Context) {
	var body endpointBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	if err := h.summariesSvc.SetEndpoint(c.Request.Context(), body.APIEndpoint); err != nil {
		abortWithError(c, domainError(err, "settings_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"api_endpoint": body.APIEndpoint})
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) beginEventStream(c *gin.Context) (http.Flusher, bool) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return nil, false
	}
	return flusher, true
}

func (h *Handler) writeEvent(c *gin.Context, flusher http.Flusher, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal event failed", "error", err)
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	flusher.Flush()
}

func summaryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "summary id must be an integer", err))
		return 0, false
	}
	return id, true
}

func domainError(err error, fallbackCode string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "not_found"):
		status = http.StatusNotFound
		code = "not_found"
	case apperrors.IsCode(err, "switch_in_progress"):
		status = http.StatusConflict
		code = "switch_in_progress"
	case apperrors.IsCode(err, "llm_error"):
		status = http.StatusBadGateway
		code = "llm_error"
	case apperrors.IsCode(err, "lemmatizer_error"):
		status = http.StatusBadGateway
		code = "lemmatizer_error"
	case apperrors.IsCode(err, "storage_error"):
		code = "storage_error"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
