package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
	"github.com/riskibarqy/baseball-stats/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

// Edit payloads keep numbers as json.Number so integers survive exactly until
// the coercion rules run.
var numberDecoder = sonic.Config{UseNumber: true}.Froze()

type Handler struct {
	playerStatService *usecase.PlayerStatService
	ingestionService  *usecase.IngestionService
	summaryService    *usecase.SummaryService
	logger            *logging.Logger
	validator         *validator.Validate
	maxPageSize       int
}

type HandlerConfig struct {
	// MaxPageSize rejects larger page_size values with 400. Zero disables the
	// check.
	MaxPageSize int
}

func NewHandler(
	playerStatService *usecase.PlayerStatService,
	ingestionService *usecase.IngestionService,
	summaryService *usecase.SummaryService,
	logger *logging.Logger,
	cfg HandlerConfig,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		playerStatService: playerStatService,
		ingestionService:  ingestionService,
		summaryService:    summaryService,
		logger:            logger,
		validator:         validator.New(),
		maxPageSize:       max(cfg.MaxPageSize, 0),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	query := r.URL.Query()
	req := playerStatsQueryRequest{Ordering: query.Get("ordering")}
	var err error
	if req.Page, err = parseOptionalInt(query.Get("page"), "page"); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.PageSize, err = parseOptionalInt(query.Get("page_size"), "page_size"); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if h.maxPageSize > 0 && req.PageSize > h.maxPageSize {
		writeError(ctx, w, fmt.Errorf("%w: page_size must not exceed %d", usecase.ErrInvalidInput, h.maxPageSize))
		return
	}

	result, err := h.playerStatService.Query(ctx, usecase.QueryInput{
		Ordering: req.Ordering,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "query player stats failed", "ordering", req.Ordering, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, playerStatsPageDTO{Results: result.Results, Total: result.Total})
}

func (h *Handler) RefreshData(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshData")
	defer span.End()

	result, err := h.ingestionService.Refresh(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh player stats failed", "error", err)
		mapped := mapError(ctx, err)
		writeJSON(ctx, w, mapped.HTTPStatus, refreshDTO{
			Status:       "error",
			PlayersSaved: 0,
			Error:        mapped.Message,
		})
		return
	}

	writeJSON(ctx, w, http.StatusOK, refreshDTO{
		Status:       "success",
		PlayersSaved: result.SavedCount,
		RunID:        result.RunID,
	})
}

func (h *Handler) EditPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EditPlayer")
	defer span.End()

	playerID, ok := parsePlayerID(r.PathValue("playerID"))
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: player id=%q", usecase.ErrNotFound, r.PathValue("playerID")))
		return
	}

	var values map[string]any
	if err := decodeJSONBody(w, r, numberDecoder, &values); err != nil {
		writeError(ctx, w, err)
		return
	}
	if values == nil {
		writeError(ctx, w, fmt.Errorf("%w: payload must be a JSON object", usecase.ErrInvalidInput))
		return
	}

	id, err := h.playerStatService.Edit(ctx, playerID, values)
	if err != nil {
		h.logger.WarnContext(ctx, "edit player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, editDTO{Status: "success", PlayerID: id})
}

func (h *Handler) QueryOpenAI(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QueryOpenAI")
	defer span.End()

	var req promptRequest
	if err := decodeJSONBody(w, r, sonic.ConfigDefault, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.summaryService.Prompt(ctx, req.Prompt)
	if err != nil {
		h.logger.WarnContext(ctx, "text generation prompt failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, promptDTO{Response: out})
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID, ok := parsePlayerID(r.PathValue("playerID"))
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: player id=%q", usecase.ErrNotFound, r.PathValue("playerID")))
		return
	}

	rec, err := h.playerStatService.Get(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, rec)
}

func (h *Handler) SummarizePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SummarizePlayer")
	defer span.End()

	playerID, ok := parsePlayerID(r.PathValue("playerID"))
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: player id=%q", usecase.ErrNotFound, r.PathValue("playerID")))
		return
	}

	out, err := h.summaryService.SummarizePlayer(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "summarize player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, playerSummaryDTO{PlayerID: playerID, Response: out})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, api sonic.API, target any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := api.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseOptionalInt(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func parsePlayerID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type playerStatsQueryRequest struct {
	Ordering string `validate:"max=512"`
	Page     int    `validate:"gte=0"`
	PageSize int    `validate:"gte=0"`
}

type promptRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type playerStatsPageDTO struct {
	Results []playerstat.Record `json:"results"`
	Total   int                 `json:"total"`
}

type refreshDTO struct {
	Status       string `json:"status"`
	PlayersSaved int    `json:"players_saved"`
	RunID        string `json:"run_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

type editDTO struct {
	Status   string `json:"status"`
	PlayerID int64  `json:"player_id"`
}

type promptDTO struct {
	Response string `json:"response"`
}

type playerSummaryDTO struct {
	PlayerID int64  `json:"player_id"`
	Response string `json:"response"`
}
