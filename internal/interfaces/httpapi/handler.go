package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
)

const maxRequestBodyBytes = 8 << 20

type Handler struct {
	anomalyService       *usecase.AnomalyService
	ownershipService     *usecase.OwnershipService
	outOfPositionService *usecase.OutOfPositionService
	baselineService      *usecase.BaselineService
	snapshotService      *usecase.SnapshotService
	ingestionService     *usecase.IngestionService
	matchAlertService    *usecase.MatchAlertService
	logger               *logging.Logger
	validator            *validator.Validate
}

func NewHandler(
	anomalyService *usecase.AnomalyService,
	ownershipService *usecase.OwnershipService,
	outOfPositionService *usecase.OutOfPositionService,
	baselineService *usecase.BaselineService,
	snapshotService *usecase.SnapshotService,
	ingestionService *usecase.IngestionService,
	matchAlertService *usecase.MatchAlertService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		anomalyService:       anomalyService,
		ownershipService:     ownershipService,
		outOfPositionService: outOfPositionService,
		baselineService:      baselineService,
		snapshotService:      snapshotService,
		ingestionService:     ingestionService,
		matchAlertService:    matchAlertService,
		logger:               logger,
		validator:            validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads one JSON value from the request body into out. An empty
// body is an error unless allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, out any, allowEmpty bool) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", usecase.ErrInvalidInput, tooLarge.Limit)
		}
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", usecase.ErrInvalidInput, name, raw)
	}
	return v, nil
}
