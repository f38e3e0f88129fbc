package api

import (
	"context"
	"errors"
	"time"

	models "QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"
	"QuantSignal/internal/usecase"
	xhttp "QuantSignal/pkg/http"
	xlogger "QuantSignal/pkg/logger"
	xutil "QuantSignal/pkg/util"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler exposes the analysis service over HTTP.
type AnalysisEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.AnalysisService
	candles *usecase.CandlesUseCase
	batch   []echo.MiddlewareFunc
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, svc *usecase.AnalysisService, batchMiddleware ...echo.MiddlewareFunc) *AnalysisEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &AnalysisEchoHandler{logger: logger, svc: svc, batch: batchMiddleware}
}

// WithCandles enables GET /api/candles. Without it the route answers 503.
func (h *AnalysisEchoHandler) WithCandles(uc *usecase.CandlesUseCase) *AnalysisEchoHandler {
	h.candles = uc
	return h
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analysis", h.Analyze)
	g.POST("/analysis", h.AnalyzeAsset)
	g.POST("/analysis/batch", h.AnalyzeBatch, h.batch...)
	g.POST("/analysis/rank", h.Rank, h.batch...)
	g.POST("/risk", h.Risk)
	g.GET("/candles", h.Candles)
}

// Analyze handles a snapshot described entirely by query parameters.
func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalysisQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p := req.PricePoint()
	ts, appErr := parseTimeParam("ts", req.TS)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	p.Timestamp = ts

	res, err := h.svc.Analyze(c.Request().Context(), models.AssetInput{Price: p})
	if err != nil {
		return h.fail(c, "analyze", err)
	}
	if !p.Timestamp.IsZero() {
		c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	}
	return xhttp.SuccessResponse(c, res)
}

// AnalyzeAsset handles a full asset input, including series and context.
func (h *AnalysisEchoHandler) AnalyzeAsset(c echo.Context) error {
	req := &models.AssetInput{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Analyze(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "analyze", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) AnalyzeBatch(c echo.Context) error {
	req := &models.BatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	start := time.Now()
	results, err := h.svc.AnalyzeBatch(c.Request().Context(), req.Assets)
	if err != nil {
		return h.fail(c, "analyze_batch", err)
	}
	resp := models.BatchResponse{Items: make([]models.BatchItem, len(results))}
	for i, r := range results {
		item := models.BatchItem{Symbol: r.Symbol, Analysis: r.Analysis}
		if r.Err != nil {
			item.Error = r.Err.Error()
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Items[i] = item
	}
	h.logger.Debug("batch analysed",
		xlogger.Int("assets", len(results)),
		xlogger.Int("failed", resp.Failed),
		xlogger.Duration("elapsed", time.Since(start)))
	return xhttp.SuccessResponse(c, resp)
}

func (h *AnalysisEchoHandler) Rank(c echo.Context) error {
	req := &models.RankRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ranked, err := h.svc.Rank(c.Request().Context(), req.Assets, req.MinConfidence)
	if err != nil {
		return h.fail(c, "rank", err)
	}
	resp := models.RankResponse{Items: make([]models.RankedAnalysis, len(ranked))}
	for i, a := range ranked {
		resp.Items[i] = models.RankedAnalysis{Rank: i + 1, Quality: a.Quality(), Analysis: a}
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *AnalysisEchoHandler) Risk(c echo.Context) error {
	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.svc.ContextualizeRisk(req.BaseRisk, req.Treasury, req.Liquidation))
}

// Candles returns the stored history for a symbol.
func (h *AnalysisEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, appErr := parseTimeParam("from", req.From)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	to, appErr := parseTimeParam("to", req.To)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}

	uc := h.candles
	if uc == nil {
		uc = usecase.NewCandlesUseCase(nil)
	}
	res, err := uc.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: domrepo.NormalizeTimeframe(req.Timeframe),
		Limit:     req.Limit,
	})
	if err != nil {
		return h.fail(c, "candles", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// parseTimeParam returns the zero time for an empty value.
func parseTimeParam(field, raw string) (time.Time, *xhttp.AppError) {
	if raw == "" {
		return time.Time{}, nil
	}
	ts, ok := xutil.ParseTime(raw)
	if !ok {
		appErr := xhttp.BadRequestErrorf("invalid %s %q", field, raw).WithParam("formats", []string{"rfc3339", "unix", "unix_ms"})
		appErr.Field = field
		return time.Time{}, appErr
	}
	return ts, nil
}

func (h *AnalysisEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error(op+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Debug(op+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrSymbolRequired):
		return xhttp.BadRequestError("symbol is required").WithError(err)
	case errors.Is(err, usecase.ErrEmptyBatch), errors.Is(err, usecase.ErrBatchTooLarge), errors.Is(err, usecase.ErrInvalidRange):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrInvalidPrice), errors.Is(err, usecase.ErrSeriesMismatch):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrHistoryUnavailable):
		return xhttp.ServiceUnavailableError("history is not available").WithError(err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return xhttp.RequestTimeoutError("analysis did not finish in time").WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}
