package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"goal-engine/internal/compplan"
	"goal-engine/internal/engine"
	"goal-engine/internal/metrics"
	"goal-engine/internal/model"
	"goal-engine/internal/verticals"
)

const (
	pathBreakdowns = "/v1/goal-breakdowns"
	pathVerticals  = "/v1/verticals"
	pathPlans      = "/v1/plans"
	pathHealth     = "/healthz"
	pathMetrics    = "/metrics"
)

type Deps struct {
	Engine   *engine.Engine
	Registry *verticals.Registry
	Plans    *compplan.Repository
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
	// RateLimit is a formatted limiter rate applied per client IP to
	// breakdown requests, e.g. "600-M".
	RateLimit string
}

type Handler struct {
	engine   *engine.Engine
	registry *verticals.Registry
	plans    *compplan.Repository
	metrics  *metrics.Metrics
	limiter  *limiter.Limiter
	exporter fasthttp.RequestHandler
	log      *zap.Logger
}

type verticalInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func New(d Deps) (*Handler, error) {
	rate, err := limiter.NewRateFromFormatted(d.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("rate limit %q: %w", d.RateLimit, err)
	}

	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Handler{
		engine:   d.Engine,
		registry: d.Registry,
		plans:    d.Plans,
		metrics:  d.Metrics,
		limiter:  limiter.New(memory.NewStore(), rate),
		exporter: fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
		log:      log.Named("http"),
	}, nil
}

// Handle is the fasthttp.RequestHandler for the whole service. A panic in a
// route is logged and answered with 500; fasthttp itself does not recover.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic serving request",
				zap.Any("panic", r),
				zap.ByteString("path", ctx.Path()),
				zap.Stack("stack"),
			)
			writeError(ctx, fasthttp.StatusInternalServerError, "Internal server error")
		}
		h.log.Debug("request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()
	h.route(ctx)
}

func (h *Handler) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())

	switch {
	case path == pathBreakdowns:
		if allow(ctx, fasthttp.MethodPost) {
			h.handleBreakdown(ctx)
		}
	case path == pathHealth:
		if allow(ctx, fasthttp.MethodGet) {
			writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		}
	case path == pathMetrics:
		if allow(ctx, fasthttp.MethodGet) {
			h.exporter(ctx)
		}
	case path == pathVerticals:
		if allow(ctx, fasthttp.MethodGet) {
			h.listVerticals(ctx)
		}
	case strings.HasPrefix(path, pathVerticals+"/"):
		if allow(ctx, fasthttp.MethodGet) {
			h.verticalResource(ctx, strings.TrimPrefix(path, pathVerticals+"/"))
		}
	case path == pathPlans:
		if allow(ctx, fasthttp.MethodGet) {
			writeJSON(ctx, fasthttp.StatusOK, h.plans.List())
		}
	case strings.HasPrefix(path, pathPlans+"/"):
		if allow(ctx, fasthttp.MethodGet) {
			h.getPlan(ctx, strings.TrimPrefix(path, pathPlans+"/"))
		}
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Route not found")
	}
}

func (h *Handler) handleBreakdown(ctx *fasthttp.RequestCtx) {
	if !h.admit(ctx) {
		return
	}

	body := ctx.PostBody()
	if len(body) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "Request body is required")
		return
	}

	var req model.BreakdownRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, h.engine.Process(&req))
}

// admit applies the per-client rate limit and writes 429 when it is reached.
func (h *Handler) admit(ctx *fasthttp.RequestCtx) bool {
	lctx, err := h.limiter.Get(ctx, ctx.RemoteIP().String())
	if err != nil {
		h.log.Error("rate limiter unavailable", zap.Error(err))
		return true
	}

	ctx.Response.Header.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
	ctx.Response.Header.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
	ctx.Response.Header.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

	if lctx.Reached {
		h.metrics.IncRateLimited()
		writeError(ctx, fasthttp.StatusTooManyRequests, "Rate limit exceeded")
		return false
	}
	return true
}

func (h *Handler) listVerticals(ctx *fasthttp.RequestCtx) {
	adapters := h.registry.Adapters()
	out := make([]verticalInfo, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, verticalInfo{ID: a.ID(), Label: a.Label()})
	}
	writeJSON(ctx, fasthttp.StatusOK, out)
}

// verticalResource serves {id}/conversion-config and {id}/kpis.
func (h *Handler) verticalResource(ctx *fasthttp.RequestCtx, rest string) {
	id, resource, ok := strings.Cut(rest, "/")
	if !ok || id == "" {
		writeError(ctx, fasthttp.StatusNotFound, "Route not found")
		return
	}

	a, found := h.registry.Get(id)
	if !found {
		writeError(ctx, fasthttp.StatusNotFound, "Vertical not registered: "+id)
		return
	}

	switch resource {
	case "conversion-config":
		writeJSON(ctx, fasthttp.StatusOK, a.DefaultConversionConfig())
	case "kpis":
		writeJSON(ctx, fasthttp.StatusOK, a.KPIDefinitions())
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Route not found")
	}
}

func (h *Handler) getPlan(ctx *fasthttp.RequestCtx, companyID string) {
	region := string(ctx.QueryArgs().Peek("region"))
	plan, ok := h.plans.Get(companyID, region)
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, "Compensation plan not found")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, plan)
}

func allow(ctx *fasthttp.RequestCtx, method string) bool {
	if string(ctx.Method()) == method {
		return true
	}
	ctx.Response.Header.Set(fasthttp.HeaderAllow, method)
	writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	return false
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "Failed to encode response")
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(model.ErrorResponse{
		Status:  status,
		Message: message,
	})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
