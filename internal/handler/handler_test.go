package handler

import (
	"net"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"goal-engine/internal/breakdown"
	"goal-engine/internal/compplan"
	"goal-engine/internal/engine"
	"goal-engine/internal/metrics"
	"goal-engine/internal/model"
	"goal-engine/internal/verticals"
)

func newTestHandler(t *testing.T, rate string) *Handler {
	t.Helper()

	repo, err := compplan.Default()
	require.NoError(t, err)
	registry, err := verticals.NewRegistry(verticals.NewNetworkMarketing(repo))
	require.NoError(t, err)

	promReg := prometheus.NewRegistry()
	m, err := metrics.New(promReg)
	require.NoError(t, err)

	h, err := New(Deps{
		Engine:    engine.New(registry, zap.NewNop(), m),
		Registry:  registry,
		Plans:     repo,
		Metrics:   m,
		Gatherer:  promReg,
		Log:       zap.NewNop(),
		RateLimit: rate,
	})
	require.NoError(t, err)
	return h
}

func do(h *Handler, method, uri, body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.SetBodyString(body)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 5000}, nil)
	h.Handle(ctx)
	return ctx
}

const zinzinoIncomeGoal = `{
	"tenant_id": "acme",
	"vertical_id": "network_marketing",
	"goal": {
		"goal_kind": "income",
		"target_value": 350,
		"timeframe_months": 6,
		"vertical_meta": {"comp_plan_id": "zinzino", "region": "DE"}
	}
}`

func TestBreakdownSuccess(t *testing.T) {
	h := newTestHandler(t, "100-M")

	ctx := do(h, fasthttp.MethodPost, pathBreakdowns, zinzinoIncomeGoal)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))

	var resp model.BreakdownResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, model.OutcomeSuccess, resp.CalculationMetadata.CalculationOutcome)
	assert.Equal(t, "acme", resp.CalculationMetadata.TenantID)
	require.NotNil(t, resp.CalculationResult.Breakdown)
	assert.Equal(t, 2000.0, resp.CalculationResult.Breakdown.RequiredVolume)
	assert.Equal(t, model.PathPlan, resp.CalculationResult.Breakdown.CalculationPath)
}

func TestBreakdownInvalidTimeframeIsFailureEnvelope(t *testing.T) {
	h := newTestHandler(t, "100-M")

	ctx := do(h, fasthttp.MethodPost, pathBreakdowns,
		`{"vertical_id":"network_marketing","goal":{"goal_kind":"volume","target_value":10,"timeframe_months":0}}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp model.BreakdownResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, model.OutcomeFailure, resp.CalculationMetadata.CalculationOutcome)
	assert.Nil(t, resp.CalculationResult.Breakdown)
	require.Len(t, resp.CalculationResult.Messages, 1)
	assert.Equal(t, model.CodeInvalidTimeframe, resp.CalculationResult.Messages[0].Code)
}

func TestBreakdownBadRequests(t *testing.T) {
	h := newTestHandler(t, "100-M")

	cases := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{name: "empty body", method: fasthttp.MethodPost, body: "", status: fasthttp.StatusBadRequest},
		{name: "malformed json", method: fasthttp.MethodPost, body: `{"goal":`, status: fasthttp.StatusBadRequest},
		{name: "wrong method", method: fasthttp.MethodGet, body: "", status: fasthttp.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := do(h, tc.method, pathBreakdowns, tc.body)
			assert.Equal(t, tc.status, ctx.Response.StatusCode())

			var errResp model.ErrorResponse
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &errResp))
			assert.Equal(t, tc.status, errResp.Status)
			assert.NotEmpty(t, errResp.Message)
		})
	}
}

func TestBreakdownRateLimited(t *testing.T) {
	h := newTestHandler(t, "2-M")

	for i := 0; i < 2; i++ {
		ctx := do(h, fasthttp.MethodPost, pathBreakdowns, zinzinoIncomeGoal)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	}

	ctx := do(h, fasthttp.MethodPost, pathBreakdowns, zinzinoIncomeGoal)
	assert.Equal(t, fasthttp.StatusTooManyRequests, ctx.Response.StatusCode())
	assert.Equal(t, "0", string(ctx.Response.Header.Peek("X-RateLimit-Remaining")))

	metricsCtx := do(h, fasthttp.MethodGet, pathMetrics, "")
	assert.Contains(t, string(metricsCtx.Response.Body()), "goal_engine_rate_limited_requests_total 1")
}

func TestVerticalRoutes(t *testing.T) {
	h := newTestHandler(t, "100-M")

	ctx := do(h, fasthttp.MethodGet, pathVerticals, "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var list []verticalInfo
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, verticalInfo{ID: "network_marketing", Label: "Network Marketing"}, list[0])

	ctx = do(h, fasthttp.MethodGet, pathVerticals+"/network_marketing/conversion-config", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var cfg model.DailyFlowConfig
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &cfg))
	assert.Equal(t, 5, cfg.WorkingDaysPerWeek)

	ctx = do(h, fasthttp.MethodGet, pathVerticals+"/network_marketing/kpis", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var kpis []model.KPIDefinition
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &kpis))
	assert.Len(t, kpis, 7)

	ctx = do(h, fasthttp.MethodGet, pathVerticals+"/real_estate/kpis", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodGet, pathVerticals+"/network_marketing/unknown", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestPlanRoutes(t *testing.T) {
	h := newTestHandler(t, "100-M")

	ctx := do(h, fasthttp.MethodGet, pathPlans, "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var refs []compplan.PlanRef
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &refs))
	assert.Len(t, refs, 4)

	ctx = do(h, fasthttp.MethodGet, pathPlans+"/zinzino?region=nl", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var plan model.CompensationPlan
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &plan))
	assert.Equal(t, "NL", plan.Region)

	ctx = do(h, fasthttp.MethodGet, pathPlans+"/zinzino", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &plan))
	assert.Equal(t, "DE", plan.Region)

	ctx = do(h, fasthttp.MethodGet, pathPlans+"/unknown_co", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	h := newTestHandler(t, "100-M")

	ctx := do(h, fasthttp.MethodGet, pathHealth, "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(ctx.Response.Body()))

	ctx = do(h, fasthttp.MethodPost, pathHealth, "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
	assert.Equal(t, fasthttp.MethodGet, string(ctx.Response.Header.Peek(fasthttp.HeaderAllow)))

	ctx = do(h, fasthttp.MethodGet, "/v2/nothing", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestBreakdownOverflowingTargetIsCapped(t *testing.T) {
	h := newTestHandler(t, "100-M")

	ctx := do(h, fasthttp.MethodPost, pathBreakdowns,
		`{"vertical_id":"real_estate","goal":{"goal_kind":"deals","target_value":1e307,"timeframe_months":1}}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp model.BreakdownResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, model.OutcomeSuccess, resp.CalculationMetadata.CalculationOutcome)
	require.NotNil(t, resp.CalculationResult.Breakdown)
	assert.Equal(t, breakdown.MaxVolume, resp.CalculationResult.Breakdown.RequiredVolume)
	assert.GreaterOrEqual(t, resp.CalculationResult.Breakdown.PrimaryUnits, 0)
	require.Len(t, resp.CalculationResult.Messages, 2)
	assert.Equal(t, model.CodeVolumeCapped, resp.CalculationResult.Messages[1].Code)
}

type panickingAdapter struct{}

func (panickingAdapter) ID() string    { return "unstable" }
func (panickingAdapter) Label() string { return "Unstable" }

func (panickingAdapter) ComputeGoalBreakdown(model.GoalInput) (model.GoalBreakdown, error) {
	panic("adapter failure")
}

func (panickingAdapter) DefaultConversionConfig() model.DailyFlowConfig { return model.DailyFlowConfig{} }
func (panickingAdapter) KPIDefinitions() []model.KPIDefinition          { return nil }

func TestHandleRecoversPanics(t *testing.T) {
	registry, err := verticals.NewRegistry(panickingAdapter{})
	require.NoError(t, err)

	h, err := New(Deps{
		Engine:    engine.New(registry, zap.NewNop(), nil),
		Registry:  registry,
		Log:       zap.NewNop(),
		RateLimit: "100-M",
	})
	require.NoError(t, err)

	var ctx *fasthttp.RequestCtx
	require.NotPanics(t, func() {
		ctx = do(h, fasthttp.MethodPost, pathBreakdowns,
			`{"vertical_id":"unstable","goal":{"goal_kind":"volume","target_value":1,"timeframe_months":1}}`)
	})
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())

	var errResp model.ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &errResp))
	assert.Equal(t, fasthttp.StatusInternalServerError, errResp.Status)

	ctx = do(h, fasthttp.MethodGet, pathHealth, "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestNewRejectsBadRate(t *testing.T) {
	_, err := New(Deps{RateLimit: "lots"})
	assert.Error(t, err)
}
