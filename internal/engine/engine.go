package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"goal-engine/internal/metrics"
	"goal-engine/internal/model"
	"goal-engine/internal/verticals"
)

type Engine struct {
	registry *verticals.Registry
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func New(registry *verticals.Registry, log *zap.Logger, m *metrics.Metrics) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		registry: registry,
		log:      log.Named("engine"),
		metrics:  m,
	}
}

// Process computes the breakdown for one request. Soft anomalies become
// WARNING messages next to the breakdown; contract violations become a
// CRITICAL message and a FAILURE outcome without a breakdown.
func (e *Engine) Process(req *model.BreakdownRequest) *model.BreakdownResponse {
	start := time.Now()

	var messages []model.CalculationMessage
	var result *model.GoalBreakdown
	outcome := model.OutcomeSuccess

	verticalID := strings.TrimSpace(req.VerticalID)
	if verticalID == "" {
		messages = appendMessage(messages, model.LevelCritical, model.CodeMissingVertical, "vertical_id is required")
		outcome = model.OutcomeFailure
	} else {
		b, err := e.registry.ComputeGoalBreakdownForVertical(verticalID, req.Goal)
		switch {
		case errors.Is(err, model.ErrInvalidTimeframe):
			messages = appendMessage(messages, model.LevelCritical, model.CodeInvalidTimeframe,
				fmt.Sprintf("timeframe_months must be positive, got %d", req.Goal.TimeframeMonths))
			outcome = model.OutcomeFailure
		case err != nil:
			messages = appendMessage(messages, model.LevelCritical, model.CodeCalculationFailed, err.Error())
			outcome = model.OutcomeFailure
		default:
			result = &b
			messages = append(messages, warningsFor(b, req.Goal)...)
		}
	}

	elapsed := time.Since(start)
	now := time.Now().UTC()

	path := ""
	if result != nil {
		path = result.CalculationPath
	}
	e.metrics.ObserveBreakdown(e.verticalLabel(verticalID), path, outcome, elapsed)

	fields := []zap.Field{
		zap.String("tenant_id", req.TenantID),
		zap.String("vertical_id", verticalID),
		zap.String("goal_kind", string(req.Goal.Kind)),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
	}
	if result != nil {
		e.log.Debug("goal breakdown computed", append(fields,
			zap.String("path", result.CalculationPath),
			zap.Float64("required_volume", result.RequiredVolume),
			zap.Int("warnings", len(messages)),
		)...)
	} else {
		e.log.Warn("goal breakdown rejected", append(fields, zap.String("code", messages[0].Code))...)
	}

	if messages == nil {
		messages = []model.CalculationMessage{}
	}

	return &model.BreakdownResponse{
		CalculationMetadata: model.CalculationMetadata{
			CalculationID:          uuid.New().String(),
			TenantID:               req.TenantID,
			CalculationStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
			CalculationCompletedAt: now.Format(time.RFC3339),
			CalculationDurationMs:  elapsed.Milliseconds(),
			CalculationOutcome:     outcome,
		},
		CalculationResult: model.CalculationResult{
			Messages:  messages,
			Breakdown: result,
		},
	}
}

// warningsFor turns the degradations recorded in a breakdown into messages.
func warningsFor(b model.GoalBreakdown, goal model.GoalInput) []model.CalculationMessage {
	var msgs []model.CalculationMessage
	details := b.VerticalDetails

	if b.CalculationPath == model.PathGeneric {
		msgs = appendMessage(msgs, model.LevelWarning, model.CodeVerticalNotRegistered,
			fmt.Sprintf("No adapter is registered for vertical %s; a generic estimate was used", b.VerticalID))
	}

	switch details[verticals.DetailPlanStatus] {
	case verticals.PlanStatusNotFound:
		companyID, region := goal.PlanRef()
		msgs = appendMessage(msgs, model.LevelWarning, model.CodePlanNotFound,
			fmt.Sprintf("Compensation plan %s (region %q) not found; a heuristic estimate was used", companyID, region))
	case verticals.PlanStatusNotApplicable:
		msgs = appendMessage(msgs, model.LevelWarning, model.CodePlanNotApplicable,
			fmt.Sprintf("The compensation plan does not apply to %s goals; a heuristic estimate was used", goal.Kind))
	}

	if reached, ok := details[verticals.DetailTargetReached].(bool); ok && !reached {
		msgs = appendMessage(msgs, model.LevelWarning, model.CodeTargetExceedsTopRank,
			fmt.Sprintf("No rank reaches the target income; using %v", details["tier_name"]))
	}
	if clamped, ok := details[verticals.DetailIndexClamped].(bool); ok && clamped {
		msgs = appendMessage(msgs, model.LevelWarning, model.CodeRankIndexClamped,
			fmt.Sprintf("Rank index was clamped to %v", details["tier_order"]))
	}
	if capped, ok := details[verticals.DetailVolumeCapped].(bool); ok && capped {
		msgs = appendMessage(msgs, model.LevelWarning, model.CodeVolumeCapped,
			fmt.Sprintf("Required volume was capped at %v", b.RequiredVolume))
	}

	return msgs
}

func appendMessage(msgs []model.CalculationMessage, level, code, message string) []model.CalculationMessage {
	return append(msgs, model.CalculationMessage{
		ID:      len(msgs),
		Level:   level,
		Code:    code,
		Message: message,
	})
}

// verticalLabel keeps metric cardinality bounded: every vertical without an
// adapter is reported as "unregistered".
func (e *Engine) verticalLabel(verticalID string) string {
	if verticalID == "" {
		return "none"
	}
	if a, ok := e.registry.Get(verticalID); ok {
		return a.ID()
	}
	return "unregistered"
}
