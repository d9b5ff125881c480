package model

type CalculationMessage struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

const (
	CodeInvalidTimeframe      = "INVALID_TIMEFRAME"
	CodeMissingVertical       = "MISSING_VERTICAL"
	CodeCalculationFailed     = "CALCULATION_FAILED"
	CodePlanNotFound          = "PLAN_NOT_FOUND"
	CodePlanNotApplicable     = "PLAN_NOT_APPLICABLE"
	CodeTargetExceedsTopRank  = "TARGET_EXCEEDS_TOP_RANK"
	CodeRankIndexClamped      = "RANK_INDEX_CLAMPED"
	CodeVerticalNotRegistered = "VERTICAL_NOT_REGISTERED"
	CodeVolumeCapped          = "VOLUME_CAPPED"
)
