package domain

import "time"

const (
	CalculationCompletedEventType = "CalculationCompleted"
	CalculationFailedEventType    = "CalculationFailed"
)

// MeasureOutcome 事件中单个计量的概要
type MeasureOutcome struct {
	Measure Measure `json:"measure"`
	Success bool    `json:"success"`
	Reason  string  `json:"reason,omitempty"`
}

// CalculationCompletedEvent 计量计算完成事件
type CalculationCompletedEvent struct {
	TradeID       string           `json:"trade_id"`
	TradeType     TradeType        `json:"trade_type"`
	ValuationDate time.Time        `json:"valuation_date"`
	ScenarioCount int              `json:"scenario_count"`
	Outcomes      []MeasureOutcome `json:"outcomes"`
	OccurredOn    time.Time        `json:"occurred_on"`
}

// CalculationFailedEvent 计算整体失败事件（解析或配置错误）
type CalculationFailedEvent struct {
	TradeID    string    `json:"trade_id"`
	Error      string    `json:"error"`
	OccurredOn time.Time `json:"occurred_on"`
}

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishCalculationCompleted 发布计算完成事件
	PublishCalculationCompleted(event CalculationCompletedEvent) error

	// PublishCalculationFailed 发布计算整体失败事件
	PublishCalculationFailed(event CalculationFailedEvent) error
}
