package domain

import (
	"context"
	"time"
)

// CalculationRecord 一次计算请求的持久化记录
type CalculationRecord struct {
	ID            uint      `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	TradeID       string    `json:"trade_id"`
	TradeType     TradeType `json:"trade_type"`
	ValuationDate time.Time `json:"valuation_date"`
	ScenarioCount int       `json:"scenario_count"`
	// Measures 请求的计量，含别名产出
	Measures []Measure `json:"measures"`
	// ResultJSON 序列化后的结果映射
	ResultJSON string `json:"result_json"`
	// SuccessCount 成功计量数
	SuccessCount int `json:"success_count"`
	// FailureCount 失败计量数
	FailureCount int `json:"failure_count"`
}

// CalculationRepository 计算记录仓储接口
type CalculationRepository interface {
	Save(ctx context.Context, record *CalculationRecord) error
	GetLatest(ctx context.Context, tradeID string) (*CalculationRecord, error)
	GetHistory(ctx context.Context, tradeID string, limit int) ([]*CalculationRecord, error)
}

// MarketDataStore 基础市场数据（曲线、即期汇率）存取接口。
// 由基础设施层实现，装配场景市场数据时使用。
type MarketDataStore interface {
	// DiscountCurve 取指定货币的基准折现曲线
	DiscountCurve(ctx context.Context, group string, ccy Currency) (*Curve, error)
	// FxSpot 取指定货币对的基准即期汇率
	FxSpot(ctx context.Context, pair CurrencyPair) (float64, error)
}
