package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/valuationengine/internal/valuation/domain"
	"github.com/wyfcoding/valuationengine/pkg/logger"
)

// ScenarioShift 单个场景相对基准数据的扰动定义。
// 第一个场景通常为基准（零扰动）。
type ScenarioShift struct {
	// Name 场景名称
	Name string `json:"name"`
	// CurveShiftBp 所有折现曲线零息利率平移量（基点）
	CurveShiftBp float64 `json:"curve_shift_bp"`
	// FxScale 即期汇率缩放系数，0 视为 1（不缩放）
	FxScale float64 `json:"fx_scale"`
}

// Provider 场景市场数据装配器。
// 按声明的需求从基础数据存储读取曲线与汇率，
// 再按场景扰动定义生成逐场景数据。只在计算开始前执行 I/O。
type Provider struct {
	store      domain.MarketDataStore
	curveGroup string
}

// NewProvider 创建装配器
func NewProvider(store domain.MarketDataStore, curveGroup string) *Provider {
	return &Provider{store: store, curveGroup: curveGroup}
}

// Assemble 装配场景市场数据。
// 只装配需求集合声明的数据；shifts 为空时生成单一基准场景。
func (p *Provider) Assemble(
	ctx context.Context,
	valuationDate time.Time,
	requirements domain.FunctionRequirements,
	shifts []ScenarioShift,
) (domain.ScenarioMarketData, error) {
	if len(shifts) == 0 {
		shifts = []ScenarioShift{{Name: "base"}}
	}
	count := len(shifts)

	curves := make(map[domain.Currency][]*domain.Curve)
	fxSpots := make(map[domain.CurrencyPair][]decimal.Decimal)

	for _, key := range requirements.Keys() {
		switch key.Type {
		case domain.KeyTypeDiscountCurve:
			ccy, err := domain.ParseCurrency(key.Name)
			if err != nil {
				return domain.ScenarioMarketData{}, fmt.Errorf("invalid discount curve key %q: %w", key.Name, err)
			}
			base, err := p.store.DiscountCurve(ctx, p.curveGroup, ccy)
			if err != nil {
				return domain.ScenarioMarketData{}, fmt.Errorf("failed to load discount curve %s: %w", ccy, err)
			}
			perScenario := make([]*domain.Curve, count)
			for i, shift := range shifts {
				if shift.CurveShiftBp == 0 {
					perScenario[i] = base
					continue
				}
				perScenario[i] = base.ParallelShifted(shift.CurveShiftBp * 1e-4)
			}
			curves[ccy] = perScenario

		case domain.KeyTypeFxSpot:
			pair, err := domain.ParseCurrencyPair(key.Name)
			if err != nil {
				return domain.ScenarioMarketData{}, fmt.Errorf("invalid fx spot key %q: %w", key.Name, err)
			}
			base, err := p.store.FxSpot(ctx, pair)
			if err != nil {
				return domain.ScenarioMarketData{}, fmt.Errorf("failed to load fx spot %s: %w", pair, err)
			}
			perScenario := make([]decimal.Decimal, count)
			for i, shift := range shifts {
				scale := shift.FxScale
				if scale == 0 {
					scale = 1
				}
				perScenario[i] = decimal.NewFromFloat(base * scale)
			}
			fxSpots[pair] = perScenario

		default:
			return domain.ScenarioMarketData{}, fmt.Errorf("unsupported market data key type: %s", key.Type)
		}
	}

	logger.Debug(ctx, "scenario market data assembled",
		"valuation_date", valuationDate.Format("2006-01-02"),
		"scenarios", count,
		"keys", len(requirements.Keys()),
	)
	return domain.NewScenarioMarketData(valuationDate, count, curves, fxSpots)
}
