package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMissingMarketData 市场数据容器中缺少所需数据
var ErrMissingMarketData = fmt.Errorf("missing market data")

// ScenarioMarketData 按场景索引的市场数据容器。
// 由外部装配，计算期间只读；所有场景共享同一估值日。
type ScenarioMarketData struct {
	valuationDate time.Time
	count         int
	curves        map[Currency][]*Curve
	fxSpots       map[CurrencyPair][]decimal.Decimal
}

// NewScenarioMarketData 创建容器，每项数据必须覆盖全部场景
func NewScenarioMarketData(
	valuationDate time.Time,
	scenarioCount int,
	curves map[Currency][]*Curve,
	fxSpots map[CurrencyPair][]decimal.Decimal,
) (ScenarioMarketData, error) {
	if scenarioCount <= 0 {
		return ScenarioMarketData{}, fmt.Errorf("scenario count must be positive: %d", scenarioCount)
	}
	for ccy, cs := range curves {
		if len(cs) != scenarioCount {
			return ScenarioMarketData{}, fmt.Errorf("discount curve %s covers %d scenarios, want %d", ccy, len(cs), scenarioCount)
		}
	}
	for pair, rates := range fxSpots {
		if len(rates) != scenarioCount {
			return ScenarioMarketData{}, fmt.Errorf("fx spot %s covers %d scenarios, want %d", pair, len(rates), scenarioCount)
		}
	}
	return ScenarioMarketData{
		valuationDate: valuationDate,
		count:         scenarioCount,
		curves:        curves,
		fxSpots:       fxSpots,
	}, nil
}

// ValuationDate 估值日
func (d ScenarioMarketData) ValuationDate() time.Time {
	return d.valuationDate
}

// ScenarioCount 场景数
func (d ScenarioMarketData) ScenarioCount() int {
	return d.count
}

// curve 取指定货币与场景的折现曲线
func (d ScenarioMarketData) curve(ccy Currency, scenario int) (*Curve, error) {
	cs, ok := d.curves[ccy]
	if !ok {
		return nil, fmt.Errorf("%w: discount curve for %s", ErrMissingMarketData, ccy)
	}
	if scenario < 0 || scenario >= len(cs) {
		return nil, fmt.Errorf("scenario index %d out of range [0,%d)", scenario, len(cs))
	}
	return cs[scenario], nil
}

// fxSpot 取指定货币对与场景的即期汇率，支持反向对换算
func (d ScenarioMarketData) fxSpot(pair CurrencyPair, scenario int) (decimal.Decimal, error) {
	if rates, ok := d.fxSpots[pair]; ok {
		if scenario < 0 || scenario >= len(rates) {
			return decimal.Zero, fmt.Errorf("scenario index %d out of range [0,%d)", scenario, len(rates))
		}
		return rates[scenario], nil
	}
	if rates, ok := d.fxSpots[pair.Inverse()]; ok {
		if scenario < 0 || scenario >= len(rates) {
			return decimal.Zero, fmt.Errorf("scenario index %d out of range [0,%d)", scenario, len(rates))
		}
		if rates[scenario].IsZero() {
			return decimal.Zero, fmt.Errorf("fx spot %s is zero, cannot invert", pair.Inverse())
		}
		return decimal.NewFromInt(1).DivRound(rates[scenario], 12), nil
	}
	return decimal.Zero, fmt.Errorf("%w: fx spot for %s", ErrMissingMarketData, pair)
}

// RatesMarketDataLookup 利率市场数据查找能力。
// 将抽象需求（货币）展开为具体市场数据键，并从原始容器中取得
// 限定范围的利率视图。通过 CalculationParameters 注入，缺失属配置错误。
type RatesMarketDataLookup interface {
	CalculationParameter
	// Requirements 由涉及的货币推导市场数据需求，可在市场数据存在前计算
	Requirements(currencies ...Currency) (FunctionRequirements, error)
	// MarketDataView 取得限定为利率域的场景市场数据视图
	MarketDataView(marketData ScenarioMarketData) RatesScenarioMarketData
}

// nodeBump 单节点扰动描述
type nodeBump struct {
	currency Currency
	node     int
	amount   float64
}

// RatesScenarioMarketData 利率域的场景市场数据只读视图。
// 扰动（bump）以视图装饰方式实现，底层容器不被修改。
type RatesScenarioMarketData struct {
	data          ScenarioMarketData
	parallelShift float64
	nodeShift     *nodeBump
}

// NewRatesScenarioMarketData 包装原始容器为利率视图
func NewRatesScenarioMarketData(data ScenarioMarketData) RatesScenarioMarketData {
	return RatesScenarioMarketData{data: data}
}

// ValuationDate 估值日
func (md RatesScenarioMarketData) ValuationDate() time.Time {
	return md.data.ValuationDate()
}

// ScenarioCount 场景数
func (md RatesScenarioMarketData) ScenarioCount() int {
	return md.data.ScenarioCount()
}

// DiscountCurve 取指定货币与场景的折现曲线，已应用扰动
func (md RatesScenarioMarketData) DiscountCurve(ccy Currency, scenario int) (*Curve, error) {
	curve, err := md.data.curve(ccy, scenario)
	if err != nil {
		return nil, err
	}
	if md.parallelShift != 0 {
		curve = curve.ParallelShifted(md.parallelShift)
	}
	if md.nodeShift != nil && md.nodeShift.currency == ccy {
		curve, err = curve.NodeShifted(md.nodeShift.node, md.nodeShift.amount)
		if err != nil {
			return nil, err
		}
	}
	return curve, nil
}

// DiscountFactor 指定货币在 date 的折现因子
func (md RatesScenarioMarketData) DiscountFactor(ccy Currency, date time.Time, scenario int) (float64, error) {
	curve, err := md.DiscountCurve(ccy, scenario)
	if err != nil {
		return 0, err
	}
	return curve.DiscountFactor(md.yearFraction(date)), nil
}

// FxSpotRate 即期汇率，1 Base = rate Counter
func (md RatesScenarioMarketData) FxSpotRate(pair CurrencyPair, scenario int) (decimal.Decimal, error) {
	return md.data.fxSpot(pair, scenario)
}

// FxForwardRate 远期汇率，由利率平价推得：fwd = spot × dfBase / dfCounter
func (md RatesScenarioMarketData) FxForwardRate(pair CurrencyPair, date time.Time, scenario int) (decimal.Decimal, error) {
	spot, err := md.FxSpotRate(pair, scenario)
	if err != nil {
		return decimal.Zero, err
	}
	dfBase, err := md.DiscountFactor(pair.Base, date, scenario)
	if err != nil {
		return decimal.Zero, err
	}
	dfCounter, err := md.DiscountFactor(pair.Counter, date, scenario)
	if err != nil {
		return decimal.Zero, err
	}
	if dfCounter == 0 {
		return decimal.Zero, fmt.Errorf("discount factor for %s is zero at %s", pair.Counter, date.Format("2006-01-02"))
	}
	return spot.Mul(decimal.NewFromFloat(dfBase / dfCounter)), nil
}

// ParallelBumped 返回所有折现曲线平移 shift 后的视图
func (md RatesScenarioMarketData) ParallelBumped(shift float64) RatesScenarioMarketData {
	out := md
	out.parallelShift += shift
	return out
}

// NodeBumped 返回指定货币曲线单节点平移后的视图
func (md RatesScenarioMarketData) NodeBumped(ccy Currency, node int, shift float64) RatesScenarioMarketData {
	out := md
	out.nodeShift = &nodeBump{currency: ccy, node: node, amount: shift}
	return out
}

// yearFraction ACT/365F 年化期限
func (md RatesScenarioMarketData) yearFraction(date time.Time) float64 {
	return date.Sub(md.data.ValuationDate()).Hours() / 24 / 365
}
