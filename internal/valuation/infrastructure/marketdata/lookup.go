// Package marketdata 提供利率市场数据查找能力与场景市场数据装配
package marketdata

import (
	"fmt"

	"github.com/wyfcoding/valuationengine/internal/valuation/domain"
)

// RatesLookup 利率市场数据查找能力的默认实现，
// 按曲线组将抽象的货币需求展开为具体市场数据键。
// 作为计算参数注入编排器。
type RatesLookup struct {
	// CurveGroup 曲线组名称
	CurveGroup string
}

// NewRatesLookup 创建查找能力
func NewRatesLookup(curveGroup string) *RatesLookup {
	return &RatesLookup{CurveGroup: curveGroup}
}

// ParameterKind 实现 CalculationParameter
func (l *RatesLookup) ParameterKind() domain.ParameterKind {
	return domain.ParameterKindRatesLookup
}

// Requirements 每种货币需要一条折现曲线，每对货币需要一个即期汇率。
// 只依赖交易形态与配置，可在市场数据存在前调用。
func (l *RatesLookup) Requirements(currencies ...domain.Currency) (domain.FunctionRequirements, error) {
	if len(currencies) == 0 {
		return domain.FunctionRequirements{}, fmt.Errorf("at least one currency is required")
	}
	reqs := domain.NewFunctionRequirements().WithOutputCurrencies(currencies...)
	for _, ccy := range currencies {
		reqs = reqs.WithKeys(domain.MarketDataKey{Type: domain.KeyTypeDiscountCurve, Name: string(ccy)})
	}
	for i := 0; i < len(currencies); i++ {
		for j := i + 1; j < len(currencies); j++ {
			pair := domain.CurrencyPair{Base: currencies[i], Counter: currencies[j]}
			reqs = reqs.WithKeys(domain.MarketDataKey{Type: domain.KeyTypeFxSpot, Name: pair.String()})
		}
	}
	return reqs, nil
}

// MarketDataView 取得限定为利率域的场景市场数据视图
func (l *RatesLookup) MarketDataView(marketData domain.ScenarioMarketData) domain.RatesScenarioMarketData {
	return domain.NewRatesScenarioMarketData(marketData)
}
