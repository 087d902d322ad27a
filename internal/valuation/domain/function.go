package domain

import (
	"context"
	"errors"
	"sync"
)

// FxNdfCalculationFunction NDF 交易的计量编排器。
// 对单笔交易按请求的计量集合在全部场景下求值：
// 交易解析与市场数据视图构建各发生一次，由所有计量共享；
// 单个计量的失败被隔离为该计量的 Failure 结果，不影响其余计量；
// 解析失败与配置缺失属于整体失败，直接返回错误。
type FxNdfCalculationFunction struct {
	registry *MeasureRegistry
}

// NewFxNdfCalculationFunction 创建 NDF 编排器
func NewFxNdfCalculationFunction() *FxNdfCalculationFunction {
	return &FxNdfCalculationFunction{registry: NewFxNdfMeasureRegistry()}
}

// TargetType 本编排器处理的交易类型
func (f *FxNdfCalculationFunction) TargetType() TradeType {
	return TradeTypeFxNdf
}

// SupportedMeasures 支持的计量全集，含仅经别名产出的计量
func (f *FxNdfCalculationFunction) SupportedMeasures() []Measure {
	return f.registry.SupportedMeasures()
}

// NaturalCurrency 自然报告货币，即交易的结算货币
func (f *FxNdfCalculationFunction) NaturalCurrency(trade FxNdfTrade, refData ReferenceData) Currency {
	return trade.Product.SettlementCurrency
}

// Requirements 推导本次计算所需的市场数据。
// 纯粹由交易形态与配置决定，在市场数据存在之前即可调用。
func (f *FxNdfCalculationFunction) Requirements(
	trade FxNdfTrade,
	measures []Measure,
	parameters CalculationParameters,
	refData ReferenceData,
) (FunctionRequirements, error) {
	lookup, err := RatesLookupFrom(parameters)
	if err != nil {
		return FunctionRequirements{}, err
	}
	return lookup.Requirements(trade.Product.Currencies()...)
}

// Calculate 对每个请求的计量独立求值，返回计量到结果的完整映射。
// 各计量为互不依赖的纯函数调用，并行执行；
// 共享的 ResolvedFxNdfTrade 与市场数据视图均为只读，无需加锁保护值本身。
// ctx 取消后不再调度新的计量，已调度的计量会完整跑完，
// 因此映射中的条目要么完整存在要么从未被调度。
func (f *FxNdfCalculationFunction) Calculate(
	ctx context.Context,
	trade FxNdfTrade,
	measures []Measure,
	parameters CalculationParameters,
	scenarioMarketData ScenarioMarketData,
	refData ReferenceData,
) (map[Measure]Result, error) {
	// 解析一次，所有计量与场景共享
	resolved, err := trade.Resolve(refData)
	if err != nil {
		return nil, err
	}

	// 通过查找能力取得利率视图，配置缺失中止整个计算
	lookup, err := RatesLookupFrom(parameters)
	if err != nil {
		return nil, err
	}
	marketData := lookup.MarketDataView(scenarioMarketData)

	results := make(map[Measure]Result, len(measures))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, measure := range dedupeMeasures(measures) {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(m Measure) {
			defer wg.Done()
			result := f.calculateMeasure(m, resolved, marketData)
			mu.Lock()
			results[m] = result
			mu.Unlock()
		}(measure)
	}
	wg.Wait()

	// 别名复制：数值相同但下游货币转换处理不同的计量对，零重算
	for _, alias := range f.registry.Aliases() {
		duplicateResult(alias, results)
	}
	return results, nil
}

// calculateMeasure 计算单个计量，任何故障（含 panic）转为 Failure 值
func (f *FxNdfCalculationFunction) calculateMeasure(
	measure Measure,
	trade ResolvedFxNdfTrade,
	marketData RatesScenarioMarketData,
) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = FailureResult(FailureInternal, "measure %s panicked: %v", measure, r)
		}
	}()

	calc, ok := f.registry.Lookup(measure)
	if !ok {
		return FailureResult(FailureInvalidInput, "unsupported measure: %s", measure)
	}
	value, err := calc(trade, marketData)
	if err != nil {
		if errors.Is(err, ErrMissingMarketData) {
			return FailureResult(FailureMissingData, "%s", err)
		}
		return FailureResult(FailureCalculation, "%s", err)
	}
	return SuccessResult(value)
}

// duplicateResult 将源计量的结果复制到别名计量的槽位。
// 源计量未计算时不产生别名条目。
func duplicateResult(alias MeasureAlias, results map[Measure]Result) {
	source, ok := results[alias.Source]
	if !ok {
		return
	}
	results[alias.Alias] = source
}

// dedupeMeasures 去重并保持确定性顺序
func dedupeMeasures(measures []Measure) []Measure {
	seen := make(map[Measure]struct{}, len(measures))
	out := make([]Measure, 0, len(measures))
	for _, m := range SortMeasures(measures) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
