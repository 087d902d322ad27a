package domain

// SingleMeasureCalculation 单个计量的计算例程，对一个已解析交易
// 在所有场景下求值。必须为纯函数，错误直接返回，不得自行吞掉。
type SingleMeasureCalculation func(trade ResolvedFxNdfTrade, marketData RatesScenarioMarketData) (ScenarioResult, error)

// MeasureAlias 计量别名：alias 的结果直接复制自 source，不重复计算。
// 两者数值相同，但下游货币转换处理不同。
type MeasureAlias struct {
	Source Measure
	Alias  Measure
}

// MeasureRegistry 计量到计算例程的不可变映射，启动时构建一次。
// 支持的计量集合包含仅通过别名产出的计量。
type MeasureRegistry struct {
	calculators map[Measure]SingleMeasureCalculation
	aliases     []MeasureAlias
	supported   map[Measure]struct{}
}

// NewMeasureRegistry 从例程映射与别名表构建注册表
func NewMeasureRegistry(calculators map[Measure]SingleMeasureCalculation, aliases []MeasureAlias) *MeasureRegistry {
	supported := make(map[Measure]struct{}, len(calculators)+len(aliases))
	calcs := make(map[Measure]SingleMeasureCalculation, len(calculators))
	for m, c := range calculators {
		calcs[m] = c
		supported[m] = struct{}{}
	}
	aliasCopy := make([]MeasureAlias, len(aliases))
	copy(aliasCopy, aliases)
	for _, a := range aliases {
		supported[a.Alias] = struct{}{}
	}
	return &MeasureRegistry{
		calculators: calcs,
		aliases:     aliasCopy,
		supported:   supported,
	}
}

// NewFxNdfMeasureRegistry NDF 计量注册表。
// PresentValueMultiCurrency 与 PresentValue 数值相同，仅作别名产出。
func NewFxNdfMeasureRegistry() *MeasureRegistry {
	return NewMeasureRegistry(
		map[Measure]SingleMeasureCalculation{
			MeasurePresentValue:     presentValue,
			MeasurePv01:             pv01,
			MeasureBucketedPv01:     bucketedPv01,
			MeasureCurrencyExposure: currencyExposure,
			MeasureCurrentCash:      currentCash,
			MeasureForwardFxRate:    forwardFxRate,
		},
		[]MeasureAlias{
			{Source: MeasurePresentValue, Alias: MeasurePresentValueMultiCcy},
		},
	)
}

// Lookup 查找计量的计算例程。未注册不是错误，由调用方决定如何处理。
func (r *MeasureRegistry) Lookup(measure Measure) (SingleMeasureCalculation, bool) {
	calc, ok := r.calculators[measure]
	return calc, ok
}

// SupportedMeasures 返回支持的计量全集（含别名），按字母序
func (r *MeasureRegistry) SupportedMeasures() []Measure {
	out := make([]Measure, 0, len(r.supported))
	for m := range r.supported {
		out = append(out, m)
	}
	return SortMeasures(out)
}

// IsSupported 计量是否受支持（含别名）
func (r *MeasureRegistry) IsSupported(measure Measure) bool {
	_, ok := r.supported[measure]
	return ok
}

// Aliases 返回别名表副本
func (r *MeasureRegistry) Aliases() []MeasureAlias {
	out := make([]MeasureAlias, len(r.aliases))
	copy(out, r.aliases)
	return out
}
