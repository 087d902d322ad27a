package domain

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testValuationDate = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	testPaymentDate   = time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	testFixingDate    = time.Date(2027, 2, 25, 0, 0, 0, 0, time.UTC)
)

func flatCurve(t *testing.T, ccy Currency, rate float64) *Curve {
	t.Helper()
	curve, err := NewCurve(string(ccy)+"-Discount", ccy, []CurveNode{
		{Label: "3M", TimeYears: 0.25, ZeroRate: rate},
		{Label: "1Y", TimeYears: 1, ZeroRate: rate},
		{Label: "5Y", TimeYears: 5, ZeroRate: rate},
	})
	require.NoError(t, err)
	return curve
}

func singleScenarioData(t *testing.T, usdRate, krwRate, spot float64) ScenarioMarketData {
	t.Helper()
	data, err := NewScenarioMarketData(testValuationDate, 1,
		map[Currency][]*Curve{
			USD: {flatCurve(t, USD, usdRate)},
			KRW: {flatCurve(t, KRW, krwRate)},
		},
		map[CurrencyPair][]decimal.Decimal{
			{Base: USD, Counter: KRW}: {decimal.NewFromFloat(spot)},
		},
	)
	require.NoError(t, err)
	return data
}

func testTrade(t *testing.T) FxNdfTrade {
	t.Helper()
	product, err := NewFxNdf(
		USD, KRW,
		decimal.NewFromInt(1_000_000),
		decimal.NewFromInt(1250),
		testFixingDate,
		AdjustableDate{
			Unadjusted: testPaymentDate,
			Convention: ConventionFollowing,
			Calendar:   CalendarWeekendOnly,
		},
	)
	require.NoError(t, err)
	return FxNdfTrade{
		Info:    TradeInfo{TradeID: "NDF-001", Counterparty: "CPTY-A", TradeDate: testValuationDate},
		Product: product,
	}
}

// staticRatesLookup 测试用的利率查找能力，直接包装原始容器
type staticRatesLookup struct{}

func (staticRatesLookup) ParameterKind() ParameterKind { return ParameterKindRatesLookup }

func (staticRatesLookup) Requirements(currencies ...Currency) (FunctionRequirements, error) {
	reqs := NewFunctionRequirements()
	for _, ccy := range currencies {
		reqs = reqs.WithKeys(MarketDataKey{Type: KeyTypeDiscountCurve, Name: string(ccy)})
	}
	return reqs.WithOutputCurrencies(currencies...), nil
}

func (staticRatesLookup) MarketDataView(marketData ScenarioMarketData) RatesScenarioMarketData {
	return NewRatesScenarioMarketData(marketData)
}

func testParameters() CalculationParameters {
	return NewCalculationParameters(staticRatesLookup{})
}

func TestCalculateReturnsEntryForEveryRequestedMeasure(t *testing.T) {
	fn := NewFxNdfCalculationFunction()
	measures := []Measure{
		MeasurePresentValue,
		MeasurePresentValueMultiCcy,
		MeasurePv01,
		MeasureCurrencyExposure,
		MeasureForwardFxRate,
	}

	results, err := fn.Calculate(context.Background(), testTrade(t), measures,
		testParameters(), singleScenarioData(t, 0.03, 0.01, 1300), StandardReferenceData())

	require.NoError(t, err)
	require.Len(t, results, len(measures))
	for _, m := range measures {
		result, ok := results[m]
		require.True(t, ok, "missing result for %s", m)
		assert.True(t, result.IsSuccess(), "measure %s failed: %s", m, result.Message())
	}
}

func TestCalculateAliasCopiesSourceResult(t *testing.T) {
	fn := NewFxNdfCalculationFunction()

	results, err := fn.Calculate(context.Background(), testTrade(t),
		[]Measure{MeasurePresentValue, MeasurePresentValueMultiCcy},
		testParameters(), singleScenarioData(t, 0.03, 0.01, 1300), StandardReferenceData())

	require.NoError(t, err)
	source, err := results[MeasurePresentValue].Value()
	require.NoError(t, err)
	alias, err := results[MeasurePresentValueMultiCcy].Value()
	require.NoError(t, err)
	assert.True(t, source.(CurrencyScenarioArray).Equal(alias.(CurrencyScenarioArray)))
}

func TestCalculateAliasNeverRecomputes(t *testing.T) {
	var calls atomic.Int64
	registry := NewMeasureRegistry(
		map[Measure]SingleMeasureCalculation{
			"Source": func(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
				calls.Add(1)
				return CurrencyScenarioArray{Currency: USD, Values: []decimal.Decimal{decimal.NewFromInt(42)}}, nil
			},
		},
		[]MeasureAlias{{Source: "Source", Alias: "Copy"}},
	)
	fn := &FxNdfCalculationFunction{registry: registry}

	results, err := fn.Calculate(context.Background(), testTrade(t),
		[]Measure{"Source", "Copy"},
		testParameters(), singleScenarioData(t, 0, 0, 1300), StandardReferenceData())

	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, results["Source"], results["Copy"])
}

func TestCalculateAliasAloneYieldsInvalidInput(t *testing.T) {
	fn := NewFxNdfCalculationFunction()

	results, err := fn.Calculate(context.Background(), testTrade(t),
		[]Measure{MeasurePresentValueMultiCcy},
		testParameters(), singleScenarioData(t, 0, 0, 1300), StandardReferenceData())

	require.NoError(t, err)
	result := results[MeasurePresentValueMultiCcy]
	assert.True(t, result.IsFailure())
	assert.Equal(t, FailureInvalidInput, result.Reason())
}

func TestCalculateUnsupportedMeasure(t *testing.T) {
	fn := NewFxNdfCalculationFunction()

	results, err := fn.Calculate(context.Background(), testTrade(t),
		[]Measure{"Delta"},
		testParameters(), singleScenarioData(t, 0, 0, 1300), StandardReferenceData())

	require.NoError(t, err)
	result := results["Delta"]
	assert.True(t, result.IsFailure())
	assert.Equal(t, FailureInvalidInput, result.Reason())
	assert.Contains(t, result.Message(), "Delta")
}

func TestCalculateIsolatesMeasureFailures(t *testing.T) {
	registry := NewMeasureRegistry(
		map[Measure]SingleMeasureCalculation{
			"Good": func(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
				return CurrencyScenarioArray{Currency: USD, Values: []decimal.Decimal{decimal.NewFromInt(1)}}, nil
			},
			"Broken": func(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
				return nil, fmt.Errorf("numerical blow-up")
			},
			"Panicky": func(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
				panic("boom")
			},
		},
		nil,
	)
	fn := &FxNdfCalculationFunction{registry: registry}

	results, err := fn.Calculate(context.Background(), testTrade(t),
		[]Measure{"Good", "Broken", "Panicky"},
		testParameters(), singleScenarioData(t, 0, 0, 1300), StandardReferenceData())

	require.NoError(t, err)
	assert.True(t, results["Good"].IsSuccess())
	assert.Equal(t, FailureCalculation, results["Broken"].Reason())
	assert.Contains(t, results["Broken"].Message(), "numerical blow-up")
	assert.Equal(t, FailureInternal, results["Panicky"].Reason())
}

func TestCalculateMissingMarketData(t *testing.T) {
	fn := NewFxNdfCalculationFunction()
	// 只有 USD 曲线，KRW 缺失
	data, err := NewScenarioMarketData(testValuationDate, 1,
		map[Currency][]*Curve{USD: {flatCurve(t, USD, 0.03)}},
		map[CurrencyPair][]decimal.Decimal{
			{Base: USD, Counter: KRW}: {decimal.NewFromInt(1300)},
		},
	)
	require.NoError(t, err)

	results, calcErr := fn.Calculate(context.Background(), testTrade(t),
		[]Measure{MeasurePresentValue},
		testParameters(), data, StandardReferenceData())

	require.NoError(t, calcErr)
	result := results[MeasurePresentValue]
	assert.True(t, result.IsFailure())
	assert.Equal(t, FailureMissingData, result.Reason())
}

func TestCalculateEmptyMeasures(t *testing.T) {
	fn := NewFxNdfCalculationFunction()

	results, err := fn.Calculate(context.Background(), testTrade(t), nil,
		testParameters(), singleScenarioData(t, 0, 0, 1300), StandardReferenceData())

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCalculateDuplicateMeasuresCollapse(t *testing.T) {
	fn := NewFxNdfCalculationFunction()

	results, err := fn.Calculate(context.Background(), testTrade(t),
		[]Measure{MeasurePresentValue, MeasurePresentValue, MeasurePresentValue},
		testParameters(), singleScenarioData(t, 0, 0, 1300), StandardReferenceData())

	require.NoError(t, err)
	require.Len(t, results, 2) // PresentValue 及其别名
	assert.True(t, results[MeasurePresentValue].IsSuccess())
}

func TestCalculateCancelledContext(t *testing.T) {
	fn := NewFxNdfCalculationFunction()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := fn.Calculate(ctx, testTrade(t),
		[]Measure{MeasurePresentValue, MeasurePv01},
		testParameters(), singleScenarioData(t, 0, 0, 1300), StandardReferenceData())

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCalculateResolveFailureAborts(t *testing.T) {
	fn := NewFxNdfCalculationFunction()
	trade := testTrade(t)
	trade.Product.PaymentDate.Calendar = "BOGUS"

	results, err := fn.Calculate(context.Background(), trade,
		[]Measure{MeasurePresentValue},
		testParameters(), singleScenarioData(t, 0, 0, 1300), StandardReferenceData())

	require.ErrorIs(t, err, ErrUnknownCalendar)
	assert.Nil(t, results)
}

func TestCalculateMissingLookupAborts(t *testing.T) {
	fn := NewFxNdfCalculationFunction()

	results, err := fn.Calculate(context.Background(), testTrade(t),
		[]Measure{MeasurePresentValue},
		NewCalculationParameters(), singleScenarioData(t, 0, 0, 1300), StandardReferenceData())

	require.ErrorIs(t, err, ErrMissingParameter)
	assert.Nil(t, results)
}

func TestRequirementsDerivedFromTradeCurrencies(t *testing.T) {
	fn := NewFxNdfCalculationFunction()

	reqs, err := fn.Requirements(testTrade(t), []Measure{MeasurePresentValue}, testParameters(), StandardReferenceData())

	require.NoError(t, err)
	assert.True(t, reqs.Contains(MarketDataKey{Type: KeyTypeDiscountCurve, Name: "USD"}))
	assert.True(t, reqs.Contains(MarketDataKey{Type: KeyTypeDiscountCurve, Name: "KRW"}))
	assert.ElementsMatch(t, []Currency{USD, KRW}, reqs.OutputCurrencies())
}

func TestSupportedMeasuresIncludeAlias(t *testing.T) {
	fn := NewFxNdfCalculationFunction()
	supported := fn.SupportedMeasures()

	assert.Contains(t, supported, MeasurePresentValue)
	assert.Contains(t, supported, MeasurePresentValueMultiCcy)
	assert.Equal(t, SortMeasures(supported), supported)
}

func TestNaturalCurrencyIsSettlementCurrency(t *testing.T) {
	fn := NewFxNdfCalculationFunction()
	assert.Equal(t, USD, fn.NaturalCurrency(testTrade(t), StandardReferenceData()))
}
