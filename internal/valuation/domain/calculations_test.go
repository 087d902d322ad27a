package domain

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedTestTrade(t *testing.T) ResolvedFxNdfTrade {
	t.Helper()
	resolved, err := testTrade(t).Resolve(StandardReferenceData())
	require.NoError(t, err)
	return resolved
}

func ratesView(t *testing.T, usdRate, krwRate, spot float64) RatesScenarioMarketData {
	t.Helper()
	return NewRatesScenarioMarketData(singleScenarioData(t, usdRate, krwRate, spot))
}

func TestPresentValueFlatZeroRates(t *testing.T) {
	// 零利率下 df=1、远期=即期，PV = N × (1 − K/spot)
	result, err := presentValue(resolvedTestTrade(t), ratesView(t, 0, 0, 1300))

	require.NoError(t, err)
	arr := result.(CurrencyScenarioArray)
	assert.Equal(t, USD, arr.Currency)
	require.Len(t, arr.Values, 1)
	expected := 1_000_000 * (1 - 1250.0/1300.0)
	assert.InDelta(t, expected, arr.Values[0].InexactFloat64(), 0.01)
}

func TestPresentValueWithDiscounting(t *testing.T) {
	trade := resolvedTestTrade(t)
	md := ratesView(t, 0.03, 0.01, 1300)

	result, err := presentValue(trade, md)

	require.NoError(t, err)
	arr := result.(CurrencyScenarioArray)
	tf := trade.Product.PaymentDate.Sub(testValuationDate).Hours() / 24 / 365
	fwd := 1300 * math.Exp(-(0.03-0.01)*tf)
	df := math.Exp(-0.03 * tf)
	expected := 1_000_000 * df * (1 - 1250.0/fwd)
	assert.InDelta(t, expected, arr.Values[0].InexactFloat64(), 0.5)
}

func TestForwardFxRateInterestRateParity(t *testing.T) {
	trade := resolvedTestTrade(t)

	result, err := forwardFxRate(trade, ratesView(t, 0.03, 0.01, 1300))

	require.NoError(t, err)
	arr := result.(RateScenarioArray)
	assert.Equal(t, CurrencyPair{Base: USD, Counter: KRW}, arr.Pair)
	tf := trade.Product.PaymentDate.Sub(testValuationDate).Hours() / 24 / 365
	expected := 1300 * math.Exp(-(0.03-0.01)*tf)
	assert.InDelta(t, expected, arr.Values[0].InexactFloat64(), 0.01)
}

func TestForwardFxRateEqualsSpotWhenRatesMatch(t *testing.T) {
	result, err := forwardFxRate(resolvedTestTrade(t), ratesView(t, 0.02, 0.02, 1300))

	require.NoError(t, err)
	arr := result.(RateScenarioArray)
	assert.InDelta(t, 1300, arr.Values[0].InexactFloat64(), 1e-6)
}

func TestPv01NegativeForPositivePresentValue(t *testing.T) {
	trade := resolvedTestTrade(t)
	md := ratesView(t, 0.03, 0.01, 1300)

	pv, err := presentValue(trade, md)
	require.NoError(t, err)
	require.True(t, pv.(CurrencyScenarioArray).Values[0].IsPositive())

	result, err := pv01(trade, md)
	require.NoError(t, err)
	arr := result.(CurrencyScenarioArray)
	assert.Equal(t, USD, arr.Currency)
	assert.True(t, arr.Values[0].IsNegative(), "pv01 = %s", arr.Values[0])
}

func TestPv01DoesNotMutateBaseView(t *testing.T) {
	trade := resolvedTestTrade(t)
	md := ratesView(t, 0.03, 0.01, 1300)

	before, err := presentValue(trade, md)
	require.NoError(t, err)
	_, err = pv01(trade, md)
	require.NoError(t, err)
	after, err := presentValue(trade, md)
	require.NoError(t, err)

	assert.True(t, before.(CurrencyScenarioArray).Equal(after.(CurrencyScenarioArray)))
}

func TestBucketedPv01OneBucketPerCurveNode(t *testing.T) {
	trade := resolvedTestTrade(t)
	md := ratesView(t, 0.03, 0.01, 1300)

	result, err := bucketedPv01(trade, md)

	require.NoError(t, err)
	arr := result.(BucketedScenarioArray)
	assert.Equal(t, USD, arr.Currency)
	require.Len(t, arr.Values, 1)
	buckets := arr.Values[0]
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"3M", "1Y", "5Y"}, []string{buckets[0].Label, buckets[1].Label, buckets[2].Label})
	// 支付日前的节点才有敏感度贡献，但分桶结构必须覆盖全部节点
	var total decimal.Decimal
	for _, b := range buckets {
		total = total.Add(b.Value)
	}
	assert.False(t, total.IsZero())
}

func TestCurrencyExposureTwoLegs(t *testing.T) {
	trade := resolvedTestTrade(t)
	md := ratesView(t, 0.03, 0.01, 1300)

	result, err := currencyExposure(trade, md)

	require.NoError(t, err)
	arr := result.(MultiCurrencyScenarioArray)
	require.Len(t, arr.Values, 1)
	exposure := arr.Values[0]
	assert.ElementsMatch(t, []Currency{USD, KRW}, exposure.Currencies())

	tf := trade.Product.PaymentDate.Sub(testValuationDate).Hours() / 24 / 365
	assert.InDelta(t, 1_000_000*math.Exp(-0.03*tf), exposure.Amount(USD).InexactFloat64(), 0.5)
	assert.InDelta(t, -1_000_000*1250*math.Exp(-0.01*tf), exposure.Amount(KRW).InexactFloat64(), 500)
}

func TestCurrentCashZeroBeforePayment(t *testing.T) {
	result, err := currentCash(resolvedTestTrade(t), ratesView(t, 0.03, 0.01, 1300))

	require.NoError(t, err)
	arr := result.(CurrencyScenarioArray)
	assert.Equal(t, USD, arr.Currency)
	assert.True(t, arr.Values[0].IsZero())
}

func TestCurrentCashOnPaymentDate(t *testing.T) {
	trade := resolvedTestTrade(t)
	trade.Product.PaymentDate = testValuationDate
	trade.Product.FixingDate = testValuationDate

	result, err := currentCash(trade, ratesView(t, 0.03, 0.01, 1300))

	require.NoError(t, err)
	arr := result.(CurrencyScenarioArray)
	// 支付日当天 t=0，远期=即期
	expected := 1_000_000 * (1 - 1250.0/1300.0)
	assert.InDelta(t, expected, arr.Values[0].InexactFloat64(), 0.01)
}

func TestSameDateIgnoresClockTime(t *testing.T) {
	a := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)
	b := time.Date(2026, 8, 31, 17, 0, 0, 0, time.UTC)
	assert.True(t, sameDate(a, b))
	assert.False(t, sameDate(a, b.AddDate(0, 0, 1)))
}
