package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 贴现法 NDF 计量计算。
// 每个函数为纯函数，对所有场景计算一个计量；
// 计算期间不捕获错误，隔离由编排层负责。

// onePointShift 1bp 零息利率平移
const onePointShift = 1e-4

// presentValue 现值：notional × df(pay) × (1 − agreedRate/forwardRate)，以结算货币计
func presentValue(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
	product := trade.Product
	values := make([]decimal.Decimal, md.ScenarioCount())
	for i := range values {
		pv, err := presentValueScenario(product, md, i)
		if err != nil {
			return nil, err
		}
		values[i] = pv
	}
	return CurrencyScenarioArray{Currency: product.SettlementCurrency, Values: values}, nil
}

// presentValueScenario 单场景现值
func presentValueScenario(product ResolvedFxNdf, md RatesScenarioMarketData, scenario int) (decimal.Decimal, error) {
	df, err := md.DiscountFactor(product.SettlementCurrency, product.PaymentDate, scenario)
	if err != nil {
		return decimal.Zero, err
	}
	forward, err := md.FxForwardRate(product.RatePair(), product.PaymentDate, scenario)
	if err != nil {
		return decimal.Zero, err
	}
	// 结算金额系数：1 − agreedRate/forwardRate
	ratio := product.AgreedFxRate.DivRound(forward, 12)
	factor := decimal.NewFromInt(1).Sub(ratio)
	return product.SettlementNotional.Mul(factor).Mul(decimal.NewFromFloat(df)), nil
}

// pv01 全曲线平移 1bp 的现值变动
func pv01(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
	base, err := presentValue(trade, md)
	if err != nil {
		return nil, err
	}
	bumped, err := presentValue(trade, md.ParallelBumped(onePointShift))
	if err != nil {
		return nil, err
	}
	baseArr := base.(CurrencyScenarioArray)
	bumpedArr := bumped.(CurrencyScenarioArray)
	values := make([]decimal.Decimal, len(baseArr.Values))
	for i := range values {
		values[i] = bumpedArr.Values[i].Sub(baseArr.Values[i])
	}
	return CurrencyScenarioArray{Currency: baseArr.Currency, Values: values}, nil
}

// bucketedPv01 结算货币折现曲线各节点平移 1bp 的现值变动
func bucketedPv01(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
	product := trade.Product
	count := md.ScenarioCount()
	values := make([][]SensitivityBucket, count)
	for i := 0; i < count; i++ {
		curve, err := md.DiscountCurve(product.SettlementCurrency, i)
		if err != nil {
			return nil, err
		}
		basePv, err := presentValueScenario(product, md, i)
		if err != nil {
			return nil, err
		}
		buckets := make([]SensitivityBucket, len(curve.Nodes))
		for n := range curve.Nodes {
			bumpedPv, err := presentValueScenario(product, md.NodeBumped(product.SettlementCurrency, n, onePointShift), i)
			if err != nil {
				return nil, err
			}
			buckets[n] = SensitivityBucket{
				Label: curve.Nodes[n].Label,
				Value: bumpedPv.Sub(basePv),
			}
		}
		values[i] = buckets
	}
	return BucketedScenarioArray{Currency: product.SettlementCurrency, Values: values}, nil
}

// currencyExposure 货币敞口：两腿分别折现
// 结算腿 +notional × df(settle)，不可交割腿 −notional × agreedRate × df(nonDel)
func currencyExposure(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
	product := trade.Product
	count := md.ScenarioCount()
	values := make([]MultiCurrencyAmount, count)
	for i := 0; i < count; i++ {
		dfSettle, err := md.DiscountFactor(product.SettlementCurrency, product.PaymentDate, i)
		if err != nil {
			return nil, err
		}
		dfNonDel, err := md.DiscountFactor(product.NonDeliverableCurrency, product.PaymentDate, i)
		if err != nil {
			return nil, err
		}
		settleLeg := product.SettlementNotional.Mul(decimal.NewFromFloat(dfSettle))
		nonDelLeg := product.SettlementNotional.Mul(product.AgreedFxRate).Mul(decimal.NewFromFloat(dfNonDel)).Neg()
		values[i] = NewMultiCurrencyAmount(
			NewCurrencyAmount(product.SettlementCurrency, settleLeg),
			NewCurrencyAmount(product.NonDeliverableCurrency, nonDelLeg),
		)
	}
	return MultiCurrencyScenarioArray{Values: values}, nil
}

// currentCash 当日现金流：支付日为估值日时为轧差结算金额，否则为零
func currentCash(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
	product := trade.Product
	count := md.ScenarioCount()
	values := make([]decimal.Decimal, count)
	if !sameDate(product.PaymentDate, md.ValuationDate()) {
		for i := range values {
			values[i] = decimal.Zero
		}
		return CurrencyScenarioArray{Currency: product.SettlementCurrency, Values: values}, nil
	}
	for i := 0; i < count; i++ {
		rate, err := md.FxForwardRate(product.RatePair(), product.PaymentDate, i)
		if err != nil {
			return nil, err
		}
		ratio := product.AgreedFxRate.DivRound(rate, 12)
		values[i] = product.SettlementNotional.Mul(decimal.NewFromInt(1).Sub(ratio))
	}
	return CurrencyScenarioArray{Currency: product.SettlementCurrency, Values: values}, nil
}

// forwardFxRate 支付日的远期汇率
func forwardFxRate(trade ResolvedFxNdfTrade, md RatesScenarioMarketData) (ScenarioResult, error) {
	product := trade.Product
	count := md.ScenarioCount()
	values := make([]decimal.Decimal, count)
	for i := 0; i < count; i++ {
		rate, err := md.FxForwardRate(product.RatePair(), product.PaymentDate, i)
		if err != nil {
			return nil, err
		}
		values[i] = rate
	}
	return RateScenarioArray{Pair: product.RatePair(), Values: values}, nil
}

// sameDate 比较日历日期，忽略时间
func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
