package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeType 交易类型标识
type TradeType string

// TradeTypeFxNdf 无本金交割远期外汇
const TradeTypeFxNdf TradeType = "FxNdf"

// TradeInfo 交易基本信息
type TradeInfo struct {
	TradeID      string    `json:"trade_id"`
	Counterparty string    `json:"counterparty"`
	TradeDate    time.Time `json:"trade_date"`
}

// FxNdf 无本金交割远期外汇产品。
// 名义金额以结算货币表示，约定汇率报价为 1 结算货币 = rate 不可交割货币。
// 到期只按定盘汇率与约定汇率的差额在结算货币中轧差交割。
type FxNdf struct {
	// SettlementCurrency 结算货币，实际交割发生的货币
	SettlementCurrency Currency `json:"settlement_currency"`
	// NonDeliverableCurrency 不可交割货币
	NonDeliverableCurrency Currency `json:"non_deliverable_currency"`
	// SettlementNotional 结算货币名义金额，必须为正
	SettlementNotional decimal.Decimal `json:"settlement_notional"`
	// AgreedFxRate 约定汇率，必须为正
	AgreedFxRate decimal.Decimal `json:"agreed_fx_rate"`
	// FixingDate 定盘日
	FixingDate time.Time `json:"fixing_date"`
	// PaymentDate 支付日，含营业日调整
	PaymentDate AdjustableDate `json:"payment_date"`
}

// NewFxNdf 创建 NDF 产品，构造时校验不变量
func NewFxNdf(
	settlementCcy Currency,
	nonDeliverableCcy Currency,
	notional decimal.Decimal,
	agreedRate decimal.Decimal,
	fixingDate time.Time,
	paymentDate AdjustableDate,
) (FxNdf, error) {
	if settlementCcy == nonDeliverableCcy {
		return FxNdf{}, fmt.Errorf("settlement and non-deliverable currencies must differ: %s", settlementCcy)
	}
	if !notional.IsPositive() {
		return FxNdf{}, fmt.Errorf("settlement notional must be positive: %s", notional)
	}
	if !agreedRate.IsPositive() {
		return FxNdf{}, fmt.Errorf("agreed FX rate must be positive: %s", agreedRate)
	}
	if fixingDate.After(paymentDate.Unadjusted) {
		return FxNdf{}, fmt.Errorf("fixing date %s must not be after payment date %s",
			fixingDate.Format("2006-01-02"), paymentDate.Unadjusted.Format("2006-01-02"))
	}
	return FxNdf{
		SettlementCurrency:     settlementCcy,
		NonDeliverableCurrency: nonDeliverableCcy,
		SettlementNotional:     notional,
		AgreedFxRate:           agreedRate,
		FixingDate:             fixingDate,
		PaymentDate:            paymentDate,
	}, nil
}

// RatePair 约定汇率对应的货币对（结算货币为 Base）
func (p FxNdf) RatePair() CurrencyPair {
	return CurrencyPair{Base: p.SettlementCurrency, Counter: p.NonDeliverableCurrency}
}

// Currencies 产品涉及的两种货币
func (p FxNdf) Currencies() []Currency {
	return []Currency{p.SettlementCurrency, p.NonDeliverableCurrency}
}

// FxNdfTrade 未解析的 NDF 交易
type FxNdfTrade struct {
	Info    TradeInfo `json:"info"`
	Product FxNdf     `json:"product"`
}

// ResolvedFxNdf 已解析的 NDF 产品，所有日期调整已固化
type ResolvedFxNdf struct {
	SettlementCurrency     Currency
	NonDeliverableCurrency Currency
	SettlementNotional     decimal.Decimal
	AgreedFxRate           decimal.Decimal
	FixingDate             time.Time
	// PaymentDate 调整后的实际支付日
	PaymentDate time.Time
}

// RatePair 约定汇率对应的货币对
func (p ResolvedFxNdf) RatePair() CurrencyPair {
	return CurrencyPair{Base: p.SettlementCurrency, Counter: p.NonDeliverableCurrency}
}

// ResolvedFxNdfTrade 已解析的 NDF 交易，数值计算就绪。
// 每次计算调用只解析一次，所有计量和场景共享同一实例，解析后不再变更。
type ResolvedFxNdfTrade struct {
	Info    TradeInfo
	Product ResolvedFxNdf
}

// Resolve 将交易解析为数值计算就绪的形式。
// 纯函数且幂等：相同引用数据下重复解析得到相等结果。
// 日历缺失等解析失败会中止整个计算，而不是单个计量失败。
func (t FxNdfTrade) Resolve(refData ReferenceData) (ResolvedFxNdfTrade, error) {
	paymentDate, err := t.Product.PaymentDate.Adjust(refData)
	if err != nil {
		return ResolvedFxNdfTrade{}, fmt.Errorf("failed to resolve trade %s: %w", t.Info.TradeID, err)
	}
	return ResolvedFxNdfTrade{
		Info: t.Info,
		Product: ResolvedFxNdf{
			SettlementCurrency:     t.Product.SettlementCurrency,
			NonDeliverableCurrency: t.Product.NonDeliverableCurrency,
			SettlementNotional:     t.Product.SettlementNotional,
			AgreedFxRate:           t.Product.AgreedFxRate,
			FixingDate:             t.Product.FixingDate,
			PaymentDate:            paymentDate,
		},
	}, nil
}
