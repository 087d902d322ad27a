package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency ISO 4217 货币代码
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	KRW Currency = "KRW"
	CNY Currency = "CNY"
	BRL Currency = "BRL"
	INR Currency = "INR"
)

// ParseCurrency 解析货币代码，要求三位大写字母
func ParseCurrency(s string) (Currency, error) {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return "", fmt.Errorf("invalid currency code: %q", s)
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("invalid currency code: %q", s)
		}
	}
	return Currency(s), nil
}

// CurrencyPair 货币对，Base/Counter，汇率表示 1 Base = rate Counter
type CurrencyPair struct {
	Base    Currency
	Counter Currency
}

// String 格式化为 "USD/KRW"
func (p CurrencyPair) String() string {
	return string(p.Base) + "/" + string(p.Counter)
}

// Inverse 反转货币对
func (p CurrencyPair) Inverse() CurrencyPair {
	return CurrencyPair{Base: p.Counter, Counter: p.Base}
}

// ParseCurrencyPair 解析 "USD/KRW" 形式的货币对
func ParseCurrencyPair(s string) (CurrencyPair, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return CurrencyPair{}, fmt.Errorf("invalid currency pair: %q", s)
	}
	base, err := ParseCurrency(parts[0])
	if err != nil {
		return CurrencyPair{}, err
	}
	counter, err := ParseCurrency(parts[1])
	if err != nil {
		return CurrencyPair{}, err
	}
	if base == counter {
		return CurrencyPair{}, fmt.Errorf("currency pair must contain two distinct currencies: %q", s)
	}
	return CurrencyPair{Base: base, Counter: counter}, nil
}

// CurrencyAmount 带货币的金额
type CurrencyAmount struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewCurrencyAmount 创建金额
func NewCurrencyAmount(ccy Currency, amount decimal.Decimal) CurrencyAmount {
	return CurrencyAmount{Currency: ccy, Amount: amount}
}

// Add 同币种金额相加，币种不同返回错误
func (a CurrencyAmount) Add(other CurrencyAmount) (CurrencyAmount, error) {
	if a.Currency != other.Currency {
		return CurrencyAmount{}, fmt.Errorf("currency mismatch: %s vs %s", a.Currency, other.Currency)
	}
	return CurrencyAmount{Currency: a.Currency, Amount: a.Amount.Add(other.Amount)}, nil
}

// Negated 取反
func (a CurrencyAmount) Negated() CurrencyAmount {
	return CurrencyAmount{Currency: a.Currency, Amount: a.Amount.Neg()}
}

// MultiCurrencyAmount 多币种金额集合，按货币聚合，币种有序
type MultiCurrencyAmount struct {
	amounts map[Currency]decimal.Decimal
}

// NewMultiCurrencyAmount 从若干金额构建，同币种自动聚合
func NewMultiCurrencyAmount(amounts ...CurrencyAmount) MultiCurrencyAmount {
	m := MultiCurrencyAmount{amounts: make(map[Currency]decimal.Decimal, len(amounts))}
	for _, a := range amounts {
		m.amounts[a.Currency] = m.amounts[a.Currency].Add(a.Amount)
	}
	return m
}

// Amount 返回指定货币的金额，未出现的货币为零
func (m MultiCurrencyAmount) Amount(ccy Currency) decimal.Decimal {
	return m.amounts[ccy]
}

// Currencies 返回出现过的货币，按字母序
func (m MultiCurrencyAmount) Currencies() []Currency {
	out := make([]Currency, 0, len(m.amounts))
	for ccy := range m.amounts {
		out = append(out, ccy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Amounts 返回全部金额，按货币字母序
func (m MultiCurrencyAmount) Amounts() []CurrencyAmount {
	ccys := m.Currencies()
	out := make([]CurrencyAmount, 0, len(ccys))
	for _, ccy := range ccys {
		out = append(out, CurrencyAmount{Currency: ccy, Amount: m.amounts[ccy]})
	}
	return out
}

// Equal 按值比较
func (m MultiCurrencyAmount) Equal(other MultiCurrencyAmount) bool {
	if len(m.amounts) != len(other.amounts) {
		return false
	}
	for ccy, amt := range m.amounts {
		if !amt.Equal(other.amounts[ccy]) {
			return false
		}
	}
	return true
}
