package domain

import "github.com/shopspring/decimal"

// ScenarioResult 一个计量在所有场景下的值集合。
// 具体类型按计量族区分，编排层只关心场景数。
type ScenarioResult interface {
	ScenarioCount() int
}

// CurrencyScenarioArray 单币种金额的场景数组（现值、PV01、当日现金）
type CurrencyScenarioArray struct {
	Currency Currency          `json:"currency"`
	Values   []decimal.Decimal `json:"values"`
}

// ScenarioCount 场景数
func (a CurrencyScenarioArray) ScenarioCount() int {
	return len(a.Values)
}

// Equal 按值比较
func (a CurrencyScenarioArray) Equal(other CurrencyScenarioArray) bool {
	if a.Currency != other.Currency || len(a.Values) != len(other.Values) {
		return false
	}
	for i := range a.Values {
		if !a.Values[i].Equal(other.Values[i]) {
			return false
		}
	}
	return true
}

// MultiCurrencyScenarioArray 多币种金额的场景数组（货币敞口）
type MultiCurrencyScenarioArray struct {
	Values []MultiCurrencyAmount `json:"values"`
}

// ScenarioCount 场景数
func (a MultiCurrencyScenarioArray) ScenarioCount() int {
	return len(a.Values)
}

// RateScenarioArray 汇率的场景数组（远期汇率）
type RateScenarioArray struct {
	Pair   CurrencyPair      `json:"pair"`
	Values []decimal.Decimal `json:"values"`
}

// ScenarioCount 场景数
func (a RateScenarioArray) ScenarioCount() int {
	return len(a.Values)
}

// SensitivityBucket 单个曲线节点的敏感度
type SensitivityBucket struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// BucketedScenarioArray 分桶敏感度的场景数组（Bucketed PV01）
type BucketedScenarioArray struct {
	Currency Currency              `json:"currency"`
	Values   [][]SensitivityBucket `json:"values"`
}

// ScenarioCount 场景数
func (a BucketedScenarioArray) ScenarioCount() int {
	return len(a.Values)
}
