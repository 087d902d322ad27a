package domain

import "sort"

// MarketDataKeyType 市场数据键类型
type MarketDataKeyType string

const (
	// KeyTypeDiscountCurve 折现曲线，Name 为货币代码
	KeyTypeDiscountCurve MarketDataKeyType = "DiscountCurve"
	// KeyTypeFxSpot 即期汇率，Name 为货币对（如 "USD/KRW"）
	KeyTypeFxSpot MarketDataKeyType = "FxSpot"
)

// MarketDataKey 市场数据键，标识一项具体的市场数据需求
type MarketDataKey struct {
	Type MarketDataKeyType `json:"type"`
	Name string            `json:"name"`
}

// FunctionRequirements 计算所需市场数据的声明集合。
// 在市场数据存在之前即可计算，聚合时只做并集。
type FunctionRequirements struct {
	keys             map[MarketDataKey]struct{}
	outputCurrencies map[Currency]struct{}
}

// NewFunctionRequirements 创建空需求集合
func NewFunctionRequirements() FunctionRequirements {
	return FunctionRequirements{
		keys:             make(map[MarketDataKey]struct{}),
		outputCurrencies: make(map[Currency]struct{}),
	}
}

// WithKeys 返回加入指定键后的新集合
func (r FunctionRequirements) WithKeys(keys ...MarketDataKey) FunctionRequirements {
	out := r.clone()
	for _, k := range keys {
		out.keys[k] = struct{}{}
	}
	return out
}

// WithOutputCurrencies 返回加入输出货币后的新集合
func (r FunctionRequirements) WithOutputCurrencies(ccys ...Currency) FunctionRequirements {
	out := r.clone()
	for _, c := range ccys {
		out.outputCurrencies[c] = struct{}{}
	}
	return out
}

// Union 与另一集合求并
func (r FunctionRequirements) Union(other FunctionRequirements) FunctionRequirements {
	out := r.clone()
	for k := range other.keys {
		out.keys[k] = struct{}{}
	}
	for c := range other.outputCurrencies {
		out.outputCurrencies[c] = struct{}{}
	}
	return out
}

// Contains 是否包含指定键
func (r FunctionRequirements) Contains(key MarketDataKey) bool {
	_, ok := r.keys[key]
	return ok
}

// ContainsAll 是否为另一集合的超集
func (r FunctionRequirements) ContainsAll(other FunctionRequirements) bool {
	for k := range other.keys {
		if !r.Contains(k) {
			return false
		}
	}
	return true
}

// Keys 返回全部键，按类型与名称排序
func (r FunctionRequirements) Keys() []MarketDataKey {
	out := make([]MarketDataKey, 0, len(r.keys))
	for k := range r.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// OutputCurrencies 返回输出货币，按字母序
func (r FunctionRequirements) OutputCurrencies() []Currency {
	out := make([]Currency, 0, len(r.outputCurrencies))
	for c := range r.outputCurrencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r FunctionRequirements) clone() FunctionRequirements {
	out := NewFunctionRequirements()
	for k := range r.keys {
		out.keys[k] = struct{}{}
	}
	for c := range r.outputCurrencies {
		out.outputCurrencies[c] = struct{}{}
	}
	return out
}
