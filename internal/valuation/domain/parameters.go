package domain

import "fmt"

// ParameterKind 计算参数种类，每种参数在参数集中至多一个实例
type ParameterKind string

// ParameterKindRatesLookup 利率市场数据查找能力
const ParameterKindRatesLookup ParameterKind = "RatesMarketDataLookup"

// ErrMissingParameter 缺少必需的计算参数，属配置错误，中止整个计算
var ErrMissingParameter = fmt.Errorf("missing calculation parameter")

// CalculationParameter 可放入参数集的配置对象
type CalculationParameter interface {
	ParameterKind() ParameterKind
}

// CalculationParameters 按种类索引的不可变配置集合。
// 缺少必需参数时显式报错，不做静默兜底。
type CalculationParameters struct {
	params map[ParameterKind]CalculationParameter
}

// NewCalculationParameters 从参数列表构建，后出现的同类参数覆盖先出现的
func NewCalculationParameters(params ...CalculationParameter) CalculationParameters {
	m := make(map[ParameterKind]CalculationParameter, len(params))
	for _, p := range params {
		m[p.ParameterKind()] = p
	}
	return CalculationParameters{params: m}
}

// Get 按种类查找参数，缺失时返回 ErrMissingParameter
func (p CalculationParameters) Get(kind ParameterKind) (CalculationParameter, error) {
	param, ok := p.params[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, kind)
	}
	return param, nil
}

// RatesLookupFrom 取出利率市场数据查找能力，缺失或类型不符时报配置错误
func RatesLookupFrom(p CalculationParameters) (RatesMarketDataLookup, error) {
	param, err := p.Get(ParameterKindRatesLookup)
	if err != nil {
		return nil, err
	}
	lookup, ok := param.(RatesMarketDataLookup)
	if !ok {
		return nil, fmt.Errorf("parameter %s is not a RatesMarketDataLookup: %T", ParameterKindRatesLookup, param)
	}
	return lookup, nil
}
