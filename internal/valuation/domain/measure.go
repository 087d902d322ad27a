package domain

import (
	"fmt"
	"sort"
)

// Measure 计量标识，唯一标识一种输出量（现值、PV01 等），可作 map 键
type Measure string

const (
	// MeasurePresentValue 现值，按报告货币转换
	MeasurePresentValue Measure = "PresentValue"
	// MeasurePresentValueMultiCcy 现值，不做货币转换，数值与 PresentValue 相同
	MeasurePresentValueMultiCcy Measure = "PresentValueMultiCurrency"
	// MeasurePv01 利率曲线平移 1bp 的现值变动
	MeasurePv01 Measure = "PV01"
	// MeasureBucketedPv01 按曲线节点分桶的 PV01
	MeasureBucketedPv01 Measure = "BucketedPV01"
	// MeasureCurrencyExposure 货币敞口
	MeasureCurrencyExposure Measure = "CurrencyExposure"
	// MeasureCurrentCash 当日现金流
	MeasureCurrentCash Measure = "CurrentCash"
	// MeasureForwardFxRate 远期汇率
	MeasureForwardFxRate Measure = "ForwardFxRate"
)

// builtinMeasures 内置计量全集
var builtinMeasures = map[Measure]struct{}{
	MeasurePresentValue:         {},
	MeasurePresentValueMultiCcy: {},
	MeasurePv01:                 {},
	MeasureBucketedPv01:         {},
	MeasureCurrencyExposure:     {},
	MeasureCurrentCash:          {},
	MeasureForwardFxRate:        {},
}

// ParseMeasure 解析计量标识，未知标识返回错误
func ParseMeasure(s string) (Measure, error) {
	m := Measure(s)
	if _, ok := builtinMeasures[m]; !ok {
		return "", fmt.Errorf("unknown measure: %q", s)
	}
	return m, nil
}

// SortMeasures 返回按字母序排序的副本
func SortMeasures(measures []Measure) []Measure {
	out := make([]Measure, len(measures))
	copy(out, measures)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
