package domain

import (
	"fmt"
	"math"
)

// CurveNode 零息利率曲线节点
type CurveNode struct {
	// Label 节点标签，如 "1Y"
	Label string `json:"label"`
	// TimeYears 距估值日的年化期限
	TimeYears float64 `json:"time_years"`
	// ZeroRate 连续复利零息利率
	ZeroRate float64 `json:"zero_rate"`
}

// Curve 零息折现曲线，节点按期限升序，节点间线性插值，端点外平推
type Curve struct {
	Name     string      `json:"name"`
	Currency Currency    `json:"currency"`
	Nodes    []CurveNode `json:"nodes"`
}

// NewCurve 创建曲线，校验节点非空且期限严格递增
func NewCurve(name string, ccy Currency, nodes []CurveNode) (*Curve, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("curve %s must have at least one node", name)
	}
	for i, n := range nodes {
		if n.TimeYears < 0 {
			return nil, fmt.Errorf("curve %s node %d has negative time: %f", name, i, n.TimeYears)
		}
		if i > 0 && nodes[i-1].TimeYears >= n.TimeYears {
			return nil, fmt.Errorf("curve %s node times must be strictly increasing", name)
		}
	}
	copied := make([]CurveNode, len(nodes))
	copy(copied, nodes)
	return &Curve{Name: name, Currency: ccy, Nodes: copied}, nil
}

// ZeroRateAt 插值得到期限 t 的零息利率
func (c *Curve) ZeroRateAt(t float64) float64 {
	nodes := c.Nodes
	if t <= nodes[0].TimeYears {
		return nodes[0].ZeroRate
	}
	last := nodes[len(nodes)-1]
	if t >= last.TimeYears {
		return last.ZeroRate
	}
	for i := 1; i < len(nodes); i++ {
		if t <= nodes[i].TimeYears {
			lo, hi := nodes[i-1], nodes[i]
			w := (t - lo.TimeYears) / (hi.TimeYears - lo.TimeYears)
			return lo.ZeroRate + w*(hi.ZeroRate-lo.ZeroRate)
		}
	}
	return last.ZeroRate
}

// DiscountFactor 期限 t 的折现因子
func (c *Curve) DiscountFactor(t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	return math.Exp(-c.ZeroRateAt(t) * t)
}

// ParallelShifted 所有节点零息利率平移 shift 后的新曲线
func (c *Curve) ParallelShifted(shift float64) *Curve {
	nodes := make([]CurveNode, len(c.Nodes))
	copy(nodes, c.Nodes)
	for i := range nodes {
		nodes[i].ZeroRate += shift
	}
	return &Curve{Name: c.Name, Currency: c.Currency, Nodes: nodes}
}

// NodeShifted 仅第 index 个节点平移 shift 后的新曲线
func (c *Curve) NodeShifted(index int, shift float64) (*Curve, error) {
	if index < 0 || index >= len(c.Nodes) {
		return nil, fmt.Errorf("curve %s has no node %d", c.Name, index)
	}
	nodes := make([]CurveNode, len(c.Nodes))
	copy(nodes, c.Nodes)
	nodes[index].ZeroRate += shift
	return &Curve{Name: c.Name, Currency: c.Currency, Nodes: nodes}, nil
}
