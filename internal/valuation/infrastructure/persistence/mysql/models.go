package mysql

import (
	"time"
)

// CalculationModel 计算记录表模型
type CalculationModel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt     time.Time `gorm:"index"`
	TradeID       string    `gorm:"column:trade_id;type:varchar(64);index;not null"`
	TradeType     string    `gorm:"column:trade_type;type:varchar(32);not null"`
	ValuationDate time.Time `gorm:"column:valuation_date;not null"`
	ScenarioCount int       `gorm:"column:scenario_count;not null"`
	Measures      string    `gorm:"column:measures;type:varchar(512);not null"`
	ResultJSON    string    `gorm:"column:result_json;type:mediumtext"`
	SuccessCount  int       `gorm:"column:success_count;not null"`
	FailureCount  int       `gorm:"column:failure_count;not null"`
}

// TableName 指定表名
func (CalculationModel) TableName() string {
	return "valuation_calculations"
}

// CurveNodeModel 折现曲线节点表模型，一条记录一个节点
type CurveNodeModel struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	CurveGroup string  `gorm:"column:curve_group;type:varchar(64);index:idx_curve,priority:1;not null"`
	Currency   string  `gorm:"column:currency;type:varchar(10);index:idx_curve,priority:2;not null"`
	Label      string  `gorm:"column:label;type:varchar(16);not null"`
	TimeYears  float64 `gorm:"column:time_years;type:decimal(12,6);not null"`
	ZeroRate   float64 `gorm:"column:zero_rate;type:decimal(12,8);not null"`
}

// TableName 指定表名
func (CurveNodeModel) TableName() string {
	return "valuation_curve_nodes"
}

// FxSpotModel 即期汇率表模型
type FxSpotModel struct {
	ID            uint `gorm:"primaryKey;autoIncrement"`
	UpdatedAt     time.Time
	BaseCurrency  string    `gorm:"column:base_currency;type:varchar(10);uniqueIndex:idx_pair,priority:1;not null"`
	QuoteCurrency string    `gorm:"column:quote_currency;type:varchar(10);uniqueIndex:idx_pair,priority:2;not null"`
	Rate          float64   `gorm:"column:rate;type:decimal(20,10);not null"`
}

// TableName 指定表名
func (FxSpotModel) TableName() string {
	return "valuation_fx_spots"
}
