package application

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/valuationengine/internal/valuation/domain"
)

// ScenarioShiftRequest 单个市场数据扰动场景的输入
type ScenarioShiftRequest struct {
	// Name 场景名称
	Name string `json:"name"`
	// CurveShiftBp 全部折现曲线的平行偏移（基点）
	CurveShiftBp float64 `json:"curve_shift_bp"`
	// FxScale 即期汇率缩放因子，零值按 1.0 处理
	FxScale float64 `json:"fx_scale"`
}

// CalculateRequest 计量计算命令
type CalculateRequest struct {
	TradeID                string
	Counterparty           string
	TradeDate              time.Time
	ValuationDate          time.Time
	SettlementCurrency     string
	NonDeliverableCurrency string
	SettlementNotional     decimal.Decimal
	AgreedFxRate           decimal.Decimal
	FixingDate             time.Time
	PaymentDate            time.Time
	// PaymentConvention 支付日营业日调整惯例，空值默认 ModifiedFollowing
	PaymentConvention string
	// PaymentCalendar 支付日假日日历，空值默认 WeekendOnly
	PaymentCalendar string
	Measures        []string
	Scenarios       []ScenarioShiftRequest
}

// CalculateCommand 命令别名
type CalculateCommand = CalculateRequest

// MeasureResultDTO 单个计量的结果
type MeasureResultDTO struct {
	Measure        string `json:"measure"`
	Success        bool   `json:"success"`
	Value          any    `json:"value,omitempty"`
	FailureReason  string `json:"failure_reason,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

// CalculationResultDTO 一次计算请求的完整结果
type CalculationResultDTO struct {
	TradeID       string             `json:"trade_id"`
	TradeType     string             `json:"trade_type"`
	ValuationDate time.Time          `json:"valuation_date"`
	ScenarioCount int                `json:"scenario_count"`
	Results       []MeasureResultDTO `json:"results"`
	SuccessCount  int                `json:"success_count"`
	FailureCount  int                `json:"failure_count"`
}

// CalculationRecordDTO 历史计算记录
type CalculationRecordDTO struct {
	ID            uint      `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	TradeID       string    `json:"trade_id"`
	TradeType     string    `json:"trade_type"`
	ValuationDate time.Time `json:"valuation_date"`
	ScenarioCount int       `json:"scenario_count"`
	Measures      []string  `json:"measures"`
	ResultJSON    string    `json:"result_json"`
	SuccessCount  int       `json:"success_count"`
	FailureCount  int       `json:"failure_count"`
}

// multiCurrencyValues 货币敞口的可序列化形式
type multiCurrencyValues struct {
	Values [][]domain.CurrencyAmount `json:"values"`
}

// toMeasureResultDTO 将领域结果转为 DTO，多币种金额展开为有序金额列表
func toMeasureResultDTO(measure domain.Measure, result domain.Result) MeasureResultDTO {
	dto := MeasureResultDTO{Measure: string(measure), Success: result.IsSuccess()}
	if result.IsFailure() {
		dto.FailureReason = string(result.Reason())
		dto.FailureMessage = result.Message()
		return dto
	}
	value, err := result.Value()
	if err != nil {
		dto.Success = false
		dto.FailureReason = string(domain.FailureInternal)
		dto.FailureMessage = err.Error()
		return dto
	}
	switch v := value.(type) {
	case domain.MultiCurrencyScenarioArray:
		out := multiCurrencyValues{Values: make([][]domain.CurrencyAmount, 0, len(v.Values))}
		for _, mca := range v.Values {
			out.Values = append(out.Values, mca.Amounts())
		}
		dto.Value = out
	default:
		dto.Value = value
	}
	return dto
}

func toCalculationRecordDTO(record *domain.CalculationRecord) *CalculationRecordDTO {
	measures := make([]string, 0, len(record.Measures))
	for _, m := range record.Measures {
		measures = append(measures, string(m))
	}
	return &CalculationRecordDTO{
		ID:            record.ID,
		CreatedAt:     record.CreatedAt,
		TradeID:       record.TradeID,
		TradeType:     string(record.TradeType),
		ValuationDate: record.ValuationDate,
		ScenarioCount: record.ScenarioCount,
		Measures:      measures,
		ResultJSON:    record.ResultJSON,
		SuccessCount:  record.SuccessCount,
		FailureCount:  record.FailureCount,
	}
}

func (r *CalculateRequest) validate() error {
	if r.TradeID == "" {
		return fmt.Errorf("trade_id is required")
	}
	if r.ValuationDate.IsZero() {
		return fmt.Errorf("valuation_date is required")
	}
	if len(r.Measures) == 0 {
		return fmt.Errorf("at least one measure is required")
	}
	return nil
}
