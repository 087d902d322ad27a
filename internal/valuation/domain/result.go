package domain

import "fmt"

// FailureReason 失败原因分类
type FailureReason string

const (
	// FailureInvalidInput 请求了不支持的计量或无效输入
	FailureInvalidInput FailureReason = "INVALID_INPUT"
	// FailureMissingData 缺少所需市场数据
	FailureMissingData FailureReason = "MISSING_DATA"
	// FailureCalculation 计算过程出错
	FailureCalculation FailureReason = "CALCULATION_FAILED"
	// FailureInternal 未预期的内部错误（含 panic 恢复）
	FailureInternal FailureReason = "ERROR"
)

// Result 计量计算结果，成功携带各场景的值，失败携带原因与描述。
// 失败以值的形式传递，编排层之外不会抛出。
type Result struct {
	value   ScenarioResult
	reason  FailureReason
	message string
	failed  bool
}

// SuccessResult 构建成功结果
func SuccessResult(value ScenarioResult) Result {
	return Result{value: value}
}

// FailureResult 构建失败结果
func FailureResult(reason FailureReason, format string, args ...any) Result {
	return Result{
		reason:  reason,
		message: fmt.Sprintf(format, args...),
		failed:  true,
	}
}

// IsSuccess 是否成功
func (r Result) IsSuccess() bool {
	return !r.failed
}

// IsFailure 是否失败
func (r Result) IsFailure() bool {
	return r.failed
}

// Value 返回成功值，失败时返回错误
func (r Result) Value() (ScenarioResult, error) {
	if r.failed {
		return nil, fmt.Errorf("result is failure (%s): %s", r.reason, r.message)
	}
	return r.value, nil
}

// Reason 失败原因，成功结果返回空
func (r Result) Reason() FailureReason {
	return r.reason
}

// Message 失败描述，成功结果返回空
func (r Result) Message() string {
	return r.message
}
