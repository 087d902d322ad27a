package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/valuationengine/internal/valuation/application"
	"github.com/wyfcoding/valuationengine/pkg/logger"
	"github.com/wyfcoding/valuationengine/pkg/response"
)

const dateLayout = "2006-01-02"

// ValuationHandler HTTP 处理器
type ValuationHandler struct {
	commandService *application.ValuationCommandService
	queryService   *application.ValuationQueryService
}

// NewValuationHandler 创建 HTTP 处理器实例
func NewValuationHandler(
	commandService *application.ValuationCommandService,
	queryService *application.ValuationQueryService,
) *ValuationHandler {
	return &ValuationHandler{
		commandService: commandService,
		queryService:   queryService,
	}
}

// RegisterRoutes 注册路由
func (h *ValuationHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/valuation")
	{
		api.POST("/calculate", h.Calculate)
		api.GET("/measures", h.ListMeasures)
		api.GET("/results/:trade_id", h.GetLatestResult)
		api.GET("/results/:trade_id/history", h.GetHistory)
	}
}

// calculateRequest 计算请求体，日期使用 yyyy-MM-dd
type calculateRequest struct {
	TradeID                string                             `json:"trade_id" binding:"required"`
	Counterparty           string                             `json:"counterparty"`
	TradeDate              string                             `json:"trade_date"`
	ValuationDate          string                             `json:"valuation_date" binding:"required"`
	SettlementCurrency     string                             `json:"settlement_currency" binding:"required"`
	NonDeliverableCurrency string                             `json:"non_deliverable_currency" binding:"required"`
	SettlementNotional     decimal.Decimal                    `json:"settlement_notional"`
	AgreedFxRate           decimal.Decimal                    `json:"agreed_fx_rate"`
	FixingDate             string                             `json:"fixing_date" binding:"required"`
	PaymentDate            string                             `json:"payment_date" binding:"required"`
	PaymentConvention      string                             `json:"payment_convention"`
	PaymentCalendar        string                             `json:"payment_calendar"`
	Measures               []string                           `json:"measures" binding:"required"`
	Scenarios              []application.ScenarioShiftRequest `json:"scenarios"`
}

// Calculate 对单笔 NDF 交易执行计量计算
func (h *ValuationHandler) Calculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	cmd, err := req.toCommand()
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.commandService.Calculate(c.Request.Context(), cmd)
	if err != nil {
		logger.Error(c.Request.Context(), "calculation request failed",
			"trade_id", cmd.TradeID, "error", err)
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, "calculation failed", err.Error())
		return
	}
	response.Success(c, result)
}

// ListMeasures 支持的计量全集
func (h *ValuationHandler) ListMeasures(c *gin.Context) {
	response.Success(c, gin.H{"measures": h.commandService.SupportedMeasures()})
}

// GetLatestResult 指定交易的最近一次计算记录
func (h *ValuationHandler) GetLatestResult(c *gin.Context) {
	tradeID := c.Param("trade_id")
	record, err := h.queryService.GetLatestResult(c.Request.Context(), tradeID)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to get latest result",
			"trade_id", tradeID, "error", err)
		response.Error(c, "failed to get result", err.Error())
		return
	}
	if record == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "result not found", "")
		return
	}
	response.Success(c, record)
}

// GetHistory 指定交易的历史计算记录
func (h *ValuationHandler) GetHistory(c *gin.Context) {
	tradeID := c.Param("trade_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, err := h.queryService.GetHistory(c.Request.Context(), tradeID, limit)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to get result history",
			"trade_id", tradeID, "error", err)
		response.Error(c, "failed to get history", err.Error())
		return
	}
	response.Success(c, gin.H{"trade_id": tradeID, "records": records})
}

func (r *calculateRequest) toCommand() (*application.CalculateRequest, error) {
	valuationDate, err := parseDate("valuation_date", r.ValuationDate, true)
	if err != nil {
		return nil, err
	}
	tradeDate, err := parseDate("trade_date", r.TradeDate, false)
	if err != nil {
		return nil, err
	}
	fixingDate, err := parseDate("fixing_date", r.FixingDate, true)
	if err != nil {
		return nil, err
	}
	paymentDate, err := parseDate("payment_date", r.PaymentDate, true)
	if err != nil {
		return nil, err
	}
	return &application.CalculateRequest{
		TradeID:                r.TradeID,
		Counterparty:           r.Counterparty,
		TradeDate:              tradeDate,
		ValuationDate:          valuationDate,
		SettlementCurrency:     r.SettlementCurrency,
		NonDeliverableCurrency: r.NonDeliverableCurrency,
		SettlementNotional:     r.SettlementNotional,
		AgreedFxRate:           r.AgreedFxRate,
		FixingDate:             fixingDate,
		PaymentDate:            paymentDate,
		PaymentConvention:      r.PaymentConvention,
		PaymentCalendar:        r.PaymentCalendar,
		Measures:               r.Measures,
		Scenarios:              r.Scenarios,
	}, nil
}

func parseDate(field, value string, required bool) (time.Time, error) {
	if value == "" {
		if required {
			return time.Time{}, fmt.Errorf("%s is required", field)
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected %s", field, value, dateLayout)
	}
	return t, nil
}
