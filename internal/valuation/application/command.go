package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wyfcoding/valuationengine/internal/valuation/domain"
	"github.com/wyfcoding/valuationengine/internal/valuation/infrastructure/marketdata"
	"github.com/wyfcoding/valuationengine/pkg/logger"
	"github.com/wyfcoding/valuationengine/pkg/metrics"
)

// ValuationCommandService 处理计量计算的写操作：
// 构建交易、推导市场数据需求、装配场景数据、编排计算、落盘并发事件。
type ValuationCommandService struct {
	fn           *domain.FxNdfCalculationFunction
	provider     *marketdata.Provider
	repo         domain.CalculationRepository
	publisher    domain.EventPublisher
	metrics      *metrics.Metrics
	refData      domain.ReferenceData
	curveGroup   string
	maxScenarios int
}

// NewValuationCommandService 创建命令服务
func NewValuationCommandService(
	fn *domain.FxNdfCalculationFunction,
	provider *marketdata.Provider,
	repo domain.CalculationRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	refData domain.ReferenceData,
	curveGroup string,
	maxScenarios int,
) *ValuationCommandService {
	if maxScenarios <= 0 {
		maxScenarios = 256
	}
	return &ValuationCommandService{
		fn:           fn,
		provider:     provider,
		repo:         repo,
		publisher:    publisher,
		metrics:      m,
		refData:      refData,
		curveGroup:   curveGroup,
		maxScenarios: maxScenarios,
	}
}

// Calculate 对单笔 NDF 交易执行计量计算
func (s *ValuationCommandService) Calculate(ctx context.Context, req *CalculateRequest) (*CalculationResultDTO, error) {
	start := time.Now()
	if err := req.validate(); err != nil {
		return nil, err
	}
	if len(req.Scenarios) > s.maxScenarios {
		return nil, fmt.Errorf("scenario count %d exceeds limit %d", len(req.Scenarios), s.maxScenarios)
	}

	trade, err := s.buildTrade(req)
	if err != nil {
		return nil, err
	}
	measures, err := parseMeasures(req.Measures)
	if err != nil {
		return nil, err
	}

	parameters := domain.NewCalculationParameters(marketdata.NewRatesLookup(s.curveGroup))

	// 先推导需求再取市场数据，只加载本次计算实际需要的键
	requirements, err := s.fn.Requirements(trade, measures, parameters, s.refData)
	if err != nil {
		return nil, err
	}
	scenarioData, err := s.provider.Assemble(ctx, req.ValuationDate, requirements, toScenarioShifts(req.Scenarios))
	if err != nil {
		s.publishFailed(ctx, req.TradeID, err)
		return nil, err
	}

	results, err := s.fn.Calculate(ctx, trade, measures, parameters, scenarioData, s.refData)
	if err != nil {
		s.publishFailed(ctx, req.TradeID, err)
		return nil, err
	}

	dto := s.assembleResult(req.TradeID, req.ValuationDate, scenarioData.ScenarioCount(), results)

	if err := s.persist(ctx, req, dto, results); err != nil {
		// 计算结果已经产出，持久化失败只记录不中断
		logger.Error(ctx, "failed to persist calculation record", "trade_id", req.TradeID, "error", err)
	}
	s.publishCompleted(ctx, req, dto, results)

	if s.metrics != nil {
		s.metrics.ObserveCalculation(start, dto.ScenarioCount)
		for _, r := range dto.Results {
			if !r.Success {
				s.metrics.RecordMeasureFailure(r.Measure, r.FailureReason)
			}
		}
	}
	logger.Info(ctx, "calculation completed",
		"trade_id", req.TradeID,
		"measures", len(dto.Results),
		"scenarios", dto.ScenarioCount,
		"failures", dto.FailureCount,
		"elapsed", time.Since(start))
	return dto, nil
}

// SupportedMeasures 支持的计量全集
func (s *ValuationCommandService) SupportedMeasures() []string {
	supported := s.fn.SupportedMeasures()
	out := make([]string, 0, len(supported))
	for _, m := range supported {
		out = append(out, string(m))
	}
	return out
}

func (s *ValuationCommandService) buildTrade(req *CalculateRequest) (domain.FxNdfTrade, error) {
	settleCcy, err := domain.ParseCurrency(req.SettlementCurrency)
	if err != nil {
		return domain.FxNdfTrade{}, err
	}
	nonDelCcy, err := domain.ParseCurrency(req.NonDeliverableCurrency)
	if err != nil {
		return domain.FxNdfTrade{}, err
	}

	convention := domain.BusinessDayConvention(req.PaymentConvention)
	if convention == "" {
		convention = domain.ConventionModifiedFollowing
	}
	calendar := domain.CalendarID(req.PaymentCalendar)
	if calendar == "" {
		calendar = domain.CalendarWeekendOnly
	}

	product, err := domain.NewFxNdf(
		settleCcy,
		nonDelCcy,
		req.SettlementNotional,
		req.AgreedFxRate,
		req.FixingDate,
		domain.AdjustableDate{
			Unadjusted: req.PaymentDate,
			Convention: convention,
			Calendar:   calendar,
		},
	)
	if err != nil {
		return domain.FxNdfTrade{}, err
	}
	return domain.FxNdfTrade{
		Info: domain.TradeInfo{
			TradeID:      req.TradeID,
			Counterparty: req.Counterparty,
			TradeDate:    req.TradeDate,
		},
		Product: product,
	}, nil
}

func (s *ValuationCommandService) assembleResult(
	tradeID string,
	valuationDate time.Time,
	scenarioCount int,
	results map[domain.Measure]domain.Result,
) *CalculationResultDTO {
	keys := make([]domain.Measure, 0, len(results))
	for m := range results {
		keys = append(keys, m)
	}
	dto := &CalculationResultDTO{
		TradeID:       tradeID,
		TradeType:     string(domain.TradeTypeFxNdf),
		ValuationDate: valuationDate,
		ScenarioCount: scenarioCount,
		Results:       make([]MeasureResultDTO, 0, len(results)),
	}
	for _, m := range domain.SortMeasures(keys) {
		r := toMeasureResultDTO(m, results[m])
		if r.Success {
			dto.SuccessCount++
		} else {
			dto.FailureCount++
		}
		dto.Results = append(dto.Results, r)
	}
	return dto
}

func (s *ValuationCommandService) persist(
	ctx context.Context,
	req *CalculateRequest,
	dto *CalculationResultDTO,
	results map[domain.Measure]domain.Result,
) error {
	if s.repo == nil {
		return nil
	}
	payload, err := json.Marshal(dto.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	measures := make([]domain.Measure, 0, len(results))
	for m := range results {
		measures = append(measures, m)
	}
	record := &domain.CalculationRecord{
		TradeID:       req.TradeID,
		TradeType:     domain.TradeTypeFxNdf,
		ValuationDate: req.ValuationDate,
		ScenarioCount: dto.ScenarioCount,
		Measures:      domain.SortMeasures(measures),
		ResultJSON:    string(payload),
		SuccessCount:  dto.SuccessCount,
		FailureCount:  dto.FailureCount,
	}
	return s.repo.Save(ctx, record)
}

func (s *ValuationCommandService) publishCompleted(
	ctx context.Context,
	req *CalculateRequest,
	dto *CalculationResultDTO,
	results map[domain.Measure]domain.Result,
) {
	if s.publisher == nil {
		return
	}
	outcomes := make([]domain.MeasureOutcome, 0, len(dto.Results))
	for _, r := range dto.Results {
		outcomes = append(outcomes, domain.MeasureOutcome{
			Measure: domain.Measure(r.Measure),
			Success: r.Success,
			Reason:  r.FailureReason,
		})
	}
	event := domain.CalculationCompletedEvent{
		TradeID:       req.TradeID,
		TradeType:     domain.TradeTypeFxNdf,
		ValuationDate: req.ValuationDate,
		ScenarioCount: dto.ScenarioCount,
		Outcomes:      outcomes,
		OccurredOn:    time.Now(),
	}
	if err := s.publisher.PublishCalculationCompleted(event); err != nil {
		logger.Error(ctx, "failed to publish calculation completed event",
			"trade_id", req.TradeID, "error", err)
	}
}

func (s *ValuationCommandService) publishFailed(ctx context.Context, tradeID string, cause error) {
	if s.publisher == nil {
		return
	}
	event := domain.CalculationFailedEvent{
		TradeID:    tradeID,
		Error:      cause.Error(),
		OccurredOn: time.Now(),
	}
	if err := s.publisher.PublishCalculationFailed(event); err != nil {
		logger.Error(ctx, "failed to publish calculation failed event",
			"trade_id", tradeID, "error", err)
	}
}

func parseMeasures(raw []string) ([]domain.Measure, error) {
	measures := make([]domain.Measure, 0, len(raw))
	for _, s := range raw {
		m, err := domain.ParseMeasure(s)
		if err != nil {
			return nil, err
		}
		measures = append(measures, m)
	}
	return measures, nil
}

func toScenarioShifts(reqs []ScenarioShiftRequest) []marketdata.ScenarioShift {
	shifts := make([]marketdata.ScenarioShift, 0, len(reqs))
	for _, r := range reqs {
		shifts = append(shifts, marketdata.ScenarioShift{
			Name:         r.Name,
			CurveShiftBp: r.CurveShiftBp,
			FxScale:      r.FxScale,
		})
	}
	return shifts
}
