package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/valuationengine/internal/valuation/domain"
)

// ValuationQueryService 处理计算记录的读操作
type ValuationQueryService struct {
	repo domain.CalculationRepository
}

// NewValuationQueryService 创建查询服务
func NewValuationQueryService(repo domain.CalculationRepository) *ValuationQueryService {
	return &ValuationQueryService{repo: repo}
}

// GetLatestResult 取指定交易的最近一次计算记录，不存在返回 nil
func (s *ValuationQueryService) GetLatestResult(ctx context.Context, tradeID string) (*CalculationRecordDTO, error) {
	if tradeID == "" {
		return nil, fmt.Errorf("trade_id is required")
	}
	record, err := s.repo.GetLatest(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return toCalculationRecordDTO(record), nil
}

// GetHistory 取指定交易的历史计算记录
func (s *ValuationQueryService) GetHistory(ctx context.Context, tradeID string, limit int) ([]*CalculationRecordDTO, error) {
	if tradeID == "" {
		return nil, fmt.Errorf("trade_id is required")
	}
	records, err := s.repo.GetHistory(ctx, tradeID, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*CalculationRecordDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, toCalculationRecordDTO(r))
	}
	return dtos, nil
}
