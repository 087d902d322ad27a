package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wyfcoding/valuationengine/internal/valuation/domain"
	"gorm.io/gorm"
)

// CalculationRepository 计算记录仓储的 MySQL 实现
type CalculationRepository struct {
	db *gorm.DB
}

// NewCalculationRepository 创建计算记录仓储
func NewCalculationRepository(db *gorm.DB) *CalculationRepository {
	return &CalculationRepository{db: db}
}

// Save 保存计算记录，写回生成的 ID 与创建时间
func (r *CalculationRepository) Save(ctx context.Context, record *domain.CalculationRecord) error {
	model := toCalculationModel(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save calculation record: %w", err)
	}
	record.ID = model.ID
	record.CreatedAt = model.CreatedAt
	return nil
}

// GetLatest 取指定交易最近一次计算记录，不存在时返回 nil
func (r *CalculationRepository) GetLatest(ctx context.Context, tradeID string) (*domain.CalculationRecord, error) {
	var model CalculationModel
	err := r.db.WithContext(ctx).
		Where("trade_id = ?", tradeID).
		Order("id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest calculation: %w", err)
	}
	return toCalculationRecord(&model), nil
}

// GetHistory 按时间倒序取指定交易的历史计算记录
func (r *CalculationRepository) GetHistory(ctx context.Context, tradeID string, limit int) ([]*domain.CalculationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []CalculationModel
	err := r.db.WithContext(ctx).
		Where("trade_id = ?", tradeID).
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get calculation history: %w", err)
	}
	records := make([]*domain.CalculationRecord, 0, len(models))
	for i := range models {
		records = append(records, toCalculationRecord(&models[i]))
	}
	return records, nil
}

func toCalculationModel(record *domain.CalculationRecord) *CalculationModel {
	measures := make([]string, 0, len(record.Measures))
	for _, m := range record.Measures {
		measures = append(measures, string(m))
	}
	return &CalculationModel{
		TradeID:       record.TradeID,
		TradeType:     string(record.TradeType),
		ValuationDate: record.ValuationDate,
		ScenarioCount: record.ScenarioCount,
		Measures:      strings.Join(measures, ","),
		ResultJSON:    record.ResultJSON,
		SuccessCount:  record.SuccessCount,
		FailureCount:  record.FailureCount,
	}
}

func toCalculationRecord(model *CalculationModel) *domain.CalculationRecord {
	var measures []domain.Measure
	if model.Measures != "" {
		for _, m := range strings.Split(model.Measures, ",") {
			measures = append(measures, domain.Measure(m))
		}
	}
	return &domain.CalculationRecord{
		ID:            model.ID,
		CreatedAt:     model.CreatedAt,
		TradeID:       model.TradeID,
		TradeType:     domain.TradeType(model.TradeType),
		ValuationDate: model.ValuationDate,
		ScenarioCount: model.ScenarioCount,
		Measures:      measures,
		ResultJSON:    model.ResultJSON,
		SuccessCount:  model.SuccessCount,
		FailureCount:  model.FailureCount,
	}
}
