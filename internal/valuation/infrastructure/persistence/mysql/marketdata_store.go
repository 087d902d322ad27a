package mysql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/wyfcoding/valuationengine/internal/valuation/domain"
	"github.com/wyfcoding/valuationengine/pkg/cache"
	"github.com/wyfcoding/valuationengine/pkg/logger"
	"gorm.io/gorm"
)

const fxSpotCacheTTL = 30 * time.Second

// MarketDataStore 基础市场数据存储的 MySQL 实现，即期汇率带 Redis 读穿缓存。
// 缓存不可用时直接回源数据库，不阻断计算。
type MarketDataStore struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewMarketDataStore 创建市场数据存储，cache 可为 nil
func NewMarketDataStore(db *gorm.DB, cache *cache.RedisCache) *MarketDataStore {
	return &MarketDataStore{db: db, cache: cache}
}

// DiscountCurve 按曲线组与货币装配折现曲线
func (s *MarketDataStore) DiscountCurve(ctx context.Context, group string, ccy domain.Currency) (*domain.Curve, error) {
	var models []CurveNodeModel
	err := s.db.WithContext(ctx).
		Where("curve_group = ? AND currency = ?", group, string(ccy)).
		Order("time_years ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load curve nodes for %s/%s: %w", group, ccy, err)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("%w: discount curve %s/%s", domain.ErrMissingMarketData, group, ccy)
	}
	nodes := make([]domain.CurveNode, 0, len(models))
	for _, m := range models {
		nodes = append(nodes, domain.CurveNode{
			Label:     m.Label,
			TimeYears: m.TimeYears,
			ZeroRate:  m.ZeroRate,
		})
	}
	return domain.NewCurve(fmt.Sprintf("%s-%s-Discount", group, ccy), ccy, nodes)
}

// FxSpot 取货币对即期汇率，优先走缓存
func (s *MarketDataStore) FxSpot(ctx context.Context, pair domain.CurrencyPair) (float64, error) {
	cacheKey := fxSpotCacheKey(pair)
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey); err == nil && val != "" {
			if rate, perr := strconv.ParseFloat(val, 64); perr == nil {
				return rate, nil
			}
		}
	}

	var model FxSpotModel
	err := s.db.WithContext(ctx).
		Where("base_currency = ? AND quote_currency = ?", string(pair.Base), string(pair.Counter)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: fx spot %s", domain.ErrMissingMarketData, pair)
		}
		return 0, fmt.Errorf("failed to load fx spot %s: %w", pair, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, strconv.FormatFloat(model.Rate, 'f', -1, 64), fxSpotCacheTTL); err != nil {
			logger.Warn(ctx, "failed to cache fx spot", "pair", pair.String(), "error", err)
		}
	}
	return model.Rate, nil
}

func fxSpotCacheKey(pair domain.CurrencyPair) string {
	return "valuation:fxspot:" + pair.String()
}
