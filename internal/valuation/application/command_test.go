package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/valuationengine/internal/valuation/domain"
	"github.com/wyfcoding/valuationengine/internal/valuation/infrastructure/marketdata"
)

// fakeStore 内存市场数据存储
type fakeStore struct {
	curves map[domain.Currency]*domain.Curve
	spots  map[domain.CurrencyPair]float64
}

func (s *fakeStore) DiscountCurve(ctx context.Context, group string, ccy domain.Currency) (*domain.Curve, error) {
	curve, ok := s.curves[ccy]
	if !ok {
		return nil, domain.ErrMissingMarketData
	}
	return curve, nil
}

func (s *fakeStore) FxSpot(ctx context.Context, pair domain.CurrencyPair) (float64, error) {
	rate, ok := s.spots[pair]
	if !ok {
		return 0, domain.ErrMissingMarketData
	}
	return rate, nil
}

// memoryRepo 内存计算记录仓储
type memoryRepo struct {
	records []*domain.CalculationRecord
}

func (r *memoryRepo) Save(ctx context.Context, record *domain.CalculationRecord) error {
	record.ID = uint(len(r.records) + 1)
	record.CreatedAt = time.Now()
	r.records = append(r.records, record)
	return nil
}

func (r *memoryRepo) GetLatest(ctx context.Context, tradeID string) (*domain.CalculationRecord, error) {
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].TradeID == tradeID {
			return r.records[i], nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) GetHistory(ctx context.Context, tradeID string, limit int) ([]*domain.CalculationRecord, error) {
	var out []*domain.CalculationRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].TradeID == tradeID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

// capturePublisher 捕获已发布事件
type capturePublisher struct {
	completed []domain.CalculationCompletedEvent
	failed    []domain.CalculationFailedEvent
}

func (p *capturePublisher) PublishCalculationCompleted(event domain.CalculationCompletedEvent) error {
	p.completed = append(p.completed, event)
	return nil
}

func (p *capturePublisher) PublishCalculationFailed(event domain.CalculationFailedEvent) error {
	p.failed = append(p.failed, event)
	return nil
}

func newTestStore(t *testing.T) *fakeStore {
	t.Helper()
	usd, err := domain.NewCurve("USD-Discount", domain.USD, []domain.CurveNode{
		{Label: "1Y", TimeYears: 1, ZeroRate: 0.03},
		{Label: "5Y", TimeYears: 5, ZeroRate: 0.035},
	})
	require.NoError(t, err)
	krw, err := domain.NewCurve("KRW-Discount", domain.KRW, []domain.CurveNode{
		{Label: "1Y", TimeYears: 1, ZeroRate: 0.01},
		{Label: "5Y", TimeYears: 5, ZeroRate: 0.015},
	})
	require.NoError(t, err)
	return &fakeStore{
		curves: map[domain.Currency]*domain.Curve{domain.USD: usd, domain.KRW: krw},
		spots:  map[domain.CurrencyPair]float64{{Base: domain.USD, Counter: domain.KRW}: 1300},
	}
}

func newTestService(t *testing.T, store domain.MarketDataStore) (*ValuationCommandService, *memoryRepo, *capturePublisher) {
	t.Helper()
	repo := &memoryRepo{}
	publisher := &capturePublisher{}
	svc := NewValuationCommandService(
		domain.NewFxNdfCalculationFunction(),
		marketdata.NewProvider(store, "DEFAULT"),
		repo,
		publisher,
		nil,
		domain.StandardReferenceData(),
		"DEFAULT",
		8,
	)
	return svc, repo, publisher
}

func validRequest() *CalculateRequest {
	return &CalculateRequest{
		TradeID:                "NDF-001",
		Counterparty:           "CPTY-A",
		TradeDate:              time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		ValuationDate:          time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		SettlementCurrency:     "USD",
		NonDeliverableCurrency: "KRW",
		SettlementNotional:     decimal.NewFromInt(1_000_000),
		AgreedFxRate:           decimal.NewFromInt(1250),
		FixingDate:             time.Date(2027, 2, 25, 0, 0, 0, 0, time.UTC),
		PaymentDate:            time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
		Measures:               []string{"PresentValue", "ForwardFxRate"},
	}
}

func TestCalculateCommandHappyPath(t *testing.T) {
	svc, repo, publisher := newTestService(t, newTestStore(t))

	dto, err := svc.Calculate(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "NDF-001", dto.TradeID)
	assert.Equal(t, 1, dto.ScenarioCount)
	// PresentValue、ForwardFxRate 及别名 PresentValueMultiCurrency
	assert.Len(t, dto.Results, 3)
	assert.Equal(t, 3, dto.SuccessCount)
	assert.Zero(t, dto.FailureCount)

	require.Len(t, repo.records, 1)
	record := repo.records[0]
	assert.Equal(t, "NDF-001", record.TradeID)
	assert.Equal(t, domain.TradeTypeFxNdf, record.TradeType)
	assert.NotEmpty(t, record.ResultJSON)

	require.Len(t, publisher.completed, 1)
	assert.Len(t, publisher.completed[0].Outcomes, 3)
	assert.Empty(t, publisher.failed)
}

func TestCalculateCommandWithScenarios(t *testing.T) {
	svc, _, _ := newTestService(t, newTestStore(t))
	req := validRequest()
	req.Scenarios = []ScenarioShiftRequest{
		{Name: "base"},
		{Name: "rates-up", CurveShiftBp: 50},
		{Name: "fx-down", FxScale: 0.9},
	}

	dto, err := svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 3, dto.ScenarioCount)
}

func TestCalculateCommandScenarioLimit(t *testing.T) {
	svc, _, _ := newTestService(t, newTestStore(t))
	req := validRequest()
	req.Scenarios = make([]ScenarioShiftRequest, 9)

	_, err := svc.Calculate(context.Background(), req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestCalculateCommandRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t, newTestStore(t))

	tests := []struct {
		name   string
		mutate func(*CalculateRequest)
	}{
		{"empty trade id", func(r *CalculateRequest) { r.TradeID = "" }},
		{"no measures", func(r *CalculateRequest) { r.Measures = nil }},
		{"unknown measure", func(r *CalculateRequest) { r.Measures = []string{"Gamma"} }},
		{"bad currency", func(r *CalculateRequest) { r.SettlementCurrency = "DOLLARS" }},
		{"same currencies", func(r *CalculateRequest) { r.NonDeliverableCurrency = "USD" }},
		{"zero notional", func(r *CalculateRequest) { r.SettlementNotional = decimal.Zero }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := svc.Calculate(context.Background(), req)
			assert.Error(t, err)
		})
	}
}

func TestCalculateCommandMissingMarketDataFails(t *testing.T) {
	store := newTestStore(t)
	delete(store.curves, domain.KRW)
	svc, repo, publisher := newTestService(t, store)

	_, err := svc.Calculate(context.Background(), validRequest())

	require.ErrorIs(t, err, domain.ErrMissingMarketData)
	assert.Empty(t, repo.records)
	require.Len(t, publisher.failed, 1)
	assert.Equal(t, "NDF-001", publisher.failed[0].TradeID)
}

func TestQueryServiceRoundTrip(t *testing.T) {
	svc, repo, _ := newTestService(t, newTestStore(t))
	query := NewValuationQueryService(repo)

	_, err := svc.Calculate(context.Background(), validRequest())
	require.NoError(t, err)

	latest, err := query.GetLatestResult(context.Background(), "NDF-001")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "NDF-001", latest.TradeID)
	assert.Contains(t, latest.Measures, "PresentValue")

	missing, err := query.GetLatestResult(context.Background(), "NDF-999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	history, err := query.GetHistory(context.Background(), "NDF-001", 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSupportedMeasures(t *testing.T) {
	svc, _, _ := newTestService(t, newTestStore(t))

	measures := svc.SupportedMeasures()

	assert.Contains(t, measures, "PresentValue")
	assert.Contains(t, measures, "PresentValueMultiCurrency")
	assert.Len(t, measures, 7)
}
