package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFxNdfValidation(t *testing.T) {
	paymentDate := AdjustableDate{Unadjusted: testPaymentDate, Convention: ConventionNoAdjust}

	tests := []struct {
		name      string
		settle    Currency
		nonDel    Currency
		notional  decimal.Decimal
		rate      decimal.Decimal
		fixing    time.Time
		payment   AdjustableDate
		wantError string
	}{
		{
			name:   "valid",
			settle: USD, nonDel: KRW,
			notional: decimal.NewFromInt(1_000_000), rate: decimal.NewFromInt(1250),
			fixing: testFixingDate, payment: paymentDate,
		},
		{
			name:   "same currencies",
			settle: USD, nonDel: USD,
			notional: decimal.NewFromInt(1_000_000), rate: decimal.NewFromInt(1250),
			fixing: testFixingDate, payment: paymentDate,
			wantError: "must differ",
		},
		{
			name:   "zero notional",
			settle: USD, nonDel: KRW,
			notional: decimal.Zero, rate: decimal.NewFromInt(1250),
			fixing: testFixingDate, payment: paymentDate,
			wantError: "notional must be positive",
		},
		{
			name:   "negative rate",
			settle: USD, nonDel: KRW,
			notional: decimal.NewFromInt(1_000_000), rate: decimal.NewFromInt(-1),
			fixing: testFixingDate, payment: paymentDate,
			wantError: "rate must be positive",
		},
		{
			name:   "fixing after payment",
			settle: USD, nonDel: KRW,
			notional: decimal.NewFromInt(1_000_000), rate: decimal.NewFromInt(1250),
			fixing: testPaymentDate.AddDate(0, 0, 1), payment: paymentDate,
			wantError: "must not be after payment date",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFxNdf(tt.settle, tt.nonDel, tt.notional, tt.rate, tt.fixing, tt.payment)
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestResolveAdjustsWeekendPaymentDate(t *testing.T) {
	// 2027-03-06 是周六，Following 顺延到周一 2027-03-08
	saturday := time.Date(2027, 3, 6, 0, 0, 0, 0, time.UTC)
	product, err := NewFxNdf(USD, KRW,
		decimal.NewFromInt(1_000_000), decimal.NewFromInt(1250),
		testFixingDate,
		AdjustableDate{Unadjusted: saturday, Convention: ConventionFollowing, Calendar: CalendarWeekendOnly},
	)
	require.NoError(t, err)
	trade := FxNdfTrade{Info: TradeInfo{TradeID: "NDF-002"}, Product: product}

	resolved, err := trade.Resolve(StandardReferenceData())

	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 3, 8, 0, 0, 0, 0, time.UTC), resolved.Product.PaymentDate)
	assert.Equal(t, "NDF-002", resolved.Info.TradeID)
}

func TestResolveIsIdempotent(t *testing.T) {
	trade := testTrade(t)
	refData := StandardReferenceData()

	first, err := trade.Resolve(refData)
	require.NoError(t, err)
	second, err := trade.Resolve(refData)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveUnknownCalendar(t *testing.T) {
	trade := testTrade(t)
	trade.Product.PaymentDate.Calendar = "SEOUL"

	_, err := trade.Resolve(StandardReferenceData())

	require.ErrorIs(t, err, ErrUnknownCalendar)
	assert.Contains(t, err.Error(), trade.Info.TradeID)
}

func TestResolveNoAdjustSkipsCalendarLookup(t *testing.T) {
	trade := testTrade(t)
	trade.Product.PaymentDate.Convention = ConventionNoAdjust
	trade.Product.PaymentDate.Calendar = "SEOUL" // 未注册，但 NoAdjust 不查日历

	resolved, err := trade.Resolve(StandardReferenceData())

	require.NoError(t, err)
	assert.Equal(t, testPaymentDate, resolved.Product.PaymentDate)
}

func TestModifiedFollowingStaysInMonth(t *testing.T) {
	// 2027-07-31 是周六，Following 会跨到 8 月，ModifiedFollowing 回退到周五
	saturday := time.Date(2027, 7, 31, 0, 0, 0, 0, time.UTC)
	calendar, err := StandardReferenceData().Calendar(CalendarWeekendOnly)
	require.NoError(t, err)

	adjusted, err := ConventionModifiedFollowing.Adjust(saturday, calendar)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 7, 30, 0, 0, 0, 0, time.UTC), adjusted)
}

func TestRatePairSettlementIsBase(t *testing.T) {
	trade := testTrade(t)
	assert.Equal(t, CurrencyPair{Base: USD, Counter: KRW}, trade.Product.RatePair())
	assert.Equal(t, []Currency{USD, KRW}, trade.Product.Currencies())
}
