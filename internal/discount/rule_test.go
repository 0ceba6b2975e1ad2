package discount

import (
	"testing"
	"time"

	"discount-engine/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func intPtr(i int) *int { return &i }

func TestDateRangeRule_Contains(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule DateRangeRule
		now  time.Time
		want bool
	}{
		{
			name: "inside window",
			rule: DateRangeRule{Start: timePtr(base), End: timePtr(base.Add(48 * time.Hour))},
			now:  base.Add(24 * time.Hour),
			want: true,
		},
		{
			name: "before start",
			rule: DateRangeRule{Start: timePtr(base.Add(time.Hour))},
			now:  base,
			want: false,
		},
		{
			name: "exactly at start is inclusive",
			rule: DateRangeRule{Start: timePtr(base.Add(time.Hour))},
			now:  base.Add(time.Hour),
			want: true,
		},
		{
			name: "exactly at end is inclusive",
			rule: DateRangeRule{End: timePtr(base)},
			now:  base,
			want: true,
		},
		{
			name: "after end",
			rule: DateRangeRule{End: timePtr(base)},
			now:  base.Add(time.Second),
			want: false,
		},
		{
			name: "no bounds is unbounded",
			rule: DateRangeRule{},
			now:  base,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Contains(tt.now))
		})
	}
}

func TestUsageLimitRule_Exhaustion(t *testing.T) {
	rule := UsageLimitRule{Global: intPtr(5), PerUser: intPtr(2)}

	assert.False(t, rule.GlobalExhausted(4))
	assert.True(t, rule.GlobalExhausted(5))
	assert.True(t, rule.GlobalExhausted(6))

	assert.False(t, rule.PerUserExhausted(1))
	assert.True(t, rule.PerUserExhausted(2))

	unlimited := UsageLimitRule{}
	assert.False(t, unlimited.GlobalExhausted(1_000_000))
	assert.False(t, unlimited.PerUserExhausted(1_000_000))
}

func TestRuleFor_GatesByLimitationType(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// A row carrying both strategies' fields only exposes the declared one.
	code := &model.DiscountCode{
		Code:              "BOTH10",
		LimitationType:    model.LimitationDateRange,
		StartDate:         timePtr(start),
		EndDate:           timePtr(start.AddDate(0, 1, 0)),
		UsageLimit:        intPtr(100),
		UsageLimitPerUser: intPtr(1),
	}

	rule, ok := RuleFor(code).(DateRangeRule)
	require.True(t, ok)
	assert.Equal(t, code.StartDate, rule.Start)
	assert.Equal(t, code.EndDate, rule.End)

	code.LimitationType = model.LimitationUsageLimit
	usage, ok := RuleFor(code).(UsageLimitRule)
	require.True(t, ok)
	assert.Equal(t, code.UsageLimit, usage.Global)
	assert.Equal(t, code.UsageLimitPerUser, usage.PerUser)
}

func TestRuleFor_UnknownTypeIsUnbounded(t *testing.T) {
	code := &model.DiscountCode{Code: "ODD", LimitationType: "something_else"}

	rule, ok := RuleFor(code).(DateRangeRule)
	require.True(t, ok)
	assert.True(t, rule.Contains(time.Now()))
}
