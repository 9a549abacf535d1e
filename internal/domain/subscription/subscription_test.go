package subscription

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/mataroo/mataroo/internal/domain/subscription/valueobjects"
)

func newTestSubscription(t *testing.T, plan vo.PlanType, used, limit int) *Subscription {
	t.Helper()
	s, err := ReconstructSubscription(plan, vo.StatusActive, used, vo.AllowanceFromLimit(limit), nil, nil)
	require.NoError(t, err)
	return s
}

func TestSubscription_FreePlanAtLimit(t *testing.T) {
	s := newTestSubscription(t, vo.PlanTypeFree, 5, 5)

	assert.True(t, s.IsAtLimit())
	assert.False(t, s.CanPost())
	assert.Equal(t, 100, s.UsagePercent())
	assert.Equal(t, 0, s.Remaining().Count())
}

func TestSubscription_UnlimitedIgnoresPostsUsed(t *testing.T) {
	for _, used := range []int{0, 5, 10_000} {
		s := newTestSubscription(t, vo.PlanTypePro, used, vo.UnlimitedPosts)

		assert.False(t, s.IsAtLimit(), "used=%d", used)
		assert.True(t, s.IsUnlimited())
		assert.True(t, s.Remaining().IsUnlimited())
		assert.Equal(t, 0, s.UsagePercent())
		assert.Equal(t, "Unlimited", s.Remaining().String())
	}
}

func TestSubscription_UsagePercent(t *testing.T) {
	tests := []struct {
		name  string
		used  int
		limit int
		want  int
	}{
		{name: "unused", used: 0, limit: 5, want: 0},
		{name: "partial rounds down", used: 2, limit: 3, want: 66},
		{name: "over limit clamps", used: 7, limit: 5, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSubscription(t, vo.PlanTypeFree, tt.used, tt.limit)
			assert.Equal(t, tt.want, s.UsagePercent())
		})
	}
}

func TestSubscription_RemainingFromBackendWins(t *testing.T) {
	remaining := vo.Limited(1)
	s, err := ReconstructSubscription(vo.PlanTypeFree, vo.StatusActive, 3, vo.Limited(5), &remaining, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Remaining().Count())
}

func TestSubscription_InactiveCannotPost(t *testing.T) {
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s, err := ReconstructSubscription(vo.PlanTypePro, vo.StatusExpired, 0, vo.Unlimited(), nil, &end)
	require.NoError(t, err)
	assert.False(t, s.CanPost())
	assert.Equal(t, &end, s.CurrentPeriodEnd())
}

func TestReconstructSubscription_Validation(t *testing.T) {
	tests := []struct {
		name   string
		plan   vo.PlanType
		status vo.SubscriptionStatus
		used   int
		limit  vo.PostAllowance
	}{
		{name: "unknown plan", plan: "gold", status: vo.StatusActive, limit: vo.Limited(5)},
		{name: "unknown status", plan: vo.PlanTypeFree, status: "paused", limit: vo.Limited(5)},
		{name: "negative used", plan: vo.PlanTypeFree, status: vo.StatusActive, used: -1, limit: vo.Limited(5)},
		{name: "zero limit", plan: vo.PlanTypeFree, status: vo.StatusActive, limit: vo.Limited(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReconstructSubscription(tt.plan, tt.status, tt.used, tt.limit, nil, nil)
			assert.ErrorIs(t, err, ErrInvalidSubscription)
		})
	}
}

func TestSubscription_JSONRoundTripKeepsSentinels(t *testing.T) {
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	remaining := vo.Unlimited()
	sub, err := ReconstructSubscription(vo.PlanTypePro, vo.StatusActive, 42, vo.Unlimited(), &remaining, &end)
	require.NoError(t, err)

	data, err := json.Marshal(sub)
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan_type":"pro","status":"active","posts_used":42,"posts_limit":-1,"remaining":"unlimited","current_period_end":"2025-02-01T00:00:00Z"}`, string(data))

	var decoded Subscription
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.IsUnlimited())
	assert.False(t, decoded.IsAtLimit())
	assert.Equal(t, 42, decoded.PostsUsed())
	require.NotNil(t, decoded.CurrentPeriodEnd())
	assert.True(t, end.Equal(*decoded.CurrentPeriodEnd()))
}

func TestSubscription_UnmarshalRejectsInvalidPlan(t *testing.T) {
	var s Subscription
	err := json.Unmarshal([]byte(`{"plan_type":"gold","status":"active","posts_used":0,"posts_limit":5,"remaining":5}`), &s)
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}
