package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostAllowance_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantUnlimited bool
		wantCount     int
		wantErr       bool
	}{
		{name: "count", input: `3`, wantCount: 3},
		{name: "zero", input: `0`, wantCount: 0},
		{name: "limit sentinel", input: `-1`, wantUnlimited: true},
		{name: "remaining label", input: `"unlimited"`, wantUnlimited: true},
		{name: "other string", input: `"lots"`, wantErr: true},
		{name: "float", input: `1.5`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a PostAllowance
			err := json.Unmarshal([]byte(tt.input), &a)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUnlimited, a.IsUnlimited())
			if !tt.wantUnlimited {
				assert.Equal(t, tt.wantCount, a.Count())
			}
		})
	}
}

func TestPostAllowance_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(Unlimited())
	require.NoError(t, err)
	assert.JSONEq(t, `"unlimited"`, string(out))

	out, err = json.Marshal(Limited(4))
	require.NoError(t, err)
	assert.JSONEq(t, `4`, string(out))
}

func TestLimited_ClampsNegative(t *testing.T) {
	assert.Equal(t, 0, Limited(-7).Count())
	assert.False(t, Limited(-7).IsUnlimited())
}

func TestPlanType(t *testing.T) {
	pt, err := NewPlanType("pro")
	require.NoError(t, err)
	assert.True(t, pt.IsPro())
	assert.Equal(t, "Pro", pt.DisplayName())

	_, err = NewPlanType("enterprise")
	assert.Error(t, err)
}
