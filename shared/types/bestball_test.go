package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScoringMode(t *testing.T) {
	tests := []struct {
		input    string
		expected ScoringMode
		wantErr  bool
	}{
		{input: "", expected: ScoringModeProjected},
		{input: "actual", expected: ScoringModeActual},
		{input: " Final ", expected: ScoringModeFinal},
		{input: "PROJECTED", expected: ScoringModeProjected},
		{input: "live", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseScoringMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestRosterStatus_IsReserved(t *testing.T) {
	assert.False(t, RosterStatusActive.IsReserved())
	assert.True(t, RosterStatusIR.IsReserved())
	assert.True(t, RosterStatusTaxi.IsReserved())
}

func TestSlotRequirements_ScanValue(t *testing.T) {
	req := SlotRequirements{"QB": 1, "FLEX": 2, "BN": 6}
	assert.Equal(t, 9, req.Total())

	raw, err := req.Value()
	require.NoError(t, err)

	var scanned SlotRequirements
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, req, scanned)

	require.NoError(t, scanned.Scan(`{"K":1}`))
	assert.Equal(t, SlotRequirements{"K": 1}, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)

	assert.Error(t, scanned.Scan(42))

	var empty SlotRequirements
	value, err := empty.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}
