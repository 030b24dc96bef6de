package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoCriteria() []Criterion {
	return []Criterion{
		{ID: "c1", Description: "Dominio conceptual", MaxScore: 10},
		{ID: "c2", Description: "Argumentación", MaxScore: 20},
	}
}

func TestNewAccumulatorValidation(t *testing.T) {
	tests := []struct {
		name     string
		criteria []Criterion
		wantErr  bool
	}{
		{
			name:     "valid rubric",
			criteria: twoCriteria(),
			wantErr:  false,
		},
		{
			name:     "empty rubric is legal",
			criteria: nil,
			wantErr:  false,
		},
		{
			name: "duplicate id",
			criteria: []Criterion{
				{ID: "c1", Description: "a", MaxScore: 5},
				{ID: "c1", Description: "b", MaxScore: 5},
			},
			wantErr: true,
		},
		{
			name:     "empty id",
			criteria: []Criterion{{ID: " ", Description: "a", MaxScore: 5}},
			wantErr:  true,
		},
		{
			name:     "empty description",
			criteria: []Criterion{{ID: "c1", Description: "", MaxScore: 5}},
			wantErr:  true,
		},
		{
			name:     "negative max",
			criteria: []Criterion{{ID: "c1", Description: "a", MaxScore: -1}},
			wantErr:  true,
		},
		{
			name:     "zero max is legal",
			criteria: []Criterion{{ID: "c1", Description: "a", MaxScore: 0}},
			wantErr:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAccumulator(tt.criteria)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetScoreParsing(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		scored  bool
		wantErr bool
	}{
		{name: "integer", raw: "6", want: 6.0, scored: true},
		{name: "dot decimal", raw: "7.5", want: 7.5, scored: true},
		{name: "comma decimal", raw: "7,5", want: 7.5, scored: true},
		{name: "zero", raw: "0", want: 0, scored: true},
		{name: "clamped above max", raw: "15", want: 10, scored: true},
		{name: "surrounding spaces", raw: " 3.5 ", want: 3.5, scored: true},
		{name: "empty clears", raw: "", scored: false},
		{name: "whitespace clears", raw: "   ", scored: false},
		{name: "two decimals rejected", raw: "6.55", wantErr: true},
		{name: "negative rejected", raw: "-1", wantErr: true},
		{name: "bare dot rejected", raw: ".5", wantErr: true},
		{name: "trailing separator rejected", raw: "6,", wantErr: true},
		{name: "letters rejected", raw: "6a", wantErr: true},
		{name: "double comma rejected", raw: "1,2,3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewAccumulator(twoCriteria())
			require.NoError(t, err)

			err = acc.SetScore(0, tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScore)
				_, scored := acc.Score(0)
				assert.False(t, scored, "rejected input must not change state")
				return
			}
			require.NoError(t, err)
			got, scored := acc.Score(0)
			assert.Equal(t, tt.scored, scored)
			if tt.scored {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestSetScoreRejectionKeepsPreviousValue(t *testing.T) {
	acc, err := NewAccumulator(twoCriteria())
	require.NoError(t, err)

	require.NoError(t, acc.SetScore(0, "8"))
	assert.ErrorIs(t, acc.SetScore(0, "8.25"), ErrInvalidScore)

	got, scored := acc.Score(0)
	assert.True(t, scored)
	assert.InDelta(t, 8.0, got, 1e-9)
}

func TestSetScoreIndexOutOfRange(t *testing.T) {
	acc, err := NewAccumulator(twoCriteria())
	require.NoError(t, err)
	assert.Error(t, acc.SetScore(-1, "1"))
	assert.Error(t, acc.SetScore(2, "1"))
}

func TestZeroMaxCriterion(t *testing.T) {
	acc, err := NewAccumulator([]Criterion{{ID: "c1", Description: "bonus", MaxScore: 0}})
	require.NoError(t, err)

	require.NoError(t, acc.SetScore(0, "3"))
	got, scored := acc.Score(0)
	assert.True(t, scored)
	assert.Equal(t, 0.0, got)
	assert.Equal(t, 0.0, acc.MaxTotal())
	assert.Equal(t, 0.0, acc.PartialTotal())
}

func TestTotalsAndCompletion(t *testing.T) {
	acc, err := NewAccumulator(twoCriteria())
	require.NoError(t, err)

	assert.Equal(t, 30.0, acc.MaxTotal())
	assert.Equal(t, 0.0, acc.PartialTotal())
	assert.False(t, acc.IsComplete())

	require.NoError(t, acc.SetScore(0, "6"))
	require.NoError(t, acc.SetScore(1, "12,5"))
	assert.InDelta(t, 18.5, acc.PartialTotal(), 1e-9)
	assert.True(t, acc.IsComplete())

	// clearing one criterion reopens the rubric
	require.NoError(t, acc.SetScore(1, ""))
	assert.False(t, acc.IsComplete())
	assert.InDelta(t, 6.0, acc.PartialTotal(), 1e-9)
}

func TestExplicitZeroIsNotUnscored(t *testing.T) {
	acc, err := NewAccumulator(twoCriteria())
	require.NoError(t, err)

	require.NoError(t, acc.SetScore(0, "10"))
	require.NoError(t, acc.SetScore(1, "0"))
	assert.True(t, acc.IsComplete())

	require.NoError(t, acc.SetScore(1, ""))
	assert.False(t, acc.IsComplete(), "unset must stay distinguishable from scored zero")
}

func TestSetScoreByID(t *testing.T) {
	acc, err := NewAccumulator(twoCriteria())
	require.NoError(t, err)

	require.NoError(t, acc.SetScoreByID("c2", "4.5"))
	got, scored := acc.Score(1)
	assert.True(t, scored)
	assert.InDelta(t, 4.5, got, 1e-9)

	assert.Error(t, acc.SetScoreByID("nope", "1"))
}

func TestEntriesAndLoad(t *testing.T) {
	acc, err := NewAccumulator(twoCriteria())
	require.NoError(t, err)
	require.NoError(t, acc.SetScore(1, "12.5"))

	entries := acc.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "c2", entries[0].CriterionID)
	assert.InDelta(t, 12.5, entries[0].Score, 1e-9)

	resumed, err := NewAccumulator(twoCriteria())
	require.NoError(t, err)
	resumed.Load([]ScoreEntry{
		{CriterionID: "c1", Score: 6},
		{CriterionID: "gone", Score: 99}, // no longer in the rubric: skipped
		{CriterionID: "c2", Score: 25},   // above max: re-clamped
	})
	assert.True(t, resumed.IsComplete())
	assert.InDelta(t, 26.0, resumed.PartialTotal(), 1e-9)
}

func TestClampRound1HalfUp(t *testing.T) {
	tests := []struct {
		v, max, want float64
	}{
		{0.05, 1, 0.1}, // half rounds up, not banker's
		{0.04, 1, 0.0},
		{6.449, 10, 6.4},
		{-3, 10, 0},
		{12, 10, 10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, clampRound1(tt.v, tt.max), 1e-9, "clampRound1(%v, %v)", tt.v, tt.max)
	}
}
