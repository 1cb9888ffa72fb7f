package service

import (
	"testing"

	"courseware_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBKT(t *testing.T) {
	tests := []struct {
		name                        string
		correct                     bool
		prior, slip, guess, transit float64
		wantPosterior, wantPLn      float64
	}{
		{
			name: "correct", correct: true,
			prior: 0.3, slip: 0.1, guess: 0.2, transit: 0.1,
			// 0.27 / (0.27 + 0.14)
			wantPosterior: 0.27 / 0.41,
			wantPLn:       0.27/0.41 + (1-0.27/0.41)*0.1,
		},
		{
			name: "incorrect", correct: false,
			prior: 0.3, slip: 0.1, guess: 0.2, transit: 0.1,
			// 0.03 / (0.03 + 0.56)
			wantPosterior: 0.03 / 0.59,
			wantPLn:       0.03/0.59 + (1-0.03/0.59)*0.1,
		},
		{
			name: "zero denominator keeps prior", correct: true,
			prior: 0, slip: 0.1, guess: 0, transit: 0.5,
			wantPosterior: 0,
			wantPLn:       0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CalculateBKT(tt.correct, tt.prior, tt.slip, tt.guess, tt.transit)
			assert.InDelta(t, tt.wantPosterior, r.PLnMinus1GivenActual, 1e-9)
			assert.InDelta(t, tt.wantPLn, r.PLn, 1e-9)
			assert.InDelta(t, tt.prior*(1-tt.slip)+(1-tt.prior)*tt.guess, r.PCorrect, 1e-9)
		})
	}
}

func TestComputeOrCarryOverBKT_CarriesOverOnSameScreen(t *testing.T) {
	previous := &model.Progress{
		InProgressElementID:  "screen-1",
		PLn:                  0.42,
		PLnMinus1GivenActual: 0.37,
		PCorrect:             0.51,
	}
	cfg := model.PathwayConfig{Slip: 0.1, Guess: 0.2, Transit: 0.3}

	for _, correct := range []bool{true, false} {
		r := computeOrCarryOverBKT(previous, correct, cfg)
		assert.Equal(t, BKTResult{PLnMinus1GivenActual: 0.37, PCorrect: 0.51, PLn: 0.42}, r)
	}
}

func TestComputeOrCarryOverBKT_AdvancesOnNewScreen(t *testing.T) {
	previous := &model.Progress{PLn: 0.3}
	cfg := model.PathwayConfig{Slip: 0.1, Guess: 0.2, Transit: 0.1}

	r := computeOrCarryOverBKT(previous, true, cfg)

	assert.Equal(t, CalculateBKT(true, 0.3, 0.1, 0.2, 0.1), r)
	assert.Greater(t, r.PLn, 0.3)
}

func TestMaintainedCompletion(t *testing.T) {
	history := []model.Progress{{PLn: 0.85}, {PLn: 0.9}}

	assert.Equal(t, 1.0, maintainedCompletion(history, 0.82, 0.8, 3))
	assert.InDelta(t, 2.0/3, maintainedCompletion(history, 0.5, 0.8, 3), 1e-9)
	assert.InDelta(t, 1.0/3, maintainedCompletion(nil, 0.81, 0.8, 3), 1e-9)
	// history beyond the window is ignored
	assert.Equal(t, 0.5, maintainedCompletion([]model.Progress{{PLn: 0.1}, {PLn: 0.9}}, 0.9, 0.8, 2))
	assert.Equal(t, 1.0, maintainedCompletion(nil, 0.8, 0.8, 0))
}
