package service

import "courseware_backend/internal/model"

// BKTResult is one Bayesian Knowledge Tracing step.
type BKTResult struct {
	// PLnMinus1GivenActual is the prior updated against the observation.
	PLnMinus1GivenActual float64
	// PCorrect is the predicted chance of a correct answer before observing.
	PCorrect float64
	// PLn is the mastery estimate after the learning transition.
	PLn float64
}

// CalculateBKT runs a standard BKT update of prior against the observed
// correctness.
func CalculateBKT(correct bool, prior, slip, guess, transit float64) BKTResult {
	var num, den float64
	if correct {
		num = prior * (1 - slip)
		den = num + (1-prior)*guess
	} else {
		num = prior * slip
		den = num + (1-prior)*(1-guess)
	}

	posterior := prior
	if den != 0 {
		posterior = num / den
	}

	return BKTResult{
		PLnMinus1GivenActual: posterior,
		PCorrect:             prior*(1-slip) + (1-prior)*guess,
		PLn:                  posterior + (1-posterior)*transit,
	}
}

// computeOrCarryOverBKT advances mastery once per screen entry. A student
// still on the same screen keeps the stored estimate.
func computeOrCarryOverBKT(previous *model.Progress, correct bool, cfg model.PathwayConfig) BKTResult {
	if previous.InProgressElementID != "" {
		return BKTResult{
			PLnMinus1GivenActual: previous.PLnMinus1GivenActual,
			PCorrect:             previous.PCorrect,
			PLn:                  previous.PLn,
		}
	}
	return CalculateBKT(correct, previous.PLn, cfg.Slip, cfg.Guess, cfg.Transit)
}

// maintainedCompletion is the share of the last maintainFor screens,
// including the current one, held at or above target. history is newest
// first and holds at most maintainFor-1 rows.
func maintainedCompletion(history []model.Progress, current float64, target float64, maintainFor int) float64 {
	if maintainFor <= 0 {
		maintainFor = 1
	}
	met := 0
	if current >= target {
		met++
	}
	for i, p := range history {
		if i >= maintainFor-1 {
			break
		}
		if p.PLn >= target {
			met++
		}
	}
	v := float64(met) / float64(maintainFor)
	if v > 1 {
		return 1
	}
	return v
}
