// services/scoring.go - Point computation for answer submissions
package services

import (
	"dailypuzzle/config"
)

// Score computes the points for a single attempt. A correct answer
// starts at BasePoints and loses one point per elapsed decay interval,
// floored at zero. A wrong answer always costs the flat penalty.
//
// Pure function: no I/O, deterministic given (correct, elapsedSeconds)
// and the loaded configuration.
func Score(correct bool, elapsedSeconds int64) int {
	cfg := config.Get()
	if !correct {
		return -cfg.WrongPenalty
	}

	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	decaySteps := int(elapsedSeconds / int64(cfg.DecayIntervalSeconds))

	points := cfg.BasePoints - decaySteps
	if points < 0 {
		points = 0
	}
	return points
}
