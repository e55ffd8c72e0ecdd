package domain

import "math"

// ComputeProgress derives a 0-100 percentage from processed/total
// counters. A zero total reports 0 rather than dividing by zero: a task
// whose total is not yet known is 0% done.
func ComputeProgress(processed, total int) int {
	return ComputePhaseProgress(processed, total, 100)
}

// ComputePhaseProgress scales processed/total into [0, phaseMax] for
// jobs whose current phase contributes only part of the overall bar
// (e.g. data fetch capped at 95 so the write phase has visible room).
// Rounding is half-up.
func ComputePhaseProgress(processed, total, phaseMax int) int {
	if total <= 0 || phaseMax <= 0 {
		return 0
	}
	pct := int(math.Floor(float64(processed)/float64(total)*float64(phaseMax) + 0.5))
	if pct < 0 {
		return 0
	}
	if pct > phaseMax {
		return phaseMax
	}
	return pct
}
