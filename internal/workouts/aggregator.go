package workouts

import (
	"math"
	"math/bits"
)

type ProgressStats struct {
	TotalWorkouts   int `json:"total_workouts"`
	TotalMinutes    int `json:"total_minutes"`
	AvgMinutes      int `json:"avg_minutes"`
	GoalMinutes     int `json:"goal_minutes"`
	ProgressPercent int `json:"progress_percent"`
}

// Compute returns ErrNoWorkouts for an empty sequence, regardless of the goal.
// Averages and percentages are rounded half to even.
func Compute(records []Record, goalMinutes int) (*ProgressStats, error) {
	if len(records) == 0 {
		return nil, ErrNoWorkouts
	}
	if goalMinutes <= 0 {
		return nil, ErrInvalidGoal
	}

	// stored artifacts are not re-validated on load, so the sum saturates instead of wrapping
	total := 0
	for _, r := range records {
		total = addMinutes(total, r.Duration)
	}

	return &ProgressStats{
		TotalWorkouts:   len(records),
		TotalMinutes:    total,
		AvgMinutes:      roundHalfEven(total, len(records)),
		GoalMinutes:     goalMinutes,
		ProgressPercent: percentOfGoal(total, goalMinutes),
	}, nil
}

func addMinutes(total, minutes int) int {
	switch {
	case minutes > 0 && total > math.MaxInt-minutes:
		return math.MaxInt
	case minutes < 0 && total < math.MinInt-minutes:
		return math.MinInt
	}
	return total + minutes
}

// percentOfGoal is round(total*100/goal) clamped to [0, 100]. goal must be positive.
func percentOfGoal(total, goal int) int {
	if total <= 0 {
		return 0
	}
	if total >= goal {
		return 100
	}
	// total*100 needs up to 71 bits
	hi, lo := bits.Mul64(uint64(total), 100)
	q, r := bits.Div64(hi, lo, uint64(goal))
	return int(roundQuotient(q, r, uint64(goal)))
}

// roundHalfEven rounds num/den to the nearest integer, ties to even. den must be positive.
func roundHalfEven(num, den int) int {
	mag := uint64(num)
	if num < 0 {
		// two's complement, also right for math.MinInt
		mag = -mag
	}
	d := uint64(den)
	q := roundQuotient(mag/d, mag%d, d)
	if num < 0 {
		return -int(q)
	}
	return int(q)
}

// roundQuotient rounds q + r/den, r < den, ties to even.
func roundQuotient(q, r, den uint64) uint64 {
	rest := den - r
	if r > rest || (r == rest && q%2 == 1) {
		q++
	}
	return q
}
