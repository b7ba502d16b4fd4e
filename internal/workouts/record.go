package workouts

import (
	"github.com/2beens/workoutlog/internal/chart"
)

// MaxDurationMinutes bounds a single workout to one day.
const MaxDurationMinutes = 24 * 60

// Record is one logged workout. Its identity is the position in the stored sequence,
// ID is an additional guard against deleting a record that moved.
type Record struct {
	ID          string `json:"id,omitempty"`
	WorkoutType string `json:"workout_type" validate:"required"`
	Duration    int    `json:"duration" validate:"gt=0,lte=1440"`
	Date        string `json:"date" validate:"required"`
	Notes       string `json:"notes"`
}

func ChartPoints(records []Record) []chart.Point {
	points := make([]chart.Point, 0, len(records))
	for _, r := range records {
		points = append(points, chart.Point{
			Date:    r.Date,
			Minutes: r.Duration,
		})
	}
	return points
}
