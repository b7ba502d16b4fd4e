package workouts

import "errors"

var (
	ErrInvalidRecord   = errors.New("invalid workout record")
	ErrInvalidGoal     = errors.New("goal must be a positive number of minutes")
	ErrIndexOutOfRange = errors.New("workout index out of range")
	// ErrStaleRecord means the record at the given index is not the one the caller expected.
	ErrStaleRecord = errors.New("workout at index changed")
	ErrNoWorkouts  = errors.New("no workouts logged")
)
