package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/workoutlog/internal/storage"
	"github.com/2beens/workoutlog/internal/telemetry/metrics"
	"github.com/2beens/workoutlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

type goalArtifact struct {
	GoalMinutes *int `json:"goal_minutes"`
}

type GoalStore struct {
	backend  storage.Backend
	artifact string
	metrics  *metrics.Manager
}

func NewGoalStore(backend storage.Backend, artifact string, metricsManager *metrics.Manager) *GoalStore {
	return &GoalStore{
		backend:  backend,
		artifact: artifact,
		metrics:  metricsManager,
	}
}

// Load returns the stored goal, or def when it is missing, unreadable or not a positive integer.
func (s *GoalStore) Load(ctx context.Context, def int) int {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalStore.load")
	defer span.End()

	data, err := s.backend.Read(ctx, s.artifact)
	if errors.Is(err, storage.ErrArtifactNotFound) {
		return def
	}
	if err != nil {
		log.Errorf("read goal artifact [%s], using default %d: %s", s.artifact, def, err)
		return def
	}

	var goal goalArtifact
	if err := json.Unmarshal(data, &goal); err != nil {
		s.malformed(fmt.Sprintf("unmarshal: %s", err), def)
		return def
	}
	if goal.GoalMinutes == nil {
		s.malformed("goal_minutes missing", def)
		return def
	}
	if *goal.GoalMinutes <= 0 {
		s.malformed(fmt.Sprintf("non-positive goal %d", *goal.GoalMinutes), def)
		return def
	}

	return *goal.GoalMinutes
}

func (s *GoalStore) malformed(reason string, def int) {
	log.WithField("artifact", s.artifact).Warnf("malformed goal artifact, using default %d: %s", def, reason)
	s.metrics.MalformedArtifact(s.artifact)
}

func (s *GoalStore) Save(ctx context.Context, goalMinutes int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalStore.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if goalMinutes <= 0 {
		return ErrInvalidGoal
	}

	data, err := json.Marshal(goalArtifact{GoalMinutes: &goalMinutes})
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}
	if err := s.backend.Write(ctx, s.artifact, data); err != nil {
		return fmt.Errorf("write goal: %w", err)
	}
	return nil
}
