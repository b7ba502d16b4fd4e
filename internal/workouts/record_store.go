package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/2beens/workoutlog/internal/storage"
	"github.com/2beens/workoutlog/internal/telemetry/metrics"
	"github.com/2beens/workoutlog/internal/telemetry/tracing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// RecordStore keeps the ordered sequence of workouts as a single artifact.
// Writes from one store are serialized, two stores over the same artifact are not
// coordinated and the last save wins.
type RecordStore struct {
	backend  storage.Backend
	artifact string
	metrics  *metrics.Manager
	validate *validator.Validate
	newID    func() string

	mutex sync.Mutex
}

func NewRecordStore(backend storage.Backend, artifact string, metricsManager *metrics.Manager) *RecordStore {
	return &RecordStore{
		backend:  backend,
		artifact: artifact,
		metrics:  metricsManager,
		validate: validator.New(),
		newID:    uuid.NewString,
	}
}

// Load never fails on a missing or unparseable artifact, both yield an empty sequence.
func (s *RecordStore) Load(ctx context.Context) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recordStore.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	data, err := s.backend.Read(ctx, s.artifact)
	if errors.Is(err, storage.ErrArtifactNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.WithField("artifact", s.artifact).Warnf("malformed records artifact, using empty: %s", err)
		s.metrics.MalformedArtifact(s.artifact)
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func (s *RecordStore) Save(ctx context.Context, records []Record) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recordStore.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := s.backend.Write(ctx, s.artifact, data); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// Append validates the record, gives it an ID if it has none and persists it at the end.
func (s *RecordStore) Append(ctx context.Context, record Record) (*Record, error) {
	if err := s.validate.Struct(record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if record.ID == "" {
		record.ID = s.newID()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	records = append(records, record)
	if err := s.Save(ctx, records); err != nil {
		return nil, err
	}

	log.Debugf("workout appended: [%s] [%s] %d min, total: %d", record.ID, record.WorkoutType, record.Duration, len(records))
	return &record, nil
}

func (s *RecordStore) At(ctx context.Context, index int) (*Record, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(records) {
		return nil, ErrIndexOutOfRange
	}
	return &records[index], nil
}

func (s *RecordStore) DeleteAt(ctx context.Context, index int) (*Record, error) {
	return s.DeleteAtWithID(ctx, index, "")
}

// DeleteAtWithID removes the record at index only if its ID equals expectedID.
// An empty expectedID skips the check. Nothing is persisted on failure.
func (s *RecordStore) DeleteAtWithID(ctx context.Context, index int, expectedID string) (*Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(records) {
		return nil, ErrIndexOutOfRange
	}

	removed := records[index]
	if expectedID != "" && removed.ID != expectedID {
		return nil, ErrStaleRecord
	}

	records = append(records[:index], records[index+1:]...)
	if err := s.Save(ctx, records); err != nil {
		return nil, err
	}

	log.Debugf("workout deleted: [%d] [%s] [%s], left: %d", index, removed.ID, removed.WorkoutType, len(records))
	return &removed, nil
}
