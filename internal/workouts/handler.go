package workouts

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/workoutlog/internal/chart"
	"github.com/2beens/workoutlog/internal/telemetry/metrics"
	"github.com/2beens/workoutlog/internal/telemetry/tracing"
	"github.com/2beens/workoutlog/pkg"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type recordsRepo interface {
	Load(ctx context.Context) ([]Record, error)
	Append(ctx context.Context, record Record) (*Record, error)
	At(ctx context.Context, index int) (*Record, error)
	DeleteAtWithID(ctx context.Context, index int, expectedID string) (*Record, error)
}

type goalRepo interface {
	Load(ctx context.Context, def int) int
	Save(ctx context.Context, goalMinutes int) error
}

type chartRenderer interface {
	Render(ctx context.Context, points []chart.Point) (chart.State, error)
	Image(ctx context.Context) ([]byte, error)
}

type WorkoutsListResponse struct {
	Workouts []Record `json:"workouts"`
	Total    int      `json:"total"`
}

type ProgressResponse struct {
	// Stats is null when no workouts are logged.
	Stats       *ProgressStats `json:"stats"`
	GoalMinutes int            `json:"goal_minutes"`
	Daily       []chart.Bar    `json:"daily"`
}

type Handler struct {
	records     recordsRepo
	goals       goalRepo
	chart       chartRenderer
	flashes     *flasher
	views       *views
	metrics     *metrics.Manager
	defaultGoal int
	now         func() time.Time
}

type HandlerParams struct {
	Records      recordsRepo
	Goals        goalRepo
	Chart        chartRenderer
	SessionStore sessions.Store
	Metrics      *metrics.Manager
	DefaultGoal  int
}

func NewHandler(params HandlerParams) (*Handler, error) {
	v, err := newViews()
	if err != nil {
		return nil, err
	}
	return &Handler{
		records:     params.Records,
		goals:       params.Goals,
		chart:       params.Chart,
		flashes:     &flasher{store: params.SessionStore},
		views:       v,
		metrics:     params.Metrics,
		defaultGoal: params.DefaultGoal,
		now:         time.Now,
	}, nil
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/", handler.HandleRoot).Methods("GET").Name("root")
	router.HandleFunc("/log", handler.HandleLogForm).Methods("GET").Name("log-form")
	router.HandleFunc("/log", handler.HandleLogWorkout).Methods("POST").Name("log-workout")
	router.HandleFunc("/history", handler.HandleHistory).Methods("GET").Name("history")
	router.HandleFunc("/history/{index:[0-9]+}/delete", handler.HandleConfirmDelete).Methods("GET").Name("confirm-delete")
	router.HandleFunc("/history/{index:[0-9]+}/delete", handler.HandleDelete).Methods("POST").Name("delete-workout")
	router.HandleFunc("/progress", handler.HandleProgress).Methods("GET").Name("progress")
	router.HandleFunc("/progress/goal", handler.HandleUpdateGoal).Methods("POST").Name("update-goal")
	router.HandleFunc("/progress/chart.png", handler.HandleChart).Methods("GET").Name("chart")

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/workouts", handler.HandleListAPI).Methods("GET").Name("api-workouts")
	apiRouter.HandleFunc("/progress", handler.HandleProgressAPI).Methods("GET").Name("api-progress")
}

func (handler *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/log", http.StatusFound)
}

type logPage struct {
	basePage
	Today string
}

func (handler *Handler) HandleLogForm(w http.ResponseWriter, r *http.Request) {
	handler.views.render(w, viewLog, logPage{
		basePage: basePage{
			Title:    "Log workout",
			Messages: handler.flashes.pop(w, r),
		},
		Today: handler.now().Format(time.DateOnly),
	}, http.StatusOK)
}

func (handler *Handler) HandleLogWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.log")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("log workout failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	record := Record{
		WorkoutType: strings.TrimSpace(r.Form.Get("workout_type")),
		Date:        strings.TrimSpace(r.Form.Get("date")),
		Notes:       strings.TrimSpace(r.Form.Get("notes")),
	}
	if record.WorkoutType == "" || record.Date == "" {
		handler.redirectWithMessage(w, r, "/log", MessageMissingFields)
		return
	}

	duration, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("duration")))
	if err != nil || duration <= 0 || duration > MaxDurationMinutes {
		handler.redirectWithMessage(w, r, "/log", MessageInvalidDuration)
		return
	}
	record.Duration = duration

	added, err := handler.records.Append(ctx, record)
	if err != nil {
		if errors.Is(err, ErrInvalidRecord) {
			log.Debugf("log workout, invalid record: %s", err)
			handler.redirectWithMessage(w, r, "/log", invalidRecordMessage(err))
			return
		}
		log.Errorf("failed to log workout [%s] [%s]: %s", record.WorkoutType, record.Date, err)
		handler.redirectWithMessage(w, r, "/log", MessageInternalError)
		return
	}

	handler.metrics.CounterWorkoutsLogged.Inc()
	log.Debugf("workout logged: [%s] [%s] %d min", added.ID, added.WorkoutType, added.Duration)
	handler.redirectWithMessage(w, r, "/log", MessageWorkoutLogged)
}

func invalidRecordMessage(err error) MessageKind {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			if fieldErr.Field() == "Duration" {
				return MessageInvalidDuration
			}
		}
	}
	return MessageMissingFields
}

type historyPage struct {
	basePage
	Records []Record
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	records, err := handler.records.Load(ctx)
	if err != nil {
		log.Errorf("history, load workouts: %s", err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	handler.views.render(w, viewHistory, historyPage{
		basePage: basePage{
			Title:    "History",
			Messages: handler.flashes.pop(w, r),
		},
		Records: records,
	}, http.StatusOK)
}

type confirmDeletePage struct {
	basePage
	Index  int
	Record Record
}

func (handler *Handler) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.confirmDelete")
	defer span.End()

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		handler.renderNotFound(w)
		return
	}

	record, err := handler.records.At(ctx, index)
	if errors.Is(err, ErrIndexOutOfRange) {
		handler.renderNotFound(w)
		return
	}
	if err != nil {
		log.Errorf("confirm delete, get workout %d: %s", index, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	if expectedID := r.URL.Query().Get("id"); expectedID != "" && expectedID != record.ID {
		handler.renderNotFound(w)
		return
	}

	handler.views.render(w, viewConfirmDelete, confirmDeletePage{
		basePage: basePage{Title: "Delete workout"},
		Index:    index,
		Record:   *record,
	}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		handler.renderNotFound(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	removed, err := handler.records.DeleteAtWithID(ctx, index, r.Form.Get("id"))
	if errors.Is(err, ErrIndexOutOfRange) || errors.Is(err, ErrStaleRecord) {
		log.Debugf("delete workout %d: %s", index, err)
		handler.renderNotFound(w)
		return
	}
	if err != nil {
		log.Errorf("failed to delete workout %d: %s", index, err)
		handler.redirectWithMessage(w, r, "/history", MessageInternalError)
		return
	}

	handler.metrics.CounterWorkoutsDeleted.Inc()
	log.Debugf("workout deleted: %d [%s] [%s]", index, removed.ID, removed.WorkoutType)
	handler.redirectWithMessage(w, r, "/history", MessageWorkoutDeleted)
}

type progressPage struct {
	basePage
	Stats        *ProgressStats
	GoalMinutes  int
	Daily        []chart.Bar
	ChartPresent bool
	ChartVersion int64
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.progress")
	defer span.End()

	records, err := handler.records.Load(ctx)
	if err != nil {
		log.Errorf("progress, load workouts: %s", err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	goal := handler.goals.Load(ctx, handler.defaultGoal)
	stats, err := Compute(records, goal)
	if err != nil && !errors.Is(err, ErrNoWorkouts) {
		log.Errorf("progress, compute stats: %s", err)
		http.Error(w, "failed to compute progress", http.StatusInternalServerError)
		return
	}

	points := ChartPoints(records)
	state, err := handler.chart.Render(ctx, points)
	if err != nil {
		// the page is still useful without the chart
		log.Errorf("progress, render chart: %s", err)
	}

	handler.views.render(w, viewProgress, progressPage{
		basePage: basePage{
			Title:    "Progress",
			Messages: handler.flashes.pop(w, r),
		},
		Stats:        stats,
		GoalMinutes:  goal,
		Daily:        chart.DailyTotals(points),
		ChartPresent: err == nil && state == chart.StatePresent,
		ChartVersion: handler.now().UnixNano(),
	}, http.StatusOK)
}

func (handler *Handler) HandleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateGoal")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	goal, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("goal_minutes")))
	if err != nil || goal <= 0 {
		handler.redirectWithMessage(w, r, "/progress", MessageInvalidGoal)
		return
	}

	if err := handler.goals.Save(ctx, goal); err != nil {
		if errors.Is(err, ErrInvalidGoal) {
			handler.redirectWithMessage(w, r, "/progress", MessageInvalidGoal)
			return
		}
		log.Errorf("failed to save goal %d: %s", goal, err)
		handler.redirectWithMessage(w, r, "/progress", MessageInternalError)
		return
	}

	log.Debugf("goal updated: %d", goal)
	handler.redirectWithMessage(w, r, "/progress", MessageGoalUpdated)
}

func (handler *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	data, err := handler.chart.Image(r.Context())
	if errors.Is(err, chart.ErrChartAbsent) {
		http.Error(w, "chart not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("read chart: %s", err)
		http.Error(w, "failed to get chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.PNG, data)
}

func (handler *Handler) HandleListAPI(w http.ResponseWriter, r *http.Request) {
	records, err := handler.records.Load(r.Context())
	if err != nil {
		log.Errorf("list workouts: %s", err)
		pkg.WriteJSONError(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, WorkoutsListResponse{
		Workouts: records,
		Total:    len(records),
	}, http.StatusOK)
}

func (handler *Handler) HandleProgressAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := handler.records.Load(ctx)
	if err != nil {
		log.Errorf("progress api, load workouts: %s", err)
		pkg.WriteJSONError(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	goal := handler.goals.Load(ctx, handler.defaultGoal)
	stats, err := Compute(records, goal)
	if err != nil && !errors.Is(err, ErrNoWorkouts) {
		log.Errorf("progress api, compute stats: %s", err)
		pkg.WriteJSONError(w, "failed to compute progress", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ProgressResponse{
		Stats:       stats,
		GoalMinutes: goal,
		Daily:       chart.DailyTotals(ChartPoints(records)),
	}, http.StatusOK)
}

func (handler *Handler) redirectWithMessage(w http.ResponseWriter, r *http.Request, target string, kind MessageKind) {
	handler.flashes.add(w, r, kind)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (handler *Handler) renderNotFound(w http.ResponseWriter) {
	handler.views.render(w, viewNotFound, basePage{Title: "Not found"}, http.StatusNotFound)
}
