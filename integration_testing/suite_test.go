package integration_testing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/2beens/workoutlog/internal/config"
	"github.com/2beens/workoutlog/internal/workouts"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/suite"
)

// IntegrationTestSuite runs the service against real redis and postgres containers.
// Needs docker, enabled with WORKOUTLOG_INTEGRATION=1.
type IntegrationTestSuite struct {
	suite.Suite

	DB           *sql.DB
	dockerPool   *dockertest.Pool
	redisPort    string
	postgresPort string
	client       *http.Client
	teardown     []func()
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	if os.Getenv("WORKOUTLOG_INTEGRATION") != "1" {
		s.T().Skip("integration tests disabled, set WORKOUTLOG_INTEGRATION=1")
	}

	s.teardown = make([]func(), 0)
	s.client = &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	var err error
	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	s.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}
	if err = s.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	var redisCleanup func()
	s.redisPort, redisCleanup, err = redisSetup(s.dockerPool)
	if err != nil {
		s.TearDownSuite()
		log.Fatalf("failed to setup redis: %s", err)
	}
	s.teardown = append(s.teardown, redisCleanup)

	var pgCleanup func()
	s.postgresPort, s.DB, pgCleanup, err = postgresSetup(s.dockerPool)
	if err != nil {
		s.TearDownSuite()
		log.Fatalf("failed to setup postgres: %s", err)
	}
	s.teardown = append(s.teardown, pgCleanup)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.DB != nil {
		_ = s.DB.Close()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func (s *IntegrationTestSuite) startServer(backend string, port int, rateLimit int) string {
	cfg, err := testConfig(backend, s.redisPort, s.postgresPort, port)
	s.Require().NoError(err)
	cfg.WriteRateLimitPerMin = rateLimit

	_, cleanup, err := startServer(context.Background(), s.dockerPool, cfg)
	s.Require().NoError(err)
	s.T().Cleanup(cleanup)

	return fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
}

func (s *IntegrationTestSuite) postForm(endpoint, path string, form url.Values) *http.Response {
	resp, err := s.client.PostForm(endpoint+path, form)
	s.Require().NoError(err)
	s.Require().NoError(resp.Body.Close())
	return resp
}

func (s *IntegrationTestSuite) getJSON(endpoint, path string, v any) {
	resp, err := s.client.Get(endpoint + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

func (s *IntegrationTestSuite) logExampleWorkouts(endpoint string) {
	for _, w := range []url.Values{
		{"workout_type": {"run"}, "duration": {"30"}, "date": {"2024-01-01"}},
		{"workout_type": {"walk"}, "duration": {"20"}, "date": {"2024-01-01"}},
		{"workout_type": {"run"}, "duration": {"45"}, "date": {"2024-01-02"}},
	} {
		resp := s.postForm(endpoint, "/log", w)
		s.Equal(http.StatusSeeOther, resp.StatusCode)
	}
}

func (s *IntegrationTestSuite) assertExampleProgress(endpoint string) {
	var progress workouts.ProgressResponse
	s.getJSON(endpoint, "/api/progress", &progress)
	s.Require().NotNil(progress.Stats)
	s.Equal(3, progress.Stats.TotalWorkouts)
	s.Equal(95, progress.Stats.TotalMinutes)
	s.Equal(32, progress.Stats.AvgMinutes)
	s.Equal(63, progress.Stats.ProgressPercent)
	s.Len(progress.Daily, 2)
}

func (s *IntegrationTestSuite) TestRedisBackend() {
	endpoint := s.startServer(config.BackendRedis, 9100, 0)

	s.logExampleWorkouts(endpoint)
	s.assertExampleProgress(endpoint)

	resp, err := s.client.Get(endpoint + "/progress")
	s.Require().NoError(err)
	s.Require().NoError(resp.Body.Close())
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, err = s.client.Get(endpoint + "/progress/chart.png")
	s.Require().NoError(err)
	s.Require().NoError(resp.Body.Close())
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("image/png", resp.Header.Get("Content-Type"))
}

func (s *IntegrationTestSuite) TestPostgresBackend() {
	endpoint := s.startServer(config.BackendPostgres, 9110, 0)

	s.logExampleWorkouts(endpoint)
	s.assertExampleProgress(endpoint)

	resp := s.postForm(endpoint, "/progress/goal", url.Values{"goal_minutes": {"95"}})
	s.Equal(http.StatusSeeOther, resp.StatusCode)

	var progress workouts.ProgressResponse
	s.getJSON(endpoint, "/api/progress", &progress)
	s.Require().NotNil(progress.Stats)
	s.Equal(100, progress.Stats.ProgressPercent)

	var recordsData, goalData string
	s.Require().NoError(s.DB.QueryRow(
		`SELECT convert_from(data, 'UTF8') FROM workoutlog_artifact WHERE name = $1`, "workouts.json",
	).Scan(&recordsData))
	s.Require().NoError(s.DB.QueryRow(
		`SELECT convert_from(data, 'UTF8') FROM workoutlog_artifact WHERE name = $1`, "goal.json",
	).Scan(&goalData))
	s.Equal(3, strings.Count(recordsData, `"workout_type"`))
	s.JSONEq(`{"goal_minutes":95}`, goalData)

	// delete everything through the history route
	for i := 0; i < 3; i++ {
		resp := s.postForm(endpoint, "/history/0/delete", url.Values{})
		s.Equal(http.StatusSeeOther, resp.StatusCode)
	}
	resp = s.postForm(endpoint, "/history/0/delete", url.Values{})
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestWriteRateLimit() {
	endpoint := s.startServer(config.BackendMemory, 9120, 2)

	form := url.Values{"workout_type": {"run"}, "duration": {"10"}, "date": {"2024-01-01"}}
	s.Equal(http.StatusSeeOther, s.postForm(endpoint, "/log", form).StatusCode)
	s.Equal(http.StatusSeeOther, s.postForm(endpoint, "/log", form).StatusCode)
	s.Equal(http.StatusTooManyRequests, s.postForm(endpoint, "/log", form).StatusCode)

	// reads are never limited
	var list workouts.WorkoutsListResponse
	s.getJSON(endpoint, "/api/workouts", &list)
	s.Equal(2, list.Total)
}
