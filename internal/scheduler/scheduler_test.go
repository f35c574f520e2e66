package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskbadge/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // 처음 N번 실패
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler(retries int) *Scheduler {
	return New(time.UTC, logger.Nop(), WithRetry(retries, time.Millisecond))
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&fakeJob{name: "daily_kr", schedule: "0 0 18 * * 1-5"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "daily_us", schedule: "0 0 9 * * 2-6"}))

	assert.Error(t, s.AddJob(&fakeJob{name: "daily_kr", schedule: "0 0 18 * * 1-5"}), "duplicate name")
	assert.Error(t, s.AddJob(&fakeJob{name: "broken", schedule: "0 18 * * 1-5"}), "five-field spec needs seconds")

	assert.Equal(t, []string{"daily_kr", "daily_us"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&fakeJob{name: "daily_kr", schedule: "0 0 18 * * 1-5"}))

	require.NoError(t, s.RemoveJob("daily_kr"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("daily_kr"))

	_, err := s.NextRun("daily_kr")
	assert.Error(t, err)
}

func TestRunJob_Retries(t *testing.T) {
	s := newTestScheduler(2)
	job := &fakeJob{name: "daily_kr", schedule: "0 0 18 * * 1-5", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "daily_kr")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.Error)

	stats := s.GetJobStats()["daily_kr"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestRunJob_ExhaustsRetries(t *testing.T) {
	s := newTestScheduler(1)
	job := &fakeJob{name: "daily_us", schedule: "0 0 9 * * 2-6", failures: 10}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "daily_us")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "transient", result.Error)

	history, err := s.GetJobHistory("daily_us")
	require.NoError(t, err)
	assert.Len(t, history.GetFailedResults(), 1)
	assert.Equal(t, 0.0, history.GetSuccessRate())
}

func TestRunJob_CancelledStopsRetrying(t *testing.T) {
	s := newTestScheduler(5)
	job := &fakeJob{name: "daily_kr", schedule: "0 0 18 * * 1-5", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJob(ctx, "daily_kr")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
}

func TestRunJob_Unknown(t *testing.T) {
	s := newTestScheduler(0)
	_, err := s.RunJob(context.Background(), "nope")
	assert.Error(t, err)
}

func TestNextRun_BeforeStart(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&fakeJob{name: "daily_kr", schedule: "0 0 18 * * 1-5"}))

	next, err := s.NextRun("daily_kr")
	require.NoError(t, err)
	assert.True(t, next.IsZero())
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&fakeJob{name: "daily_kr", schedule: "0 0 18 * * 1-5"}))

	s.Start()
	s.Stop()
}

func TestJobHistory_Trim(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+5; i++ {
		h.AddResult(JobResult{JobName: "daily_kr", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
}
