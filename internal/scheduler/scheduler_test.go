package scheduler

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshith-07/fitflow-pro/internal/clock"
	"github.com/akshith-07/fitflow-pro/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 10, hour, minute, 0, 0, time.UTC)
}

func countingJob(name string, every time.Duration, atHour int, runs *int) Job {
	return Job{
		Name:   name,
		Every:  every,
		AtHour: atHour,
		Run: func(ctx context.Context) (int, error) {
			*runs++
			return 0, nil
		},
	}
}

func TestHourlyJobFiresOncePerInterval(t *testing.T) {
	runs := 0
	r := New(clock.Fixed(at(2, 0)), countingJob("hourly", time.Hour, 0, &runs))

	ctx := context.Background()
	r.Tick(ctx, at(2, 0))
	r.Tick(ctx, at(2, 30))
	r.Tick(ctx, at(3, 0))
	r.Tick(ctx, at(3, 1))

	assert.Equal(t, 2, runs)
}

func TestDailyJobFiresOnceAtHour(t *testing.T) {
	runs := 0
	r := New(clock.Fixed(at(2, 0)), countingJob("daily", 0, 2, &runs))

	ctx := context.Background()
	r.Tick(ctx, at(1, 59))
	r.Tick(ctx, at(2, 0))
	r.Tick(ctx, at(2, 1))
	r.Tick(ctx, at(2, 59))
	r.Tick(ctx, at(14, 0))

	assert.Equal(t, 1, runs)

	// Next day it fires again.
	r.Tick(ctx, at(2, 0).AddDate(0, 0, 1))
	assert.Equal(t, 2, runs)
}

func TestJobErrorDoesNotStopOthers(t *testing.T) {
	runs := 0
	failing := Job{
		Name:  "failing",
		Every: time.Hour,
		Run: func(ctx context.Context) (int, error) {
			return 0, assert.AnError
		},
	}
	r := New(clock.Fixed(at(2, 0)), failing, countingJob("ok", time.Hour, 0, &runs))

	r.Tick(context.Background(), at(2, 0))
	assert.Equal(t, 1, runs)
}

func TestRunJobByName(t *testing.T) {
	runs := 0
	r := New(clock.Fixed(at(2, 0)), countingJob("unfreeze-memberships", 0, 6, &runs))

	n, err := r.RunJob(context.Background(), "unfreeze-memberships")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, runs)

	_, err = r.RunJob(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestJobNames(t *testing.T) {
	r := New(clock.Fixed(at(2, 0)),
		Job{Name: "a", Every: time.Hour, Run: func(ctx context.Context) (int, error) { return 0, nil }},
		Job{Name: "b", AtHour: 8, Run: func(ctx context.Context) (int, error) { return 0, nil }},
	)
	assert.Equal(t, []string{"a", "b"}, r.JobNames())
}
