package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestScheduler_RunsJobPeriodically проверяет периодический запуск задачи
// и остановку по отмене контекста
func TestScheduler_RunsJobPeriodically(t *testing.T) {
	var runs int64

	s := NewScheduler(testLogger())
	s.AddJob(Job{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt64(&runs, 1)
			return nil
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	s.Start(ctx)

	assert.GreaterOrEqual(t, atomic.LoadInt64(&runs), int64(2))
}

// TestScheduler_JobErrorDoesNotStopTicker: ошибка одного запуска
// не останавливает последующие
func TestScheduler_JobErrorDoesNotStopTicker(t *testing.T) {
	var runs int64

	s := NewScheduler(testLogger())
	s.AddJob(Job{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt64(&runs, 1)
			return errors.New("transient failure")
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	s.Start(ctx)

	assert.GreaterOrEqual(t, atomic.LoadInt64(&runs), int64(2))
}

func TestScheduler_StartWithoutJobs(t *testing.T) {
	s := NewScheduler(testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start не завершился после отмены контекста")
	}
}
