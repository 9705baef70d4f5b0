package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestShouldRetry_ExhaustedAttempts: задача с исчерпанными попытками не повторяется
func TestShouldRetry_ExhaustedAttempts(t *testing.T) {
	rm := NewRetryManager(3, time.Second)
	task := &Task{ID: "t1", Type: TaskTypeSendReminders, Attempts: 3, MaxRetries: 3}

	retry, _ := rm.ShouldRetry(task, errors.New("connection refused"))

	assert.False(t, retry)
}

// TestShouldRetry_NonRetryableErrors: ошибки данных не лечатся повтором
func TestShouldRetry_NonRetryableErrors(t *testing.T) {
	rm := NewRetryManager(3, time.Second)
	task := &Task{ID: "t1", Type: TaskTypeExportHistory, Attempts: 0, MaxRetries: 3}

	tests := []struct {
		name string
		err  error
	}{
		{name: "invalid data", err: errors.New("invalid user_id in task data")},
		{name: "missing row", err: errors.New("user not found")},
		{name: "forbidden", err: errors.New("forbidden operation")},
		{name: "unknown type", err: errors.New("unknown task type: foo")},
		{name: "nil error", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retry, _ := rm.ShouldRetry(task, tt.err)
			assert.False(t, retry)
		})
	}
}

func TestShouldRetry_TransientError(t *testing.T) {
	rm := NewRetryManager(3, time.Second)
	task := &Task{ID: "t1", Type: TaskTypeMonthlyReport, Attempts: 1, MaxRetries: 3}

	retry, delay := rm.ShouldRetry(task, errors.New("connection refused"))

	assert.True(t, retry)
	assert.Greater(t, delay, time.Duration(0))
}

// TestCalculateBackoff проверяет экспоненциальный рост задержки с джиттером ±25%
func TestCalculateBackoff(t *testing.T) {
	base := time.Second
	rm := NewRetryManager(5, base)

	assert.Equal(t, base, rm.calculateBackoff(0))

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 1, expected: base},
		{attempt: 2, expected: 2 * base},
		{attempt: 3, expected: 4 * base},
	}

	for _, tt := range tests {
		delay := rm.calculateBackoff(tt.attempt)
		assert.GreaterOrEqual(t, delay, tt.expected*3/4, "attempt %d", tt.attempt)
		assert.LessOrEqual(t, delay, tt.expected*5/4, "attempt %d", tt.attempt)
	}
}

func TestCalculateBackoff_CappedAtMax(t *testing.T) {
	base := time.Second
	rm := NewRetryManager(20, base)

	delay := rm.calculateBackoff(10)

	assert.LessOrEqual(t, delay, base*16)
}

func TestSetBaseDelay_UpdatesMax(t *testing.T) {
	rm := NewRetryManager(3, time.Second)
	rm.SetBaseDelay(2 * time.Second)

	delay := rm.calculateBackoff(30)

	assert.LessOrEqual(t, delay, 32*time.Second)
}
