package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskValidate(t *testing.T) {
	task := &Task{ID: "t1", Type: TaskTypeSendReminders}

	require.NoError(t, task.Validate())
	assert.NotNil(t, task.Data, "Validate инициализирует пустую карту данных")

	assert.Error(t, (&Task{Type: TaskTypeSendReminders}).Validate())
	assert.Error(t, (&Task{ID: "t1"}).Validate())
}

// TestGetInt64 проверяет чтение числовых значений разных типов:
// после json.Unmarshal числа приходят как float64
func TestGetInt64(t *testing.T) {
	task := &Task{Data: map[string]interface{}{
		"as_int64":   int64(42),
		"as_int":     42,
		"as_float64": float64(42),
		"as_string":  "42",
	}}

	assert.Equal(t, int64(42), task.GetInt64("as_int64"))
	assert.Equal(t, int64(42), task.GetInt64("as_int"))
	assert.Equal(t, int64(42), task.GetInt64("as_float64"))
	assert.Equal(t, int64(0), task.GetInt64("as_string"))
	assert.Equal(t, int64(0), task.GetInt64("missing"))
}

func TestGetString(t *testing.T) {
	task := &Task{Data: map[string]interface{}{
		"name":   "alice",
		"number": 42,
	}}

	assert.Equal(t, "alice", task.GetString("name"))
	assert.Equal(t, "", task.GetString("number"))
	assert.Equal(t, "", task.GetString("missing"))
}

func TestGetTime(t *testing.T) {
	stamp := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	task := &Task{Data: map[string]interface{}{
		"at":  stamp.Format(time.RFC3339),
		"bad": "not-a-time",
	}}

	assert.Equal(t, stamp, task.GetTime("at"))
	assert.True(t, task.GetTime("bad").IsZero())
	assert.True(t, task.GetTime("missing").IsZero())
}
