package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/flexprice/fiscal/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestQueryTracer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	NewQueryTracer(log, "SELECT 1", []interface{}{"a"}, "req-1").Done(nil)
	NewQueryTracer(log, "SELECT 1", nil, "").Done(sql.ErrNoRows)
	NewQueryTracer(log, "UPDATE devices", nil, "req-2").Done(errors.New("connection reset"))

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "request_id")

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "connection reset", entries[2].ContextMap()["error"])
	assert.Equal(t, "req-2", entries[2].ContextMap()["request_id"])
}
