package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flexprice/fiscal/internal/logger"
	"github.com/jmoiron/sqlx"
)

// QueryTracer logs the duration and outcome of a single statement
type QueryTracer struct {
	logger    *logger.Logger
	query     string
	params    interface{}
	start     time.Time
	requestID string
}

// NewQueryTracer creates a new query tracer
func NewQueryTracer(logger *logger.Logger, query string, params interface{}, requestID string) *QueryTracer {
	return &QueryTracer{
		logger:    logger,
		query:     query,
		params:    params,
		start:     time.Now(),
		requestID: requestID,
	}
}

// Done logs the query completion. sql.ErrNoRows is an expected outcome
// and is logged at debug level.
func (qt *QueryTracer) Done(err error) {
	fields := []interface{}{
		"duration_ms", time.Since(qt.start).Milliseconds(),
		"query", qt.query,
		"param_count", paramCount(qt.params),
	}
	if qt.requestID != "" {
		fields = append(fields, "request_id", qt.requestID)
	}
	if err != nil && err != sql.ErrNoRows {
		fields = append(fields, "error", err.Error())
		qt.logger.Errorw("database query failed", fields...)
		return
	}
	qt.logger.Debugw("database query completed", fields...)
}

// Parameters are not logged, they carry certificate envelopes and tax ids.
func paramCount(params interface{}) string {
	if args, ok := params.([]interface{}); ok {
		return fmt.Sprintf("%d", len(args))
	}
	return "named"
}

// TracedQuerier wraps a Querier with tracing
type TracedQuerier struct {
	Querier
	logger    *logger.Logger
	requestID string
}

// NewTracedQuerier creates a new traced querier
func NewTracedQuerier(q Querier, logger *logger.Logger, requestID string) *TracedQuerier {
	return &TracedQuerier{
		Querier:   q,
		logger:    logger,
		requestID: requestID,
	}
}

func (tq *TracedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	tracer := NewQueryTracer(tq.logger, query, args, tq.requestID)
	result, err := tq.Querier.ExecContext(ctx, query, args...)
	tracer.Done(err)
	return result, err
}

func (tq *TracedQuerier) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	tracer := NewQueryTracer(tq.logger, query, arg, tq.requestID)
	result, err := tq.Querier.NamedExecContext(ctx, query, arg)
	tracer.Done(err)
	return result, err
}

func (tq *TracedQuerier) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	tracer := NewQueryTracer(tq.logger, query, args, tq.requestID)
	rows, err := tq.Querier.QueryxContext(ctx, query, args...)
	tracer.Done(err)
	return rows, err
}

func (tq *TracedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	tracer := NewQueryTracer(tq.logger, query, args, tq.requestID)
	err := tq.Querier.GetContext(ctx, dest, query, args...)
	tracer.Done(err)
	return err
}

func (tq *TracedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	tracer := NewQueryTracer(tq.logger, query, args, tq.requestID)
	err := tq.Querier.SelectContext(ctx, dest, query, args...)
	tracer.Done(err)
	return err
}
