package db

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type queryStartContextKey struct{}

type queryStart struct {
	query string
	at    time.Time
}

// queryTracer logs every statement at debug level and failures at warn level.
type queryTracer struct {
	logger *slog.Logger
}

func newQueryTracer(logger *slog.Logger) *queryTracer {
	return &queryTracer{logger: logger}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartContextKey{}, queryStart{
		query: normalizeQuery(data.SQL),
		at:    time.Now(),
	})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartContextKey{}).(queryStart)
	if !ok {
		return
	}

	attrs := []any{
		"db.operation", queryOperation(start.query),
		"duration_ms", time.Since(start.at).Milliseconds(),
	}
	if rows := data.CommandTag.RowsAffected(); rows >= 0 {
		attrs = append(attrs, "db.rows_affected", rows)
	}

	if data.Err != nil {
		t.logger.WarnContext(ctx, "query failed", append(attrs, "query", start.query, "error", data.Err)...)
		return
	}
	t.logger.DebugContext(ctx, "query completed", attrs...)
}

func normalizeQuery(query string) string {
	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return "sql.query"
	}

	normalized = strings.Join(strings.Fields(normalized), " ")
	const maxLen = 512
	if len(normalized) > maxLen {
		return normalized[:maxLen]
	}
	return normalized
}

func queryOperation(query string) string {
	if query == "" {
		return ""
	}

	parts := strings.Fields(query)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToUpper(parts[0])
}
