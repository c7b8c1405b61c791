package sql

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StatsSnapshot is a point-in-time copy of the statement counters of a
// Backend.
type StatsSnapshot struct {
	Queries int64
	Execs   int64
	Errors  int64
	Slow    int64
	Elapsed time.Duration
}

// Avg returns the mean statement duration.
func (s StatsSnapshot) Avg() time.Duration {
	if n := s.Queries + s.Execs; n > 0 {
		return s.Elapsed / time.Duration(n)
	}
	return 0
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d errors=%d slow=%d avg=%s", s.Queries, s.Execs, s.Errors, s.Slow, s.Avg())
}

type stats struct {
	queries atomic.Int64
	execs   atomic.Int64
	errors  atomic.Int64
	slow    atomic.Int64
	elapsed atomic.Int64
}

// WithSlowThreshold logs statements that take longer than d at warn level
// and counts them as slow. Zero disables the check.
func WithSlowThreshold(d time.Duration) BackendOption {
	return func(b *Backend) { b.slow = d }
}

// Stats returns the statement counters since the backend was created.
func (b *Backend) Stats() StatsSnapshot {
	return StatsSnapshot{
		Queries: b.stats.queries.Load(),
		Execs:   b.stats.execs.Load(),
		Errors:  b.stats.errors.Load(),
		Slow:    b.stats.slow.Load(),
		Elapsed: time.Duration(b.stats.elapsed.Load()),
	}
}

func (b *Backend) observe(kind, stmt string, args []any, start time.Time, err error) {
	d := time.Since(start)
	if kind == "query" {
		b.stats.queries.Add(1)
	} else {
		b.stats.execs.Add(1)
	}
	b.stats.elapsed.Add(int64(d))
	if err != nil {
		b.stats.errors.Add(1)
	}
	if b.slow > 0 && d > b.slow {
		b.stats.slow.Add(1)
		b.log.Warn("dialect/sql: slow "+kind,
			zap.Duration("duration", d),
			zap.String("query", stmt),
			zap.Any("args", args),
		)
	}
}
