package core

import (
	"context"
	"time"

	"parkcore/internal/catalog"
)

// Clock supplies the engine's notion of now.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

func systemClock() Clock { return ClockFunc(func() time.Time { return time.Now().UTC() }) }

// Logger is the structured logging surface used by the service. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// AuditStatus is the outcome recorded for an audited operation.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one mutating operation.
type AuditEntry struct {
	ID        string        `json:"id"`
	Operation string        `json:"operation"`
	Entity    EntityType    `json:"entity"`
	Action    Action        `json:"action"`
	EntityID  string        `json:"entity_id"`
	Status    AuditStatus   `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// AuditRecorder receives audit entries for mutating operations.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// MetricsRecorder observes operation outcomes and latency.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// TraceSpan is an in-flight operation span.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

func (noopSpan) End(error) {}

// ChangeEvent is published after a transaction commits. Sequence is taken
// while the store's write lock is held, so it follows commit order; gaps
// mark transactions that were aborted.
type ChangeEvent struct {
	ID        string    `json:"id"`
	Sequence  uint64    `json:"sequence"`
	Operation string    `json:"operation"`
	Changes   []Change  `json:"changes"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangeListener receives committed change events. Implementations must not
// block. Publication happens after the store lock is released, so events of
// concurrent commits may arrive out of order; use Sequence to reorder.
type ChangeListener interface {
	OnChange(ctx context.Context, event ChangeEvent)
}

// ChangeListenerFunc adapts a function to ChangeListener.
type ChangeListenerFunc func(ctx context.Context, event ChangeEvent)

// OnChange implements ChangeListener.
func (f ChangeListenerFunc) OnChange(ctx context.Context, event ChangeEvent) { f(ctx, event) }

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the clock used for feeding timestamps and audit entries.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger installs a structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditRecorder installs an audit recorder.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.audit = recorder
		}
	}
}

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithEvaluator selects the compatibility evaluator.
func WithEvaluator(evaluator catalog.Evaluator) Option {
	return func(s *Service) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithCatalog replaces the species catalog used for admission lookups.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithChangeListener registers a listener for committed changes.
func WithChangeListener(listener ChangeListener) Option {
	return func(s *Service) {
		if listener != nil {
			s.listeners = append(s.listeners, listener)
		}
	}
}
