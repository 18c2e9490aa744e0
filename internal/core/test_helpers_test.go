package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type stubClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, opts ...Option) (*Service, *stubClock) {
	t.Helper()
	clk := &stubClock{t: fixedNow}
	svc := NewInMemoryService(nil, append([]Option{WithClock(clk)}, opts...)...)
	return svc, clk
}

func mustCreateZone(t *testing.T, svc *Service, name string, open bool) {
	t.Helper()
	if _, _, err := svc.CreateZone(context.Background(), name, open); err != nil {
		t.Fatalf("create zone %s: %v", name, err)
	}
}

func mustAdmit(t *testing.T, svc *Service, zone, name, species string) Dinosaur {
	t.Helper()
	d, _, err := svc.AdmitDinosaur(context.Background(), zone, DinosaurSpec{Name: name, Species: species})
	if err != nil {
		t.Fatalf("admit %s into %s: %v", name, zone, err)
	}
	return d
}

func dinosaurNames(ds []Dinosaur) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Name)
	}
	return out
}

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (c *captureLogger) add(entry string) {
	c.mu.Lock()
	c.calls = append(c.calls, entry)
	c.mu.Unlock()
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.add("d:" + msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.add("i:" + msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.add("w:" + msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.add("e:" + msg) }

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus, predicate func(AuditEntry) bool) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			if predicate == nil || predicate(entry) {
				return true
			}
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, record := range c.ended {
		if record.op == op && (record.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

type captureListener struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (c *captureListener) OnChange(_ context.Context, event ChangeEvent) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
}
