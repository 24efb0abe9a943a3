package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}).WithCheck("content", PingFunc(func(context.Context) error { return nil }))
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK || r.Checks["content"] != CheckOK {
		t.Errorf("expected all checks ok, got %v", r.Checks)
	}
}

func TestCheck_PartialFailureIsDegraded(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}).WithCheck("content", &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

func TestCheck_DatabaseOnlyFailureIsUnhealthy(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestNames(t *testing.T) {
	svc := New(&mockPinger{}).WithCheck("content", &mockPinger{})
	names := svc.Names()
	if len(names) != 2 || names[0] != "content" || names[1] != "database" {
		t.Errorf("unexpected names %v", names)
	}
}
