package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type check struct {
	name   string
	pinger Pinger
}

// Service coordinates health checks.
type Service struct {
	checks []check
}

// New creates a Service that checks the database.
func New(db Pinger) *Service {
	return &Service{checks: []check{{name: "database", pinger: db}}}
}

// WithCheck adds a named component check.
func (s *Service) WithCheck(name string, p Pinger) *Service {
	s.checks = append(s.checks, check{name: name, pinger: p})
	return s
}

// Check runs every component check.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))
	failed := 0
	for _, c := range s.checks {
		if err := c.pinger.Ping(ctx); err != nil {
			checks[c.name] = CheckError
			failed++
			continue
		}
		checks[c.name] = CheckOK
	}

	status := Healthy
	switch {
	case failed == len(s.checks) && failed > 0:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

// Names lists the checked components, sorted.
func (s *Service) Names() []string {
	out := make([]string, len(s.checks))
	for i, c := range s.checks {
		out[i] = c.name
	}
	sort.Strings(out)
	return out
}
