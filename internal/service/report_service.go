package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fixit-suporte/fixit-gateway/internal/backend"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	"github.com/fixit-suporte/fixit-gateway/internal/session"
)

// ReportService aggregates backend incidents into dashboard and report
// views. Aggregation happens gateway-side on the full listing; the backend
// offers no counting endpoints.
type ReportService struct {
	incidents backend.IncidentAPI
	sessions  session.Store
	logger    *zap.Logger
}

// NewReportService builds the service.
func NewReportService(incidents backend.IncidentAPI, sessions session.Store, logger *zap.Logger) *ReportService {
	return &ReportService{incidents: incidents, sessions: sessions, logger: logger}
}

// DashboardSummary is the landing-page aggregate.
type DashboardSummary struct {
	Total      int               `json:"total"`
	Open       int               `json:"open"`
	InProgress int               `json:"in_progress"`
	Resolved   int               `json:"resolved"`
	Recent     []domain.Incident `json:"recent"`
	Welcome    bool              `json:"welcome"`
}

// Summary counts incidents by status and picks the five most recent. The
// welcome flag fires exactly once per account, on its first dashboard
// visit.
func (s *ReportService) Summary(ctx context.Context, actor *domain.User) (*DashboardSummary, error) {
	incidents, err := s.incidents.ListIncidents(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{Total: len(incidents)}
	for _, inc := range incidents {
		switch inc.Status {
		case domain.StatusOpen:
			summary.Open++
		case domain.StatusInProgress:
			summary.InProgress++
		case domain.StatusResolved:
			summary.Resolved++
		}
	}

	sorted := make([]domain.Incident, len(incidents))
	copy(sorted, incidents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	summary.Recent = sorted

	first, err := s.sessions.MarkLoggedIn(ctx, actor.ID)
	if err != nil {
		// Losing the welcome banner is not worth failing the dashboard.
		s.logger.Warn("first-login flag unavailable", zap.Error(err))
	}
	summary.Welcome = first

	return summary, nil
}

// Report breaks incidents down along every reporting axis.
type Report struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	PeriodDays   int               `json:"period_days,omitempty"`
	Total        int               `json:"total"`
	ByStatus     map[string]int    `json:"by_status"`
	ByPriority   map[string]int    `json:"by_priority"`
	ByDepartment []DepartmentCount `json:"by_department"`
}

// DepartmentCount pairs a department with its incident count.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// BuildReport aggregates by status, priority and department. A positive
// periodDays restricts the window to incidents created within the last N
// days; zero means everything.
func (s *ReportService) BuildReport(ctx context.Context, periodDays int) (*Report, error) {
	incidents, err := s.incidents.ListIncidents(ctx)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if periodDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -periodDays)
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		PeriodDays:  periodDays,
		ByStatus:    make(map[string]int),
		ByPriority:  make(map[string]int),
	}
	byDepartment := make(map[string]int)

	for _, inc := range incidents {
		if !cutoff.IsZero() && inc.CreatedAt.Before(cutoff) {
			continue
		}
		report.Total++
		report.ByStatus[inc.Status.String()]++
		report.ByPriority[inc.Priority.String()]++

		dept := domain.Fold(inc.Department)
		if dept == "" {
			dept = "desconhecido"
		}
		byDepartment[dept]++
	}

	report.ByDepartment = make([]DepartmentCount, 0, len(byDepartment))
	for dept, count := range byDepartment {
		report.ByDepartment = append(report.ByDepartment, DepartmentCount{Department: dept, Count: count})
	}
	sort.Slice(report.ByDepartment, func(i, j int) bool {
		if report.ByDepartment[i].Count != report.ByDepartment[j].Count {
			return report.ByDepartment[i].Count > report.ByDepartment[j].Count
		}
		return report.ByDepartment[i].Department < report.ByDepartment[j].Department
	})

	return report, nil
}
