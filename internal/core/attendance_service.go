package core

import (
	"context"
	"time"

	"truetime.service/internal/core/model"
	"truetime.service/internal/ports/repository"
)

const (
	defaultPageSize   = 50
	maxPageSize       = 200
	recentPunchesSize = 10
)

// AttendanceService owns the punch event log and everything derived
// from it: listings, daily summaries and the dashboard snapshot.
type AttendanceService struct {
	punches   repository.AttendanceRepository
	employees repository.EmployeeRepository
	shifts    repository.ShiftRepository
}

// NewAttendanceService wires the attendance service with its stores.
func NewAttendanceService(
	punches repository.AttendanceRepository,
	employees repository.EmployeeRepository,
	shifts repository.ShiftRepository,
) *AttendanceService {
	return &AttendanceService{
		punches:   punches,
		employees: employees,
		shifts:    shifts,
	}
}

// RecordPunch persists one punch. Replaying a (device, externalId) pair
// returns the already-stored event; see the repository contract.
func (s *AttendanceService) RecordPunch(ctx context.Context, params repository.RecordPunchParams) (*model.PunchEvent, error) {
	return s.punches.RecordPunch(ctx, params)
}

// ListPunches applies the pagination bounds and delegates to the store.
func (s *AttendanceService) ListPunches(ctx context.Context, filter repository.PunchFilter) (int64, []*model.PunchEvent, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.punches.ListPunches(ctx, filter)
}

// DailySummaries computes the attendance summary of every employee for
// one calendar day. Punches are fetched for [startOfDay, endOfDay) in
// UTC and reconciled against the shift effective on that day.
func (s *AttendanceService) DailySummaries(ctx context.Context, day model.Date) ([]*model.DailySummary, error) {
	startOfDay := day.StartOfDay()
	endOfDay := startOfDay.Add(24 * time.Hour)

	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.DailySummary, 0, len(employees))
	for _, employee := range employees {
		punches, err := s.punches.ListForEmployeeDay(ctx, employee.ID, startOfDay, endOfDay)
		if err != nil {
			return nil, err
		}

		assignment, err := s.shifts.AssignmentForDate(ctx, employee.ID, day)
		if err != nil {
			return nil, err
		}
		var shift *model.Shift
		if assignment != nil {
			shift = assignment.Shift
		}

		summary := ComputeDay(punches, shift, day)
		summary.Employee = employee
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Dashboard returns the aggregate counts plus the most recent punches.
func (s *AttendanceService) Dashboard(ctx context.Context) (*model.DashboardSnapshot, error) {
	metrics, err := s.punches.Metrics(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.punches.Recent(ctx, recentPunchesSize)
	if err != nil {
		return nil, err
	}
	return &model.DashboardSnapshot{Metrics: *metrics, RecentLogs: recent}, nil
}
