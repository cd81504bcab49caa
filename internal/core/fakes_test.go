package core

import (
	"context"
	"time"

	"truetime.service/internal/core/model"
	"truetime.service/internal/ports/repository"
)

type fakeEmployeeRepo struct {
	employees []*model.Employee
}

func (f *fakeEmployeeRepo) Create(_ context.Context, params repository.CreateEmployeeParams) (*model.Employee, error) {
	employee := &model.Employee{
		ID:         int64(len(f.employees) + 1),
		Code:       params.Code,
		FirstName:  params.FirstName,
		LastName:   params.LastName,
		Department: params.Department,
	}
	f.employees = append(f.employees, employee)
	return employee, nil
}

func (f *fakeEmployeeRepo) List(context.Context) ([]*model.Employee, error) {
	return f.employees, nil
}

func (f *fakeEmployeeRepo) GetByCode(_ context.Context, code string) (*model.Employee, error) {
	for _, employee := range f.employees {
		if employee.Code == code {
			return employee, nil
		}
	}
	return nil, ErrEmployeeNotFound
}

type fakeShiftRepo struct {
	shifts      map[int64]*model.Shift
	assignments []*model.ShiftAssignment
	nextID      int64
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[int64]*model.Shift)}
}

func (f *fakeShiftRepo) addShift(shift *model.Shift) {
	f.shifts[shift.ID] = shift
}

func (f *fakeShiftRepo) Create(_ context.Context, params repository.CreateShiftParams) (*model.Shift, error) {
	f.nextID++
	shift := &model.Shift{
		ID:           f.nextID,
		Name:         params.Name,
		StartTime:    params.StartTime,
		EndTime:      params.EndTime,
		GraceMinutes: params.GraceMinutes,
	}
	f.shifts[shift.ID] = shift
	return shift, nil
}

func (f *fakeShiftRepo) List(context.Context) ([]*model.Shift, error) {
	shifts := make([]*model.Shift, 0, len(f.shifts))
	for _, shift := range f.shifts {
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

func (f *fakeShiftRepo) Get(_ context.Context, id int64) (*model.Shift, error) {
	shift, ok := f.shifts[id]
	if !ok {
		return nil, ErrShiftNotFound
	}
	return shift, nil
}

func (f *fakeShiftRepo) CreateAssignment(_ context.Context, employeeID, shiftID int64, from model.Date, to *model.Date) (*model.ShiftAssignment, error) {
	f.nextID++
	assignment := &model.ShiftAssignment{
		ID:            f.nextID,
		EmployeeID:    employeeID,
		ShiftID:       shiftID,
		EffectiveFrom: from,
		EffectiveTo:   to,
	}
	f.assignments = append(f.assignments, assignment)
	return assignment, nil
}

func (f *fakeShiftRepo) AssignmentsCovering(_ context.Context, employeeID int64, from model.Date) ([]*model.ShiftAssignment, error) {
	var covering []*model.ShiftAssignment
	for _, assignment := range f.assignments {
		if assignment.EmployeeID != employeeID {
			continue
		}
		if assignment.EffectiveTo != nil && assignment.EffectiveTo.Before(from.Time) {
			continue
		}
		covering = append(covering, assignment)
	}
	return covering, nil
}

func (f *fakeShiftRepo) TruncateAssignment(_ context.Context, assignmentID int64, to model.Date) error {
	for _, assignment := range f.assignments {
		if assignment.ID == assignmentID {
			assignment.EffectiveTo = &to
			return nil
		}
	}
	return ErrShiftNotFound
}

func (f *fakeShiftRepo) AssignmentForDate(_ context.Context, employeeID int64, day model.Date) (*model.ShiftAssignment, error) {
	var best *model.ShiftAssignment
	for _, assignment := range f.assignments {
		if assignment.EmployeeID != employeeID || !assignment.Covers(day) {
			continue
		}
		if best == nil || assignment.EffectiveFrom.After(best.EffectiveFrom.Time) {
			best = assignment
		}
	}
	if best == nil {
		return nil, nil
	}
	if best.Shift == nil {
		best.Shift = f.shifts[best.ShiftID]
	}
	return best, nil
}

type fakeAttendanceRepo struct {
	punchesByEmployee map[int64][]*model.PunchEvent

	listTotal  int64
	listItems  []*model.PunchEvent
	lastFilter repository.PunchFilter

	metrics model.DashboardMetrics
	recent  []*model.PunchEvent
}

func (f *fakeAttendanceRepo) RecordPunch(_ context.Context, params repository.RecordPunchParams) (*model.PunchEvent, error) {
	return &model.PunchEvent{
		ID:         1,
		PunchedAt:  params.PunchedAt,
		Direction:  params.Direction,
		RawPayload: params.RawPayload,
		ExternalID: params.ExternalID,
	}, nil
}

func (f *fakeAttendanceRepo) ListPunches(_ context.Context, filter repository.PunchFilter) (int64, []*model.PunchEvent, error) {
	f.lastFilter = filter
	return f.listTotal, f.listItems, nil
}

func (f *fakeAttendanceRepo) ListForEmployeeDay(_ context.Context, employeeID int64, from, to time.Time) ([]*model.PunchEvent, error) {
	var punches []*model.PunchEvent
	for _, punch := range f.punchesByEmployee[employeeID] {
		if punch.PunchedAt.Before(from) || !punch.PunchedAt.Before(to) {
			continue
		}
		punches = append(punches, punch)
	}
	return punches, nil
}

func (f *fakeAttendanceRepo) Metrics(context.Context) (*model.DashboardMetrics, error) {
	metrics := f.metrics
	return &metrics, nil
}

func (f *fakeAttendanceRepo) Recent(_ context.Context, limit int) ([]*model.PunchEvent, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

type fakeUserRepo struct {
	users []*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, params repository.CreateUserParams) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == params.Email {
			return nil, ErrDuplicate
		}
	}
	user := &model.User{
		ID:             int64(len(f.users) + 1),
		Email:          params.Email,
		FullName:       params.FullName,
		HashedPassword: params.HashedPassword,
		Role:           params.Role,
		IsActive:       true,
	}
	f.users = append(f.users, user)
	return user, nil
}

func (f *fakeUserRepo) List(context.Context) ([]*model.User, error) {
	return f.users, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}
