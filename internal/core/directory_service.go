package core

import (
	"context"

	"truetime.service/internal/core/model"
	"truetime.service/internal/ports/repository"
)

const defaultDevicePort = 4370

// DirectoryService manages the registries the attendance core resolves
// against: employees, biometric devices and shifts, including the
// time-bounded shift assignment ledger.
type DirectoryService struct {
	employees repository.EmployeeRepository
	devices   repository.DeviceRepository
	shifts    repository.ShiftRepository
}

// NewDirectoryService wires the directory service with its stores.
func NewDirectoryService(
	employees repository.EmployeeRepository,
	devices repository.DeviceRepository,
	shifts repository.ShiftRepository,
) *DirectoryService {
	return &DirectoryService{
		employees: employees,
		devices:   devices,
		shifts:    shifts,
	}
}

func (s *DirectoryService) CreateEmployee(ctx context.Context, params repository.CreateEmployeeParams) (*model.Employee, error) {
	return s.employees.Create(ctx, params)
}

func (s *DirectoryService) ListEmployees(ctx context.Context) ([]*model.Employee, error) {
	return s.employees.List(ctx)
}

func (s *DirectoryService) CreateDevice(ctx context.Context, params repository.CreateDeviceParams) (*model.BiometricDevice, error) {
	if params.Port == 0 {
		params.Port = defaultDevicePort
	}
	if params.CommKey != nil && *params.CommKey == "" {
		params.CommKey = nil
	}
	return s.devices.Create(ctx, params)
}

func (s *DirectoryService) ListDevices(ctx context.Context) ([]*model.BiometricDevice, error) {
	return s.devices.List(ctx)
}

func (s *DirectoryService) GetDeviceBySerial(ctx context.Context, serialNumber string) (*model.BiometricDevice, error) {
	return s.devices.GetBySerial(ctx, serialNumber)
}

func (s *DirectoryService) CreateShift(ctx context.Context, params repository.CreateShiftParams) (*model.Shift, error) {
	return s.shifts.Create(ctx, params)
}

func (s *DirectoryService) ListShifts(ctx context.Context) ([]*model.Shift, error) {
	return s.shifts.List(ctx)
}

// AssignShift inserts a new assignment for the employee, first closing
// any existing assignment that covers the new effective_from. The old
// assignment is truncated to end the day before, which keeps the
// per-employee ranges non-overlapping.
func (s *DirectoryService) AssignShift(ctx context.Context, employeeCode string, shiftID int64, from model.Date, to *model.Date) (*model.ShiftAssignment, error) {
	employee, err := s.employees.GetByCode(ctx, employeeCode)
	if err != nil {
		return nil, err
	}

	shift, err := s.shifts.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.shifts.AssignmentsCovering(ctx, employee.ID, from)
	if err != nil {
		return nil, err
	}
	for _, candidate := range candidates {
		if !candidate.Covers(from) {
			continue
		}
		if err := s.shifts.TruncateAssignment(ctx, candidate.ID, from.AddDays(-1)); err != nil {
			return nil, err
		}
	}

	assignment, err := s.shifts.CreateAssignment(ctx, employee.ID, shift.ID, from, to)
	if err != nil {
		return nil, err
	}
	assignment.Shift = shift
	return assignment, nil
}

// ResolveShiftForDate returns the assignment effective for the employee
// on the given day, or nil when none covers it.
func (s *DirectoryService) ResolveShiftForDate(ctx context.Context, employeeID int64, day model.Date) (*model.ShiftAssignment, error) {
	return s.shifts.AssignmentForDate(ctx, employeeID, day)
}
