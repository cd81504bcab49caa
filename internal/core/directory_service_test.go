package core

import (
	"context"
	"testing"
	"time"

	"truetime.service/internal/core/model"
	"truetime.service/internal/ports/repository"
)

func newDirectoryFixture(t *testing.T) (*DirectoryService, *fakeEmployeeRepo, *fakeShiftRepo) {
	t.Helper()
	employees := &fakeEmployeeRepo{}
	shifts := newFakeShiftRepo()
	service := NewDirectoryService(employees, &fakeDeviceRepo{}, shifts)
	return service, employees, shifts
}

func TestAssignShiftTruncatesOverlappingAssignment(t *testing.T) {
	service, employees, shifts := newDirectoryFixture(t)

	employee, _ := employees.Create(context.Background(), repository.CreateEmployeeParams{Code: "EMP001", FirstName: "Ada", LastName: "Lovelace"})
	dayShift := &model.Shift{ID: 1, Name: "Day"}
	nightShift := &model.Shift{ID: 2, Name: "Night"}
	shifts.addShift(dayShift)
	shifts.addShift(nightShift)

	// Open-ended assignment starting January 1st.
	janFirst := model.NewDate(2024, time.January, 1)
	if _, err := shifts.CreateAssignment(context.Background(), employee.ID, dayShift.ID, janFirst, nil); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	febFirst := model.NewDate(2024, time.February, 1)
	assignment, err := service.AssignShift(context.Background(), "EMP001", nightShift.ID, febFirst, nil)
	if err != nil {
		t.Fatalf("AssignShift: %v", err)
	}

	if assignment.ShiftID != nightShift.ID {
		t.Errorf("ShiftID = %d, want %d", assignment.ShiftID, nightShift.ID)
	}
	if assignment.Shift == nil || assignment.Shift.Name != "Night" {
		t.Errorf("Shift not attached to new assignment")
	}

	old := shifts.assignments[0]
	if old.EffectiveTo == nil {
		t.Fatal("previous assignment was not truncated")
	}
	wantEnd := model.NewDate(2024, time.January, 31)
	if !old.EffectiveTo.Equal(wantEnd.Time) {
		t.Errorf("previous assignment ends %v, want %v", old.EffectiveTo, wantEnd)
	}
}

func TestAssignShiftLeavesDisjointAssignmentsAlone(t *testing.T) {
	service, employees, shifts := newDirectoryFixture(t)

	employee, _ := employees.Create(context.Background(), repository.CreateEmployeeParams{Code: "EMP001", FirstName: "Ada", LastName: "Lovelace"})
	shift := &model.Shift{ID: 1, Name: "Day"}
	shifts.addShift(shift)

	// Assignment that already ended before the new one starts.
	janFirst := model.NewDate(2024, time.January, 1)
	janEnd := model.NewDate(2024, time.January, 15)
	if _, err := shifts.CreateAssignment(context.Background(), employee.ID, shift.ID, janFirst, &janEnd); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	febFirst := model.NewDate(2024, time.February, 1)
	if _, err := service.AssignShift(context.Background(), "EMP001", shift.ID, febFirst, nil); err != nil {
		t.Fatalf("AssignShift: %v", err)
	}

	old := shifts.assignments[0]
	if !old.EffectiveTo.Equal(janEnd.Time) {
		t.Errorf("disjoint assignment end moved to %v", old.EffectiveTo)
	}
}

func TestAssignShiftUnknownEmployee(t *testing.T) {
	service, _, shifts := newDirectoryFixture(t)
	shifts.addShift(&model.Shift{ID: 1, Name: "Day"})

	_, err := service.AssignShift(context.Background(), "NOPE", 1, model.NewDate(2024, time.February, 1), nil)
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestAssignShiftUnknownShift(t *testing.T) {
	service, employees, _ := newDirectoryFixture(t)
	employees.Create(context.Background(), repository.CreateEmployeeParams{Code: "EMP001", FirstName: "Ada", LastName: "Lovelace"})

	_, err := service.AssignShift(context.Background(), "EMP001", 99, model.NewDate(2024, time.February, 1), nil)
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestResolveShiftForDatePrefersLatestEffectiveFrom(t *testing.T) {
	service, employees, shifts := newDirectoryFixture(t)

	employee, _ := employees.Create(context.Background(), repository.CreateEmployeeParams{Code: "EMP001", FirstName: "Ada", LastName: "Lovelace"})
	dayShift := &model.Shift{ID: 1, Name: "Day"}
	nightShift := &model.Shift{ID: 2, Name: "Night"}
	shifts.addShift(dayShift)
	shifts.addShift(nightShift)

	shifts.CreateAssignment(context.Background(), employee.ID, dayShift.ID, model.NewDate(2024, time.January, 1), nil)
	shifts.CreateAssignment(context.Background(), employee.ID, nightShift.ID, model.NewDate(2024, time.March, 1), nil)

	assignment, err := service.ResolveShiftForDate(context.Background(), employee.ID, model.NewDate(2024, time.March, 11))
	if err != nil {
		t.Fatalf("ResolveShiftForDate: %v", err)
	}
	if assignment == nil || assignment.ShiftID != nightShift.ID {
		t.Fatalf("assignment = %+v, want the assignment starting March 1st", assignment)
	}

	// Before any assignment started there is nothing to resolve.
	earlier, err := service.ResolveShiftForDate(context.Background(), employee.ID, model.NewDate(2023, time.June, 1))
	if err != nil {
		t.Fatalf("ResolveShiftForDate: %v", err)
	}
	if earlier != nil {
		t.Errorf("assignment = %+v, want nil before the first assignment", earlier)
	}
}

func TestCreateDeviceDefaultsPort(t *testing.T) {
	devices := &fakeDeviceRepo{}
	service := NewDirectoryService(&fakeEmployeeRepo{}, devices, newFakeShiftRepo())

	emptyKey := ""
	device, err := service.CreateDevice(context.Background(), repository.CreateDeviceParams{
		Name:         "Lobby",
		SerialNumber: "SN-1",
		IPAddress:    "10.0.0.5",
		CommKey:      &emptyKey,
	})
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	if device.Port != 4370 {
		t.Errorf("Port = %d, want 4370", device.Port)
	}
	if device.CommKey != nil {
		t.Errorf("empty CommKey should be stored as null")
	}
}

type fakeDeviceRepo struct {
	devices []*model.BiometricDevice
}

func (f *fakeDeviceRepo) Create(_ context.Context, params repository.CreateDeviceParams) (*model.BiometricDevice, error) {
	device := &model.BiometricDevice{
		ID:           int64(len(f.devices) + 1),
		Name:         params.Name,
		Model:        params.Model,
		SerialNumber: params.SerialNumber,
		IPAddress:    params.IPAddress,
		Port:         params.Port,
		CommKey:      params.CommKey,
	}
	f.devices = append(f.devices, device)
	return device, nil
}

func (f *fakeDeviceRepo) List(context.Context) ([]*model.BiometricDevice, error) {
	return f.devices, nil
}

func (f *fakeDeviceRepo) GetBySerial(_ context.Context, serialNumber string) (*model.BiometricDevice, error) {
	for _, device := range f.devices {
		if device.SerialNumber == serialNumber {
			return device, nil
		}
	}
	return nil, ErrDeviceNotFound
}

func (f *fakeDeviceRepo) FinishSync(_ context.Context, deviceID, highestExternalID int64) error {
	for _, device := range f.devices {
		if device.ID != deviceID {
			continue
		}
		if highestExternalID > 0 && (device.LastLogID == nil || highestExternalID > *device.LastLogID) {
			device.LastLogID = &highestExternalID
		}
		return nil
	}
	return ErrDeviceNotFound
}
