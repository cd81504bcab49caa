package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"truetime.service/internal/core/model"
)

// RecordPunchParams carries everything needed to persist one punch.
type RecordPunchParams struct {
	EmployeeCode string
	DeviceSerial string
	PunchedAt    time.Time
	Direction    string
	RawPayload   string
	ExternalID   *int64
}

// PunchFilter narrows a punch listing. All set fields are combined
// conjunctively.
type PunchFilter struct {
	EmployeeCode string
	DeviceSerial string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type CreateEmployeeParams struct {
	Code       string
	FirstName  string
	LastName   string
	Department *string
}

type CreateDeviceParams struct {
	Name         string
	Model        string
	SerialNumber string
	IPAddress    string
	Port         int
	CommKey      *string
}

type CreateShiftParams struct {
	Name         string
	StartTime    model.TimeOfDay
	EndTime      model.TimeOfDay
	GraceMinutes int
}

type CreateUserParams struct {
	Email          string
	FullName       string
	HashedPassword string
	Role           model.Role
}

// EmployeeRepository contract
type EmployeeRepository interface {
	Create(ctx context.Context, params CreateEmployeeParams) (*model.Employee, error)
	List(ctx context.Context) ([]*model.Employee, error)
	GetByCode(ctx context.Context, code string) (*model.Employee, error)
}

// DeviceRepository contract
type DeviceRepository interface {
	Create(ctx context.Context, params CreateDeviceParams) (*model.BiometricDevice, error)
	List(ctx context.Context) ([]*model.BiometricDevice, error)
	GetBySerial(ctx context.Context, serialNumber string) (*model.BiometricDevice, error)
	// FinishSync stamps last_seen_at/last_sync_at and advances the
	// high-water mark to highestExternalID if it is larger than the
	// stored value. A zero highestExternalID leaves the mark untouched.
	FinishSync(ctx context.Context, deviceID int64, highestExternalID int64) error
}

// AttendanceRepository is the punch event store.
type AttendanceRepository interface {
	// RecordPunch persists one punch and the device bookkeeping in a
	// single transaction. When the (device, externalId) pair already
	// exists the stored event is returned unchanged and only the device
	// timestamps/high-water mark are refreshed.
	RecordPunch(ctx context.Context, params RecordPunchParams) (*model.PunchEvent, error)
	ListPunches(ctx context.Context, filter PunchFilter) (int64, []*model.PunchEvent, error)
	ListForEmployeeDay(ctx context.Context, employeeID int64, from, to time.Time) ([]*model.PunchEvent, error)
	Metrics(ctx context.Context) (*model.DashboardMetrics, error)
	Recent(ctx context.Context, limit int) ([]*model.PunchEvent, error)
}

// ShiftRepository contract
type ShiftRepository interface {
	Create(ctx context.Context, params CreateShiftParams) (*model.Shift, error)
	List(ctx context.Context) ([]*model.Shift, error)
	Get(ctx context.Context, id int64) (*model.Shift, error)
	CreateAssignment(ctx context.Context, employeeID, shiftID int64, from model.Date, to *model.Date) (*model.ShiftAssignment, error)
	// AssignmentsCovering returns assignments whose range has not ended
	// before the given date (candidates for overlap truncation).
	AssignmentsCovering(ctx context.Context, employeeID int64, from model.Date) ([]*model.ShiftAssignment, error)
	TruncateAssignment(ctx context.Context, assignmentID int64, to model.Date) error
	// AssignmentForDate resolves the effective assignment for a date,
	// preferring the latest effective_from. Returns nil when none covers it.
	AssignmentForDate(ctx context.Context, employeeID int64, day model.Date) (*model.ShiftAssignment, error)
}

// UserRepository contract
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// translateDBError maps low-level driver errors onto the domain
// taxonomy. Unique violations become ErrDuplicate.
func translateDBError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return model.ErrDuplicate
	}
	return err
}

func nullableInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}
