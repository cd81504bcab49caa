package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"truetime.service/internal/core/model"
)

// punchEventColumns joins the event with its employee and device. The
// device comm key is deliberately left out of read paths.
const punchEventColumns = `
	a.id, a.punched_at, a.direction, a.raw_payload, a.external_id, a.created_at,
	e.id, e.code, e.first_name, e.last_name, e.department, e.created_at,
	d.id, d.name, d.model, d.serial_number, d.ip_address, d.port,
	d.last_log_id, d.last_seen_at, d.last_sync_at, d.created_at`

const punchEventFrom = `
	FROM attendance_logs a
	JOIN employees e ON e.id = a.employee_id
	JOIN biometric_devices d ON d.id = a.device_id`

// attendanceRepository is the PostgreSQL punch event store.
type attendanceRepository struct {
	DB *sql.DB
}

// NewAttendanceRepository create new instance
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &attendanceRepository{DB: db}
}

// RecordPunch persists a punch and the device bookkeeping atomically.
// The device row is locked for the duration of the transaction so
// concurrent syncs cannot lose a high-water mark update.
func (r *attendanceRepository) RecordPunch(ctx context.Context, params RecordPunchParams) (*model.PunchEvent, error) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("app.employee_code", params.EmployeeCode),
		attribute.String("app.device_serial", params.DeviceSerial),
	)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin record punch: %w", err)
	}
	defer tx.Rollback()

	employee, err := scanEmployee(tx.QueryRowContext(ctx,
		`SELECT id, code, first_name, last_name, department, created_at
		 FROM employees WHERE code = $1`, params.EmployeeCode))
	if err == sql.ErrNoRows {
		return nil, model.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}

	device, err := scanDevice(tx.QueryRowContext(ctx,
		`SELECT id, name, model, serial_number, ip_address, port, comm_key,
		        last_log_id, last_seen_at, last_sync_at, created_at
		 FROM biometric_devices WHERE serial_number = $1 FOR UPDATE`, params.DeviceSerial))
	if err == sql.ErrNoRows {
		return nil, model.ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}

	if params.ExternalID != nil {
		existing, err := scanPunchEvent(tx.QueryRowContext(ctx,
			`SELECT`+punchEventColumns+punchEventFrom+`
			 WHERE a.device_id = $1 AND a.external_id = $2
			 LIMIT 1`, device.ID, *params.ExternalID))
		if err != nil && err != sql.ErrNoRows {
			return nil, err
		}
		if err == nil {
			// Idempotent replay: no new record, but the device still
			// counts as seen and the mark still advances.
			if err := touchDevice(ctx, tx, device.ID, params.ExternalID); err != nil {
				return nil, err
			}
			if err := tx.Commit(); err != nil {
				return nil, fmt.Errorf("commit record punch: %w", err)
			}
			return existing, nil
		}
	}

	event := &model.PunchEvent{
		PunchedAt:  params.PunchedAt.UTC(),
		Direction:  params.Direction,
		RawPayload: params.RawPayload,
		ExternalID: params.ExternalID,
		Employee:   employee,
		Device:     device,
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO attendance_logs (punched_at, direction, raw_payload, external_id, employee_id, device_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		event.PunchedAt, event.Direction, event.RawPayload,
		nullableInt64(params.ExternalID), employee.ID, device.ID,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return nil, translateDBError(err)
	}

	if err := touchDevice(ctx, tx, device.ID, params.ExternalID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit record punch: %w", err)
	}
	return event, nil
}

// touchDevice refreshes the seen/sync timestamps and advances the
// high-water mark monotonically when externalID exceeds it.
func touchDevice(ctx context.Context, tx *sql.Tx, deviceID int64, externalID *int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE biometric_devices
		 SET last_seen_at = NOW(),
		     last_sync_at = NOW(),
		     last_log_id = CASE
		         WHEN $2::bigint IS NOT NULL AND $2 > COALESCE(last_log_id, 0) THEN $2
		         ELSE last_log_id
		     END
		 WHERE id = $1`,
		deviceID, nullableInt64(externalID))
	return err
}

// ListPunches returns the filtered total and one page ordered by punch
// time descending.
func (r *attendanceRepository) ListPunches(ctx context.Context, filter PunchFilter) (int64, []*model.PunchEvent, error) {
	var conds []string
	var args []any

	if filter.EmployeeCode != "" {
		args = append(args, filter.EmployeeCode)
		conds = append(conds, fmt.Sprintf("e.code = $%d", len(args)))
	}
	if filter.DeviceSerial != "" {
		args = append(args, filter.DeviceSerial)
		conds = append(conds, fmt.Sprintf("d.serial_number = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, filter.From.UTC())
		conds = append(conds, fmt.Sprintf("a.punched_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		conds = append(conds, fmt.Sprintf("a.punched_at <= $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*)`+punchEventFrom+where, args...).Scan(&total)
	if err != nil {
		return 0, nil, err
	}

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	offsetPos := len(args)

	rows, err := r.DB.QueryContext(ctx,
		`SELECT`+punchEventColumns+punchEventFrom+where+
			fmt.Sprintf(" ORDER BY a.punched_at DESC LIMIT $%d OFFSET $%d", limitPos, offsetPos),
		args...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	events, err := collectPunchEvents(rows)
	if err != nil {
		return 0, nil, err
	}
	return total, events, nil
}

// ListForEmployeeDay returns the employee's punches in [from, to)
// ordered ascending, as the summary engine expects.
func (r *attendanceRepository) ListForEmployeeDay(ctx context.Context, employeeID int64, from, to time.Time) ([]*model.PunchEvent, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT`+punchEventColumns+punchEventFrom+`
		 WHERE a.employee_id = $1 AND a.punched_at >= $2 AND a.punched_at < $3
		 ORDER BY a.punched_at ASC`,
		employeeID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPunchEvents(rows)
}

// Metrics computes the dashboard aggregate counts.
func (r *attendanceRepository) Metrics(ctx context.Context) (*model.DashboardMetrics, error) {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	metrics := &model.DashboardMetrics{}

	if err := r.DB.QueryRowContext(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM employees),
		    (SELECT COUNT(DISTINCT employee_id) FROM attendance_logs WHERE punched_at >= $1),
		    (SELECT COUNT(*) FROM biometric_devices),
		    (SELECT COUNT(DISTINCT device_id) FROM attendance_logs WHERE punched_at >= $1),
		    (SELECT COUNT(*) FROM attendance_logs),
		    (SELECT COUNT(*) FROM attendance_logs WHERE punched_at >= $1)`,
		cutoff,
	).Scan(
		&metrics.TotalEmployees,
		&metrics.EmployeesWithRecentLogs,
		&metrics.TotalDevices,
		&metrics.DevicesReporting,
		&metrics.TotalLogs,
		&metrics.LogsLast24h,
	); err != nil {
		return nil, err
	}

	var latest sql.NullTime
	if err := r.DB.QueryRowContext(ctx,
		`SELECT MAX(punched_at) FROM attendance_logs`).Scan(&latest); err != nil {
		return nil, err
	}
	if latest.Valid {
		ts := latest.Time.UTC()
		metrics.LatestLogAt = &ts
	}
	return metrics, nil
}

// Recent returns the newest punches for the dashboard feed.
func (r *attendanceRepository) Recent(ctx context.Context, limit int) ([]*model.PunchEvent, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT`+punchEventColumns+punchEventFrom+`
		 ORDER BY a.punched_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPunchEvents(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*model.Employee, error) {
	e := &model.Employee{}
	var department sql.NullString
	if err := row.Scan(&e.ID, &e.Code, &e.FirstName, &e.LastName, &department, &e.CreatedAt); err != nil {
		return nil, err
	}
	if department.Valid {
		e.Department = &department.String
	}
	return e, nil
}

func scanDevice(row rowScanner) (*model.BiometricDevice, error) {
	d := &model.BiometricDevice{}
	var commKey sql.NullString
	var lastLogID sql.NullInt64
	var lastSeen, lastSync sql.NullTime
	if err := row.Scan(&d.ID, &d.Name, &d.Model, &d.SerialNumber, &d.IPAddress, &d.Port,
		&commKey, &lastLogID, &lastSeen, &lastSync, &d.CreatedAt); err != nil {
		return nil, err
	}
	if commKey.Valid {
		d.CommKey = &commKey.String
	}
	if lastLogID.Valid {
		d.LastLogID = &lastLogID.Int64
	}
	if lastSeen.Valid {
		ts := lastSeen.Time.UTC()
		d.LastSeenAt = &ts
	}
	if lastSync.Valid {
		ts := lastSync.Time.UTC()
		d.LastSyncAt = &ts
	}
	return d, nil
}

func scanPunchEvent(row rowScanner) (*model.PunchEvent, error) {
	event := &model.PunchEvent{
		Employee: &model.Employee{},
		Device:   &model.BiometricDevice{},
	}
	var externalID, lastLogID sql.NullInt64
	var department sql.NullString
	var lastSeen, lastSync sql.NullTime

	err := row.Scan(
		&event.ID, &event.PunchedAt, &event.Direction, &event.RawPayload, &externalID, &event.CreatedAt,
		&event.Employee.ID, &event.Employee.Code, &event.Employee.FirstName, &event.Employee.LastName,
		&department, &event.Employee.CreatedAt,
		&event.Device.ID, &event.Device.Name, &event.Device.Model, &event.Device.SerialNumber,
		&event.Device.IPAddress, &event.Device.Port, &lastLogID, &lastSeen, &lastSync, &event.Device.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.PunchedAt = event.PunchedAt.UTC()
	if externalID.Valid {
		event.ExternalID = &externalID.Int64
	}
	if department.Valid {
		event.Employee.Department = &department.String
	}
	if lastLogID.Valid {
		event.Device.LastLogID = &lastLogID.Int64
	}
	if lastSeen.Valid {
		ts := lastSeen.Time.UTC()
		event.Device.LastSeenAt = &ts
	}
	if lastSync.Valid {
		ts := lastSync.Time.UTC()
		event.Device.LastSyncAt = &ts
	}
	return event, nil
}

func collectPunchEvents(rows *sql.Rows) ([]*model.PunchEvent, error) {
	var events []*model.PunchEvent
	for rows.Next() {
		event, err := scanPunchEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
