package repository

import (
	"context"
	"database/sql"

	"truetime.service/internal/core/model"
)

// shiftRepository is the PostgreSQL shift catalog and assignment ledger.
type shiftRepository struct {
	DB *sql.DB
}

// NewShiftRepository create new instance
func NewShiftRepository(db *sql.DB) ShiftRepository {
	return &shiftRepository{DB: db}
}

func (r *shiftRepository) Create(ctx context.Context, params CreateShiftParams) (*model.Shift, error) {
	shift := &model.Shift{
		Name:         params.Name,
		StartTime:    params.StartTime,
		EndTime:      params.EndTime,
		GraceMinutes: params.GraceMinutes,
	}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO shifts (name, start_time, end_time, grace_minutes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		params.Name, params.StartTime, params.EndTime, params.GraceMinutes,
	).Scan(&shift.ID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return shift, nil
}

func (r *shiftRepository) List(ctx context.Context) ([]*model.Shift, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, start_time, end_time, grace_minutes
		 FROM shifts ORDER BY start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []*model.Shift
	for rows.Next() {
		shift := &model.Shift{}
		if err := rows.Scan(&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime, &shift.GraceMinutes); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

func (r *shiftRepository) Get(ctx context.Context, id int64) (*model.Shift, error) {
	shift := &model.Shift{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, start_time, end_time, grace_minutes
		 FROM shifts WHERE id = $1`, id,
	).Scan(&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime, &shift.GraceMinutes)
	if err == sql.ErrNoRows {
		return nil, model.ErrShiftNotFound
	}
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (r *shiftRepository) CreateAssignment(ctx context.Context, employeeID, shiftID int64, from model.Date, to *model.Date) (*model.ShiftAssignment, error) {
	assignment := &model.ShiftAssignment{
		EmployeeID:    employeeID,
		ShiftID:       shiftID,
		EffectiveFrom: from,
		EffectiveTo:   to,
	}
	var toValue any
	if to != nil {
		toValue = *to
	}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO employee_shift_assignments (employee_id, shift_id, effective_from, effective_to)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		employeeID, shiftID, from, toValue,
	).Scan(&assignment.ID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return assignment, nil
}

func (r *shiftRepository) AssignmentsCovering(ctx context.Context, employeeID int64, from model.Date) ([]*model.ShiftAssignment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, employee_id, shift_id, effective_from, effective_to
		 FROM employee_shift_assignments
		 WHERE employee_id = $1 AND (effective_to IS NULL OR effective_to >= $2)`,
		employeeID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*model.ShiftAssignment
	for rows.Next() {
		assignment := &model.ShiftAssignment{}
		var rawTo sql.NullTime
		if err := rows.Scan(&assignment.ID, &assignment.EmployeeID, &assignment.ShiftID,
			&assignment.EffectiveFrom, &rawTo); err != nil {
			return nil, err
		}
		if rawTo.Valid {
			to := model.DateOf(rawTo.Time)
			assignment.EffectiveTo = &to
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func (r *shiftRepository) TruncateAssignment(ctx context.Context, assignmentID int64, to model.Date) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE employee_shift_assignments
		 SET effective_to = $2
		 WHERE id = $1`,
		assignmentID, to)
	return err
}

// AssignmentForDate prefers the latest effective_from so that, should
// overlapping rows ever exist, the most recent assignment wins.
func (r *shiftRepository) AssignmentForDate(ctx context.Context, employeeID int64, day model.Date) (*model.ShiftAssignment, error) {
	assignment := &model.ShiftAssignment{Shift: &model.Shift{}}
	var rawTo sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		`SELECT a.id, a.employee_id, a.shift_id, a.effective_from, a.effective_to,
		        s.id, s.name, s.start_time, s.end_time, s.grace_minutes
		 FROM employee_shift_assignments a
		 JOIN shifts s ON s.id = a.shift_id
		 WHERE a.employee_id = $1
		   AND a.effective_from <= $2
		   AND (a.effective_to IS NULL OR a.effective_to >= $2)
		 ORDER BY a.effective_from DESC
		 LIMIT 1`,
		employeeID, day,
	).Scan(&assignment.ID, &assignment.EmployeeID, &assignment.ShiftID,
		&assignment.EffectiveFrom, &rawTo,
		&assignment.Shift.ID, &assignment.Shift.Name, &assignment.Shift.StartTime,
		&assignment.Shift.EndTime, &assignment.Shift.GraceMinutes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rawTo.Valid {
		to := model.DateOf(rawTo.Time)
		assignment.EffectiveTo = &to
	}
	return assignment, nil
}
