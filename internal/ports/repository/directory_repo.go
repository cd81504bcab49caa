package repository

import (
	"context"
	"database/sql"

	"truetime.service/internal/core/model"
)

// employeeRepository is the PostgreSQL employee directory.
type employeeRepository struct {
	DB *sql.DB
}

// NewEmployeeRepository create new instance
func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &employeeRepository{DB: db}
}

func (r *employeeRepository) Create(ctx context.Context, params CreateEmployeeParams) (*model.Employee, error) {
	employee := &model.Employee{
		Code:       params.Code,
		FirstName:  params.FirstName,
		LastName:   params.LastName,
		Department: params.Department,
	}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO employees (code, first_name, last_name, department)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		params.Code, params.FirstName, params.LastName, params.Department,
	).Scan(&employee.ID, &employee.CreatedAt)
	if err != nil {
		return nil, translateDBError(err)
	}
	return employee, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]*model.Employee, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, code, first_name, last_name, department, created_at
		 FROM employees ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) GetByCode(ctx context.Context, code string) (*model.Employee, error) {
	employee, err := scanEmployee(r.DB.QueryRowContext(ctx,
		`SELECT id, code, first_name, last_name, department, created_at
		 FROM employees WHERE code = $1`, code))
	if err == sql.ErrNoRows {
		return nil, model.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return employee, nil
}

// deviceRepository is the PostgreSQL device registry.
type deviceRepository struct {
	DB *sql.DB
}

// NewDeviceRepository create new instance
func NewDeviceRepository(db *sql.DB) DeviceRepository {
	return &deviceRepository{DB: db}
}

func (r *deviceRepository) Create(ctx context.Context, params CreateDeviceParams) (*model.BiometricDevice, error) {
	device := &model.BiometricDevice{
		Name:         params.Name,
		Model:        params.Model,
		SerialNumber: params.SerialNumber,
		IPAddress:    params.IPAddress,
		Port:         params.Port,
		CommKey:      params.CommKey,
	}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO biometric_devices (name, model, serial_number, ip_address, port, comm_key)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		params.Name, params.Model, params.SerialNumber, params.IPAddress, params.Port, params.CommKey,
	).Scan(&device.ID, &device.CreatedAt)
	if err != nil {
		return nil, translateDBError(err)
	}
	return device, nil
}

func (r *deviceRepository) List(ctx context.Context) ([]*model.BiometricDevice, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, model, serial_number, ip_address, port, comm_key,
		        last_log_id, last_seen_at, last_sync_at, created_at
		 FROM biometric_devices ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*model.BiometricDevice
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

func (r *deviceRepository) GetBySerial(ctx context.Context, serialNumber string) (*model.BiometricDevice, error) {
	device, err := scanDevice(r.DB.QueryRowContext(ctx,
		`SELECT id, name, model, serial_number, ip_address, port, comm_key,
		        last_log_id, last_seen_at, last_sync_at, created_at
		 FROM biometric_devices WHERE serial_number = $1`, serialNumber))
	if err == sql.ErrNoRows {
		return nil, model.ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return device, nil
}

// FinishSync runs after every successful fetch, even when nothing new
// was accepted. The CASE keeps last_log_id monotonic and leaves a NULL
// mark untouched when no external id was seen.
func (r *deviceRepository) FinishSync(ctx context.Context, deviceID int64, highestExternalID int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE biometric_devices
		 SET last_seen_at = NOW(),
		     last_sync_at = NOW(),
		     last_log_id = CASE
		         WHEN $2 > COALESCE(last_log_id, 0) THEN $2
		         ELSE last_log_id
		     END
		 WHERE id = $1`,
		deviceID, highestExternalID)
	return err
}
