package model

import (
	"fmt"
	"time"
)

// Role controls which API operations a user may perform.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// RoleFromString validates a free-form role value.
func RoleFromString(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin, RoleManager, RoleViewer:
		return Role(value), nil
	}
	return "", fmt.Errorf("unsupported role: %s", value)
}

// AttendanceStatus is the derived per-day status of an employee.
type AttendanceStatus string

const (
	StatusPresent    AttendanceStatus = "present"
	StatusLate       AttendanceStatus = "late"
	StatusAbsent     AttendanceStatus = "absent"
	StatusIncomplete AttendanceStatus = "incomplete"
)

type Employee struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Department *string   `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BiometricDevice is a registered punch terminal. LastLogID is the
// high-water mark: the largest external sequence id ever ingested from
// this device. It is mutated only after a sync attempt and never
// decreases.
type BiometricDevice struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Model        string     `json:"model"`
	SerialNumber string     `json:"serialNumber"`
	IPAddress    string     `json:"ipAddress"`
	Port         int        `json:"port"`
	CommKey      *string    `json:"-"`
	LastLogID    *int64     `json:"lastLogId,omitempty"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
	LastSyncAt   *time.Time `json:"lastSyncAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// PunchEvent is an immutable attendance fact. ExternalID is the
// device-local sequence number and the idempotency key: for a given
// device there is at most one event per non-null ExternalID.
type PunchEvent struct {
	ID         int64            `json:"id"`
	PunchedAt  time.Time        `json:"punchedAt"`
	Direction  string           `json:"direction"`
	RawPayload string           `json:"rawPayload"`
	ExternalID *int64           `json:"externalId,omitempty"`
	Employee   *Employee        `json:"employee,omitempty"`
	Device     *BiometricDevice `json:"device,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type Shift struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	StartTime    TimeOfDay `json:"startTime"`
	EndTime      TimeOfDay `json:"endTime"`
	GraceMinutes int       `json:"graceMinutes"`
}

// ShiftAssignment binds an employee to a shift over an inclusive date
// interval. A nil EffectiveTo means the assignment is open-ended.
type ShiftAssignment struct {
	ID            int64  `json:"id"`
	EmployeeID    int64  `json:"employeeId"`
	ShiftID       int64  `json:"shiftId"`
	Shift         *Shift `json:"shift,omitempty"`
	EffectiveFrom Date   `json:"effectiveFrom"`
	EffectiveTo   *Date  `json:"effectiveTo,omitempty"`
}

// Covers reports whether the assignment's effective range contains day.
func (a *ShiftAssignment) Covers(day Date) bool {
	if a.EffectiveFrom.After(day.Time) {
		return false
	}
	return a.EffectiveTo == nil || !a.EffectiveTo.Before(day.Time)
}

// DailySummary is derived per (employee, date); it is never persisted.
type DailySummary struct {
	Date            Date             `json:"date"`
	Employee        *Employee        `json:"employee"`
	Shift           *Shift           `json:"shift,omitempty"`
	Status          AttendanceStatus `json:"status"`
	FirstIn         *time.Time       `json:"firstIn,omitempty"`
	LastOut         *time.Time       `json:"lastOut,omitempty"`
	TotalMinutes    int              `json:"totalMinutes"`
	ExpectedMinutes *int             `json:"expectedMinutes,omitempty"`
	LateMinutes     *int             `json:"lateMinutes,omitempty"`
}

type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	HashedPassword string    `json:"-"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DashboardMetrics are the aggregate counts shown on the dashboard.
type DashboardMetrics struct {
	TotalEmployees          int64      `json:"totalEmployees"`
	EmployeesWithRecentLogs int64      `json:"employeesWithRecentLogs"`
	TotalDevices            int64      `json:"totalDevices"`
	DevicesReporting        int64      `json:"devicesReporting"`
	TotalLogs               int64      `json:"totalLogs"`
	LogsLast24h             int64      `json:"logsLast24h"`
	LatestLogAt             *time.Time `json:"latestLogAt,omitempty"`
}

type DashboardSnapshot struct {
	Metrics    DashboardMetrics `json:"metrics"`
	RecentLogs []*PunchEvent    `json:"recentLogs"`
}
