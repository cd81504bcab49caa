package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"truetime.service/internal/core"
	"truetime.service/internal/core/model"
	"truetime.service/internal/ports/repository"
)

type DirectoryHandler struct {
	Service *core.DirectoryService
}

type createEmployeeRequest struct {
	Code       string  `json:"code"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Department *string `json:"department,omitempty"`
}

func (h *DirectoryHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" || req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "Code, firstName and lastName are required")
		return
	}

	employee, err := h.Service.CreateEmployee(r.Context(), repository.CreateEmployeeParams{
		Code:       req.Code,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			writeError(w, http.StatusConflict, "An employee with this code already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Service error creating employee")
		return
	}

	writeJSON(w, http.StatusCreated, employee)
}

func (h *DirectoryHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Service error listing employees")
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

type createDeviceRequest struct {
	Name         string  `json:"name"`
	Model        string  `json:"model"`
	SerialNumber string  `json:"serialNumber"`
	IPAddress    string  `json:"ipAddress"`
	Port         int     `json:"port"`
	CommKey      *string `json:"commKey,omitempty"`
}

func (h *DirectoryHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SerialNumber == "" || req.IPAddress == "" {
		writeError(w, http.StatusBadRequest, "SerialNumber and ipAddress are required")
		return
	}

	device, err := h.Service.CreateDevice(r.Context(), repository.CreateDeviceParams{
		Name:         req.Name,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		IPAddress:    req.IPAddress,
		Port:         req.Port,
		CommKey:      req.CommKey,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			writeError(w, http.StatusConflict, "A device with this serial number already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Service error creating device")
		return
	}

	writeJSON(w, http.StatusCreated, device)
}

func (h *DirectoryHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.Service.ListDevices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Service error listing devices")
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

type createShiftRequest struct {
	Name         string `json:"name"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	GraceMinutes int    `json:"graceMinutes"`
}

func (h *DirectoryHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req createShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	start, err := model.ParseTimeOfDay(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startTime must be HH:MM")
		return
	}
	end, err := model.ParseTimeOfDay(req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "endTime must be HH:MM")
		return
	}
	if req.GraceMinutes < 0 {
		writeError(w, http.StatusBadRequest, "graceMinutes must not be negative")
		return
	}

	shift, err := h.Service.CreateShift(r.Context(), repository.CreateShiftParams{
		Name:         req.Name,
		StartTime:    start,
		EndTime:      end,
		GraceMinutes: req.GraceMinutes,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			writeError(w, http.StatusConflict, "A shift with this name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Service error creating shift")
		return
	}

	writeJSON(w, http.StatusCreated, shift)
}

func (h *DirectoryHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Service.ListShifts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Service error listing shifts")
		return
	}
	writeJSON(w, http.StatusOK, shifts)
}

type assignShiftRequest struct {
	ShiftID       int64  `json:"shiftId"`
	EffectiveFrom string `json:"effectiveFrom"`
	EffectiveTo   string `json:"effectiveTo,omitempty"`
}

// AssignShift opens a new assignment for the employee in the path and
// truncates any assignment that overlapped the new start date.
func (h *DirectoryHandler) AssignShift(w http.ResponseWriter, r *http.Request) {
	employeeCode := mux.Vars(r)["employeeCode"]

	var req assignShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ShiftID == 0 {
		writeError(w, http.StatusBadRequest, "shiftId is required")
		return
	}
	from, err := model.ParseDate(req.EffectiveFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "effectiveFrom must be YYYY-MM-DD")
		return
	}
	var to *model.Date
	if req.EffectiveTo != "" {
		parsed, err := model.ParseDate(req.EffectiveTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "effectiveTo must be YYYY-MM-DD")
			return
		}
		if parsed.Before(from.Time) {
			writeError(w, http.StatusBadRequest, "effectiveTo must not precede effectiveFrom")
			return
		}
		to = &parsed
	}

	assignment, err := h.Service.AssignShift(r.Context(), employeeCode, req.ShiftID, from, to)
	if err != nil {
		switch {
		case core.IsNotFound(err):
			writeError(w, http.StatusNotFound, "Employee or shift not found")
		case errors.Is(err, core.ErrDuplicate):
			writeError(w, http.StatusConflict, "An identical assignment already exists")
		default:
			writeError(w, http.StatusInternalServerError, "Service error assigning shift")
		}
		return
	}

	writeJSON(w, http.StatusCreated, assignment)
}
