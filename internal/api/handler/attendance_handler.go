package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"truetime.service/internal/core"
	"truetime.service/internal/core/model"
	"truetime.service/internal/ports/repository"
)

type AttendanceHandler struct {
	Service *core.AttendanceService
}

type recordPunchRequest struct {
	EmployeeCode string    `json:"employeeCode"`
	DeviceSerial string    `json:"deviceSerial"`
	PunchedAt    time.Time `json:"punchedAt"`
	Direction    string    `json:"direction"`
	RawPayload   string    `json:"rawPayload,omitempty"`
	ExternalID   *int64    `json:"externalId,omitempty"`
}

// RecordPunch accepts one manually submitted punch. Replays of a known
// (device, externalId) pair return the stored event rather than failing.
func (h *AttendanceHandler) RecordPunch(w http.ResponseWriter, r *http.Request) {
	var req recordPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.EmployeeCode == "" || req.DeviceSerial == "" || req.PunchedAt.IsZero() {
		writeError(w, http.StatusBadRequest, "employeeCode, deviceSerial and punchedAt are required")
		return
	}
	if req.Direction == "" {
		req.Direction = "in"
	}

	event, err := h.Service.RecordPunch(r.Context(), repository.RecordPunchParams{
		EmployeeCode: req.EmployeeCode,
		DeviceSerial: req.DeviceSerial,
		PunchedAt:    req.PunchedAt.UTC(),
		Direction:    req.Direction,
		RawPayload:   req.RawPayload,
		ExternalID:   req.ExternalID,
	})
	if err != nil {
		if core.IsNotFound(err) {
			writeError(w, http.StatusBadRequest, "Unknown employee or device")
			return
		}
		writeError(w, http.StatusInternalServerError, "Service error recording punch")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

type punchListResponse struct {
	Total int64               `json:"total"`
	Items []*model.PunchEvent `json:"items"`
}

func (h *AttendanceHandler) ListPunches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.PunchFilter{
		EmployeeCode: query.Get("employee_code"),
		DeviceSerial: query.Get("device_serial"),
	}

	if raw := query.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		utc := parsed.UTC()
		filter.From = &utc
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be RFC 3339")
			return
		}
		utc := parsed.UTC()
		filter.To = &utc
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	total, items, err := h.Service.ListPunches(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Service error listing punches")
		return
	}

	writeJSON(w, http.StatusOK, punchListResponse{Total: total, Items: items})
}

// DailySummaries reports per-employee attendance for one day, today by
// default.
func (h *AttendanceHandler) DailySummaries(w http.ResponseWriter, r *http.Request) {
	day := model.DateOf(time.Now().UTC())
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := model.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	summaries, err := h.Service.DailySummaries(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Service error computing summaries")
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (h *AttendanceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Service.Dashboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Service error building dashboard")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
