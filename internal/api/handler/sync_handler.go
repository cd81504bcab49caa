package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"truetime.service/internal/core"
	"truetime.service/internal/ingestion"
)

// SyncHandler triggers an on-demand pull from one device, outside the
// background polling cycle.
type SyncHandler struct {
	Directory  *core.DirectoryService
	Reconciler *ingestion.Reconciler
	Clients    ingestion.ClientFactory
}

type syncResponse struct {
	DeviceSerial string `json:"deviceSerial"`
	NewEvents    int    `json:"newEvents"`
}

func (h *SyncHandler) SyncDevice(w http.ResponseWriter, r *http.Request) {
	serial := mux.Vars(r)["serial"]

	device, err := h.Directory.GetDeviceBySerial(r.Context(), serial)
	if err != nil {
		if core.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Device not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Service error loading device")
		return
	}

	client, err := h.Clients(device)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Unable to initialize device client")
		return
	}

	events, err := h.Reconciler.SyncDevice(r.Context(), device, client)
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrConnection):
			writeError(w, http.StatusBadGateway, "Device unreachable")
		case errors.Is(err, ingestion.ErrClient):
			writeError(w, http.StatusBadRequest, "Device returned an invalid response")
		default:
			writeError(w, http.StatusInternalServerError, "Service error during sync")
		}
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{DeviceSerial: device.SerialNumber, NewEvents: len(events)})
}
