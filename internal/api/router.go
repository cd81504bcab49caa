package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"truetime.service/internal/api/handler"
	"truetime.service/internal/api/middleware"
	"truetime.service/internal/core"
	"truetime.service/internal/core/model"
	"truetime.service/internal/ingestion"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Auth       *core.AuthService
	Directory  *core.DirectoryService
	Attendance *core.AttendanceService
	Reconciler *ingestion.Reconciler
	Clients    ingestion.ClientFactory
	JWTSecret  []byte
}

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(deps RouterDeps) *mux.Router {
	authHandler := handler.AuthHandler{Service: deps.Auth}
	directoryHandler := handler.DirectoryHandler{Service: deps.Directory}
	attendanceHandler := handler.AttendanceHandler{Service: deps.Attendance}
	syncHandler := handler.SyncHandler{
		Directory:  deps.Directory,
		Reconciler: deps.Reconciler,
		Clients:    deps.Clients,
	}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	api.HandleFunc("/auth/token", authHandler.Login).Methods(http.MethodPost)

	secured := api.NewRoute().Subrouter()
	secured.Use(middleware.Authenticate(deps.JWTSecret))

	manage := middleware.RequireRoles(model.RoleAdmin, model.RoleManager)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)
	anyRole := middleware.RequireRoles()

	secured.HandleFunc("/users", manage(authHandler.CreateUser)).Methods(http.MethodPost)
	secured.HandleFunc("/users", adminOnly(authHandler.ListUsers)).Methods(http.MethodGet)
	secured.HandleFunc("/users/me", anyRole(authHandler.Me)).Methods(http.MethodGet)

	secured.HandleFunc("/employees", manage(directoryHandler.CreateEmployee)).Methods(http.MethodPost)
	secured.HandleFunc("/employees", anyRole(directoryHandler.ListEmployees)).Methods(http.MethodGet)
	secured.HandleFunc("/employees/{employeeCode}/shift", manage(directoryHandler.AssignShift)).Methods(http.MethodPost)

	secured.HandleFunc("/devices", manage(directoryHandler.CreateDevice)).Methods(http.MethodPost)
	secured.HandleFunc("/devices", anyRole(directoryHandler.ListDevices)).Methods(http.MethodGet)
	secured.HandleFunc("/devices/{serial}/sync", manage(syncHandler.SyncDevice)).Methods(http.MethodPost)

	secured.HandleFunc("/shifts", manage(directoryHandler.CreateShift)).Methods(http.MethodPost)
	secured.HandleFunc("/shifts", anyRole(directoryHandler.ListShifts)).Methods(http.MethodGet)

	secured.HandleFunc("/attendance/logs", manage(attendanceHandler.RecordPunch)).Methods(http.MethodPost)
	secured.HandleFunc("/attendance/logs", anyRole(attendanceHandler.ListPunches)).Methods(http.MethodGet)
	secured.HandleFunc("/attendance/summaries", anyRole(attendanceHandler.DailySummaries)).Methods(http.MethodGet)

	secured.HandleFunc("/dashboard", anyRole(attendanceHandler.Dashboard)).Methods(http.MethodGet)

	return r
}
