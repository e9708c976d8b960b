package http

import (
	"net/http"

	"go-clinic-management/internal/delivery/http/handler"
	"go-clinic-management/internal/delivery/http/middleware"
	"go-clinic-management/pkg/metrics"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	appointmentHandler  *handler.AppointmentHandler
	emrHandler          *handler.EmrHandler
	testResultHandler   *handler.TestResultHandler
	notificationHandler *handler.NotificationHandler
	auditLogHandler     *handler.AuditLogHandler
	billingHandler      *handler.BillingHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	metrics             *metrics.MetricsCollector
}

func NewRouter(
	appointmentHandler *handler.AppointmentHandler,
	emrHandler *handler.EmrHandler,
	testResultHandler *handler.TestResultHandler,
	notificationHandler *handler.NotificationHandler,
	auditLogHandler *handler.AuditLogHandler,
	billingHandler *handler.BillingHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	metrics *metrics.MetricsCollector,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		appointmentHandler:  appointmentHandler,
		emrHandler:          emrHandler,
		testResultHandler:   testResultHandler,
		notificationHandler: notificationHandler,
		auditLogHandler:     auditLogHandler,
		billingHandler:      billingHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		metrics:             metrics,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check and metrics
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	r.router.Handle("/metrics", r.metrics.Handler()).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	// Appointments. Role rules per action live in the usecase.
	protected.HandleFunc("/appointments", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", r.appointmentHandler.GetAllAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/approve", r.appointmentHandler.ApproveAppointment).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/reject", r.appointmentHandler.RejectAppointment).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/complete", r.appointmentHandler.CompleteAppointment).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/test-results", r.appointmentHandler.GetTestResults).Methods(http.MethodGet)

	// Medical records
	protected.HandleFunc("/emr/{patientId}", r.emrHandler.GetEmr).Methods(http.MethodGet)
	protected.HandleFunc("/emr/{patientId}", r.emrHandler.CreateEmr).Methods(http.MethodPost)
	protected.HandleFunc("/emr/{patientId}", r.emrHandler.UpdateEmr).Methods(http.MethodPatch)

	// Notifications of the caller
	protected.HandleFunc("/notifications", r.notificationHandler.GetNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/count", r.notificationHandler.CountUnread).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/{id}/read", r.notificationHandler.MarkRead).Methods(http.MethodPatch)

	// Lab results (staff)
	staff := api.PathPrefix("/test-results").Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireStaff)
	staff.HandleFunc("", r.testResultHandler.CreateTestResult).Methods(http.MethodPost)
	staff.HandleFunc("/{id}", r.testResultHandler.UpdateTestResult).Methods(http.MethodPatch)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)
	admin.HandleFunc("/billings/export", r.billingHandler.ExportBillings).Methods(http.MethodGet)

	r.router.Use(r.metrics.HTTPMiddleware)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
