package handler

import (
	"net/http"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	testResultUsecase  usecase.TestResultUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, testResultUsecase usecase.TestResultUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		testResultUsecase:  testResultUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.Create(r.Context(), actor, &req)
	if err != nil {
		response.AppError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	page, limit := pagination(r)
	query := dto.ListAppointmentsQuery{
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
	}
	if !validate(w, h.validator, &query) {
		return
	}

	result, err := h.appointmentUsecase.List(r.Context(), actor, &query)
	if err != nil {
		response.AppError(w, err, "Failed to get appointments")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully", result.Appointments, response.NewMeta(result.Page, result.Limit, result.Total))
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.Get(r.Context(), actor, id)
	if err != nil {
		response.AppError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) ApproveAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.ApproveAppointmentRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.Approve(r.Context(), actor, id, &req)
	if err != nil {
		response.AppError(w, err, "Failed to approve appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment approved successfully", appointment)
}

func (h *AppointmentHandler) RejectAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.Reject(r.Context(), actor, id)
	if err != nil {
		response.AppError(w, err, "Failed to reject appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment rejected successfully", appointment)
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.Cancel(r.Context(), actor, id)
	if err != nil {
		response.AppError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

func (h *AppointmentHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.CompleteAppointmentRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.Complete(r.Context(), actor, id, &req)
	if err != nil {
		response.AppError(w, err, "Failed to complete appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment completed successfully", appointment)
}

func (h *AppointmentHandler) GetTestResults(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	results, err := h.testResultUsecase.ListByAppointment(r.Context(), actor, id)
	if err != nil {
		response.AppError(w, err, "Failed to get test results")
		return
	}

	response.Success(w, http.StatusOK, "Test results retrieved successfully", results)
}
