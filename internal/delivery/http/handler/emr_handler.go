package handler

import (
	"net/http"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"
)

type EmrHandler struct {
	emrUsecase usecase.EmrUsecase
	validator  *validator.CustomValidator
}

func NewEmrHandler(emrUsecase usecase.EmrUsecase, validator *validator.CustomValidator) *EmrHandler {
	return &EmrHandler{
		emrUsecase: emrUsecase,
		validator:  validator,
	}
}

func (h *EmrHandler) GetEmr(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "patientId", "patient")
	if !ok {
		return
	}

	emr, err := h.emrUsecase.Get(r.Context(), actor, patientID)
	if err != nil {
		response.AppError(w, err, "Failed to get medical record")
		return
	}

	response.Success(w, http.StatusOK, "Medical record retrieved successfully", emr)
}

func (h *EmrHandler) CreateEmr(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "patientId", "patient")
	if !ok {
		return
	}

	var req dto.CreateEmrRequest
	if !decodeChangeSet(w, r, h.validator, &req) {
		return
	}

	emr, err := h.emrUsecase.Create(r.Context(), actor, patientID, &req)
	if err != nil {
		response.AppError(w, err, "Failed to create medical record")
		return
	}

	response.Success(w, http.StatusCreated, "Medical record created successfully", emr)
}

func (h *EmrHandler) UpdateEmr(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "patientId", "patient")
	if !ok {
		return
	}

	var req dto.UpdateEmrRequest
	if !decodeChangeSet(w, r, h.validator, &req) {
		return
	}

	emr, err := h.emrUsecase.Update(r.Context(), actor, patientID, &req)
	if err != nil {
		response.AppError(w, err, "Failed to update medical record")
		return
	}

	response.Success(w, http.StatusOK, "Medical record updated successfully", emr)
}
