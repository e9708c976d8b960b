package handler

import (
	"net/http"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"
)

type TestResultHandler struct {
	testResultUsecase usecase.TestResultUsecase
	validator         *validator.CustomValidator
}

func NewTestResultHandler(testResultUsecase usecase.TestResultUsecase, validator *validator.CustomValidator) *TestResultHandler {
	return &TestResultHandler{
		testResultUsecase: testResultUsecase,
		validator:         validator,
	}
}

func (h *TestResultHandler) CreateTestResult(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateTestResultRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	result, err := h.testResultUsecase.Create(r.Context(), actor, &req)
	if err != nil {
		response.AppError(w, err, "Failed to create test result")
		return
	}

	response.Success(w, http.StatusCreated, "Test result created successfully", result)
}

func (h *TestResultHandler) UpdateTestResult(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "test result")
	if !ok {
		return
	}

	var req dto.UpdateTestResultRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	result, err := h.testResultUsecase.Update(r.Context(), actor, id, &req)
	if err != nil {
		response.AppError(w, err, "Failed to update test result")
		return
	}

	response.Success(w, http.StatusOK, "Test result updated successfully", result)
}
