package dto

import (
	"time"

	"github.com/google/uuid"
)

type BiomarkerValueRequest struct {
	BiomarkerID uuid.UUID `json:"biomarkerId" validate:"required"`
	Value       *float64  `json:"value" validate:"required"`
}

type CreateTestResultRequest struct {
	AppointmentID    uuid.UUID               `json:"appointmentId" validate:"required"`
	LaboratoryTestID uuid.UUID               `json:"laboratoryTestId" validate:"required"`
	Title            string                  `json:"title" validate:"required,max=255"`
	Notes            string                  `json:"notes" validate:"max=2000"`
	Values           []BiomarkerValueRequest `json:"values" validate:"dive"`
}

// UpdateTestResultRequest patches a result. Nil fields are left unchanged.
type UpdateTestResultRequest struct {
	Title  *string                 `json:"title" validate:"omitempty,min=1,max=255"`
	Notes  *string                 `json:"notes" validate:"omitempty,max=2000"`
	Values []BiomarkerValueRequest `json:"values" validate:"dive"`
}

type BiomarkerValueResponse struct {
	ID          uuid.UUID `json:"id"`
	BiomarkerID uuid.UUID `json:"biomarkerId"`
	Name        string    `json:"name,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Value       float64   `json:"value"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TestResultResponse struct {
	ID               uuid.UUID                `json:"id"`
	AppointmentID    uuid.UUID                `json:"appointmentId"`
	LaboratoryTestID uuid.UUID                `json:"laboratoryTestId"`
	LaboratoryTest   string                   `json:"laboratoryTest,omitempty"`
	Title            string                   `json:"title"`
	Notes            string                   `json:"notes,omitempty"`
	Values           []BiomarkerValueResponse `json:"values"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}
