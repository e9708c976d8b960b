package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	Date     time.Time   `json:"date" validate:"required"`
	Notes    string      `json:"notes" validate:"max=2000"`
	Service  *uuid.UUID  `json:"service"`
	Therapy  *uuid.UUID  `json:"therapy"`
	Scans    []uuid.UUID `json:"scans" validate:"max=20,dive,required"`
	LabWorks []uuid.UUID `json:"labWorks" validate:"max=20,dive,required"`
}

type ApproveAppointmentRequest struct {
	DoctorID uuid.UUID `json:"doctorId" validate:"required"`
}

type CompleteAppointmentRequest struct {
	BillingStatus string `json:"billingStatus" validate:"required,oneof=paid insurance"`
}

type ListAppointmentsQuery struct {
	Status string `validate:"omitempty,oneof=pending approved rejected cancelled completed"`
	Page   int    `validate:"gte=1"`
	Limit  int    `validate:"gte=1,lte=100"`
}

// Response DTOs

type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

type BillingResponse struct {
	ID     uuid.UUID       `json:"id"`
	Number int64           `json:"number"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status"`
	Date   time.Time       `json:"date"`
}

type CatalogItemResponse struct {
	ID    uuid.UUID        `json:"id"`
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

type AppointmentServicesResponse struct {
	ID       uuid.UUID             `json:"id"`
	Notes    string                `json:"notes,omitempty"`
	Service  *CatalogItemResponse  `json:"service,omitempty"`
	Therapy  *CatalogItemResponse  `json:"therapy,omitempty"`
	Scans    []CatalogItemResponse `json:"scans"`
	LabWorks []CatalogItemResponse `json:"labWorks"`
}

type AppointmentResponse struct {
	ID        uuid.UUID                    `json:"id"`
	Number    int64                        `json:"number"`
	Date      time.Time                    `json:"date"`
	Status    string                       `json:"status"`
	PatientID uuid.UUID                    `json:"patientId"`
	DoctorID  *uuid.UUID                   `json:"doctorId,omitempty"`
	EmrID     uuid.UUID                    `json:"emrId"`
	VitalsID  *uuid.UUID                   `json:"vitalsId,omitempty"`
	Patient   *UserSummary                 `json:"patient,omitempty"`
	Doctor    *UserSummary                 `json:"doctor,omitempty"`
	Billing   *BillingResponse             `json:"billing,omitempty"`
	Services  *AppointmentServicesResponse `json:"services,omitempty"`
	CreatedAt time.Time                    `json:"createdAt"`
	UpdatedAt time.Time                    `json:"updatedAt"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Page         int                   `json:"-"`
	Limit        int                   `json:"-"`
	Total        int64                 `json:"-"`
}
