package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Billing, services and users are included when loaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:        appointment.ID,
		Number:    appointment.Number,
		Date:      appointment.Date,
		Status:    string(appointment.Status),
		PatientID: appointment.PatientID,
		DoctorID:  appointment.DoctorID,
		EmrID:     appointment.EmrID,
		VitalsID:  appointment.VitalsID,
		Patient:   UserToSummary(appointment.Patient),
		Doctor:    UserToSummary(appointment.Doctor),
		Billing:   BillingToResponse(appointment.Billing),
		Services:  AppointmentServicesToResponse(appointment.Services),
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

func BillingToResponse(billing *entity.Billing) *dto.BillingResponse {
	if billing == nil {
		return nil
	}

	return &dto.BillingResponse{
		ID:     billing.ID,
		Number: billing.Number,
		Amount: billing.Amount,
		Status: string(billing.Status),
		Date:   billing.Date,
	}
}

func AppointmentServicesToResponse(services *entity.AppointmentServices) *dto.AppointmentServicesResponse {
	if services == nil {
		return nil
	}

	response := &dto.AppointmentServicesResponse{
		ID:       services.ID,
		Notes:    services.Notes,
		Scans:    make([]dto.CatalogItemResponse, len(services.Scans)),
		LabWorks: make([]dto.CatalogItemResponse, len(services.LabWorks)),
	}
	if services.Service != nil {
		item := catalogItem(services.Service.ID, services.Service.Name, services.Service.Price)
		response.Service = &item
	}
	if services.Therapy != nil {
		item := catalogItem(services.Therapy.ID, services.Therapy.Name, services.Therapy.Price)
		response.Therapy = &item
	}
	for i, scan := range services.Scans {
		response.Scans[i] = catalogItem(scan.ID, scan.Name, scan.Price)
	}
	for i, lab := range services.LabWorks {
		response.LabWorks[i] = catalogItem(lab.ID, lab.Name, lab.Price)
	}

	return response
}

func catalogItem(id uuid.UUID, name string, price decimal.Decimal) dto.CatalogItemResponse {
	return dto.CatalogItemResponse{ID: id, Name: name, Price: &price}
}
