package repository

import (
	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentServicesRepository struct{}

func NewAppointmentServicesRepository() domainRepo.AppointmentServicesRepository {
	return &appointmentServicesRepository{}
}

// Create stores the order and its scan and lab work links. Catalog rows are
// referenced, never written.
func (r *appointmentServicesRepository) Create(db *gorm.DB, services *entity.AppointmentServices) error {
	return db.Omit("Service", "Therapy", "Scans.*", "LabWorks.*").Create(services).Error
}
