package repository

import (
	"go-clinic-management/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentServicesRepository interface {
	Create(db *gorm.DB, services *entity.AppointmentServices) error
}
