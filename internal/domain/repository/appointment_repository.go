package repository

import (
	"time"

	"go-clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, int64, error)
	// TransitionStatus moves the appointment from one status to another only if it
	// is still in from. Returns affected rows: 0 means another caller got there first.
	TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, doctorID *uuid.UUID, now time.Time) (int64, error)
	CancelExpired(db *gorm.DB, cutoff, now time.Time) ([]entity.Appointment, error)
}
