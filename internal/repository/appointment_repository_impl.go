package repository

import (
	"errors"
	"time"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit(clause.Associations).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.
		Preload("Billing").
		Preload("Services.Service").
		Preload("Services.Therapy").
		Preload("Services.Scans").
		Preload("Services.LabWorks").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	query := db.Model(&entity.Appointment{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appointments []entity.Appointment
	err := query.
		Preload("Billing").
		Order("date DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// TransitionStatus is a compare-and-swap on the status column. The doctor is
// bound in the same statement so approve cannot race with itself.
func (r *appointmentRepository) TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, doctorID *uuid.UUID, now time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	if doctorID != nil {
		updates["doctor_id"] = *doctorID
	}

	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CancelExpired cancels every pending or approved appointment dated before cutoff
// and returns the rows it changed. The predicate is evaluated at write time.
func (r *appointmentRepository) CancelExpired(db *gorm.DB, cutoff, now time.Time) ([]entity.Appointment, error) {
	var cancelled []entity.Appointment
	err := db.Model(&cancelled).
		Clauses(clause.Returning{}).
		Where("status IN ? AND date < ?", []entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusApproved}, cutoff).
		Updates(map[string]interface{}{
			"status":     entity.AppointmentStatusCancelled,
			"updated_at": now,
		}).Error
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}
