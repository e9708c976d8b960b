package usecase

import (
	"context"
	"fmt"
	"time"

	"go-clinic-management/internal/converter"
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/service"
	"go-clinic-management/pkg/apperror"
	"go-clinic-management/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound   = apperror.NotFound("appointment not found")
	ErrAppointmentDatePast   = apperror.Unprocessable("appointment date is in the past")
	ErrAppointmentNotOwned   = apperror.Forbidden("appointment does not belong to you")
	ErrAppointmentTransition = apperror.Conflict("appointment status does not allow this action")
	ErrPatientEmrNotFound    = apperror.NotFound("patient has no medical record")
	ErrDoctorNotFound        = apperror.NotFound("doctor not found")
	ErrActionNotAllowed      = apperror.Forbidden("your role cannot perform this action")
)

// AppointmentUsecase owns the appointment status machine:
// pending -> approved -> completed, pending -> rejected, approved -> cancelled.
type AppointmentUsecase interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	List(ctx context.Context, actor entity.Actor, query *dto.ListAppointmentsQuery) (*dto.AppointmentListResponse, error)
	Approve(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.ApproveAppointmentRequest) (*dto.AppointmentResponse, error)
	Reject(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	Complete(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.CompleteAppointmentRequest) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	now             func() time.Time
	appointmentRepo repository.AppointmentRepository
	servicesRepo    repository.AppointmentServicesRepository
	emrRepo         repository.EmrRepository
	doctorRepo      repository.DoctorProfileRepository
	pricing         service.PricingCalculator
	billing         service.BillingCoordinator
	notifier        service.LifecycleNotifier
	metrics         *metrics.MetricsCollector
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	now func() time.Time,
	appointmentRepo repository.AppointmentRepository,
	servicesRepo repository.AppointmentServicesRepository,
	emrRepo repository.EmrRepository,
	doctorRepo repository.DoctorProfileRepository,
	pricing service.PricingCalculator,
	billing service.BillingCoordinator,
	notifier service.LifecycleNotifier,
	metrics *metrics.MetricsCollector,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		now:             now,
		appointmentRepo: appointmentRepo,
		servicesRepo:    servicesRepo,
		emrRepo:         emrRepo,
		doctorRepo:      doctorRepo,
		pricing:         pricing,
		billing:         billing,
		notifier:        notifier,
		metrics:         metrics,
	}
}

// Create books an appointment for the calling patient.
//
// Flow:
// 1. Reject past dates
// 2. Find the patient's EMR
// 3. Resolve and price the ordered services
// 4. Store services, an initial billing and a pending appointment in one transaction
func (u *appointmentUsecase) Create(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !actor.Can(entity.CapabilityBookAppointment) {
		return nil, ErrActionNotAllowed
	}

	now := u.now()
	if req.Date.Before(now) {
		return nil, ErrAppointmentDatePast
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	emr, err := u.emrRepo.FindByPatientID(tx, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find emr of patient %s: %+v", actor.UserID, err)
		return nil, err
	}
	if emr == nil {
		return nil, ErrPatientEmrNotFound
	}

	quote, err := u.pricing.Quote(tx, &entity.ServiceOrder{
		ServiceID:  req.Service,
		TherapyID:  req.Therapy,
		ScanIDs:    req.Scans,
		LabWorkIDs: req.LabWorks,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}

	services := &entity.AppointmentServices{
		Notes:     req.Notes,
		ServiceID: req.Service,
		TherapyID: req.Therapy,
		Scans:     quote.Scans,
		LabWorks:  quote.LabWorks,
	}
	if err := u.servicesRepo.Create(tx, services); err != nil {
		u.log.Warnf("Failed to create appointment services: %+v", err)
		return nil, err
	}

	billing, err := u.billing.Open(tx, quote.Total, req.Date)
	if err != nil {
		return nil, err
	}

	appointment := &entity.Appointment{
		Date:       req.Date,
		Status:     entity.AppointmentStatusPending,
		PatientID:  actor.UserID,
		EmrID:      emr.ID,
		BillingID:  billing.ID,
		ServicesID: services.ID,
	}
	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	notifications, err := u.notifier.Record(tx, service.AppointmentEvent(&actor.UserID, entity.AuditActionAppointmentCreate, appointment))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit appointment: %+v", err)
		return nil, err
	}

	u.notifier.Publish(ctx, notifications)
	u.metrics.RecordTransition(string(entity.AppointmentStatusPending), nil)
	u.log.Infof("Appointment created: id=%s, number=%d, amount=%s", appointment.ID, appointment.Number, billing.Amount)

	appointment.Billing = billing
	appointment.Services = services
	return u.reload(ctx, appointment), nil
}

func (u *appointmentUsecase) Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !actor.Can(entity.CapabilityViewAllAppointments) && !appointment.IsOwnedBy(actor.UserID) {
		return nil, ErrAppointmentNotOwned
	}

	return converter.AppointmentToResponse(appointment), nil
}

// List returns a page of appointments. Patients only ever see their own.
func (u *appointmentUsecase) List(ctx context.Context, actor entity.Actor, query *dto.ListAppointmentsQuery) (*dto.AppointmentListResponse, error) {
	filter := &entity.AppointmentFilter{
		Status: entity.AppointmentStatus(query.Status),
		Page:   query.Page,
		Limit:  query.Limit,
	}
	if !actor.Can(entity.CapabilityViewAllAppointments) {
		patientID := actor.UserID
		filter.PatientID = &patientID
	}

	appointments, total, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Page:         query.Page,
		Limit:        query.Limit,
		Total:        total,
	}, nil
}

func (u *appointmentUsecase) Approve(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.ApproveAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !actor.Can(entity.CapabilityApproveAppointment) {
		return nil, ErrActionNotAllowed
	}

	doctorID := req.DoctorID
	return u.transition(ctx, actor, id, transition{
		to:       entity.AppointmentStatusApproved,
		action:   entity.AuditActionAppointmentApprove,
		doctorID: &doctorID,
		before: func(tx *gorm.DB, _ *entity.Appointment) error {
			doctor, err := u.doctorRepo.FindByUserID(tx, doctorID)
			if err != nil {
				u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
				return err
			}
			if doctor == nil || !doctor.IsActive() {
				return ErrDoctorNotFound
			}
			return nil
		},
	})
}

func (u *appointmentUsecase) Reject(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	if !actor.Can(entity.CapabilityRejectAppointment) {
		return nil, ErrActionNotAllowed
	}

	return u.transition(ctx, actor, id, transition{
		to:     entity.AppointmentStatusRejected,
		action: entity.AuditActionAppointmentReject,
	})
}

// Cancel is open to staff and to the patient who booked the appointment
func (u *appointmentUsecase) Cancel(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	if !actor.Can(entity.CapabilityCancelAnyAppointment) && !actor.Can(entity.CapabilityCancelOwnAppointment) {
		return nil, ErrActionNotAllowed
	}

	return u.transition(ctx, actor, id, transition{
		to:     entity.AppointmentStatusCancelled,
		action: entity.AuditActionAppointmentCancel,
		authorize: func(a *entity.Appointment) error {
			if !actor.Can(entity.CapabilityCancelAnyAppointment) && !a.IsOwnedBy(actor.UserID) {
				return ErrAppointmentNotOwned
			}
			return nil
		},
		after: func(tx *gorm.DB, a *entity.Appointment) error {
			return u.billing.Void(tx, a.BillingID, u.now())
		},
	})
}

// Complete closes an approved appointment and settles its billing with the
// chosen method. Insurance requires a policy that is still valid.
func (u *appointmentUsecase) Complete(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.CompleteAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !actor.Can(entity.CapabilityCompleteAppointment) {
		return nil, ErrActionNotAllowed
	}

	method := entity.BillingStatus(req.BillingStatus)
	if !entity.IsSettlementMethod(method) {
		return nil, service.ErrInvalidSettlement
	}

	return u.transition(ctx, actor, id, transition{
		to:     entity.AppointmentStatusCompleted,
		action: entity.AuditActionAppointmentComplete,
		before: func(tx *gorm.DB, a *entity.Appointment) error {
			if method != entity.BillingStatusInsurance {
				return nil
			}
			return u.billing.CheckInsuranceEligibility(tx, a.EmrID, u.now())
		},
		after: func(tx *gorm.DB, a *entity.Appointment) error {
			return u.billing.Settle(tx, a.BillingID, method, u.now())
		},
	})
}

// transition describes one edge of the status machine
type transition struct {
	to       entity.AppointmentStatus
	action   string
	doctorID *uuid.UUID
	// authorize checks the actor against the loaded appointment
	authorize func(a *entity.Appointment) error
	// before runs after the state check and before the status write
	before func(tx *gorm.DB, a *entity.Appointment) error
	// after runs once the status write succeeded, in the same transaction
	after func(tx *gorm.DB, a *entity.Appointment) error
}

// transition applies t as a compare-and-swap on the status column. When a
// concurrent request moved the appointment first, no row matches and the
// caller gets a Conflict; everything written so far is rolled back.
func (u *appointmentUsecase) transition(ctx context.Context, actor entity.Actor, id uuid.UUID, t transition) (*dto.AppointmentResponse, error) {
	resp, err := u.applyTransition(ctx, actor, id, t)
	u.metrics.RecordTransition(string(t.to), err)
	return resp, err
}

func (u *appointmentUsecase) applyTransition(ctx context.Context, actor entity.Actor, id uuid.UUID, t transition) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if t.authorize != nil {
		if err := t.authorize(appointment); err != nil {
			return nil, err
		}
	}

	from := appointment.Status
	if !entity.CanTransitionAppointment(from, t.to) {
		return nil, fmt.Errorf("%w: %s appointment cannot become %s", ErrAppointmentTransition, from, t.to)
	}

	if t.before != nil {
		if err := t.before(tx, appointment); err != nil {
			return nil, err
		}
	}

	affected, err := u.appointmentRepo.TransitionStatus(tx, id, from, t.to, t.doctorID, u.now())
	if err != nil {
		u.log.Warnf("Failed to move appointment %s to %s: %+v", id, t.to, err)
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: appointment is no longer %s", ErrAppointmentTransition, from)
	}

	appointment.Status = t.to
	if t.doctorID != nil {
		appointment.DoctorID = t.doctorID
	}

	if t.after != nil {
		if err := t.after(tx, appointment); err != nil {
			return nil, err
		}
	}

	notifications, err := u.notifier.Record(tx, service.AppointmentEvent(&actor.UserID, t.action, appointment))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit appointment %s transition: %+v", id, err)
		return nil, err
	}

	u.notifier.Publish(ctx, notifications)
	u.log.Infof("Appointment %s: %s -> %s by %s", appointment.DisplayName(), from, t.to, actor.UserID)

	return u.reload(ctx, appointment), nil
}

// reload returns the stored appointment, falling back to the in-memory copy
func (u *appointmentUsecase) reload(ctx context.Context, appointment *entity.Appointment) *dto.AppointmentResponse {
	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment)
	}
	return converter.AppointmentToResponse(full)
}
