package usecase

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/mocks"
	"go-clinic-management/internal/service"
	"go-clinic-management/pkg/apperror"
	"go-clinic-management/pkg/metrics"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var clinicNow = time.Date(2026, 4, 15, 9, 30, 0, 0, time.UTC)

type appointmentFixture struct {
	sqlMock          sqlmock.Sqlmock
	appointmentRepo  *mocks.MockAppointmentRepository
	servicesRepo     *mocks.MockAppointmentServicesRepository
	emrRepo          *mocks.MockEmrRepository
	doctorRepo       *mocks.MockDoctorProfileRepository
	billingRepo      *mocks.MockBillingRepository
	catalogRepo      *mocks.MockCatalogRepository
	auditRepo        *mocks.MockAuditLogRepository
	notificationRepo *mocks.MockNotificationRepository
	usecase          AppointmentUsecase
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	db, sqlMock := newMockDB(t)
	f := &appointmentFixture{
		sqlMock:          sqlMock,
		appointmentRepo:  new(mocks.MockAppointmentRepository),
		servicesRepo:     new(mocks.MockAppointmentServicesRepository),
		emrRepo:          new(mocks.MockEmrRepository),
		doctorRepo:       new(mocks.MockDoctorProfileRepository),
		billingRepo:      new(mocks.MockBillingRepository),
		catalogRepo:      new(mocks.MockCatalogRepository),
		auditRepo:        new(mocks.MockAuditLogRepository),
		notificationRepo: new(mocks.MockNotificationRepository),
	}

	log := testLogger()
	f.usecase = NewAppointmentUsecase(
		db,
		log,
		func() time.Time { return clinicNow },
		f.appointmentRepo,
		f.servicesRepo,
		f.emrRepo,
		f.doctorRepo,
		service.NewPricingCalculator(log, f.catalogRepo),
		service.NewBillingCoordinator(log, f.billingRepo, f.emrRepo),
		service.NewLifecycleNotifier(log, nil, f.auditRepo, f.notificationRepo),
		metrics.NewMetricsCollector("test", prometheus.NewRegistry()),
	)
	return f
}

// expectRecord accepts the action log and notification writes of one event
func (f *appointmentFixture) expectRecord() {
	f.auditRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.notificationRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
}

func newAppointment(status entity.AppointmentStatus) *entity.Appointment {
	return &entity.Appointment{
		ID:         uuid.New(),
		Number:     11,
		Date:       clinicNow.Add(24 * time.Hour),
		Status:     status,
		PatientID:  uuid.New(),
		EmrID:      uuid.New(),
		BillingID:  uuid.New(),
		ServicesID: uuid.New(),
	}
}

var (
	adminActor = entity.Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
	strangerActor = entity.Actor{UserID: uuid.New(), Role: entity.RolePatient}
)

func TestCreateAppointment_EmptyOrderBillsMinimum(t *testing.T) {
	f := newAppointmentFixture(t)
	patient := entity.Actor{UserID: uuid.New(), Role: entity.RolePatient}
	emr := &entity.ElectronicMedicalRecord{ID: uuid.New(), PatientID: patient.UserID}
	servicesID, billingID, appointmentID := uuid.New(), uuid.New(), uuid.New()

	f.sqlMock.ExpectBegin()
	f.emrRepo.On("FindByPatientID", mock.Anything, patient.UserID).Return(emr, nil)
	f.catalogRepo.On("FindModalitiesByIDs", mock.Anything, mock.Anything).Return(nil, nil)
	f.catalogRepo.On("FindLaboratoryTestsByIDs", mock.Anything, mock.Anything).Return(nil, nil)
	f.servicesRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.AppointmentServices).ID = servicesID }).
		Return(nil)
	f.billingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entity.Billing) bool {
		return b.Amount.Equal(decimal.NewFromInt(20)) &&
			b.Status == entity.BillingStatusInitial &&
			b.Date.Equal(clinicNow.Add(48*time.Hour))
	})).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Billing).ID = billingID }).
		Return(nil)
	f.appointmentRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *entity.Appointment) bool {
		return a.Status == entity.AppointmentStatusPending &&
			a.PatientID == patient.UserID &&
			a.EmrID == emr.ID &&
			a.BillingID == billingID &&
			a.ServicesID == servicesID
	})).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Appointment).ID = appointmentID }).
		Return(nil)
	f.expectRecord()
	f.sqlMock.ExpectCommit()
	f.appointmentRepo.On("FindByID", mock.Anything, appointmentID).Return(nil, nil)

	resp, err := f.usecase.Create(context.Background(), patient, &dto.CreateAppointmentRequest{Date: clinicNow.Add(48 * time.Hour)})

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	require.NotNil(t, resp.Billing)
	assert.True(t, resp.Billing.Amount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "initial", resp.Billing.Status)
	f.appointmentRepo.AssertExpectations(t)
	f.billingRepo.AssertExpectations(t)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestCreateAppointment_Rejections(t *testing.T) {
	patient := entity.Actor{UserID: uuid.New(), Role: entity.RolePatient}

	t.Run("past date", func(t *testing.T) {
		f := newAppointmentFixture(t)

		_, err := f.usecase.Create(context.Background(), patient, &dto.CreateAppointmentRequest{Date: clinicNow.Add(-time.Minute)})

		assert.ErrorIs(t, err, ErrAppointmentDatePast)
		assert.ErrorIs(t, err, apperror.ErrUnprocessable)
		f.emrRepo.AssertNotCalled(t, "FindByPatientID", mock.Anything, mock.Anything)
	})

	t.Run("admin cannot book", func(t *testing.T) {
		f := newAppointmentFixture(t)

		_, err := f.usecase.Create(context.Background(), adminActor, &dto.CreateAppointmentRequest{Date: clinicNow.Add(time.Hour)})

		assert.ErrorIs(t, err, ErrActionNotAllowed)
	})

	t.Run("no medical record", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.sqlMock.ExpectBegin()
		f.emrRepo.On("FindByPatientID", mock.Anything, patient.UserID).Return(nil, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Create(context.Background(), patient, &dto.CreateAppointmentRequest{Date: clinicNow.Add(time.Hour)})

		assert.ErrorIs(t, err, ErrPatientEmrNotFound)
		f.billingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown scan rolls back", func(t *testing.T) {
		f := newAppointmentFixture(t)
		scanID := uuid.New()
		f.sqlMock.ExpectBegin()
		f.emrRepo.On("FindByPatientID", mock.Anything, patient.UserID).Return(&entity.ElectronicMedicalRecord{ID: uuid.New()}, nil)
		f.catalogRepo.On("FindModalitiesByIDs", mock.Anything, []uuid.UUID{scanID}).Return(nil, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Create(context.Background(), patient, &dto.CreateAppointmentRequest{
			Date:  clinicNow.Add(time.Hour),
			Scans: []uuid.UUID{scanID},
		})

		assert.ErrorIs(t, err, service.ErrModalityNotFound)
		f.servicesRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRejectAppointment_Twice(t *testing.T) {
	f := newAppointmentFixture(t)
	appointment := newAppointment(entity.AppointmentStatusPending)

	f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
	f.appointmentRepo.On("TransitionStatus", mock.Anything, appointment.ID,
		entity.AppointmentStatusPending, entity.AppointmentStatusRejected, (*uuid.UUID)(nil), clinicNow).Return(int64(1), nil).Once()
	f.expectRecord()

	f.sqlMock.ExpectBegin()
	f.sqlMock.ExpectCommit()
	resp, err := f.usecase.Reject(context.Background(), adminActor, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)

	f.sqlMock.ExpectBegin()
	f.sqlMock.ExpectRollback()
	_, err = f.usecase.Reject(context.Background(), adminActor, appointment.ID)

	assert.ErrorIs(t, err, ErrAppointmentTransition)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	f.appointmentRepo.AssertNumberOfCalls(t, "TransitionStatus", 1)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestApproveAppointment(t *testing.T) {
	doctorID := uuid.New()

	t.Run("assigns the doctor and notifies the patient", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := newAppointment(entity.AppointmentStatusPending)

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.doctorRepo.On("FindByUserID", mock.Anything, doctorID).Return(&entity.DoctorProfile{UserID: doctorID}, nil)
		f.appointmentRepo.On("TransitionStatus", mock.Anything, appointment.ID,
			entity.AppointmentStatusPending, entity.AppointmentStatusApproved, &doctorID, clinicNow).Return(int64(1), nil)
		f.auditRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
		f.notificationRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(n []entity.Notification) bool {
			return len(n) == 1 && n[0].UserID == appointment.PatientID && n[0].Action == entity.AuditActionAppointmentApprove
		})).Return(nil)
		f.sqlMock.ExpectCommit()

		resp, err := f.usecase.Approve(context.Background(), adminActor, appointment.ID, &dto.ApproveAppointmentRequest{DoctorID: doctorID})

		require.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
		assert.Equal(t, &doctorID, resp.DoctorID)
		f.notificationRepo.AssertExpectations(t)
	})

	t.Run("rejected appointment cannot be approved", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := newAppointment(entity.AppointmentStatusRejected)

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Approve(context.Background(), adminActor, appointment.ID, &dto.ApproveAppointmentRequest{DoctorID: doctorID})

		assert.ErrorIs(t, err, ErrAppointmentTransition)
		f.doctorRepo.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
	})

	t.Run("inactive doctor", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := newAppointment(entity.AppointmentStatusPending)
		inactive := false

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.doctorRepo.On("FindByUserID", mock.Anything, doctorID).
			Return(&entity.DoctorProfile{UserID: doctorID, User: entity.User{IsActive: &inactive}}, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Approve(context.Background(), adminActor, appointment.ID, &dto.ApproveAppointmentRequest{DoctorID: doctorID})

		assert.ErrorIs(t, err, ErrDoctorNotFound)
		f.appointmentRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("doctor role cannot approve", func(t *testing.T) {
		f := newAppointmentFixture(t)

		_, err := f.usecase.Approve(context.Background(), entity.Actor{UserID: doctorID, Role: entity.RoleDoctor}, uuid.New(), &dto.ApproveAppointmentRequest{DoctorID: doctorID})

		assert.ErrorIs(t, err, ErrActionNotAllowed)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := newAppointment(entity.AppointmentStatusPending)

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.doctorRepo.On("FindByUserID", mock.Anything, doctorID).Return(&entity.DoctorProfile{UserID: doctorID}, nil)
		f.appointmentRepo.On("TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Approve(context.Background(), adminActor, appointment.ID, &dto.ApproveAppointmentRequest{DoctorID: doctorID})

		assert.ErrorIs(t, err, ErrAppointmentTransition)
		f.auditRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})
}

func TestCompleteAppointment(t *testing.T) {
	doctor := entity.Actor{UserID: uuid.New(), Role: entity.RoleDoctor}

	approved := func() *entity.Appointment {
		a := newAppointment(entity.AppointmentStatusApproved)
		a.DoctorID = &doctor.UserID
		return a
	}

	t.Run("paid settles the billing", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := approved()

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.appointmentRepo.On("TransitionStatus", mock.Anything, appointment.ID,
			entity.AppointmentStatusApproved, entity.AppointmentStatusCompleted, (*uuid.UUID)(nil), clinicNow).Return(int64(1), nil)
		f.billingRepo.On("TransitionStatus", mock.Anything, appointment.BillingID,
			entity.BillingStatusInitial, entity.BillingStatusPaid, clinicNow).Return(int64(1), nil)
		f.expectRecord()
		f.sqlMock.ExpectCommit()

		resp, err := f.usecase.Complete(context.Background(), doctor, appointment.ID, &dto.CompleteAppointmentRequest{BillingStatus: "paid"})

		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
		f.billingRepo.AssertExpectations(t)
		f.emrRepo.AssertNotCalled(t, "FindInsuranceByEmrID", mock.Anything, mock.Anything)
	})

	t.Run("insurance without a policy", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := approved()

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.emrRepo.On("FindInsuranceByEmrID", mock.Anything, appointment.EmrID).Return(nil, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Complete(context.Background(), doctor, appointment.ID, &dto.CompleteAppointmentRequest{BillingStatus: "insurance"})

		assert.ErrorIs(t, err, service.ErrInsuranceMissing)
		assert.ErrorIs(t, err, apperror.ErrConflict)
		f.appointmentRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.billingRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("valid insurance", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := approved()

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.emrRepo.On("FindInsuranceByEmrID", mock.Anything, appointment.EmrID).
			Return(&entity.Insurance{PolicyEndDate: clinicNow.AddDate(0, 6, 0)}, nil)
		f.appointmentRepo.On("TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
		f.billingRepo.On("TransitionStatus", mock.Anything, appointment.BillingID,
			entity.BillingStatusInitial, entity.BillingStatusInsurance, clinicNow).Return(int64(1), nil)
		f.expectRecord()
		f.sqlMock.ExpectCommit()

		resp, err := f.usecase.Complete(context.Background(), adminActor, appointment.ID, &dto.CompleteAppointmentRequest{BillingStatus: "insurance"})

		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
	})

	t.Run("billing already settled rolls back", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := approved()

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.appointmentRepo.On("TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
		f.billingRepo.On("TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Complete(context.Background(), doctor, appointment.ID, &dto.CompleteAppointmentRequest{BillingStatus: "paid"})

		assert.ErrorIs(t, err, service.ErrBillingNotOpen)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("any doctor may complete", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := approved()
		other := entity.Actor{UserID: uuid.New(), Role: entity.RoleDoctor}

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.appointmentRepo.On("TransitionStatus", mock.Anything, appointment.ID,
			entity.AppointmentStatusApproved, entity.AppointmentStatusCompleted, (*uuid.UUID)(nil), clinicNow).Return(int64(1), nil)
		f.billingRepo.On("TransitionStatus", mock.Anything, appointment.BillingID,
			entity.BillingStatusInitial, entity.BillingStatusPaid, clinicNow).Return(int64(1), nil)
		f.expectRecord()
		f.sqlMock.ExpectCommit()

		resp, err := f.usecase.Complete(context.Background(), other, appointment.ID, &dto.CompleteAppointmentRequest{BillingStatus: "paid"})

		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("cancelled is not a settlement", func(t *testing.T) {
		f := newAppointmentFixture(t)

		_, err := f.usecase.Complete(context.Background(), doctor, uuid.New(), &dto.CompleteAppointmentRequest{BillingStatus: "cancelled"})

		assert.ErrorIs(t, err, service.ErrInvalidSettlement)
	})

	t.Run("pending cannot complete", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := newAppointment(entity.AppointmentStatusPending)

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Complete(context.Background(), adminActor, appointment.ID, &dto.CompleteAppointmentRequest{BillingStatus: "paid"})

		assert.ErrorIs(t, err, ErrAppointmentTransition)
	})
}

func TestCancelAppointment(t *testing.T) {
	t.Run("owner cancels approved and voids billing", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := newAppointment(entity.AppointmentStatusApproved)
		owner := entity.Actor{UserID: appointment.PatientID, Role: entity.RolePatient}

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.appointmentRepo.On("TransitionStatus", mock.Anything, appointment.ID,
			entity.AppointmentStatusApproved, entity.AppointmentStatusCancelled, (*uuid.UUID)(nil), clinicNow).Return(int64(1), nil)
		f.billingRepo.On("TransitionStatus", mock.Anything, appointment.BillingID,
			entity.BillingStatusInitial, entity.BillingStatusCancelled, clinicNow).Return(int64(1), nil)
		f.auditRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
		f.notificationRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(n []entity.Notification) bool {
			return len(n) == 0
		})).Return(nil)
		f.sqlMock.ExpectCommit()

		resp, err := f.usecase.Cancel(context.Background(), owner, appointment.ID)

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		f.billingRepo.AssertExpectations(t)
	})

	t.Run("another patient", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := newAppointment(entity.AppointmentStatusApproved)

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Cancel(context.Background(), strangerActor, appointment.ID)

		assert.ErrorIs(t, err, ErrAppointmentNotOwned)
	})

	t.Run("pending cannot be cancelled", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := newAppointment(entity.AppointmentStatusPending)

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Cancel(context.Background(), adminActor, appointment.ID)

		assert.ErrorIs(t, err, ErrAppointmentTransition)
	})

	t.Run("doctor cancels any appointment", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment := newAppointment(entity.AppointmentStatusApproved)
		doctor := entity.Actor{UserID: uuid.New(), Role: entity.RoleDoctor}

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
		f.appointmentRepo.On("TransitionStatus", mock.Anything, appointment.ID,
			entity.AppointmentStatusApproved, entity.AppointmentStatusCancelled, (*uuid.UUID)(nil), clinicNow).Return(int64(1), nil)
		f.billingRepo.On("TransitionStatus", mock.Anything, appointment.BillingID,
			entity.BillingStatusInitial, entity.BillingStatusCancelled, clinicNow).Return(int64(1), nil)
		f.expectRecord()
		f.sqlMock.ExpectCommit()

		resp, err := f.usecase.Cancel(context.Background(), doctor, appointment.ID)

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		f.billingRepo.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := uuid.New()

		f.sqlMock.ExpectBegin()
		f.appointmentRepo.On("FindByID", mock.Anything, id).Return(nil, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Cancel(context.Background(), adminActor, id)

		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}

func TestGetAppointment_Ownership(t *testing.T) {
	f := newAppointmentFixture(t)
	appointment := newAppointment(entity.AppointmentStatusPending)
	f.appointmentRepo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)

	_, err := f.usecase.Get(context.Background(), strangerActor, appointment.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotOwned)

	resp, err := f.usecase.Get(context.Background(), entity.Actor{UserID: appointment.PatientID, Role: entity.RolePatient}, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.ID, resp.ID)

	_, err = f.usecase.Get(context.Background(), entity.Actor{UserID: uuid.New(), Role: entity.RoleDoctor}, appointment.ID)
	assert.NoError(t, err)
}

func TestListAppointments_PatientSeesOwn(t *testing.T) {
	f := newAppointmentFixture(t)
	patient := entity.Actor{UserID: uuid.New(), Role: entity.RolePatient}

	f.appointmentRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(filter *entity.AppointmentFilter) bool {
		return filter.PatientID != nil && *filter.PatientID == patient.UserID && filter.Status == entity.AppointmentStatusApproved
	})).Return([]entity.Appointment{*newAppointment(entity.AppointmentStatusApproved)}, int64(1), nil)

	resp, err := f.usecase.List(context.Background(), patient, &dto.ListAppointmentsQuery{Status: "approved", Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)
	assert.Equal(t, int64(1), resp.Total)
	f.appointmentRepo.AssertExpectations(t)
}

func TestListAppointments_AdminSeesAll(t *testing.T) {
	f := newAppointmentFixture(t)

	f.appointmentRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(filter *entity.AppointmentFilter) bool {
		return filter.PatientID == nil
	})).Return(nil, int64(0), nil)

	resp, err := f.usecase.List(context.Background(), adminActor, &dto.ListAppointmentsQuery{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, resp.Appointments)
}

type appointmentStep struct {
	name   string
	target entity.AppointmentStatus
	run    func(f *appointmentFixture, id uuid.UUID) (*dto.AppointmentResponse, error)
}

var appointmentSteps = []appointmentStep{
	{"approve", entity.AppointmentStatusApproved, func(f *appointmentFixture, id uuid.UUID) (*dto.AppointmentResponse, error) {
		return f.usecase.Approve(context.Background(), adminActor, id, &dto.ApproveAppointmentRequest{DoctorID: uuid.New()})
	}},
	{"reject", entity.AppointmentStatusRejected, func(f *appointmentFixture, id uuid.UUID) (*dto.AppointmentResponse, error) {
		return f.usecase.Reject(context.Background(), adminActor, id)
	}},
	{"cancel", entity.AppointmentStatusCancelled, func(f *appointmentFixture, id uuid.UUID) (*dto.AppointmentResponse, error) {
		return f.usecase.Cancel(context.Background(), adminActor, id)
	}},
	{"complete", entity.AppointmentStatusCompleted, func(f *appointmentFixture, id uuid.UUID) (*dto.AppointmentResponse, error) {
		return f.usecase.Complete(context.Background(), adminActor, id, &dto.CompleteAppointmentRequest{BillingStatus: "paid"})
	}},
}

func TestAppointmentUsecase_RandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := newAppointment(entity.AppointmentStatusPending)

	for run := 0; run < 100; run++ {
		status := entity.AppointmentStatusPending

		for step := 0; step < 8; step++ {
			action := appointmentSteps[rng.Intn(len(appointmentSteps))]
			current := *base
			current.Status = status

			f := newAppointmentFixture(t)
			f.sqlMock.ExpectBegin()
			f.appointmentRepo.On("FindByID", mock.Anything, current.ID).Return(&current, nil)

			if !entity.CanTransitionAppointment(status, action.target) {
				f.sqlMock.ExpectRollback()

				_, err := action.run(f, current.ID)

				require.ErrorIs(t, err, apperror.ErrConflict, "run %d: %s on %s", run, action.name, status)
				f.appointmentRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				f.billingRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				f.auditRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
				require.NoError(t, f.sqlMock.ExpectationsWereMet())
				continue
			}

			f.doctorRepo.On("FindByUserID", mock.Anything, mock.Anything).Return(&entity.DoctorProfile{}, nil)
			f.appointmentRepo.On("TransitionStatus", mock.Anything, current.ID, status, action.target, mock.Anything, clinicNow).Return(int64(1), nil)
			f.billingRepo.On("TransitionStatus", mock.Anything, current.BillingID, entity.BillingStatusInitial, mock.Anything, clinicNow).Return(int64(1), nil)
			f.expectRecord()
			f.sqlMock.ExpectCommit()

			resp, err := action.run(f, current.ID)

			require.NoError(t, err, "run %d: %s on %s", run, action.name, status)
			require.Equal(t, string(action.target), resp.Status)
			f.appointmentRepo.AssertNumberOfCalls(t, "TransitionStatus", 1)
			require.NoError(t, f.sqlMock.ExpectationsWereMet())
			status = action.target
		}
	}
}
