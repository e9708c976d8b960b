package usecase

import (
	"context"
	"time"

	"go-clinic-management/internal/converter"
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/service"
	"go-clinic-management/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrTestResultNotFound = apperror.NotFound("test result not found")
)

type TestResultUsecase interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateTestResultRequest) (*dto.TestResultResponse, error)
	Update(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateTestResultRequest) (*dto.TestResultResponse, error)
	ListByAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) ([]dto.TestResultResponse, error)
}

type testResultUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	now             func() time.Time
	testResultRepo  repository.TestResultRepository
	appointmentRepo repository.AppointmentRepository
	catalogRepo     repository.CatalogRepository
	notifier        service.LifecycleNotifier
}

func NewTestResultUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	now func() time.Time,
	testResultRepo repository.TestResultRepository,
	appointmentRepo repository.AppointmentRepository,
	catalogRepo repository.CatalogRepository,
	notifier service.LifecycleNotifier,
) TestResultUsecase {
	return &testResultUsecase{
		db:              db,
		log:             log,
		now:             now,
		testResultRepo:  testResultRepo,
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		notifier:        notifier,
	}
}

// Create stores a lab result with its biomarker values. A biomarker the
// laboratory test does not declare rejects the whole result.
func (u *testResultUsecase) Create(ctx context.Context, actor entity.Actor, req *dto.CreateTestResultRequest) (*dto.TestResultResponse, error) {
	if !actor.Can(entity.CapabilityManageTestResults) {
		return nil, ErrActionNotAllowed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", req.AppointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	test, err := u.catalogRepo.FindLaboratoryTestByID(tx, req.LaboratoryTestID)
	if err != nil {
		u.log.Warnf("Failed to find laboratory test %s: %+v", req.LaboratoryTestID, err)
		return nil, err
	}
	if test == nil {
		return nil, service.ErrLaboratoryTestNotFound
	}

	now := u.now()
	result := &entity.LaboratoryTestResult{
		ID:               uuid.New(),
		AppointmentID:    appointment.ID,
		LaboratoryTestID: test.ID,
		Title:            req.Title,
		Notes:            req.Notes,
	}

	plan, err := service.PlanBiomarkerMerge(test, result.ID, nil, converter.ReadingsFromRequest(req.Values), now)
	if err != nil {
		return nil, err
	}
	result.Values = plan.Inserts

	if err := u.testResultRepo.Create(tx, result); err != nil {
		u.log.Warnf("Failed to create test result: %+v", err)
		return nil, err
	}

	notifications, err := u.notifier.Record(tx, testResultEvent(actor, entity.AuditActionTestResultCreate, result, appointment, len(plan.Inserts), 0))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit test result: %+v", err)
		return nil, err
	}

	u.notifier.Publish(ctx, notifications)
	u.log.Infof("Test result %s created for %s", result.ID, appointment.DisplayName())

	return u.load(ctx, result.ID)
}

// Update patches title and notes and merges the submitted values: changed
// numbers are rewritten, new biomarkers are inserted, the rest stay untouched.
func (u *testResultUsecase) Update(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateTestResultRequest) (*dto.TestResultResponse, error) {
	if !actor.Can(entity.CapabilityManageTestResults) {
		return nil, ErrActionNotAllowed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	result, err := u.testResultRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find test result %s: %+v", id, err)
		return nil, err
	}
	if result == nil {
		return nil, ErrTestResultNotFound
	}
	if result.LaboratoryTest == nil {
		return nil, service.ErrLaboratoryTestNotFound
	}

	now := u.now()
	plan, err := service.PlanBiomarkerMerge(result.LaboratoryTest, result.ID, result.Values, converter.ReadingsFromRequest(req.Values), now)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
		result.Title = *req.Title
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
		result.Notes = *req.Notes
	}
	if err := u.testResultRepo.UpdateFields(tx, result.ID, updates); err != nil {
		u.log.Warnf("Failed to update test result %s: %+v", id, err)
		return nil, err
	}

	if err := u.testResultRepo.CreateValues(tx, plan.Inserts); err != nil {
		u.log.Warnf("Failed to add values to test result %s: %+v", id, err)
		return nil, err
	}
	for i := range plan.Updates {
		if err := u.testResultRepo.UpdateValue(tx, &plan.Updates[i]); err != nil {
			u.log.Warnf("Failed to update value %s: %+v", plan.Updates[i].ID, err)
			return nil, err
		}
	}

	appointment, err := u.appointmentRepo.FindByID(tx, result.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", result.AppointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	notifications, err := u.notifier.Record(tx, testResultEvent(actor, entity.AuditActionTestResultUpdate, result, appointment, len(plan.Inserts), len(plan.Updates)))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit test result %s: %+v", id, err)
		return nil, err
	}

	u.notifier.Publish(ctx, notifications)

	return u.load(ctx, result.ID)
}

// ListByAppointment returns the results of one appointment. Patients may only
// read results of their own appointments.
func (u *testResultUsecase) ListByAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) ([]dto.TestResultResponse, error) {
	db := u.db.WithContext(ctx)

	appointment, err := u.appointmentRepo.FindByID(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !actor.Can(entity.CapabilityViewAllAppointments) && !appointment.IsOwnedBy(actor.UserID) {
		return nil, ErrAppointmentNotOwned
	}

	results, err := u.testResultRepo.FindByAppointmentID(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to list test results of appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	return converter.TestResultsToResponses(results), nil
}

func (u *testResultUsecase) load(ctx context.Context, id uuid.UUID) (*dto.TestResultResponse, error) {
	result, err := u.testResultRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to reload test result %s: %+v", id, err)
		return nil, err
	}
	if result == nil {
		return nil, ErrTestResultNotFound
	}
	return converter.TestResultToResponse(result), nil
}

func testResultEvent(actor entity.Actor, action string, result *entity.LaboratoryTestResult, appointment *entity.Appointment, inserted, updated int) service.LifecycleEvent {
	actorID := actor.UserID
	return service.LifecycleEvent{
		ActorID:      &actorID,
		Action:       action,
		TargetID:     result.ID,
		TargetName:   result.Title,
		TargetType:   entity.TargetTypeLaboratoryTestResult,
		TargetUserID: appointment.PatientID,
		Metadata: entity.JSON{
			"appointment": appointment.DisplayName(),
			"inserted":    inserted,
			"updated":     updated,
		},
	}
}
