package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go-clinic-management/internal/converter"
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/infrastructure/database"
	"go-clinic-management/internal/service"
	"go-clinic-management/pkg/apperror"
	"go-clinic-management/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrEmrNotFound     = apperror.NotFound("medical record not found")
	ErrEmrExists       = apperror.Conflict("patient already has a medical record")
	ErrEmrNotOwned     = apperror.Forbidden("medical record does not belong to you")
	ErrPatientNotFound = apperror.NotFound("patient not found")
)

type EmrUsecase interface {
	Get(ctx context.Context, actor entity.Actor, patientID uuid.UUID) (*dto.EmrResponse, error)
	Create(ctx context.Context, actor entity.Actor, patientID uuid.UUID, req *dto.CreateEmrRequest) (*dto.EmrResponse, error)
	Update(ctx context.Context, actor entity.Actor, patientID uuid.UUID, req *dto.UpdateEmrRequest) (*dto.EmrResponse, error)
}

type emrUsecase struct {
	db       *gorm.DB
	log      *logrus.Logger
	now      func() time.Time
	emrRepo  repository.EmrRepository
	userRepo repository.UserRepository
	merger   service.EmrMergeEngine
	notifier service.LifecycleNotifier
	metrics  *metrics.MetricsCollector
}

func NewEmrUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	now func() time.Time,
	emrRepo repository.EmrRepository,
	userRepo repository.UserRepository,
	merger service.EmrMergeEngine,
	notifier service.LifecycleNotifier,
	metrics *metrics.MetricsCollector,
) EmrUsecase {
	return &emrUsecase{
		db:       db,
		log:      log,
		now:      now,
		emrRepo:  emrRepo,
		userRepo: userRepo,
		merger:   merger,
		notifier: notifier,
		metrics:  metrics,
	}
}

func (u *emrUsecase) Get(ctx context.Context, actor entity.Actor, patientID uuid.UUID) (*dto.EmrResponse, error) {
	if !actor.Can(entity.CapabilityViewAllEmr) && actor.UserID != patientID {
		return nil, ErrEmrNotOwned
	}

	emr, err := u.emrRepo.FindDetailByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find emr of patient %s: %+v", patientID, err)
		return nil, err
	}
	if emr == nil {
		return nil, ErrEmrNotFound
	}

	return converter.EmrToResponse(emr), nil
}

// Create opens the medical record of a patient. The seeded insurance and
// entries go through the merge engine as inserts.
func (u *emrUsecase) Create(ctx context.Context, actor entity.Actor, patientID uuid.UUID, req *dto.CreateEmrRequest) (*dto.EmrResponse, error) {
	if !actor.Can(entity.CapabilityEditEmr) {
		return nil, ErrActionNotAllowed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.userRepo.FindByID(tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil || !patient.IsPatient() {
		return nil, ErrPatientNotFound
	}

	existing, err := u.emrRepo.FindByPatientID(tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find emr of patient %s: %+v", patientID, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmrExists
	}

	emr, patch := converter.EmrFromCreateRequest(req)
	emr.PatientID = patientID
	if err := u.emrRepo.Create(tx, emr); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmrExists
		}
		u.log.Warnf("Failed to create emr: %+v", err)
		return nil, err
	}

	summary, err := u.merger.Merge(tx, emr, patch, u.now())
	u.metrics.RecordEmrMerge(err)
	if err != nil {
		return nil, err
	}

	notifications, err := u.notifier.Record(tx, emrEvent(actor, entity.AuditActionEmrCreate, emr, patient, summary))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit emr: %+v", err)
		return nil, err
	}

	u.recordEntries(summary)
	u.notifier.Publish(ctx, notifications)
	u.log.Infof("EMR created for patient %s", patientID)

	return u.load(ctx, patientID)
}

// Update applies a {deleted, new, updated} patch to the patient's record.
// Either the whole patch lands or nothing does.
func (u *emrUsecase) Update(ctx context.Context, actor entity.Actor, patientID uuid.UUID, req *dto.UpdateEmrRequest) (*dto.EmrResponse, error) {
	if !actor.Can(entity.CapabilityEditEmr) {
		return nil, ErrActionNotAllowed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	emr, err := u.emrRepo.FindByPatientID(tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find emr of patient %s: %+v", patientID, err)
		return nil, err
	}
	if emr == nil {
		return nil, ErrEmrNotFound
	}

	summary, err := u.merger.Merge(tx, emr, converter.EmrPatchFromRequest(req), u.now())
	u.metrics.RecordEmrMerge(err)
	if err != nil {
		return nil, err
	}

	notifications, err := u.notifier.Record(tx, emrEvent(actor, entity.AuditActionEmrUpdate, emr, nil, summary))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit emr merge: %+v", err)
		return nil, fmt.Errorf("commit emr merge: %w", err)
	}

	u.recordEntries(summary)
	u.notifier.Publish(ctx, notifications)
	u.log.WithFields(logrus.Fields{
		"patient_id": patientID,
		"scalars":    summary.ScalarFields,
		"insurance":  summary.InsuranceChanged,
		"entries":    summary.Collections,
	}).Info("EMR merged")

	return u.load(ctx, patientID)
}

func (u *emrUsecase) load(ctx context.Context, patientID uuid.UUID) (*dto.EmrResponse, error) {
	emr, err := u.emrRepo.FindDetailByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to reload emr of patient %s: %+v", patientID, err)
		return nil, err
	}
	if emr == nil {
		return nil, ErrEmrNotFound
	}
	return converter.EmrToResponse(emr), nil
}

func (u *emrUsecase) recordEntries(summary *service.MergeSummary) {
	collections := make([]string, 0, len(summary.Collections))
	for name := range summary.Collections {
		collections = append(collections, name)
	}
	sort.Strings(collections)

	for _, name := range collections {
		counts := summary.Collections[name]
		u.metrics.RecordEmrEntries(name, "delete", counts.Deleted)
		u.metrics.RecordEmrEntries(name, "insert", counts.Inserted)
		u.metrics.RecordEmrEntries(name, "update", counts.Updated)
	}
}

func emrEvent(actor entity.Actor, action string, emr *entity.ElectronicMedicalRecord, patient *entity.User, summary *service.MergeSummary) service.LifecycleEvent {
	name := "Medical record"
	if patient != nil {
		name = "Medical record of " + patient.FullName
	}

	actorID := actor.UserID
	metadata := entity.JSON{"insuranceChanged": summary.InsuranceChanged}
	if len(summary.ScalarFields) > 0 {
		metadata["fields"] = summary.ScalarFields
	}
	if len(summary.Collections) > 0 {
		collections := make(map[string]interface{}, len(summary.Collections))
		for name, counts := range summary.Collections {
			collections[name] = counts
		}
		metadata["collections"] = collections
	}

	return service.LifecycleEvent{
		ActorID:      &actorID,
		Action:       action,
		TargetID:     emr.ID,
		TargetName:   name,
		TargetType:   entity.TargetTypeEmr,
		TargetUserID: emr.PatientID,
		Metadata:     metadata,
	}
}
