package usecase

import (
	"context"
	"testing"
	"time"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/mocks"
	"go-clinic-management/internal/service"
	"go-clinic-management/pkg/metrics"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockEmrMergeEngine is a mock implementation of service.EmrMergeEngine
type MockEmrMergeEngine struct {
	mock.Mock
}

func (m *MockEmrMergeEngine) Merge(tx *gorm.DB, emr *entity.ElectronicMedicalRecord, patch *entity.EmrPatch, now time.Time) (*service.MergeSummary, error) {
	args := m.Called(tx, emr, patch, now)
	if v := args.Get(0); v != nil {
		return v.(*service.MergeSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

type emrFixture struct {
	sqlMock          sqlmock.Sqlmock
	emrRepo          *mocks.MockEmrRepository
	userRepo         *mocks.MockUserRepository
	auditRepo        *mocks.MockAuditLogRepository
	notificationRepo *mocks.MockNotificationRepository
	merger           *MockEmrMergeEngine
	usecase          EmrUsecase
}

func newEmrFixture(t *testing.T) *emrFixture {
	db, sqlMock := newMockDB(t)
	f := &emrFixture{
		sqlMock:          sqlMock,
		emrRepo:          new(mocks.MockEmrRepository),
		userRepo:         new(mocks.MockUserRepository),
		auditRepo:        new(mocks.MockAuditLogRepository),
		notificationRepo: new(mocks.MockNotificationRepository),
		merger:           new(MockEmrMergeEngine),
	}

	log := testLogger()
	f.usecase = NewEmrUsecase(
		db,
		log,
		func() time.Time { return clinicNow },
		f.emrRepo,
		f.userRepo,
		f.merger,
		service.NewLifecycleNotifier(log, nil, f.auditRepo, f.notificationRepo),
		metrics.NewMetricsCollector("test", prometheus.NewRegistry()),
	)
	return f
}

var doctorActor = entity.Actor{UserID: uuid.New(), Role: entity.RoleDoctor}

func TestGetEmr(t *testing.T) {
	patientID := uuid.New()

	t.Run("patient reads own record", func(t *testing.T) {
		f := newEmrFixture(t)
		f.emrRepo.On("FindDetailByPatientID", mock.Anything, patientID).
			Return(&entity.ElectronicMedicalRecord{ID: uuid.New(), PatientID: patientID}, nil)

		resp, err := f.usecase.Get(context.Background(), entity.Actor{UserID: patientID, Role: entity.RolePatient}, patientID)

		require.NoError(t, err)
		assert.Equal(t, patientID, resp.PatientID)
	})

	t.Run("patient cannot read another record", func(t *testing.T) {
		f := newEmrFixture(t)

		_, err := f.usecase.Get(context.Background(), strangerActor, patientID)

		assert.ErrorIs(t, err, ErrEmrNotOwned)
		f.emrRepo.AssertNotCalled(t, "FindDetailByPatientID", mock.Anything, mock.Anything)
	})

	t.Run("missing", func(t *testing.T) {
		f := newEmrFixture(t)
		f.emrRepo.On("FindDetailByPatientID", mock.Anything, patientID).Return(nil, nil)

		_, err := f.usecase.Get(context.Background(), doctorActor, patientID)

		assert.ErrorIs(t, err, ErrEmrNotFound)
	})
}

func TestCreateEmr(t *testing.T) {
	patient := &entity.User{ID: uuid.New(), FullName: "Rina Wijaya", RoleID: entity.RoleIDPatient}
	allergyID := uuid.New()
	height := 165.0
	req := &dto.CreateEmrRequest{
		Height:    &height,
		Allergies: []dto.AllergyEntryRequest{{AllergyID: allergyID, Reaction: "hives"}},
	}

	t.Run("seeds entries through the merge engine", func(t *testing.T) {
		f := newEmrFixture(t)
		emrID := uuid.New()

		f.sqlMock.ExpectBegin()
		f.userRepo.On("FindByID", mock.Anything, patient.ID).Return(patient, nil)
		f.emrRepo.On("FindByPatientID", mock.Anything, patient.ID).Return(nil, nil)
		f.emrRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *entity.ElectronicMedicalRecord) bool {
			return e.PatientID == patient.ID && *e.Height == height
		})).
			Run(func(args mock.Arguments) { args.Get(1).(*entity.ElectronicMedicalRecord).ID = emrID }).
			Return(nil)
		f.merger.On("Merge", mock.Anything, mock.Anything, mock.MatchedBy(func(p *entity.EmrPatch) bool {
			return len(p.Allergies) == 1 &&
				p.Allergies[0].Kind == entity.EmrChangeInsert &&
				p.Allergies[0].LookupID == allergyID
		}), clinicNow).Return(&service.MergeSummary{
			Collections: map[string]service.MergeCounts{service.CollectionAllergies: {Inserted: 1}},
		}, nil)
		f.auditRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(logs []entity.AuditLog) bool {
			return len(logs) == 1 && logs[0].Action == entity.AuditActionEmrCreate && logs[0].TargetName == "Medical record of Rina Wijaya"
		})).Return(nil)
		f.notificationRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(n []entity.Notification) bool {
			return len(n) == 1 && n[0].UserID == patient.ID
		})).Return(nil)
		f.sqlMock.ExpectCommit()
		f.emrRepo.On("FindDetailByPatientID", mock.Anything, patient.ID).
			Return(&entity.ElectronicMedicalRecord{ID: emrID, PatientID: patient.ID, Height: &height}, nil)

		resp, err := f.usecase.Create(context.Background(), doctorActor, patient.ID, req)

		require.NoError(t, err)
		assert.Equal(t, emrID, resp.ID)
		f.merger.AssertExpectations(t)
		f.auditRepo.AssertExpectations(t)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("already exists", func(t *testing.T) {
		f := newEmrFixture(t)

		f.sqlMock.ExpectBegin()
		f.userRepo.On("FindByID", mock.Anything, patient.ID).Return(patient, nil)
		f.emrRepo.On("FindByPatientID", mock.Anything, patient.ID).Return(&entity.ElectronicMedicalRecord{ID: uuid.New()}, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Create(context.Background(), doctorActor, patient.ID, req)

		assert.ErrorIs(t, err, ErrEmrExists)
		f.emrRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("concurrent create", func(t *testing.T) {
		f := newEmrFixture(t)

		f.sqlMock.ExpectBegin()
		f.userRepo.On("FindByID", mock.Anything, patient.ID).Return(patient, nil)
		f.emrRepo.On("FindByPatientID", mock.Anything, patient.ID).Return(nil, nil)
		f.emrRepo.On("Create", mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23505"})
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Create(context.Background(), doctorActor, patient.ID, req)

		assert.ErrorIs(t, err, ErrEmrExists)
		f.merger.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("user is not a patient", func(t *testing.T) {
		f := newEmrFixture(t)
		doctorUser := &entity.User{ID: uuid.New(), RoleID: entity.RoleIDDoctor}

		f.sqlMock.ExpectBegin()
		f.userRepo.On("FindByID", mock.Anything, doctorUser.ID).Return(doctorUser, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Create(context.Background(), adminActor, doctorUser.ID, req)

		assert.ErrorIs(t, err, ErrPatientNotFound)
	})

	t.Run("patients cannot create records", func(t *testing.T) {
		f := newEmrFixture(t)

		_, err := f.usecase.Create(context.Background(), entity.Actor{UserID: patient.ID, Role: entity.RolePatient}, patient.ID, req)

		assert.ErrorIs(t, err, ErrActionNotAllowed)
	})
}

func TestUpdateEmr(t *testing.T) {
	patientID := uuid.New()
	emr := &entity.ElectronicMedicalRecord{ID: uuid.New(), PatientID: patientID}
	deletedAllergy, updatedAllergy := uuid.New(), uuid.New()
	req := &dto.UpdateEmrRequest{
		Allergies: &dto.ChangeSet[dto.AllergyEntryRequest]{
			Deleted: []uuid.UUID{deletedAllergy},
			Updated: []dto.AllergyEntryRequest{{AllergyID: updatedAllergy, Notes: "mild"}},
		},
	}

	t.Run("merges and logs", func(t *testing.T) {
		f := newEmrFixture(t)

		f.sqlMock.ExpectBegin()
		f.emrRepo.On("FindByPatientID", mock.Anything, patientID).Return(emr, nil)
		f.merger.On("Merge", mock.Anything, emr, mock.MatchedBy(func(p *entity.EmrPatch) bool {
			kinds := map[entity.EmrChangeKind]uuid.UUID{}
			for _, c := range p.Allergies {
				kinds[c.Kind] = c.LookupID
			}
			return len(p.Allergies) == 2 &&
				kinds[entity.EmrChangeDelete] == deletedAllergy &&
				kinds[entity.EmrChangeUpdate] == updatedAllergy
		}), clinicNow).Return(&service.MergeSummary{
			Collections: map[string]service.MergeCounts{service.CollectionAllergies: {Deleted: 1, Updated: 1}},
		}, nil)
		f.auditRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(logs []entity.AuditLog) bool {
			return len(logs) == 1 && logs[0].Action == entity.AuditActionEmrUpdate && logs[0].Metadata["collections"] != nil
		})).Return(nil)
		f.notificationRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
		f.sqlMock.ExpectCommit()
		f.emrRepo.On("FindDetailByPatientID", mock.Anything, patientID).Return(emr, nil)

		resp, err := f.usecase.Update(context.Background(), doctorActor, patientID, req)

		require.NoError(t, err)
		assert.Equal(t, emr.ID, resp.ID)
		f.merger.AssertExpectations(t)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejected patch rolls back", func(t *testing.T) {
		f := newEmrFixture(t)

		f.sqlMock.ExpectBegin()
		f.emrRepo.On("FindByPatientID", mock.Anything, patientID).Return(emr, nil)
		f.merger.On("Merge", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, service.ErrEmrEntryNotFound)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Update(context.Background(), doctorActor, patientID, req)

		assert.ErrorIs(t, err, service.ErrEmrEntryNotFound)
		f.auditRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("no record", func(t *testing.T) {
		f := newEmrFixture(t)

		f.sqlMock.ExpectBegin()
		f.emrRepo.On("FindByPatientID", mock.Anything, patientID).Return(nil, nil)
		f.sqlMock.ExpectRollback()

		_, err := f.usecase.Update(context.Background(), adminActor, patientID, req)

		assert.ErrorIs(t, err, ErrEmrNotFound)
	})
}
