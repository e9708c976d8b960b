// Package mocks holds testify mocks of the domain repositories.
package mocks

import (
	"time"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

var (
	_ repository.AppointmentRepository         = (*MockAppointmentRepository)(nil)
	_ repository.AppointmentServicesRepository = (*MockAppointmentServicesRepository)(nil)
	_ repository.AuditLogRepository            = (*MockAuditLogRepository)(nil)
	_ repository.BillingRepository             = (*MockBillingRepository)(nil)
	_ repository.CatalogRepository             = (*MockCatalogRepository)(nil)
	_ repository.DoctorProfileRepository       = (*MockDoctorProfileRepository)(nil)
	_ repository.EmrRepository                 = (*MockEmrRepository)(nil)
	_ repository.NotificationRepository        = (*MockNotificationRepository)(nil)
	_ repository.TestResultRepository          = (*MockTestResultRepository)(nil)
	_ repository.UserRepository                = (*MockUserRepository)(nil)

	_ repository.EmrEntryRepository[entity.PatientAllergy] = (*MockEmrEntryRepository[entity.PatientAllergy])(nil)
)

// ptr returns the typed value of a mock argument that may be an untyped nil
func ptr[T any](v interface{}) *T {
	if v == nil {
		return nil
	}
	return v.(*T)
}

func slice[T any](v interface{}) []T {
	if v == nil {
		return nil
	}
	return v.([]T)
}

// MockAppointmentRepository is a mock implementation of AppointmentRepository
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	args := m.Called(db, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	args := m.Called(db, id)
	return ptr[entity.Appointment](args.Get(0)), args.Error(1)
}

func (m *MockAppointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	args := m.Called(db, filter)
	return slice[entity.Appointment](args.Get(0)), args.Get(1).(int64), args.Error(2)
}

func (m *MockAppointmentRepository) TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, doctorID *uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(db, id, from, to, doctorID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAppointmentRepository) CancelExpired(db *gorm.DB, cutoff, now time.Time) ([]entity.Appointment, error) {
	args := m.Called(db, cutoff, now)
	return slice[entity.Appointment](args.Get(0)), args.Error(1)
}

// MockAppointmentServicesRepository is a mock implementation of AppointmentServicesRepository
type MockAppointmentServicesRepository struct {
	mock.Mock
}

func (m *MockAppointmentServicesRepository) Create(db *gorm.DB, services *entity.AppointmentServices) error {
	args := m.Called(db, services)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	args := m.Called(db, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) CreateBatch(db *gorm.DB, logs []entity.AuditLog) error {
	args := m.Called(db, logs)
	return args.Error(0)
}

func (m *MockAuditLogRepository) FindAll(db *gorm.DB, filter *entity.AuditLogFilter) ([]entity.AuditLog, int64, error) {
	args := m.Called(db, filter)
	return slice[entity.AuditLog](args.Get(0)), args.Get(1).(int64), args.Error(2)
}

func (m *MockAuditLogRepository) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	args := m.Called(db, id)
	return ptr[entity.AuditLog](args.Get(0)), args.Error(1)
}

// MockBillingRepository is a mock implementation of BillingRepository
type MockBillingRepository struct {
	mock.Mock
}

func (m *MockBillingRepository) Create(db *gorm.DB, billing *entity.Billing) error {
	args := m.Called(db, billing)
	return args.Error(0)
}

func (m *MockBillingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Billing, error) {
	args := m.Called(db, id)
	return ptr[entity.Billing](args.Get(0)), args.Error(1)
}

func (m *MockBillingRepository) TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.BillingStatus, now time.Time) (int64, error) {
	args := m.Called(db, id, from, to, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillingRepository) CancelOpenByIDs(db *gorm.DB, ids []uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(db, ids, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillingRepository) FindForExport(db *gorm.DB, filter *entity.BillingFilter) ([]entity.Billing, error) {
	args := m.Called(db, filter)
	return slice[entity.Billing](args.Get(0)), args.Error(1)
}

// MockCatalogRepository is a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) FindServiceByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error) {
	args := m.Called(db, id)
	return ptr[entity.Service](args.Get(0)), args.Error(1)
}

func (m *MockCatalogRepository) FindTherapyByID(db *gorm.DB, id uuid.UUID) (*entity.Therapy, error) {
	args := m.Called(db, id)
	return ptr[entity.Therapy](args.Get(0)), args.Error(1)
}

func (m *MockCatalogRepository) FindModalitiesByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.Modality, error) {
	args := m.Called(db, ids)
	return slice[entity.Modality](args.Get(0)), args.Error(1)
}

func (m *MockCatalogRepository) FindLaboratoryTestsByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.LaboratoryTest, error) {
	args := m.Called(db, ids)
	return slice[entity.LaboratoryTest](args.Get(0)), args.Error(1)
}

func (m *MockCatalogRepository) FindLaboratoryTestByID(db *gorm.DB, id uuid.UUID) (*entity.LaboratoryTest, error) {
	args := m.Called(db, id)
	return ptr[entity.LaboratoryTest](args.Get(0)), args.Error(1)
}

func (m *MockCatalogRepository) FindMissingIDs(db *gorm.DB, model interface{}, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(db, model, ids)
	return slice[uuid.UUID](args.Get(0)), args.Error(1)
}

// MockDoctorProfileRepository is a mock implementation of DoctorProfileRepository
type MockDoctorProfileRepository struct {
	mock.Mock
}

func (m *MockDoctorProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	args := m.Called(db, userID)
	return ptr[entity.DoctorProfile](args.Get(0)), args.Error(1)
}

// MockEmrRepository is a mock implementation of EmrRepository
type MockEmrRepository struct {
	mock.Mock
}

func (m *MockEmrRepository) Create(db *gorm.DB, emr *entity.ElectronicMedicalRecord) error {
	args := m.Called(db, emr)
	return args.Error(0)
}

func (m *MockEmrRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.ElectronicMedicalRecord, error) {
	args := m.Called(db, patientID)
	return ptr[entity.ElectronicMedicalRecord](args.Get(0)), args.Error(1)
}

func (m *MockEmrRepository) FindDetailByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.ElectronicMedicalRecord, error) {
	args := m.Called(db, patientID)
	return ptr[entity.ElectronicMedicalRecord](args.Get(0)), args.Error(1)
}

func (m *MockEmrRepository) UpdateFields(db *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(db, id, updates)
	return args.Error(0)
}

func (m *MockEmrRepository) FindInsuranceByEmrID(db *gorm.DB, emrID uuid.UUID) (*entity.Insurance, error) {
	args := m.Called(db, emrID)
	return ptr[entity.Insurance](args.Get(0)), args.Error(1)
}

func (m *MockEmrRepository) UpsertInsurance(db *gorm.DB, insurance *entity.Insurance) error {
	args := m.Called(db, insurance)
	return args.Error(0)
}

// MockEmrEntryRepository is a mock implementation of EmrEntryRepository for any collection
type MockEmrEntryRepository[E any] struct {
	mock.Mock
}

func (m *MockEmrEntryRepository[E]) FindActiveByEmrID(db *gorm.DB, emrID uuid.UUID) ([]E, error) {
	args := m.Called(db, emrID)
	return slice[E](args.Get(0)), args.Error(1)
}

func (m *MockEmrEntryRepository[E]) CreateBatch(db *gorm.DB, entries []E) error {
	args := m.Called(db, entries)
	return args.Error(0)
}

func (m *MockEmrEntryRepository[E]) Update(db *gorm.DB, entry *E) error {
	args := m.Called(db, entry)
	return args.Error(0)
}

func (m *MockEmrEntryRepository[E]) SoftDeleteByIDs(db *gorm.DB, ids []uuid.UUID) error {
	args := m.Called(db, ids)
	return args.Error(0)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(db *gorm.DB, notification *entity.Notification) error {
	args := m.Called(db, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) CreateBatch(db *gorm.DB, notifications []entity.Notification) error {
	args := m.Called(db, notifications)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindByUserID(db *gorm.DB, userID uuid.UUID, filter *entity.NotificationFilter) ([]entity.Notification, int64, error) {
	args := m.Called(db, userID, filter)
	return slice[entity.Notification](args.Get(0)), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(db *gorm.DB, userID uuid.UUID) (int64, error) {
	args := m.Called(db, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(db *gorm.DB, id, userID uuid.UUID) (int64, error) {
	args := m.Called(db, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTestResultRepository is a mock implementation of TestResultRepository
type MockTestResultRepository struct {
	mock.Mock
}

func (m *MockTestResultRepository) Create(db *gorm.DB, result *entity.LaboratoryTestResult) error {
	args := m.Called(db, result)
	return args.Error(0)
}

func (m *MockTestResultRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.LaboratoryTestResult, error) {
	args := m.Called(db, id)
	return ptr[entity.LaboratoryTestResult](args.Get(0)), args.Error(1)
}

func (m *MockTestResultRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) ([]entity.LaboratoryTestResult, error) {
	args := m.Called(db, appointmentID)
	return slice[entity.LaboratoryTestResult](args.Get(0)), args.Error(1)
}

func (m *MockTestResultRepository) UpdateFields(db *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(db, id, updates)
	return args.Error(0)
}

func (m *MockTestResultRepository) CreateValues(db *gorm.DB, values []entity.BiomarkerValue) error {
	args := m.Called(db, values)
	return args.Error(0)
}

func (m *MockTestResultRepository) UpdateValue(db *gorm.DB, value *entity.BiomarkerValue) error {
	args := m.Called(db, value)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	args := m.Called(db, id)
	return ptr[entity.User](args.Get(0)), args.Error(1)
}
