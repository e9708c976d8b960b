package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockEmrUsecase struct {
	mock.Mock
}

var _ usecase.EmrUsecase = (*MockEmrUsecase)(nil)

func (m *MockEmrUsecase) result(args mock.Arguments) (*dto.EmrResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.EmrResponse), args.Error(1)
}

func (m *MockEmrUsecase) Get(ctx context.Context, actor entity.Actor, patientID uuid.UUID) (*dto.EmrResponse, error) {
	return m.result(m.Called(ctx, actor, patientID))
}

func (m *MockEmrUsecase) Create(ctx context.Context, actor entity.Actor, patientID uuid.UUID, req *dto.CreateEmrRequest) (*dto.EmrResponse, error) {
	return m.result(m.Called(ctx, actor, patientID, req))
}

func (m *MockEmrUsecase) Update(ctx context.Context, actor entity.Actor, patientID uuid.UUID, req *dto.UpdateEmrRequest) (*dto.EmrResponse, error) {
	return m.result(m.Called(ctx, actor, patientID, req))
}

var staffActor = entity.Actor{UserID: uuid.New(), Role: entity.RoleDoctor}

func TestUpdateEmr_MalformedChangeSet(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"nil id in deleted", `{"allergies":{"deleted":["00000000-0000-0000-0000-000000000000"]}}`},
		{"entry without lookup id", `{"medications":{"new":[{"dosage":"5mg"}]}}`},
		{"unknown blood type", `{"bloodType":"z_positive"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockEmrUsecase)
			h := NewEmrHandler(uc, validator.NewValidator())
			patientID := uuid.New()

			rec := httptest.NewRecorder()
			h.UpdateEmr(rec, newRequest(http.MethodPatch, "/", tt.body, &staffActor, map[string]string{"patientId": patientID.String()}))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, "Validation failed", decodeEnvelope(t, rec).Message)
			uc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateEmr_UnparsableBody(t *testing.T) {
	uc := new(MockEmrUsecase)
	h := NewEmrHandler(uc, validator.NewValidator())

	rec := httptest.NewRecorder()
	h.UpdateEmr(rec, newRequest(http.MethodPatch, "/", `{"allergies":`, &staffActor, map[string]string{"patientId": uuid.NewString()}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEmr_MalformedEntry(t *testing.T) {
	uc := new(MockEmrUsecase)
	h := NewEmrHandler(uc, validator.NewValidator())

	rec := httptest.NewRecorder()
	body := `{"allergies":[{"notes":"no allergy id"}]}`
	h.CreateEmr(rec, newRequest(http.MethodPost, "/", body, &staffActor, map[string]string{"patientId": uuid.NewString()}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	uc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateEmr_PassesPatch(t *testing.T) {
	uc := new(MockEmrUsecase)
	h := NewEmrHandler(uc, validator.NewValidator())
	patientID, removed := uuid.New(), uuid.New()

	uc.On("Update", mock.Anything, staffActor, patientID, mock.MatchedBy(func(req *dto.UpdateEmrRequest) bool {
		return req.Allergies != nil && len(req.Allergies.Deleted) == 1 && req.Allergies.Deleted[0] == removed
	})).Return(&dto.EmrResponse{}, nil)

	rec := httptest.NewRecorder()
	body := `{"allergies":{"deleted":["` + removed.String() + `"]}}`
	h.UpdateEmr(rec, newRequest(http.MethodPatch, "/", body, &staffActor, map[string]string{"patientId": patientID.String()}))

	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}
