package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecord_NotifiesAffectedUser(t *testing.T) {
	adminID := uuid.New()
	appointment := &entity.Appointment{ID: uuid.New(), Number: 7, PatientID: uuid.New(), Status: entity.AppointmentStatusApproved}

	auditRepo := new(mocks.MockAuditLogRepository)
	notificationRepo := new(mocks.MockNotificationRepository)
	auditRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(logs []entity.AuditLog) bool {
		return len(logs) == 1 &&
			logs[0].Action == "appointment.approve" &&
			*logs[0].UserID == adminID &&
			*logs[0].TargetUserID == appointment.PatientID &&
			logs[0].TargetName == "Appointment #7"
	})).Return(nil)
	notificationRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(n []entity.Notification) bool {
		return len(n) == 1 && n[0].UserID == appointment.PatientID && n[0].Type == entity.TargetTypeAppointment
	})).Return(nil)

	notifier := NewLifecycleNotifier(testLogger(), nil, auditRepo, notificationRepo)
	notifications, err := notifier.Record(nil, AppointmentEvent(&adminID, "appointment.approve", appointment))

	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "appointment.approve", notifications[0].Action)
	auditRepo.AssertExpectations(t)
	notificationRepo.AssertExpectations(t)
}

func TestRecord_SkipsSelfAndSystemWithoutTarget(t *testing.T) {
	patientID := uuid.New()
	appointment := &entity.Appointment{ID: uuid.New(), Number: 8, PatientID: patientID}

	auditRepo := new(mocks.MockAuditLogRepository)
	notificationRepo := new(mocks.MockNotificationRepository)
	auditRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(logs []entity.AuditLog) bool {
		return len(logs) == 2 && logs[1].UserID == nil && logs[1].TargetUserID == nil
	})).Return(nil)
	notificationRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(n []entity.Notification) bool {
		return len(n) == 0
	})).Return(nil)

	notifier := NewLifecycleNotifier(testLogger(), nil, auditRepo, notificationRepo)
	notifications, err := notifier.Record(nil,
		AppointmentEvent(&patientID, "appointment.cancel", appointment),
		LifecycleEvent{Action: "maintenance", TargetID: uuid.New(), TargetName: "sweep", TargetType: entity.TargetTypeAppointment},
	)

	require.NoError(t, err)
	assert.Empty(t, notifications)
	auditRepo.AssertExpectations(t)
}

func TestRecord_NoEvents(t *testing.T) {
	auditRepo := new(mocks.MockAuditLogRepository)

	notifications, err := NewLifecycleNotifier(testLogger(), nil, auditRepo, nil).Record(nil)

	require.NoError(t, err)
	assert.Nil(t, notifications)
	auditRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestPublish_DeliversToUserChannel(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	userID := uuid.New()
	sub := rdb.Subscribe(ctx, NotificationChannel(userID))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	notifier := NewLifecycleNotifier(testLogger(), rdb, nil, nil)
	notifier.Publish(ctx, []entity.Notification{{
		ID:         uuid.New(),
		UserID:     userID,
		TargetID:   uuid.New(),
		TargetName: "Appointment #3",
		Type:       entity.TargetTypeAppointment,
		Action:     "appointment.reject",
	}})

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "notifications:"+userID.String(), msg.Channel)
		var got entity.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "appointment.reject", got.Action)
		assert.Equal(t, userID, got.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}
}

func TestPublish_RedisDownIsNotFatal(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s.Close()

	notifier := NewLifecycleNotifier(testLogger(), rdb, nil, nil)

	assert.NotPanics(t, func() {
		notifier.Publish(context.Background(), []entity.Notification{{UserID: uuid.New()}})
	})
}
