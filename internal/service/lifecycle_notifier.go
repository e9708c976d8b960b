package service

import (
	"context"
	"encoding/json"
	"time"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	NotificationChannelPrefix = "notifications:"

	publishTimeout = 5 * time.Second
)

// NotificationChannel is the Redis pub/sub channel a user's sockets listen on
func NotificationChannel(userID uuid.UUID) string {
	return NotificationChannelPrefix + userID.String()
}

// LifecycleEvent is one successful state change worth logging and telling the
// affected user about. ActorID is nil when the system acted.
type LifecycleEvent struct {
	ActorID      *uuid.UUID
	Action       string
	TargetID     uuid.UUID
	TargetName   string
	TargetType   string
	TargetUserID uuid.UUID
	Metadata     entity.JSON
}

// AppointmentEvent builds the event of an appointment transition
func AppointmentEvent(actorID *uuid.UUID, action string, appointment *entity.Appointment) LifecycleEvent {
	return LifecycleEvent{
		ActorID:      actorID,
		Action:       action,
		TargetID:     appointment.ID,
		TargetName:   appointment.DisplayName(),
		TargetType:   entity.TargetTypeAppointment,
		TargetUserID: appointment.PatientID,
		Metadata: entity.JSON{
			"number": appointment.Number,
			"status": appointment.Status,
		},
	}
}

type LifecycleNotifier interface {
	// Record writes an action log row per event and a notification for the
	// affected user inside tx. The returned notifications are meant for Publish
	// after tx commits.
	Record(tx *gorm.DB, events ...LifecycleEvent) ([]entity.Notification, error)
	// Publish pushes notifications to connected clients. Failures are logged only.
	Publish(ctx context.Context, notifications []entity.Notification)
}

type lifecycleNotifier struct {
	log              *logrus.Logger
	redisClient      *redis.Client
	auditRepo        repository.AuditLogRepository
	notificationRepo repository.NotificationRepository
}

func NewLifecycleNotifier(
	log *logrus.Logger,
	redisClient *redis.Client,
	auditRepo repository.AuditLogRepository,
	notificationRepo repository.NotificationRepository,
) LifecycleNotifier {
	return &lifecycleNotifier{
		log:              log,
		redisClient:      redisClient,
		auditRepo:        auditRepo,
		notificationRepo: notificationRepo,
	}
}

func (n *lifecycleNotifier) Record(tx *gorm.DB, events ...LifecycleEvent) ([]entity.Notification, error) {
	if len(events) == 0 {
		return nil, nil
	}

	logs := make([]entity.AuditLog, 0, len(events))
	var notifications []entity.Notification

	for _, ev := range events {
		targetID := ev.TargetID
		log := entity.AuditLog{
			UserID:     ev.ActorID,
			Action:     ev.Action,
			TargetID:   &targetID,
			TargetName: ev.TargetName,
			TargetType: ev.TargetType,
			Metadata:   ev.Metadata,
		}
		if ev.TargetUserID != uuid.Nil {
			targetUserID := ev.TargetUserID
			log.TargetUserID = &targetUserID
		}
		logs = append(logs, log)

		// Nobody is told about their own action
		if ev.TargetUserID == uuid.Nil || (ev.ActorID != nil && *ev.ActorID == ev.TargetUserID) {
			continue
		}
		notifications = append(notifications, entity.Notification{
			UserID:     ev.TargetUserID,
			ActorID:    ev.ActorID,
			TargetID:   ev.TargetID,
			TargetName: ev.TargetName,
			Type:       ev.TargetType,
			Action:     ev.Action,
		})
	}

	if err := n.auditRepo.CreateBatch(tx, logs); err != nil {
		n.log.Warnf("Failed to create audit logs: %+v", err)
		return nil, err
	}
	if err := n.notificationRepo.CreateBatch(tx, notifications); err != nil {
		n.log.Warnf("Failed to create notifications: %+v", err)
		return nil, err
	}

	return notifications, nil
}

func (n *lifecycleNotifier) Publish(ctx context.Context, notifications []entity.Notification) {
	if n.redisClient == nil || len(notifications) == 0 {
		return
	}

	// Detached so a finished request does not cut delivery short
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	pipe := n.redisClient.Pipeline()
	for i := range notifications {
		payload, err := json.Marshal(&notifications[i])
		if err != nil {
			n.log.Warnf("Failed to encode notification %s: %+v", notifications[i].ID, err)
			continue
		}
		pipe.Publish(pubCtx, NotificationChannel(notifications[i].UserID), payload)
	}

	if _, err := pipe.Exec(pubCtx); err != nil {
		n.log.Warnf("Failed to publish %d notifications: %+v", len(notifications), err)
		return
	}
	n.log.Debugf("Published %d notifications", len(notifications))
}
