package usecase

import (
	"context"

	"go-clinic-management/internal/converter"
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = apperror.NotFound("notification not found")
)

type NotificationUsecase interface {
	List(ctx context.Context, actor entity.Actor, query *dto.ListNotificationsQuery) (*dto.NotificationListResponse, error)
	CountUnread(ctx context.Context, actor entity.Actor) (*dto.NotificationCountResponse, error)
	MarkRead(ctx context.Context, actor entity.Actor, id uuid.UUID) error
}

type notificationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
}

func NewNotificationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	notificationRepo repository.NotificationRepository,
) NotificationUsecase {
	return &notificationUsecase{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
	}
}

func (u *notificationUsecase) List(ctx context.Context, actor entity.Actor, query *dto.ListNotificationsQuery) (*dto.NotificationListResponse, error) {
	filter := &entity.NotificationFilter{
		UnreadOnly: query.Status == "unread",
		Ascending:  query.Sort == "date-asc",
		Page:       query.Page,
		Limit:      query.Limit,
	}

	notifications, total, err := u.notificationRepo.FindByUserID(u.db.WithContext(ctx), actor.UserID, filter)
	if err != nil {
		u.log.Warnf("Failed to list notifications of %s: %+v", actor.UserID, err)
		return nil, err
	}

	return &dto.NotificationListResponse{
		Notifications: converter.NotificationsToResponses(notifications),
		Page:          query.Page,
		Limit:         query.Limit,
		Total:         total,
	}, nil
}

func (u *notificationUsecase) CountUnread(ctx context.Context, actor entity.Actor) (*dto.NotificationCountResponse, error) {
	count, err := u.notificationRepo.CountUnread(u.db.WithContext(ctx), actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to count notifications of %s: %+v", actor.UserID, err)
		return nil, err
	}
	return &dto.NotificationCountResponse{Count: count}, nil
}

// MarkRead flags one of the caller's notifications as read. Someone else's
// notification looks the same as a missing one.
func (u *notificationUsecase) MarkRead(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	affected, err := u.notificationRepo.MarkRead(u.db.WithContext(ctx), id, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to mark notification %s read: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
