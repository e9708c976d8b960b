package repository

import (
	"go-clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *entity.Notification) error
	CreateBatch(db *gorm.DB, notifications []entity.Notification) error
	FindByUserID(db *gorm.DB, userID uuid.UUID, filter *entity.NotificationFilter) ([]entity.Notification, int64, error)
	CountUnread(db *gorm.DB, userID uuid.UUID) (int64, error)
	MarkRead(db *gorm.DB, id, userID uuid.UUID) (int64, error)
}
