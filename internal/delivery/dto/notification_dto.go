package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListNotificationsQuery struct {
	Status string `validate:"omitempty,oneof=all unread"`
	Sort   string `validate:"omitempty,oneof=date-desc date-asc"`
	Page   int    `validate:"gte=1"`
	Limit  int    `validate:"gte=1,lte=100"`
}

type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    *uuid.UUID `json:"actorId,omitempty"`
	TargetID   uuid.UUID  `json:"targetId"`
	TargetName string     `json:"targetName"`
	Type       string     `json:"type"`
	Action     string     `json:"action"`
	IsRead     bool       `json:"isRead"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Page          int                    `json:"-"`
	Limit         int                    `json:"-"`
	Total         int64                  `json:"-"`
}

type NotificationCountResponse struct {
	Count int64 `json:"count"`
}
