package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
)

func NotificationsToResponses(notifications []entity.Notification) []dto.NotificationResponse {
	responses := make([]dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = dto.NotificationResponse{
			ID:         n.ID,
			ActorID:    n.ActorID,
			TargetID:   n.TargetID,
			TargetName: n.TargetName,
			Type:       n.Type,
			Action:     n.Action,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		}
	}
	return responses
}
