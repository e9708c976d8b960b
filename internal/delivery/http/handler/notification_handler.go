package handler

import (
	"net/http"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"
)

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
	validator           *validator.CustomValidator
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase, validator *validator.CustomValidator) *NotificationHandler {
	return &NotificationHandler{
		notificationUsecase: notificationUsecase,
		validator:           validator,
	}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	page, limit := pagination(r)
	query := dto.ListNotificationsQuery{
		Status: r.URL.Query().Get("status"),
		Sort:   r.URL.Query().Get("sort"),
		Page:   page,
		Limit:  limit,
	}
	if !validate(w, h.validator, &query) {
		return
	}

	result, err := h.notificationUsecase.List(r.Context(), actor, &query)
	if err != nil {
		response.AppError(w, err, "Failed to get notifications")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Notifications retrieved successfully", result.Notifications, response.NewMeta(result.Page, result.Limit, result.Total))
}

func (h *NotificationHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	count, err := h.notificationUsecase.CountUnread(r.Context(), actor)
	if err != nil {
		response.AppError(w, err, "Failed to count notifications")
		return
	}

	response.Success(w, http.StatusOK, "Unread notifications counted", count)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationUsecase.MarkRead(r.Context(), actor, id); err != nil {
		response.AppError(w, err, "Failed to mark notification as read")
		return
	}

	response.Success(w, http.StatusOK, "Notification marked as read", nil)
}
