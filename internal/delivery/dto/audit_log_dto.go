package dto

import (
	"time"

	"go-clinic-management/internal/domain/entity"

	"github.com/google/uuid"
)

type ListAuditLogsQuery struct {
	Action     string `validate:"max=100"`
	TargetType string `validate:"omitempty,oneof=appointments emr laboratory-test-results"`
	TargetID   *uuid.UUID
	Page       int `validate:"gte=1"`
	Limit      int `validate:"gte=1,lte=100"`
}

// Response DTOs

type AuditLogResponse struct {
	ID           int64        `json:"id"`
	User         *UserSummary `json:"user,omitempty"`
	Role         string       `json:"role,omitempty"`
	Action       string       `json:"action"`
	TargetID     *uuid.UUID   `json:"targetId,omitempty"`
	TargetName   string       `json:"targetName,omitempty"`
	TargetType   string       `json:"targetType,omitempty"`
	TargetUserID *uuid.UUID   `json:"targetUserId,omitempty"`
	Metadata     entity.JSON  `json:"metadata,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Page  int                `json:"-"`
	Limit int                `json:"-"`
	Total int64              `json:"-"`
}
