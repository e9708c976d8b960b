package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
)

// AuditLogToResponse converts a AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	response := &dto.AuditLogResponse{
		ID:           log.ID,
		User:         UserToSummary(log.User),
		Action:       log.Action,
		TargetID:     log.TargetID,
		TargetName:   log.TargetName,
		TargetType:   log.TargetType,
		TargetUserID: log.TargetUserID,
		Metadata:     log.Metadata,
		CreatedAt:    log.CreatedAt,
	}
	if log.User != nil {
		response.Role = log.User.Role.RoleName
	}

	return response
}

// AuditLogsToResponses converts a slice of AuditLog entities to slice of AuditLogResponse DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}
