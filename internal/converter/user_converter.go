package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
)

// UserToSummary converts a User entity to the short form embedded in other responses
func UserToSummary(user *entity.User) *dto.UserSummary {
	if user == nil {
		return nil
	}

	return &dto.UserSummary{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}
}
