package entity

import "github.com/google/uuid"

// DoctorProfile represents doctor-specific profile data. A user is a doctor
// that can be bound to appointments only when this row exists.
type DoctorProfile struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	STRNumber      string    `gorm:"column:str_number;type:varchar(50);uniqueIndex;not null" json:"str_number"`
	Specialization string    `gorm:"type:varchar(100);not null;index" json:"specialization"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// IsActive checks the doctor's account has not been disabled
func (d *DoctorProfile) IsActive() bool {
	return d.User.IsActive == nil || *d.User.IsActive
}
