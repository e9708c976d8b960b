package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingStatus represents the payment state of a billing
type BillingStatus string

const (
	BillingStatusInitial   BillingStatus = "initial"
	BillingStatusPaid      BillingStatus = "paid"
	BillingStatusInsurance BillingStatus = "insurance"
	BillingStatusCancelled BillingStatus = "cancelled"
)

var billingTransitions = map[BillingStatus][]BillingStatus{
	BillingStatusInitial: {BillingStatusPaid, BillingStatusInsurance, BillingStatusCancelled},
}

// CanTransitionBilling reports whether from -> to is a legal billing edge
func CanTransitionBilling(from, to BillingStatus) bool {
	for _, next := range billingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsSettlementMethod reports whether status can be chosen when completing an appointment
func IsSettlementMethod(status BillingStatus) bool {
	return status == BillingStatusPaid || status == BillingStatusInsurance
}

// Billing is the monetary record attached one-to-one to an appointment
type Billing struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Number    int64           `gorm:"autoIncrement;uniqueIndex;not null" json:"number"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status    BillingStatus   `gorm:"type:varchar(20);not null;default:'initial';index" json:"status"`
	Date      time.Time       `gorm:"not null" json:"date"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Appointment *Appointment `gorm:"foreignKey:BillingID" json:"appointment,omitempty"`
}

func (Billing) TableName() string {
	return "billings"
}

// IsOpen checks if billing has not been settled or cancelled yet
func (b *Billing) IsOpen() bool {
	return b.Status == BillingStatusInitial
}

// BillingFilter narrows billing exports
type BillingFilter struct {
	Status BillingStatus
	From   *time.Time
	To     *time.Time
}
