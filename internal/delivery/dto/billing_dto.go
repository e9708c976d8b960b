package dto

import "time"

type BillingExportQuery struct {
	Status string `validate:"omitempty,oneof=initial paid insurance cancelled"`
	From   *time.Time
	To     *time.Time
}
