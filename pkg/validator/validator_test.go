package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completeRequest struct {
	BillingStatus string `json:"billingStatus" validate:"required,oneof=paid insurance"`
}

type entryRequest struct {
	Notes string `json:"notes" validate:"max=5"`
}

type patchRequest struct {
	Height  *float64       `json:"height" validate:"omitempty,gte=0"`
	Entries []entryRequest `json:"entries" validate:"dive"`
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&completeRequest{BillingStatus: "cash"})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Equal(t, "billingStatus must be one of: paid insurance", errs["billingStatus"])
}

func TestFormatValidationErrors_NestedField(t *testing.T) {
	v := NewValidator()
	height := -1.0

	err := v.Validate(&patchRequest{
		Height:  &height,
		Entries: []entryRequest{{Notes: "ok"}, {Notes: "too long"}},
	})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Contains(t, errs, "height")
	assert.Contains(t, errs, "entries[1].notes")
}

func TestValidate_Valid(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&completeRequest{BillingStatus: "insurance"}))
}
