package handler

import (
	"fmt"
	"net/http"
	"time"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BillingHandler struct {
	billingExportUsecase usecase.BillingExportUsecase
	validator            *validator.CustomValidator
	now                  func() time.Time
}

func NewBillingHandler(billingExportUsecase usecase.BillingExportUsecase, validator *validator.CustomValidator, now func() time.Time) *BillingHandler {
	return &BillingHandler{
		billingExportUsecase: billingExportUsecase,
		validator:            validator,
		now:                  now,
	}
}

// ExportBillings streams an xlsx of billings filtered by ?status=&from=&to= (YYYY-MM-DD)
func (h *BillingHandler) ExportBillings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	query := dto.BillingExportQuery{Status: r.URL.Query().Get("status")}
	for param, dst := range map[string]**time.Time{"from": &query.From, "to": &query.To} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s date, expected YYYY-MM-DD", param), nil)
			return
		}
		if param == "to" {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		*dst = &parsed
	}
	if !validate(w, h.validator, &query) {
		return
	}

	data, err := h.billingExportUsecase.Export(r.Context(), actor, &query)
	if err != nil {
		response.AppError(w, err, "Failed to export billings")
		return
	}

	filename := fmt.Sprintf("billings-%s.xlsx", h.now().Format("20060102-150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
