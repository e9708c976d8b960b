package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go-clinic-management/internal/delivery/http/middleware"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// actorFrom returns the authenticated caller or writes 401
func actorFrom(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
	}
	return actor, ok
}

// pathUUID parses the named route variable or writes 400
func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody reads a JSON body into req and validates it, writing 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return validate(w, v, req)
}

// decodeChangeSet is decodeBody for EMR writes: a body that parses but holds
// malformed entries is 422, not 400
func decodeChangeSet(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := v.Validate(req); err != nil {
		response.UnprocessableValidation(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func validate(w http.ResponseWriter, v *validator.CustomValidator, req interface{}) bool {
	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

// pagination reads ?page= and ?limit=, falling back to defaults on absent or bad values
func pagination(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
