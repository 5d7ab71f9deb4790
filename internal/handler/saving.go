package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arisanku/savings-engine/internal/domain"
	"github.com/arisanku/savings-engine/internal/service"
	customError "github.com/arisanku/savings-engine/pkg/errors"
	"github.com/arisanku/savings-engine/pkg/response"
)

type SavingHandler struct {
	savings   *service.SavingService
	validator *validator.Validate
}

func NewSavingHandler(savings *service.SavingService) *SavingHandler {
	return &SavingHandler{
		savings:   savings,
		validator: validator.New(),
	}
}

// CreateIndividual handles POST /savings/individual
func (h *SavingHandler) CreateIndividual(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	var request domain.CreateIndividualSavingRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	saving, err := h.savings.CreateIndividual(r.Context(), userID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, saving)
}

// ContributeIndividual handles PATCH /savings/individual/{savingId}/contribute
func (h *SavingHandler) ContributeIndividual(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	savingID, ok := pathUUID(w, r, "savingId")
	if !ok {
		return
	}

	var request domain.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	saving, err := h.savings.ContributeIndividual(r.Context(), userID, savingID, request.AmountPaid)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, saving)
}

// PayoutIndividual handles PATCH /savings/individual/{savingId}/payout
func (h *SavingHandler) PayoutIndividual(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	savingID, ok := pathUUID(w, r, "savingId")
	if !ok {
		return
	}

	saving, err := h.savings.PayoutIndividual(r.Context(), userID, savingID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, saving)
}

// CreateFlexible handles POST /savings/flexible
func (h *SavingHandler) CreateFlexible(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	var request domain.CreateFlexibleSavingRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	saving, err := h.savings.CreateFlexible(r.Context(), userID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, saving)
}

// ContributeFlexible handles PATCH /savings/flexible/{savingId}/contribute
func (h *SavingHandler) ContributeFlexible(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	savingID, ok := pathUUID(w, r, "savingId")
	if !ok {
		return
	}

	var request domain.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	saving, err := h.savings.ContributeFlexible(r.Context(), userID, savingID, request.AmountPaid)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, saving)
}

// PayoutFlexible handles PATCH /savings/flexible/{savingId}/payout
func (h *SavingHandler) PayoutFlexible(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	savingID, ok := pathUUID(w, r, "savingId")
	if !ok {
		return
	}

	saving, err := h.savings.PayoutFlexible(r.Context(), userID, savingID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, saving)
}
