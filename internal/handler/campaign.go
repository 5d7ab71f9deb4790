package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/arisanku/savings-engine/internal/domain"
	"github.com/arisanku/savings-engine/internal/service"
	customError "github.com/arisanku/savings-engine/pkg/errors"
	"github.com/arisanku/savings-engine/pkg/response"
)

type CampaignHandler struct {
	campaigns     *service.CampaignService
	contributions *service.ContributionService
	distributions *service.DistributionService
	validator     *validator.Validate
}

func NewCampaignHandler(
	campaigns *service.CampaignService,
	contributions *service.ContributionService,
	distributions *service.DistributionService,
) *CampaignHandler {
	return &CampaignHandler{
		campaigns:     campaigns,
		contributions: contributions,
		distributions: distributions,
		validator:     validator.New(),
	}
}

// CreateCampaign handles POST /groups/{groupId}/campaigns
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	groupID, ok := pathUUID(w, r, "groupId")
	if !ok {
		return
	}

	var request domain.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	campaign, err := h.campaigns.CreateCampaign(r.Context(), groupID, userID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, domain.CreateCampaignResponse{Campaign: campaign})
}

// GetCampaign handles GET /groups/{groupId}/campaigns/{campaignId}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentUserID(r); !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	groupID, ok := pathUUID(w, r, "groupId")
	if !ok {
		return
	}
	campaignID, ok := pathUUID(w, r, "campaignId")
	if !ok {
		return
	}

	campaign, contributions, err := h.campaigns.GetCampaign(r.Context(), groupID, campaignID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, domain.CampaignDetailResponse{
		Campaign:      campaign,
		Contributions: contributions,
	})
}

// Contribute handles PATCH /groups/{groupId}/campaigns/{campaignId}/contribute
func (h *CampaignHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	groupID, ok := pathUUID(w, r, "groupId")
	if !ok {
		return
	}
	campaignID, ok := pathUUID(w, r, "campaignId")
	if !ok {
		return
	}

	var request domain.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	contribution, err := h.contributions.Settle(r.Context(), groupID, campaignID, userID, request.AmountPaid)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, contribution)
}

// Distribute handles POST /groups/{groupId}/campaigns/{campaignId}/distribute
func (h *CampaignHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	groupID, ok := pathUUID(w, r, "groupId")
	if !ok {
		return
	}
	campaignID, ok := pathUUID(w, r, "campaignId")
	if !ok {
		return
	}

	details, err := h.distributions.Distribute(r.Context(), groupID, campaignID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, details)
}

// GetDistribution handles GET /groups/{groupId}/campaigns/{campaignId}/distribution
func (h *CampaignHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentUserID(r); !ok {
		writeError(w, customError.Unauthorized("unauthorized"))
		return
	}

	groupID, ok := pathUUID(w, r, "groupId")
	if !ok {
		return
	}
	campaignID, ok := pathUUID(w, r, "campaignId")
	if !ok {
		return
	}

	details, err := h.distributions.GetDistribution(r.Context(), groupID, campaignID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, details)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	response.Error(w, customError.HTTPStatus(err), customError.Message(err), customError.Code(err))
}
