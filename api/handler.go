package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"

	"charitychain/status"
)

var logger = logging.NewLogger("charitychain.api")

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) CreateCampaign(c *gin.Context) {
	var req struct {
		ID         string      `json:"id"`
		Title      string      `json:"title" binding:"required"`
		GoalAmount json.Number `json:"goalAmount" binding:"required"`
		Organizer  string      `json:"organizer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	campaign, err := h.Service.CreateCampaign(c.Request.Context(), req.ID, req.Title, req.GoalAmount.String(), req.Organizer)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (h *Handler) Donate(c *gin.Context) {
	var req struct {
		ID     string      `json:"id" binding:"required"`
		Donor  string      `json:"donor"`
		Amount json.Number `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	campaign, err := h.Service.Donate(c.Request.Context(), req.ID, req.Donor, req.Amount.String())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h *Handler) GetCampaign(c *gin.Context) {
	campaign, err := h.Service.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.Service.ListCampaigns(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (h *Handler) CampaignHistory(c *gin.Context) {
	history, err := h.Service.CampaignHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// renderError maps the application taxonomy onto HTTP. Chaincode validation
// messages come back verbatim so the caller can see what was rejected.
func renderError(c *gin.Context, err error) {
	code := status.CodeOf(err)
	httpStatus := http.StatusInternalServerError
	switch code {
	case status.CampaignNotFound:
		httpStatus = http.StatusNotFound
	case status.MVCCConflict:
		httpStatus = http.StatusConflict
	case status.UnknownIdentity:
		httpStatus = http.StatusUnauthorized
	case status.ConnectionFailure, status.StoreUnavailable:
		httpStatus = http.StatusServiceUnavailable
	case status.TransactionFailure:
		httpStatus = http.StatusBadRequest
	}
	if httpStatus >= http.StatusInternalServerError {
		logger.Errorf("request failed: %s", err)
	}
	c.JSON(httpStatus, gin.H{"error": err.Error(), "code": code.String()})
}
