package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/fundraising_app/internal/core/ports/services"
	"github.com/SscSPs/fundraising_app/internal/dto"
	"github.com/SscSPs/fundraising_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// campaignHandler handles HTTP requests related to campaigns and donations.
type campaignHandler struct {
	campaignService portssvc.CampaignSvcFacade
	now             func() time.Time
}

// newCampaignHandler creates a new campaignHandler.
func newCampaignHandler(cs portssvc.CampaignSvcFacade) *campaignHandler {
	return &campaignHandler{
		campaignService: cs,
		now:             time.Now,
	}
}

// RegisterCampaignRoutes registers campaign routes. writeMiddleware guards the routes that reach the ledger.
func RegisterCampaignRoutes(rg *gin.RouterGroup, campaignService portssvc.CampaignSvcFacade, writeMiddleware ...gin.HandlerFunc) {
	registerValidators()
	h := newCampaignHandler(campaignService)

	campaigns := rg.Group("/campaigns")
	{
		campaigns.GET("", h.listCampaigns)
		campaigns.GET("/active", h.listActiveCampaigns)
		campaigns.GET("/funded", h.listFundedCampaigns)
		campaigns.GET("/:campaignID", h.getCampaign)
		campaigns.GET("/:campaignID/donations", h.listDonations)
	}

	writes := campaigns.Group("", writeMiddleware...)
	{
		writes.POST("", h.createCampaign)
		writes.POST("/:campaignID/donations", h.donate)
		writes.POST("/:campaignID/withdraw", h.withdraw)
	}

	rg.GET("/creators/:creatorAddress/campaigns", h.listCampaignsByCreator)
}

// RegisterReceiptRoutes registers the out-of-band receipt route. operatorMiddleware must authenticate the caller
// and admit operators only.
func RegisterReceiptRoutes(rg *gin.RouterGroup, campaignService portssvc.CampaignSvcFacade, operatorMiddleware ...gin.HandlerFunc) {
	registerValidators()
	h := newCampaignHandler(campaignService)

	rg.Group("/campaigns", operatorMiddleware...).POST("/:campaignID/receipts", h.applyReceipt)
}

// createCampaign godoc
// @Summary Create a campaign
// @Description Deploys a campaign contract on the ledger and records it once confirmed. The creator is the token subject.
// @Tags campaigns
// @Accept  json
// @Produce  json
// @Param   campaign body dto.CreateCampaignRequest true "Campaign details"
// @Success 201 {object} dto.CampaignResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} dto.ErrorResponse "Ledger rejected the deploy"
// @Failure 504 {object} dto.ErrorResponse "Ledger outcome unknown"
// @Failure 500 {object} dto.ErrorResponse "Contract deployed but not recorded"
// @Security BearerAuth
// @Router /campaigns [post]
func (h *campaignHandler) createCampaign(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	creator, ok := middleware.GetCallerAddressFromContext(c)
	if !ok {
		logger.Error("Caller address not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received request to create campaign", slog.String("title", req.Title), slog.String("target_amount", req.TargetAmount.String()))
	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), req, creator)
	if err != nil {
		respondError(c, logger, err, "Failed to create campaign")
		return
	}

	c.JSON(http.StatusCreated, dto.ToCampaignResponse(campaign, h.now()))
}

// listCampaigns godoc
// @Summary List campaigns
// @Description Lists campaigns, newest first
// @Tags campaigns
// @Produce  json
// @Param   limit query int false "Page size (1-100)" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListCampaignsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid paging parameters"
// @Failure 500 {object} dto.ErrorResponse "Failed to list campaigns"
// @Router /campaigns [get]
func (h *campaignHandler) listCampaigns(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var params dto.ListCampaignsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	campaigns, err := h.campaignService.GetAllCampaigns(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list campaigns")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCampaignResponse(campaigns, h.now()))
}

// listActiveCampaigns godoc
// @Summary List active campaigns
// @Tags campaigns
// @Produce  json
// @Success 200 {object} dto.ListCampaignsResponse
// @Failure 500 {object} dto.ErrorResponse "Failed to list campaigns"
// @Router /campaigns/active [get]
func (h *campaignHandler) listActiveCampaigns(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	campaigns, err := h.campaignService.GetActiveCampaigns(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list active campaigns")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCampaignResponse(campaigns, h.now()))
}

// listFundedCampaigns godoc
// @Summary List funded campaigns
// @Tags campaigns
// @Produce  json
// @Success 200 {object} dto.ListCampaignsResponse
// @Failure 500 {object} dto.ErrorResponse "Failed to list campaigns"
// @Router /campaigns/funded [get]
func (h *campaignHandler) listFundedCampaigns(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	campaigns, err := h.campaignService.GetFundedCampaigns(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list funded campaigns")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCampaignResponse(campaigns, h.now()))
}

// getCampaign godoc
// @Summary Get a campaign
// @Tags campaigns
// @Produce  json
// @Param   campaignID path string true "Campaign ID"
// @Success 200 {object} dto.CampaignResponse
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve campaign"
// @Router /campaigns/{campaignID} [get]
func (h *campaignHandler) getCampaign(c *gin.Context) {
	campaignID := c.Param("campaignID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("campaign_id", campaignID))

	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), campaignID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve campaign")
		return
	}
	c.JSON(http.StatusOK, dto.ToCampaignResponse(campaign, h.now()))
}

// listDonations godoc
// @Summary List a campaign's donations
// @Tags donations
// @Produce  json
// @Param   campaignID path string true "Campaign ID"
// @Success 200 {object} dto.ListDonationsResponse
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list donations"
// @Router /campaigns/{campaignID}/donations [get]
func (h *campaignHandler) listDonations(c *gin.Context) {
	campaignID := c.Param("campaignID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("campaign_id", campaignID))

	donations, err := h.campaignService.GetCampaignDonations(c.Request.Context(), campaignID)
	if err != nil {
		respondError(c, logger, err, "Failed to list donations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListDonationResponse(donations))
}

// donate godoc
// @Summary Donate to a campaign
// @Description Records a donation on the ledger, then in the mirror. The donor is the token subject.
// @Tags donations
// @Accept  json
// @Produce  json
// @Param   campaignID path string true "Campaign ID"
// @Param   donation body dto.DonateRequest true "Donation amount"
// @Success 201 {object} dto.DonationResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Failure 409 {object} dto.ErrorResponse "Campaign is not active"
// @Failure 422 {object} dto.ErrorResponse "Ledger rejected the donation"
// @Failure 503 {object} dto.ErrorResponse "Donation recorded, campaign total pending reconciliation"
// @Failure 504 {object} dto.ErrorResponse "Ledger outcome unknown"
// @Security BearerAuth
// @Router /campaigns/{campaignID}/donations [post]
func (h *campaignHandler) donate(c *gin.Context) {
	campaignID := c.Param("campaignID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("campaign_id", campaignID))

	var req dto.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	donor, ok := middleware.GetCallerAddressFromContext(c)
	if !ok {
		logger.Error("Caller address not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	donation, err := h.campaignService.Donate(c.Request.Context(), campaignID, req, donor)
	if err != nil {
		respondError(c, logger, err, "Failed to donate")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDonationResponse(donation))
}

// withdraw godoc
// @Summary Withdraw a funded campaign
// @Description Only the campaign creator may withdraw. mirrorUpdated is false when the ledger confirmed but the mirror lags.
// @Tags campaigns
// @Produce  json
// @Param   campaignID path string true "Campaign ID"
// @Success 200 {object} dto.WithdrawalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the creator"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Failure 409 {object} dto.ErrorResponse "Campaign is not funded"
// @Failure 422 {object} dto.ErrorResponse "Ledger rejected the withdrawal"
// @Failure 504 {object} dto.ErrorResponse "Ledger outcome unknown"
// @Security BearerAuth
// @Router /campaigns/{campaignID}/withdraw [post]
func (h *campaignHandler) withdraw(c *gin.Context) {
	campaignID := c.Param("campaignID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("campaign_id", campaignID))

	caller, ok := middleware.GetCallerAddressFromContext(c)
	if !ok {
		logger.Error("Caller address not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), campaignID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve campaign")
		return
	}
	if campaign.CreatorAddress != caller {
		logger.Warn("Withdraw attempted by non-creator", slog.String("caller_address", caller))
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "only the campaign creator can withdraw", CampaignID: campaignID})
		return
	}

	withdrawal, err := h.campaignService.WithdrawFunds(c.Request.Context(), campaignID)
	if err != nil {
		respondError(c, logger, err, "Failed to withdraw")
		return
	}
	if !withdrawal.MirrorUpdated {
		logger.Warn("Withdrawal confirmed but mirror not updated", slog.String("transaction_hash", withdrawal.TransactionHash))
	}
	c.JSON(http.StatusOK, dto.ToWithdrawalResponse(withdrawal, h.now()))
}

// applyReceipt godoc
// @Summary Apply a ledger donation receipt
// @Description Records a donation the ledger confirmed outside this service. Operators only. The receipt is refused when the ledger's raised amount does not cover it. Replaying a receipt returns the recorded donation.
// @Tags donations
// @Accept  json
// @Produce  json
// @Param   campaignID path string true "Campaign ID"
// @Param   receipt body dto.DonationReceipt true "Ledger receipt"
// @Success 200 {object} dto.DonationResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an operator"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Failure 409 {object} dto.ErrorResponse "Campaign withdrawn or receipt not backed by the ledger"
// @Failure 500 {object} dto.ErrorResponse "Receipt conflicts with a recorded donation"
// @Security BearerAuth
// @Router /campaigns/{campaignID}/receipts [post]
func (h *campaignHandler) applyReceipt(c *gin.Context) {
	campaignID := c.Param("campaignID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("campaign_id", campaignID))

	var req dto.DonationReceipt
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	donation, err := h.campaignService.ApplyDonationReceipt(c.Request.Context(), campaignID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to apply donation receipt")
		return
	}
	c.JSON(http.StatusOK, dto.ToDonationResponse(donation))
}

// listCampaignsByCreator godoc
// @Summary List a creator's campaigns
// @Tags campaigns
// @Produce  json
// @Param   creatorAddress path string true "Creator ledger address"
// @Success 200 {object} dto.ListCampaignsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid address"
// @Failure 500 {object} dto.ErrorResponse "Failed to list campaigns"
// @Router /creators/{creatorAddress}/campaigns [get]
func (h *campaignHandler) listCampaignsByCreator(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var params dto.CreatorParams
	if err := c.ShouldBindUri(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	campaigns, err := h.campaignService.GetCampaignsByCreator(c.Request.Context(), params.CreatorAddress)
	if err != nil {
		respondError(c, logger, err, "Failed to list campaigns")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCampaignResponse(campaigns, h.now()))
}
