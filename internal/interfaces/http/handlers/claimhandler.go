package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	verificationUsecases "github.com/edupay-lk/edupay/internal/application/verification/usecases"
	"github.com/edupay-lk/edupay/internal/shared/logger"
	"github.com/edupay-lk/edupay/internal/shared/utils"
)

type ClaimHandler struct {
	submitClaimUC       *verificationUsecases.SubmitClaimUseCase
	listUserClaimsUC    *verificationUsecases.ListUserClaimsUseCase
	listAllClaimsUC     *verificationUsecases.ListAllClaimsUseCase
	updateClaimStatusUC *verificationUsecases.UpdateClaimStatusUseCase
	logger              logger.Interface
}

func NewClaimHandler(
	submitClaimUC *verificationUsecases.SubmitClaimUseCase,
	listUserClaimsUC *verificationUsecases.ListUserClaimsUseCase,
	listAllClaimsUC *verificationUsecases.ListAllClaimsUseCase,
	updateClaimStatusUC *verificationUsecases.UpdateClaimStatusUseCase,
	logger logger.Interface,
) *ClaimHandler {
	return &ClaimHandler{
		submitClaimUC:       submitClaimUC,
		listUserClaimsUC:    listUserClaimsUC,
		listAllClaimsUC:     listAllClaimsUC,
		updateClaimStatusUC: updateClaimStatusUC,
		logger:              logger,
	}
}

type SubmitClaimRequest struct {
	SubmitterID     string `json:"submitter_id" binding:"required"`
	SubmitterEmail  string `json:"submitter_email" binding:"required,email"`
	ContactNumber   string `json:"contact_number"`
	PackageName     string `json:"package_name" binding:"required"`
	AmountCents     int64  `json:"amount_cents" binding:"required,gt=0"`
	ReceiptImageRef string `json:"receipt_image_ref" binding:"required,url"`
}

// SubmitClaim accepts a payment claim and returns it in pending state.
// Verification runs in the background; the submitter polls or waits for
// the approval email.
func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	var req SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cmd := verificationUsecases.SubmitClaimCommand{
		SubmitterID:     req.SubmitterID,
		SubmitterEmail:  req.SubmitterEmail,
		ContactNumber:   req.ContactNumber,
		PackageName:     req.PackageName,
		AmountCents:     req.AmountCents,
		ReceiptImageRef: req.ReceiptImageRef,
	}

	result, err := h.submitClaimUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to submit claim", "error", err, "submitter_id", req.SubmitterID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result.Claim, "payment claim received, verification in progress")
}

// ListUserClaims returns the claims of one submitter, newest first.
func (h *ClaimHandler) ListUserClaims(c *gin.Context) {
	submitterID := c.Param("userId")

	claims, err := h.listUserClaimsUC.Execute(c.Request.Context(), submitterID)
	if err != nil {
		h.logger.Errorw("failed to list user claims", "error", err, "submitter_id", submitterID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, claims)
}

// ListAllClaims returns every claim, newest first.
func (h *ClaimHandler) ListAllClaims(c *gin.Context) {
	claims, err := h.listAllClaimsUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list claims", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, claims)
}

type UpdateClaimStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=approved rejected"`
	AdminID string `json:"admin_id"`
}

// UpdateClaimStatus applies a manual approve or reject decision.
func (h *ClaimHandler) UpdateClaimStatus(c *gin.Context) {
	claimSID := c.Param("id")

	var req UpdateClaimStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cmd := verificationUsecases.UpdateClaimStatusCommand{
		ClaimSID:  claimSID,
		NewStatus: req.Status,
		AdminID:   req.AdminID,
	}

	result, err := h.updateClaimStatusUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to update claim status",
			"error", err,
			"claim_id", claimSID,
			"status", req.Status,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}
