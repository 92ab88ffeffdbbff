package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	verificationUsecases "github.com/edupay-lk/edupay/internal/application/verification/usecases"
	"github.com/edupay-lk/edupay/internal/shared/logger"
	"github.com/edupay-lk/edupay/internal/shared/utils"
)

// BankWebhookHandler receives forwarded bank SMS messages from the phone
// forwarder app. The forwarder retries on any non-2xx response, so the
// handler only rejects requests that could never be ingested.
type BankWebhookHandler struct {
	recordBankMessageUC *verificationUsecases.RecordBankMessageUseCase
	listLedgerUC        *verificationUsecases.ListLedgerUseCase
	logger              logger.Interface
}

func NewBankWebhookHandler(
	recordBankMessageUC *verificationUsecases.RecordBankMessageUseCase,
	listLedgerUC *verificationUsecases.ListLedgerUseCase,
	logger logger.Interface,
) *BankWebhookHandler {
	return &BankWebhookHandler{
		recordBankMessageUC: recordBankMessageUC,
		listLedgerUC:        listLedgerUC,
		logger:              logger,
	}
}

type BankMessageRequest struct {
	Source     string     `json:"source"`
	Message    string     `json:"message" binding:"required"`
	ObservedAt *time.Time `json:"observed_at"`
}

// ReceiveMessage ingests one forwarded bank SMS into the ledger.
func (h *BankWebhookHandler) ReceiveMessage(c *gin.Context) {
	var req BankMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind bank message", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cmd := verificationUsecases.RecordBankMessageCommand{
		SourceLabel: req.Source,
		Message:     req.Message,
	}
	if req.ObservedAt != nil {
		cmd.ObservedAt = req.ObservedAt.UTC()
	}

	result, err := h.recordBankMessageUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to record bank message", "error", err, "source", req.Source)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.Duplicate {
		utils.SuccessResponse(c, http.StatusOK, "duplicate message ignored", nil)
		return
	}

	utils.CreatedResponse(c, result.Record, "bank message recorded")
}

// ListRecent returns the most recent ledger records for the admin view.
func (h *BankWebhookHandler) ListRecent(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	records, err := h.listLedgerUC.Execute(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorw("failed to list ledger records", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, records)
}
