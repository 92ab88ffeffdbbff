package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupay-lk/edupay/internal/application/verification/testutil"
	verificationUsecases "github.com/edupay-lk/edupay/internal/application/verification/usecases"
	"github.com/edupay-lk/edupay/internal/shared/logger"
	"github.com/edupay-lk/edupay/internal/shared/utils"
)

type webhookFixture struct {
	ledgerRep *testutil.MockLedgerRepository
	engine    *gin.Engine
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger()
	ledgerRep := testutil.NewMockLedgerRepository()

	handler := NewBankWebhookHandler(
		verificationUsecases.NewRecordBankMessageUseCase(ledgerRep, testutil.NewMockDedup(), time.Hour, log),
		verificationUsecases.NewListLedgerUseCase(ledgerRep, log),
		log,
	)

	engine := gin.New()
	engine.POST("/api/bank-messages", handler.ReceiveMessage)
	engine.GET("/api/bank-messages", handler.ListRecent)

	return &webhookFixture{ledgerRep: ledgerRep, engine: engine}
}

func (f *webhookFixture) post(t *testing.T, body gin.H) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/bank-messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestBankWebhookHandler_ReceiveMessage(t *testing.T) {
	f := newWebhookFixture(t)

	w, resp := f.post(t, gin.H{
		"source":  "hnb-sms",
		"message": "Credit Rs. 5,000.00 Ref: 991122 to your account",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(500000), data["amount_cents"])
	assert.Equal(t, "991122", data["reference"])
}

func TestBankWebhookHandler_ReceiveMessage_Duplicate(t *testing.T) {
	f := newWebhookFixture(t)
	body := gin.H{"source": "hnb-sms", "message": "Credit Rs. 100.00 Ref: 7"}

	w, _ := f.post(t, body)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Exact redelivery is acknowledged but not ingested again.
	w, resp := f.post(t, body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	records, err := f.ledgerRep.ListRecent(t.Context(), 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestBankWebhookHandler_ReceiveMessage_Unparseable(t *testing.T) {
	f := newWebhookFixture(t)

	// Malformed SMS text still lands in the ledger with zeroed fields; the
	// forwarder must never see an error for it.
	w, resp := f.post(t, gin.H{"source": "hnb-sms", "message": "Your OTP is 4821"})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["amount_cents"])
	_, hasRef := data["reference"]
	assert.False(t, hasRef)
}

func TestBankWebhookHandler_ReceiveMessage_MissingBody(t *testing.T) {
	f := newWebhookFixture(t)

	w, resp := f.post(t, gin.H{"source": "hnb-sms"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestBankWebhookHandler_ListRecent(t *testing.T) {
	f := newWebhookFixture(t)

	for _, msg := range []string{
		"Credit Rs. 10.00 Ref: 1",
		"Credit Rs. 20.00 Ref: 2",
	} {
		w, _ := f.post(t, gin.H{"source": "hnb-sms", "message": msg})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/bank-messages?limit=1", nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	assert.Len(t, resp.Data.([]interface{}), 1)
}
