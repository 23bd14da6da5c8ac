package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
)

func TestWithdrawalHandler_Prepare(t *testing.T) {
	userID := uuid.New()
	svc := withdrawalServiceStub{prepareFn: func(_ context.Context, identity *entities.Identity, form entities.WithdrawalForm) (*entities.WithdrawalHandoff, error) {
		require.NotNil(t, identity)
		assert.Equal(t, userID, identity.UserID)
		if form.Amount == "100" {
			return nil, domainerrors.Validation("Minimum withdrawal is $5,000.00.")
		}
		if form.BankName == "" {
			assert.Equal(t, "brokerage", form.AccountType)
			return nil, domainerrors.Validation("Fill all required fields.")
		}
		return &entities.WithdrawalHandoff{
			Eligibility: entities.Eligibility{Eligible: true, Amount: decimal.NewFromInt(6000)},
			Message:     "Hi",
			Link:        "https://wa.me/1?text=Hi",
		}, nil
	}}
	h := &WithdrawalHandler{withdrawals: svc}
	r := gin.New()
	r.POST("/withdrawals", asUser(userID, "ada@mail.com"), h.Prepare)

	rec := serve(r, jsonRequest(http.MethodPost, "/withdrawals", map[string]string{"amount": "6000", "bank_name": "First"}))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["eligible"])
	assert.Equal(t, "https://wa.me/1?text=Hi", body["link"])

	rec = serve(r, jsonRequest(http.MethodPost, "/withdrawals", map[string]string{"amount": "100"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Minimum withdrawal is $5,000.00.", decodeBody(t, rec)["message"])

	rec = serve(r, jsonRequest(http.MethodPost, "/withdrawals", map[string]string{"amount": "6000", "account_type": "brokerage"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Fill all required fields.", decodeBody(t, rec)["message"])
}
