package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/interfaces/http/middleware"
	"wealthline.backend/internal/interfaces/http/response"
	"wealthline.backend/internal/usecases"
)

type withdrawalService interface {
	Summary(ctx context.Context, identity *entities.Identity) (*usecases.WithdrawSummary, error)
	Prepare(ctx context.Context, identity *entities.Identity, form entities.WithdrawalForm) (*entities.WithdrawalHandoff, error)
}

// WithdrawalHandler prepares manual payout handoffs
type WithdrawalHandler struct {
	withdrawals withdrawalService
}

func NewWithdrawalHandler(withdrawals *usecases.WithdrawalUsecase) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// Prepare validates a withdrawal request and returns the WhatsApp handoff
// POST /api/v1/withdrawals
func (h *WithdrawalHandler) Prepare(c *gin.Context) {
	var form entities.WithdrawalForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, bindError(err))
		return
	}

	handoff, err := h.withdrawals.Prepare(c.Request.Context(), middleware.GetIdentity(c), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, handoff)
}
