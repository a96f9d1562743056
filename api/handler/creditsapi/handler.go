// Package creditsapi 提供积分余额、充值和流水的 HTTP 接口。
package creditsapi

import (
	"net/http"

	"github.com/aivory/fitstudio/api/common"
	"github.com/aivory/fitstudio/api/middleware"
	"github.com/aivory/fitstudio/internal/services/credits"
	"github.com/gin-gonic/gin"
)

// Handler 积分处理器
type Handler struct {
	creditsSvc *credits.Service
}

// NewHandler 创建积分处理器
func NewHandler(creditsSvc *credits.Service) *Handler {
	return &Handler{creditsSvc: creditsSvc}
}

type purchaseRequest struct {
	Amount      int    `json:"amount" binding:"required"`
	Description string `json:"description"`
}

type transactionView struct {
	ID          string `json:"id"`
	Amount      int    `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"createdAt"`
}

// Balance 返回当前余额
func (h *Handler) Balance(c *gin.Context) {
	balance, err := h.creditsSvc.Balance(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"credits": balance})
}

// Purchase 充值积分
func (h *Handler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	description := req.Description
	if description == "" {
		description = "credit pack"
	}

	balance, err := h.creditsSvc.Add(c.Request.Context(), middleware.CurrentUserID(c), req.Amount, description)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"credits": balance})
}

// Transactions 返回积分流水，新在前
func (h *Handler) Transactions(c *gin.Context) {
	txns, err := h.creditsSvc.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	views := make([]transactionView, len(txns))
	for i, txn := range txns {
		views[i] = transactionView{
			ID:          txn.ID,
			Amount:      txn.Amount,
			Type:        txn.Type,
			Description: txn.Description,
			CreatedAt:   txn.CreatedAt.Unix(),
		}
	}
	common.RespondSuccess(c, gin.H{"transactions": views})
}
