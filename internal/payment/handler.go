package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/KhanPromiseP/cverra-sub006/internal/api"
	"github.com/KhanPromiseP/cverra-sub006/internal/auth"
	"github.com/KhanPromiseP/cverra-sub006/internal/wallet"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB, client *Client, wallets wallet.Service, returnURL, cancelURL string) *Handler {
	return &Handler{
		service: NewService(NewRepository(db), client, wallets, returnURL, cancelURL),
	}
}

// TopUp godoc
// @Summary      Start a coin top-up
// @Description  Opens a hosted checkout session. Coins are credited after confirmation.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TopUpRequest true "Coin amount"
// @Success      200 {object} TopUpResponse
// @Failure      400 {object} gin.H
// @Failure      502 {object} gin.H
// @Router       /wallet/topup [post]
func (h *Handler) TopUp(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.StartTopUp(c.Request.Context(), userID, req.Coins)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to start top-up"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary      Confirm a top-up and credit the coins
// @Description  Verifies the session with the payment provider. Idempotent.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ConfirmRequest true "Checkout session"
// @Success      200 {object} ConfirmResponse
// @Failure      402 {object} gin.H
// @Failure      404 {object} gin.H
// @Router       /wallet/topup/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Confirm(c.Request.Context(), userID, req.SessionID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, ErrPaymentNotFound), errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
	case errors.Is(err, ErrCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": "payment was cancelled"})
	case errors.Is(err, ErrNotCompleted):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment not completed yet"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm payment"})
	}
}

// History godoc
// @Summary      List the user's top-up history
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "Page size"
// @Param        offset query int false "Page offset"
// @Success      200 {array} Payment
// @Router       /wallet/payments [get]
func (h *Handler) History(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var page api.PagedRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination params"})
		return
	}

	payments, err := h.service.History(c.Request.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
