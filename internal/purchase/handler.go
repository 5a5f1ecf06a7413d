package purchase

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/KhanPromiseP/cverra-sub006/internal/article"
	"github.com/KhanPromiseP/cverra-sub006/internal/auth"
	"github.com/KhanPromiseP/cverra-sub006/internal/wallet"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB) *Handler {
	wallets := wallet.NewService(wallet.NewRepository(db))
	articles := article.NewRepository(db)
	return &Handler{service: NewService(wallets, articles)}
}

// UnlockArticle godoc
// @Summary      Unlock a premium article with coins
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Param        articleID path int true "Article ID"
// @Success      200 {object} Result
// @Failure      402 {object} gin.H
// @Failure      404 {object} gin.H
// @Failure      409 {object} gin.H
// @Router       /articles/{articleID}/purchase [post]
func (h *Handler) UnlockArticle(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	articleID, err := strconv.Atoi(c.Param("articleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	result, err := h.service.UnlockArticle(c.Request.Context(), userID, articleID)
	if err != nil {
		switch {
		case errors.Is(err, article.ErrArticleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		case errors.Is(err, ErrNotPremium):
			c.JSON(http.StatusBadRequest, gin.H{"error": "article is free to read"})
		case errors.Is(err, ErrAlreadyUnlocked):
			c.JSON(http.StatusConflict, gin.H{"error": "article already unlocked"})
		case errors.Is(err, ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":  "insufficient coin balance",
				"top_up": "/wallet/topup",
			})
		case errors.Is(err, ErrUnlockFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "purchase failed, your coins were refunded"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed, please try again"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
