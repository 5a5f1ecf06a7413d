package article

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/KhanPromiseP/cverra-sub006/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// Create godoc
// @Summary      Create article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateArticleRequest true "Article"
// @Success      201 {object} Article
// @Router       /admin/articles [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.IsPremium && req.PriceCoins <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "premium articles need a positive coin price"})
		return
	}

	a, err := h.repo.Create(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create article"})
		return
	}

	c.JSON(http.StatusCreated, a)
}

// List godoc
// @Summary      List articles
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "Page size"
// @Param        offset query int false "Page offset"
// @Success      200 {array} Article
// @Router       /articles [get]
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	articles, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load articles"})
		return
	}

	c.JSON(http.StatusOK, articles)
}

// Get godoc
// @Summary      Read an article
// @Description  Premium bodies are withheld behind the paywall unless the
// @Description  caller holds a live access grant.
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Param        articleID path int true "Article ID"
// @Success      200 {object} gin.H
// @Failure      404 {object} gin.H
// @Router       /articles/{articleID} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("articleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		}
		return
	}

	if !a.IsPremium || a.AuthorID == userID {
		c.JSON(http.StatusOK, gin.H{"article": a, "locked": false})
		return
	}

	hasAccess, err := h.repo.HasAccess(c.Request.Context(), userID, a.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check access"})
		return
	}

	if !hasAccess {
		a.Body = ""
		c.JSON(http.StatusOK, gin.H{
			"article":     a,
			"locked":      true,
			"price_coins": a.PriceCoins,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": a, "locked": false})
}

// PurgeExpiredAccess godoc
// @Summary      Delete lapsed premium access grants
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} gin.H
// @Router       /admin/articles/purge-access [post]
func (h *Handler) PurgeExpiredAccess(c *gin.Context) {
	purged, err := h.repo.PurgeExpired(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to purge access grants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purged": purged})
}
