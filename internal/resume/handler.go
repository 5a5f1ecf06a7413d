package resume

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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
// @Summary      Create resume
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateResumeRequest true "Resume"
// @Success      201 {object} Resume
// @Router       /resumes [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := json.Marshal(req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resume content"})
		return
	}

	res, err := h.repo.Create(c.Request.Context(), userID, req.Title, req.Language, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resume"})
		return
	}

	c.JSON(http.StatusCreated, res)
}

// List godoc
// @Summary      List own resumes
// @Tags         resumes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Resume
// @Router       /resumes [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	resumes, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resumes"})
		return
	}

	c.JSON(http.StatusOK, resumes)
}

// Get godoc
// @Summary      Get a resume
// @Tags         resumes
// @Produce      json
// @Security     BearerAuth
// @Param        resumeID path int true "Resume ID"
// @Success      200 {object} Resume
// @Failure      404 {object} gin.H
// @Router       /resumes/{resumeID} [get]
func (h *Handler) Get(c *gin.Context) {
	res, ok := h.loadOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

// Update godoc
// @Summary      Update a resume
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resumeID path int true "Resume ID"
// @Param        request body UpdateResumeRequest true "Changes"
// @Success      200 {object} Resume
// @Router       /resumes/{resumeID} [put]
func (h *Handler) Update(c *gin.Context) {
	res, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var req UpdateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var content []byte
	if req.Content != nil {
		var err error
		content, err = json.Marshal(req.Content)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resume content"})
			return
		}
	}

	updated, err := h.repo.Update(c.Request.Context(), res.ID, req.Title, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update resume"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete godoc
// @Summary      Delete a resume
// @Tags         resumes
// @Produce      json
// @Security     BearerAuth
// @Param        resumeID path int true "Resume ID"
// @Success      200 {object} gin.H
// @Router       /resumes/{resumeID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	res, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), res.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete resume"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "resume deleted"})
}

// loadOwned fetches the resume from the path param and enforces ownership.
func (h *Handler) loadOwned(c *gin.Context) (*Resume, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}

	id, err := strconv.Atoi(c.Param("resumeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resume id"})
		return nil, false
	}

	res, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrResumeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resume"})
		}
		return nil, false
	}

	if res.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your resume"})
		return nil, false
	}

	return res, true
}
