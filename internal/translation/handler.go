package translation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/KhanPromiseP/cverra-sub006/internal/ai"
	"github.com/KhanPromiseP/cverra-sub006/internal/auth"
	"github.com/KhanPromiseP/cverra-sub006/internal/resume"
)

type Handler struct {
	service Service
	repo    Repository
	resumes resume.Repository
	cache   *Cache
	worker  *Worker
}

func NewHandler(db *sqlx.DB, rdb *redis.Client, aiClient *ai.Client, defaultModel string) *Handler {
	repo := NewRepository(db)
	resumes := resume.NewRepository(db)
	cache := NewCache(rdb)
	svc := NewService(repo, resumes, aiClient, cache, defaultModel)
	return &Handler{
		service: svc,
		repo:    repo,
		resumes: resumes,
		cache:   cache,
		worker:  NewWorker(rdb, svc),
	}
}

func (h *Handler) Worker() *Worker {
	return h.worker
}

// Translate godoc
// @Summary      Translate a resume
// @Description  Synchronously translates the resume, or enqueues a job when
// @Description  async is set. Completed translations are cached.
// @Tags         translations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resumeID path int true "Resume ID"
// @Param        request body TranslateRequest true "Translation request"
// @Success      200 {object} Result
// @Success      202 {object} gin.H
// @Failure      400 {object} gin.H
// @Failure      502 {object} gin.H
// @Router       /resumes/{resumeID}/translations [post]
func (h *Handler) Translate(c *gin.Context) {
	resumeID, ok := h.ownedResumeID(c)
	if !ok {
		return
	}

	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !IsSupportedLanguage(req.Language) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "unsupported target language",
			"supported": SupportedLanguages(),
		})
		return
	}

	if req.Async {
		if err := h.worker.Enqueue(c.Request.Context(), QueuedJob{
			ResumeID: resumeID,
			Language: req.Language,
			AIModel:  req.AIModel,
			Force:    req.Force,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue translation"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"message": "translation queued",
			"status":  "/resumes/" + strconv.Itoa(resumeID) + "/translations/" + req.Language + "/status",
		})
		return
	}

	opts := Options{Force: req.Force, UseCache: !req.NoCache, AIModel: req.AIModel}
	result, err := h.service.Translate(c.Request.Context(), resumeID, req.Language, opts)
	if err != nil {
		h.respondTranslateError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Retry godoc
// @Summary      Retry a failed translation
// @Tags         translations
// @Produce      json
// @Security     BearerAuth
// @Param        resumeID path int true "Resume ID"
// @Param        lang     path string true "Target language"
// @Success      200 {object} Result
// @Failure      409 {object} gin.H
// @Failure      429 {object} gin.H
// @Router       /resumes/{resumeID}/translations/{lang}/retry [post]
func (h *Handler) Retry(c *gin.Context) {
	resumeID, ok := h.ownedResumeID(c)
	if !ok {
		return
	}
	lang := c.Param("lang")

	result, err := h.service.RetryFailed(c.Request.Context(), resumeID, lang, Options{UseCache: false})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFailed):
			c.JSON(http.StatusConflict, gin.H{"error": "translation is not in a failed state"})
		case errors.Is(err, ErrAttemptsExhausted):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "retry attempts exhausted, contact support"})
		default:
			h.respondTranslateError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get godoc
// @Summary      Fetch a stored translation
// @Tags         translations
// @Produce      json
// @Security     BearerAuth
// @Param        resumeID path int true "Resume ID"
// @Param        lang     path string true "Target language"
// @Success      200 {object} Translation
// @Failure      404 {object} gin.H
// @Router       /resumes/{resumeID}/translations/{lang} [get]
func (h *Handler) Get(c *gin.Context) {
	resumeID, ok := h.ownedResumeID(c)
	if !ok {
		return
	}
	lang := c.Param("lang")

	t, err := h.service.Get(c.Request.Context(), resumeID, lang)
	if err != nil {
		if errors.Is(err, ErrTranslationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "translation not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load translation"})
		}
		return
	}

	c.JSON(http.StatusOK, t)
}

// Status godoc
// @Summary      Poll a translation job
// @Tags         translations
// @Produce      json
// @Security     BearerAuth
// @Param        resumeID path int true "Resume ID"
// @Param        lang     path string true "Target language"
// @Success      200 {object} Job
// @Failure      404 {object} gin.H
// @Router       /resumes/{resumeID}/translations/{lang}/status [get]
func (h *Handler) Status(c *gin.Context) {
	resumeID, ok := h.ownedResumeID(c)
	if !ok {
		return
	}
	lang := c.Param("lang")

	job, err := h.service.Status(c.Request.Context(), resumeID, lang)
	if err != nil {
		if errors.Is(err, ErrTranslationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no translation job found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job status"})
		}
		return
	}

	c.JSON(http.StatusOK, job)
}

// ResetAttempts godoc
// @Summary      Reset the retry counter of a failed translation
// @Description  Clears the failure state so the user can retry again.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        resumeID path int true "Resume ID"
// @Param        lang     path string true "Target language"
// @Success      200 {object} gin.H
// @Failure      404 {object} gin.H
// @Router       /admin/resumes/{resumeID}/translations/{lang}/reset [post]
func (h *Handler) ResetAttempts(c *gin.Context) {
	resumeID, err := strconv.Atoi(c.Param("resumeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resume id"})
		return
	}
	lang := c.Param("lang")

	if err := h.repo.ResetAttempts(c.Request.Context(), resumeID, lang); err != nil {
		if errors.Is(err, ErrTranslationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "translation not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset attempts"})
		}
		return
	}

	h.cache.Invalidate(c.Request.Context(), resumeID, lang)
	c.JSON(http.StatusOK, gin.H{"message": "attempts reset"})
}

// PurgeStale godoc
// @Summary      Delete translations not read for the given number of days
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        days query int false "Staleness cutoff in days (default 90)"
// @Success      200 {object} gin.H
// @Router       /admin/translations/purge [post]
func (h *Handler) PurgeStale(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "90"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days value"})
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	purged, err := h.repo.PurgeStale(c.Request.Context(), cutoff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to purge translations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purged": purged})
}

func (h *Handler) respondTranslateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedLanguage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, resume.ErrResumeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
	case errors.Is(err, ErrTranslationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "translation unavailable, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "translation failed, please try again"})
	}
}

func (h *Handler) ownedResumeID(c *gin.Context) (int, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}

	resumeID, err := strconv.Atoi(c.Param("resumeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resume id"})
		return 0, false
	}

	doc, err := h.resumes.GetByID(c.Request.Context(), resumeID)
	if err != nil {
		if errors.Is(err, resume.ErrResumeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resume"})
		}
		return 0, false
	}

	if doc.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your resume"})
		return 0, false
	}

	return resumeID, true
}
