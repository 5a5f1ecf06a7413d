package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/KhanPromiseP/cverra-sub006/internal/ai"
	"github.com/KhanPromiseP/cverra-sub006/internal/article"
	"github.com/KhanPromiseP/cverra-sub006/internal/auth"
	"github.com/KhanPromiseP/cverra-sub006/internal/config"
	"github.com/KhanPromiseP/cverra-sub006/internal/payment"
	"github.com/KhanPromiseP/cverra-sub006/internal/purchase"
	"github.com/KhanPromiseP/cverra-sub006/internal/resume"
	"github.com/KhanPromiseP/cverra-sub006/internal/translation"
	"github.com/KhanPromiseP/cverra-sub006/internal/user"
	"github.com/KhanPromiseP/cverra-sub006/internal/wallet"
)

type Server struct {
	router       *gin.Engine
	httpServer   *http.Server
	db           *sqlx.DB
	config       *config.Config
	translations *translation.Handler
}

func New(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey)
	paymentClient := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAPIKey)
	walletService := wallet.NewService(wallet.NewRepository(db))

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	walletHandler := wallet.NewHandler(db)
	resumeHandler := resume.NewHandler(db)
	articleHandler := article.NewHandler(db)
	purchaseHandler := purchase.NewHandler(db)
	paymentHandler := payment.NewHandler(db, paymentClient, walletService, cfg.PaymentReturnURL, cfg.PaymentCancelURL)
	translationHandler := translation.NewHandler(db, rdb, aiClient, cfg.AIModel)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/wallet", walletHandler.GetBalance)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)
		protected.POST("/wallet/topup", paymentHandler.TopUp)
		protected.POST("/wallet/topup/confirm", paymentHandler.Confirm)
		protected.GET("/wallet/payments", paymentHandler.History)

		protected.POST("/resumes", resumeHandler.Create)
		protected.GET("/resumes", resumeHandler.List)
		protected.GET("/resumes/:resumeID", resumeHandler.Get)
		protected.PUT("/resumes/:resumeID", resumeHandler.Update)
		protected.DELETE("/resumes/:resumeID", resumeHandler.Delete)

		protected.POST("/resumes/:resumeID/translations", translationHandler.Translate)
		protected.GET("/resumes/:resumeID/translations/:lang", translationHandler.Get)
		protected.GET("/resumes/:resumeID/translations/:lang/status", translationHandler.Status)
		protected.POST("/resumes/:resumeID/translations/:lang/retry", translationHandler.Retry)

		protected.GET("/articles", articleHandler.List)
		protected.GET("/articles/:articleID", articleHandler.Get)
		protected.POST("/articles/:articleID/purchase", purchaseHandler.UnlockArticle)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/articles", articleHandler.Create)
		admin.POST("/articles/purge-access", articleHandler.PurgeExpiredAccess)
		admin.GET("/wallets/:userID/reconcile", walletHandler.Reconcile)
		admin.POST("/resumes/:resumeID/translations/:lang/reset", translationHandler.ResetAttempts)
		admin.POST("/translations/purge", translationHandler.PurgeStale)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router:       router,
		db:           db,
		config:       cfg,
		translations: translationHandler,
	}
}

// TranslationWorker exposes the queue worker so main can run it alongside
// the HTTP listener.
func (s *Server) TranslationWorker() *translation.Worker {
	return s.translations.Worker()
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
