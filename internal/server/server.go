package server

import (
	"context"
	"net/http"

	"blinno/internal/auth"
	"blinno/internal/config"
	"blinno/internal/entity"
	"blinno/internal/fees"
	"blinno/internal/gateway"
	"blinno/internal/ledger"
	"blinno/internal/notify"
	"blinno/internal/payment"
	"blinno/internal/payout"
	"blinno/internal/user"
	"blinno/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	notify *notify.Service
}

func New(db *sqlx.DB, cfg *config.Config, notifyService *notify.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userRepo := user.NewRepository(db)
	feeRepo := fees.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	payoutRepo := payout.NewRepository(db)
	entityStore := entity.NewStore(db)

	calculator := fees.NewCalculator(fees.DefaultSchedule())
	gatewayClient := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayTimeout)

	paymentService := payment.NewService(paymentRepo, feeRepo, calculator, gatewayClient, userRepo, cfg.GatewayCallbackURL)
	webhookService := webhook.NewService(paymentRepo, feeRepo, ledgerRepo, entityStore, userRepo, notifyService)
	payoutService := payout.NewService(payoutRepo, feeRepo, ledgerRepo, gatewayClient, userRepo, notifyService,
		cfg.MinPayoutCents, cfg.GatewayCallbackURL)

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	feeHandler := fees.NewHandler(calculator)
	ledgerHandler := ledger.NewHandler(db)
	paymentHandler := payment.NewHandler(paymentService)
	webhookHandler := webhook.NewHandler(webhookService, cfg.GatewayWebhookSecret)
	payoutHandler := payout.NewHandler(payoutService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	// The gateway signs its own requests; auth here is the HMAC check.
	router.POST("/webhooks/gateway", webhookHandler.HandleGatewayWebhook)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.POST("/payments", paymentHandler.CreatePayment)
		protected.GET("/payments/:paymentID", paymentHandler.GetPayment)
		protected.GET("/fees/quote", feeHandler.QuoteFees)
		protected.GET("/balance", ledgerHandler.GetBalance)
		protected.GET("/transactions", ledgerHandler.ListTransactions)
		protected.POST("/payouts", payoutHandler.RequestPayout)
		protected.GET("/payouts", payoutHandler.ListPayouts)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/payouts", payoutHandler.ListAllPayouts)
		admin.POST("/payouts/:payoutID/process", payoutHandler.ProcessPayout)
		admin.POST("/payouts/:payoutID/complete", payoutHandler.CompletePayout)
		admin.POST("/payouts/:payoutID/cancel", payoutHandler.CancelPayout)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/notifications/test", TestNotification(notifyService))
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		notify: notifyService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
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
