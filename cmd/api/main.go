package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"dice-miniapp-backend/internal/config"
	"dice-miniapp-backend/internal/handlers"
	"dice-miniapp-backend/internal/logger"
	"dice-miniapp-backend/internal/middleware"
	"dice-miniapp-backend/internal/services"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := logger.New(true)
		l.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Env != "production")

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisService.Close()

	jwtService := services.NewJWTService(cfg)
	adminSigner := services.NewAdminSigner(cfg.AdminSecret)
	gatewaySigner := services.NewGatewaySigner(cfg.GatewaySecret)
	redirector := services.NewGatewayRedirector(cfg, gatewaySigner)

	wsHandler := handlers.NewWebSocketHandler(log)

	betService, err := services.NewBetService(redisService, cfg, wsHandler, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize bet service")
	}
	depositService := services.NewDepositService(redisService, cfg, wsHandler, log)
	withdrawService := services.NewWithdrawService(redisService, wsHandler, log)

	authHandler := handlers.NewAuthHandler(redisService, jwtService, cfg.BotToken, log)
	userHandler := handlers.NewUserHandler(redisService)
	betHandler := handlers.NewBetHandler(betService, redisService)
	walletHandler := handlers.NewWalletHandler(depositService, withdrawService, redirector)
	adminHandler := handlers.NewAdminHandler(depositService, withdrawService, adminSigner)
	gatewayHandler := handlers.NewGatewayHandler(depositService, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/auth/telegram", authHandler.Authenticate)

	// Public fairness commitment, readable before any bet is placed.
	router.GET("/fairness/commitment", betHandler.GetCommitment)

	// Gateway callbacks authenticate themselves by signature, not session.
	router.POST("/payments/callback", gatewayHandler.HandleCallback)

	admin := router.Group("/admin")
	{
		admin.GET("/deposits/:id/approve", adminHandler.ApproveDeposit)
		admin.GET("/deposits/:id/decline", adminHandler.DeclineDeposit)
		admin.GET("/withdraws/:id/approve", adminHandler.ApproveWithdraw)
		admin.GET("/withdraws/:id/decline", adminHandler.DeclineWithdraw)

		admin.GET("/ws", func(c *gin.Context) {
			if !adminSigner.Verify(c.Query("sig"), "admin_ws", "", 0, 0) {
				c.JSON(http.StatusForbidden, gin.H{"error": "invalid action signature"})
				return
			}
			wsHandler.HandleAdminWebSocket(c)
		})
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.POST("/logout", userHandler.Logout)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		bets := protected.Group("/bets")
		{
			bets.POST("", betHandler.PlaceBet)
			bets.GET("/history", betHandler.GetHistory)
			bets.GET("/balance", betHandler.GetBalance)

			bets.GET("/verification", betHandler.GetVerificationData)
			bets.POST("/verify", betHandler.VerifyRoll)
		}

		wallet := protected.Group("/wallet")
		{
			wallet.POST("/deposits", walletHandler.CreateDeposit)
			wallet.POST("/deposits/gateway", walletHandler.CreateGatewayDeposit)
			wallet.GET("/deposits", walletHandler.ListDeposits)

			wallet.POST("/withdraws", walletHandler.CreateWithdraw)
			wallet.POST("/withdraws/:id/cancel", walletHandler.CancelWithdraw)
			wallet.GET("/withdraws", walletHandler.ListWithdraws)
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("server starting")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
