package server

import (
	"strings"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/config"
	"github.com/captaindev404/gentil-gamification/internal/middleware"

	achievementHttp "github.com/captaindev404/gentil-gamification/internal/modules/achievement/delivery/http"
	achievementRepo "github.com/captaindev404/gentil-gamification/internal/modules/achievement/repository"
	achievementService "github.com/captaindev404/gentil-gamification/internal/modules/achievement/service"

	badgeHttp "github.com/captaindev404/gentil-gamification/internal/modules/badge/delivery/http"
	badgeRepo "github.com/captaindev404/gentil-gamification/internal/modules/badge/repository"
	badgeService "github.com/captaindev404/gentil-gamification/internal/modules/badge/service"

	leaderboardHttp "github.com/captaindev404/gentil-gamification/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "github.com/captaindev404/gentil-gamification/internal/modules/leaderboard/repository"
	leaderboardService "github.com/captaindev404/gentil-gamification/internal/modules/leaderboard/service"

	notiHttp "github.com/captaindev404/gentil-gamification/internal/modules/notification/delivery/http"
	notifRepo "github.com/captaindev404/gentil-gamification/internal/modules/notification/repository"
	notifService "github.com/captaindev404/gentil-gamification/internal/modules/notification/service"

	pointsHttp "github.com/captaindev404/gentil-gamification/internal/modules/points/delivery/http"
	pointsRepo "github.com/captaindev404/gentil-gamification/internal/modules/points/repository"
	pointsService "github.com/captaindev404/gentil-gamification/internal/modules/points/service"

	userRepo "github.com/captaindev404/gentil-gamification/internal/modules/user/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine             *gin.Engine
	db                 *gorm.DB
	redisClient        *redis.Client
	PointsService      pointsService.PointsService
	LeaderboardService leaderboardService.LeaderboardService
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	users := userRepo.NewUserRepository(db)

	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	ledger := pointsRepo.NewPointsRepository(db)
	pointsSvc := pointsService.NewPointsService(ledger, users, notificationSvc, cfg.LevelThresholds)

	// The ledger doubles as the contribution counter and activity provider
	// for both evaluators.
	badgeSvc := badgeService.NewBadgeService(badgeRepo.NewBadgeRepository(db), ledger, pointsSvc, notificationSvc)
	badgeHandler := badgeHttp.NewBadgeHandler(badgeSvc)

	achievementSvc := achievementService.NewAchievementService(achievementRepo.NewAchievementRepository(db), ledger, pointsSvc, notificationSvc)
	achievementHandler := achievementHttp.NewAchievementHandler(achievementSvc)

	pointsHandler := pointsHttp.NewPointsHandler(pointsSvc, badgeSvc, achievementSvc)

	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), redisClient, cfg.LeaderboardFreshness)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users, cfg.JWTSecret)

	api := router.Group("/api")

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/points/reset", pointsHandler.ResetPeriodicPoints)
			adminGroup.POST("/leaderboard/rebuild", leaderboardHandler.RebuildLeaderboard)
		}

		// Points routes
		pointsGroup := protected.Group("/points")
		{
			pointsGroup.POST("/award", authMiddleware.RequireAdmin(), pointsHandler.AwardPoints)
			pointsGroup.GET("/me", pointsHandler.GetMyPoints)
			pointsGroup.GET("/me/history", pointsHandler.GetMyHistory)
		}

		// Badge routes
		protected.GET("/badges", badgeHandler.GetAllBadges)
		protected.GET("/badges/me", badgeHandler.GetMyBadges)

		// Achievement routes
		protected.GET("/achievements", achievementHandler.GetAllAchievements)
		protected.GET("/achievements/me", achievementHandler.GetMyAchievements)

		// Leaderboard routes
		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		protected.GET("/leaderboard/me", leaderboardHandler.GetMyPosition)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:             router,
		db:                 db,
		redisClient:        redisClient,
		PointsService:      pointsSvc,
		LeaderboardService: leaderboardSvc,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
