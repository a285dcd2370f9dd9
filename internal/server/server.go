package server

import (
	"context"
	"net/http"

	"github.com/NijasTp/trainup-sub002/internal/auth"
	"github.com/NijasTp/trainup-sub002/internal/booking"
	"github.com/NijasTp/trainup-sub002/internal/chat"
	"github.com/NijasTp/trainup-sub002/internal/config"
	"github.com/NijasTp/trainup-sub002/internal/notification"
	"github.com/NijasTp/trainup-sub002/internal/plan"
	"github.com/NijasTp/trainup-sub002/internal/realtime"
	"github.com/NijasTp/trainup-sub002/internal/schedule"
	"github.com/NijasTp/trainup-sub002/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	db      *sqlx.DB
	config  *config.Config
	gateway *realtime.Gateway

	BookingService  booking.Service
	PlanService     plan.Service
	ScheduleService schedule.Service
}

func New(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.AllowedOrigin))
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userService := user.NewService(user.NewRepository(db), cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	dispatcher := notification.NewDispatcher(rdb)
	scheduleService := schedule.NewService(schedule.NewRepository(db))
	planService := plan.NewService(plan.NewRepository(db))
	bookingService := booking.NewService(booking.NewRepository(db), dispatcher, planService)
	chatRepo := chat.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	gateway := realtime.NewGateway(userService, planService, chatRepo, cfg.JWTAccessSecret)

	userHandler := user.NewHandlerWithService(userService)
	scheduleHandler := schedule.NewHandlerWithService(scheduleService)
	bookingHandler := booking.NewHandler(bookingService)
	planHandler := plan.NewHandler(planService)
	notificationHandler := notification.NewHandler(notificationRepo)
	realtimeHandler := realtime.NewHandler(gateway, cfg.AllowedOrigin)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTAccessSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.POST("/logout-everywhere", userHandler.LogoutEverywhere)
		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
		protected.POST("/bookings/:slotID/cancel", bookingHandler.CancelBooking)
		protected.GET("/video-call/slot/:slotID", bookingHandler.VideoCallRoom)
	}

	userOnly := router.Group("/user")
	userOnly.Use(authMiddleware, auth.RequireRole(user.RoleUser))
	{
		userOnly.POST("/book-session", bookingHandler.BookSession)
		userOnly.POST("/plans", planHandler.PurchasePlan)
		userOnly.GET("/plans", planHandler.ListMyPlans)
		userOnly.GET("/plans/:trainerID", planHandler.GetPlan)
		userOnly.POST("/plans/:trainerID/cancel", planHandler.CancelPlan)
	}

	trainer := router.Group("/trainer")
	trainer.Use(authMiddleware, auth.RequireRole(user.RoleTrainer))
	{
		trainer.GET("/weekly-schedule", scheduleHandler.GetWeeklySchedule)
		trainer.POST("/weekly-schedule", scheduleHandler.SaveWeeklySchedule)
		trainer.POST("/weekly-schedule/day-active", scheduleHandler.SetDayActive)
		trainer.POST("/weekly-schedule/slots", scheduleHandler.AddSlot)
		trainer.PATCH("/weekly-schedule/slots/:slotID", scheduleHandler.UpdateSlot)
		trainer.DELETE("/weekly-schedule/slots/:slotID", scheduleHandler.RemoveSlot)
		trainer.GET("/slots", bookingHandler.ListTrainerSlots)
		trainer.POST("/session-requests/:slotID/approve/:userID", bookingHandler.ApproveRequest)
		trainer.POST("/session-requests/:slotID/reject/:userID", bookingHandler.RejectRequest)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(user.RoleAdmin))
	{
		admin.POST("/users/:userID/ban", userHandler.BanUser)
		admin.POST("/users/:userID/unban", userHandler.UnbanUser)
	}

	// Socket auth rides on the session token, not the Bearer middleware.
	router.GET("/ws", realtimeHandler.Connect)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router:          router,
		db:              db,
		config:          cfg,
		gateway:         gateway,
		BookingService:  bookingService,
		PlanService:     planService,
		ScheduleService: scheduleService,
	}
}

// Gateway exposes the realtime layer so the notification worker can push
// on personal channels.
func (s *Server) Gateway() *realtime.Gateway {
	return s.gateway
}

func (s *Server) Start(port string) error {
	s.httpSrv = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
