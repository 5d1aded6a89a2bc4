package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akshith-07/fitflow-pro/internal/auth"
	"github.com/akshith-07/fitflow-pro/internal/booking"
	"github.com/akshith-07/fitflow-pro/internal/class"
	"github.com/akshith-07/fitflow-pro/internal/config"
	"github.com/akshith-07/fitflow-pro/internal/membership"
	"github.com/akshith-07/fitflow-pro/internal/notification"
	"github.com/akshith-07/fitflow-pro/internal/payment"
	"github.com/akshith-07/fitflow-pro/internal/scheduler"
	"github.com/akshith-07/fitflow-pro/internal/user"
)

type Deps struct {
	Users       *user.Handler
	Memberships *membership.Handler
	Classes     *class.Handler
	Bookings    *booking.Handler
	Payments    *payment.Handler
	Email       *notification.EmailService
	Runner      *scheduler.Runner
}

type Server struct {
	router *gin.Engine
	config *config.Config
	http   *http.Server
}

func New(cfg *config.Config, deps Deps) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(deps.Email))
	SetupSwagger(router)

	public := router.Group("/auth")
	{
		public.POST("/register", deps.Users.Register)
		public.POST("/login", deps.Users.Login)
		public.POST("/refresh", deps.Users.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", deps.Users.GetMe)

		protected.GET("/plans", deps.Memberships.ListPlans)
		protected.GET("/memberships/:id", deps.Memberships.Get)

		protected.GET("/classes", deps.Classes.ListClasses)
		protected.GET("/schedules", deps.Classes.ListUpcoming)

		protected.POST("/bookings", deps.Bookings.Book)
		protected.POST("/bookings/:id/cancel", deps.Bookings.Cancel)
		protected.GET("/bookings", deps.Bookings.ListMine)
	}

	staff := router.Group("/")
	staff.Use(authMiddleware, auth.RequireRole("admin", "staff"))
	{
		staff.POST("/plans", deps.Memberships.CreatePlan)

		staff.POST("/memberships", deps.Memberships.Create)
		staff.GET("/memberships", deps.Memberships.List)
		staff.POST("/memberships/:id/freeze", deps.Memberships.Freeze)
		staff.POST("/memberships/:id/cancel", deps.Memberships.Cancel)
		staff.POST("/memberships/:id/renew", deps.Memberships.Renew)
		staff.GET("/reports/expiring-memberships", deps.Memberships.Expiring)

		staff.POST("/classes", deps.Classes.CreateClass)
		staff.POST("/schedules", deps.Classes.CreateSchedule)
		staff.PATCH("/schedules/:id/status", deps.Classes.UpdateScheduleStatus)
		staff.GET("/schedules/:id/bookings", deps.Bookings.ListForSchedule)
		staff.PATCH("/bookings/:id/attendance", deps.Bookings.MarkAttendance)

		staff.GET("/payments", deps.Payments.List)
		staff.GET("/payments/:id", deps.Payments.Get)
		staff.POST("/payments/:id/retry", deps.Payments.Retry)
		staff.POST("/payments/:id/refund", deps.Payments.Refund)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole("admin"))
	{
		admin.GET("/jobs", ListJobs(deps.Runner))
		admin.POST("/jobs/:name/run", RunJob(deps.Runner))
	}

	return &Server{
		router: router,
		config: cfg,
	}
}

func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
