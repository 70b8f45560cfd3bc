package server

import (
	"log/slog"
	"time"

	"backend-gatoryde/internal/auth"
	"backend-gatoryde/internal/booking"
	"backend-gatoryde/internal/config"
	"backend-gatoryde/internal/dispute"
	"backend-gatoryde/internal/notify"
	"backend-gatoryde/internal/payments"
	"backend-gatoryde/internal/ratelimit"
	"backend-gatoryde/internal/ride"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Hub    *notify.Hub
	Logger *slog.Logger
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, log *slog.Logger) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Hub:    notify.NewHub(redisClient),
		Logger: log,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	verified := auth.RequireVerified()
	admin := auth.RequireAdmin()
	limiter := ratelimit.New(s.Redis, s.Cfg.RateLimitPerMin, time.Minute)
	gateway := payments.NewGateway(s.Cfg.StripeAPIKey)

	rideSvc := ride.NewService(s.DB)
	bookingSvc := booking.NewService(s.DB, s.Hub, gateway, s.Logger)
	disputeSvc := dispute.NewService(s.DB, s.Hub, s.Logger)

	rides := s.App.Group("/rides", limiter.Middleware())
	ride.RegisterRoutes(rides, rideSvc, jwtMiddleware, verified)
	booking.RegisterRideRoutes(rides, bookingSvc, jwtMiddleware)

	booking.RegisterRoutes(s.App.Group("/bookings", limiter.Middleware()), bookingSvc, jwtMiddleware, verified)
	dispute.RegisterRoutes(s.App.Group("/disputes", limiter.Middleware()), disputeSvc, jwtMiddleware, admin)
	notify.RegisterRoutes(s.App.Group("/notifications"), s.Hub)
}
