package http

import (
	"context"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"interviewdesk/internal/domain"
	"interviewdesk/internal/service/booking"
)

type slotsService interface {
	Day(ctx context.Context, date string) (domain.Day, error)
}

type bookingService interface {
	Book(ctx context.Context, in booking.BookInput) (booking.Booking, error)
	Appointment(ctx context.Context, id string) (domain.Appointment, error)
}

type registrationService interface {
	Register(ctx context.Context, in booking.RegisterInput) (booking.Registration, error)
}

type updateService interface {
	Update(ctx context.Context, in booking.UpdateInput) (booking.UpdateResult, error)
}

type Services struct {
	Slots    slotsService
	Bookings bookingService
	Register registrationService
	Updates  updateService
}

type Options struct {
	RequestTimeout time.Duration
	// RateLimit is requests per second allowed per client IP; zero disables
	// limiting.
	RateLimit    float64
	RateBurst    int
	AllowOrigins []string
}

type Server struct {
	svc Services
	log *slog.Logger
}

// NewRouter builds the gin engine serving the public API.
func NewRouter(svc Services, opts Options, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "http"))
	registerValidators()

	r := gin.New()
	r.Use(recovery(log), requestLog(log))
	r.Use(cors.New(corsConfig(opts.AllowOrigins)))
	r.Use(requestTimeout(opts.RequestTimeout))
	if opts.RateLimit > 0 {
		r.Use(newIPRateLimiter(opts.RateLimit, opts.RateBurst, 0, 0).middleware(log))
	}

	s := &Server{svc: svc, log: log}
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/get-available-slots", s.getAvailableSlots)
		api.POST("/create-appointment", s.createAppointment)
		api.PUT("/update-appointment", s.updateAppointment)
		api.POST("/register", s.register)
		api.GET("/appointments/:id", s.getAppointment)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
