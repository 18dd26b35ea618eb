package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	nethttp "net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"
	"google.golang.org/grpc"

	"interviewdesk/internal/availability"
	"interviewdesk/internal/cache"
	"interviewdesk/internal/calendar"
	"interviewdesk/internal/config"
	"interviewdesk/internal/domain"
	"interviewdesk/internal/idalloc"
	"interviewdesk/internal/service/booking"
	"interviewdesk/internal/store"
	"interviewdesk/internal/store/kintone"
	"interviewdesk/internal/store/postgres"
	grpcTransport "interviewdesk/internal/transport/grpc"
	httpTransport "interviewdesk/internal/transport/http"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "interviewdesk-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "interviewdesk-server"),
	)
	slog.SetDefault(log)
	gin.SetMode(gin.ReleaseMode)

	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("grpc_addr", cfg.GRPCAddr),
		slog.String("store", cfg.StoreDriver),
		slog.String("cache", cfg.CacheDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock, err := domain.NewBusinessClock(cfg.TimeZone)
	if err != nil {
		log.Error("business clock failed", slog.Any("err", err), slog.String("time_zone", cfg.TimeZone))
		os.Exit(1)
	}

	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("record store setup failed", slog.Any("err", err), slog.String("store", cfg.StoreDriver))
		os.Exit(1)
	}
	defer backend.close()

	slotCache, cacheProbe, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		log.Error("slot cache setup failed", slog.Any("err", err), slog.String("cache", cfg.CacheDriver))
		os.Exit(1)
	}
	defer closeCache()

	// A nil interface keeps booking working without a calendar.
	var cal calendar.Calendar
	if g, err := calendar.NewGoogle(ctx, calendar.GoogleOptions{CredentialsJSON: cfg.GoogleCredentialsJSON}, log); err != nil {
		log.Warn("calendar unavailable; bookings will skip calendar events", slog.Any("err", err))
	} else {
		cal = g
	}

	slots, err := availability.NewService(cal, slotCache, availability.Config{
		CalendarID:   cfg.CalendarID,
		Clock:        clock,
		Window:       cfg.Window,
		SlotDuration: cfg.SlotDuration,
	}, log)
	if err != nil {
		log.Error("availability setup failed", slog.Any("err", err))
		os.Exit(1)
	}

	bookingCfg := booking.OrchestratorConfig{CalendarID: cfg.CalendarID, Clock: clock}
	router := httpTransport.NewRouter(httpTransport.Services{
		Slots:    slots,
		Bookings: booking.NewOrchestrator(backend.candidates, backend.appointments, backend.appointmentIDs, cal, slotCache, bookingCfg, log),
		Register: booking.NewRegistrar(backend.candidates, backend.candidateIDs, log),
		Updates:  booking.NewUpdater(backend.appointments, cal, slotCache, bookingCfg, log),
	}, httpTransport.Options{
		RequestTimeout: cfg.HTTPRequestTimeout,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		AllowOrigins:   cfg.CORSAllowOrigins,
	}, log)

	httpServer := &nethttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcServer := grpcTransport.NewServer(grpcTransport.Options{
		RequestTimeout:  cfg.GRPCRequestTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, log)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr))
		os.Exit(1)
	}

	probes := []grpcTransport.Probe{{Service: "interviewdesk.store", Check: backend.ping}}
	if cacheProbe != nil {
		probes = append(probes, grpcTransport.Probe{Service: "interviewdesk.cache", Check: cacheProbe})
	}
	go grpcServer.RunProbes(ctx, cfg.ProbeInterval, probes...)

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, httpServer, grpcServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		shutdown(log, httpServer, grpcServer, cfg.ShutdownTimeout)
		if serverFailed(err) {
			log.Error("server stopped with error", slog.Any("err", err))
			backend.close()
			closeCache()
			os.Exit(1)
		}
	}
}

// serverFailed reports whether a Serve/ListenAndServe return is a real
// failure rather than the result of a requested stop.
func serverFailed(err error) bool {
	return err != nil && !errors.Is(err, grpc.ErrServerStopped) && !errors.Is(err, nethttp.ErrServerClosed)
}

// backend is the record store picked by store.driver.
type backend struct {
	candidates     store.CandidateRepository
	appointments   store.AppointmentRepository
	candidateIDs   idalloc.Allocator
	appointmentIDs idalloc.Allocator
	ping           func(ctx context.Context) error
	close          func()
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (backend, error) {
	candidateSeq := idalloc.Sequence{Namespace: "candidates", Prefix: cfg.CandidatePrefix, Width: cfg.IDWidth}
	appointmentSeq := idalloc.Sequence{Namespace: "appointments", Prefix: cfg.AppointmentPrefix, Width: cfg.IDWidth}

	switch cfg.StoreDriver {
	case config.StoreDriverKintone:
		client := kintone.NewClient(cfg.KintoneDomain, log)
		candidates := kintone.NewCandidateRepo(client, kintone.App{ID: cfg.KintoneCandidatesApp, Token: cfg.KintoneCandidatesToken})
		appointments := kintone.NewAppointmentRepo(client, kintone.App{ID: cfg.KintoneAppointmentsApp, Token: cfg.KintoneAppointmentsToken})

		opts := []idalloc.Option{idalloc.WithLogger(log)}
		if cfg.SingleWriter {
			opts = append(opts, idalloc.WithSingleWriter())
		}
		return backend{
			candidates:     candidates,
			appointments:   appointments,
			candidateIDs:   idalloc.NewMaxScan(candidateSeq, candidates, opts...),
			appointmentIDs: idalloc.NewMaxScan(appointmentSeq, appointments, opts...),
			ping: func(ctx context.Context) error {
				_, _, err := candidates.LatestSequence(ctx)
				return err
			},
			close: func() {},
		}, nil

	default:
		log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
		db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
			log.Error("database connection failed", args...)
			return backend{}, err
		}

		candidates := postgres.NewCandidateRepo(db)
		appointments := postgres.NewAppointmentRepo(db)
		return backend{
			candidates:     candidates,
			appointments:   appointments,
			candidateIDs:   postgres.NewSequenceAllocator(db, candidateSeq, candidates, log),
			appointmentIDs: postgres.NewSequenceAllocator(db, appointmentSeq, appointments, log),
			ping:           db.PingContext,
			close:          func() { closeDB(log, db) },
		}, nil
	}
}

func closeDB(log *slog.Logger, db *bun.DB) {
	if err := postgres.Close(db); err != nil {
		log.Warn("database close failed", slog.Any("err", err))
	}
}

// openCache returns the slot cache for cache.driver, plus a health probe when
// the cache lives out of process.
func openCache(ctx context.Context, cfg config.Config) (availability.SlotCache, func(context.Context) error, func(), error) {
	switch cfg.CacheDriver {
	case config.CacheDriverRedis:
		r, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: "interviewdesk:",
			TTL:       cfg.CacheTTL,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return r, r.Ping, func() { _ = r.Close() }, nil
	case config.CacheDriverMemory:
		return cache.NewMemory(cfg.CacheSize, cfg.CacheTTL), nil, func() {}, nil
	default:
		return cache.Noop{}, nil, func() {}, nil
	}
}

func shutdown(log *slog.Logger, httpServer *nethttp.Server, grpcServer *grpcTransport.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed; forcing close", slog.Any("err", err))
		_ = httpServer.Close()
	} else {
		log.Info("http server stopped")
	}

	grpcServer.Shutdown()
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
