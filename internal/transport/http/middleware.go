package http

import (
	"context"
	"log/slog"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

func recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic serving request",
			slog.Any("panic", recovered),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(nethttp.StatusInternalServerError, errorBody("internal error"))
	})
}

func requestLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= nethttp.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// requestTimeout gives every request a deadline unless the caller already
// set one.
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); ok {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

const (
	rateLimiterClients = 10000
	rateLimiterIdle    = 10 * time.Minute
)

// ipRateLimiter keeps one token bucket per client IP. Buckets idle longer
// than the TTL, or beyond the client cap, are dropped and start full again.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newIPRateLimiter(perSecond float64, burst, clients int, idle time.Duration) *ipRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if clients <= 0 {
		clients = rateLimiterClients
	}
	if idle <= 0 {
		idle = rateLimiterIdle
	}
	return &ipRateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](clients, nil, idle),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// Re-adding refreshes the idle TTL.
	l.limiters.Add(ip, limiter)
	return limiter
}

func (l *ipRateLimiter) middleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.get(ip).Allow() {
			log.Warn("rate limit exceeded", slog.String("client_ip", ip))
			c.AbortWithStatusJSON(nethttp.StatusTooManyRequests, errorBody("rate limit exceeded, try again later"))
			return
		}
		c.Next()
	}
}
