// Package middleware gates net/http handlers and Huma operations with a
// distributed sliding window limiter.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	rlerrors "github.com/vnykmshr/ringlimit/pkg/common/errors"
	"github.com/vnykmshr/ringlimit/pkg/common/validation"
	"github.com/vnykmshr/ringlimit/pkg/ratelimit/distributed"
)

const module = "middleware"

// Config holds configuration for the rate limit middleware.
type Config struct {
	// Limiter counts requests per subject
	Limiter *distributed.Limiter

	// Window is the trailing window the threshold applies to (defaults to
	// distributed.DefaultWindow)
	Window time.Duration

	// Threshold is the request count at which a subject is rejected
	// (defaults to distributed.DefaultThreshold)
	Threshold int64

	// Subject extracts the rate limit subject from a request (defaults to ClientIP)
	Subject func(r *http.Request) string

	// Logger receives rejected and failed checks (defaults to a no-op logger)
	Logger *zap.Logger
}

// RateLimit returns middleware that rejects requests with 429 once their
// subject reaches the threshold, and records every request it lets through.
// It panics if the configuration is invalid; use RateLimitSafe to get an error.
func RateLimit(config Config) func(http.Handler) http.Handler {
	mw, err := RateLimitSafe(config)
	if err != nil {
		panic(err)
	}
	return mw
}

// RateLimitSafe is like RateLimit but returns an error for invalid configurations.
func RateLimitSafe(config Config) (func(http.Handler) http.Handler, error) {
	g, err := newGate(config)
	if err != nil {
		return nil, err
	}
	subjectOf := config.Subject
	if subjectOf == nil {
		subjectOf = ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := subjectOf(r)

			d := g.check(r.Context(), subject, r.Method, r.URL.Path)
			for k, v := range d.headers {
				w.Header().Set(k, v)
			}
			if d.status != http.StatusOK {
				http.Error(w, d.message, d.status)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// gate holds a validated configuration shared by the net/http and Huma middleware.
type gate struct {
	limiter    *distributed.Limiter
	window     time.Duration
	threshold  int64
	logger     *zap.Logger
	limit      string
	retryAfter string
}

// decision is the outcome of one check: the status to respond with and the
// rate limit headers to set either way.
type decision struct {
	status  int
	message string
	headers map[string]string
}

func newGate(config Config) (*gate, error) {
	if config.Limiter == nil {
		return nil, rlerrors.NewValidationError(module, "limiter", nil, "cannot be nil").
			WithHint("provide a distributed.Limiter")
	}
	if config.Window == 0 {
		config.Window = distributed.DefaultWindow
	}
	if config.Threshold == 0 {
		config.Threshold = distributed.DefaultThreshold
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if err := validation.ValidatePositiveDuration(module, "window", config.Window); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive(module, "threshold", config.Threshold); err != nil {
		return nil, err
	}

	return &gate{
		limiter:    config.Limiter,
		window:     config.Window,
		threshold:  config.Threshold,
		logger:     config.Logger,
		limit:      strconv.FormatInt(config.Threshold, 10),
		retryAfter: strconv.Itoa(int((config.Limiter.Interval() + time.Second - 1) / time.Second)),
	}, nil
}

// check counts the subject's trailing window and records the request when it
// is let through. Rejected requests are not recorded.
func (g *gate) check(ctx context.Context, subject, method, path string) decision {
	count, err := g.limiter.Count(ctx, subject, g.window)
	if err != nil {
		g.logger.Error("rate limit check failed",
			zap.String("path", path),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return decision{status: http.StatusInternalServerError, message: "internal server error"}
	}
	g.limiter.Observer().CountChecked(subject, count, g.threshold)

	if count >= g.threshold {
		g.logger.Warn("rate limit exceeded",
			zap.String("path", path),
			zap.String("method", method),
			zap.String("subject", subject),
			zap.Int64("count", count),
			zap.Int64("threshold", g.threshold),
			zap.Duration("window", g.window),
		)
		return decision{
			status:  http.StatusTooManyRequests,
			message: "rate limit exceeded",
			headers: map[string]string{
				"X-RateLimit-Limit":     g.limit,
				"X-RateLimit-Remaining": "0",
				"Retry-After":           g.retryAfter,
			},
		}
	}

	if _, err := g.limiter.Add(ctx, subject, 1); err != nil {
		g.logger.Error("rate limit record failed",
			zap.String("path", path),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return decision{status: http.StatusInternalServerError, message: "internal server error"}
	}

	return decision{
		status: http.StatusOK,
		headers: map[string]string{
			"X-RateLimit-Limit":     g.limit,
			"X-RateLimit-Remaining": strconv.FormatInt(g.threshold-count-1, 10),
		},
	}
}

// ClientIP extracts the client IP from the request, considering proxies.
func ClientIP(r *http.Request) string {
	return clientIP(r.Header.Get, r.RemoteAddr)
}

// clientIP prefers the first X-Forwarded-For address (the original client),
// then X-Real-IP, then the host part of remoteAddr.
func clientIP(header func(name string) string, remoteAddr string) string {
	if xff := header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := header("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return ip
}
