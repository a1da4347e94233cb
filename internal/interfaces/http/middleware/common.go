// Package middleware provides HTTP middleware for the costing API.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bakeops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the gin context key holding the request ID.
	// logger.GinMiddleware reads the same key.
	RequestIDKey = "request_id"
	// RequestIDHeader carries the request ID in and out
	RequestIDHeader = "X-Request-ID"
	// MaxRequestIDLength bounds client-supplied IDs
	MaxRequestIDLength = 128
)

// RequestID adds a request ID to each request, reusing a sane client header
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// Timeout bounds the request context. Handlers see context.DeadlineExceeded
// from the costing service once it passes.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SecurityConfig holds the response security headers
type SecurityConfig struct {
	HSTSEnabled bool
	HSTSMaxAge  int // seconds
	// CSPDirective allows inline styles for the printed production sheet
	CSPDirective               string
	PermissionsPolicyDirective string
}

// DefaultSecurityConfig returns restrictive defaults. HSTS stays off until
// TLS terminates in front of the service.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:                 31536000,
		CSPDirective:               "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'; base-uri 'none'; form-action 'none'",
		PermissionsPolicyDirective: "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
	}
}

// Secure adds security headers using DefaultSecurityConfig
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig adds security headers to every response
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg.CSPDirective != "" {
			h.Set("Content-Security-Policy", cfg.CSPDirective)
		}
		if cfg.PermissionsPolicyDirective != "" {
			h.Set("Permissions-Policy", cfg.PermissionsPolicyDirective)
		}
		if cfg.HSTSEnabled && cfg.HSTSMaxAge > 0 {
			h.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(cfg.HSTSMaxAge)+"; includeSubDomains")
		}
		c.Next()
	}
}

// NoRoute answers unknown paths in the API envelope
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", c.GetString(RequestIDKey)))
	}
}
