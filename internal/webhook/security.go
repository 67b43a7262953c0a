package webhook

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"placement-reminder/pkg/response"
)

// telegramSecretHeader carries the secret token registered via setWebhook.
const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// SecurityValidator validates incoming webhook requests.
type SecurityValidator struct {
	config      SecurityConfig
	rateLimiter *rateLimiter
}

// NewSecurityValidator creates a validator for the given config.
func NewSecurityValidator(config SecurityConfig) *SecurityValidator {
	return &SecurityValidator{
		config:      config,
		rateLimiter: newRateLimiter(config.RateLimitPerMin),
	}
}

// ValidateTelegramSecret verifies the secret token header Telegram sends
// with every webhook update. An empty configured secret disables the check.
func (v *SecurityValidator) ValidateTelegramSecret(r *http.Request) error {
	if v.config.SecretToken == "" {
		return nil
	}

	got := r.Header.Get(telegramSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(v.config.SecretToken)) != 1 {
		return fmt.Errorf("secret token verification failed")
	}
	return nil
}

// CheckRateLimit enforces per-source rate limiting.
func (v *SecurityValidator) CheckRateLimit(source string) error {
	return v.rateLimiter.Allow(source)
}

// Middleware returns a gin middleware rejecting requests that fail the
// secret check or exceed the rate limit.
func (v *SecurityValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := v.ValidateTelegramSecret(c.Request); err != nil {
			response.Unauthorized(c)
			c.Abort()
			return
		}
		if err := v.CheckRateLimit(extractIP(c.Request)); err != nil {
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractIP extracts the client IP from a request.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}

// rateLimiter keeps a token bucket per source in an expiring cache so idle
// sources do not accumulate.
type rateLimiter struct {
	perMin   int
	limiters *expirable.LRU[string, *rate.Limiter]
}

func newRateLimiter(perMin int) *rateLimiter {
	return &rateLimiter{
		perMin:   perMin,
		limiters: expirable.NewLRU[string, *rate.Limiter](1024, nil, 10*time.Minute),
	}
}

func (rl *rateLimiter) Allow(source string) error {
	if rl.perMin <= 0 {
		return nil
	}

	limiter, ok := rl.limiters.Get(source)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(rl.perMin)/60.0), rl.perMin)
		rl.limiters.Add(source, limiter)
	}

	if !limiter.Allow() {
		return fmt.Errorf("rate limit exceeded for %s", source)
	}
	return nil
}
