package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/eugenenazirov/cbm-calculator/internal/metrics"
)

type rateLimiter interface {
	Allow() bool
}

// retryAdvisor is implemented by limiters that can say when the next token is due.
type retryAdvisor interface {
	RetryAfter() time.Duration
}

type tokenBucket struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &tokenBucket{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (b *tokenBucket) Allow() bool {
	if b == nil || b.limiter == nil {
		return true
	}
	return b.limiter.Allow()
}

// RetryAfter is the time until one token refills at the configured rate.
func (b *tokenBucket) RetryAfter() time.Duration {
	if b == nil || b.limiter == nil || b.limiter.Limit() <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(b.limiter.Limit()))
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		metrics.RecordRateLimited()
		if advisor, ok := limiter.(retryAdvisor); ok {
			if wait := advisor.RetryAfter(); wait > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}
		}
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
