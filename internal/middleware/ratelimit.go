package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// ErrTooManyRequests is returned to clients above the rate limit.
const ErrTooManyRequests = "too many requests, please try again later"

// NewRateLimiter returns an in-memory limiter for a formatted rate such as "300-M".
func NewRateLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	return limiter.New(memory.NewStore(), rate), nil
}

// RateLimit limits requests per client IP.
func RateLimit(lim *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := zerolog.Ctx(c.Request.Context())
		ip := c.ClientIP()

		lc, err := lim.Get(c.Request.Context(), ip)
		if err != nil {
			l.Error().Err(err).Str("ip", ip).Msg("rate limit check failed")
			c.Next()

			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))

		if lc.Reached {
			l.Warn().Str("ip", ip).Int64("limit", lc.Limit).Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, web.Response{Error: ErrTooManyRequests})

			return
		}

		c.Next()
	}
}
